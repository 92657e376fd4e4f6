package main

import (
	"context"
	"flag"
	"log"

	"github.com/sundayezeilo/shortlink/internal/app"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML config file")
	logLevel := flag.String("log-level", "", "override log level (debug, info, warn, error)")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the environment is read")
	flag.Parse()

	ctx := context.Background()

	application, err := app.New(ctx, app.Options{
		ConfigPath: *configPath,
		LogLevel:   *logLevel,
		EnvFile:    *envFile,
	})
	if err != nil {
		return err
	}
	defer application.Shutdown()

	// Blocks until shutdown.
	return application.Start(ctx)
}
