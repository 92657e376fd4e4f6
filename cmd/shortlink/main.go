package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sundayezeilo/shortlink/client"
)

const usage = `usage: shortlink [-base-url URL] <command> [args]

commands:
  create <url>                 shorten url and print {code,url}
  info <code>                  print the stored link for code
  resolve <code>               print the redirect target for code
  delete -token <token> <code> delete code
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("shortlink", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	baseURL := fs.String("base-url", envOr("SHORTLINK_URL", "http://localhost:8080"), "server base URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	c, err := client.New(*baseURL)
	if err != nil {
		return err
	}

	cmd, rest := rest[0], rest[1:]
	switch cmd {
	case "create":
		if len(rest) != 1 {
			return errors.New("create takes exactly one url")
		}
		link, err := c.CreateLink(ctx, rest[0])
		if err != nil {
			return err
		}
		return printJSON(out, link)

	case "info":
		if len(rest) != 1 {
			return errors.New("info takes exactly one code")
		}
		link, err := c.GetLinkInfo(ctx, rest[0])
		if err != nil {
			return err
		}
		return printJSON(out, link)

	case "resolve":
		if len(rest) != 1 {
			return errors.New("resolve takes exactly one code")
		}
		target, err := c.Redirect(ctx, rest[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, target)
		return err

	case "delete":
		dfs := flag.NewFlagSet("delete", flag.ContinueOnError)
		token := dfs.String("token", os.Getenv("BEARER_TOKEN"), "bearer token")
		if err := dfs.Parse(rest); err != nil {
			return err
		}
		if dfs.NArg() != 1 {
			return errors.New("delete takes exactly one code")
		}
		if *token == "" {
			return errors.New("delete requires -token or BEARER_TOKEN")
		}
		if err := c.DeleteLink(ctx, dfs.Arg(0), *token); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "deleted %s\n", dfs.Arg(0))
		return err

	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
