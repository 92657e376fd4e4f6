// Package codegen produces short link codes and bearer tokens.
// Generators hold no mutable state and are safe for concurrent use.
package codegen

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"
)

// Alphabet is the 62-symbol set codes are drawn from.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var alphabetSize = big.NewInt(int64(len(Alphabet)))

var errLength = errors.New("length must be positive")

// Generator generates link codes.
type Generator interface {
	Generate(length int) (string, error)
}

type base62 struct {
	rand io.Reader
}

// NewBase62 returns a Generator that draws each character independently and
// uniformly from Alphabet.
func NewBase62() Generator {
	return &base62{rand: rand.Reader}
}

func (g *base62) Generate(length int) (string, error) {
	return draw(g.rand, length)
}

// Token returns a random alphanumeric bearer token.
func Token(length int) (string, error) {
	return draw(rand.Reader, length)
}

// draw picks each symbol with probability 1/62.
func draw(r io.Reader, length int) (string, error) {
	if length <= 0 {
		return "", errLength
	}

	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(r, alphabetSize)
		if err != nil {
			return "", err
		}
		b[i] = Alphabet[n.Int64()]
	}
	return string(b), nil
}
