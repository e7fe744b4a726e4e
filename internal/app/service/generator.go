// Package service holds the core logic of the shortener: code generation,
// uniqueness resolution, the URL registry, redirect resolution, click
// recording and aggregation, and token authentication.
package service

import "math/rand/v2"

// codeAlphabet is the 62-character alphanumeric alphabet short codes are
// drawn from; 62^6 leaves collision handling to the resolver's retry loop.
const codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultCodeLength is the length of generated short codes.
const DefaultCodeLength = 6

// CodeGenerator produces candidate short codes. Uniqueness is not its
// concern; the CodeResolver checks candidates against the store.
type CodeGenerator interface {
	Generate(length int) string
}

// RandomGenerator draws each character uniformly at random. math/rand/v2
// is seeded from the OS, so independent processes do not repeat sequences.
type RandomGenerator struct{}

func NewRandomGenerator() RandomGenerator {
	return RandomGenerator{}
}

// Generate returns a fresh candidate code. Non-positive lengths fall back
// to DefaultCodeLength.
func (RandomGenerator) Generate(length int) string {
	if length <= 0 {
		length = DefaultCodeLength
	}

	code := make([]byte, length)
	for i := range code {
		code[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(code)
}
