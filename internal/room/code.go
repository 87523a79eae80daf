// Package room owns rooms, their members and the registry that maps
// room codes and player ids onto them. All room mutation happens here
// behind per-room locks; the transport layer only sees snapshots.
package room

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// CodeLength is the length of generated room codes.
const CodeLength = 6

// Crockford's base32 alphabet, upper-cased for display. Ambiguous
// letters (I, L, O, U) are excluded so codes survive being read out
// loud.
const codeAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// RandSource interface for dependency injection of randomness
type RandSource interface {
	IntN(n int) int
}

// CodeGenerator produces room codes with configurable randomness.
type CodeGenerator struct {
	randSource RandSource
}

// NewCodeGenerator creates a generator. A nil RandSource falls back
// to crypto/rand.
func NewCodeGenerator(randSource RandSource) *CodeGenerator {
	return &CodeGenerator{randSource: randSource}
}

// Generate creates a new room code.
func (g *CodeGenerator) Generate() string {
	code := make([]byte, CodeLength)
	if g.randSource != nil {
		for i := range code {
			code[i] = codeAlphabet[g.randSource.IntN(len(codeAlphabet))]
		}
		return string(code)
	}

	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}
	for i, b := range buf {
		code[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(code)
}

// NormalizeCode canonicalises a room code for lookup. Codes are case
// insensitive on the wire and stored upper-case.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateCode checks that a normalized code has the generated shape.
func ValidateCode(code string) error {
	if len(code) != CodeLength {
		return fmt.Errorf("room code must be exactly %d characters, got %d", CodeLength, len(code))
	}
	for i, char := range code {
		if !strings.ContainsRune(codeAlphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}
