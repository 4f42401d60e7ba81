// Package credential provides the reversible credential transform used when
// persisting user records. It is obfuscation, not encryption.
package credential

import (
	"errors"
	"strings"
	"unicode"

	"github.com/simaogato/greenday-ledger/internal/domain"
)

// Affine letter transform E(x) = (a*x + b) mod 26, D(y) = a^-1 * (y - b) mod 26.
const (
	affineA        = 5
	affineB        = 8
	alphabetLength = 26
	affineAInverse = 21
)

// ErrUndecodable is returned for input the transform can never have produced.
var ErrUndecodable = errors.New("credential cannot be decoded")

// AffineCodec implements domain.CredentialCodec on ASCII letters; other runes pass through.
type AffineCodec struct{}

var _ domain.CredentialCodec = AffineCodec{}

func (AffineCodec) Encode(plaintext string) string {
	return mapLetters(plaintext, func(x int) int {
		return (affineA*x + affineB) % alphabetLength
	})
}

// Decode rejects control characters; the record format is line based so they only
// appear in corrupted input.
func (AffineCodec) Decode(ciphertext string) (string, error) {
	if strings.IndexFunc(ciphertext, unicode.IsControl) >= 0 {
		return "", ErrUndecodable
	}
	return mapLetters(ciphertext, func(y int) int {
		x := (affineAInverse * (y - affineB)) % alphabetLength
		if x < 0 {
			x += alphabetLength
		}
		return x
	}), nil
}

func mapLetters(s string, f func(int) int) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune('a' + rune(f(int(r-'a'))))
		case r >= 'A' && r <= 'Z':
			b.WriteRune('A' + rune(f(int(r-'A'))))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
