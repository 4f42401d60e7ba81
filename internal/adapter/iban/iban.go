// Package iban generates the fixed-format account identifiers handed out at registration.
package iban

import (
	"fmt"
	"math/big"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/simaogato/greenday-ledger/internal/domain"
)

// Format: EEkk77nnnnnn, where kk is the ISO 13616 mod-97 check and 77 the bank code.
const (
	countryCode   = "EE"
	bankCode      = "77"
	accountDigits = 6
	length        = len(countryCode) + 2 + len(bankCode) + accountDigits
	// "EE" with letters as numbers (E=14) followed by "00" placeholder check digits
	countryNumeric = "141400"
)

// Generator implements domain.IdentifierService.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

var _ domain.IdentifierService = (*Generator)(nil)

// NewGenerator creates a generator; a fixed seed makes the sequence deterministic.
func NewGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// NewRandomGenerator seeds from the clock.
func NewRandomGenerator() *Generator {
	return NewGenerator(time.Now().UnixNano())
}

// Generate returns a new identifier with a valid checksum.
func (g *Generator) Generate() string {
	g.mu.Lock()
	account := fmt.Sprintf("%0*d", accountDigits, g.rnd.Intn(1_000_000))
	g.mu.Unlock()

	return countryCode + checkDigits(bankCode+account) + bankCode + account
}

// Validate checks country, length, digits and the mod-97 checksum.
func (g *Generator) Validate(id string) bool {
	id = strings.ToUpper(strings.TrimSpace(id))
	if len(id) != length || !strings.HasPrefix(id, countryCode) {
		return false
	}
	for _, r := range id[2:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	bban := id[4:]
	return id[2:4] == checkDigits(bban)
}

func checkDigits(bban string) string {
	n, _ := new(big.Int).SetString(bban+countryNumeric, 10)
	remainder := new(big.Int).Mod(n, big.NewInt(97)).Int64()
	return fmt.Sprintf("%02d", 98-remainder)
}
