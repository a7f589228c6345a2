package service

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

// GenerateContractNumber produces "CT" + YYYYMMDD + 6 uppercase hex digits.
// Collisions are rare but possible; the unique index on contract_number is
// the backstop and callers retry once on a duplicate.
func GenerateContractNumber() (string, error) {
	var random [3]byte
	if _, err := rand.Read(random[:]); err != nil {
		return "", fmt.Errorf("generate contract number: %w", err)
	}
	suffix := strings.ToUpper(fmt.Sprintf("%02x%02x%02x", random[0], random[1], random[2]))
	return fmt.Sprintf("CT%s%s", time.Now().Format("20060102"), suffix), nil
}
