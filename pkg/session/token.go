package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes is the number of random bytes backing a session token, rendered
// as lowercase hex. Tokens are opaque and bear no relation to the user
// identity they authenticate; they are never JWTs or otherwise structured.
const tokenBytes = 32

// maxTokenAttempts bounds the collision-retry loop in GenerateToken. A
// collision against a live session's token this wide is effectively
// impossible; the bound exists so a broken RNG fails loudly instead of
// looping forever.
const maxTokenAttempts = 8

// generateRawToken returns a fresh cryptographically random token, hex
// encoded in lowercase.
func generateRawToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GenerateToken produces a token guaranteed not to collide with any token
// currently held by table. Collision is checked by scanning the table's
// live sessions, since tokens are not indexed by value.
func GenerateToken(table *Table) (string, error) {
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := generateRawToken()
		if err != nil {
			return "", err
		}
		if !tokenInUse(table, token) {
			return token, nil
		}
	}
	return "", fmt.Errorf("generate session token: exhausted %d attempts without a unique value", maxTokenAttempts)
}

func tokenInUse(table *Table, token string) bool {
	for _, s := range table.List() {
		if s.Token == token {
			return true
		}
	}
	return false
}
