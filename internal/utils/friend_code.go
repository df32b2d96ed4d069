package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

var friendCodePattern = regexp.MustCompile(`^[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}$`)

// GenerateFriendCode returns a random code in the format xxxx-xxxx-xxxx
func GenerateFriendCode() (string, error) {
	bytes := make([]byte, 6)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	h := hex.EncodeToString(bytes)
	return fmt.Sprintf("%s-%s-%s", h[0:4], h[4:8], h[8:12]), nil
}

// NormalizeFriendCode lowercases and trims user input, reporting whether the
// result is a well-formed friend code.
func NormalizeFriendCode(code string) (string, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	return code, friendCodePattern.MatchString(code)
}
