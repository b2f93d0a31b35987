package shift

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

// Shift codes are the operator-facing handle for a shift: 8 characters,
// case-normalized, drawn from 6 random bytes so the collision space is
// ~2^48. Base64 padding and the +/ pair are stripped before uppercasing,
// leaving letters and digits only.
const codeLength = 8

var codePattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

// GenerateCode draws one candidate code. Uniqueness is checked at insert
// time; callers retry with a fresh draw on collision.
func GenerateCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	code := base64.StdEncoding.EncodeToString(buf)
	code = strings.NewReplacer("+", "", "/", "", "=", "").Replace(code)
	if len(code) < codeLength {
		// Stripping removed too many characters; redraw.
		return GenerateCode()
	}
	return strings.ToUpper(code[:codeLength]), nil
}

// ValidCode reports whether a string has the shape of a shift code after
// case normalization.
func ValidCode(code string) bool {
	return codePattern.MatchString(strings.ToUpper(code))
}
