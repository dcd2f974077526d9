package orders

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const codePrefix = "HG"

// GenerateCode builds a human-readable order code: a date component for
// operators plus a random suffix for uniqueness, e.g. HG-20260501-9F2C6A.
func GenerateCode(now time.Time) (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	suffix := strings.ToUpper(hex.EncodeToString(b))
	return fmt.Sprintf("%s-%s-%s", codePrefix, now.Format("20060102"), suffix), nil
}
