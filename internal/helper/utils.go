package helper

import (
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf16"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// GenerateUUID creates a random unique UUID string
func GenerateUUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID: %w", err)
	}
	return id.String(), nil
}

// CreateFolder creates path and any missing parents.
func CreateFolder(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create folder %s: %w", path, err)
	}
	return nil
}

// pretty print
func PrettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("Error pretty printing")
		return
	}
	fmt.Println(string(b))
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// TruncateUTF16 returns the prefix of s that fits in n UTF-16 code units,
// and whether anything was cut. A surrogate pair straddling the limit is
// dropped whole.
func TruncateUTF16(s string, n int) (string, bool) {
	units := utf16.Encode([]rune(s))
	if len(units) <= n {
		return s, false
	}
	if n <= 0 {
		return "", true
	}
	cut := units[:n]
	if last := cut[n-1]; last >= 0xD800 && last < 0xDC00 {
		cut = cut[:n-1]
	}
	return string(utf16.Decode(cut)), true
}
