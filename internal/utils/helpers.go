package utils

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
)

// byteUnits maps a size unit to its factor in bytes
var byteUnits = map[string]int64{
	"kb": 1024,
	"mb": 1024 * 1024,
	"gb": 1024 * 1024 * 1024,
}

// Bytes converts a size in the given unit (kb, mb or gb, case-insensitive) to bytes.
//
// Parameters:
//   - size: The size value to convert
//   - unit: The unit of size
//
// Returns:
//   - The size in bytes
//   - An error if the unit is not recognized
func Bytes(size int64, unit string) (int64, error) {
	factor, ok := byteUnits[strings.ToLower(unit)]
	if !ok {
		return 0, fmt.Errorf("%s: %q", constants.MsgInvalidStorageUnit, unit)
	}
	return size * factor, nil
}

// MustBytes is Bytes for compile-time constant units.
func MustBytes(size int64, unit string) int64 {
	n, err := Bytes(size, unit)
	if err != nil {
		panic(err)
	}
	return n
}

// FileExtension returns the lower-cased extension of a file name without the dot.
// A name with no dot yields the whole lower-cased name, the same as splitting
// on "." and keeping the last part.
func FileExtension(name string) string {
	parts := strings.Split(name, ".")
	return strings.ToLower(parts[len(parts)-1])
}

// DottedExtension returns the extension including its leading dot, or "" if none.
func DottedExtension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// DisallowedKeys returns the keys of updates that are not in allowed, sorted.
func DisallowedKeys[T any](updates map[string]T, allowed []string) []string {
	var bad []string
	for key := range updates {
		if !ContainsString(allowed, key) {
			bad = append(bad, key)
		}
	}
	sort.Strings(bad)
	return bad
}

// TruncateString truncates a string to the specified length and adds "..." if truncated
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// MaskEmail masks part of an email address for privacy
func MaskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	user := parts[0]
	domain := parts[1]

	if len(user) <= 2 {
		return email
	}

	return string(user[0]) + strings.Repeat("*", len(user)-2) + string(user[len(user)-1]) + "@" + domain
}

// ContainsString checks if a string slice contains a specific string
func ContainsString(slice []string, str string) bool {
	for _, item := range slice {
		if item == str {
			return true
		}
	}
	return false
}
