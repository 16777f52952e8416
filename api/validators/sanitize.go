package validators

import (
	"strings"

	pkgerrors "github.com/angelmondragon/greencart/pkg/errors"
)

// MaxProductIDLen matches the widest identifier the cart service issues.
const MaxProductIDLen = 128

func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}

// ProductID trims a product id taken from a path or body and rejects blank
// or oversized values.
func ProductID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "productId is required").WithDetails(map[string]any{"field": "productId"})
	}
	if len(id) > MaxProductIDLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "productId is too long").WithDetails(map[string]any{"field": "productId", "max": MaxProductIDLen})
	}
	return id, nil
}
