package utils

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// DefaultColor is used when no background color is given.
const DefaultColor = "#FFFFFF"

var ErrInvalidColor = errors.New("invalid color")

// NormalizeColor canonicalizes a background color to upper-case "#RRGGBB"
// or "#AARRGGBB". The leading '#' is optional on input; an empty string
// yields DefaultColor.
// Example: "ff112233" -> "#FF112233"
func NormalizeColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return DefaultColor, nil
	}

	digits := strings.TrimPrefix(color, "#")
	if len(digits) != 6 && len(digits) != 8 {
		return "", fmt.Errorf("%w %q: want #RRGGBB or #AARRGGBB", ErrInvalidColor, color)
	}
	if _, err := hex.DecodeString(digits); err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidColor, color, err)
	}

	return "#" + strings.ToUpper(digits), nil
}

// IsValidColor reports whether NormalizeColor accepts color. Empty is not valid.
func IsValidColor(color string) bool {
	if strings.TrimSpace(color) == "" {
		return false
	}
	_, err := NormalizeColor(color)
	return err == nil
}
