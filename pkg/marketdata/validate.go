package marketdata

import (
	"fmt"
	"strings"
)

// NormalizeSymbol uppercases and trims a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ValidateSymbol checks a normalized ticker symbol: 1-10 characters, letters
// and digits plus '.' and '-' separators.
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol is empty")
	}
	if len(symbol) > 10 {
		return fmt.Errorf("symbol %q is too long", symbol)
	}
	for _, r := range symbol {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '-':
		default:
			return fmt.Errorf("symbol %q contains invalid character %q", symbol, r)
		}
	}
	return nil
}
