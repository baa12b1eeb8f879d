package part

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	digitRunRe   = regexp.MustCompile(`\d+`)
	priceCleanRe = regexp.MustCompile(`[^0-9,.\-]`)
)

// ParseStock extracts a stock quantity from a loosely formatted availability
// string such as "1,234 In Stock". Thousands-separator commas are stripped
// before the first run of digits is taken. Returns false when the input
// contains no digits.
func ParseStock(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	digits := digitRunRe.FindString(strings.ReplaceAll(raw, ",", ""))
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		// A digit run too long for int means the value is garbage anyway.
		return 0, false
	}
	return n, true
}

// ParsePrice extracts a unit price from a supplier price field. Numeric inputs
// pass through directly. Strings are stripped of currency symbols and other
// decoration; a comma with no period is treated as a decimal comma, otherwise
// commas are thousands separators. Returns false when nothing parseable
// remains. Never panics on malformed input.
func ParsePrice(raw any) (decimal.Decimal, bool) {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return v, true
	case float64:
		return decimal.NewFromFloat(v), true
	case float32:
		return decimal.NewFromFloat32(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case string:
		return parsePriceString(v)
	default:
		return decimal.Zero, false
	}
}

func parsePriceString(raw string) (decimal.Decimal, bool) {
	cleaned := priceCleanRe.ReplaceAllString(raw, "")
	if cleaned == "" {
		return decimal.Zero, false
	}

	if strings.Contains(cleaned, ",") && !strings.Contains(cleaned, ".") {
		// Locale heuristic: "1234,56" means a decimal comma.
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	price, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return price, true
}
