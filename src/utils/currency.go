package utils

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseCurrency turns a loosely formatted monetary value ("₹1,234.56",
// "-₹50.00", " 12 ", a float, nil) into a number. Anything that is not a
// digit, '-' or '.' is dropped before parsing: currency glyphs, thousands
// separators, whitespace and mis-encoded symbol bytes. Unparsable input
// yields 0; the function never fails. Signs are kept, callers that need a
// magnitude apply math.Abs themselves.
func ParseCurrency(raw any) float64 {
	switch v := raw.(type) {
	case nil:
		return 0
	case string:
		return parseCurrencyString(v)
	case []byte:
		return parseCurrencyString(string(v))
	case float64:
		return finiteOrZero(v)
	case float32:
		return finiteOrZero(float64(v))
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case json.Number:
		return parseCurrencyString(v.String())
	case decimal.Decimal:
		f, _ := v.Float64()
		return f
	default:
		return 0
	}
}

func parseCurrencyString(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '-' || r == '.' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
