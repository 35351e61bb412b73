package utils

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want float64
	}{
		{"rupee with thousands separator", "₹1,234.56", 1234.56},
		{"negative rupee", "-₹50.00", -50},
		{"plain integer string", " 12 ", 12},
		{"nil", nil, 0},
		{"empty string", "", 0},
		{"only symbols", "₹ ,", 0},
		{"unparsable", "1.2.3", 0},
		{"mis-encoded symbol bytes", "â‚¹799.00", 799},
		{"float passthrough", 42.5, 42.5},
		{"negative float keeps sign", -3.25, -3.25},
		{"int", 7, 7},
		{"json number", json.Number("19.99"), 19.99},
		{"decimal", decimal.RequireFromString("-0.10"), -0.10},
		{"unsupported type", struct{}{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCurrency(tt.raw); got != tt.want {
				t.Errorf("ParseCurrency(%#v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
