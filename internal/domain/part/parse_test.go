package part

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseStock(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   int
		wantOK bool
	}{
		{name: "PlainNumber", raw: "42", want: 42, wantOK: true},
		{name: "ThousandsSeparators", raw: "1,234,567", want: 1234567, wantOK: true},
		{name: "InStockSuffix", raw: "9,543 In Stock", want: 9543, wantOK: true},
		{name: "LeadingText", raw: "On Order: 120", want: 120, wantOK: true},
		{name: "Empty", raw: "", wantOK: false},
		{name: "NoDigits", raw: "Out of Stock", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseStock(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParsePrice_Strings(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{name: "DotDecimal", raw: "1,234.56", want: "1234.56", wantOK: true},
		{name: "CommaDecimal", raw: "1234,56", want: "1234.56", wantOK: true},
		{name: "CurrencyPrefix", raw: "$0.4500", want: "0.45", wantOK: true},
		{name: "EuroSuffix", raw: "12,50 €", want: "12.5", wantOK: true},
		{name: "Negative", raw: "-1.25", want: "-1.25", wantOK: true},
		{name: "Bogus", raw: "bogus", wantOK: false},
		{name: "Empty", raw: "", wantOK: false},
		{name: "OnlySymbols", raw: "€ -", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
					"want %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParsePrice_Numeric(t *testing.T) {
	got, ok := ParsePrice(0.45)
	assert.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromFloat(0.45)))

	got, ok = ParsePrice(3)
	assert.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromInt(3)))

	_, ok = ParsePrice(nil)
	assert.False(t, ok)
}
