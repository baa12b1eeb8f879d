package part

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"partbridge/internal/core/apperror"
)

// Overrides carries user-supplied corrections applied to a candidate part
// just before commit. Absent or empty fields leave the original value
// untouched; an empty override never erases data.
type Overrides struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Manufacturer string   `json:"manufacturer"`
	MPN          string   `json:"mpn"`
	SKU          string   `json:"supplier_sku"`
	CategoryPath []string `json:"category_path"`
	DatasheetURL string   `json:"datasheet_url"`
	ImageURL     string   `json:"image_url"`

	// Parameters, when provided, replaces the whole parameter set (not a
	// merge). Entries with a nil value are dropped.
	Parameters []ParameterOverride `json:"parameters"`

	// PriceBreaks, when provided, replaces the whole price-break set (not a
	// merge). Quantity and price accept loosely typed JSON values and are
	// coerced; coercion failure is a validation error.
	PriceBreaks []PriceBreakOverride `json:"price_breaks"`
}

// ParameterOverride is one entry of a parameter-set override.
type ParameterOverride struct {
	Name  string  `json:"name"`
	Value *string `json:"value"`
}

// PriceBreakOverride is one entry of a price-break-set override.
type PriceBreakOverride struct {
	Quantity any    `json:"quantity"`
	Price    any    `json:"price"`
	Currency string `json:"currency"`
}

// IsZero reports whether the overrides carry nothing to apply.
func (o Overrides) IsZero() bool {
	return o.Name == "" && o.Description == "" && o.Manufacturer == "" &&
		o.MPN == "" && o.SKU == "" && o.DatasheetURL == "" && o.ImageURL == "" &&
		len(o.CategoryPath) == 0 && len(o.Parameters) == 0 && len(o.PriceBreaks) == 0
}

// Apply merges the overrides onto p in place. defaultCurrency is used for
// replacement price breaks that do not name a currency.
func (o Overrides) Apply(p *Part, defaultCurrency string) error {
	if o.Name != "" {
		p.Name = o.Name
	}
	if o.Description != "" {
		p.Description = o.Description
	}
	if o.Manufacturer != "" {
		p.Manufacturer = o.Manufacturer
	}
	if o.MPN != "" {
		p.MPN = o.MPN
	}
	if o.SKU != "" {
		p.SKU = o.SKU
	}
	if o.DatasheetURL != "" {
		p.DatasheetURL = o.DatasheetURL
	}
	if o.ImageURL != "" {
		p.ImageURL = o.ImageURL
	}

	if len(o.CategoryPath) > 0 {
		var path []string
		for _, segment := range o.CategoryPath {
			if trimmed := strings.TrimSpace(segment); trimmed != "" {
				path = append(path, trimmed)
			}
		}
		p.CategoryPath = path
	}

	if len(o.Parameters) > 0 {
		p.Parameters = nil
		for _, entry := range o.Parameters {
			if entry.Name == "" || entry.Value == nil {
				continue
			}
			p.AddParameter(Parameter{Name: entry.Name, Value: *entry.Value})
		}
	}

	if len(o.PriceBreaks) > 0 {
		replaced, err := coercePriceBreaks(o.PriceBreaks, p, defaultCurrency)
		if err != nil {
			return err
		}
		p.PriceBreaks = nil
		for _, pb := range replaced {
			p.AddPriceBreak(pb)
		}
		p.SortPriceBreaks()
	}

	return nil
}

func coercePriceBreaks(entries []PriceBreakOverride, p *Part, defaultCurrency string) ([]PriceBreak, error) {
	currency := defaultCurrency
	if len(p.PriceBreaks) > 0 {
		currency = p.PriceBreaks[0].Currency
	}

	breaks := make([]PriceBreak, 0, len(entries))
	for _, entry := range entries {
		if entry.Quantity == nil || entry.Price == nil {
			continue
		}

		quantity, err := coerceInt(entry.Quantity)
		if err != nil {
			return nil, apperror.NewValidation("price break quantity must be an integer").
				WithDetail("quantity", entry.Quantity)
		}
		price, ok := ParsePrice(entry.Price)
		if !ok {
			return nil, apperror.NewValidation("price break price must be a number").
				WithDetail("price", entry.Price)
		}

		pb := PriceBreak{Quantity: quantity, Price: price, Currency: currency}
		if entry.Currency != "" {
			pb.Currency = entry.Currency
		}
		breaks = append(breaks, pb)
	}
	return breaks, nil
}

// coerceInt converts loosely typed JSON numbers ("5", 5, 5.0) to int.
func coerceInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("not an integer: %v", v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", v)
		}
		return n, nil
	case decimal.Decimal:
		if !v.IsInteger() {
			return 0, fmt.Errorf("not an integer: %s", v)
		}
		return int(v.IntPart()), nil
	default:
		return 0, fmt.Errorf("unsupported quantity type %T", value)
	}
}
