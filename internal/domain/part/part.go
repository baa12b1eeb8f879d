// Package part defines the canonical, supplier-agnostic part representation.
// Supplier payloads are mapped into Part at the supplier boundary; nothing
// downstream of a normalizer sees raw supplier shapes.
package part

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Part is the canonical part record built fresh per search/import call.
// CategoryPath is ordered root-to-leaf; suppliers convert their own ordering
// at the normalizer boundary.
type Part struct {
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	Manufacturer      string       `json:"manufacturer"`
	MPN               string       `json:"mpn"`
	Supplier          string       `json:"supplier"`
	SupplierCompanyID *int         `json:"supplier_company_id,omitempty"`
	SKU               string       `json:"supplier_sku"`
	CategoryPath      []string     `json:"category_path"`
	DatasheetURL      string       `json:"datasheet_url"`
	ImageURL          string       `json:"image_url"`
	Stock             *int         `json:"stock,omitempty"`
	LeadTimeWeeks     *int         `json:"lead_time_weeks,omitempty"`
	PriceBreaks       []PriceBreak `json:"price_breaks"`
	Parameters        []Parameter  `json:"parameters"`
}

// PriceBreak is one (quantity, unit price) tier of a volume-pricing schedule.
type PriceBreak struct {
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

// Parameter is a named technical attribute of a part.
type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AddPriceBreak appends a price break, keeping quantities unique.
// A later break with an already-present quantity wins.
func (p *Part) AddPriceBreak(pb PriceBreak) {
	for i, existing := range p.PriceBreaks {
		if existing.Quantity == pb.Quantity {
			p.PriceBreaks[i] = pb
			return
		}
	}
	p.PriceBreaks = append(p.PriceBreaks, pb)
}

// AddParameter appends a parameter, keeping names unique and dropping
// entries with an empty name.
func (p *Part) AddParameter(param Parameter) {
	if param.Name == "" {
		return
	}
	for i, existing := range p.Parameters {
		if existing.Name == param.Name {
			p.Parameters[i] = param
			return
		}
	}
	p.Parameters = append(p.Parameters, param)
}

// SortPriceBreaks orders price breaks by ascending quantity.
func (p *Part) SortPriceBreaks() {
	sort.Slice(p.PriceBreaks, func(i, j int) bool {
		return p.PriceBreaks[i].Quantity < p.PriceBreaks[j].Quantity
	})
}

// HasPricing reports whether any price break is present.
func (p *Part) HasPricing() bool {
	return len(p.PriceBreaks) > 0
}

// MatchesQuery reports whether SKU or MPN equals the query, case-insensitive.
// Used by candidate selection to prefer exact matches over positional order.
func (p *Part) MatchesQuery(query string) bool {
	return strings.EqualFold(p.SKU, query) || strings.EqualFold(p.MPN, query)
}

// SplitCategoryString splits a delimiter-joined supplier category string into
// trimmed, non-empty path segments.
func SplitCategoryString(raw, sep string) []string {
	if raw == "" {
		return nil
	}
	var path []string
	for _, segment := range strings.Split(raw, sep) {
		if trimmed := strings.TrimSpace(segment); trimmed != "" {
			path = append(path, trimmed)
		}
	}
	return path
}
