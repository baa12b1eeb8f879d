package digikey

import (
	"partbridge/internal/domain/part"
)

// rawProduct mirrors the Digi-Key product payload shared by keyword search
// and product details. Categories arrive root-to-leaf, pricing as plain
// numbers.
type rawProduct struct {
	ProductDescription     string `json:"ProductDescription"`
	ManufacturerName       string `json:"ManufacturerName"`
	ManufacturerPartNumber string `json:"ManufacturerPartNumber"`
	DigiKeyPartNumber      string `json:"DigiKeyPartNumber"`
	Categories             []struct {
		Name string `json:"Name"`
	} `json:"Categories"`
	PrimaryDatasheet string `json:"PrimaryDatasheet"`
	PrimaryPhoto     *struct {
		Href string `json:"Href"`
	} `json:"PrimaryPhoto"`
	QuantityAvailable *int `json:"QuantityAvailable"`
	LeadTime          *struct {
		Value int `json:"Value"`
	} `json:"LeadTime"`
	StandardPricing []struct {
		BreakQuantity int     `json:"BreakQuantity"`
		Price         float64 `json:"Price"`
		Currency      string  `json:"Currency"`
	} `json:"StandardPricing"`
	ProductAttributes []struct {
		Parameter string `json:"Parameter"`
		Value     string `json:"Value"`
	} `json:"ProductAttributes"`
}

// normalize maps a raw Digi-Key product onto the canonical Part. Price
// entries without a positive break quantity are dropped; attributes missing
// either side are dropped.
func (c *Client) normalize(raw rawProduct) part.Part {
	p := part.Part{
		Name:              raw.ProductDescription,
		Description:       raw.ProductDescription,
		Manufacturer:      raw.ManufacturerName,
		MPN:               raw.ManufacturerPartNumber,
		Supplier:          c.Slug(),
		SupplierCompanyID: c.cfg.CompanyID,
		SKU:               raw.DigiKeyPartNumber,
		DatasheetURL:      raw.PrimaryDatasheet,
		Stock:             raw.QuantityAvailable,
	}
	if p.Name == "" {
		p.Name = raw.ManufacturerPartNumber
	}
	if raw.PrimaryPhoto != nil {
		p.ImageURL = raw.PrimaryPhoto.Href
	}
	if raw.LeadTime != nil {
		weeks := raw.LeadTime.Value
		p.LeadTimeWeeks = &weeks
	}

	for _, cat := range raw.Categories {
		if cat.Name != "" {
			p.CategoryPath = append(p.CategoryPath, cat.Name)
		}
	}

	for _, pricing := range raw.StandardPricing {
		if pricing.BreakQuantity <= 0 {
			continue
		}
		price, ok := part.ParsePrice(pricing.Price)
		if !ok {
			continue
		}
		currency := pricing.Currency
		if currency == "" {
			currency = c.cfg.DefaultCurrency
		}
		p.AddPriceBreak(part.PriceBreak{
			Quantity: pricing.BreakQuantity,
			Price:    price,
			Currency: currency,
		})
	}
	p.SortPriceBreaks()

	for _, attr := range raw.ProductAttributes {
		if attr.Parameter == "" || attr.Value == "" {
			continue
		}
		p.AddParameter(part.Parameter{Name: attr.Parameter, Value: attr.Value})
	}

	return p
}
