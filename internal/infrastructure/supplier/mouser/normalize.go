package mouser

import (
	"partbridge/internal/domain/part"
)

// rawPart mirrors one entry of Mouser's Parts array. Quantities arrive as
// numbers, prices as locale-formatted strings ("0,476 €"), availability as a
// free-form string.
type rawPart struct {
	Description            string `json:"Description"`
	Manufacturer           string `json:"Manufacturer"`
	ManufacturerPartNumber string `json:"ManufacturerPartNumber"`
	MouserPartNumber       string `json:"MouserPartNumber"`
	Category               string `json:"Category"`
	DataSheetURL           string `json:"DataSheetUrl"`
	ImagePath              string `json:"ImagePath"`
	Availability           string `json:"Availability"`
	LeadTimeWeeks          *int   `json:"LeadTimeWeeks"`
	PriceBreaks            []struct {
		Quantity int    `json:"Quantity"`
		Price    string `json:"Price"`
		Currency string `json:"Currency"`
	} `json:"PriceBreaks"`
	ProductAttributes []struct {
		Name  string `json:"Name"`
		Value string `json:"Value"`
	} `json:"ProductAttributes"`
}

// normalize maps a raw Mouser part onto the canonical Part. Price breaks
// without a positive quantity or with an unparseable price are dropped with
// a diagnostic; attributes missing a name or value are dropped silently.
func (c *Client) normalize(raw rawPart) part.Part {
	p := part.Part{
		Name:              raw.Description,
		Description:       raw.Description,
		Manufacturer:      raw.Manufacturer,
		MPN:               raw.ManufacturerPartNumber,
		Supplier:          c.Slug(),
		SupplierCompanyID: c.cfg.CompanyID,
		SKU:               raw.MouserPartNumber,
		CategoryPath:      part.SplitCategoryString(raw.Category, "->"),
		DatasheetURL:      raw.DataSheetURL,
		ImageURL:          raw.ImagePath,
		LeadTimeWeeks:     raw.LeadTimeWeeks,
	}
	if p.Name == "" {
		p.Name = raw.ManufacturerPartNumber
	}

	if stock, ok := part.ParseStock(raw.Availability); ok {
		p.Stock = &stock
	}

	for _, pb := range raw.PriceBreaks {
		if pb.Quantity <= 0 {
			continue
		}
		price, ok := part.ParsePrice(pb.Price)
		if !ok {
			c.log.Warnw("dropping unparseable price break",
				"sku", raw.MouserPartNumber, "quantity", pb.Quantity, "price", pb.Price)
			continue
		}
		currency := pb.Currency
		if currency == "" {
			currency = c.cfg.DefaultCurrency
		}
		p.AddPriceBreak(part.PriceBreak{Quantity: pb.Quantity, Price: price, Currency: currency})
	}
	p.SortPriceBreaks()

	for _, attr := range raw.ProductAttributes {
		if attr.Name == "" || attr.Value == "" {
			continue
		}
		p.AddParameter(part.Parameter{Name: attr.Name, Value: attr.Value})
	}

	return p
}
