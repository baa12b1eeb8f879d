package dto

import (
	"partbridge/internal/domain/part"
)

// SearchResponse lists all raw supplier matches for a part number.
type SearchResponse struct {
	Supplier   string      `json:"supplier"`
	PartNumber string      `json:"part_number"`
	Count      int         `json:"count"`
	Parts      []part.Part `json:"parts"`
}

// PreviewRequest resolves a part number without writing anything.
type PreviewRequest struct {
	Supplier   string `json:"supplier" binding:"required"`
	PartNumber string `json:"part_number" binding:"required"`
}

// ImportRequest creates inventory records for a part number. Overrides
// are applied to the supplier data before the records are created.
type ImportRequest struct {
	Supplier   string          `json:"supplier" binding:"required"`
	PartNumber string          `json:"part_number" binding:"required"`
	Overrides  *part.Overrides `json:"overrides,omitempty"`
}
