package handlers

import (
	"github.com/gin-gonic/gin"

	"partbridge/internal/core/apperror"
	"partbridge/internal/domain/importer"
	"partbridge/internal/infrastructure/http/v1/dto"
)

// ImporterHandler exposes the search, preview and import operations.
type ImporterHandler struct {
	*BaseHandler
	service *importer.Service
}

// NewImporterHandler creates a new importer handler.
func NewImporterHandler(base *BaseHandler, service *importer.Service) *ImporterHandler {
	return &ImporterHandler{BaseHandler: base, service: service}
}

// Search lists all supplier matches for a part number.
// POST /api/v1/search/:supplier
func (h *ImporterHandler) Search(c *gin.Context) {
	slug := c.Param("supplier")
	partNumber := c.Query("part_number")
	if partNumber == "" {
		h.Error(c, apperror.NewValidation("part_number query parameter is required"))
		return
	}

	parts, count, err := h.service.Search(c.Request.Context(), slug, partNumber)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.SearchResponse{
		Supplier:   slug,
		PartNumber: partNumber,
		Count:      count,
		Parts:      parts,
	})
}

// Preview resolves a part number without writing anything.
// POST /api/v1/import/preview
func (h *ImporterHandler) Preview(c *gin.Context) {
	var req dto.PreviewRequest
	if !h.BindJSON(c, &req) {
		return
	}

	preview, err := h.service.Preview(c.Request.Context(), req.Supplier, req.PartNumber)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, preview)
}

// Import creates inventory records for a part number.
// POST /api/v1/import
func (h *ImporterHandler) Import(c *gin.Context) {
	var req dto.ImportRequest
	if !h.BindJSON(c, &req) {
		return
	}

	attempt, err := h.service.Import(c.Request.Context(), req.Supplier, req.PartNumber, req.Overrides)
	if err != nil {
		h.Error(c, err)
		return
	}

	if attempt.Result.Committed() {
		h.Created(c, attempt)
		return
	}
	h.OK(c, attempt)
}

// History lists recent import attempts, newest first.
// GET /api/v1/imports
func (h *ImporterHandler) History(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 50)

	entries, err := h.service.History(c.Request.Context(), limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: entries, Count: len(entries)})
}
