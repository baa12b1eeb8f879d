package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"partbridge/internal/core/apperror"
	"partbridge/internal/domain/part"
	"partbridge/internal/infrastructure/config"
	"partbridge/internal/infrastructure/inventree"
	"partbridge/internal/infrastructure/supplier"
	"partbridge/pkg/logger"
)

var tracer = otel.Tracer("partbridge/importer")

// Preview is the read-only projection of what an import would create.
type Preview struct {
	Supplier        string    `json:"supplier"`
	SupplierName    string    `json:"supplier_name"`
	PartNumber      string    `json:"part_number"`
	MatchCount      int       `json:"match_count"`
	Part            part.Part `json:"part"`
	MatchedCategory string    `json:"matched_category,omitempty"`
	CategoryID      int       `json:"category_id,omitempty"`
	Warnings        []string  `json:"warnings,omitempty"`
}

// Attempt is the outcome of one import run.
type Attempt struct {
	Supplier        string   `json:"supplier"`
	PartNumber      string   `json:"part_number"`
	Result          Result   `json:"result"`
	Message         string   `json:"message,omitempty"`
	PartID          int      `json:"part_id,omitempty"`
	MatchedCategory string   `json:"matched_category,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

// ServiceConfig wires the orchestrator's collaborators.
type ServiceConfig struct {
	Registry        *supplier.Registry
	Loader          *config.Loader
	Inventree       inventree.API
	History         History // optional
	Logger          *logger.Logger
	DefaultCurrency string
}

// Service runs the search, preview and import flows.
type Service struct {
	registry        *supplier.Registry
	loader          *config.Loader
	inv             inventree.API
	history         History
	log             *logger.Logger
	defaultCurrency string
}

// NewService creates the orchestrator. Registry, loader and inventory
// client are required.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Registry == nil || cfg.Loader == nil || cfg.Inventree == nil {
		return nil, apperror.NewConfiguration("importer requires a supplier registry, a config loader and an inventory client")
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	currency := cfg.DefaultCurrency
	if currency == "" {
		currency = "EUR"
	}
	return &Service{
		registry:        cfg.Registry,
		loader:          cfg.Loader,
		inv:             cfg.Inventree,
		history:         cfg.History,
		log:             log.WithComponent("importer"),
		defaultCurrency: currency,
	}, nil
}

// Search queries one supplier and returns all raw matches.
func (s *Service) Search(ctx context.Context, slug, partNumber string) ([]part.Part, int, error) {
	client, err := s.registry.Get(slug)
	if err != nil {
		return nil, 0, err
	}

	ctx, span := tracer.Start(ctx, "supplier.search",
		trace.WithAttributes(
			attribute.String("supplier", client.Slug()),
			attribute.String("part_number", partNumber),
		))
	defer span.End()

	return client.Search(ctx, partNumber)
}

// Preview resolves a part number the same way Import does but never
// writes: all inventory calls go through a write-blocking wrapper.
func (s *Service) Preview(ctx context.Context, slug, partNumber string) (*Preview, error) {
	client, err := s.registry.Get(slug)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "import.preview",
		trace.WithAttributes(
			attribute.String("supplier", client.Slug()),
			attribute.String("part_number", partNumber),
		))
	defer span.End()

	dry := &inventree.Dry{Reads: s.inv}
	snapshot, err := s.loader.Ensure(ctx, dry)
	if err != nil {
		return nil, err
	}

	selected, count, err := s.resolve(ctx, client, partNumber)
	if err != nil {
		return nil, err
	}

	preview := &Preview{
		Supplier:     client.Slug(),
		SupplierName: client.Name(),
		PartNumber:   partNumber,
		MatchCount:   count,
	}

	if err := client.Finalize(ctx, selected); err != nil {
		preview.Warnings = append(preview.Warnings,
			fmt.Sprintf("pricing details unavailable: %s", errMessage(err)))
	}
	selected.SortPriceBreaks()

	if entry, ok := snapshot.Categories.Match(selected.CategoryPath); ok {
		preview.MatchedCategory = entry.Path[len(entry.Path)-1]
		preview.CategoryID = entry.ID
	} else if len(selected.CategoryPath) > 0 {
		preview.Warnings = append(preview.Warnings,
			fmt.Sprintf("no category mapping for %q", strings.Join(selected.CategoryPath, " / ")))
	}

	warnings, err := snapshot.Rules.Evaluate(*selected)
	preview.Warnings = append(preview.Warnings, warnings...)
	if err != nil {
		return nil, err
	}

	preview.Part = *selected
	return preview, nil
}

// Import resolves a part number and creates the inventory records. The
// returned attempt carries the outcome classification; a non-nil error
// means the flow stopped before any committed decision and maps to an
// HTTP status through its app error code.
func (s *Service) Import(ctx context.Context, slug, partNumber string, overrides *part.Overrides) (*Attempt, error) {
	client, err := s.registry.Get(slug)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "import.commit",
		trace.WithAttributes(
			attribute.String("supplier", client.Slug()),
			attribute.String("part_number", partNumber),
		))
	defer span.End()

	// Reload so category-map edits made between requests take effect.
	snapshot, err := s.loader.Reload(ctx, s.inv)
	if err != nil {
		return nil, err
	}

	attempt := &Attempt{Supplier: client.Slug(), PartNumber: partNumber}

	selected, _, err := s.resolve(ctx, client, partNumber)
	if err != nil {
		return s.fail(ctx, attempt, nil, err)
	}

	if err := client.Finalize(ctx, selected); err != nil {
		return s.fail(ctx, attempt, selected, err)
	}

	if overrides != nil && !overrides.IsZero() {
		if err := overrides.Apply(selected, s.defaultCurrency); err != nil {
			return s.fail(ctx, attempt, selected, err)
		}
	}
	selected.SortPriceBreaks()

	warnings, err := snapshot.Rules.Evaluate(*selected)
	attempt.Warnings = append(attempt.Warnings, warnings...)
	if err != nil {
		return s.fail(ctx, attempt, selected, err)
	}

	var categoryID int
	if entry, ok := snapshot.Categories.Match(selected.CategoryPath); ok {
		attempt.MatchedCategory = entry.Path[len(entry.Path)-1]
		categoryID = entry.ID
	} else if len(selected.CategoryPath) > 0 {
		attempt.Warnings = append(attempt.Warnings,
			fmt.Sprintf("no category mapping for %q", strings.Join(selected.CategoryPath, " / ")))
	}

	s.commit(ctx, client, attempt, selected, categoryID)
	s.record(ctx, attempt, selected)

	s.log.WithContext(ctx).Infow("import finished",
		"supplier", attempt.Supplier,
		"part_number", attempt.PartNumber,
		"result", attempt.Result,
		"part_id", attempt.PartID,
	)
	return attempt, nil
}

// History returns the most recent import attempts. Without a configured
// store the history is empty.
func (s *Service) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if s.history == nil {
		return []HistoryEntry{}, nil
	}
	return s.history.List(ctx, limit)
}

// resolve searches the supplier and picks the best match: an exact
// case-insensitive SKU or MPN hit wins, otherwise the first result.
func (s *Service) resolve(ctx context.Context, client supplier.Client, partNumber string) (*part.Part, int, error) {
	parts, count, err := client.Search(ctx, partNumber)
	if err != nil {
		return nil, 0, err
	}
	if len(parts) == 0 {
		return nil, 0, apperror.NewNotFound(
			fmt.Sprintf("no results for %q from %s", partNumber, client.Name()))
	}

	selected := parts[0]
	for _, p := range parts {
		if p.MatchesQuery(partNumber) {
			selected = p
			break
		}
	}
	return &selected, count, nil
}

// commit creates the part and its related records. A rejected base part
// is a FAILURE; rejected related records leave the attempt INCOMPLETE.
func (s *Service) commit(ctx context.Context, client supplier.Client, attempt *Attempt, p *part.Part, categoryID int) {
	name := p.Name
	if name == "" {
		name = p.MPN
	}

	created, err := s.inv.CreatePart(ctx, inventree.CreatePartRequest{
		Name:         name,
		Description:  p.Description,
		Category:     categoryID,
		Purchaseable: true,
	})
	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeInventreeRejected {
			attempt.Result = ResultFailure
			attempt.Message = appErr.Message
		} else {
			attempt.Result = ResultError
			attempt.Message = errMessage(err)
		}
		return
	}
	attempt.PartID = created.PartID()

	incomplete := false

	if companyID := client.CompanyID(); companyID != nil && p.SKU != "" {
		err := s.inv.CreateSupplierPart(ctx, inventree.SupplierPartRequest{
			Part:     attempt.PartID,
			SKU:      p.SKU,
			Supplier: *companyID,
			MPN:      p.MPN,
		})
		if err != nil {
			incomplete = true
			attempt.Warnings = append(attempt.Warnings,
				fmt.Sprintf("supplier part not created: %s", errMessage(err)))
		}
	}

	for _, param := range p.Parameters {
		err := s.inv.CreateParameter(ctx, inventree.ParameterRequest{
			Part:  attempt.PartID,
			Name:  param.Name,
			Value: param.Value,
		})
		if err != nil {
			incomplete = true
			attempt.Warnings = append(attempt.Warnings,
				fmt.Sprintf("parameter %q not created: %s", param.Name, errMessage(err)))
		}
	}

	if incomplete {
		attempt.Result = ResultIncomplete
		attempt.Message = "part created with missing related records"
		return
	}
	attempt.Result = ResultSuccess
}

// fail classifies a pre-commit error, records it and returns it.
func (s *Service) fail(ctx context.Context, attempt *Attempt, p *part.Part, err error) (*Attempt, error) {
	attempt.Result = ResultError
	attempt.Message = errMessage(err)
	s.record(ctx, attempt, p)
	return attempt, err
}

func (s *Service) record(ctx context.Context, attempt *Attempt, p *part.Part) {
	if s.history == nil {
		return
	}

	var raw []byte
	if p != nil {
		encoded, err := json.Marshal(p)
		if err == nil {
			raw = encoded
		}
	}

	err := s.history.Record(ctx, HistoryEntry{
		Supplier:        attempt.Supplier,
		PartNumber:      attempt.PartNumber,
		Result:          attempt.Result,
		Message:         attempt.Message,
		MatchedCategory: attempt.MatchedCategory,
		RawPart:         raw,
	})
	if err != nil {
		s.log.WithContext(ctx).Warnw("import history not recorded", "error", err)
	}
}

func errMessage(err error) string {
	if appErr, ok := apperror.AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}
