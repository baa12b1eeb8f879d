package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partbridge/internal/core/apperror"
	"partbridge/internal/domain/part"
	"partbridge/internal/infrastructure/config"
	"partbridge/internal/infrastructure/inventree"
	"partbridge/internal/infrastructure/supplier"
)

type fakeSupplier struct {
	slug        string
	displayName string
	companyID   *int
	parts       []part.Part
	searchErr   error
	finalizeErr error
	finalized   int
}

func (f *fakeSupplier) Slug() string    { return f.slug }
func (f *fakeSupplier) Name() string    { return f.displayName }
func (f *fakeSupplier) CompanyID() *int { return f.companyID }

func (f *fakeSupplier) Search(context.Context, string) ([]part.Part, int, error) {
	if f.searchErr != nil {
		return nil, 0, f.searchErr
	}
	return f.parts, len(f.parts), nil
}

func (f *fakeSupplier) Finalize(context.Context, *part.Part) error {
	f.finalized++
	return f.finalizeErr
}

type fakeInventree struct {
	categories      []inventree.Category
	createdParts    []inventree.CreatePartRequest
	supplierParts   []inventree.SupplierPartRequest
	parameters      []inventree.ParameterRequest
	createPartErr   error
	supplierPartErr error
	parameterErr    error
	partPK          int
}

func (f *fakeInventree) Ping(context.Context) error { return nil }

func (f *fakeInventree) ListCategories(context.Context) ([]inventree.Category, error) {
	return f.categories, nil
}

func (f *fakeInventree) CreatePart(_ context.Context, req inventree.CreatePartRequest) (inventree.CreatedPart, error) {
	if f.createPartErr != nil {
		return inventree.CreatedPart{}, f.createPartErr
	}
	f.createdParts = append(f.createdParts, req)
	return inventree.CreatedPart{PK: f.partPK}, nil
}

func (f *fakeInventree) CreateSupplierPart(_ context.Context, req inventree.SupplierPartRequest) error {
	if f.supplierPartErr != nil {
		return f.supplierPartErr
	}
	f.supplierParts = append(f.supplierParts, req)
	return nil
}

func (f *fakeInventree) CreateParameter(_ context.Context, req inventree.ParameterRequest) error {
	if f.parameterErr != nil {
		return f.parameterErr
	}
	f.parameters = append(f.parameters, req)
	return nil
}

func (f *fakeInventree) writes() int {
	return len(f.createdParts) + len(f.supplierParts) + len(f.parameters)
}

type fakeHistory struct {
	entries []HistoryEntry
}

func (f *fakeHistory) Record(_ context.Context, entry HistoryEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeHistory) List(context.Context, int) ([]HistoryEntry, error) {
	return f.entries, nil
}

func samplePart() part.Part {
	stock := 120
	return part.Part{
		Name:         "RC0805FR-0710KL",
		Description:  "RES 10K OHM 1% 1/8W 0805",
		Manufacturer: "Yageo",
		MPN:          "RC0805FR-0710KL",
		SKU:          "603-RC0805FR-0710KL",
		Supplier:     "Mouser",
		CategoryPath: []string{"Electronics", "Resistors"},
		Stock:        &stock,
		Parameters: []part.Parameter{
			{Name: "Resistance", Value: "10 kOhms"},
			{Name: "Tolerance", Value: "1%"},
		},
	}
}

func categoriesDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	yaml := "Electronics:\n  Resistors:\n  Capacitors:\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "categories.yaml"), []byte(yaml), 0o644))
	return dir
}

func newTestService(t *testing.T, sup *fakeSupplier, inv *fakeInventree, history History) *Service {
	t.Helper()
	svc, err := NewService(ServiceConfig{
		Registry:  supplier.NewRegistry(sup),
		Loader:    config.NewLoader(categoriesDir(t), nil),
		Inventree: inv,
		History:   history,
	})
	require.NoError(t, err)
	return svc
}

func TestServiceRequiresCollaborators(t *testing.T) {
	_, err := NewService(ServiceConfig{})
	require.Error(t, err)
	assert.True(t, apperror.IsConfiguration(err))
}

func TestPreviewNeverWrites(t *testing.T) {
	inv := &fakeInventree{partPK: 7}
	sup := &fakeSupplier{slug: "mouser", displayName: "Mouser", parts: []part.Part{samplePart()}}
	svc := newTestService(t, sup, inv, nil)

	preview, err := svc.Preview(context.Background(), "mouser", "RC0805FR-0710KL")
	require.NoError(t, err)

	assert.Zero(t, inv.writes())
	assert.Equal(t, 1, preview.MatchCount)
	assert.Equal(t, "Resistors", preview.MatchedCategory)
	assert.Equal(t, "RC0805FR-0710KL", preview.Part.MPN)
	assert.Equal(t, 1, sup.finalized)
}

func TestPreviewWarnsOnUnmappedCategory(t *testing.T) {
	p := samplePart()
	p.CategoryPath = []string{"Optoelectronics", "Laser Diodes"}
	sup := &fakeSupplier{slug: "mouser", displayName: "Mouser", parts: []part.Part{p}}
	svc := newTestService(t, sup, &fakeInventree{}, nil)

	preview, err := svc.Preview(context.Background(), "mouser", "RC0805FR-0710KL")
	require.NoError(t, err)

	assert.Empty(t, preview.MatchedCategory)
	require.Len(t, preview.Warnings, 1)
	assert.Contains(t, preview.Warnings[0], "no category mapping")
}

func TestResolvePrefersExactMatch(t *testing.T) {
	first := samplePart()
	first.SKU = "603-ABC-1"
	first.MPN = "ABC-1"
	second := samplePart()
	second.SKU = "603-ABC"
	second.MPN = "ABC"
	sup := &fakeSupplier{slug: "mouser", displayName: "Mouser", parts: []part.Part{first, second}}
	svc := newTestService(t, sup, &fakeInventree{}, nil)

	selected, count, err := svc.resolve(context.Background(), sup, "abc")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "ABC", selected.MPN)

	// No exact hit falls back to the first result.
	selected, _, err = svc.resolve(context.Background(), sup, "AB")
	require.NoError(t, err)
	assert.Equal(t, "ABC-1", selected.MPN)
}

func TestImportSuccess(t *testing.T) {
	companyID := 4
	inv := &fakeInventree{
		partPK: 7,
		categories: []inventree.Category{
			{PK: 9, Name: "Resistors", PathString: "Electronics/Resistors"},
		},
	}
	history := &fakeHistory{}
	sup := &fakeSupplier{
		slug: "mouser", displayName: "Mouser",
		companyID: &companyID,
		parts:     []part.Part{samplePart()},
	}
	svc := newTestService(t, sup, inv, history)

	attempt, err := svc.Import(context.Background(), "mouser", "RC0805FR-0710KL", nil)
	require.NoError(t, err)

	assert.Equal(t, ResultSuccess, attempt.Result)
	assert.Equal(t, 7, attempt.PartID)
	assert.Equal(t, "Resistors", attempt.MatchedCategory)
	assert.Empty(t, attempt.Warnings)

	require.Len(t, inv.createdParts, 1)
	assert.Equal(t, 9, inv.createdParts[0].Category, "resolved category id is used")
	assert.True(t, inv.createdParts[0].Purchaseable)

	require.Len(t, inv.supplierParts, 1)
	assert.Equal(t, 7, inv.supplierParts[0].Part)
	assert.Equal(t, 4, inv.supplierParts[0].Supplier)
	assert.Equal(t, "603-RC0805FR-0710KL", inv.supplierParts[0].SKU)

	assert.Len(t, inv.parameters, 2)

	require.Len(t, history.entries, 1)
	assert.Equal(t, ResultSuccess, history.entries[0].Result)
	assert.NotEmpty(t, history.entries[0].RawPart)
	assert.Equal(t, "Resistors", history.entries[0].MatchedCategory)
}

func TestImportRejectionIsFailure(t *testing.T) {
	inv := &fakeInventree{
		createPartErr: apperror.NewInventreeRejected("part with this name already exists"),
	}
	history := &fakeHistory{}
	sup := &fakeSupplier{slug: "mouser", displayName: "Mouser", parts: []part.Part{samplePart()}}
	svc := newTestService(t, sup, inv, history)

	attempt, err := svc.Import(context.Background(), "mouser", "RC0805FR-0710KL", nil)
	require.NoError(t, err)

	assert.Equal(t, ResultFailure, attempt.Result)
	assert.Equal(t, "part with this name already exists", attempt.Message)
	assert.Zero(t, attempt.PartID)
	require.Len(t, history.entries, 1)
	assert.Equal(t, ResultFailure, history.entries[0].Result)
}

func TestImportTransportErrorIsError(t *testing.T) {
	inv := &fakeInventree{createPartErr: errors.New("dial tcp: connection refused")}
	sup := &fakeSupplier{slug: "mouser", displayName: "Mouser", parts: []part.Part{samplePart()}}
	svc := newTestService(t, sup, inv, nil)

	attempt, err := svc.Import(context.Background(), "mouser", "RC0805FR-0710KL", nil)
	require.NoError(t, err)
	assert.Equal(t, ResultError, attempt.Result)
	assert.Contains(t, attempt.Message, "connection refused")
}

func TestImportRejectedRelatedRecordsAreIncomplete(t *testing.T) {
	companyID := 4
	inv := &fakeInventree{
		partPK:          7,
		supplierPartErr: apperror.NewInventreeRejected("duplicate SKU"),
	}
	sup := &fakeSupplier{
		slug: "mouser", displayName: "Mouser",
		companyID: &companyID,
		parts:     []part.Part{samplePart()},
	}
	svc := newTestService(t, sup, inv, nil)

	attempt, err := svc.Import(context.Background(), "mouser", "RC0805FR-0710KL", nil)
	require.NoError(t, err)

	assert.Equal(t, ResultIncomplete, attempt.Result)
	assert.Equal(t, 7, attempt.PartID)
	require.NotEmpty(t, attempt.Warnings)
	assert.Contains(t, attempt.Warnings[0], "supplier part not created")
	assert.Len(t, inv.parameters, 2, "parameters are still attempted")
}

func TestImportNoResultsIsNotFound(t *testing.T) {
	history := &fakeHistory{}
	sup := &fakeSupplier{slug: "mouser", displayName: "Mouser"}
	svc := newTestService(t, sup, &fakeInventree{}, history)

	attempt, err := svc.Import(context.Background(), "mouser", "NOPE", nil)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, ResultError, attempt.Result)
	require.Len(t, history.entries, 1)
	assert.Equal(t, ResultError, history.entries[0].Result)
	assert.Empty(t, history.entries[0].RawPart)
}

func TestImportAppliesOverrides(t *testing.T) {
	inv := &fakeInventree{partPK: 7}
	sup := &fakeSupplier{slug: "mouser", displayName: "Mouser", parts: []part.Part{samplePart()}}
	svc := newTestService(t, sup, inv, nil)

	overrides := &part.Overrides{Description: "hand-checked resistor"}
	attempt, err := svc.Import(context.Background(), "mouser", "RC0805FR-0710KL", overrides)
	require.NoError(t, err)

	assert.Equal(t, ResultSuccess, attempt.Result)
	require.Len(t, inv.createdParts, 1)
	assert.Equal(t, "hand-checked resistor", inv.createdParts[0].Description)
}

func TestImportBadOverridesStopBeforeCommit(t *testing.T) {
	inv := &fakeInventree{partPK: 7}
	sup := &fakeSupplier{slug: "mouser", displayName: "Mouser", parts: []part.Part{samplePart()}}
	svc := newTestService(t, sup, inv, nil)

	overrides := &part.Overrides{
		PriceBreaks: []part.PriceBreakOverride{{Quantity: "five", Price: "0.10"}},
	}
	attempt, err := svc.Import(context.Background(), "mouser", "RC0805FR-0710KL", overrides)
	require.Error(t, err)
	assert.Equal(t, ResultError, attempt.Result)
	assert.Zero(t, inv.writes())
}

func TestUnknownSupplier(t *testing.T) {
	svc := newTestService(t, &fakeSupplier{slug: "mouser", displayName: "Mouser"}, &fakeInventree{}, nil)

	_, err := svc.Preview(context.Background(), "farnell", "ABC")
	require.Error(t, err)
	assert.True(t, apperror.IsConfiguration(err))
}

func TestHistoryWithoutStoreIsEmpty(t *testing.T) {
	svc := newTestService(t, &fakeSupplier{slug: "mouser", displayName: "Mouser"}, &fakeInventree{}, nil)

	entries, err := svc.History(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
