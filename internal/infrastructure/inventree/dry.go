package inventree

import (
	"context"
)

// Dry is an API implementation that forwards reads to a backing client and
// records write calls without performing them. It backs the preview path,
// which must never mutate inventory state, and tests that assert on write
// counts.
type Dry struct {
	// Reads is the backing API for read operations. Nil means reads
	// succeed with empty results.
	Reads API

	// WriteCalls counts rejected write attempts.
	WriteCalls int
}

// NewDry wraps an API so only its read operations are reachable.
func NewDry(reads API) *Dry {
	return &Dry{Reads: reads}
}

func (d *Dry) Ping(ctx context.Context) error {
	if d.Reads == nil {
		return nil
	}
	return d.Reads.Ping(ctx)
}

func (d *Dry) ListCategories(ctx context.Context) ([]Category, error) {
	if d.Reads == nil {
		return nil, nil
	}
	return d.Reads.ListCategories(ctx)
}

// CreatePart records the attempt and reports a part that was never created.
func (d *Dry) CreatePart(_ context.Context, _ CreatePartRequest) (CreatedPart, error) {
	d.WriteCalls++
	return CreatedPart{}, nil
}

func (d *Dry) CreateSupplierPart(_ context.Context, _ SupplierPartRequest) error {
	d.WriteCalls++
	return nil
}

func (d *Dry) CreateParameter(_ context.Context, _ ParameterRequest) error {
	d.WriteCalls++
	return nil
}
