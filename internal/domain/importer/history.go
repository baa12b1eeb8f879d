package importer

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HistoryEntry records a single import attempt.
type HistoryEntry struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Supplier        string    `db:"supplier" json:"supplier"`
	PartNumber      string    `db:"part_number" json:"part_number"`
	Result          Result    `db:"result" json:"result"`
	Message         string    `db:"message" json:"message,omitempty"`
	MatchedCategory string    `db:"matched_category" json:"matched_category,omitempty"`
	RawPart         []byte    `db:"-" json:"raw_part,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// History persists import attempts. Implementations must be safe for
// concurrent use.
type History interface {
	Record(ctx context.Context, entry HistoryEntry) error
	List(ctx context.Context, limit int) ([]HistoryEntry, error)
}
