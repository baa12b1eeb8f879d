package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"partbridge/internal/domain/importer"
)

// CompressionAlgo specifies how a raw part document is stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

const importLogTable = "import_log"

var importLogColumns = []string{
	"id", "supplier", "part_number", "result", "message",
	"matched_category", "raw_part", "raw_compressed", "compression_algo",
	"created_at",
}

// importLogRow is the table shape. RawPart holds the part document as
// submitted; large documents are zstd-compressed into RawCompressed.
type importLogRow struct {
	ID              uuid.UUID       `db:"id"`
	Supplier        string          `db:"supplier"`
	PartNumber      string          `db:"part_number"`
	Result          string          `db:"result"`
	Message         string          `db:"message"`
	MatchedCategory string          `db:"matched_category"`
	RawPart         []byte          `db:"raw_part"`
	RawCompressed   []byte          `db:"raw_compressed"`
	CompressionAlgo CompressionAlgo `db:"compression_algo"`
	CreatedAt       time.Time       `db:"created_at"`
}

// ImportLogStore persists import attempts. It implements importer.History.
type ImportLogStore struct {
	pool              *Pool
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewImportLogStore creates the store. The threshold controls when raw
// part documents are compressed before insert.
func NewImportLogStore(pool *Pool) (*ImportLogStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &ImportLogStore{
		pool:              pool,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 4 * 1024,
	}, nil
}

const importLogSchema = `
	CREATE TABLE IF NOT EXISTS import_log (
		id               UUID PRIMARY KEY,
		supplier         TEXT NOT NULL,
		part_number      TEXT NOT NULL,
		result           TEXT NOT NULL,
		message          TEXT NOT NULL DEFAULT '',
		matched_category TEXT NOT NULL DEFAULT '',
		raw_part         BYTEA,
		raw_compressed   BYTEA,
		compression_algo TEXT NOT NULL DEFAULT 'none',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// EnsureSchema creates the import_log table when it does not exist yet.
func (s *ImportLogStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, importLogSchema); err != nil {
		return fmt.Errorf("create %s: %w", importLogTable, err)
	}
	return nil
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (s *ImportLogStore) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Record inserts one import attempt.
func (s *ImportLogStore) Record(ctx context.Context, entry importer.HistoryEntry) error {
	row := s.toRow(entry)

	q := s.Builder().
		Insert(importLogTable).
		Columns(importLogColumns...).
		Values(
			row.ID, row.Supplier, row.PartNumber, row.Result, row.Message,
			row.MatchedCategory, row.RawPart, row.RawCompressed,
			row.CompressionAlgo, row.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", importLogTable, err)
	}
	return nil
}

// List returns the most recent import attempts, newest first.
func (s *ImportLogStore) List(ctx context.Context, limit int) ([]importer.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	q := s.Builder().
		Select(importLogColumns...).
		From(importLogTable).
		OrderBy("created_at DESC").
		Limit(uint64(limit))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rows []importLogRow
	if err := pgxscan.Select(ctx, s.pool, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", importLogTable, err)
	}

	entries := make([]importer.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := s.fromRow(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *ImportLogStore) toRow(entry importer.HistoryEntry) importLogRow {
	row := importLogRow{
		ID:              entry.ID,
		Supplier:        entry.Supplier,
		PartNumber:      entry.PartNumber,
		Result:          entry.Result.String(),
		Message:         entry.Message,
		MatchedCategory: entry.MatchedCategory,
		CompressionAlgo: CompressionNone,
		CreatedAt:       entry.CreatedAt,
	}

	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	if len(entry.RawPart) > s.compressThreshold {
		row.RawCompressed = s.encoder.EncodeAll(entry.RawPart, nil)
		row.CompressionAlgo = CompressionZstd
	} else {
		row.RawPart = entry.RawPart
	}
	return row
}

func (s *ImportLogStore) fromRow(row importLogRow) (importer.HistoryEntry, error) {
	entry := importer.HistoryEntry{
		ID:              row.ID,
		Supplier:        row.Supplier,
		PartNumber:      row.PartNumber,
		Result:          importer.Result(row.Result),
		Message:         row.Message,
		MatchedCategory: row.MatchedCategory,
		RawPart:         row.RawPart,
		CreatedAt:       row.CreatedAt,
	}

	if row.CompressionAlgo == CompressionZstd && len(row.RawCompressed) > 0 {
		raw, err := s.decoder.DecodeAll(row.RawCompressed, nil)
		if err != nil {
			return importer.HistoryEntry{}, fmt.Errorf("decompress raw part: %w", err)
		}
		entry.RawPart = raw
	}
	return entry, nil
}
