// internal/agents/knowledge/postgres.go
package knowledge

import (
	"context"
	"database/sql"
	"errors"

	commonerrors "scam-analyzer/internal/common/errors"
	"scam-analyzer/internal/models"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS scam_indicators (
	indicator_type     TEXT        NOT NULL,
	value              TEXT        NOT NULL,
	category           TEXT        NOT NULL DEFAULT 'other',
	confidence         DOUBLE PRECISION NOT NULL,
	first_seen         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	confirmation_count INTEGER     NOT NULL DEFAULT 1,
	PRIMARY KEY (indicator_type, value)
)`

const getQuery = `
SELECT indicator_type, value, category, confidence, first_seen, confirmation_count
FROM scam_indicators
WHERE indicator_type = $1 AND value = $2`

// confirmQuery is a single atomic increment-or-insert. The GREATEST keeps
// confidence monotone even if an operator has seeded a higher value by hand.
const confirmQuery = `
INSERT INTO scam_indicators (indicator_type, value, category, confidence, confirmation_count)
VALUES ($1, $2, $3, 1 - POWER($4::double precision, 1), 1)
ON CONFLICT (indicator_type, value) DO UPDATE SET
	confirmation_count = scam_indicators.confirmation_count + 1,
	confidence = GREATEST(
		scam_indicators.confidence,
		1 - POWER($4::double precision, scam_indicators.confirmation_count + 1)
	)
RETURNING indicator_type, value, category, confidence, first_seen, confirmation_count`

const byTypeQuery = `
SELECT indicator_type, value, category, confidence, first_seen, confirmation_count
FROM scam_indicators
WHERE indicator_type = $1
ORDER BY value`

// PostgresStore keeps indicators in PostgreSQL.
type PostgresStore struct {
	db    *sql.DB
	decay float64
}

// NewPostgresStore wraps an open connection. decay parameterizes the
// confidence curve; callers pass the configured value so the SQL and
// in-process math agree.
func NewPostgresStore(db *sql.DB, decay float64) *PostgresStore {
	return &PostgresStore{db: db, decay: decay}
}

// EnsureSchema creates the indicator table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return commonerrors.NewKnowledgeConnectionFailedError(err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key models.IndicatorKey) (*models.KnowledgeEntry, error) {
	row := s.db.QueryRowContext(ctx, getQuery, string(key.Type), NormalizeValue(key.Value))
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, commonerrors.NewKnowledgeLookupFailedError(err)
	}
	return entry, nil
}

func (s *PostgresStore) Confirm(ctx context.Context, indicatorType models.IndicatorType, value string, category models.IndicatorCategory) (*models.KnowledgeEntry, error) {
	row := s.db.QueryRowContext(ctx, confirmQuery,
		string(indicatorType), NormalizeValue(value), string(category), s.decay)
	entry, err := scanEntry(row)
	if err != nil {
		return nil, commonerrors.NewKnowledgeWriteFailedError(err)
	}
	return entry, nil
}

func (s *PostgresStore) ByType(ctx context.Context, indicatorType models.IndicatorType) ([]models.KnowledgeEntry, error) {
	rows, err := s.db.QueryContext(ctx, byTypeQuery, string(indicatorType))
	if err != nil {
		return nil, commonerrors.NewKnowledgeLookupFailedError(err)
	}
	defer rows.Close()

	var entries []models.KnowledgeEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, commonerrors.NewKnowledgeLookupFailedError(err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewKnowledgeLookupFailedError(err)
	}
	return entries, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*models.KnowledgeEntry, error) {
	var e models.KnowledgeEntry
	var typ, cat string
	if err := row.Scan(&typ, &e.Value, &cat, &e.Confidence, &e.FirstSeen, &e.ConfirmationCount); err != nil {
		return nil, err
	}
	e.IndicatorType = models.IndicatorType(typ)
	e.Category = models.IndicatorCategory(cat)
	return &e, nil
}
