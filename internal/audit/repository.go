package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Repository persists CallRecords to Postgres. It mirrors
// internal/repository's pgx CRUD shape, narrowed to create, read and delete:
// call records are never updated after being written.
type Repository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewRepository creates a new audit repository.
func NewRepository(db *pgxpool.Pool, logger *logrus.Logger) *Repository {
	return &Repository{db: db, log: logger}
}

// applyDefaults fills in ID and CreatedAt when the caller left them zero.
func applyDefaults(rec *CallRecord) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
}

// Create inserts a new call record.
func (r *Repository) Create(ctx context.Context, rec *CallRecord) error {
	applyDefaults(rec)

	warningCodes, err := json.Marshal(rec.WarningCodes)
	if err != nil {
		return fmt.Errorf("marshaling warning codes: %w", err)
	}
	phaseElapsed, err := json.Marshal(rec.PhaseElapsedMs)
	if err != nil {
		return fmt.Errorf("marshaling phase timings: %w", err)
	}

	query := `
		INSERT INTO parse_call_records (
			id, request_id, template_id, locale_units, input_bytes,
			warning_codes, phase_elapsed_ms, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)`

	_, err = r.db.Exec(ctx, query,
		rec.ID,
		rec.RequestID,
		rec.TemplateID,
		rec.LocaleUnits,
		rec.InputBytes,
		warningCodes,
		phaseElapsed,
		rec.CreatedAt,
	)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": rec.RequestID,
			"error":      err,
		}).Error("Failed to record parse call")
		return fmt.Errorf("creating call record: %w", err)
	}

	r.log.WithField("request_id", rec.RequestID).Debug("Parse call recorded")
	return nil
}

// GetByRequestID retrieves a call record by its request id.
func (r *Repository) GetByRequestID(ctx context.Context, requestID string) (*CallRecord, error) {
	query := `
		SELECT id, request_id, template_id, locale_units, input_bytes,
			   warning_codes, phase_elapsed_ms, created_at
		FROM parse_call_records
		WHERE request_id = $1`

	var rec CallRecord
	var warningCodes, phaseElapsed []byte

	err := r.db.QueryRow(ctx, query, requestID).Scan(
		&rec.ID, &rec.RequestID, &rec.TemplateID, &rec.LocaleUnits, &rec.InputBytes,
		&warningCodes, &phaseElapsed, &rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("querying call record: %w", err)
	}

	if err := json.Unmarshal(warningCodes, &rec.WarningCodes); err != nil {
		return nil, fmt.Errorf("unmarshaling warning codes: %w", err)
	}
	if err := json.Unmarshal(phaseElapsed, &rec.PhaseElapsedMs); err != nil {
		return nil, fmt.Errorf("unmarshaling phase timings: %w", err)
	}

	return &rec, nil
}

// List returns the most recent call records, newest first, bounded by
// limit/offset.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*CallRecord, error) {
	query := `
		SELECT id, request_id, template_id, locale_units, input_bytes,
			   warning_codes, phase_elapsed_ms, created_at
		FROM parse_call_records
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing call records: %w", err)
	}
	defer rows.Close()

	var records []*CallRecord
	for rows.Next() {
		var rec CallRecord
		var warningCodes, phaseElapsed []byte

		if err := rows.Scan(
			&rec.ID, &rec.RequestID, &rec.TemplateID, &rec.LocaleUnits, &rec.InputBytes,
			&warningCodes, &phaseElapsed, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning call record: %w", err)
		}
		if err := json.Unmarshal(warningCodes, &rec.WarningCodes); err != nil {
			return nil, fmt.Errorf("unmarshaling warning codes: %w", err)
		}
		if err := json.Unmarshal(phaseElapsed, &rec.PhaseElapsedMs); err != nil {
			return nil, fmt.Errorf("unmarshaling phase timings: %w", err)
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// Delete removes a call record by id, used for retention cleanup.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM parse_call_records WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting call record: %w", err)
	}
	return nil
}
