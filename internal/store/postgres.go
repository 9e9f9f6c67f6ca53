package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InsertSubmission appends one raw submission. Duplicate IDs are rejected by
// the primary key; re-sends of the same record are client retries, not edits.
func (s *PostgresStore) InsertSubmission(ctx context.Context, sub Submission) error {
	fragments, err := json.Marshal(sub.Fragments)
	if err != nil {
		return fmt.Errorf("marshal fragments: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO submissions (
			id, submitted_by, submitted_at, shift, plant, line, machine,
			process_order, report_date, hour_hint, fragments
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`,
		sub.ID, sub.SubmittedBy, sub.SubmittedAt, sub.Shift, sub.Plant,
		sub.Line, sub.Machine, sub.ProcessOrder, sub.ReportDate,
		sub.HourHint, fragments,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// ListSubmissions returns every submission of one reporting scope, oldest
// first.
func (s *PostgresStore) ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, submitted_by, submitted_at, shift, plant, line, machine,
			process_order, report_date, hour_hint, fragments, created_at
		FROM submissions
		WHERE process_order = $1 AND plant = $2 AND line = $3
			AND machine = $4 AND shift = $5 AND report_date = $6
		ORDER BY submitted_at ASC, created_at ASC
	`,
		filter.ProcessOrder, filter.Plant, filter.Line,
		filter.Machine, filter.Shift, filter.ReportDate,
	)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var submissions []Submission
	for rows.Next() {
		var sub Submission
		var fragments []byte
		if err := rows.Scan(
			&sub.ID, &sub.SubmittedBy, &sub.SubmittedAt, &sub.Shift,
			&sub.Plant, &sub.Line, &sub.Machine, &sub.ProcessOrder,
			&sub.ReportDate, &sub.HourHint, &fragments, &sub.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if err := json.Unmarshal(fragments, &sub.Fragments); err != nil {
			// A damaged fragments column costs that record's snapshots,
			// never the listing.
			sub.Fragments = nil
		}
		submissions = append(submissions, sub)
	}
	return submissions, rows.Err()
}

// GetSubmission fetches one submission by ID.
func (s *PostgresStore) GetSubmission(ctx context.Context, id string) (Submission, error) {
	var sub Submission
	var fragments []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, submitted_by, submitted_at, shift, plant, line, machine,
			process_order, report_date, hour_hint, fragments, created_at
		FROM submissions
		WHERE id = $1
	`, id).Scan(
		&sub.ID, &sub.SubmittedBy, &sub.SubmittedAt, &sub.Shift,
		&sub.Plant, &sub.Line, &sub.Machine, &sub.ProcessOrder,
		&sub.ReportDate, &sub.HourHint, &fragments, &sub.CreatedAt,
	)
	if err != nil {
		return Submission{}, err
	}
	if err := json.Unmarshal(fragments, &sub.Fragments); err != nil {
		sub.Fragments = nil
	}
	return sub, nil
}
