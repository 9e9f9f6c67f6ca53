package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true. If Postgres is down the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search runs plainto_tsquery over the searchable submission columns with
// ts_rank ordering. The vector is computed inline; the submissions table
// carries no stored fts column.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	const vector = `to_tsvector('english',
		coalesce(s.process_order, '') || ' ' || coalesce(s.machine, '') || ' ' ||
		coalesce(s.line, '') || ' ' || coalesce(s.submitted_by, '') || ' ' ||
		coalesce(s.fragments::text, ''))`
	tsQuery := "plainto_tsquery('english', $1)"
	args := []any{q.Text}
	argN := 2

	where := vector + " @@ " + tsQuery
	if q.FilterShift != "" {
		where += fmt.Sprintf(" AND s.shift = $%d", argN)
		args = append(args, q.FilterShift)
		argN++
	}
	if q.FilterLine != "" {
		where += fmt.Sprintf(" AND s.line = $%d", argN)
		args = append(args, q.FilterLine)
		argN++
	}

	countSQL := fmt.Sprintf(`SELECT count(*) FROM submissions s WHERE %s`, where)
	dataSQL := fmt.Sprintf(`
		SELECT s.id, s.process_order, s.machine, s.line, s.shift, s.report_date,
			ts_rank(%s, %s) AS rank
		FROM submissions s
		WHERE %s
		ORDER BY rank DESC, s.submitted_at DESC
		LIMIT %d OFFSET %d`,
		vector, tsQuery, where, limit, offset)

	ctx := context.Background()

	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var rank float64
		if err := rows.Scan(&r.ID, &r.ProcessOrder, &r.Machine, &r.Line, &r.Shift, &r.ReportDate, &rank); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		r.Title = strings.TrimSpace(r.ProcessOrder + " / " + r.Machine)
		results = append(results, r)
	}

	return results, total, rows.Err()
}

// LoadAllRecords returns every submission as an indexable record for full
// reindexing.
func (p *PgFTS) LoadAllRecords(ctx context.Context) ([]SubmissionRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, process_order, plant, line, machine, shift, report_date, submitted_by
		FROM submissions
	`)
	if err != nil {
		return nil, fmt.Errorf("load submissions: %w", err)
	}
	defer rows.Close()

	records := make([]SubmissionRecord, 0)
	for rows.Next() {
		var rec SubmissionRecord
		if err := rows.Scan(&rec.ID, &rec.ProcessOrder, &rec.Plant, &rec.Line,
			&rec.Machine, &rec.Shift, &rec.ReportDate, &rec.SubmittedBy); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}

	return records, nil
}
