package app

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"floorcheck/api/internal/archive"
	"floorcheck/api/internal/reconcile"
	"floorcheck/api/internal/search"
	"floorcheck/api/internal/store"
	"floorcheck/api/internal/util"
)

// SubmissionStore is the persistence surface the service needs. PostgresStore
// implements it; tests inject an in-memory fake.
type SubmissionStore interface {
	Ping(ctx context.Context) error
	InsertSubmission(ctx context.Context, sub store.Submission) error
	ListSubmissions(ctx context.Context, filter store.SubmissionFilter) ([]store.Submission, error)
	GetSubmission(ctx context.Context, id string) (store.Submission, error)
}

// Service owns the application logic behind the HTTP surface.
type Service struct {
	store      SubmissionStore
	reconciler *reconcile.Service
	search     *search.Service
	archive    *archive.Service
	syncToken  string
}

func NewService(st SubmissionStore, reconciler *reconcile.Service, searchSvc *search.Service, archiveSvc *archive.Service, syncToken string) *Service {
	return &Service{
		store:      st,
		reconciler: reconciler,
		search:     searchSvc,
		archive:    archiveSvc,
		syncToken:  syncToken,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) SyncToken() string {
	return s.syncToken
}

// SubmitInput is one inbound operator submission from a plant-floor client.
type SubmitInput struct {
	ID           string            `json:"id"`
	SubmittedBy  string            `json:"submittedBy"`
	SubmittedAt  string            `json:"submittedAt"` // RFC 3339; empty = receipt time
	Shift        string            `json:"shift"`
	Plant        string            `json:"plant"`
	Line         string            `json:"line"`
	Machine      string            `json:"machine"`
	ProcessOrder string            `json:"processOrder"`
	ReportDate   string            `json:"reportDate"` // YYYY-MM-DD
	HourHint     string            `json:"hourHint"`
	Fragments    []json.RawMessage `json:"fragments"`
}

// SubmitRecord validates and appends one submission, then indexes it for
// search. Re-sends of an already-stored ID are acknowledged without effect.
func (s *Service) SubmitRecord(ctx context.Context, input SubmitInput) (map[string]any, error) {
	if strings.TrimSpace(input.SubmittedBy) == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "submittedBy is required", nil)
	}
	if strings.TrimSpace(input.Shift) == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "shift is required", nil)
	}
	if strings.TrimSpace(input.ProcessOrder) == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "processOrder is required", nil)
	}
	if strings.TrimSpace(input.ReportDate) == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "reportDate is required", nil)
	}

	submittedAt := time.Now().UTC()
	if raw := strings.TrimSpace(input.SubmittedAt); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "submittedAt must be RFC 3339", nil)
		}
		submittedAt = parsed
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = util.NewID("sub")
	}

	fragments := make([]string, 0, len(input.Fragments))
	for _, raw := range input.Fragments {
		fragments = append(fragments, string(raw))
	}

	sub := store.Submission{
		ID:           id,
		SubmittedBy:  strings.TrimSpace(input.SubmittedBy),
		SubmittedAt:  submittedAt,
		Shift:        strings.TrimSpace(input.Shift),
		Plant:        strings.TrimSpace(input.Plant),
		Line:         strings.TrimSpace(input.Line),
		Machine:      strings.TrimSpace(input.Machine),
		ProcessOrder: strings.TrimSpace(input.ProcessOrder),
		ReportDate:   strings.TrimSpace(input.ReportDate),
		HourHint:     strings.TrimSpace(input.HourHint),
		Fragments:    fragments,
	}
	if err := s.store.InsertSubmission(ctx, sub); err != nil {
		return nil, err
	}

	if s.search != nil {
		s.search.IndexSubmission(search.SubmissionRecord{
			ID:           sub.ID,
			ProcessOrder: sub.ProcessOrder,
			Plant:        sub.Plant,
			Line:         sub.Line,
			Machine:      sub.Machine,
			Shift:        sub.Shift,
			ReportDate:   sub.ReportDate,
			SubmittedBy:  sub.SubmittedBy,
			Activities:   activityNames(fragments),
		})
	}

	return map[string]any{"ok": true, "id": sub.ID}, nil
}

// ShiftReport reconciles one scope into its report grid.
func (s *Service) ShiftReport(ctx context.Context, scope reconcile.Scope) (reconcile.Grid, error) {
	return s.reconciler.Reconcile(ctx, scope)
}

// ArchiveReport reconciles a scope and writes the resulting grid to object
// storage.
func (s *Service) ArchiveReport(ctx context.Context, scope reconcile.Scope) (map[string]any, error) {
	if s.archive == nil {
		return nil, domainError(http.StatusServiceUnavailable, "ARCHIVE_UNAVAILABLE", "Report archiving is not configured", nil)
	}
	grid, err := s.reconciler.Reconcile(ctx, scope)
	if err != nil {
		return nil, err
	}
	key, err := s.archive.PutGrid(ctx, scope.Key(), grid)
	if err != nil {
		return nil, err
	}
	return map[string]any{"ok": true, "objectKey": key}, nil
}

// Search queries past submissions.
func (s *Service) Search(q search.Query) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Total: 0, Query: q.Text}
	}
	return s.search.Search(q)
}

// activityNames extracts the distinct activity names from a submission's
// fragments for indexing. Malformed fragments contribute nothing.
func activityNames(fragments []string) string {
	seen := map[string]bool{}
	var names []string
	for _, fragment := range fragments {
		var entries []reconcile.Entry
		if err := json.Unmarshal([]byte(fragment), &entries); err != nil {
			continue
		}
		for _, entry := range entries {
			name := strings.TrimSpace(entry.ActivityName)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return strings.Join(names, " ")
}

// SubmissionSource adapts the store to the reconciliation engine's record
// source.
type SubmissionSource struct {
	store SubmissionStore
}

func NewSubmissionSource(st SubmissionStore) *SubmissionSource {
	return &SubmissionSource{store: st}
}

func (s *SubmissionSource) ListRecords(ctx context.Context, scope reconcile.Scope) ([]reconcile.Record, error) {
	subs, err := s.store.ListSubmissions(ctx, store.SubmissionFilter{
		ProcessOrder: scope.ProcessOrder,
		Plant:        scope.Plant,
		Line:         scope.Line,
		Machine:      scope.Machine,
		Shift:        scope.Shift,
		ReportDate:   scope.Date,
	})
	if err != nil {
		return nil, err
	}

	records := make([]reconcile.Record, 0, len(subs))
	for _, sub := range subs {
		records = append(records, reconcile.Record{
			ID:                sub.ID,
			SubmittedBy:       sub.SubmittedBy,
			SubmittedAt:       sub.SubmittedAt,
			Shift:             sub.Shift,
			Plant:             sub.Plant,
			Line:              sub.Line,
			Machine:           sub.Machine,
			ProcessOrder:      sub.ProcessOrder,
			HourHint:          sub.HourHint,
			SnapshotFragments: sub.Fragments,
		})
	}
	return records, nil
}
