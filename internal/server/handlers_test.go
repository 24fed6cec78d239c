package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trendpulse/internal/config"
	"trendpulse/internal/core"
	"trendpulse/internal/persistence"
)

// fakeDB implements persistence.Database with canned data.
type fakeDB struct {
	pingErr     error
	snapshot    *core.Snapshot
	keywords    []core.KeywordRow
	sources     []core.SourceRow
	incremented []string
}

func (f *fakeDB) Snapshots() persistence.SnapshotRepository       { return (*fakeSnapshots)(f) }
func (f *fakeDB) Keywords() persistence.KeywordRepository         { return (*fakeKeywords)(f) }
func (f *fakeDB) Sources() persistence.SourceRepository           { return (*fakeSources)(f) }
func (f *fakeDB) Aliases() persistence.AliasRepository            { return (*fakeAliases)(f) }
func (f *fakeDB) SearchCounts() persistence.SearchCountRepository { return (*fakeCounts)(f) }
func (f *fakeDB) Ping(ctx context.Context) error                  { return f.pingErr }
func (f *fakeDB) Close() error                                    { return nil }

type fakeSnapshots fakeDB

func (f *fakeSnapshots) Create(ctx context.Context, s *core.Snapshot) error { return nil }
func (f *fakeSnapshots) RecentIDs(ctx context.Context, limit int) ([]string, error) {
	if f.snapshot == nil {
		return nil, nil
	}
	return []string{f.snapshot.SnapshotID}, nil
}
func (f *fakeSnapshots) Latest(ctx context.Context) (*core.Snapshot, error) {
	return f.snapshot, nil
}

type fakeKeywords fakeDB

func (f *fakeKeywords) Create(ctx context.Context, row *core.KeywordRow) error { return nil }
func (f *fakeKeywords) PreviousRanks(ctx context.Context) (map[string]int, error) {
	return nil, nil
}
func (f *fakeKeywords) LatestRow(ctx context.Context, keywordID string, ids []string) (*core.KeywordRow, error) {
	return nil, nil
}
func (f *fakeKeywords) BySnapshot(ctx context.Context, snapshotID string) ([]core.KeywordRow, error) {
	return f.keywords, nil
}

type fakeSources fakeDB

func (f *fakeSources) Create(ctx context.Context, row *core.SourceRow) error { return nil }
func (f *fakeSources) ByKeyword(ctx context.Context, snapshotID, keywordID string) ([]core.SourceRow, error) {
	return f.sources, nil
}

type fakeAliases fakeDB

func (f *fakeAliases) Create(ctx context.Context, a *core.Alias) error { return nil }
func (f *fakeAliases) ByCanonical(ctx context.Context, id string) ([]core.Alias, error) {
	return nil, nil
}

type fakeCounts fakeDB

func (f *fakeCounts) Increment(ctx context.Context, query string) error {
	f.incremented = append(f.incremented, query)
	return nil
}
func (f *fakeCounts) Get(ctx context.Context, query string) (int64, error) { return 0, nil }

func newTestServer(db *fakeDB, cronSecret string) *Server {
	return New(db, nil, config.Server{Host: "127.0.0.1", Port: 0}, cronSecret)
}

func TestHealthOK(t *testing.T) {
	srv := newTestServer(&fakeDB{}, "")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Status != "ok" || resp.Checks["database"] != "ok" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHealthDatabaseDown(t *testing.T) {
	srv := newTestServer(&fakeDB{pingErr: errors.New("connection refused")}, "")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestRunPipelineRequiresBearerToken(t *testing.T) {
	srv := newTestServer(&fakeDB{}, "topsecret")

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong token", "Bearer nope"},
		{"bare token without scheme", "topsecret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/pipeline/run", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestLatestSnapshot(t *testing.T) {
	now := time.Now().UTC()
	db := &fakeDB{
		snapshot: &core.Snapshot{SnapshotID: "20260826_0917_KST", UpdatedAtUTC: now},
		keywords: []core.KeywordRow{
			{SnapshotID: "20260826_0917_KST", KeywordID: "claude_code", Keyword: "Claude Code", Rank: 1},
		},
	}
	srv := newTestServer(db, "")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshots/latest", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Snapshot core.Snapshot    `json:"snapshot"`
		Keywords []core.KeywordRow `json:"keywords"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Snapshot.SnapshotID != "20260826_0917_KST" || len(resp.Keywords) != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestLatestSnapshotEmpty(t *testing.T) {
	srv := newTestServer(&fakeDB{}, "")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshots/latest", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestKeywordSourcesCountsLookup(t *testing.T) {
	db := &fakeDB{
		snapshot: &core.Snapshot{SnapshotID: "20260826_0917_KST"},
		sources: []core.SourceRow{
			{KeywordID: "gpt_5", Type: "news", URL: "https://techcrunch.com/gpt5", ImageURL: core.DefaultImageURL},
		},
	}
	srv := newTestServer(db, "")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/keywords/gpt_5/sources", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(db.incremented) != 1 || db.incremented[0] != "gpt_5" {
		t.Errorf("expected search count increment for gpt_5, got %v", db.incremented)
	}
	var resp struct {
		SnapshotID string           `json:"snapshotId"`
		Sources    []core.SourceRow `json:"sources"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].URL != "https://techcrunch.com/gpt5" {
		t.Errorf("unexpected sources: %+v", resp.Sources)
	}
}
