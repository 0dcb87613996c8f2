package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"aiteddy-hq/guardian/pkg/audit"
	"aiteddy-hq/guardian/pkg/config"
	"aiteddy-hq/guardian/pkg/telemetry/logging"
)

// backends returns every storage implementation under test. The cgo driver
// is skipped when the binary was built without cgo.
func backends(t *testing.T) map[string]func(t *testing.T) audit.Storage {
	t.Helper()
	sqliteWith := func(driver string) func(t *testing.T) audit.Storage {
		return func(t *testing.T) audit.Storage {
			s, err := NewSQLiteStorage(&SQLiteConfig{
				Driver:      driver,
				Path:        filepath.Join(t.TempDir(), "audit.db"),
				WALMode:     true,
				BusyTimeout: time.Second,
				Logger:      logging.Nop(),
			})
			if err != nil {
				if driver == DriverCgo && strings.Contains(strings.ToLower(err.Error()), "cgo") {
					t.Skipf("cgo driver unavailable: %v", err)
				}
				t.Fatalf("NewSQLiteStorage(%s) error = %v", driver, err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		}
	}
	return map[string]func(t *testing.T) audit.Storage{
		"memory": func(t *testing.T) audit.Storage {
			s := NewMemoryStorage()
			t.Cleanup(func() { s.Close() })
			return s
		},
		"sqlite":  sqliteWith(DriverPureGo),
		"sqlite3": sqliteWith(DriverCgo),
	}
}

var base = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func fixture() []*audit.Record {
	return []*audit.Record{
		{
			ID: "c1", AnalysisID: "a1", Kind: audit.KindContent,
			AnalyzedAt: base, RecordedAt: base.Add(time.Millisecond),
			SessionID: "s1", ChildAge: 6,
			TextDigest: "d1", TextLength: 42,
			IsSafe: true, RiskLevel: "safe", ContentCategory: "story", ToxicityScore: 0,
			ProcessingMS: 1.5, DecisionDigest: "x1",
		},
		{
			ID: "c2", AnalysisID: "a2", Kind: audit.KindContent,
			AnalyzedAt: base.Add(time.Hour), RecordedAt: base.Add(time.Hour),
			SessionID: "s1", ChildAge: 6,
			TextDigest: "d2", TextLength: 12,
			IsSafe: false, RiskLevel: "critical", ContentCategory: "conversation", ToxicityScore: 1,
			Concerns:       []string{"unsafe_content:critical", "toxicity:insult"},
			ParentNotified: true, DecisionDigest: "x2",
		},
		{
			ID: "b1", Kind: audit.KindBias,
			AnalyzedAt: base.Add(2 * time.Hour), RecordedAt: base.Add(2 * time.Hour),
			SessionID: "s2", ChildAge: 9,
			TextDigest: "d3", TextLength: 30,
			IsSafe: false, RiskLevel: "medium_risk",
			HasBias: true, BiasScore: 0.5, BiasMethod: "pattern",
			Concerns: []string{"bias:gender"}, DecisionDigest: "x3",
		},
		{
			ID: "c3", AnalysisID: "a3", Kind: audit.KindContent,
			AnalyzedAt: base.Add(3 * time.Hour), RecordedAt: base.Add(3 * time.Hour),
			SessionID: "s2", ChildAge: 9,
			TextDigest: "d4", TextLength: 5,
			IsSafe: false, RiskLevel: "critical", Degraded: true,
			Failure: "analysis failed at toxicity: boom", DecisionDigest: "x4",
		},
	}
}

func seed(t *testing.T, s audit.Storage) {
	t.Helper()
	for _, r := range fixture() {
		if err := s.Store(context.Background(), r); err != nil {
			t.Fatalf("Store(%s) error = %v", r.ID, err)
		}
	}
}

func TestStorage_RoundTrip(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			seed(t, s)

			got, err := s.Query(context.Background(), &audit.Query{SortOrder: "asc"})
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			want := fixture()
			if len(got) != len(want) {
				t.Fatalf("got %d records, want %d", len(got), len(want))
			}
			for i := range want {
				if !reflect.DeepEqual(got[i], want[i]) {
					t.Errorf("record %d:\n got %+v\nwant %+v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestStorage_Filters(t *testing.T) {
	end := base.Add(90 * time.Minute)

	tests := []struct {
		name  string
		query *audit.Query
		want  []string
	}{
		{"newest first", &audit.Query{}, []string{"c3", "b1", "c2", "c1"}},
		{"limit", &audit.Query{Limit: 2}, []string{"c3", "b1"}},
		{"offset", &audit.Query{Offset: 3}, []string{"c1"}},
		{"limit and offset asc", &audit.Query{Limit: 2, Offset: 1, SortOrder: "asc"}, []string{"c2", "b1"}},
		{"session", &audit.Query{SessionID: "s2"}, []string{"c3", "b1"}},
		{"kind", &audit.Query{Kind: audit.KindBias}, []string{"b1"}},
		{"min risk", &audit.Query{MinRisk: "high_risk"}, []string{"c3", "c2"}},
		{"unsafe only", &audit.Query{UnsafeOnly: true, SortOrder: "asc"}, []string{"c2", "b1", "c3"}},
		{"bias only", &audit.Query{BiasOnly: true}, []string{"b1"}},
		{"end time", &audit.Query{EndTime: &end}, []string{"c2", "c1"}},
	}

	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			seed(t, s)
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					got, err := s.Query(context.Background(), tt.query)
					if err != nil {
						t.Fatalf("Query() error = %v", err)
					}
					var ids []string
					for _, r := range got {
						ids = append(ids, r.ID)
					}
					if !reflect.DeepEqual(ids, tt.want) {
						t.Errorf("ids = %v, want %v", ids, tt.want)
					}

					count, err := s.Count(context.Background(), &audit.Query{
						SessionID: tt.query.SessionID, Kind: tt.query.Kind, MinRisk: tt.query.MinRisk,
						UnsafeOnly: tt.query.UnsafeOnly, BiasOnly: tt.query.BiasOnly, EndTime: tt.query.EndTime,
					})
					if err != nil {
						t.Fatalf("Count() error = %v", err)
					}
					if tt.query.Limit == 0 && tt.query.Offset == 0 && count != int64(len(tt.want)) {
						t.Errorf("Count() = %d, want %d", count, len(tt.want))
					}
				})
			}
		})
	}
}

func TestStorage_Delete(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			seed(t, s)
			ctx := context.Background()

			cutoff := base.Add(90 * time.Minute)
			deleted, err := s.Delete(ctx, &audit.Query{EndTime: &cutoff})
			if err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if deleted != 2 {
				t.Errorf("deleted = %d, want 2", deleted)
			}
			count, err := s.Count(ctx, nil)
			if err != nil {
				t.Fatalf("Count() error = %v", err)
			}
			if count != 2 {
				t.Errorf("remaining = %d, want 2", count)
			}
		})
	}
}

func TestStorage_InvalidQuery(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			_, err := s.Query(context.Background(), &audit.Query{Limit: -5})
			var qe *audit.QueryError
			if !errors.As(err, &qe) {
				t.Errorf("Query() error = %v, want *audit.QueryError", err)
			}
		})
	}
}

func TestStorage_Ping(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			if err := s.Ping(context.Background()); err != nil {
				t.Errorf("Ping() error = %v", err)
			}
		})
	}
}

func TestMemoryStorage_Closed(t *testing.T) {
	s := NewMemoryStorage()
	s.Close()

	err := s.Store(context.Background(), &audit.Record{ID: "x"})
	if !errors.Is(err, audit.ErrClosed) {
		t.Errorf("Store() after Close error = %v, want ErrClosed", err)
	}
	if err := s.Ping(context.Background()); !errors.Is(err, audit.ErrClosed) {
		t.Errorf("Ping() after Close error = %v, want ErrClosed", err)
	}
}

func TestMemoryStorage_CopiesRecords(t *testing.T) {
	s := NewMemoryStorage()
	r := &audit.Record{ID: "x", Concerns: []string{"privacy_risk"}}
	if err := s.Store(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	r.Concerns[0] = "mutated"

	got, _ := s.Query(context.Background(), nil)
	if got[0].Concerns[0] != "privacy_risk" {
		t.Errorf("stored record was mutated through caller slice")
	}
}

func TestNewSQLiteStorage_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  *SQLiteConfig
	}{
		{"unknown driver", &SQLiteConfig{Driver: "postgres", Path: "x.db"}},
		{"missing path", &SQLiteConfig{Driver: DriverPureGo}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSQLiteStorage(tt.cfg)
			var se *audit.StorageError
			if !errors.As(err, &se) || se.Operation != "open" {
				t.Errorf("error = %v, want open StorageError", err)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		driver string
		want   []string
	}{
		{DriverPureGo, []string{"_pragma=busy_timeout%282500%29", "_pragma=journal_mode%28WAL%29"}},
		{DriverCgo, []string{"_busy_timeout=2500", "_journal_mode=WAL"}},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			got := dsn(&SQLiteConfig{Driver: tt.driver, Path: "a.db", WALMode: true, BusyTimeout: 2500 * time.Millisecond})
			if !strings.HasPrefix(got, "a.db?") {
				t.Errorf("dsn = %q, want a.db? prefix", got)
			}
			for _, part := range tt.want {
				if !strings.Contains(got, part) {
					t.Errorf("dsn = %q, missing %q", got, part)
				}
			}
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		cfg     config.AuditConfig
		want    string
		wantErr bool
	}{
		{"memory", config.AuditConfig{Backend: "memory"}, "*storage.MemoryStorage", false},
		{"sqlite", config.AuditConfig{Backend: "sqlite", SQLite: config.SQLiteConfig{
			Driver: DriverPureGo, Path: filepath.Join(dir, "nested", "audit.db"),
		}}, "*storage.SQLiteStorage", false},
		{"unknown", config.AuditConfig{Backend: "s3"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.cfg, logging.Nop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer s.Close()
			if got := fmt.Sprintf("%T", s); got != tt.want {
				t.Errorf("Open() = %s, want %s", got, tt.want)
			}
		})
	}
}
