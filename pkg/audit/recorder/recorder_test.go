package recorder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"aiteddy-hq/guardian/pkg/audit"
	"aiteddy-hq/guardian/pkg/audit/storage"
	"aiteddy-hq/guardian/pkg/config"
	"aiteddy-hq/guardian/pkg/safety"
	"aiteddy-hq/guardian/pkg/safety/model"
	"aiteddy-hq/guardian/pkg/safety/rules"
	"aiteddy-hq/guardian/pkg/telemetry/logging"
)

func newOrchestrator(t *testing.T, observer safety.Observer) *safety.Orchestrator {
	t.Helper()
	cfg := config.Default()
	return safety.New(cfg.Safety, rules.Default(), safety.Deps{Observer: observer, Logger: logging.Nop()})
}

func TestRecorder_RecordsAnalyses(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := New(store, &Config{BufferSize: 16, Logger: logging.Nop()})
	o := newOrchestrator(t, rec)
	ctx := context.Background()

	cc := model.ConversationContext{ChildAge: 6, SessionID: "session-1"}
	unsafeText := "You're stupid and ugly! I hate you!"
	content := o.AnalyzeContent(ctx, unsafeText, cc)
	biasResult := o.DetectBias(ctx, "Boys are naturally better at math than girls.", cc)

	if err := rec.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	records, err := store.Query(ctx, &audit.Query{SortOrder: "asc"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	var contentRec, biasRec *audit.Record
	for _, r := range records {
		switch r.Kind {
		case audit.KindContent:
			contentRec = r
		case audit.KindBias:
			biasRec = r
		}
	}
	if contentRec == nil || biasRec == nil {
		t.Fatalf("missing record kinds: %+v", records)
	}

	if contentRec.AnalysisID != content.AnalysisID {
		t.Errorf("AnalysisID = %q, want %q", contentRec.AnalysisID, content.AnalysisID)
	}
	if contentRec.IsSafe || contentRec.RiskLevel != content.OverallRiskLevel.String() {
		t.Errorf("content record verdict = safe:%v risk:%s", contentRec.IsSafe, contentRec.RiskLevel)
	}
	if contentRec.TextDigest != model.TextDigest(unsafeText) {
		t.Errorf("TextDigest does not match reply digest")
	}
	if contentRec.SessionID != "session-1" || contentRec.ChildAge != 6 {
		t.Errorf("context not recorded: %+v", contentRec)
	}
	fp, _ := content.Fingerprint()
	if contentRec.DecisionDigest != fp {
		t.Errorf("DecisionDigest = %q, want fingerprint %q", contentRec.DecisionDigest, fp)
	}

	if biasRec.HasBias != biasResult.HasBias || biasRec.BiasMethod != biasResult.Method {
		t.Errorf("bias record = %+v, result has_bias=%v method=%s", biasRec, biasResult.HasBias, biasResult.Method)
	}
	if !biasRec.HasBias || len(biasRec.Concerns) == 0 {
		t.Errorf("bias record = %+v, want gender bias with concerns", biasRec)
	}

	if s := rec.Stats(); s.Written != 2 || s.Dropped != 0 || s.Failed != 0 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestContentRecord_NeverStoresText(t *testing.T) {
	o := newOrchestrator(t, nil)
	text := "What's your address and phone number?"
	result := o.AnalyzeContent(context.Background(), text, model.ConversationContext{ChildAge: 7})

	record, err := ContentRecord(text, model.ConversationContext{ChildAge: 7}, result, time.Now())
	if err != nil {
		t.Fatalf("ContentRecord() error = %v", err)
	}
	for _, field := range []string{record.TextDigest, record.Failure, record.ContentCategory} {
		if field == text {
			t.Fatal("reply text stored verbatim")
		}
	}
	found := false
	for _, c := range record.Concerns {
		if c == "privacy_risk" {
			found = true
		}
	}
	if !found {
		t.Errorf("Concerns = %v, want privacy_risk", record.Concerns)
	}
}

func TestContentRecord_FailSafe(t *testing.T) {
	o := newOrchestrator(t, nil)
	result := o.AnalyzeContent(context.Background(), "hello", model.ConversationContext{ChildAge: 0})

	record, err := ContentRecord("hello", model.ConversationContext{}, result, time.Now())
	if err != nil {
		t.Fatalf("ContentRecord() error = %v", err)
	}
	if record.Failure == "" {
		t.Error("fail-safe result recorded without failure reason")
	}
	if !record.ParentNotified || record.IsSafe {
		t.Errorf("fail-safe record = %+v", record)
	}
}

func TestBiasRecord_Deterministic(t *testing.T) {
	o := newOrchestrator(t, nil)
	cc := model.ConversationContext{ChildAge: 8}
	text := "Boys are naturally better at math than girls."

	a, err := BiasRecord(text, cc, o.DetectBias(context.Background(), text, cc), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	b, err := BiasRecord(text, cc, o.DetectBias(context.Background(), text, cc), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if a.DecisionDigest != b.DecisionDigest {
		t.Errorf("bias digests differ: %s vs %s", a.DecisionDigest, b.DecisionDigest)
	}
	if a.ID == b.ID {
		t.Error("record IDs must be unique")
	}
}

// blockingStorage blocks every Store until release is closed.
type blockingStorage struct {
	*storage.MemoryStorage
	release chan struct{}
	once    sync.Once
}

func (s *blockingStorage) Store(ctx context.Context, r *audit.Record) error {
	<-s.release
	return s.MemoryStorage.Store(ctx, r)
}

func (s *blockingStorage) unblock() { s.once.Do(func() { close(s.release) }) }

func TestRecorder_DropsWhenFull(t *testing.T) {
	store := &blockingStorage{MemoryStorage: storage.NewMemoryStorage(), release: make(chan struct{})}
	rec := New(store, &Config{BufferSize: 1, Logger: logging.Nop()})
	defer func() {
		store.unblock()
		rec.Close()
	}()

	ctx := context.Background()
	var dropped int
	for i := 0; i < 5; i++ {
		if err := rec.Record(ctx, &audit.Record{ID: string(rune('a' + i))}); err != nil {
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("Record() error = %v", err)
			}
			dropped++
		}
	}
	// One record is held by the worker and one sits in the queue.
	if dropped < 3 {
		t.Errorf("dropped = %d, want at least 3", dropped)
	}
	if got := rec.Stats().Dropped; got != int64(dropped) {
		t.Errorf("Stats().Dropped = %d, want %d", got, dropped)
	}
}

func TestRecorder_CloseDrainsAndRejects(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := New(store, &Config{BufferSize: 100, Logger: logging.Nop()})
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		if err := rec.Record(ctx, &audit.Record{ID: time.Duration(i).String()}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	rec.Close()
	rec.Close()

	count, _ := store.Count(ctx, nil)
	if count != 50 {
		t.Errorf("stored %d records after Close, want 50", count)
	}
	if err := rec.Record(ctx, &audit.Record{ID: "late"}); !errors.Is(err, audit.ErrClosed) {
		t.Errorf("Record() after Close error = %v, want ErrClosed", err)
	}
}

type failingStorage struct{ *storage.MemoryStorage }

func (failingStorage) Store(context.Context, *audit.Record) error {
	return audit.NewStorageError("memory", "store", errors.New("disk full"))
}

func TestRecorder_StorageFailureCounted(t *testing.T) {
	rec := New(failingStorage{storage.NewMemoryStorage()}, &Config{Logger: logging.Nop()})
	rec.Record(context.Background(), &audit.Record{ID: "x"})
	rec.Close()

	if s := rec.Stats(); s.Failed != 1 || s.Written != 0 {
		t.Errorf("Stats() = %+v, want one failure", s)
	}
}
