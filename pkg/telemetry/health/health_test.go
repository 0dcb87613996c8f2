package health

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name            string
		timeout         time.Duration
		expectedTimeout time.Duration
	}{
		{"default timeout", 0, DefaultCheckTimeout},
		{"negative timeout", -time.Second, DefaultCheckTimeout},
		{"custom timeout", 10 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(tt.timeout)
			if checker.checkTimeout != tt.expectedTimeout {
				t.Errorf("expected timeout %v, got %v", tt.expectedTimeout, checker.checkTimeout)
			}
			if len(checker.ListChecks()) != 0 {
				t.Errorf("expected no checks, got %v", checker.ListChecks())
			}
		})
	}
}

func TestRegisterAndUnregister(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("rules", func(context.Context) error { return nil })
	checker.RegisterOptionalCheck("audit", func(context.Context) error { return nil })
	checker.RegisterCheck("rules", func(context.Context) error { return nil })

	if got := checker.ListChecks(); !reflect.DeepEqual(got, []string{"audit", "rules"}) {
		t.Errorf("ListChecks() = %v", got)
	}

	checker.UnregisterCheck("audit")
	if got := checker.ListChecks(); !reflect.DeepEqual(got, []string{"rules"}) {
		t.Errorf("ListChecks() after unregister = %v", got)
	}
}

func TestCheckReadiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errors.New("endpoint unreachable") }

	tests := []struct {
		name       string
		required   map[string]CheckFunc
		optional   map[string]CheckFunc
		wantStatus string
		wantFailed []string
	}{
		{
			name:       "no checks",
			wantStatus: StatusReady,
		},
		{
			name:       "all pass",
			required:   map[string]CheckFunc{"rules": ok, "config": ok},
			optional:   map[string]CheckFunc{"audit": ok},
			wantStatus: StatusReady,
		},
		{
			name:       "optional failure degrades",
			required:   map[string]CheckFunc{"rules": ok},
			optional:   map[string]CheckFunc{"embedding": fail},
			wantStatus: StatusDegraded,
			wantFailed: []string{"embedding"},
		},
		{
			name:       "required failure is unhealthy",
			required:   map[string]CheckFunc{"selftest": fail},
			optional:   map[string]CheckFunc{"embedding": fail},
			wantStatus: StatusUnhealthy,
			wantFailed: []string{"embedding", "selftest"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			for name, fn := range tt.required {
				checker.RegisterCheck(name, fn)
			}
			for name, fn := range tt.optional {
				checker.RegisterOptionalCheck(name, fn)
			}

			report := checker.CheckReadiness(context.Background())
			if report.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", report.Status, tt.wantStatus)
			}
			if got := report.Failed(); !reflect.DeepEqual(got, tt.wantFailed) {
				t.Errorf("Failed() = %v, want %v", got, tt.wantFailed)
			}
			if report.Healthy() != (tt.wantStatus != StatusUnhealthy) {
				t.Errorf("Healthy() = %v", report.Healthy())
			}
			if len(report.Checks) != len(tt.required)+len(tt.optional) {
				t.Errorf("got %d results", len(report.Checks))
			}
			for name := range tt.required {
				if !report.Checks[name].Required {
					t.Errorf("%s not marked required", name)
				}
			}
		})
	}
}

func TestCheckReadiness_Timeout(t *testing.T) {
	checker := New(20 * time.Millisecond)
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		select {
		case <-time.After(time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	report := checker.CheckReadiness(context.Background())
	res := report.Checks["slow"]
	if res.Status != StatusFailed {
		t.Fatalf("Status = %q, want failed", res.Status)
	}
	if res.Message != ErrCheckTimeout.Error() && res.Message != context.DeadlineExceeded.Error() {
		t.Errorf("Message = %q", res.Message)
	}
}

func TestCheckReadiness_Panic(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterOptionalCheck("broken", func(context.Context) error {
		panic("nil store")
	})

	report := checker.CheckReadiness(context.Background())
	if report.Status != StatusDegraded {
		t.Errorf("Status = %q, want degraded", report.Status)
	}
	if report.Checks["broken"].Message == "" {
		t.Error("panic message missing")
	}
}
