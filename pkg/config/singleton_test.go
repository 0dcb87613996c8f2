package config

import (
	"sync"
	"testing"
)

func resetGlobal() {
	current.Store(nil)
	initOnce = sync.Once{}
	initErr = nil
}

func TestInitialize(t *testing.T) {
	resetGlobal()
	path := writeConfig(t, "guardian.json", `{"version": "1", "safety": {"max_age": 9}}`)

	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config after initialization")
	}
	if cfg.Safety.MaxAge != 9 {
		t.Errorf("expected max age 9, got %d", cfg.Safety.MaxAge)
	}
}

func TestInitialize_EmptyPathUsesDefaults(t *testing.T) {
	resetGlobal()

	if err := Initialize(""); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}
	if got := MustGetConfig().Safety.HighRiskThreshold; got != DefaultHighRiskThreshold {
		t.Errorf("expected default threshold, got %v", got)
	}
}

func TestInitialize_MultipleCallsIgnored(t *testing.T) {
	resetGlobal()
	first := writeConfig(t, "first.yaml", "version: \"1\"\nsafety:\n  max_age: 8\n")
	second := writeConfig(t, "second.yaml", "version: \"1\"\nsafety:\n  max_age: 11\n")

	if err := Initialize(first); err != nil {
		t.Fatal(err)
	}
	if err := Initialize(second); err != nil {
		t.Fatal(err)
	}
	if got := GetConfig().Safety.MaxAge; got != 8 {
		t.Errorf("expected first config to win, got max age %d", got)
	}
}

func TestInitialize_InvalidConfig(t *testing.T) {
	resetGlobal()
	path := writeConfig(t, "guardian.yaml", "version: \"1\"\nsafety:\n  max_age: 30\n")

	if err := Initialize(path); err == nil {
		t.Fatal("expected error for invalid config")
	}
	if GetConfig() != nil {
		t.Error("expected no global config after failed initialization")
	}
}

func TestReloadConfig_KeepsCurrentOnError(t *testing.T) {
	resetGlobal()
	good := writeConfig(t, "good.yaml", "version: \"1\"\n")
	if err := Initialize(good); err != nil {
		t.Fatal(err)
	}
	before := GetConfig()

	bad := writeConfig(t, "bad.yaml", "version: \"1\"\nsafety:\n  min_age: 40\n")
	if err := ReloadConfig(bad); err == nil {
		t.Fatal("expected reload error")
	}
	if GetConfig() != before {
		t.Error("expected config to be unchanged after failed reload")
	}
}

func TestMustGetConfig_Panics(t *testing.T) {
	resetGlobal()
	defer func() {
		if recover() == nil {
			t.Error("expected panic when config is not initialized")
		}
	}()
	MustGetConfig()
}

func TestSetConfig_Concurrent(t *testing.T) {
	resetGlobal()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetConfig(Default())
		}()
		go func() {
			defer wg.Done()
			_ = GetConfig()
		}()
	}
	wg.Wait()
	if GetConfig() == nil {
		t.Error("expected config to be set")
	}
}
