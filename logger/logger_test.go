package logger

import (
	"sync/atomic"
	"testing"
)

func TestWithComponent(t *testing.T) {
	log := GetLogger()
	entry := log.WithComponent("test")
	if v, ok := entry.Entry.Data["component"]; !ok || v != "test" {
		t.Fatalf("component field missing: %v", entry.Entry.Data)
	}
}

func TestConfigureInvalidLevel(t *testing.T) {
	// Ensure environment variables do not override the provided level
	t.Setenv("LOG_LEVEL", "")

	log := GetLogger()
	if err := log.Configure("invalid", "json", "stderr", 0); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

func TestConfigureInvalidFormat(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	log := GetLogger()
	if err := log.Configure("info", "xml", "stderr", 0); err == nil {
		t.Fatalf("expected error for invalid format")
	}
}

func TestIncrementPartition(t *testing.T) {
	before := atomic.LoadInt64(&partitionsDone)
	beforeRecords := atomic.LoadInt64(&recordsFetched)

	IncrementPartition(42)

	if got := atomic.LoadInt64(&partitionsDone); got != before+1 {
		t.Errorf("partitionsDone = %d, want %d", got, before+1)
	}
	if got := atomic.LoadInt64(&recordsFetched); got != beforeRecords+42 {
		t.Errorf("recordsFetched = %d, want %d", got, beforeRecords+42)
	}
}

func TestWarnIncrementsCounter(t *testing.T) {
	before := atomic.LoadInt64(&warnCount)
	GetLogger().WithComponent("test").Warn("counted")
	if got := atomic.LoadInt64(&warnCount); got != before+1 {
		t.Errorf("warnCount = %d, want %d", got, before+1)
	}
}
