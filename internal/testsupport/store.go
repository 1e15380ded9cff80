package testsupport

import (
	"context"
	"testing"

	"mediatidy/internal/config"
	"mediatidy/internal/journal"
)

// MustOpenJournal opens the journal configured by cfg and registers cleanup.
func MustOpenJournal(t testing.TB, cfg *config.Config) *journal.Store {
	t.Helper()

	store, err := journal.Open(cfg.JournalPath())
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// BeginRun starts a journal run for tests.
func BeginRun(t testing.TB, store *journal.Store, operation, root string) journal.Run {
	t.Helper()

	run, err := store.BeginRun(context.Background(), operation, root)
	if err != nil {
		t.Fatalf("store.BeginRun: %v", err)
	}
	return run
}
