package testsupport

import (
	"testing"

	"langprep/internal/config"
	"langprep/internal/ledger"
)

// MustOpenLedger opens the ledger configured by cfg and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
