package testsupport

import (
	"testing"
	"time"

	"segue/internal/config"
	"segue/internal/skipcache"
)

// MustOpenStore opens a skipcache.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *skipcache.Store {
	t.Helper()

	store, err := skipcache.Open(cfg.Cache.Dir, time.Duration(cfg.Cache.TTL)*time.Hour)
	if err != nil {
		t.Fatalf("skipcache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
