package testsupport

import (
	"testing"

	"subforge/internal/backups"
	"subforge/internal/config"
)

// MustOpenCatalog opens the backup catalogue for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *backups.Catalog {
	t.Helper()

	catalog, err := backups.Open(cfg)
	if err != nil {
		t.Fatalf("backups.Open: %v", err)
	}
	t.Cleanup(func() {
		catalog.Close()
	})
	return catalog
}
