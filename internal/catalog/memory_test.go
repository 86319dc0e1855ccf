package catalog_test

import (
	"testing"

	"github.com/starford/taxon/internal/catalog"
	"github.com/starford/taxon/internal/testutil"
)

func TestMemoryStore_Contract(t *testing.T) {
	testutil.RunStoreContract(t, func(t *testing.T) catalog.Store {
		return catalog.NewMemoryStore()
	})
}
