package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aretw0/thicket/pkg/adapters/memory"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, memory.NewStore())
}

func TestMemoryStore_SelectionIsCopied(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	sess := domain.NewSession("s1", "groceries")
	sess.Selection = domain.NewSelectionSet("apple")
	require.NoError(t, store.Save(ctx, "s1", sess))
	sess.Selection.Add("pear")

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"apple"}, loaded.Selection.IDs())
}

func TestMemoryStore_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%02d", i)
			assert.NoError(t, store.Save(ctx, id, domain.NewSession(id, "groceries")))
		}(i)
	}
	wg.Wait()

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 20)
	assert.Equal(t, "s00", ids[0])
}
