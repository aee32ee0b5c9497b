package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/thicket/pkg/adapters/memory"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groceries() domain.Tree {
	return domain.Tree{
		ID:    "groceries",
		Title: "Groceries",
		Items: []domain.Item{
			{ID: "fruits", Label: "Fruits", Children: []domain.Item{{ID: "apple"}, {ID: "pear"}}},
			{ID: "bread", Label: "Bread"},
		},
	}
}

func TestMemoryLoader_Contract(t *testing.T) {
	loader, err := memory.NewFromTrees(groceries(), domain.Tree{ID: "empty-ish", Items: []domain.Item{{ID: "x"}}})
	require.NoError(t, err)

	ports.RunTreeLoaderContract(t, loader, "groceries")
}

func TestMemoryLoader_RejectsInvalidTrees(t *testing.T) {
	_, err := memory.NewFromTrees(domain.Tree{ID: "dup", Items: []domain.Item{{ID: "a"}, {ID: "a"}}})
	assert.ErrorIs(t, err, domain.ErrDuplicateID)

	_, err = memory.NewFromTrees(domain.Tree{Items: []domain.Item{{ID: "a"}}})
	assert.Error(t, err)
}

func TestMemoryLoader_ReturnsCopies(t *testing.T) {
	loader, err := memory.NewFromTrees(groceries())
	require.NoError(t, err)

	tr, err := loader.GetTree("groceries")
	require.NoError(t, err)
	tr.Items[0].Label = "mutated"

	again, err := loader.GetTree("groceries")
	require.NoError(t, err)
	assert.Equal(t, "Fruits", again.Items[0].Label)
}

func TestMemoryLoader_Watch(t *testing.T) {
	loader := memory.NewLoader()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := loader.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, loader.Put(groceries()))

	select {
	case id := <-ch:
		assert.Equal(t, "groceries", id)
	case <-time.After(time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-ch
		return !open
	}, time.Second, 10*time.Millisecond)
}
