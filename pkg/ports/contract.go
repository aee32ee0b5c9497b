package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/thicket/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		sess := domain.NewSession(sessionID, "groceries")
		sess.States["fruits"] = domain.ItemState{Indeterminate: true, Expanded: true}
		sess.States["apple"] = domain.ItemState{Checked: true}
		sess.States["pear"] = domain.ItemState{}
		sess.Selection = domain.NewSelectionSet("apple")
		sess.Version = 7
		sess.UpdatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		err := store.Save(ctx, sessionID, sess)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sessionID, loaded.ID)
		assert.Equal(t, "groceries", loaded.TreeID)
		assert.Equal(t, sess.States, loaded.States)
		assert.Equal(t, []string{"apple"}, loaded.Selection.IDs())
		assert.Equal(t, uint64(7), loaded.Version)
		assert.True(t, sess.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Isolation", func(t *testing.T) {
		sess := domain.NewSession(sessionID, "groceries")
		sess.States["apple"] = domain.ItemState{Checked: true}
		require.NoError(t, store.Save(ctx, sessionID, sess))

		// mutating after save must not leak into the store
		sess.States["apple"] = domain.ItemState{}

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.True(t, loaded.States["apple"].Checked)

		loaded.States["apple"] = domain.ItemState{}
		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.True(t, again.States["apple"].Checked)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewSession(sessionID, "groceries"))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "Delete of a missing session is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewSession(id1, "groceries")))
		require.NoError(t, store.Save(ctx, id2, domain.NewSession(id2, "groceries")))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunTreeLoaderContract verifies a TreeLoader serving at least the tree
// wantID, whose items must form a valid tree.
func RunTreeLoaderContract(t *testing.T, loader TreeLoader, wantID string) {
	t.Run("List", func(t *testing.T) {
		ids, err := loader.ListTrees()
		require.NoError(t, err)
		assert.Contains(t, ids, wantID)
		assert.IsNonDecreasing(t, ids, "tree ids are sorted")
	})

	t.Run("Get", func(t *testing.T) {
		tr, err := loader.GetTree(wantID)
		require.NoError(t, err)
		assert.Equal(t, wantID, tr.ID)
		assert.NotEmpty(t, tr.Items)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := loader.GetTree("non-existent-" + wantID)
		assert.ErrorIs(t, err, domain.ErrTreeNotFound)
	})
}
