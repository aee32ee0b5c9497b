package thicket_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/thicket"
	"github.com/aretw0/thicket/pkg/adapters/memory"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groceries() domain.Tree {
	return domain.Tree{
		ID:    "groceries",
		Title: "Groceries",
		Options: &domain.Options{
			AllowPartialSelection: true,
			Expandable:            true,
			SelectionOrder:        domain.OrderDocument,
		},
		Items: []domain.Item{
			{ID: "fruits", Label: "Fruits", Children: []domain.Item{
				{ID: "apple", Label: "Apple"},
				{ID: "pear", Label: "Pear"},
			}},
			{ID: "bread", Label: "Bread", Disabled: true},
		},
	}
}

func newService(t *testing.T, opts ...thicket.ServiceOption) (*thicket.Service, *memory.Loader, *memory.Store) {
	t.Helper()
	loader, err := memory.NewFromTrees(groceries())
	require.NoError(t, err)
	store := memory.NewStore()
	return thicket.NewService(loader, session.NewManager(store), opts...), loader, store
}

func TestService_OpenAndMutate(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newService(t, thicket.WithIDGenerator(func() string { return "fixed-id" }))

	up, err := svc.Open(ctx, "groceries", "")
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", up.Session.ID)
	assert.Equal(t, "groceries", up.Session.TreeID)
	assert.Empty(t, up.Selected)
	require.NotNil(t, up.Diff)
	assert.Len(t, up.Diff.States, 4)

	up, err = svc.SetChecked(ctx, "fixed-id", "apple", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"apple"}, up.Selected)
	require.NotNil(t, up.Diff)
	assert.Equal(t, domain.ItemState{Indeterminate: true}, up.Diff.States["fruits"])
	assert.Equal(t, []string{"apple"}, up.Diff.Selection.Added)

	stored, err := store.Load(ctx, "fixed-id")
	require.NoError(t, err)
	assert.True(t, stored.States["apple"].Checked, "mutations are persisted")

	up, err = svc.ToggleExpansion(ctx, "fixed-id", "fruits")
	require.NoError(t, err)
	assert.True(t, up.Session.States["fruits"].Expanded)

	up, err = svc.ClearAll(ctx, "fixed-id")
	require.NoError(t, err)
	assert.Empty(t, up.Selected)
	assert.Equal(t, []string{"apple"}, up.Diff.Selection.Removed)

	up, err = svc.ClearAll(ctx, "fixed-id")
	require.NoError(t, err)
	assert.Nil(t, up.Diff, "no-op mutations produce no diff")
}

func TestService_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.Open(ctx, "nope", "s")
	assert.ErrorIs(t, err, domain.ErrTreeNotFound)

	_, err = svc.Open(ctx, "", "s")
	assert.ErrorIs(t, err, domain.ErrTreeNotFound)

	_, err = svc.SetChecked(ctx, "missing", "apple", true)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = svc.Open(ctx, "groceries", "s")
	require.NoError(t, err)

	_, err = svc.SetChecked(ctx, "s", "bread", true)
	assert.ErrorIs(t, err, domain.ErrItemDisabled)

	_, err = svc.SetChecked(ctx, "s", "ghost", true)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	_, err = svc.Open(ctx, "other", "s")
	assert.ErrorIs(t, err, domain.ErrTreeMismatch)
}

func TestService_ResumeAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.Open(ctx, "groceries", "s")
	require.NoError(t, err)
	_, err = svc.SetChecked(ctx, "s", "fruits", true)
	require.NoError(t, err)

	up, err := svc.Open(ctx, "", "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"fruits", "apple", "pear"}, up.Selected)

	ids, err := svc.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s"}, ids)

	require.NoError(t, svc.Delete(ctx, "s"))
	_, err = svc.Get(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestService_ReconcilesAfterTreeChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc, loader, _ := newService(t)
	require.NoError(t, svc.Watch(ctx))

	_, err := svc.Open(ctx, "groceries", "s")
	require.NoError(t, err)
	_, err = svc.SetChecked(ctx, "s", "fruits", true)
	require.NoError(t, err)

	changed := groceries()
	changed.Items[0].Children = append(changed.Items[0].Children, domain.Item{ID: "plum", Label: "Plum"})
	require.NoError(t, loader.Put(changed))

	assert.Eventually(t, func() bool {
		up, err := svc.Get(ctx, "s")
		return err == nil && up.Session.States["fruits"].Indeterminate
	}, time.Second, 10*time.Millisecond)

	up, err := svc.Get(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "pear"}, up.Selected)
	assert.Contains(t, up.Session.States, "plum")
}

func TestService_Trees(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	ids, err := svc.ListTrees(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"groceries"}, ids)

	tr, err := svc.Tree(ctx, "groceries")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", tr.Title)
}

func TestService_WatchRequiresWatchableLoader(t *testing.T) {
	svc := thicket.NewService(staticLoader{}, session.NewManager(memory.NewStore()))
	assert.Error(t, svc.Watch(context.Background()))
}

type staticLoader struct{}

func (staticLoader) GetTree(string) (domain.Tree, error) {
	return domain.Tree{}, domain.ErrTreeNotFound
}
func (staticLoader) ListTrees() ([]string, error) { return nil, nil }
