package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/thicket/internal/testutils"
	"github.com/aretw0/thicket/pkg/adapters/file"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/ports"
	"github.com/aretw0/thicket/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLoader_Contract(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFile(t, dir, "groceries.yaml", testutils.Groceries)
	testutils.WriteFile(t, dir, "chores.json", `{"title": "Chores", "items": [{"id": "dishes", "label": "Dishes"}]}`)
	testutils.WriteFile(t, dir, "README.md", "not a tree")

	loader := file.NewLoader(dir)
	ports.RunTreeLoaderContract(t, loader, "groceries")

	ids, err := loader.ListTrees()
	require.NoError(t, err)
	assert.Equal(t, []string{"chores", "groceries"}, ids)
}

func TestFileLoader_ParsesOptions(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFile(t, dir, "g.yaml", testutils.Groceries)

	tr, err := file.NewLoader(dir).GetTree("groceries")
	require.NoError(t, err)

	assert.Equal(t, "Groceries", tr.Title)
	require.NotNil(t, tr.Options)
	assert.True(t, tr.Options.Expandable)
	assert.True(t, tr.Options.AllowPartialSelection)
	assert.True(t, tr.Items[1].Disabled)
	assert.Equal(t, "pear", tr.Items[0].Children[1].ID)
}

func TestParse(t *testing.T) {
	t.Run("defaults id to file name", func(t *testing.T) {
		tr, err := file.Parse("dir/weekly.yml", []byte("items:\n  - id: a\n"))
		require.NoError(t, err)
		assert.Equal(t, "weekly", tr.ID)
		assert.Nil(t, tr.Options)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		_, err := file.Parse("x.yaml", []byte("itemz: []\n"))
		assert.Error(t, err)
	})

	t.Run("rejects unknown selection order", func(t *testing.T) {
		_, err := file.Parse("x.yaml", []byte("options:\n  selection_order: random\n"))
		assert.ErrorContains(t, err, "selection_order")
	})

	t.Run("round trips through Marshal", func(t *testing.T) {
		orig, err := file.Parse("g.yaml", []byte(testutils.Groceries))
		require.NoError(t, err)

		data, err := file.Marshal(orig)
		require.NoError(t, err)

		again, err := file.Parse("g.yaml", data)
		require.NoError(t, err)
		assert.Equal(t, orig, again)
	})
}

func TestFileLoader_Check(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFile(t, dir, "ok.yaml", testutils.Groceries)
	testutils.WriteFile(t, dir, "dup.yaml", "items:\n  - id: a\n  - id: a\n")
	testutils.WriteFile(t, dir, "broken.yaml", "items: [\n")

	err := file.NewLoader(dir).Check()
	require.Error(t, err)

	errs := tree.ValidationErrors(err)
	assert.Len(t, errs, 2)
	assert.ErrorIs(t, err, domain.ErrDuplicateID)

	_, err = file.NewLoader(dir).GetTree("dup")
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
	_, err = file.NewLoader(dir).GetTree("broken")
	assert.Error(t, err)
}

func TestFileLoader_Watch(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFile(t, dir, "groceries.yaml", testutils.Groceries)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := file.NewLoader(dir, file.WithDebounce(20*time.Millisecond)).Watch(ctx)
	require.NoError(t, err)

	testutils.WriteFile(t, dir, "groceries.yaml", testutils.Groceries+"description: changed\n")

	select {
	case id := <-ch:
		assert.Equal(t, "groceries", id)
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
}

func collectIDs(t *testing.T, ch <-chan string, want int) []string {
	t.Helper()
	var got []string
	timeout := time.After(3 * time.Second)
	for len(got) < want {
		select {
		case id := <-ch:
			got = append(got, id)
		case <-timeout:
			t.Fatalf("got %v, want %d ids", got, want)
		}
	}
	return got
}

func TestFileLoader_Watch_RemoveReportsDeclaredID(t *testing.T) {
	dir := t.TempDir()
	path := testutils.WriteFile(t, dir, "a.yaml", "id: fruits\nitems:\n  - id: apple\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := file.NewLoader(dir, file.WithDebounce(20*time.Millisecond)).Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	assert.Equal(t, []string{"fruits"}, collectIDs(t, ch, 1))
}

func TestFileLoader_Watch_IDChangeReportsBoth(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFile(t, dir, "a.yaml", "id: fruits\nitems:\n  - id: apple\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := file.NewLoader(dir, file.WithDebounce(20*time.Millisecond)).Watch(ctx)
	require.NoError(t, err)

	tmp := testutils.WriteFile(t, dir, ".a.yaml.tmp", "id: produce\nitems:\n  - id: apple\n")
	require.NoError(t, os.Rename(tmp, filepath.Join(dir, "a.yaml")))

	assert.ElementsMatch(t, []string{"fruits", "produce"}, collectIDs(t, ch, 2))
}
