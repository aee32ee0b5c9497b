package loam

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"

	"github.com/aretw0/thicket/internal/testutils"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const groceriesDoc = `---
id: groceries
title: Groceries
options:
  expandable: true
items:
  - id: fruits
    label: Fruits
    children:
      - id: apple
        label: Apple
      - id: pear
        label: Pear
  - id: bread
    label: Bread
    disabled: true
---
Pick what to **buy** this week.`

func TestLoader_Contract(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFile(t, tmpDir, "groceries.md", groceriesDoc)
	testutils.WriteFile(t, tmpDir, "chores.md", `---
title: Chores
items:
  - id: dishes
    label: Dishes
---`)

	loader := New(loam.NewTypedRepository[TreeMetadata](repo))
	ports.RunTreeLoaderContract(t, loader, "groceries")
}

func TestLoader_GetTree_DecodesFrontMatter(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFile(t, tmpDir, "groceries.md", groceriesDoc)

	loader := New(loam.NewTypedRepository[TreeMetadata](repo))

	tr, err := loader.GetTree("groceries")
	require.NoError(t, err)

	assert.Equal(t, "Groceries", tr.Title)
	assert.Equal(t, "Pick what to **buy** this week.", tr.Description)
	require.Len(t, tr.Items, 2)
	assert.Equal(t, []string{"apple", "pear"}, []string{tr.Items[0].Children[0].ID, tr.Items[0].Children[1].ID})
	assert.True(t, tr.Items[1].Disabled)

	require.NotNil(t, tr.Options)
	assert.True(t, tr.Options.Expandable)
	assert.True(t, tr.Options.AllowPartialSelection, "omitted keys keep their default")
	assert.Equal(t, domain.OrderDocument, tr.Options.SelectionOrder)
}

func TestLoader_ListTrees_NormalizesIDs(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)

	files := map[string]string{
		"weekly.md": `---
items:
  - id: a
    label: A
---`,
		"monthly.json": `{"items": [{"id": "b", "label": "B"}]}`,
	}
	for filename, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, filename), []byte(content), 0644))
	}

	loader := New(loam.NewTypedRepository[TreeMetadata](repo))

	ids, err := loader.ListTrees()
	require.NoError(t, err)
	assert.Equal(t, []string{"monthly", "weekly"}, ids)

	_, err = loader.GetTree("weekly.md")
	assert.NoError(t, err, "extensions are ignored on lookup")
}

func TestLoader_DetectsCollisions(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFile(t, tmpDir, "foo.md", "---\nid: foo\nitems:\n  - id: a\n---")
	testutils.WriteFile(t, tmpDir, "foo.json", `{"id": "foo", "items": [{"id": "b"}]}`)

	loader := New(loam.NewTypedRepository[TreeMetadata](repo))

	_, err := loader.ListTrees()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
}

func TestLoader_RejectsDuplicateItemIDs(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFile(t, tmpDir, "dup.md", "---\nitems:\n  - id: a\n  - id: a\n---")

	loader := New(loam.NewTypedRepository[TreeMetadata](repo))

	_, err := loader.GetTree("dup")
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
}

func TestOptionsMetadata_Resolve(t *testing.T) {
	var nilMeta *OptionsMetadata
	assert.Nil(t, nilMeta.Resolve())

	off := false
	opts := (&OptionsMetadata{AllowPartialSelection: &off, SelectionOrder: "insertion"}).Resolve()
	assert.False(t, opts.AllowPartialSelection)
	assert.Equal(t, domain.OrderInsertion, opts.SelectionOrder)
	assert.False(t, opts.Expandable)
}

func TestLoader_GetTree_DescriptionKeyWinsOverBody(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFile(t, tmpDir, "chores.md", "---\ndescription: Weekly chores\nitems:\n  - id: dishes\n---\nIgnored body")

	loader := New(loam.NewTypedRepository[TreeMetadata](repo))

	tr, err := loader.GetTree("chores")
	require.NoError(t, err)
	assert.Equal(t, "Weekly chores", tr.Description)
}
