package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/thicket/internal/logging"
	"github.com/aretw0/thicket/pkg/adapters/file"
	"github.com/aretw0/thicket/pkg/adapters/memory"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const groceriesYAML = `id: groceries
title: Groceries
options:
  expandable: false
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
`

func writeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "groceries.yaml"), []byte(groceriesYAML), 0o644))
	return dir
}

func TestNewStore(t *testing.T) {
	dir := t.TempDir()

	st, locker, err := NewStore(Config{Dir: dir})
	require.NoError(t, err)
	assert.IsType(t, &file.Store{}, st)
	assert.Nil(t, locker)

	st, _, err = NewStore(Config{Store: StoreMemory})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, st)

	_, _, err = NewStore(Config{Store: StoreRedis})
	assert.ErrorContains(t, err, "--redis-addr")

	mr := miniredis.RunT(t)
	st, locker, err = NewStore(Config{Store: StoreRedis, RedisAddr: mr.Addr()})
	require.NoError(t, err)
	assert.NotNil(t, locker)
	require.NoError(t, st.Save(context.Background(), "s1", domain.NewSession("s1", "groceries")))

	_, _, err = NewStore(Config{Store: "etcd"})
	assert.ErrorContains(t, err, "unknown store")
}

func TestNewStore_Encrypted(t *testing.T) {
	dir := t.TempDir()
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
	ctx := context.Background()

	st, _, err := NewStore(Config{Dir: dir, StoreKey: key})
	require.NoError(t, err)
	sess := domain.NewSession("s1", "groceries")
	sess.States["apple"] = domain.ItemState{Checked: true}
	require.NoError(t, st.Save(ctx, "s1", sess))

	raw, err := file.New(Config{Dir: dir}.SessionsDir()).Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, raw.States)
	assert.NotEmpty(t, raw.Sealed)

	loaded, err := st.Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, loaded.States["apple"].Checked)

	_, _, err = NewStore(Config{Dir: dir, StoreKey: "not base64!"})
	assert.ErrorContains(t, err, "invalid store key")
	_, _, err = NewStore(Config{Dir: dir, StoreKey: base64.StdEncoding.EncodeToString([]byte("short"))})
	assert.ErrorContains(t, err, "invalid store key")
}

func TestNewLoader(t *testing.T) {
	dir := writeTree(t)

	loader, err := NewLoader(Config{Dir: dir}, logging.NewNop())
	require.NoError(t, err)
	ids, err := loader.ListTrees()
	require.NoError(t, err)
	assert.Equal(t, []string{"groceries"}, ids)

	_, err = NewLoader(Config{Dir: dir, Loader: "svn"}, logging.NewNop())
	assert.ErrorContains(t, err, "unknown loader")
}

func TestMountTree(t *testing.T) {
	dir := writeTree(t)

	tr, doc, err := MountTree(context.Background(), Config{Dir: dir}, "groceries", logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "Groceries", doc.Title)
	assert.False(t, tr.Options().Expandable)
	assert.True(t, tr.Options().AllowPartialSelection)

	_, _, err = MountTree(context.Background(), Config{Dir: dir}, "chores", logging.NewNop())
	assert.ErrorIs(t, err, domain.ErrTreeNotFound)
}

func TestNewService(t *testing.T) {
	dir := writeTree(t)
	svc, _, err := NewService(Config{Dir: dir, Store: StoreMemory}, logging.NewNop(), domain.LifecycleHooks{})
	require.NoError(t, err)

	ctx := context.Background()
	up, err := svc.Open(ctx, "groceries", "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", up.Session.ID)

	up, err = svc.SetChecked(ctx, "s1", "fruits", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"fruits", "apple", "pear"}, up.Selected)
}

func TestRunPick_PersistsSession(t *testing.T) {
	dir := writeTree(t)
	cfg := Config{Dir: dir, SessionID: "weekly"}
	ctx := context.Background()

	var out bytes.Buffer
	err := RunPick(ctx, cfg, PickOptions{
		TreeID: "groceries",
		In:     strings.NewReader("check apple\nquit\n"),
		Out:    &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "[-] Fruits (fruits)")

	_, err = os.Stat(filepath.Join(dir, ".thicket", "sessions", "weekly.json"))
	require.NoError(t, err)

	out.Reset()
	err = RunPick(ctx, cfg, PickOptions{
		TreeID: "groceries",
		In:     strings.NewReader("selected\n"),
		Out:    &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Resumed session weekly.")
	assert.Contains(t, out.String(), "apple\n")
}

func TestRunPick_JSON(t *testing.T) {
	dir := writeTree(t)

	var out bytes.Buffer
	err := RunPick(context.Background(), Config{Dir: dir}, PickOptions{
		TreeID: "groceries",
		In:     strings.NewReader(`{"command":"check","ids":["bread"]}` + "\n"),
		Out:    &out,
		JSON:   true,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"selected":["bread"]`)
	assert.NotContains(t, out.String(), ">>>")
}

func TestRunPick_UnknownTree(t *testing.T) {
	err := RunPick(context.Background(), Config{Dir: t.TempDir()}, PickOptions{
		TreeID: "nope",
		In:     strings.NewReader(""),
		Out:    &bytes.Buffer{},
	})
	assert.ErrorIs(t, err, domain.ErrTreeNotFound)
}

func TestWatchTree_KeepsSurvivingStates(t *testing.T) {
	loader, err := memory.NewFromTrees(domain.Tree{ID: "groceries", Items: []domain.Item{
		{ID: "fruits", Label: "Fruits", Children: []domain.Item{{ID: "apple", Label: "Apple"}}},
		{ID: "bread", Label: "Bread"},
	}})
	require.NoError(t, err)

	tr, _, err := mount(loader, "groceries", logging.NewNop())
	require.NoError(t, err)
	tr.SetChecked("bread", true)
	tr.SetChecked("apple", true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, WatchTree(ctx, loader, loader, tr, "groceries", logging.NewNop()))

	opts := domain.DefaultOptions()
	opts.Expandable = true
	require.NoError(t, loader.Put(domain.Tree{ID: "groceries", Options: &opts, Items: []domain.Item{
		{ID: "fruits", Label: "Fruits", Children: []domain.Item{
			{ID: "apple", Label: "Apple"},
			{ID: "kiwi", Label: "Kiwi"},
		}},
	}}))

	assert.Eventually(t, func() bool {
		return len(tr.Items()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		st := tr.ItemState("fruits")
		return st.Indeterminate && tr.ItemState("apple").Checked
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"apple"}, tr.SelectedItems())
	assert.True(t, tr.Options().Expandable, "option changes are applied on reload")
}
