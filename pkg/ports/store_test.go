package ports_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/ports"
)

// mapStore is the smallest StateStore that honours the contract.
type mapStore struct {
	mu   sync.Mutex
	data map[string]*domain.Session
}

func (m *mapStore) Save(_ context.Context, id string, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = s.Snapshot()
	return nil
}

func (m *mapStore) Load(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s.Snapshot(), nil
}

func (m *mapStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *mapStore) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func TestStateStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, &mapStore{data: make(map[string]*domain.Session)})
}

type mapLoader map[string]domain.Tree

func (m mapLoader) GetTree(id string) (domain.Tree, error) {
	tr, ok := m[id]
	if !ok {
		return domain.Tree{}, domain.ErrTreeNotFound
	}
	return tr, nil
}

func (m mapLoader) ListTrees() ([]string, error) {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func TestTreeLoader_Contract(t *testing.T) {
	ports.RunTreeLoaderContract(t, mapLoader{
		"a": {ID: "a", Items: []domain.Item{{ID: "x"}}},
		"b": {ID: "b", Items: []domain.Item{{ID: "y"}}},
	}, "b")
}
