// Package storefake provides an in-memory credstore.Store for tests.
package storefake

import (
	"sync"

	"github.com/matrixvert/donorcli/credstore"
)

// FakeStore is an in-memory Store. Optional error hooks let tests simulate
// persistence failures.
type FakeStore struct {
	mu     sync.Mutex
	values map[string]string

	SaveErr   error
	LoadErr   error
	DeleteErr error
}

var _ credstore.Store = (*FakeStore)(nil)

func NewFakeStore() *FakeStore {
	return &FakeStore{values: map[string]string{}}
}

func (f *FakeStore) Save(key, value string) error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return nil
}

func (f *FakeStore) Load(key string) (string, error) {
	if f.LoadErr != nil {
		return "", f.LoadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	if !ok {
		return "", credstore.ErrNotFound
	}
	return value, nil
}

func (f *FakeStore) Delete(key string) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	return nil
}

// Len reports how many keys are stored.
func (f *FakeStore) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.values)
}
