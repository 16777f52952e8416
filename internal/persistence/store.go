package persistence

import (
	"context"
	"sync"
)

// Store is key-addressed durable storage for one cart snapshot. Load returns
// (nil, nil) when nothing is stored.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the encoded blob in memory.
type MemoryStore struct {
	mu   sync.Mutex
	blob []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blob == nil {
		return nil, nil
	}
	return Decode(m.blob)
}

func (m *MemoryStore) Save(_ context.Context, snapshot Snapshot) error {
	raw, err := Encode(snapshot)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.blob = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	m.blob = nil
	m.mu.Unlock()
	return nil
}

// Raw returns the stored blob, or nil.
func (m *MemoryStore) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.blob...)
}

// SetRaw stores a blob as is, bypassing encoding.
func (m *MemoryStore) SetRaw(raw []byte) {
	m.mu.Lock()
	m.blob = append([]byte(nil), raw...)
	m.mu.Unlock()
}
