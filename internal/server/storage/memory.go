package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	sc "github.com/dmitrijs2005/staticstore/internal/server/config"
	"github.com/dmitrijs2005/staticstore/internal/server/models"
)

// MemoryStore is an in-process ObjectStore for development and tests.
// Bytes are copied on the way in and out.
type MemoryStore struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string][]byte
}

func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{bucket: bucket, objects: make(map[string][]byte)}
}

// Dial satisfies Dialer; every dial shares the same objects.
func (m *MemoryStore) Dial(context.Context, *sc.Config) (ObjectStore, error) {
	return m, nil
}

func (m *MemoryStore) GetObject(ctx context.Context, key string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	cp := bytes.Clone(data)
	return &Object{Size: int64(len(cp)), Body: io.NopCloser(bytes.NewReader(cp))}, nil
}

func (m *MemoryStore) PutObject(ctx context.Context, key string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = bytes.Clone(body)
	return nil
}

// PresignPost returns an unsigned form; nothing listens at its URL.
func (m *MemoryStore) PresignPost(_ context.Context, key string, expires time.Duration) (*models.UploadForm, error) {
	return &models.UploadForm{
		URL: "memory://" + m.bucket,
		Fields: map[string]string{
			"key":     key,
			"expires": time.Now().UTC().Add(expires).Format(time.RFC3339),
		},
	}, nil
}

// Delete drops key; used to simulate objects vanishing remotely.
func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
}
