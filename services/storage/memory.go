package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore implements both stores in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Objects: make(map[string][]byte)}
}

func (s *MemoryStore) UploadAvatar(ctx context.Context, uid string, file io.Reader) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := avatarFolder + "/" + uid
	s.Objects[key] = data
	return "memory://" + key, nil
}

func (s *MemoryStore) DeleteAvatar(ctx context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, avatarFolder+"/"+uid)
	return nil
}

func (s *MemoryStore) Put(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[objectPath] = append([]byte(nil), data...)
	return fmt.Sprintf("memory://%s", objectPath), nil
}

func (s *MemoryStore) Get(objectPath string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.Objects[objectPath]
	return data, ok
}
