package inmemblob

import (
	"context"
	"io"
	"sync"

	"github.com/trezcool/sanaa/storage/blob"
)

// Service keeps uploaded objects in memory. For local dev and tests.
type Service struct {
	// Fail, when set, makes every Upload return this error.
	Fail error

	mu      sync.Mutex
	objects map[string][]byte
}

var _ blob.Storage = (*Service)(nil)

func NewService() *Service {
	return &Service{objects: make(map[string][]byte)}
}

func (svc *Service) Upload(_ context.Context, key, _ string, r io.Reader) (string, error) {
	if svc.Fail != nil {
		return "", svc.Fail
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	svc.mu.Lock()
	svc.objects[key] = data
	svc.mu.Unlock()
	return "memory://" + key, nil
}

// Object returns a stored object's content and whether it exists.
func (svc *Service) Object(key string) ([]byte, bool) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	data, ok := svc.objects[key]
	return data, ok
}
