package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// MemoryImage is an image kept in process.
type MemoryImage struct {
	Data        []byte
	ContentType string
}

// MemoryStore keeps images in memory and serves them from the API. It is
// used when object storage is not configured.
type MemoryStore struct {
	mu      sync.RWMutex
	images  map[string]MemoryImage
	baseURL string
}

// NewMemoryStore returns a store whose URLs are rooted at baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{images: make(map[string]MemoryImage), baseURL: baseURL}
}

func (s *MemoryStore) Upload(_ context.Context, r io.Reader, filename, contentType string, size int64) (string, error) {
	if err := ValidateImage(contentType, size); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return "", err
	}
	if n > MaxImageSize {
		return "", ErrTooLarge
	}

	key := ObjectKey(filename, contentType, time.Now())
	s.mu.Lock()
	s.images[key] = MemoryImage{Data: buf.Bytes(), ContentType: contentType}
	s.mu.Unlock()
	return s.baseURL + "/" + key, nil
}

// Get returns a stored image by key.
func (s *MemoryStore) Get(key string) (MemoryImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.images[key]
	if !ok {
		return MemoryImage{}, ErrNotFound
	}
	return img, nil
}
