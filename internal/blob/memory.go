package blob

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-memory Store used by tests and ephemeral deployments.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
}

type memoryBlob struct {
	data []byte
	info Info
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{blobs: make(map[string]memoryBlob)}
}

func (s *Memory) Driver() Driver { return DriverMemory }

func (s *Memory) Put(_ context.Context, key string, r io.Reader, opts PutOptions) (Info, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return Info{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Info{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.blobs[k]; exists {
		return Info{}, fmt.Errorf("blob %s already exists", key)
	}
	sum := sha256.Sum256(data)
	info := Info{
		Key:          k,
		Size:         int64(len(data)),
		ContentType:  opts.ContentType,
		ETag:         hex.EncodeToString(sum[:]),
		Metadata:     cloneMetadata(opts.Metadata),
		LastModified: time.Now().UTC(),
	}
	s.blobs[k] = memoryBlob{data: data, info: info}
	return info, nil
}

func (s *Memory) Get(_ context.Context, key string) (Info, io.ReadCloser, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return Info{}, nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[k]
	if !ok {
		return Info{}, nil, fmt.Errorf("blob %s not found", key)
	}
	info := b.info
	info.Metadata = cloneMetadata(b.info.Metadata)
	return info, io.NopCloser(bytes.NewReader(b.data)), nil
}

func (s *Memory) Head(_ context.Context, key string) (Info, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return Info{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[k]
	if !ok {
		return Info{}, fmt.Errorf("blob %s not found", key)
	}
	info := b.info
	info.Metadata = cloneMetadata(b.info.Metadata)
	return info, nil
}

func (s *Memory) Delete(_ context.Context, key string) (bool, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[k]; !ok {
		return false, nil
	}
	delete(s.blobs, k)
	return true, nil
}

func (s *Memory) List(_ context.Context, prefix string) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var infos []Info
	for key, b := range s.blobs {
		if prefix == "" || strings.HasPrefix(key, prefix) {
			info := b.info
			info.Metadata = cloneMetadata(b.info.Metadata)
			infos = append(infos, info)
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *Memory) PresignURL(context.Context, string, SignedURLOptions) (string, error) {
	return "", ErrUnsupported
}
