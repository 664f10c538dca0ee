// Package blobstore archives generated handover lists. It defines the Store
// interface, an in-memory implementation for development and tests, an S3
// implementation, and Echo handlers for browsing and downloading archived
// lists.
package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrListNotFound    = errors.New("handover list not found")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrMissingFileName = errors.New("file name is required")
	ErrMissingTeam     = errors.New("team is required")
)

// MaxFileSize is the largest list the archive accepts (20 MB).
const MaxFileSize = 20 * 1024 * 1024

// ContentTypeXLSX is the MIME type of a generated list.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Metadata describes an archived list.
type Metadata struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Hash        string    `json:"hash"`
	Team        string    `json:"team"`
	Patients    int       `json:"patients"`
	NewPatients int       `json:"new_patients"`
	GeneratedAt time.Time `json:"generated_at"`
}

// SearchParams filters archived lists. Zero values match everything.
type SearchParams struct {
	Team            string
	GeneratedAfter  *time.Time
	GeneratedBefore *time.Time
	Limit           int
	Offset          int
}

// Store is the archive contract shared by every backend.
type Store interface {
	Upload(ctx context.Context, meta Metadata, content io.Reader) (*Metadata, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *Metadata, error)
	Delete(ctx context.Context, id string) error
	GetMetadata(ctx context.Context, id string) (*Metadata, error)
	// Search returns the requested page, newest first, and the total count.
	Search(ctx context.Context, params SearchParams) ([]*Metadata, int, error)
}

// prepare validates meta, buffers the content and fills in the derived
// fields.
func prepare(meta Metadata, content io.Reader) (Metadata, []byte, error) {
	if meta.FileName == "" {
		return meta, nil, ErrMissingFileName
	}
	if meta.Team == "" {
		return meta, nil, ErrMissingTeam
	}
	data, err := io.ReadAll(io.LimitReader(content, MaxFileSize+1))
	if err != nil {
		return meta, nil, fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		return meta, nil, ErrFileTooLarge
	}

	if meta.ID == "" {
		meta.ID = uuid.New().String()
	}
	if meta.ContentType == "" {
		meta.ContentType = ContentTypeXLSX
	}
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = time.Now().UTC()
	}
	meta.Size = int64(len(data))
	meta.Hash = fmt.Sprintf("%x", sha256.Sum256(data))
	return meta, data, nil
}

func matches(m *Metadata, p SearchParams) bool {
	if p.Team != "" && !strings.EqualFold(m.Team, p.Team) {
		return false
	}
	if p.GeneratedAfter != nil && m.GeneratedAt.Before(*p.GeneratedAfter) {
		return false
	}
	if p.GeneratedBefore != nil && m.GeneratedAt.After(*p.GeneratedBefore) {
		return false
	}
	return true
}

// page sorts newest first and slices out the requested window.
func page(matched []*Metadata, limit, offset int) []*Metadata {
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].GeneratedAt.After(matched[j].GeneratedAt)
	})
	if limit <= 0 {
		limit = 20
	}
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end]
}

type storedList struct {
	metadata Metadata
	content  []byte
}

// MemoryStore is a thread-safe, in-memory Store.
type MemoryStore struct {
	mu    sync.RWMutex
	lists map[string]*storedList
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lists: make(map[string]*storedList)}
}

func (s *MemoryStore) Upload(_ context.Context, meta Metadata, content io.Reader) (*Metadata, error) {
	meta, data, err := prepare(meta, content)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lists[meta.ID] = &storedList{metadata: meta, content: data}
	s.mu.Unlock()

	out := meta
	return &out, nil
}

func (s *MemoryStore) Download(_ context.Context, id string) (io.ReadCloser, *Metadata, error) {
	s.mu.RLock()
	l, ok := s.lists[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, ErrListNotFound
	}
	meta := l.metadata
	return io.NopCloser(bytes.NewReader(l.content)), &meta, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lists[id]; !ok {
		return ErrListNotFound
	}
	delete(s.lists, id)
	return nil
}

func (s *MemoryStore) GetMetadata(_ context.Context, id string) (*Metadata, error) {
	s.mu.RLock()
	l, ok := s.lists[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrListNotFound
	}
	meta := l.metadata
	return &meta, nil
}

func (s *MemoryStore) Search(_ context.Context, params SearchParams) ([]*Metadata, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*Metadata
	for _, l := range s.lists {
		if !matches(&l.metadata, params) {
			continue
		}
		m := l.metadata
		matched = append(matched, &m)
	}
	return page(matched, params.Limit, params.Offset), len(matched), nil
}
