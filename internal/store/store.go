package store

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/wordhtml/internal/render"
)

// Source is the pipeline that produced a result.
type Source string

const (
	SourceDocument Source = "document"
	SourceText     Source = "text"
)

// Record is a stored conversion result.
type Record struct {
	ID          string    `json:"id"`
	Source      Source    `json:"source"`
	Filename    string    `json:"filename,omitempty"`
	OutputName  string    `json:"output_name,omitempty"`
	Title       string    `json:"title,omitempty"`
	ContentHash string    `json:"content_hash,omitempty"`
	Paragraphs  []string  `json:"paragraphs"`
	CreatedAt   time.Time `json:"created_at"`
}

// HTML returns the newline-joined paragraphs.
func (r *Record) HTML() string { return render.Join(r.Paragraphs) }

// Store is a thread-safe in-memory result registry with TTL eviction.
type Store struct {
	mu      sync.Mutex
	records map[string]*Record
	ttl     time.Duration
}

func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		records: make(map[string]*Record),
		ttl:     ttl,
	}
}

// Put stores rec, assigning an ID and creation time when unset.
func (s *Store) Put(rec *Record) *Record {
	if rec.ID == "" {
		rec.ID = NewID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	return rec
}

func (s *Store) Get(id string) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id]
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Cleanup removes expired records.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, rec := range s.records {
		if now.Sub(rec.CreatedAt) > s.ttl {
			delete(s.records, id)
		}
	}
}

// RunCleanup evicts expired records every interval until ctx is done.
func (s *Store) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
