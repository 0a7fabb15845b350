package vector

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/futig/rag-gateway/internal/entity"
)

// MemoryStore keeps chunks in process. Ties on distance are broken by
// insertion order so results are deterministic.
type MemoryStore struct {
	mu     sync.RWMutex
	chunks []entity.Chunk
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Insert(_ context.Context, chunks []entity.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return errors.New("chunk has no embedding")
		}
		emb := make([]float32, len(c.Embedding))
		copy(emb, c.Embedding)
		c.Embedding = emb
		s.chunks = append(s.chunks, c)
	}
	return nil
}

func (s *MemoryStore) Search(_ context.Context, embedding []float32, topK int) ([]entity.Passage, error) {
	if topK <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		pos  int
		dist float32
	}
	candidates := make([]scored, 0, len(s.chunks))
	for i, c := range s.chunks {
		if len(c.Embedding) != len(embedding) {
			continue
		}
		candidates = append(candidates, scored{pos: i, dist: l2(c.Embedding, embedding)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	passages := make([]entity.Passage, 0, len(candidates))
	for _, c := range candidates {
		passages = append(passages, entity.Passage{
			Text:              s.chunks[c.pos].Text,
			EmbeddingDistance: c.dist,
		})
	}
	return passages, nil
}

func (s *MemoryStore) DeleteDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.chunks[:0]
	for _, c := range s.chunks {
		if c.DocumentID != documentID {
			kept = append(kept, c)
		}
	}
	s.chunks = kept
	return nil
}

func (s *MemoryStore) EnsureCollection(context.Context) error {
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func l2(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}
