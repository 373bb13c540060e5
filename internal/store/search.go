package store

import (
	"container/heap"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	bolt "go.etcd.io/bbolt"
	"gonum.org/v1/gonum/mat"
)

// Match is a search hit; lower Distance is closer
type Match struct {
	Chunk    Chunk
	Distance float64
}

// cosineDistance returns 1 - cos(a, b), or NaN when either vector is zero
func cosineDistance(a, b []float64) float64 {
	va := mat.NewVecDense(len(a), a)
	vb := mat.NewVecDense(len(b), b)
	norms := mat.Norm(va, 2) * mat.Norm(vb, 2)
	if norms == 0 {
		return math.NaN()
	}
	return 1 - mat.Dot(va, vb)/norms
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// matchHeap is a max-heap on distance holding the best matches seen so far
type matchHeap []Match

func (h matchHeap) Len() int           { return len(h) }
func (h matchHeap) Less(i, j int) bool { return h[i].Distance > h[j].Distance }
func (h matchHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *matchHeap) Push(x any) {
	*h = append(*h, x.(Match))
}

func (h *matchHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Search returns up to limit chunks nearest to vector by cosine distance,
// closest first. Chunks whose dimension differs from the query, or whose
// vector is zero, are ignored.
func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]Match, error) {
	if limit <= 0 || len(vector) == 0 {
		return nil, nil
	}
	query := toFloat64(vector)

	best := &matchHeap{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(chunksBucket).ForEach(func(_, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			var chunk Chunk
			if err := json.Unmarshal(v, &chunk); err != nil {
				return fmt.Errorf("failed to unmarshal chunk: %w", err)
			}
			if len(chunk.Vector) != len(query) {
				return nil
			}

			d := cosineDistance(query, toFloat64(chunk.Vector))
			if math.IsNaN(d) {
				return nil
			}
			chunk.Vector = nil

			if best.Len() < limit {
				heap.Push(best, Match{Chunk: chunk, Distance: d})
			} else if d < (*best)[0].Distance {
				(*best)[0] = Match{Chunk: chunk, Distance: d}
				heap.Fix(best, 0)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	matches := []Match(*best)
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	return matches, nil
}
