package prompttune

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/smallnest/graphrag/llm"
	"github.com/smallnest/graphrag/log"
)

// SelectionMethod picks which chunks of the corpus the tuner works from.
type SelectionMethod string

const (
	// SelectRandom samples chunks uniformly.
	SelectRandom SelectionMethod = "random"
	// SelectTop takes the first chunks in document order.
	SelectTop SelectionMethod = "top"
	// SelectAuto embeds the chunks, clusters them with k-means and takes the
	// chunk nearest each cluster center.
	SelectAuto SelectionMethod = "auto"
)

const kmeansMaxIterations = 20

type chunkSelector struct {
	method     SelectionMethod
	limit      int
	k          int
	nSubsetMax int
	embedder   llm.Embedder
	rng        *rand.Rand
}

func (s *chunkSelector) selectChunks(ctx context.Context, chunks []string) ([]string, error) {
	switch s.method {
	case SelectTop:
		if len(chunks) <= s.limit {
			return chunks, nil
		}
		return chunks[:s.limit], nil

	case SelectRandom, "":
		if len(chunks) <= s.limit {
			return chunks, nil
		}
		perm := s.rng.Perm(len(chunks))
		selected := make([]string, 0, s.limit)
		for _, i := range perm[:s.limit] {
			selected = append(selected, chunks[i])
		}
		return selected, nil

	case SelectAuto:
		return s.selectAuto(ctx, chunks)

	default:
		return nil, fmt.Errorf("unknown selection method %q", s.method)
	}
}

// selectAuto embeds up to nSubsetMax chunks and picks the one nearest each
// k-means cluster center, so the sample spans the corpus instead of a corner
// of it.
func (s *chunkSelector) selectAuto(ctx context.Context, chunks []string) ([]string, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("embedder is required for auto chunk selection")
	}

	subset := chunks
	if s.nSubsetMax > 0 && len(chunks) > s.nSubsetMax {
		perm := s.rng.Perm(len(chunks))
		subset = make([]string, 0, s.nSubsetMax)
		for _, i := range perm[:s.nSubsetMax] {
			subset = append(subset, chunks[i])
		}
	}
	if s.k >= len(subset) {
		return subset, nil
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, subset)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks for selection: %w", err)
	}
	if len(vectors) != len(subset) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(subset))
	}

	indices := kmeansRepresentatives(vectors, s.k, s.rng)
	selected := make([]string, 0, len(indices))
	for _, i := range indices {
		selected = append(selected, subset[i])
	}
	log.Info("auto selection kept %d of %d chunks", len(selected), len(chunks))
	return selected, nil
}

// kmeansRepresentatives clusters the vectors into k groups with Lloyd
// iterations and returns the index of the vector closest to each center.
// Centers are seeded farthest-first so well separated regions each get one.
func kmeansRepresentatives(vectors [][]float32, k int, rng *rand.Rand) []int {
	n := len(vectors)
	if k >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}

	centers := make([][]float32, 0, k)
	centers = append(centers, vectors[rng.Intn(n)])
	for len(centers) < k {
		farthest, maxDist := 0, -1.0
		for i, vec := range vectors {
			dist := math.MaxFloat64
			for _, c := range centers {
				if d := squaredDistance(vec, c); d < dist {
					dist = d
				}
			}
			if dist > maxDist {
				farthest, maxDist = i, dist
			}
		}
		centers = append(centers, vectors[farthest])
	}

	assignments := make([]int, n)
	for iter := 0; iter < kmeansMaxIterations; iter++ {
		changed := false
		for i, vec := range vectors {
			best, bestDist := 0, math.MaxFloat64
			for c, center := range centers {
				if d := squaredDistance(vec, center); d < bestDist {
					best, bestDist = c, d
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		for c := range centers {
			var sum []float64
			count := 0
			for i, a := range assignments {
				if a != c {
					continue
				}
				if sum == nil {
					sum = make([]float64, len(vectors[i]))
				}
				for j, v := range vectors[i] {
					sum[j] += float64(v)
				}
				count++
			}
			if count == 0 {
				continue
			}
			mean := make([]float32, len(sum))
			for j, v := range sum {
				mean[j] = float32(v / float64(count))
			}
			centers[c] = mean
		}
	}

	representatives := make([]int, 0, k)
	for c, center := range centers {
		best, bestDist := -1, math.MaxFloat64
		for i, a := range assignments {
			if a != c {
				continue
			}
			if d := squaredDistance(vectors[i], center); d < bestDist {
				best, bestDist = i, d
			}
		}
		if best >= 0 {
			representatives = append(representatives, best)
		}
	}
	sort.Ints(representatives)
	return representatives
}

func squaredDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
