// Package flat provides an exact nearest-neighbour vector index backed
// by a plain in-memory slice. Search cost is linear in the number of
// stored vectors, which is the right trade-off for repository-sized
// corpora where exact recall matters more than sub-millisecond lookups.
package flat

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
	"github.com/custodia-labs/oscalgen-cli/internal/core/ports/driven"
)

// File format constants. The header is magic, version, dimension and
// count as little-endian uint32s, followed by count records of
// (id length, id bytes, dimension float32s).
const (
	fileMagic   = 0x4F47564C // "OGVL"
	fileVersion = 1
)

// Index is an exact cosine-similarity index over float32 vectors.
// All methods are safe for concurrent use.
type Index struct {
	mu        sync.RWMutex
	dimension int
	ids       []string
	vectors   [][]float32
	byID      map[string]int
}

// Compile-time interface check
var _ driven.VectorIndex = (*Index)(nil)

// New creates an empty index for vectors of the given dimension.
func New(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidInput, dimension)
	}
	return &Index{
		dimension: dimension,
		byID:      make(map[string]int),
	}, nil
}

// Load reads a previously persisted index from path.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("index file %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("opening index file: %w", err)
	}
	defer f.Close()

	var header [16]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return nil, fmt.Errorf("%w: short header in %s", domain.ErrIndexCorrupt, path)
	}
	if binary.LittleEndian.Uint32(header[0:4]) != fileMagic {
		return nil, fmt.Errorf("%w: bad magic in %s", domain.ErrIndexCorrupt, path)
	}
	if v := binary.LittleEndian.Uint32(header[4:8]); v != fileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d in %s", domain.ErrIndexCorrupt, v, path)
	}
	dimension := int(binary.LittleEndian.Uint32(header[8:12]))
	count := int(binary.LittleEndian.Uint32(header[12:16]))
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: non-positive dimension in %s", domain.ErrIndexCorrupt, path)
	}

	idx := &Index{
		dimension: dimension,
		ids:       make([]string, 0, count),
		vectors:   make([][]float32, 0, count),
		byID:      make(map[string]int, count),
	}

	var lenBuf [4]byte
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(f, lenBuf[:]); err != nil {
			return nil, fmt.Errorf("%w: truncated record %d in %s", domain.ErrIndexCorrupt, i, path)
		}
		idLen := binary.LittleEndian.Uint32(lenBuf[:])
		if idLen == 0 || idLen > 1024 {
			return nil, fmt.Errorf("%w: implausible id length %d in %s", domain.ErrIndexCorrupt, idLen, path)
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(f, idBytes); err != nil {
			return nil, fmt.Errorf("%w: truncated id in record %d of %s", domain.ErrIndexCorrupt, i, path)
		}
		vecBytes := make([]byte, dimension*4)
		if _, err := io.ReadFull(f, vecBytes); err != nil {
			return nil, fmt.Errorf("%w: truncated vector in record %d of %s", domain.ErrIndexCorrupt, i, path)
		}
		vec := bytesToFloat32Slice(vecBytes)

		id := string(idBytes)
		if _, dup := idx.byID[id]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q in %s", domain.ErrIndexCorrupt, id, path)
		}
		idx.byID[id] = len(idx.ids)
		idx.ids = append(idx.ids, id)
		idx.vectors = append(idx.vectors, vec)
	}

	return idx, nil
}

// Dimension returns the vector dimension this index accepts.
func (i *Index) Dimension() int {
	return i.dimension
}

// Insert adds a vector under the given id. Inserting an existing id
// replaces the stored vector.
func (i *Index) Insert(ctx context.Context, id string, embedding []float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("%w: empty vector id", domain.ErrInvalidInput)
	}
	if len(embedding) != i.dimension {
		return fmt.Errorf("%w: vector for %s has dimension %d, index expects %d",
			domain.ErrInvalidInput, id, len(embedding), i.dimension)
	}

	// Copy so callers can reuse their buffer.
	vec := make([]float32, len(embedding))
	copy(vec, embedding)

	i.mu.Lock()
	defer i.mu.Unlock()

	if pos, ok := i.byID[id]; ok {
		i.vectors[pos] = vec
		return nil
	}
	i.byID[id] = len(i.ids)
	i.ids = append(i.ids, id)
	i.vectors = append(i.vectors, vec)
	return nil
}

// Search returns up to k stored vectors ranked by cosine similarity to
// the query, highest first. Ties break on ascending id so results are
// deterministic. An empty index returns an empty slice.
func (i *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	if len(query) != i.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			domain.ErrInvalidInput, len(query), i.dimension)
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	if len(i.ids) == 0 {
		return []driven.VectorHit{}, nil
	}

	hits := make([]driven.VectorHit, 0, len(i.ids))
	for pos, vec := range i.vectors {
		hits = append(hits, driven.VectorHit{
			ID:         i.ids[pos],
			Similarity: cosineSimilarity(query, vec),
		})
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Similarity != hits[b].Similarity {
			return hits[a].Similarity > hits[b].Similarity
		}
		return hits[a].ID < hits[b].ID
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of stored vectors.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.ids)
}

// Persist writes the index to location atomically via a temp file
// rename in the same directory.
func (i *Index) Persist(location string) error {
	i.mu.RLock()
	defer i.mu.RUnlock()

	dir := filepath.Dir(location)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".index-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp index file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := i.writeTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp index file: %w", err)
	}
	if err := os.Rename(tmpPath, location); err != nil {
		return fmt.Errorf("replacing index file: %w", err)
	}
	return nil
}

// Close releases the index. The flat index holds no external
// resources so this only drops the in-memory data.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.ids = nil
	i.vectors = nil
	i.byID = map[string]int{}
	return nil
}

func (i *Index) writeTo(w io.Writer) error {
	var header [16]byte
	binary.LittleEndian.PutUint32(header[0:4], fileMagic)
	binary.LittleEndian.PutUint32(header[4:8], fileVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(i.dimension))
	binary.LittleEndian.PutUint32(header[12:16], uint32(len(i.ids)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	var lenBuf [4]byte
	for pos, id := range i.ids {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(id)))
		if _, err := w.Write(lenBuf[:]); err != nil {
			return err
		}
		if _, err := w.Write([]byte(id)); err != nil {
			return err
		}
		if _, err := w.Write(float32SliceToBytes(i.vectors[pos])); err != nil {
			return err
		}
	}
	return nil
}

// cosineSimilarity computes the cosine of the angle between two
// equal-length vectors. Zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// float32SliceToBytes converts a float32 slice to little-endian bytes.
func float32SliceToBytes(floats []float32) []byte {
	bytes := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(bytes[i*4:], math.Float32bits(f))
	}
	return bytes
}

// bytesToFloat32Slice converts little-endian bytes back to float32s.
func bytesToFloat32Slice(bytes []byte) []float32 {
	floats := make([]float32, len(bytes)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(bytes[i*4:]))
	}
	return floats
}
