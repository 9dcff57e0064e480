package matcher

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/reclink-dev/reclink/domain"
)

// EntityID identifies a catalog entity in the index
type EntityID int

// bucketKey addresses one LSH bucket: the band position plus the
// combined hash of that band's signature chunk
type bucketKey struct {
	band int
	hash uint64
}

// BandedIndex is a banded LSH index over catalog signatures. Build phase
// and query phase are strictly separated: Insert until Freeze, then
// Query only. The frozen index is safe for concurrent readers without
// locking because nothing mutates it.
type BandedIndex struct {
	config  BandConfig
	buckets map[bucketKey][]EntityID
	size    int
	frozen  bool
}

// IndexStats provides statistics about a banded index
type IndexStats struct {
	Entities      int     `json:"entities" yaml:"entities"`
	Buckets       int     `json:"buckets" yaml:"buckets"`
	MinBucketSize int     `json:"min_bucket_size" yaml:"min_bucket_size"`
	MaxBucketSize int     `json:"max_bucket_size" yaml:"max_bucket_size"`
	AvgBucketSize float64 `json:"avg_bucket_size" yaml:"avg_bucket_size"`
}

// NewBandedIndex creates an empty index for the given band configuration
func NewBandedIndex(config BandConfig) *BandedIndex {
	return &BandedIndex{
		config:  config,
		buckets: make(map[bucketKey][]EntityID),
	}
}

// Config returns the band configuration the index was built with
func (idx *BandedIndex) Config() BandConfig {
	return idx.config
}

// Insert partitions the signature into bands, hashes each band's chunk
// and stores the entity id under every (band, chunkHash) bucket. Bands
// containing the empty-set sentinel are skipped so empty records are
// never indexed.
func (idx *BandedIndex) Insert(id EntityID, sig Signature) error {
	if idx.frozen {
		return domain.NewStateViolationError("insert into frozen index")
	}
	if len(sig) < idx.config.SignatureLength {
		return domain.NewInvalidParameterError(fmt.Sprintf(
			"signature has %d rows, need %d (bands=%d, rows=%d)",
			len(sig), idx.config.SignatureLength, idx.config.Bands, idx.config.Rows))
	}

	for band := 0; band < idx.config.Bands; band++ {
		h, ok := bandHash(sig, band, idx.config.Rows)
		if !ok {
			continue
		}
		key := bucketKey{band: band, hash: h}
		idx.buckets[key] = append(idx.buckets[key], id)
	}
	idx.size++
	return nil
}

// Freeze ends the build phase. Inserts after Freeze fail with a state
// violation; queries before Freeze do too.
func (idx *BandedIndex) Freeze() {
	idx.frozen = true
}

// Frozen reports whether the index has been frozen
func (idx *BandedIndex) Frozen() bool {
	return idx.frozen
}

// Size returns the number of inserted entities
func (idx *BandedIndex) Size() int {
	return idx.size
}

// Query returns the union of entity ids found under any band's bucket:
// a single shared band is enough to make an entity a candidate. The
// result is duplicate-free and sorted for deterministic output.
func (idx *BandedIndex) Query(sig Signature) ([]EntityID, error) {
	if !idx.frozen {
		return nil, domain.NewStateViolationError("query before index freeze")
	}
	if len(sig) < idx.config.SignatureLength {
		return nil, domain.NewInvalidParameterError(fmt.Sprintf(
			"signature has %d rows, need %d (bands=%d, rows=%d)",
			len(sig), idx.config.SignatureLength, idx.config.Bands, idx.config.Rows))
	}

	candidates := make(map[EntityID]struct{})
	for band := 0; band < idx.config.Bands; band++ {
		h, ok := bandHash(sig, band, idx.config.Rows)
		if !ok {
			continue
		}
		for _, id := range idx.buckets[bucketKey{band: band, hash: h}] {
			candidates[id] = struct{}{}
		}
	}

	ids := make([]EntityID, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Stats returns bucket statistics for the index
func (idx *BandedIndex) Stats() IndexStats {
	stats := IndexStats{
		Entities: idx.size,
		Buckets:  len(idx.buckets),
	}
	if len(idx.buckets) == 0 {
		return stats
	}

	total := 0
	first := true
	for _, ids := range idx.buckets {
		n := len(ids)
		total += n
		if first || n < stats.MinBucketSize {
			stats.MinBucketSize = n
		}
		if n > stats.MaxBucketSize {
			stats.MaxBucketSize = n
		}
		first = false
	}
	stats.AvgBucketSize = float64(total) / float64(len(idx.buckets))
	return stats
}

// bandHash combines one band's chunk of rows into a single bucket hash
// (FNV-1a over the little-endian row values). Returns ok=false when the
// chunk contains the empty-set sentinel.
func bandHash(sig Signature, band, rows int) (uint64, bool) {
	start := band * rows
	h := fnv.New64a()
	var buf [8]byte
	for i := start; i < start+rows; i++ {
		if sig[i] == EmptySetSentinel {
			return 0, false
		}
		binary.LittleEndian.PutUint64(buf[:], sig[i])
		_, _ = h.Write(buf[:])
	}
	return h.Sum64(), true
}
