package matcher

import (
	"fmt"
	"sync/atomic"

	"github.com/reclink-dev/reclink/domain"
)

// State is the matcher lifecycle state
type State int32

const (
	StateUninitialized State = iota
	StateVocabularyBuilt
	StateIndexBuilt
	StateQuerying
	StateDone
)

// String returns string representation of State
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateVocabularyBuilt:
		return "VocabularyBuilt"
	case StateIndexBuilt:
		return "IndexBuilt"
	case StateQuerying:
		return "Querying"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Options configures a Matcher
type Options struct {
	// Seed drives the hash family generation; equal seeds reproduce
	// equal signatures
	Seed int64

	// Solver bounds the band-parameter search
	Solver SolverOptions
}

// Matcher links listings to catalog entities. The lifecycle is a strict
// state machine: BuildCatalog calls accumulate the vocabulary and the
// characteristic matrix, FinalizeIndex freezes everything, then
// MatchListing may be called freely (including concurrently) until Done.
//
//	Uninitialized -> VocabularyBuilt -> IndexBuilt -> Querying -> Done
type Matcher struct {
	vocab    *Vocabulary
	entities []EntityID
	columns  []TokenSet

	family *HashFamily
	config BandConfig
	index  *BandedIndex

	opts  Options
	state atomic.Int32
}

// NewMatcher creates a matcher in the Uninitialized state
func NewMatcher(opts Options) *Matcher {
	return &Matcher{
		vocab: NewVocabulary(nil),
		opts:  opts,
	}
}

// State returns the current lifecycle state
func (m *Matcher) State() State {
	return State(m.state.Load())
}

// BuildCatalog registers one catalog entity: its raw text is tokenized
// once and the resulting token set cached as a column of the
// characteristic matrix. Fails with a state violation once the index
// has been finalized.
func (m *Matcher) BuildCatalog(id EntityID, rawText string) error {
	switch m.State() {
	case StateUninitialized, StateVocabularyBuilt:
	default:
		return domain.NewStateViolationError(
			fmt.Sprintf("BuildCatalog called in state %s", m.State()))
	}

	m.entities = append(m.entities, id)
	m.columns = append(m.columns, m.vocab.TokenSetFor(rawText))
	m.state.Store(int32(StateVocabularyBuilt))
	return nil
}

// FinalizeIndex generates the hash family, solves the band parameters
// for the requested S-curve point, computes every catalog signature and
// populates the index. The index is frozen before the method returns;
// the chosen configuration is returned so callers can log it.
func (m *Matcher) FinalizeIndex(simThreshold, probAtThreshold float64, maxSignatureLength int) (BandConfig, error) {
	if m.State() != StateVocabularyBuilt {
		return BandConfig{}, domain.NewStateViolationError(
			fmt.Sprintf("FinalizeIndex called in state %s", m.State()))
	}

	config, err := SolveBandConfig(simThreshold, probAtThreshold, maxSignatureLength, m.opts.Solver)
	if err != nil {
		return BandConfig{}, err
	}

	family, err := NewHashFamily(config.SignatureLength, m.vocab.Size(), m.opts.Seed)
	if err != nil {
		return BandConfig{}, err
	}

	index := NewBandedIndex(config)
	for i, id := range m.entities {
		sig := ComputeSignature(m.columns[i], family)
		if err := index.Insert(id, sig); err != nil {
			return BandConfig{}, err
		}
	}
	index.Freeze()

	m.family = family
	m.config = config
	m.index = index
	m.state.Store(int32(StateIndexBuilt))
	return config, nil
}

// MatchListing computes the listing's signature against the frozen
// vocabulary and hash family and returns every catalog entity sharing at
// least one band with it. The empty slice means no candidate. Safe for
// concurrent use once the index is built.
func (m *Matcher) MatchListing(rawText string) ([]EntityID, error) {
	s := m.State()
	if s != StateIndexBuilt && s != StateQuerying {
		return nil, domain.NewStateViolationError(
			fmt.Sprintf("MatchListing called in state %s", s))
	}
	m.state.CompareAndSwap(int32(StateIndexBuilt), int32(StateQuerying))

	set := m.vocab.Lookup(rawText)
	sig := ComputeSignature(set, m.family)
	return m.index.Query(sig)
}

// Done ends the query phase
func (m *Matcher) Done() error {
	s := m.State()
	if s != StateIndexBuilt && s != StateQuerying {
		return domain.NewStateViolationError(
			fmt.Sprintf("Done called in state %s", s))
	}
	m.state.Store(int32(StateDone))
	return nil
}

// BandParameters returns the solved band configuration. Valid once the
// index has been built.
func (m *Matcher) BandParameters() BandConfig {
	return m.config
}

// VocabularySize returns the number of distinct catalog tokens
func (m *Matcher) VocabularySize() int {
	return m.vocab.Size()
}

// IndexStats returns bucket statistics for the frozen index
func (m *Matcher) IndexStats() (IndexStats, error) {
	if m.index == nil {
		return IndexStats{}, domain.NewStateViolationError("index not built")
	}
	return m.index.Stats(), nil
}
