package service

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/reclink-dev/reclink/domain"
	"github.com/reclink-dev/reclink/internal/matcher"
)

// MatchServiceImpl implements the MatchService interface
type MatchServiceImpl struct {
	reader   domain.RecordReader
	progress domain.ProgressManager
}

// NewMatchService creates a new match service
func NewMatchService() *MatchServiceImpl {
	return &MatchServiceImpl{
		reader:   NewRecordReader(),
		progress: NewProgressManager(),
	}
}

// NewMatchServiceWithDependencies creates a match service with explicit
// collaborators (used by tests and the use case layer)
func NewMatchServiceWithDependencies(reader domain.RecordReader, progress domain.ProgressManager) *MatchServiceImpl {
	if reader == nil {
		reader = NewRecordReader()
	}
	if progress == nil {
		progress = NewNoOpProgressManager()
	}
	return &MatchServiceImpl{reader: reader, progress: progress}
}

// Match runs the full pipeline: read records, build the index, match
// every listing
func (s *MatchServiceImpl) Match(ctx context.Context, req *domain.MatchRequest) (*domain.MatchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	products, err := s.reader.ReadProducts(req.ProductsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}

	listings, err := s.reader.ReadListings(req.ListingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read listings: %w", err)
	}

	return s.MatchRecords(ctx, products, listings, req)
}

// MatchRecords matches already-loaded records. Catalog signatures are
// computed during the build phase; listings are then matched in
// parallel against the frozen index.
func (s *MatchServiceImpl) MatchRecords(ctx context.Context, products []domain.ProductRecord, listings []domain.ListingRecord, req *domain.MatchRequest) (*domain.MatchResponse, error) {
	start := time.Now()

	m := matcher.NewMatcher(matcher.Options{Seed: req.Seed})
	for i := range products {
		if err := m.BuildCatalog(matcher.EntityID(products[i].ID), products[i].MatchText()); err != nil {
			return nil, err
		}
	}

	if len(products) == 0 {
		return s.emptyResponse(req, len(listings), start), nil
	}

	band, err := m.FinalizeIndex(req.SimThreshold, req.ProbAtThreshold, req.MaxSignatureLength)
	if err != nil {
		return nil, err
	}

	candidates, err := s.matchListings(ctx, m, listings, req.MaxWorkers)
	if err != nil {
		return nil, err
	}

	if err := m.Done(); err != nil {
		return nil, err
	}

	pairs, matched := applyTieBreak(listings, candidates, req.TieBreak)

	indexStats, err := m.IndexStats()
	if err != nil {
		return nil, err
	}

	response := &domain.MatchResponse{
		Results: groupByProduct(products, listings, pairs, req),
		Pairs:   pairs,
		Band: domain.BandParameters{
			SignatureLength:     band.SignatureLength,
			Bands:               band.Bands,
			Rows:                band.Rows,
			AchievedProbability: band.Probability,
		},
		Statistics: &domain.MatchStatistics{
			ProductsIndexed:   len(products),
			ListingsProcessed: len(listings),
			ListingsMatched:   matched,
			MatchRate:         matchRate(matched, len(listings)),
			VocabularySize:    m.VocabularySize(),
			IndexBuckets:      indexStats.Buckets,
			MinBucketSize:     indexStats.MinBucketSize,
			MaxBucketSize:     indexStats.MaxBucketSize,
			AvgBucketSize:     indexStats.AvgBucketSize,
		},
		Duration: time.Since(start).Milliseconds(),
		Success:  true,
	}
	return response, nil
}

// matchListings fans listing queries out over the frozen index. The
// index and hash family are immutable at this point so workers share
// them without locks.
func (s *MatchServiceImpl) matchListings(ctx context.Context, m *matcher.Matcher, listings []domain.ListingRecord, maxWorkers int) ([][]matcher.EntityID, error) {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	s.progress.Initialize(len(listings))
	s.progress.Start("Matching listings")
	defer s.progress.Complete(true)

	candidates := make([][]matcher.EntityID, len(listings))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	// Workers finish out of order, so progress counts completions
	// through a shared counter instead of using the loop index
	var processed atomic.Int64

	for i := range listings {
		i := i
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			ids, err := m.MatchListing(listings[i].MatchText())
			if err != nil {
				return fmt.Errorf("listing %d: %w", listings[i].ID, err)
			}
			candidates[i] = ids
			s.progress.Update(int(processed.Add(1)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return candidates, nil
}

// applyTieBreak turns per-listing candidate sets into match pairs
// according to the configured policy and counts matched listings
func applyTieBreak(listings []domain.ListingRecord, candidates [][]matcher.EntityID, policy domain.TieBreakPolicy) ([]domain.MatchPair, int) {
	var pairs []domain.MatchPair
	matched := 0

	for i := range listings {
		ids := candidates[i]
		if len(ids) == 0 {
			continue
		}

		switch policy {
		case domain.TieBreakFirst:
			// Candidate sets are sorted, so the first id is the lowest
			pairs = append(pairs, domain.MatchPair{ListingID: listings[i].ID, ProductID: int(ids[0])})
		case domain.TieBreakUnique:
			if len(ids) != 1 {
				continue
			}
			pairs = append(pairs, domain.MatchPair{ListingID: listings[i].ID, ProductID: int(ids[0])})
		default: // TieBreakAll
			for _, id := range ids {
				pairs = append(pairs, domain.MatchPair{ListingID: listings[i].ID, ProductID: int(id)})
			}
		}
		matched++
	}
	return pairs, matched
}

// groupByProduct inverts listing->product pairs into the per-product
// result shape and applies the requested ordering
func groupByProduct(products []domain.ProductRecord, listings []domain.ListingRecord, pairs []domain.MatchPair, req *domain.MatchRequest) []*domain.ProductMatches {
	listingByID := make(map[int]domain.ListingRecord, len(listings))
	for _, listing := range listings {
		listingByID[listing.ID] = listing
	}

	byProduct := make(map[int][]domain.ListingRecord, len(products))
	for _, pair := range pairs {
		byProduct[pair.ProductID] = append(byProduct[pair.ProductID], listingByID[pair.ListingID])
	}

	results := make([]*domain.ProductMatches, 0, len(products))
	for i := range products {
		matchedListings := byProduct[products[i].ID]
		if len(matchedListings) == 0 && req.SkipUnmatched {
			continue
		}
		if matchedListings == nil {
			matchedListings = []domain.ListingRecord{}
		}
		results = append(results, &domain.ProductMatches{
			Product:  products[i],
			Listings: matchedListings,
		})
	}

	switch req.SortBy {
	case domain.SortByMatches:
		sort.SliceStable(results, func(i, j int) bool {
			return len(results[i].Listings) > len(results[j].Listings)
		})
	case domain.SortByName:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Product.Name < results[j].Product.Name
		})
	default:
		// Already in product id order
	}
	return results
}

// emptyResponse is returned for an empty catalog: nothing to index,
// nothing can match
func (s *MatchServiceImpl) emptyResponse(req *domain.MatchRequest, listingCount int, start time.Time) *domain.MatchResponse {
	return &domain.MatchResponse{
		Results: []*domain.ProductMatches{},
		Pairs:   []domain.MatchPair{},
		Statistics: &domain.MatchStatistics{
			ListingsProcessed: listingCount,
		},
		Duration: time.Since(start).Milliseconds(),
		Success:  true,
	}
}

// matchRate computes the matched percentage, guarding the empty stream
func matchRate(matched, processed int) float64 {
	if processed == 0 {
		return 0.0
	}
	return float64(matched) / float64(processed)
}
