package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reclink-dev/reclink/domain"
)

func newTestMatchService() *MatchServiceImpl {
	return NewMatchServiceWithDependencies(NewRecordReader(), NewNoOpProgressManager())
}

func testMatchRequest() *domain.MatchRequest {
	req := domain.DefaultMatchRequest()
	req.ProductsPath = "products.jsonl"
	req.ListingsPath = "listings.jsonl"
	return req
}

func cameraProducts() []domain.ProductRecord {
	return []domain.ProductRecord{
		{ID: 0, Name: "Cyber-shot DSC-W310", Manufacturer: "Sony", Model: "DSC-W310"},
		{ID: 1, Name: "PowerShot A1200", Manufacturer: "Canon", Model: "A1200"},
	}
}

func TestMatchRecords_LinksListingToProduct(t *testing.T) {
	svc := newTestMatchService()

	// The listing tokenizes to exactly the product's token set, so every
	// signature row agrees and every band collides
	listings := []domain.ListingRecord{
		{ID: 0, Title: "Sony Cyber-shot DSC-W310", Manufacturer: "Sony"},
		{ID: 1, Title: "Nikon Coolpix S3000"},
	}

	resp, err := svc.MatchRecords(context.Background(), cameraProducts(), listings, testMatchRequest())
	require.NoError(t, err)
	require.True(t, resp.Success)

	require.Len(t, resp.Pairs, 1)
	assert.Equal(t, 0, resp.Pairs[0].ListingID)
	assert.Equal(t, 0, resp.Pairs[0].ProductID)

	require.NotNil(t, resp.Statistics)
	assert.Equal(t, 2, resp.Statistics.ProductsIndexed)
	assert.Equal(t, 2, resp.Statistics.ListingsProcessed)
	assert.Equal(t, 1, resp.Statistics.ListingsMatched)
	assert.InDelta(t, 0.5, resp.Statistics.MatchRate, 1e-9)
	assert.Greater(t, resp.Statistics.VocabularySize, 0)

	assert.Greater(t, resp.Band.SignatureLength, 0)
	assert.Equal(t, resp.Band.SignatureLength, resp.Band.Bands*resp.Band.Rows)
}

func TestMatchRecords_GroupsResultsByProduct(t *testing.T) {
	svc := newTestMatchService()

	listings := []domain.ListingRecord{
		{ID: 0, Title: "Canon PowerShot A1200", Manufacturer: "Canon"},
	}

	resp, err := svc.MatchRecords(context.Background(), cameraProducts(), listings, testMatchRequest())
	require.NoError(t, err)

	// Every product appears, unmatched ones with an empty listing slice
	require.Len(t, resp.Results, 2)
	assert.Equal(t, 0, resp.Results[0].Product.ID)
	assert.Empty(t, resp.Results[0].Listings)
	assert.Equal(t, 1, resp.Results[1].Product.ID)
	require.Len(t, resp.Results[1].Listings, 1)
	assert.Equal(t, 0, resp.Results[1].Listings[0].ID)
}

func TestMatchRecords_SkipUnmatched(t *testing.T) {
	svc := newTestMatchService()

	req := testMatchRequest()
	req.SkipUnmatched = true

	listings := []domain.ListingRecord{
		{ID: 0, Title: "Canon PowerShot A1200", Manufacturer: "Canon"},
	}

	resp, err := svc.MatchRecords(context.Background(), cameraProducts(), listings, req)
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, 1, resp.Results[0].Product.ID)
}

func TestMatchRecords_TieBreakPolicies(t *testing.T) {
	// Both products carry the same token set so an ambiguous listing
	// collides with both
	products := []domain.ProductRecord{
		{ID: 0, Name: "Red Widget"},
		{ID: 1, Name: "Widget Red"},
	}
	listings := []domain.ListingRecord{
		{ID: 0, Title: "red widget"},
	}

	t.Run("all", func(t *testing.T) {
		req := testMatchRequest()
		req.TieBreak = domain.TieBreakAll

		resp, err := newTestMatchService().MatchRecords(context.Background(), products, listings, req)
		require.NoError(t, err)
		require.Len(t, resp.Pairs, 2)
		assert.Equal(t, 1, resp.Statistics.ListingsMatched)
	})

	t.Run("first", func(t *testing.T) {
		req := testMatchRequest()
		req.TieBreak = domain.TieBreakFirst

		resp, err := newTestMatchService().MatchRecords(context.Background(), products, listings, req)
		require.NoError(t, err)
		require.Len(t, resp.Pairs, 1)
		assert.Equal(t, 0, resp.Pairs[0].ProductID)
		assert.Equal(t, 1, resp.Statistics.ListingsMatched)
	})

	t.Run("unique", func(t *testing.T) {
		req := testMatchRequest()
		req.TieBreak = domain.TieBreakUnique

		resp, err := newTestMatchService().MatchRecords(context.Background(), products, listings, req)
		require.NoError(t, err)
		assert.Empty(t, resp.Pairs)
		assert.Equal(t, 0, resp.Statistics.ListingsMatched)
	})
}

func TestMatchRecords_EmptyCatalog(t *testing.T) {
	svc := newTestMatchService()

	listings := []domain.ListingRecord{{ID: 0, Title: "anything"}}

	resp, err := svc.MatchRecords(context.Background(), nil, listings, testMatchRequest())
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Pairs)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 1, resp.Statistics.ListingsProcessed)
	assert.Zero(t, resp.Statistics.MatchRate)
}

func TestMatchRecords_EmptyListings(t *testing.T) {
	svc := newTestMatchService()

	resp, err := svc.MatchRecords(context.Background(), cameraProducts(), nil, testMatchRequest())
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Pairs)
	assert.Zero(t, resp.Statistics.ListingsMatched)
	assert.Zero(t, resp.Statistics.MatchRate)
}

func TestMatchRecords_SortByMatches(t *testing.T) {
	svc := newTestMatchService()

	req := testMatchRequest()
	req.SortBy = domain.SortByMatches

	listings := []domain.ListingRecord{
		{ID: 0, Title: "Canon PowerShot A1200", Manufacturer: "Canon"},
		{ID: 1, Title: "PowerShot A1200 Canon"},
	}

	resp, err := svc.MatchRecords(context.Background(), cameraProducts(), listings, req)
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, 1, resp.Results[0].Product.ID)
	assert.Len(t, resp.Results[0].Listings, 2)
}

func TestMatchRecords_ReproducibleAcrossRuns(t *testing.T) {
	products := cameraProducts()
	listings := []domain.ListingRecord{
		{ID: 0, Title: "Sony Cyber-shot DSC-W310", Manufacturer: "Sony"},
	}

	req := testMatchRequest()
	req.Seed = 7

	first, err := newTestMatchService().MatchRecords(context.Background(), products, listings, req)
	require.NoError(t, err)

	second, err := newTestMatchService().MatchRecords(context.Background(), products, listings, req)
	require.NoError(t, err)

	assert.Equal(t, first.Pairs, second.Pairs)
	assert.Equal(t, first.Band, second.Band)
}

func TestMatch_ReadsRecordsFromFiles(t *testing.T) {
	dir := t.TempDir()
	productsPath := writeTestFile(t, dir, "products.jsonl", `{"product_name": "Cyber-shot DSC-W310", "manufacturer": "Sony", "model": "DSC-W310"}
`)
	listingsPath := writeTestFile(t, dir, "listings.jsonl", `{"title": "Sony Cyber-shot DSC-W310", "manufacturer": "Sony"}
{"title": "unrelated item"}
`)

	req := testMatchRequest()
	req.ProductsPath = productsPath
	req.ListingsPath = listingsPath

	resp, err := newTestMatchService().Match(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, resp.Pairs, 1)
	assert.Equal(t, 0, resp.Pairs[0].ProductID)
	assert.Equal(t, 1, resp.Statistics.ProductsIndexed)
	assert.Equal(t, 2, resp.Statistics.ListingsProcessed)
}

func TestMatch_InvalidRequest(t *testing.T) {
	req := testMatchRequest()
	req.SimThreshold = 1.5

	_, err := newTestMatchService().Match(context.Background(), req)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidParameter))
}

func TestMatch_MissingProductsFile(t *testing.T) {
	req := testMatchRequest()
	req.ProductsPath = "/nonexistent/products.jsonl"
	req.ListingsPath = "/nonexistent/listings.jsonl"

	_, err := newTestMatchService().Match(context.Background(), req)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeFileNotFound))
}
