package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/reclink-dev/reclink/domain"
)

// MatchOutputFormatterImpl implements the domain.MatchOutputFormatter interface
type MatchOutputFormatterImpl struct{}

// NewMatchOutputFormatter creates a new match output formatter
func NewMatchOutputFormatter() *MatchOutputFormatterImpl {
	return &MatchOutputFormatterImpl{}
}

// FormatMatchResponse formats a match response according to the specified format
func (f *MatchOutputFormatterImpl) FormatMatchResponse(response *domain.MatchResponse, req *domain.MatchRequest, writer io.Writer) error {
	switch req.OutputFormat {
	case domain.OutputFormatText:
		return f.formatAsText(response, req, writer)
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatCSV:
		return f.formatAsCSV(response, writer)
	default:
		return domain.NewUnsupportedFormatError(string(req.OutputFormat))
	}
}

// formatAsText formats the response as human-readable text
func (f *MatchOutputFormatterImpl) formatAsText(response *domain.MatchResponse, req *domain.MatchRequest, writer io.Writer) error {
	if !response.Success {
		fmt.Fprintf(writer, "Matching failed: %s\n", response.Error)
		return nil
	}

	fmt.Fprintf(writer, "Record Linkage Results\n")
	fmt.Fprintf(writer, "======================\n\n")

	if response.Statistics != nil {
		fmt.Fprintf(writer, "Summary:\n")
		fmt.Fprintf(writer, "  Products indexed: %d\n", response.Statistics.ProductsIndexed)
		fmt.Fprintf(writer, "  Listings processed: %d\n", response.Statistics.ListingsProcessed)
		fmt.Fprintf(writer, "  Listings matched: %d\n", response.Statistics.ListingsMatched)
		fmt.Fprintf(writer, "  Match rate: %.1f%%\n", response.Statistics.MatchRate*100)
		fmt.Fprintf(writer, "  Duration: %dms\n\n", response.Duration)
	}

	if req.ShowDetails {
		fmt.Fprintf(writer, "Index:\n")
		fmt.Fprintf(writer, "  Band configuration: %s\n", response.Band.String())
		if response.Statistics != nil {
			fmt.Fprintf(writer, "  Vocabulary size: %d\n", response.Statistics.VocabularySize)
			fmt.Fprintf(writer, "  Index buckets: %d (bucket size min/max/avg: %d/%d/%.2f)\n",
				response.Statistics.IndexBuckets,
				response.Statistics.MinBucketSize,
				response.Statistics.MaxBucketSize,
				response.Statistics.AvgBucketSize)
		}
		fmt.Fprintf(writer, "\n")
	}

	if len(response.Results) == 0 {
		fmt.Fprintf(writer, "No matches found.\n")
		return nil
	}

	fmt.Fprintf(writer, "Matches:\n")
	fmt.Fprintf(writer, "========\n\n")

	for _, result := range response.Results {
		if result == nil {
			continue
		}
		fmt.Fprintf(writer, "%s (%d listings)\n", productLabel(&result.Product), len(result.Listings))
		for i, listing := range result.Listings {
			fmt.Fprintf(writer, "  %d. %s\n", i+1, listingLabel(&listing))
		}
		fmt.Fprintf(writer, "\n")
	}

	return nil
}

// formatAsCSV formats the match pairs as CSV
func (f *MatchOutputFormatterImpl) formatAsCSV(response *domain.MatchResponse, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	defer csvWriter.Flush()

	header := []string{"listing_id", "product_id"}
	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, pair := range response.Pairs {
		record := []string{
			strconv.Itoa(pair.ListingID),
			strconv.Itoa(pair.ProductID),
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	return csvWriter.Error()
}

// productLabel renders a product for the text report
func productLabel(p *domain.ProductRecord) string {
	label := p.Name
	if p.Manufacturer != "" {
		label += " [" + p.Manufacturer + "]"
	}
	return fmt.Sprintf("#%d %s", p.ID, label)
}

// listingLabel renders a listing for the text report
func listingLabel(l *domain.ListingRecord) string {
	if l.Manufacturer != "" {
		return fmt.Sprintf("%s (%s)", l.Title, l.Manufacturer)
	}
	return l.Title
}
