package domain

import "io"

// OutputFormat represents the output format for match results
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatCSV  OutputFormat = "csv"
)

// IsValid reports whether the format is one of the supported formats
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML, OutputFormatCSV:
		return true
	}
	return false
}

// SortCriteria defines how to sort grouped match results
type SortCriteria string

const (
	// SortByProduct orders results by catalog product id
	SortByProduct SortCriteria = "product"
	// SortByMatches orders results by matched listing count, descending
	SortByMatches SortCriteria = "matches"
	// SortByName orders results by product name
	SortByName SortCriteria = "name"
)

// ProgressManager manages progress tracking for long match runs.
//
// Implementations live in the service layer.
type ProgressManager interface {
	// Initialize sets up progress tracking with the maximum value
	Initialize(maxValue int)

	// Start starts the progress display
	Start(description string)

	// Update updates the progress
	Update(processed int)

	// Complete marks the progress as completed
	Complete(success bool)

	// SetWriter sets the output writer for progress display
	SetWriter(writer io.Writer)

	// IsInteractive returns true if progress should be shown
	IsInteractive() bool
}

// ReportWriter abstracts writing a formatted report to a destination.
// If outputPath is empty the provided writer is used directly.
type ReportWriter interface {
	Write(writer io.Writer, outputPath string, writeFunc func(io.Writer) error) error
}
