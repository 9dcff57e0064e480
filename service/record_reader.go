package service

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/reclink-dev/reclink/domain"
)

// maxRecordLineSize bounds a single JSONL record line (1 MiB)
const maxRecordLineSize = 1 << 20

// RecordReaderImpl reads catalog and listing records from JSONL files
// (one JSON object per line). Input may be a single file path or a
// doublestar glob pattern matching several shard files.
type RecordReaderImpl struct{}

// NewRecordReader creates a new record reader service
func NewRecordReader() *RecordReaderImpl {
	return &RecordReaderImpl{}
}

// ReadProducts reads catalog records from the files matching pattern.
// IDs are assigned in read order, dense and zero-based.
func (r *RecordReaderImpl) ReadProducts(pattern string) ([]domain.ProductRecord, error) {
	files, err := r.resolvePattern(pattern)
	if err != nil {
		return nil, err
	}

	var products []domain.ProductRecord
	for _, path := range files {
		err := r.readLines(path, func(location string, data []byte) error {
			var rec struct {
				ProductName  string `json:"product_name"`
				Manufacturer string `json:"manufacturer"`
				Model        string `json:"model"`
			}
			if err := json.Unmarshal(data, &rec); err != nil {
				return domain.NewParseError(location, err)
			}
			products = append(products, domain.ProductRecord{
				ID:           len(products),
				Name:         rec.ProductName,
				Manufacturer: rec.Manufacturer,
				Model:        rec.Model,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return products, nil
}

// ReadListings reads listing records from the files matching pattern
func (r *RecordReaderImpl) ReadListings(pattern string) ([]domain.ListingRecord, error) {
	files, err := r.resolvePattern(pattern)
	if err != nil {
		return nil, err
	}

	var listings []domain.ListingRecord
	for _, path := range files {
		err := r.readLines(path, func(location string, data []byte) error {
			var rec struct {
				Title        string `json:"title"`
				Manufacturer string `json:"manufacturer"`
			}
			if err := json.Unmarshal(data, &rec); err != nil {
				return domain.NewParseError(location, err)
			}
			listings = append(listings, domain.ListingRecord{
				ID:           len(listings),
				Title:        rec.Title,
				Manufacturer: rec.Manufacturer,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return listings, nil
}

// resolvePattern expands a path or glob pattern into a sorted file list.
// A literal existing path short-circuits the glob machinery.
func (r *RecordReaderImpl) resolvePattern(pattern string) ([]string, error) {
	if info, err := os.Stat(pattern); err == nil && !info.IsDir() {
		return []string{pattern}, nil
	}

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("bad input pattern %q", pattern), err)
	}
	if len(matches) == 0 {
		return nil, domain.NewFileNotFoundError(pattern, nil)
	}

	sort.Strings(matches)
	return matches, nil
}

// readLines streams a JSONL file line by line, skipping blank lines
func (r *RecordReaderImpl) readLines(path string, handle func(location string, data []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return domain.NewFileNotFoundError(path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := handle(fmt.Sprintf("%s:%d", path, lineNo), line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return domain.NewInvalidInputError(fmt.Sprintf("failed to read %s", path), err)
	}
	return nil
}
