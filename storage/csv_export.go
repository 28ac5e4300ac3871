package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"price-scout/models"
)

// CSVExporter dumps tracked price history to a CSV file, one row per
// history point. It is safe for concurrent use.
type CSVExporter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVExporter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVExporter(path string) (*CSVExporter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"url", "title", "source", "currency", "date", "price"}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVExporter{file: f, writer: w}, nil
}

// WriteHistory writes every tracked item's history, ordered by URL so the
// output is stable across runs.
func (c *CSVExporter) WriteHistory(items map[string]*models.TrackedItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	urls := make([]string, 0, len(items))
	for url := range items {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	for _, url := range urls {
		item := items[url]
		for _, point := range item.History {
			row := []string{
				url,
				item.Title,
				item.Source,
				item.Currency,
				point.Date,
				strconv.FormatFloat(point.Price, 'f', 2, 64),
			}
			if err := c.writer.Write(row); err != nil {
				return fmt.Errorf("csv: write row: %w", err)
			}
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVExporter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
