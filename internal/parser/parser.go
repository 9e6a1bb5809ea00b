package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/sensordash-cli/internal/dataset"
)

// Reader extracts raw rows (header first) from one source format.
type Reader interface {
	CanRead(filename string) bool
	Read(r io.Reader, opt Options) ([][]string, error)
}

// Options extends the normalizer options with source-specific settings.
type Options struct {
	dataset.Options
	// Sheet selects an XLSX worksheet by name. Empty means the first sheet.
	Sheet string
}

// DefaultOptions returns options for the sensor CSV export.
func DefaultOptions() Options {
	return Options{Options: dataset.DefaultOptions()}
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// ReaderFor selects a reader based on filename. CSV is the fallback.
func ReaderFor(filename string) Reader {
	for _, r := range registry {
		if r.CanRead(filename) {
			return r
		}
	}
	return csvReader{}
}

// ReadFile ingests a sensor export from disk.
func ReadFile(path string, opt Options) dataset.Result {
	f, err := os.Open(path)
	if err != nil {
		return readFailure(fmt.Errorf("open file: %w", err))
	}
	defer f.Close()
	return ReadUpload(filepath.Base(path), f, opt)
}

// ReadUpload ingests an already-open stream; filename only selects the format
// and names the dataset.
func ReadUpload(filename string, r io.Reader, opt Options) dataset.Result {
	rows, err := ReaderFor(filename).Read(r, opt)
	if err != nil {
		return readFailure(err)
	}
	return dataset.FromRows(filename, rows, opt.Options)
}

func readFailure(err error) dataset.Result {
	return dataset.Result{Err: &dataset.IngestError{Stage: dataset.StageRead, Err: err}}
}

func init() {
	Register(tsvReader{})
	Register(xlsxReader{})
	Register(csvReader{})
}
