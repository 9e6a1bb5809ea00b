package parser

import (
	"io"
	"strings"

	"github.com/KaramelBytes/sensordash-cli/internal/dataset"
)

type csvReader struct{}

func (csvReader) CanRead(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".txt")
}

func (csvReader) Read(r io.Reader, opt Options) ([][]string, error) {
	return dataset.ReadCSV(r, opt.Delimiter)
}

// tsvReader always splits on tabs, whatever delimiter is configured.
type tsvReader struct{}

func (tsvReader) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".tsv")
}

func (tsvReader) Read(r io.Reader, _ Options) ([][]string, error) {
	return dataset.ReadCSV(r, '\t')
}
