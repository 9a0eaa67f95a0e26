// Package collection reads the inputs of a batch: the document collection,
// the stop-word list and the query set.
package collection

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/adri-41/Recherche-Information/internal/indexer/index"
	apperrors "github.com/adri-41/Recherche-Information/pkg/errors"
)

// docPattern matches one <doc><docno>ID</docno> ... </doc> block. Tags are
// case-insensitive and the body may span lines.
var docPattern = regexp.MustCompile(`(?is)<doc>\s*<docno>\s*([^<\s]+)\s*</docno>(.*?)</doc>`)

// Load reads the collection at path. Paths ending in .gz are decompressed.
func Load(path string) ([]index.Document, error) {
	text, err := readText(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.Newf(apperrors.ErrCollectionNotFound, "%s", path)
		}
		return nil, fmt.Errorf("reading collection %s: %w", path, err)
	}
	return Parse(text), nil
}

// Parse extracts every document block of text in order of appearance.
func Parse(text string) []index.Document {
	matches := docPattern.FindAllStringSubmatch(text, -1)
	docs := make([]index.Document, 0, len(matches))
	for _, m := range matches {
		docs = append(docs, index.Document{
			ID:   strings.TrimSpace(m[1]),
			Text: m[2],
		})
	}
	return docs
}

func readText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
