package collection

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	apperrors "github.com/adri-41/Recherche-Information/pkg/errors"
)

// Query is one topic of the batch.
type Query struct {
	ID   string
	Text string
}

// LoadQueries reads one query per line as "<id> <text...>". Blank lines
// and '#' comments are skipped.
func LoadQueries(path string) ([]Query, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.Newf(apperrors.ErrQueriesNotFound, "%s", path)
		}
		return nil, fmt.Errorf("opening queries %s: %w", path, err)
	}
	defer f.Close()
	return ParseQueries(f)
}

func ParseQueries(r io.Reader) ([]Query, error) {
	var queries []Query
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id, text := line, ""
		if i := strings.IndexAny(line, " \t"); i >= 0 {
			id, text = line[:i], line[i+1:]
		}
		if _, dup := seen[id]; dup {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, "line %d: duplicate query id %q", lineNo, id)
		}
		seen[id] = struct{}{}
		queries = append(queries, Query{ID: id, Text: strings.TrimSpace(text)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading queries: %w", err)
	}
	return queries, nil
}
