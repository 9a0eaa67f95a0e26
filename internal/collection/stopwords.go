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

// LoadStopwords reads a newline-delimited stop-word list. Blank lines are
// skipped; lines starting with '#' are skipped when allowComments is set.
func LoadStopwords(path string, allowComments bool) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.Newf(apperrors.ErrStopwordsNotFound, "%s", path)
		}
		return nil, fmt.Errorf("opening stopwords %s: %w", path, err)
	}
	defer f.Close()
	stop, err := ParseStopwords(f, allowComments)
	if err != nil {
		return nil, fmt.Errorf("reading stopwords %s: %w", path, err)
	}
	return stop, nil
}

func ParseStopwords(r io.Reader, allowComments bool) (map[string]struct{}, error) {
	stop := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word == "" {
			continue
		}
		if allowComments && strings.HasPrefix(word, "#") {
			continue
		}
		stop[word] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return stop, nil
}
