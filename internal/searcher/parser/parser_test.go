package parser

import (
	"reflect"
	"testing"

	"github.com/adri-41/Recherche-Information/internal/indexer/tokenizer"
)

func TestParse(t *testing.T) {
	stop := map[string]struct{}{"the": {}, "of": {}}
	porter := tokenizer.NewNormalizer(stop, tokenizer.SnowballStemmer{})
	plain := tokenizer.NewNormalizer(nil, nil)

	tests := []struct {
		name  string
		query string
		n     *tokenizer.Normalizer
		want  []string
	}{
		{"plain", "Olive Oil Health", plain, []string{"olive", "oil", "health"}},
		{"stopwords", "the health of olive oil", tokenizer.NewNormalizer(stop, nil), []string{"health", "olive", "oil"}},
		{"stemmed", "running benefits", porter, []string{"run", "benefit"}},
		{"punctuation", "web-link, network!", plain, []string{"web", "link", "network"}},
		{"duplicates kept", "web web", plain, []string{"web", "web"}},
		{"blank", "   ", plain, []string{}},
		{"only stopwords", "the of", tokenizer.NewNormalizer(stop, nil), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Parse("q1", tt.query, tt.n)
			if plan.ID != "q1" || plan.RawQuery != tt.query {
				t.Errorf("plan header = %q/%q", plan.ID, plan.RawQuery)
			}
			if !reflect.DeepEqual(plan.Terms, tt.want) {
				t.Errorf("terms = %v, want %v", plan.Terms, tt.want)
			}
			if plan.Empty() != (len(tt.want) == 0) {
				t.Errorf("Empty() = %v", plan.Empty())
			}
		})
	}
}
