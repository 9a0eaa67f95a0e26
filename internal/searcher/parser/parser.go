package parser

import (
	"strings"

	"github.com/adri-41/Recherche-Information/internal/indexer/tokenizer"
)

// QueryPlan is a query normalized for one configuration. Terms keeps
// duplicates; schemes that weight query tf rely on them.
type QueryPlan struct {
	ID       string
	RawQuery string
	Terms    []string
}

// Parse normalizes query with the same Normalizer used to build the index
// it will be scored against.
func Parse(id, query string, n *tokenizer.Normalizer) *QueryPlan {
	plan := &QueryPlan{
		ID:       id,
		RawQuery: query,
		Terms:    make([]string, 0),
	}
	if strings.TrimSpace(query) == "" {
		return plan
	}
	plan.Terms = n.Normalize(query)
	return plan
}

// Empty reports whether no term survived normalization.
func (p *QueryPlan) Empty() bool {
	return len(p.Terms) == 0
}
