package analysis

import (
	"context"
	"fmt"

	"github.com/report-ai/cli/internal/db"
	"github.com/report-ai/cli/internal/index"
)

// Retriever fetches the context chunks for one evaluation cell using
// company-filtered vector search.
type Retriever struct {
	indexer *index.Indexer
	topK    int
}

// NewRetriever creates a retriever.
func NewRetriever(indexer *index.Indexer, topK int) *Retriever {
	if topK <= 0 {
		topK = 5 // Default
	}
	return &Retriever{
		indexer: indexer,
		topK:    topK,
	}
}

// RetrievalResult contains the chunks retrieved for a query.
type RetrievalResult struct {
	Entries []*db.SearchEntry
}

// Retrieve finds the chunks most relevant to the query within one company's
// documents. Result order is stable for a fixed index state.
func (r *Retriever) Retrieve(ctx context.Context, query, companyName string) (*RetrievalResult, error) {
	entries, err := r.indexer.Search(ctx, query, db.SearchFilters{CompanyName: companyName}, r.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve context for %s: %w", companyName, err)
	}
	return &RetrievalResult{Entries: entries}, nil
}

// SourcePaths returns the distinct document paths behind a retrieval, in
// retrieval order. Used as the evidence trail on evaluation rows.
func SourcePaths(result *RetrievalResult) []string {
	seen := make(map[string]bool, len(result.Entries))
	var paths []string
	for _, e := range result.Entries {
		if !seen[e.DocumentPath] {
			seen[e.DocumentPath] = true
			paths = append(paths, e.DocumentPath)
		}
	}
	return paths
}
