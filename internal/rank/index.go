// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"context"

	"github.com/pdiddy/paper-qa/internal/logger"
	"github.com/pdiddy/paper-qa/pkg/types"
)

// Index holds one embedding per corpus record so a run embeds the corpus
// once and only the query per question. It is read-only after BuildIndex.
type Index struct {
	emb     Embedder
	records []types.PaperRecord
	vectors []types.Embedding

	// Skipped counts records left out because their embedding failed.
	Skipped int
}

// BuildIndex embeds every record in corpus. A record whose embedding fails
// is logged and left out of the index; the rest of the corpus is still
// usable. Cancellation of ctx aborts the build.
func BuildIndex(ctx context.Context, emb Embedder, corpus []types.PaperRecord) (*Index, error) {
	idx := &Index{
		emb:     emb,
		records: make([]types.PaperRecord, 0, len(corpus)),
		vectors: make([]types.Embedding, 0, len(corpus)),
	}

	for i, r := range corpus {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := embed(ctx, emb, r.Text())
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("leaving paper %d out of the index: %v", i, err)
			idx.Skipped++
			continue
		}
		idx.records = append(idx.records, r)
		idx.vectors = append(idx.vectors, vec)
	}

	logger.Debug("indexed %d papers (%d skipped)", len(idx.records), idx.Skipped)
	return idx, nil
}

// Len returns the number of indexed records.
func (idx *Index) Len() int { return len(idx.records) }

// TopK embeds query and returns the k most similar indexed records with the
// same ordering rules as Rank. An empty index returns an empty result without
// embedding the query.
func (idx *Index) TopK(ctx context.Context, query string, k int) ([]types.ScoredPaper, error) {
	if len(idx.records) == 0 || k <= 0 {
		return []types.ScoredPaper{}, nil
	}

	qvec, err := embed(ctx, idx.emb, query)
	if err != nil {
		return nil, err
	}

	scored := make([]types.ScoredPaper, len(idx.records))
	for i, r := range idx.records {
		scored[i] = types.ScoredPaper{Record: r, Score: Similarity(qvec, idx.vectors[i])}
	}
	return TopK(scored, k), nil
}
