package bias

import (
	"context"
	"fmt"
	"sort"

	"aiteddy-hq/guardian/pkg/safety/embedding"
	"aiteddy-hq/guardian/pkg/safety/model"
	"aiteddy-hq/guardian/pkg/safety/rules"
)

// Scoring methods reported in BiasAnalysisResult.Method.
const (
	MethodPattern   = "pattern"
	MethodEmbedding = "embedding"
)

// SimilarityThreshold is the cosine similarity above which an exemplar counts
// as a detected pattern.
const SimilarityThreshold = 0.7

// CategoryScores is what a Scorer produces for one text: a score per bias
// category and the pattern ids that contributed.
type CategoryScores struct {
	Scores   map[model.BiasType]float64
	Patterns []string
}

// Scorer computes per-category bias scores. Implementations must return a
// score for every type in model.ScoredBiasTypes.
type Scorer interface {
	Method() string
	Confidence() float64
	Score(ctx context.Context, text string) (*CategoryScores, error)
}

// tableFor maps a bias type to its rule table.
func tableFor(t model.BiasType) string {
	if t == model.BiasEducational {
		return rules.CategoryEducationalBias
	}
	return string(t)
}

// PatternScorer scores each category as min(1, matches*increment) over the
// category's phrase table.
type PatternScorer struct {
	store *rules.Store
}

// NewPatternScorer creates a phrase-table scorer.
func NewPatternScorer(store *rules.Store) *PatternScorer {
	return &PatternScorer{store: store}
}

// Method returns "pattern".
func (s *PatternScorer) Method() string { return MethodPattern }

// Confidence of phrase matching.
func (s *PatternScorer) Confidence() float64 { return 0.8 }

// Score matches text against every bias table. Pattern ids have the form
// "<category>_<subcategory>_<phrase>".
func (s *PatternScorer) Score(_ context.Context, text string) (*CategoryScores, error) {
	lower := rules.Normalize(text)
	out := &CategoryScores{
		Scores:   make(map[model.BiasType]float64, len(model.ScoredBiasTypes)),
		Patterns: make([]string, 0),
	}
	for _, bt := range model.ScoredBiasTypes {
		score, matches := s.store.Score(tableFor(bt), lower)
		out.Scores[bt] = score
		for _, m := range matches {
			out.Patterns = append(out.Patterns, string(bt)+"_"+m.Subcategory+"_"+m.Phrase)
		}
	}
	return out, nil
}

// Embedder turns texts into vectors. *embedding.Client implements it.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

type exemplar struct {
	category    model.BiasType
	subcategory string
	vector      []float64
}

// EmbeddingScorer scores each category as the highest cosine similarity
// between the text and that category's exemplar phrases. Exemplars are
// embedded once, when the scorer is built.
type EmbeddingScorer struct {
	embedder  Embedder
	exemplars []exemplar
}

// NewEmbeddingScorer embeds every bias phrase in store. It fails when the
// embedder cannot be reached, so callers can fall back to PatternScorer at
// startup rather than per request.
func NewEmbeddingScorer(ctx context.Context, embedder Embedder, store *rules.Store) (*EmbeddingScorer, error) {
	var (
		texts []string
		keys  []exemplar
	)
	for _, bt := range model.ScoredBiasTypes {
		table := store.Lookup(tableFor(bt))
		subs := make([]string, 0, len(table))
		for sub := range table {
			subs = append(subs, sub)
		}
		sort.Strings(subs)
		for _, sub := range subs {
			for _, phrase := range table[sub] {
				texts = append(texts, phrase)
				keys = append(keys, exemplar{category: bt, subcategory: sub})
			}
		}
	}

	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed bias exemplars: %w", err)
	}
	if len(vectors) != len(keys) {
		return nil, fmt.Errorf("embedded %d of %d bias exemplars", len(vectors), len(keys))
	}
	for i := range keys {
		keys[i].vector = vectors[i]
	}

	return &EmbeddingScorer{embedder: embedder, exemplars: keys}, nil
}

// Method returns "embedding".
func (s *EmbeddingScorer) Method() string { return MethodEmbedding }

// Confidence of similarity scoring.
func (s *EmbeddingScorer) Confidence() float64 { return 0.9 }

// Score embeds text and compares it with every exemplar. A subcategory is
// reported once as "<category>_<subcategory>" when any of its exemplars is
// more similar than SimilarityThreshold.
func (s *EmbeddingScorer) Score(ctx context.Context, text string) (*CategoryScores, error) {
	vecs, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if len(vecs) != 1 {
		return nil, embedding.ErrEmptyResponse
	}
	target := vecs[0]

	out := &CategoryScores{
		Scores:   make(map[model.BiasType]float64, len(model.ScoredBiasTypes)),
		Patterns: make([]string, 0),
	}
	for _, bt := range model.ScoredBiasTypes {
		out.Scores[bt] = 0
	}

	reported := make(map[string]bool)
	for _, ex := range s.exemplars {
		sim := model.Clamp01(embedding.Cosine(target, ex.vector))
		if sim > out.Scores[ex.category] {
			out.Scores[ex.category] = sim
		}
		id := string(ex.category) + "_" + ex.subcategory
		if sim > SimilarityThreshold && !reported[id] {
			reported[id] = true
			out.Patterns = append(out.Patterns, id)
		}
	}
	return out, nil
}
