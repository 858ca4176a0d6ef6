// Package answers provides the learned-answer lookup service: exact match
// first, fuzzy token-sort fallback gated by a minimum score.
package answers

import (
	"context"
	"errors"

	"frontdesk/internal/db"
	"frontdesk/internal/match"
	"frontdesk/internal/models"
)

// DefaultThreshold is the minimum fuzzy score accepted when no threshold is
// configured.
const DefaultThreshold = 80

// Store is the subset of the database the cache needs.
type Store interface {
	GetLearnedAnswer(ctx context.Context, question string) (*models.LearnedAnswer, error)
	ListLearnedAnswers(ctx context.Context) ([]models.LearnedAnswer, error)
}

// Match is a successful lookup result.
type Match struct {
	Answer *models.LearnedAnswer
	Score  int
	Exact  bool
}

// Cache performs learned-answer lookups against a Store.
type Cache struct {
	store     Store
	threshold int
}

// NewCache creates a cache with the given fuzzy match threshold (0-100).
func NewCache(store Store, threshold int) *Cache {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultThreshold
	}
	return &Cache{store: store, threshold: threshold}
}

// LookupExact returns the answer stored under exactly this question text, or
// nil when there is none.
func (c *Cache) LookupExact(ctx context.Context, question string) (*Match, error) {
	la, err := c.store.GetLearnedAnswer(ctx, question)
	if errors.Is(err, db.ErrLearnedAnswerNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Match{Answer: la, Score: 100, Exact: true}, nil
}

// LookupFuzzy scores the question against every stored question and returns
// the single best candidate if it clears the threshold. Ties break in favor
// of the earliest stored answer, so results are deterministic for a given
// cache state.
func (c *Cache) LookupFuzzy(ctx context.Context, question string, threshold int) (*Match, error) {
	stored, err := c.store.ListLearnedAnswers(ctx)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, nil
	}

	normalized := match.Normalize(question)

	var best *models.LearnedAnswer
	bestScore := -1
	for i := range stored {
		score := match.Ratio(normalized, match.Normalize(stored[i].Question))
		if score > bestScore {
			best = &stored[i]
			bestScore = score
		}
	}

	if best == nil || bestScore < threshold {
		return nil, nil
	}
	return &Match{Answer: best, Score: bestScore}, nil
}

// Lookup tries an exact match first and only falls back to fuzzy matching on
// an exact miss. An exact hit always wins, regardless of what fuzzy scoring
// would have picked.
func (c *Cache) Lookup(ctx context.Context, question string) (*Match, error) {
	m, err := c.LookupExact(ctx, question)
	if err != nil || m != nil {
		return m, err
	}
	return c.LookupFuzzy(ctx, question, c.threshold)
}

// Threshold returns the configured fuzzy match threshold.
func (c *Cache) Threshold() int {
	return c.threshold
}
