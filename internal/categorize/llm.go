package categorize

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"tandem/internal/llm"
	"tandem/internal/names"
)

// LLMCategorizer asks a language model and caches answers by name key.
// Only validated answers are cached; failures are retried next time.
type LLMCategorizer struct {
	client  llm.Client
	cache   *lru.Cache[string, Placement]
	timeout time.Duration
	log     *zap.Logger
}

var _ Categorizer = (*LLMCategorizer)(nil)

func NewLLMCategorizer(client llm.Client, cacheSize int, timeout time.Duration, log *zap.Logger) (*LLMCategorizer, error) {
	if cacheSize <= 0 {
		cacheSize = 512
	}
	cache, err := lru.New[string, Placement](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create categorizer cache: %w", err)
	}

	return &LLMCategorizer{
		client:  client,
		cache:   cache,
		timeout: timeout,
		log:     log,
	}, nil
}

func (c *LLMCategorizer) Categorize(ctx context.Context, itemName string) (Placement, error) {
	key := names.Key(itemName)
	if p, ok := c.cache.Get(key); ok {
		return p, nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	answer, err := llm.AskPlacement(ctx, c.client, names.Clean(itemName), Categories, Locations)
	if err != nil {
		return Placement{}, fmt.Errorf("categorize %q: %w", itemName, err)
	}

	category, ok := canonical(answer.Category, Categories)
	if !ok {
		return Placement{}, fmt.Errorf("category %q: %w", answer.Category, ErrUnknownPlacement)
	}
	location, ok := canonical(answer.Location, Locations)
	if !ok {
		return Placement{}, fmt.Errorf("location %q: %w", answer.Location, ErrUnknownPlacement)
	}

	p := Placement{Category: category, Location: location}
	c.cache.Add(key, p)

	c.log.Debug("item categorized",
		zap.String("item", itemName),
		zap.String("category", p.Category),
		zap.String("location", p.Location),
	)
	return p, nil
}
