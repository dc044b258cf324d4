// Package candidate builds the ordered candidate sequence a selection indexes into.
package candidate

import (
	"context"
	"fmt"

	"wattle/downloader/internal/domain"

	log "github.com/sirupsen/logrus"
)

// ItemSource lists every activity item on the course page in document order
type ItemSource interface {
	GetItems(ctx context.Context) ([]domain.Item, error)
}

// Provider returns the candidates for a filter. The page is queried anew on
// every call, so two calls may disagree if the page changed in between.
type Provider interface {
	Candidates(ctx context.Context, filter string) ([]domain.Item, error)
}

type provider struct {
	source      ItemSource
	typeFilters map[string]string
}

func NewProvider(source ItemSource, typeFilters map[string]string) Provider {
	return &provider{
		source:      source,
		typeFilters: typeFilters,
	}
}

func (p *provider) Candidates(ctx context.Context, filter string) ([]domain.Item, error) {
	items, err := p.source.GetItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list course items: %w", err)
	}

	matcher := MatcherFor(filter, p.typeFilters)

	candidates := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if !matcher.Match(item) {
			continue
		}
		item.Ordinal = len(candidates) + 1
		candidates = append(candidates, item)
	}

	log.Debugf("Filter %q (%T) matched %d of %d items", filter, matcher, len(candidates), len(items))
	return candidates, nil
}
