package custom

import (
	"context"

	"github.com/snipsco/snips-nlu-go/pkg/entities"
)

// Multi fans a Parse call out across every configured gazetteer and merges
// the results, resolving cross-entity overlaps with the same longest-wins
// rule each individual gazetteer applies internally.
type Multi struct {
	gazetteers []*Gazetteer
}

// NewMulti builds a combined Parser over one or more gazetteers.
func NewMulti(gazetteers ...*Gazetteer) *Multi {
	return &Multi{gazetteers: gazetteers}
}

func (m *Multi) EntityNames() []string {
	var names []string
	for _, g := range m.gazetteers {
		names = append(names, g.EntityNames()...)
	}
	return names
}

func (m *Multi) Parse(ctx context.Context, text string, scope []string) ([]entities.CustomResult, error) {
	var all []entities.CustomResult
	for _, g := range m.gazetteers {
		res, err := g.Parse(ctx, text, scope)
		if err != nil {
			return nil, err
		}
		all = append(all, res...)
	}
	return dedupOverlaps(all), nil
}

// Close releases every underlying gazetteer index.
func (m *Multi) Close() error {
	var firstErr error
	for _, g := range m.gazetteers {
		if err := g.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
