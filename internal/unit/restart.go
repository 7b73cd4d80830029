package unit

import (
	"errors"

	"github.com/dominikbraun/graph"

	"github.com/trly/host-ops/internal/apperr"
)

// RestartPlan returns unit filenames in safe restart order: every service
// precedes its paired timer, and units otherwise keep their inventory order.
func RestartPlan(units []ServiceUnit) ([]string, error) {
	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())

	position := make(map[string]int, len(units)*2)
	add := func(name string) error {
		if _, ok := position[name]; ok {
			return nil
		}
		position[name] = len(position)
		if err := g.AddVertex(name); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return err
		}
		return nil
	}

	for _, u := range units {
		if err := add(u.Filename); err != nil {
			return nil, apperr.Internal(err)
		}
		if u.TimerFilename == "" {
			continue
		}
		if err := add(u.TimerFilename); err != nil {
			return nil, apperr.Internal(err)
		}
		if err := g.AddEdge(u.Filename, u.TimerFilename); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
			return nil, apperr.Internal(err)
		}
	}

	sorted, err := graph.StableTopologicalSort(g, func(a, b string) bool {
		return position[a] < position[b]
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return sorted, nil
}
