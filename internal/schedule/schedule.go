// Package schedule computes the order in which friends are offered the next
// prompt. Order is a pure greedy walk over a friend-graph snapshot; Runner
// loads the snapshot, retries seeds and stores the result.
package schedule

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"catchUpAPI/internal/apperr"
	"catchUpAPI/internal/store"
)

// stepBudget bounds the walk for a graph of n users.
func stepBudget(n int) int {
	return max(n*n+n, 16)
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, apperr.ErrSchedulingUnavailable)...)
}

// reachable reports whether every user in g can be reached from seed.
func reachable(g store.Graph, seed uuid.UUID) bool {
	seen := map[uuid.UUID]struct{}{seed: {}}
	queue := []uuid.UUID{seed}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, f := range g[cur] {
			if _, ok := seen[f]; !ok {
				seen[f] = struct{}{}
				queue = append(queue, f)
			}
		}
	}
	for id := range g {
		if _, ok := seen[id]; !ok {
			return false
		}
	}
	return true
}

// diversity counts the friends of candidate that the current user neither is
// nor already knows.
func diversity(g store.Graph, current, candidate uuid.UUID, known map[uuid.UUID]struct{}) int {
	n := 0
	for _, f := range g[candidate] {
		if f == current {
			continue
		}
		if _, ok := known[f]; !ok {
			n++
		}
	}
	return n
}

type candidate struct {
	id        uuid.UUID
	visits    int
	diversity int
}

func (c candidate) better(o candidate) bool {
	if c.visits != o.visits {
		return c.visits < o.visits
	}
	if c.diversity != o.diversity {
		return c.diversity > o.diversity
	}
	return c.id.String() < o.id.String()
}

// Order walks g from seed until every user has been visited at least once.
// Each step moves to the least visited friend of the current user, breaking
// ties by reach diversity and then by ID. The seed opens the order without
// counting as a visit.
//
// It fails with apperr.ErrSchedulingUnavailable when the seed is unknown, a
// user cannot be reached from the seed, the walk gets stuck, or it runs past
// its step budget. The result depends only on g and seed.
func Order(g store.Graph, seed uuid.UUID) ([]uuid.UUID, error) {
	if _, ok := g[seed]; !ok {
		return nil, unavailable("seed %s is not in the friend graph", seed)
	}
	if !reachable(g, seed) {
		return nil, unavailable("friend graph is not connected from seed %s", seed)
	}

	visits := make(map[uuid.UUID]int, len(g))
	for id := range g {
		visits[id] = 0
	}
	unvisited := len(g)

	order := []uuid.UUID{seed}
	current := seed
	budget := stepBudget(len(g))

	for unvisited > 0 {
		if len(order) > budget {
			return nil, unavailable("no full coverage from seed %s within %d steps", seed, budget)
		}

		friends := g[current]
		if len(friends) == 0 {
			return nil, unavailable("user %s has no friends", current)
		}
		known := make(map[uuid.UUID]struct{}, len(friends))
		for _, f := range friends {
			known[f] = struct{}{}
		}

		var best *candidate
		for _, f := range friends {
			if f == current || len(g[f]) == 0 {
				continue
			}
			c := candidate{id: f, visits: visits[f], diversity: diversity(g, current, f, known)}
			if best == nil || c.better(*best) {
				best = &c
			}
		}
		if best == nil {
			return nil, unavailable("no candidate among the friends of %s", current)
		}

		if visits[best.id] == 0 {
			unvisited--
		}
		visits[best.id]++
		order = append(order, best.id)
		current = best.id
	}

	return order, nil
}

// Users returns the IDs in g in a stable order.
func Users(g store.Graph) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
