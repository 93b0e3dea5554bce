// Package graph mirrors the friend graph into Neo4j and reads it back as one
// snapshot for the question order scheduler.
package graph

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"catchUpAPI/internal/store"
)

// Runner executes one Cypher statement and buffers its result.
type Runner interface {
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

type Neo4jRunner struct {
	driver neo4j.DriverWithContext
	dbName string
}

func NewNeo4jRunner(ctx context.Context, uri, username, password, dbName string) (*Neo4jRunner, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("could not create Neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("could not reach Neo4j: %w", err)
	}
	return &Neo4jRunner{driver: driver, dbName: dbName}, nil
}

func (r *Neo4jRunner) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(
		ctx,
		r.driver,
		query,
		params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(r.dbName),
	)
	if err != nil {
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}
	return result, nil
}

func (r *Neo4jRunner) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

const (
	mergeUserQuery = `MERGE (u:User {id: $id})`

	mergeFriendshipQuery = `
		MERGE (a:User {id: $a})
		MERGE (b:User {id: $b})
		MERGE (a)-[:FRIENDS_WITH]-(b)`

	snapshotQuery = `
		MATCH (u:User)
		OPTIONAL MATCH (u)-[:FRIENDS_WITH]-(f:User)
		RETURN u.id AS id, collect(DISTINCT f.id) AS friends`
)

// Mirror keeps User nodes and undirected FRIENDS_WITH edges in Neo4j.
type Mirror struct {
	runner Runner
}

func NewMirror(r Runner) *Mirror {
	return &Mirror{runner: r}
}

func (m *Mirror) AddUser(ctx context.Context, id uuid.UUID) error {
	_, err := m.runner.Run(ctx, mergeUserQuery, map[string]any{"id": id.String()})
	return err
}

func (m *Mirror) AddFriendship(ctx context.Context, a, b uuid.UUID) error {
	_, err := m.runner.Run(ctx, mergeFriendshipQuery, map[string]any{"a": a.String(), "b": b.String()})
	return err
}

// Sync writes every user and edge of g into the mirror. It only adds: edges
// missing from g are left in place.
func (m *Mirror) Sync(ctx context.Context, g store.Graph) (int, error) {
	edges := 0
	for id, friends := range g {
		if err := m.AddUser(ctx, id); err != nil {
			return edges, err
		}
		for _, f := range friends {
			// Each undirected edge appears twice in g.
			if id.String() > f.String() {
				continue
			}
			if err := m.AddFriendship(ctx, id, f); err != nil {
				return edges, err
			}
			edges++
		}
	}
	return edges, nil
}

// FriendGraph reads the whole mirror in a single query.
func (m *Mirror) FriendGraph(ctx context.Context) (store.Graph, error) {
	result, err := m.runner.Run(ctx, snapshotQuery, nil)
	if err != nil {
		return nil, err
	}

	g := make(store.Graph, len(result.Records))
	for _, record := range result.Records {
		rawID, ok := record.Get("id")
		if !ok {
			return nil, fmt.Errorf("could not find return value 'id' in query result")
		}
		id, err := parseID(rawID)
		if err != nil {
			return nil, err
		}

		rawFriends, _ := record.Get("friends")
		list, _ := rawFriends.([]any)
		friends := make([]uuid.UUID, 0, len(list))
		for _, raw := range list {
			f, err := parseID(raw)
			if err != nil {
				return nil, err
			}
			if f != id {
				friends = append(friends, f)
			}
		}
		g[id] = friends
	}
	return g, nil
}

func parseID(v any) (uuid.UUID, error) {
	s, ok := v.(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("user id has type %T, want string", v)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id %q: %w", s, err)
	}
	return id, nil
}
