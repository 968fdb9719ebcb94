package audit

import (
	"context"
	"errors"

	neo4j "github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const neo4jRunCypher = `
MERGE (r:Run {id: $run_id})
SET r.posture = $posture, r.status = $status, r.turns = $turns, r.cancelled = $cancelled, r.created_at = $created_at
WITH r
UNWIND $calls AS call
MERGE (t:Tool {name: call.tool})
CREATE (r)-[:CALLED {call_id: call.call_id, is_error: call.is_error, seq: call.seq}]->(t)
`

// cypherExecutor runs one write query. It is satisfied by the driver adapter and by test fakes.
type cypherExecutor interface {
	Execute(ctx context.Context, query string, params map[string]any) error
	Close(ctx context.Context) error
}

// Neo4jSink records which tools each run called as (:Run)-[:CALLED]->(:Tool).
type Neo4jSink struct {
	exec cypherExecutor
}

func NewNeo4jSink(ctx context.Context, uri, username, password, database string) (*Neo4jSink, error) {
	if uri == "" {
		return nil, errors.New("neo4j uri is required")
	}
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}
	return &Neo4jSink{exec: &driverExecutor{driver: driver, database: database}}, nil
}

func (s *Neo4jSink) Write(ctx context.Context, rec Record) error {
	if s == nil || s.exec == nil {
		return nil
	}
	return s.exec.Execute(ctx, neo4jRunCypher, neo4jParams(rec))
}

func (s *Neo4jSink) Close(ctx context.Context) error {
	if s == nil || s.exec == nil {
		return nil
	}
	return s.exec.Close(ctx)
}

func neo4jParams(rec Record) map[string]any {
	calls := make([]any, 0, len(rec.ToolCalls))
	for i, c := range rec.ToolCalls {
		calls = append(calls, map[string]any{
			"call_id":  c.CallID,
			"tool":     c.Tool,
			"is_error": c.IsError,
			"seq":      int64(i),
		})
	}
	return map[string]any{
		"run_id":     rec.RunID,
		"posture":    rec.Posture,
		"status":     rec.Status,
		"turns":      int64(rec.Turns),
		"cancelled":  rec.Cancelled,
		"created_at": rec.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
		"calls":      calls,
	}
}

type driverExecutor struct {
	driver   neo4j.DriverWithContext
	database string
}

func (d *driverExecutor) Execute(ctx context.Context, query string, params map[string]any) error {
	_, err := neo4j.ExecuteQuery(ctx, d.driver, query, params, neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(d.database))
	return err
}

func (d *driverExecutor) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}
