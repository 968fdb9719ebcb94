package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCloseTimeout = 5 * time.Second

// MongoSink stores one document per run, keyed by run ID.
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoSink(ctx context.Context, uri, database, collection string) (*MongoSink, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}
	if collection == "" {
		collection = "run_transcripts"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoSink{client: client, collection: client.Database(database).Collection(collection)}, nil
}

func (ms *MongoSink) Write(ctx context.Context, rec Record) error {
	if ms == nil || ms.collection == nil {
		return nil
	}
	doc, err := mongoDocument(rec)
	if err != nil {
		return err
	}
	_, err = ms.collection.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (ms *MongoSink) Close(ctx context.Context) error {
	if ms == nil || ms.client == nil {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, mongoCloseTimeout)
		defer cancel()
	}
	return ms.client.Disconnect(ctx)
}

// mongoDocument keeps the transcript as native BSON so it stays queryable.
func mongoDocument(rec Record) (bson.M, error) {
	raw, err := json.Marshal(rec.Transcript)
	if err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	var transcript []any
	if err := json.Unmarshal(raw, &transcript); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	calls := make(bson.A, 0, len(rec.ToolCalls))
	for _, c := range rec.ToolCalls {
		calls = append(calls, bson.M{"call_id": c.CallID, "tool": c.Tool, "is_error": c.IsError})
	}
	doc := bson.M{
		"_id":        rec.RunID,
		"posture":    rec.Posture,
		"status":     rec.Status,
		"turns":      rec.Turns,
		"cancelled":  rec.Cancelled,
		"final_text": rec.FinalText,
		"tool_calls": calls,
		"transcript": transcript,
		"created_at": rec.CreatedAt,
	}
	if rec.Reason != "" {
		doc["reason"] = rec.Reason
	}
	return doc, nil
}
