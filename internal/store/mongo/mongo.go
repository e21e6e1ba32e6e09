// Package mongo stores work log entries as documents of one collection.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tractorlog/internal/core"
	applog "tractorlog/internal/log"
)

// DefaultCollection holds one document per entry.
const DefaultCollection = "log_entries"

type entryDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Date     string             `bson:"date"`
	Customer string             `bson:"customer"`
	Location string             `bson:"location"`
	Tractor  string             `bson:"tractor"`
	Acres    float64            `bson:"acres"`
	Cost     int64              `bson:"cost"`
	Employee string             `bson:"employee"`
}

func toDocument(e core.LogEntry) entryDocument {
	return entryDocument{
		Date:     e.Date.String(),
		Customer: e.Customer,
		Location: e.Location,
		Tractor:  e.Tractor,
		Acres:    e.Acres,
		Cost:     e.Cost,
		Employee: e.Employee,
	}
}

func (d entryDocument) entry() (core.LogEntry, error) {
	date, err := core.ParseDate(d.Date)
	if err != nil {
		return core.LogEntry{}, fmt.Errorf("document %s: parse date %q: %w", d.ID.Hex(), d.Date, err)
	}
	return core.LogEntry{
		Date:     date,
		Customer: d.Customer,
		Location: d.Location,
		Tractor:  d.Tractor,
		Acres:    d.Acres,
		Cost:     d.Cost,
		Employee: d.Employee,
	}, nil
}

// Repository implements the record store on MongoDB.
type Repository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewRepository connects to uri and verifies the connection.
func NewRepository(ctx context.Context, uri string, dbName string) (*Repository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Repository{
		client:   client,
		dbName:   dbName,
		collName: DefaultCollection,
	}, nil
}

func (r *Repository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// Append inserts e as a new document.
func (r *Repository) Append(ctx context.Context, e core.LogEntry) error {
	res, err := r.collection().InsertOne(ctx, toDocument(e))
	if err != nil {
		return &core.StoreError{Op: core.OpAppend, Err: fmt.Errorf("insert entry: %w", err)}
	}
	slog.DebugContext(ctx, "Entry saved to MongoDB",
		applog.FieldComponent, applog.ComponentStore,
		"id", res.InsertedID,
		applog.FieldEmployee, e.Employee)
	return nil
}

// LoadAll returns every document ordered by id, which follows insertion.
func (r *Repository) LoadAll(ctx context.Context) ([]core.LogEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := r.collection().Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, &core.StoreError{Op: core.OpLoad, Err: fmt.Errorf("find entries: %w", err)}
	}
	defer cur.Close(ctx)

	var docs []entryDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, &core.StoreError{Op: core.OpLoad, Err: fmt.Errorf("decode entries: %w", err)}
	}

	entries := make([]core.LogEntry, 0, len(docs))
	for _, d := range docs {
		e, err := d.entry()
		if err != nil {
			return nil, &core.StoreError{Op: core.OpLoad, Err: err}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Close disconnects the client.
func (r *Repository) Close() error {
	return r.client.Disconnect(context.Background())
}
