// Package mongodb inspects the sync databases for error reports.
package mongodb

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/regisleandro/alfredo-ai/internal/domain"
)

// Client wraps the production and homologation Mongo clusters. The
// database name chosen per call decides which cluster is queried.
type Client struct {
	prd *mongo.Client
	hml *mongo.Client
}

// NewClient connects to both clusters. Either URI may be empty, in
// which case calls routed to that cluster fail.
func NewClient(ctx context.Context, prdURI, hmlURI string) (*Client, error) {
	client := &Client{}

	if prdURI != "" {
		prd, err := mongo.Connect(ctx, options.Client().ApplyURI(prdURI))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to production cluster: %w", err)
		}
		client.prd = prd
	}
	if hmlURI != "" {
		hml, err := mongo.Connect(ctx, options.Client().ApplyURI(hmlURI))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to homologation cluster: %w", err)
		}
		client.hml = hml
	}
	return client, nil
}

// Close disconnects both clusters.
func (c *Client) Close(ctx context.Context) error {
	if c.prd != nil {
		if err := c.prd.Disconnect(ctx); err != nil {
			return err
		}
	}
	if c.hml != nil {
		return c.hml.Disconnect(ctx)
	}
	return nil
}

// resolve maps the user-facing database name to a cluster and the
// actual database name. "aqila" lives on production; "aqila-hml" is an
// alias for "aqila-homologacao" on the homologation cluster.
func (c *Client) resolve(database string) (*mongo.Database, error) {
	client := c.hml
	if database == "aqila" {
		client = c.prd
	}
	if database == "aqila-hml" {
		database = "aqila-homologacao"
	}
	if client == nil {
		return nil, fmt.Errorf("no cluster configured for database %s", database)
	}
	return client.Database(database), nil
}

// SummarizeCollectionsWithError counts documents flagged with sync
// errors, grouped by gpa_code, across every collection of a database.
func (c *Client) SummarizeCollectionsWithError(ctx context.Context, database string) (*domain.Table, error) {
	db, err := c.resolve(database)
	if err != nil {
		return nil, err
	}

	collections, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	sort.Strings(collections)

	table := &domain.Table{Columns: []string{"gpa_code", "collection", "qtde"}}
	for _, collection := range collections {
		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: bson.D{
				{Key: "has_sync_error", Value: true},
				{Key: "pending_sync", Value: true},
			}}},
			{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: bson.D{{Key: "_gpa_code", Value: "$_gpa_code"}}},
				{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			}}},
		}

		groups, err := c.aggregate(ctx, db.Collection(collection), pipeline)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate %s: %w", collection, err)
		}
		for _, group := range groups {
			table.Rows = append(table.Rows, []string{group.gpaCode, collection, strconv.Itoa(group.count)})
		}
	}
	return table, nil
}

// SummarizePicturesByStatus counts documents of the "fotos" collection
// in a given status, grouped by gpa_code.
func (c *Client) SummarizePicturesByStatus(ctx context.Context, database, status string) (*domain.Table, error) {
	db, err := c.resolve(database)
	if err != nil {
		return nil, err
	}

	const collection = "fotos"
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "status", Value: status}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "_gpa_code", Value: "$_gpa_code"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	groups, err := c.aggregate(ctx, db.Collection(collection), pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s: %w", collection, err)
	}

	table := &domain.Table{Columns: []string{"gpa_code", "collection", "status", "qtde"}}
	for _, group := range groups {
		table.Rows = append(table.Rows, []string{group.gpaCode, collection, status, strconv.Itoa(group.count)})
	}
	return table, nil
}

type errorGroup struct {
	gpaCode string
	count   int
}

func (c *Client) aggregate(ctx context.Context, collection *mongo.Collection, pipeline mongo.Pipeline) ([]errorGroup, error) {
	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []errorGroup
	for cursor.Next(ctx) {
		var doc struct {
			ID struct {
				GpaCode any `bson:"_gpa_code"`
			} `bson:"_id"`
			Count int `bson:"count"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		groups = append(groups, errorGroup{gpaCode: stringify(doc.ID.GpaCode), count: doc.Count})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].gpaCode < groups[j].gpaCode })
	return groups, nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int32:
		return strconv.Itoa(int(v))
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
