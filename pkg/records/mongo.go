package records

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	errs "github.com/matzehuels/solutionmap/pkg/errors"
)

// MongoCollections names the MongoDB collection holding each record kind.
type MongoCollections struct {
	Categories    string `toml:"categories"`
	Subcategories string `toml:"subcategories"`
	Solutions     string `toml:"solutions"`
}

// DefaultMongoCollections uses the record kind as the collection name.
var DefaultMongoCollections = MongoCollections{
	Categories:    string(KindCategories),
	Subcategories: string(KindSubcategories),
	Solutions:     string(KindSolutions),
}

func (m MongoCollections) name(kind Kind) string {
	switch kind {
	case KindCategories:
		return m.Categories
	case KindSubcategories:
		return m.Subcategories
	default:
		return m.Solutions
	}
}

// MongoSource loads the three collections from a MongoDB database.
//
// Documents are read in insertion (_id) order so construction order matches
// the upstream table order. The document's _id is dropped; the record
// identifier is the "id" field like every other source.
type MongoSource struct {
	// URI is used to connect when Client is nil.
	URI      string
	Database string
	// Collections defaults to [DefaultMongoCollections].
	Collections MongoCollections
	// Client is an already connected client. It is not disconnected by Load.
	Client *mongo.Client
}

// Load connects if needed and reads all three collections concurrently.
func (s MongoSource) Load(ctx context.Context) (Collections, error) {
	names := s.Collections
	if names == (MongoCollections{}) {
		names = DefaultMongoCollections
	}
	for _, kind := range Kinds {
		if err := errs.ValidateCollectionName(names.name(kind)); err != nil {
			return Collections{}, err
		}
	}
	if s.Database == "" {
		return Collections{}, errs.New(errs.ErrCodeInvalidConfig, "mongo database name is required")
	}

	client := s.Client
	if client == nil {
		c, err := mongo.Connect(ctx, options.Client().ApplyURI(s.URI))
		if err != nil {
			return Collections{}, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "connect to mongo")
		}
		defer c.Disconnect(context.WithoutCancel(ctx))
		client = c
	}
	db := client.Database(s.Database)

	var out [3][]Row
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range Kinds {
		coll := db.Collection(names.name(kind))
		g.Go(func() error {
			rows, err := findAll(gctx, coll)
			if err != nil {
				return errs.Wrap(errs.ErrCodeSourceUnavailable, err, "load %s", coll.Name())
			}
			out[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Collections{}, err
	}

	return Collections{Categories: out[0], Subcategories: out[1], Solutions: out[2]}, nil
}

func findAll(ctx context.Context, coll *mongo.Collection) ([]Row, error) {
	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, RowFromBSON(d))
	}
	return rows, nil
}

// RowFromBSON converts a decoded document into a Row, dropping _id and
// turning BSON arrays and subdocuments into plain slices and maps.
func RowFromBSON(doc bson.M) Row {
	row := make(Row, len(doc))
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		row[k] = fromBSON(v)
	}
	return row
}

func fromBSON(v any) any {
	switch t := v.(type) {
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromBSON(e)
		}
		return out
	case bson.M:
		return map[string]any(RowFromBSON(t))
	case int32:
		return int64(t)
	case primitive.ObjectID:
		return t.Hex()
	default:
		return v
	}
}
