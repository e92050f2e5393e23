package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/iliyamo/post-service/internal/model"
)

// postDocument is the BSON shape of a post inside the collection.  The
// model.Post type stays free of driver types so handlers and the MySQL
// backend never import bson.
type postDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Date        time.Time          `bson:"date"`
}

func (d postDocument) toModel() model.Post {
	return model.Post{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Date:        d.Date,
	}
}

// MongoPostRepo stores posts as documents in a single MongoDB collection.
type MongoPostRepo struct {
	coll *mongo.Collection // coll holds every post document
}

// NewMongoPostRepo constructs a MongoPostRepo over the given collection.
// The collection handle is shared by all requests; the driver's client is
// safe for concurrent use.
func NewMongoPostRepo(coll *mongo.Collection) *MongoPostRepo {
	return &MongoPostRepo{coll: coll}
}

var _ PostStore = (*MongoPostRepo)(nil)

// List returns every post document in natural order.
func (r *MongoPostRepo) List(ctx context.Context) ([]model.Post, error) {
	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	var docs []postDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Post, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

// Create inserts a new document.  The ObjectID is taken from the insert
// result and the creation date is truncated to BSON's millisecond precision
// so the returned post matches what a later read produces.
func (r *MongoPostRepo) Create(ctx context.Context, p *model.Post) error {
	doc := postDocument{
		Title:       p.Title,
		Description: p.Description,
		Date:        time.Now().UTC().Truncate(time.Millisecond),
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	p.ID = oid.Hex()
	p.Date = doc.Date
	return nil
}

// GetByID looks a post up by its hex identifier.  A missing document is not
// an error: nil is returned so the caller can render a null body.
func (r *MongoPostRepo) GetByID(ctx context.Context, id string) (*model.Post, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var doc postDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	p := doc.toModel()
	return &p, nil
}

// Delete removes the document with the given id.  Deleting an unknown id
// succeeds with a zero DeletedCount.
func (r *MongoPostRepo) Delete(ctx context.Context, id string) (*model.DeleteResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, err
	}
	return &model.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

// UpdateTitle sets the title of one document and leaves every other field
// as it is.
func (r *MongoPostRepo) UpdateTitle(ctx context.Context, id, title string) (*model.UpdateResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"title": title}},
	)
	if err != nil {
		return nil, err
	}
	return &model.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}, nil
}

// Ping checks the primary of the deployment the collection lives on.
func (r *MongoPostRepo) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}
