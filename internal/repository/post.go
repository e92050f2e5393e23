package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/post-service/internal/model"
)

// PostStore is the adapter between HTTP handlers and the database.  Every
// method issues a single call to the underlying store and returns its
// result or its error; there is no retry and no caching at this level.
type PostStore interface {
	// List returns every post.  The slice is empty, not nil, when the
	// collection is empty.
	List(ctx context.Context) ([]model.Post, error)
	// Create inserts p and fills in its ID and Date.
	Create(ctx context.Context, p *model.Post) error
	// GetByID returns nil and no error when no post has the given id.
	GetByID(ctx context.Context, id string) (*model.Post, error)
	Delete(ctx context.Context, id string) (*model.DeleteResult, error)
	// UpdateTitle changes the title only; the description is left alone.
	UpdateTitle(ctx context.Context, id, title string) (*model.UpdateResult, error)
	// Ping reports whether the store is reachable.  Used by /healthz.
	Ping(ctx context.Context) error
}

// parseID converts the public hex form of an identifier into an ObjectID.
// Both backends use the ObjectID format so clients see the same ids
// whichever store is configured.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// UnavailablePostStore is used when the database connection failed at
// startup.  The process keeps serving; every post operation fails with
// ErrStoreUnavailable.
type UnavailablePostStore struct {
	// Cause is the startup error, kept so health checks can report it.
	Cause error
}

func (u UnavailablePostStore) List(context.Context) ([]model.Post, error) {
	return nil, ErrStoreUnavailable
}

func (u UnavailablePostStore) Create(context.Context, *model.Post) error {
	return ErrStoreUnavailable
}

func (u UnavailablePostStore) GetByID(context.Context, string) (*model.Post, error) {
	return nil, ErrStoreUnavailable
}

func (u UnavailablePostStore) Delete(context.Context, string) (*model.DeleteResult, error) {
	return nil, ErrStoreUnavailable
}

func (u UnavailablePostStore) UpdateTitle(context.Context, string, string) (*model.UpdateResult, error) {
	return nil, ErrStoreUnavailable
}

func (u UnavailablePostStore) Ping(context.Context) error {
	if u.Cause != nil {
		return u.Cause
	}
	return ErrStoreUnavailable
}
