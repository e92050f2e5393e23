package model

import "time"

// Post is the single resource exposed by the API.  The ID is assigned by
// the store when the post is created and never changes afterwards.
//
// Fields:
//
//	ID          24 hex characters (a MongoDB ObjectID on every backend)
//	Title       free text, the only field PATCH can change
//	Description free text
//	Date        creation time, set once on insert
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// DeleteResult summarises a delete-by-id call.  DeletedCount is 0 when no
// post matched the identifier.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// UpdateResult summarises an update-title call.  MatchedCount is 0 when the
// identifier is unknown; ModifiedCount is 0 when the title was unchanged.
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}
