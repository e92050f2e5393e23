package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/post-service/internal/model"
)

// MySQLPostRepo keeps posts in a relational table.  It is selected with
// STORE_DRIVER=mysql and exposes exactly the same behaviour as the document
// store, including the ObjectID-shaped identifiers.
type MySQLPostRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewMySQLPostRepo constructs a MySQLPostRepo with the provided DB handle.
func NewMySQLPostRepo(db *sql.DB) *MySQLPostRepo {
	return &MySQLPostRepo{db: db}
}

var _ PostStore = (*MySQLPostRepo)(nil)

const postsTableDDL = `CREATE TABLE IF NOT EXISTS posts (
	id          CHAR(24)  NOT NULL PRIMARY KEY,
	title       TEXT      NOT NULL,
	description TEXT      NOT NULL,
	created_at  DATETIME(3) NOT NULL
)`

// EnsureSchema creates the posts table when it does not exist yet.  It runs
// once at startup; there is no migration history.
func (r *MySQLPostRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, postsTableDDL)
	return err
}

// List returns all posts in insertion order.
func (r *MySQLPostRepo) List(ctx context.Context) ([]model.Post, error) {
	const q = `SELECT id, title, description, created_at FROM posts ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Date); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new row.  The identifier is generated here because MySQL
// has no ObjectID type; the INSERT is the only statement issued.
func (r *MySQLPostRepo) Create(ctx context.Context, p *model.Post) error {
	const q = "INSERT INTO posts (id, title, description, created_at) VALUES (?, ?, ?, ?)"
	id := primitive.NewObjectID().Hex()
	date := time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.db.ExecContext(ctx, q, id, p.Title, p.Description, date); err != nil {
		return err
	}
	p.ID = id
	p.Date = date
	return nil
}

// GetByID fetches a post by id and returns nil when no row matches.
func (r *MySQLPostRepo) GetByID(ctx context.Context, id string) (*model.Post, error) {
	if _, err := parseID(id); err != nil {
		return nil, err
	}
	const q = "SELECT id, title, description, created_at FROM posts WHERE id = ?"
	var p model.Post
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Title, &p.Description, &p.Date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Delete removes a post by id.
func (r *MySQLPostRepo) Delete(ctx context.Context, id string) (*model.DeleteResult, error) {
	if _, err := parseID(id); err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	return &model.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

// UpdateTitle changes the title of a post.  The connection is opened with
// clientFoundRows so RowsAffected counts matched rows; MySQL cannot report
// matched and changed rows from one statement, so both counts carry it.
func (r *MySQLPostRepo) UpdateTitle(ctx context.Context, id, title string) (*model.UpdateResult, error) {
	if _, err := parseID(id); err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, "UPDATE posts SET title = ? WHERE id = ?", title, id)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	return &model.UpdateResult{Acknowledged: true, MatchedCount: n, ModifiedCount: n}, nil
}

// Ping verifies the pool can reach the server.
func (r *MySQLPostRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
