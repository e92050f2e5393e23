package handler // handler package contains the post handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/post-service/internal/model"
	"github.com/iliyamo/post-service/internal/queue"
	"github.com/iliyamo/post-service/internal/repository"
	"github.com/iliyamo/post-service/internal/service"
)

// PostHandler serves the /posts routes.
type PostHandler struct {
	Store  repository.PostStore   // Store persists posts
	Events service.EventPublisher // Events announces successful writes
}

// NewPostHandler constructs a PostHandler and panics if the store is nil.
// A nil publisher is replaced by one that drops events.
func NewPostHandler(store repository.PostStore, events service.EventPublisher) *PostHandler {
	if store == nil {
		panic("nil store passed to NewPostHandler")
	}
	if events == nil {
		events = service.NopPublisher{}
	}
	return &PostHandler{Store: store, Events: events}
}

type createPostRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

type updatePostRequest struct {
	Title string `json:"title" validate:"required"`
}

// errorBody is the single error shape returned by every post route.
func errorBody(msg string) echo.Map {
	return echo.Map{"message": msg}
}

// storeError maps a repository error to a status code.  The driver's
// message is passed through verbatim.
func storeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, repository.ErrStoreUnavailable):
		return c.JSON(http.StatusServiceUnavailable, errorBody(err.Error()))
	default:
		c.Logger().Errorf("post store: %v", err)
		return c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
	}
}

// decodeRequest binds the JSON body into req and checks its tags.  A
// non-nil error is always the client's fault.
func decodeRequest(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.New("invalid request body")
	}
	return c.Validate(req)
}

// publish sends ev and only logs failures; the response is already decided.
func (h *PostHandler) publish(c echo.Context, ev queue.PostEvent) {
	ev.OccurredAt = time.Now().UTC()
	if err := h.Events.Publish(c.Request().Context(), ev); err != nil {
		c.Logger().Warnf("publish %s for %s: %v", ev.Type, ev.PostID, err)
	}
}

// ListPosts handles GET /posts and returns every post as a JSON array.
func (h *PostHandler) ListPosts(c echo.Context) error {
	posts, err := h.Store.List(c.Request().Context())
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

// SpecificPost handles GET /posts/specific, a static placeholder.
func (h *PostHandler) SpecificPost(c echo.Context) error {
	return c.String(http.StatusOK, "Specific Post")
}

// CreatePost handles POST /posts.  Title and description are required.
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req createPostRequest
	if err := decodeRequest(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
	}
	post := &model.Post{Title: req.Title, Description: req.Description}
	if err := h.Store.Create(c.Request().Context(), post); err != nil {
		return storeError(c, err)
	}
	if err := c.JSON(http.StatusOK, post); err != nil {
		return err
	}
	h.publish(c, queue.PostEvent{
		Type:        queue.PostCreated,
		PostID:      post.ID,
		Title:       post.Title,
		Description: post.Description,
		Count:       1,
	})
	return nil
}

// GetPost handles GET /posts/:id.  An unknown id answers 200 with a JSON
// null body.
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.Store.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeError(c, err)
	}
	if post == nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost handles DELETE /posts/:id and returns the delete summary.
func (h *PostHandler) DeletePost(c echo.Context) error {
	id := c.Param("id")
	res, err := h.Store.Delete(c.Request().Context(), id)
	if err != nil {
		return storeError(c, err)
	}
	if err := c.JSON(http.StatusOK, res); err != nil {
		return err
	}
	if res.DeletedCount > 0 {
		h.publish(c, queue.PostEvent{Type: queue.PostDeleted, PostID: id, Count: res.DeletedCount})
	}
	return nil
}

// UpdatePost handles PATCH /posts/:id.  Only the title can change.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	id := c.Param("id")
	var req updatePostRequest
	if err := decodeRequest(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
	}
	res, err := h.Store.UpdateTitle(c.Request().Context(), id, req.Title)
	if err != nil {
		return storeError(c, err)
	}
	if err := c.JSON(http.StatusOK, res); err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		h.publish(c, queue.PostEvent{Type: queue.PostUpdated, PostID: id, Title: req.Title, Count: res.MatchedCount})
	}
	return nil
}
