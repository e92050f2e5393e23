package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/post-service/internal/config"
)

// captureWriter tees the response into buf, up to limit bytes, while it is
// written to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 {
		cw.buf.Write(b)
	} else if remain := cw.limit - cw.size; remain > 0 {
		if int64(len(b)) <= remain {
			cw.buf.Write(b)
		} else {
			cw.buf.Write(b[:remain])
		}
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// cacheKeyFrom hashes the parts of the request named by KeyStrategy.  The
// prefix stays readable so InvalidateCache can match it.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	method := r.Method
	path := r.URL.Path
	query := r.URL.RawQuery

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = append(parts, "route", path)
	case "method_route":
		parts = append(parts, "method", method, "route", path)
	case "method_route_query":
		parts = append(parts, "method", method, "route", path, "q", query)
	default: // "route_query"
		parts = append(parts, "route", path, "q", query)
	}

	tail := strings.Join(parts[1:], ":")
	sum := sha1.Sum([]byte(tail))
	return fmt.Sprintf("%s:%x", parts[0], sum[:])
}

// cachedResponse is what a cache entry holds.
type cachedResponse struct {
	Status int         `json:"s"`
	Header http.Header `json:"h,omitempty"`
	Body   []byte      `json:"b,omitempty"`
}

func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	return json.Marshal(cachedResponse{Status: status, Header: header, Body: body})
}

// decodePayload reports ok=false for anything that is not a cache entry,
// so a corrupt key is treated as a miss.
func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	var cr cachedResponse
	if err := json.Unmarshal(bs, &cr); err != nil || cr.Status == 0 {
		return 0, nil, nil, false
	}
	if cr.Header == nil {
		cr.Header = http.Header{}
	}
	return cr.Status, cr.Header, cr.Body, true
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// storableHeaders copies the headers the handler produced.  Headers that
// outer middleware sets on every response (CORS, rate limit, X-Cache) and
// Content-Length are left out; they are written fresh on each request.
func storableHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, vals := range h {
		ck := http.CanonicalHeaderKey(k)
		switch {
		case ck == echo.HeaderContentLength, ck == echo.HeaderVary, ck == "X-Cache", ck == "Retry-After":
			continue
		case strings.HasPrefix(ck, "Access-Control-"), strings.HasPrefix(ck, "X-Ratelimit-"):
			continue
		}
		out[ck] = append([]string(nil), vals...)
	}
	return out
}

// NewRedisCache serves repeated reads of the post list and single posts
// from Redis.  Only 200 responses are stored, with the headers the handler
// set.  The X-Cache header reports HIT or MISS.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	maxBody := int64(cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}

			ctx := c.Request().Context()
			key := cacheKeyFrom(cfg, c)

			if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					live := c.Response().Header()
					for k, vals := range storableHeaders(hdr) {
						live[k] = append([]string(nil), vals...)
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					if len(body) > 0 {
						_, _ = c.Response().Write(body)
					}
					return nil
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			// Truncated bodies are never stored.
			if cw.status == http.StatusOK && (maxBody <= 0 || cw.size <= maxBody) {
				hdr := storableHeaders(c.Response().Header())
				if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
					if err := rdb.SetEx(context.Background(), key, payload, ttl).Err(); err != nil {
						c.Logger().Warnf("[cache] store %s: %v", key, err)
					}
				}
			}
			return nil
		}
	}
}

// InvalidateCache drops every cached response under the cache prefix after a
// successful write (any method the cache does not serve).  Post lists and
// single posts share the prefix, so one write clears both.
func InvalidateCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return err
			}
			if err != nil || c.Response().Status >= http.StatusBadRequest {
				return err
			}
			if n, ierr := purgePrefix(context.Background(), rdb, cfg.Prefix); ierr != nil {
				c.Logger().Warnf("[cache] invalidate %s: %v", cfg.Prefix, ierr)
			} else if n > 0 {
				c.Logger().Debugf("[cache] invalidated %d keys", n)
			}
			return nil
		}
	}
}

// purgePrefix deletes all keys matching prefix:* and returns how many were
// removed.  SCAN keeps the server responsive on large keyspaces.
func purgePrefix(ctx context.Context, rdb *redis.Client, prefix string) (int64, error) {
	var removed int64
	iter := rdb.Scan(ctx, 0, prefix+":*", 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			n, err := rdb.Del(ctx, batch...).Result()
			if err != nil {
				return removed, err
			}
			removed += n
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	if len(batch) > 0 {
		n, err := rdb.Del(ctx, batch...).Result()
		if err != nil {
			return removed, err
		}
		removed += n
	}
	return removed, nil
}
