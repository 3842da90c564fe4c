package internal

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sports-platform/internal/apperr"
	"sports-platform/internal/auth"
	"sports-platform/internal/store"
)

const (
	ctxRequestID = "request_id"
	headerReqID  = "X-Request-ID"
)

// bearer extracts the token from an "Authorization: Bearer <token>" header.
// Any other scheme, including a bare token, is rejected.
func bearer(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}
	tok, found := strings.CutPrefix(header, "Bearer ")
	tok = strings.TrimSpace(tok)
	if !found || tok == "" {
		return "", auth.ErrInvalidToken
	}
	return tok, nil
}

// Auth verifies the bearer token, checks that its account still exists and
// puts the identity on the request context.
func Auth(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearer(c.GetHeader("Authorization"))
		var id auth.Identity
		if err == nil {
			id, err = d.Tokens.Verify(raw)
		}
		if err != nil {
			msg, outcome := "bad token", "invalid"
			switch {
			case errors.Is(err, auth.ErrMissingToken):
				msg, outcome = "not authorized", "missing"
			case errors.Is(err, auth.ErrExpiredToken):
				msg, outcome = "token expired", "expired"
			}
			d.Metrics.Auth("verify", outcome)
			abort(c, apperr.Wrap(apperr.KindUnauthenticated, msg, err))
			return
		}

		userID, _ := store.ParseID(id.UserID)
		if _, err := d.Store.Users.ByID(c.Request.Context(), userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				d.Metrics.Auth("verify", "unknown_user")
				abort(c, apperr.Unauthenticated("account no longer exists"))
				return
			}
			d.fail(c, err)
			return
		}

		c.Request = c.Request.WithContext(auth.NewContext(c.Request.Context(), id))
		c.Next()
	}
}

// Allow is the route-level role guard: it evaluates the action policy
// without a resource. Owner-based grants need the resource and are checked
// in the handler.
func Allow(act auth.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authorize(c, act, nil); err != nil {
			abort(c, err)
			return
		}
		c.Next()
	}
}

func authorize(c *gin.Context, act auth.Action, res auth.Resource) error {
	if !auth.Can(identity(c), act, res) {
		return apperr.Forbidden("not allowed")
	}
	return nil
}

func identity(c *gin.Context) auth.Identity {
	id, _ := auth.FromContext(c.Request.Context())
	return id
}

// uid is the caller's user id. Tokens always carry a valid one.
func uid(c *gin.Context) store.ID {
	id, _ := store.ParseID(identity(c).UserID)
	return id
}

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerReqID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerReqID, id)
		c.Next()
	}
}

func AccessLog(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		ev := log.Info()
		if status >= http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Str("request_id", c.GetString(ctxRequestID)).
			Str("uid", identity(c).UserID).
			Msg("http request")
	}
}

func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		log.Error().Interface("panic", rec).Str("path", c.Request.URL.Path).Msg("panic recovered")
		abort(c, errors.New("panic"))
	})
}
