package internal

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sports-platform/internal/apperr"
	"sports-platform/internal/audit"
	"sports-platform/internal/auth"
	"sports-platform/internal/cache"
	"sports-platform/internal/metrics"
	"sports-platform/internal/notify"
	"sports-platform/internal/store"
)

// Deps carries everything the handlers need. It is built once in main.
type Deps struct {
	Store    *store.Store
	Tokens   *auth.Issuer
	Audit    audit.Recorder
	Cache    cache.Cache
	CacheTTL time.Duration
	Events   notify.Publisher
	Metrics  *metrics.Metrics
	Log      zerolog.Logger

	UploadDir   string
	CORSOrigins []string
	Tracing     bool
}

func (d *Deps) defaults() {
	if d.Audit == nil {
		d.Audit = audit.NewMemory(1000)
	}
	if d.Cache == nil {
		d.Cache = cache.Nop{}
	}
	if d.CacheTTL <= 0 {
		d.CacheTTL = time.Minute
	}
	if d.Events == nil {
		d.Events = notify.Nop{}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
}

// classify turns err into a response kind and a client-safe message.
func classify(err error) (apperr.Kind, string) {
	var ae *apperr.Error
	switch {
	case errors.As(err, &ae):
		return ae.Kind, ae.Msg
	case errors.Is(err, store.ErrNotFound):
		return apperr.KindNotFound, "not found"
	case errors.Is(err, store.ErrConflict):
		return apperr.KindConflict, "already exists"
	default:
		return apperr.KindInternal, "internal error"
	}
}

func abort(c *gin.Context, err error) {
	kind, msg := classify(err)
	c.AbortWithStatusJSON(apperr.Status(kind), gin.H{"error": msg, "kind": kind})
}

// fail writes the error response. Internal errors are logged, never shown.
func (d *Deps) fail(c *gin.Context, err error) {
	if kind, _ := classify(err); kind == apperr.KindInternal {
		d.Log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("request_id", c.GetString(ctxRequestID)).
			Msg("request failed")
	}
	abort(c, err)
}

// logAction appends to the audit log. A failed write does not fail the request.
func (d *Deps) logAction(ctx context.Context, actorID, action, details string) {
	if err := d.Audit.Record(ctx, audit.Entry{ActorID: actorID, Action: action, Details: details}); err != nil {
		d.Log.Warn().Err(err).Str("action", action).Msg("audit write failed")
	}
}

// publish emits a domain event. A broker failure does not fail the request.
func (d *Deps) publish(ctx context.Context, ev notify.Event) {
	if err := d.Events.Publish(ctx, ev); err != nil {
		d.Metrics.Event(ev.Type, "error")
		d.Log.Warn().Err(err).Str("type", ev.Type).Msg("event publish failed")
		return
	}
	d.Metrics.Event(ev.Type, "ok")
}

func (d *Deps) invalidate(ctx context.Context, keys ...string) {
	if err := d.Cache.Delete(ctx, keys...); err != nil {
		d.Log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}

// paramID parses the :id path parameter. Malformed ids read as not found.
func paramID(c *gin.Context, what string) (store.ID, error) {
	id, err := store.ParseID(c.Param("id"))
	if err != nil {
		return id, apperr.NotFound(what + " not found")
	}
	return id, nil
}

// notFound maps store.ErrNotFound to a named not-found error and passes
// anything else through.
func notFound(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(what + " not found")
	}
	return err
}

func respondOK(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
