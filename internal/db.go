package internal

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"sports-platform/internal/auth"
	"sports-platform/internal/config"
	"sports-platform/internal/models"
	"sports-platform/internal/store"
	"sports-platform/internal/store/memstore"
	"sports-platform/internal/store/mongostore"
)

/* ===================== CONNECT ===================== */

// OpenStore connects the configured backend. The mongo driver retries the
// initial ping before giving up.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store.Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return memstore.New(), nil
	case "mongo":
		client, err := mongostore.Connect(ctx, cfg.MongoURI, log)
		if err != nil {
			return nil, err
		}
		st, err := mongostore.New(ctx, client, cfg.MongoDB)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		log.Info().Str("db", cfg.MongoDB).Msg("mongo connected")
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

/* ===================== BOOTSTRAP ===================== */

// BootstrapAdmin creates the configured admin account if no user holds the
// email yet. It does nothing when email is empty.
func BootstrapAdmin(ctx context.Context, st *store.Store, name, email, password string, log zerolog.Logger) error {
	if email == "" {
		return nil
	}
	if len(password) < auth.MinPasswordLen {
		return fmt.Errorf("admin password must be at least %d characters", auth.MinPasswordLen)
	}
	email = models.NormalizeEmail(email)
	_, err := st.Users.ByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if name == "" {
		name = "Administrator"
	}
	u := &models.User{Name: name, Email: email, PasswordHash: hash, Role: models.RoleAdmin}
	if err := st.Users.Create(ctx, u); err != nil && !errors.Is(err, store.ErrConflict) {
		return err
	}
	log.Info().Str("email", email).Msg("admin account created")
	return nil
}
