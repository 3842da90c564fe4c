package internal

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sports-platform/internal/apperr"
	"sports-platform/internal/auth"
	"sports-platform/internal/models"
	"sports-platform/internal/store"
)

type registration struct {
	Name            string
	Email           string
	Password        string
	Role            models.Role
	Location        string
	InstituteID     *store.ID
	AdmissionNumber string
}

// registerUser creates a user. Institution accounts get their own
// Institution record; athletes may reference an existing one.
func (d *Deps) registerUser(ctx context.Context, in registration) (*models.User, error) {
	if _, err := d.Store.Users.ByEmail(ctx, in.Email); err == nil {
		return nil, apperr.Conflict("email already registered")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Name:            in.Name,
		Email:           in.Email,
		PasswordHash:    hash,
		Role:            in.Role,
		AdmissionNumber: in.AdmissionNumber,
	}

	var inst *models.Institution
	switch {
	case in.Role == models.RoleInstitution:
		inst = &models.Institution{Name: in.Name, Location: in.Location}
		if err := d.Store.Institutions.Create(ctx, inst); err != nil {
			return nil, err
		}
		u.InstituteID = &inst.ID
	case in.InstituteID != nil:
		if in.Role != models.RoleAthlete {
			return nil, apperr.Validation("only athletes may join an institution")
		}
		if _, err := d.Store.Institutions.ByID(ctx, *in.InstituteID); err != nil {
			return nil, notFound(err, "institution")
		}
		u.InstituteID = in.InstituteID
	}

	if err := d.Store.Users.Create(ctx, u); err != nil {
		if inst != nil {
			_ = d.Store.Institutions.Delete(ctx, inst.ID)
		}
		if errors.Is(err, store.ErrConflict) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, err
	}
	return u, nil
}

func (d *Deps) issue(u *models.User) (tokenResponse, error) {
	tok, err := d.Tokens.Issue(identityOf(u))
	if err != nil {
		return tokenResponse{}, err
	}
	return tokenResponse{Token: tok, ExpiresIn: int64(d.Tokens.TTL().Seconds()), User: u}, nil
}

func Register(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name            string      `json:"name" binding:"required,max=100"`
			Email           string      `json:"email" binding:"required,email"`
			Password        string      `json:"password" binding:"required,min=6"`
			Role            models.Role `json:"role" binding:"required,role"`
			Location        string      `json:"location" binding:"max=200"`
			InstituteID     string      `json:"instituteId" binding:"omitempty,objectid"`
			AdmissionNumber string      `json:"admissionNumber" binding:"max=50"`
		}
		if err := bind(c, &req); err != nil {
			d.fail(c, err)
			return
		}
		if req.Role == models.RoleAdmin {
			d.fail(c, apperr.Forbidden("admin accounts cannot self-register"))
			return
		}

		in := registration{
			Name:            req.Name,
			Email:           models.NormalizeEmail(req.Email),
			Password:        req.Password,
			Role:            req.Role,
			Location:        req.Location,
			AdmissionNumber: req.AdmissionNumber,
		}
		if req.InstituteID != "" {
			iid, _ := store.ParseID(req.InstituteID)
			in.InstituteID = &iid
		}

		ctx := c.Request.Context()
		u, err := d.registerUser(ctx, in)
		if err != nil {
			d.Metrics.Auth("register", "failure")
			d.fail(c, err)
			return
		}
		resp, err := d.issue(u)
		if err != nil {
			d.fail(c, err)
			return
		}
		d.Metrics.Auth("register", "success")
		d.logAction(ctx, u.ID.Hex(), "register", string(u.Role))
		c.JSON(http.StatusCreated, resp)
	}
}

// checkPassword is swapped in tests to observe the comparisons Login makes.
var checkPassword = auth.CheckPassword

func Login(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := bind(c, &req); err != nil {
			d.fail(c, err)
			return
		}

		ctx := c.Request.Context()
		invalid := apperr.Unauthenticated("invalid credentials")
		u, err := d.Store.Users.ByEmail(ctx, req.Email)
		if errors.Is(err, store.ErrNotFound) {
			// same bcrypt work as a wrong password
			checkPassword(req.Password, auth.DummyHash())
			d.Metrics.Auth("login", "failure")
			d.fail(c, invalid)
			return
		}
		if err != nil {
			d.fail(c, err)
			return
		}
		if !checkPassword(req.Password, u.PasswordHash) {
			d.Metrics.Auth("login", "failure")
			d.fail(c, invalid)
			return
		}

		resp, err := d.issue(u)
		if err != nil {
			d.fail(c, err)
			return
		}
		d.Metrics.Auth("login", "success")
		d.logAction(ctx, u.ID.Hex(), "login", "success")
		c.JSON(http.StatusOK, resp)
	}
}

// Refresh reissues a token that is valid or expired within the grace window.
// It reads the Authorization header and is mounted outside Auth.
func Refresh(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearer(c.GetHeader("Authorization"))
		var tok string
		var id auth.Identity
		if err == nil {
			tok, id, err = d.Tokens.Refresh(raw)
		}
		if err != nil {
			d.Metrics.Auth("refresh", "failure")
			msg := "bad token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "token expired"
			}
			d.fail(c, apperr.Wrap(apperr.KindUnauthenticated, msg, err))
			return
		}

		// deleted accounts cannot refresh
		userID, _ := store.ParseID(id.UserID)
		if _, err := d.Store.Users.ByID(c.Request.Context(), userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				err = apperr.Unauthenticated("bad token")
			}
			d.fail(c, err)
			return
		}

		d.Metrics.Auth("refresh", "success")
		c.JSON(http.StatusOK, tokenResponse{Token: tok, ExpiresIn: int64(d.Tokens.TTL().Seconds())})
	}
}

func Me(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := d.Store.Users.ByID(c.Request.Context(), uid(c))
		if err != nil {
			d.fail(c, notFound(err, "user"))
			return
		}
		c.JSON(http.StatusOK, u)
	}
}
