package internal

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sports-platform/internal/apperr"
	"sports-platform/internal/auth"
	"sports-platform/internal/cache"
	"sports-platform/internal/models"
	"sports-platform/internal/store"
)

const (
	keyCouncil       = "council:list"
	keyTournaments   = "tournaments:list"
	keyTournamentPfx = "tournament:"
	maxUploadBytes   = 5 << 20
)

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// saveUpload stores the multipart file under UploadDir and returns its public path.
func (d *Deps) saveUpload(c *gin.Context, field string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", apperr.Validation(field + " file is required")
	}
	if fh.Size > maxUploadBytes {
		return "", apperr.Validation(field + " must be 5MB or smaller")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !imageExts[ext] {
		return "", apperr.Validation(field + " must be a jpg, png, gif or webp image")
	}
	if err := os.MkdirAll(d.UploadDir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + ext
	if err := c.SaveUploadedFile(fh, filepath.Join(d.UploadDir, name)); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}

// ------------------- Users -------------------

func listUsers(d *Deps, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := store.UserFilter{Role: role}
		if s := c.Query("instituteId"); s != "" {
			iid, err := store.ParseID(s)
			if err != nil {
				c.JSON(http.StatusOK, []models.User{})
				return
			}
			f.InstituteID = &iid
		}
		out, err := d.Store.Users.List(c.Request.Context(), f)
		if err != nil {
			d.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// GET /api/users/athletes?instituteId=
func ListAthletes(d *Deps) gin.HandlerFunc { return listUsers(d, models.RoleAthlete) }

// GET /api/users/sponsors
func ListSponsors(d *Deps) gin.HandlerFunc { return listUsers(d, models.RoleSponsor) }

func GetUser(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "user")
		if err != nil {
			d.fail(c, err)
			return
		}
		u, err := d.Store.Users.ByID(c.Request.Context(), id)
		if err != nil {
			d.fail(c, notFound(err, "user"))
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// PUT /api/users/me
func UpdateMe(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name            *string `json:"name" binding:"omitempty,min=1,max=100"`
			Email           *string `json:"email" binding:"omitempty,email"`
			AdmissionNumber *string `json:"admissionNumber" binding:"omitempty,max=50"`
		}
		if err := bind(c, &req); err != nil {
			d.fail(c, err)
			return
		}
		ctx := c.Request.Context()
		u, err := d.Store.Users.Update(ctx, uid(c), store.UserUpdate{
			Name:            req.Name,
			Email:           req.Email,
			AdmissionNumber: req.AdmissionNumber,
		})
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				err = apperr.Conflict("email already registered")
			}
			d.fail(c, notFound(err, "user"))
			return
		}
		d.logAction(ctx, u.ID.Hex(), "user.update", "profile")
		c.JSON(http.StatusOK, u)
	}
}

// POST /api/users/me/image (multipart, field "image")
func UploadMyImage(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		path, err := d.saveUpload(c, "image")
		if err != nil {
			d.fail(c, err)
			return
		}
		u, err := d.Store.Users.Update(c.Request.Context(), uid(c), store.UserUpdate{ProfileImage: &path})
		if err != nil {
			d.fail(c, notFound(err, "user"))
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// ------------------- Institutions -------------------

func ListInstitutions(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := d.Store.Institutions.List(c.Request.Context())
		if err != nil {
			d.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func GetInstitution(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "institution")
		if err != nil {
			d.fail(c, err)
			return
		}
		in, err := d.Store.Institutions.ByID(c.Request.Context(), id)
		if err != nil {
			d.fail(c, notFound(err, "institution"))
			return
		}
		c.JSON(http.StatusOK, in)
	}
}

// GET /api/institutions/:id/athletes
func InstitutionAthletes(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "institution")
		if err != nil {
			d.fail(c, err)
			return
		}
		ctx := c.Request.Context()
		if _, err := d.Store.Institutions.ByID(ctx, id); err != nil {
			d.fail(c, notFound(err, "institution"))
			return
		}
		out, err := d.Store.Users.List(ctx, store.UserFilter{Role: models.RoleAthlete, InstituteID: &id})
		if err != nil {
			d.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// callerInstitute is the institution of an Institution-role caller.
func callerInstitute(c *gin.Context) (store.ID, error) {
	iid, err := store.ParseID(identity(c).InstituteID)
	if err != nil {
		return iid, apperr.Forbidden("account has no institution")
	}
	return iid, nil
}

// GET /api/institution/athletes
func MyAthletes(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		iid, err := callerInstitute(c)
		if err != nil {
			d.fail(c, err)
			return
		}
		out, err := d.Store.Users.List(c.Request.Context(), store.UserFilter{Role: models.RoleAthlete, InstituteID: &iid})
		if err != nil {
			d.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// POST /api/institution/athletes
func RegisterAthlete(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name            string `json:"name" binding:"required,max=100"`
			Email           string `json:"email" binding:"required,email"`
			Password        string `json:"password" binding:"required,min=6"`
			AdmissionNumber string `json:"admissionNumber" binding:"max=50"`
		}
		if err := bind(c, &req); err != nil {
			d.fail(c, err)
			return
		}
		iid, err := callerInstitute(c)
		if err != nil {
			d.fail(c, err)
			return
		}
		ctx := c.Request.Context()
		u, err := d.registerUser(ctx, registration{
			Name:            req.Name,
			Email:           models.NormalizeEmail(req.Email),
			Password:        req.Password,
			Role:            models.RoleAthlete,
			InstituteID:     &iid,
			AdmissionNumber: req.AdmissionNumber,
		})
		if err != nil {
			d.fail(c, err)
			return
		}
		d.logAction(ctx, identity(c).UserID, "athlete.register", u.ID.Hex())
		c.JSON(http.StatusCreated, u)
	}
}

// PUT /api/institution/athletes/:id
func UpdateAthlete(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name            *string `json:"name" binding:"omitempty,min=1,max=100"`
			Email           *string `json:"email" binding:"omitempty,email"`
			AdmissionNumber *string `json:"admissionNumber" binding:"omitempty,max=50"`
		}
		if err := bind(c, &req); err != nil {
			d.fail(c, err)
			return
		}
		id, err := paramID(c, "athlete")
		if err != nil {
			d.fail(c, err)
			return
		}
		ctx := c.Request.Context()
		athlete, err := d.Store.Users.ByID(ctx, id)
		if err == nil && athlete.Role != models.RoleAthlete {
			err = store.ErrNotFound
		}
		if err != nil {
			d.fail(c, notFound(err, "athlete"))
			return
		}
		if err := authorize(c, auth.AthleteUpdate, auth.Owners{auth.RelInstitution: hexOf(athlete.InstituteID)}); err != nil {
			d.fail(c, err)
			return
		}
		u, err := d.Store.Users.Update(ctx, id, store.UserUpdate{
			Name:            req.Name,
			Email:           req.Email,
			AdmissionNumber: req.AdmissionNumber,
		})
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				err = apperr.Conflict("email already registered")
			}
			d.fail(c, notFound(err, "athlete"))
			return
		}
		d.logAction(ctx, identity(c).UserID, "athlete.update", id.Hex())
		c.JSON(http.StatusOK, u)
	}
}

// ------------------- Council -------------------

// GET /api/council
func ListCouncil(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := cache.Fetch(c.Request.Context(), d.Cache, keyCouncil, d.CacheTTL, d.Store.Council.List)
		if err != nil {
			d.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}
