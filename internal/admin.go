package internal

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sports-platform/internal/apperr"
	"sports-platform/internal/models"
	"sports-platform/internal/store"
)

// GET /api/admin/logs?limit=
func AdminLogs(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		out, err := d.Audit.List(c.Request.Context(), limit)
		if err != nil {
			d.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// GET /api/admin/users?role=
func AdminUsers(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f store.UserFilter
		if r := c.Query("role"); r != "" {
			f.Role = models.Role(r)
			if !f.Role.Valid() {
				d.fail(c, apperr.Validation("role must be one of Admin, Athlete, Sponsor, SportsCouncil, Institution"))
				return
			}
		}
		out, err := d.Store.Users.List(c.Request.Context(), f)
		if err != nil {
			d.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// PUT /api/admin/users/:id
func AdminUpdateUser(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name        *string      `json:"name" binding:"omitempty,min=1,max=100"`
			Email       *string      `json:"email" binding:"omitempty,email"`
			Role        *models.Role `json:"role" binding:"omitempty,role"`
			InstituteID *string      `json:"instituteId" binding:"omitempty,objectid"`
		}
		if err := bind(c, &req); err != nil {
			d.fail(c, err)
			return
		}
		id, err := paramID(c, "user")
		if err != nil {
			d.fail(c, err)
			return
		}
		ctx := c.Request.Context()
		upd := store.UserUpdate{Name: req.Name, Email: req.Email, Role: req.Role}
		if req.InstituteID != nil {
			iid, _ := store.ParseID(*req.InstituteID)
			if _, err := d.Store.Institutions.ByID(ctx, iid); err != nil {
				d.fail(c, notFound(err, "institution"))
				return
			}
			upd.InstituteID = &iid
		}
		u, err := d.Store.Users.Update(ctx, id, upd)
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				err = apperr.Conflict("email already registered")
			}
			d.fail(c, notFound(err, "user"))
			return
		}
		d.logAction(ctx, identity(c).UserID, "admin.user.update", id.Hex())
		c.JSON(http.StatusOK, u)
	}
}

// DELETE /api/admin/users/:id
func AdminDeleteUser(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "user")
		if err != nil {
			d.fail(c, err)
			return
		}
		if id == uid(c) {
			d.fail(c, apperr.Validation("cannot delete yourself"))
			return
		}
		ctx := c.Request.Context()
		if err := d.Store.Users.Delete(ctx, id); err != nil {
			d.fail(c, notFound(err, "user"))
			return
		}
		d.logAction(ctx, identity(c).UserID, "admin.user.delete", id.Hex())
		respondOK(c)
	}
}

// ------------------- Institutions (admin) -------------------

func AdminCreateInstitution(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name     string `json:"name" binding:"required,max=200"`
			Location string `json:"location" binding:"max=200"`
		}
		if err := bind(c, &req); err != nil {
			d.fail(c, err)
			return
		}
		ctx := c.Request.Context()
		in := &models.Institution{Name: req.Name, Location: req.Location}
		if err := d.Store.Institutions.Create(ctx, in); err != nil {
			d.fail(c, err)
			return
		}
		d.logAction(ctx, identity(c).UserID, "admin.institution.create", in.Name)
		c.JSON(http.StatusCreated, in)
	}
}

func AdminUpdateInstitution(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name     *string `json:"name" binding:"omitempty,min=1,max=200"`
			Location *string `json:"location" binding:"omitempty,max=200"`
		}
		if err := bind(c, &req); err != nil {
			d.fail(c, err)
			return
		}
		id, err := paramID(c, "institution")
		if err != nil {
			d.fail(c, err)
			return
		}
		ctx := c.Request.Context()
		in, err := d.Store.Institutions.Update(ctx, id, store.InstitutionUpdate{Name: req.Name, Location: req.Location})
		if err != nil {
			d.fail(c, notFound(err, "institution"))
			return
		}
		d.logAction(ctx, identity(c).UserID, "admin.institution.update", id.Hex())
		c.JSON(http.StatusOK, in)
	}
}

// AdminDeleteInstitution does not cascade; athletes keep a dangling instituteId.
func AdminDeleteInstitution(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "institution")
		if err != nil {
			d.fail(c, err)
			return
		}
		ctx := c.Request.Context()
		if err := d.Store.Institutions.Delete(ctx, id); err != nil {
			d.fail(c, notFound(err, "institution"))
			return
		}
		d.logAction(ctx, identity(c).UserID, "admin.institution.delete", id.Hex())
		respondOK(c)
	}
}

// ------------------- Council (admin) -------------------

func AdminCreateCouncil(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name string `json:"name" binding:"required,max=100"`
			Role string `json:"role" binding:"required,max=100"`
		}
		if err := bind(c, &req); err != nil {
			d.fail(c, err)
			return
		}
		ctx := c.Request.Context()
		m := &models.CouncilMember{Name: req.Name, Role: req.Role}
		if err := d.Store.Council.Create(ctx, m); err != nil {
			d.fail(c, err)
			return
		}
		d.invalidate(ctx, keyCouncil)
		d.logAction(ctx, identity(c).UserID, "admin.council.create", m.Name)
		c.JSON(http.StatusCreated, m)
	}
}

func AdminUpdateCouncil(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name *string `json:"name" binding:"omitempty,min=1,max=100"`
			Role *string `json:"role" binding:"omitempty,min=1,max=100"`
		}
		if err := bind(c, &req); err != nil {
			d.fail(c, err)
			return
		}
		id, err := paramID(c, "council member")
		if err != nil {
			d.fail(c, err)
			return
		}
		ctx := c.Request.Context()
		m, err := d.Store.Council.Update(ctx, id, store.CouncilUpdate{Name: req.Name, Role: req.Role})
		if err != nil {
			d.fail(c, notFound(err, "council member"))
			return
		}
		d.invalidate(ctx, keyCouncil)
		d.logAction(ctx, identity(c).UserID, "admin.council.update", id.Hex())
		c.JSON(http.StatusOK, m)
	}
}

func AdminDeleteCouncil(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "council member")
		if err != nil {
			d.fail(c, err)
			return
		}
		ctx := c.Request.Context()
		if err := d.Store.Council.Delete(ctx, id); err != nil {
			d.fail(c, notFound(err, "council member"))
			return
		}
		d.invalidate(ctx, keyCouncil)
		d.logAction(ctx, identity(c).UserID, "admin.council.delete", id.Hex())
		respondOK(c)
	}
}
