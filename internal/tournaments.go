package internal

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"sports-platform/internal/apperr"
	"sports-platform/internal/auth"
	"sports-platform/internal/cache"
	"sports-platform/internal/models"
	"sports-platform/internal/store"
)

func ListTournaments(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := cache.Fetch(c.Request.Context(), d.Cache, keyTournaments, d.CacheTTL, d.Store.Tournaments.List)
		if err != nil {
			d.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func GetTournament(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "tournament")
		if err != nil {
			d.fail(c, err)
			return
		}
		t, err := cache.Fetch(c.Request.Context(), d.Cache, keyTournamentPfx+id.Hex(), d.CacheTTL,
			func(ctx context.Context) (*models.Tournament, error) { return d.Store.Tournaments.ByID(ctx, id) })
		if err != nil {
			d.fail(c, notFound(err, "tournament"))
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// POST /api/tournaments
func CreateTournament(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name             string `json:"name" binding:"required,max=200"`
			Date             string `json:"date" binding:"required"`
			Location         string `json:"location" binding:"required,max=200"`
			RegistrationOpen *bool  `json:"registrationOpen"`
		}
		if err := bind(c, &req); err != nil {
			d.fail(c, err)
			return
		}
		date, err := parseDate(req.Date)
		if err != nil {
			d.fail(c, err)
			return
		}
		t := &models.Tournament{
			Name:             req.Name,
			Date:             date,
			Location:         req.Location,
			RegistrationOpen: true,
			CreatedBy:        uid(c),
		}
		if req.RegistrationOpen != nil {
			t.RegistrationOpen = *req.RegistrationOpen
		}
		ctx := c.Request.Context()
		if err := d.Store.Tournaments.Create(ctx, t); err != nil {
			d.fail(c, err)
			return
		}
		d.invalidate(ctx, keyTournaments)
		d.logAction(ctx, identity(c).UserID, "tournament.create", t.Name)
		c.JSON(http.StatusCreated, t)
	}
}

// loadTournament fetches :id and checks act against the creator relation.
func (d *Deps) loadTournament(c *gin.Context, act auth.Action) (*models.Tournament, error) {
	id, err := paramID(c, "tournament")
	if err != nil {
		return nil, err
	}
	t, err := d.Store.Tournaments.ByID(c.Request.Context(), id)
	if err != nil {
		return nil, notFound(err, "tournament")
	}
	if err := authorize(c, act, auth.Owners{auth.RelCreator: t.CreatedBy.Hex()}); err != nil {
		return nil, err
	}
	return t, nil
}

func (d *Deps) updateTournament(c *gin.Context, id store.ID, upd store.TournamentUpdate, action, details string) {
	ctx := c.Request.Context()
	t, err := d.Store.Tournaments.Update(ctx, id, upd)
	if err != nil {
		d.fail(c, notFound(err, "tournament"))
		return
	}
	d.invalidate(ctx, keyTournaments, keyTournamentPfx+id.Hex())
	d.logAction(ctx, identity(c).UserID, action, details)
	c.JSON(http.StatusOK, t)
}

// PUT /api/tournaments/:id
func UpdateTournament(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name     *string `json:"name" binding:"omitempty,min=1,max=200"`
			Date     *string `json:"date"`
			Location *string `json:"location" binding:"omitempty,min=1,max=200"`
		}
		if err := bind(c, &req); err != nil {
			d.fail(c, err)
			return
		}
		upd := store.TournamentUpdate{Name: req.Name, Location: req.Location}
		if req.Date != nil {
			date, err := parseDate(*req.Date)
			if err != nil {
				d.fail(c, err)
				return
			}
			upd.Date = &date
		}
		t, err := d.loadTournament(c, auth.TournamentUpdate)
		if err != nil {
			d.fail(c, err)
			return
		}
		d.updateTournament(c, t.ID, upd, "tournament.update", t.ID.Hex())
	}
}

func DeleteTournament(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := d.loadTournament(c, auth.TournamentDelete)
		if err != nil {
			d.fail(c, err)
			return
		}
		ctx := c.Request.Context()
		if err := d.Store.Tournaments.Delete(ctx, t.ID); err != nil {
			d.fail(c, notFound(err, "tournament"))
			return
		}
		d.invalidate(ctx, keyTournaments, keyTournamentPfx+t.ID.Hex())
		d.logAction(ctx, identity(c).UserID, "tournament.delete", t.Name)
		respondOK(c)
	}
}

// SetRegistration serves POST /api/tournaments/:id/close and /open.
func SetRegistration(d *Deps, open bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := d.loadTournament(c, auth.TournamentClose)
		if err != nil {
			d.fail(c, err)
			return
		}
		action := "tournament.close"
		if open {
			action = "tournament.open"
		}
		d.updateTournament(c, t.ID, store.TournamentUpdate{RegistrationOpen: &open}, action, t.ID.Hex())
	}
}

// POST /api/tournaments/:id/image (multipart, field "image")
func UploadTournamentImage(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := d.loadTournament(c, auth.TournamentUpdate)
		if err != nil {
			d.fail(c, err)
			return
		}
		path, err := d.saveUpload(c, "image")
		if err != nil {
			d.fail(c, err)
			return
		}
		d.updateTournament(c, t.ID, store.TournamentUpdate{Image: &path}, "tournament.image", t.ID.Hex())
	}
}

var errRegistrationClosed = apperr.Validation("registration is closed for this tournament")
