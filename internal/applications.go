package internal

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sports-platform/internal/apperr"
	"sports-platform/internal/auth"
	"sports-platform/internal/models"
	"sports-platform/internal/notify"
	"sports-platform/internal/store"
)

// POST /api/applications
func CreateApplication(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			TournamentID string `json:"tournamentId" binding:"required,objectid"`
		}
		if err := bind(c, &req); err != nil {
			d.fail(c, err)
			return
		}
		tid, _ := store.ParseID(req.TournamentID)
		ctx := c.Request.Context()

		t, err := d.Store.Tournaments.ByID(ctx, tid)
		if err != nil {
			d.fail(c, notFound(err, "tournament"))
			return
		}
		if !t.RegistrationOpen {
			d.fail(c, errRegistrationClosed)
			return
		}

		a := &models.Application{
			AthleteID:          uid(c),
			TournamentID:       t.ID,
			TournamentName:     t.Name,
			TournamentLocation: t.Location,
			Status:             models.StatusPending,
		}
		if err := d.Store.Applications.Create(ctx, a); err != nil {
			if errors.Is(err, store.ErrConflict) {
				err = apperr.Conflict("already applied to this tournament")
			}
			d.fail(c, err)
			return
		}

		d.logAction(ctx, a.AthleteID.Hex(), "application.create", t.Name)
		d.publish(ctx, notify.Event{
			Type:    notify.ApplicationCreated,
			ActorID: a.AthleteID.Hex(),
			Subject: a.ID.Hex(),
			Data:    map[string]any{"tournament": t.ID.Hex()},
		})
		c.JSON(http.StatusCreated, a)
	}
}

// GET /api/applications/mine
func MyApplications(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		me := uid(c)
		out, err := d.Store.Applications.List(c.Request.Context(), store.ApplicationFilter{AthleteID: &me})
		if err != nil {
			d.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// GET /api/applications?tournament=&status=
func ListApplications(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f store.ApplicationFilter
		if s := c.Query("tournament"); s != "" {
			tid, err := store.ParseID(s)
			if err != nil {
				c.JSON(http.StatusOK, []applicationView{})
				return
			}
			f.TournamentID = &tid
		}
		if s := c.Query("status"); s != "" {
			f.Status = models.Status(s)
			if !f.Status.Valid() {
				d.fail(c, apperr.Validation("status must be one of Pending, Approved, Rejected"))
				return
			}
		}
		ctx := c.Request.Context()
		apps, err := d.Store.Applications.List(ctx, f)
		if err != nil {
			d.fail(c, err)
			return
		}
		out, err := d.populateApplications(ctx, apps)
		if err != nil {
			d.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// PUT /api/applications/:id/status
func SetApplicationStatus(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Status models.Status `json:"status" binding:"required,status"`
		}
		if err := bind(c, &req); err != nil {
			d.fail(c, err)
			return
		}
		id, err := paramID(c, "application")
		if err != nil {
			d.fail(c, err)
			return
		}
		ctx := c.Request.Context()
		a, err := d.Store.Applications.SetStatus(ctx, id, req.Status)
		if err != nil {
			d.fail(c, notFound(err, "application"))
			return
		}

		actor := identity(c).UserID
		d.logAction(ctx, actor, "application.status", id.Hex()+" "+string(req.Status))
		d.publish(ctx, notify.Event{
			Type:    notify.ApplicationStatusChanged,
			ActorID: actor,
			Subject: id.Hex(),
			Data:    map[string]any{"status": a.Status, "athlete": a.AthleteID.Hex()},
		})
		c.JSON(http.StatusOK, a)
	}
}

// DELETE /api/applications/:id
func DeleteApplication(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "application")
		if err != nil {
			d.fail(c, err)
			return
		}
		ctx := c.Request.Context()
		a, err := d.Store.Applications.ByID(ctx, id)
		if err != nil {
			d.fail(c, notFound(err, "application"))
			return
		}
		if err := authorize(c, auth.ApplicationDelete, auth.Owners{auth.RelAthlete: a.AthleteID.Hex()}); err != nil {
			d.fail(c, err)
			return
		}
		if err := d.Store.Applications.Delete(ctx, id); err != nil {
			d.fail(c, notFound(err, "application"))
			return
		}
		d.logAction(ctx, identity(c).UserID, "application.delete", id.Hex())
		respondOK(c)
	}
}
