package internal

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sports-platform/internal/apperr"
	"sports-platform/internal/auth"
	"sports-platform/internal/models"
	"sports-platform/internal/notify"
	"sports-platform/internal/store"
)

// POST /api/sponsorships
func CreateSponsorship(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			SponsorID string  `json:"sponsorId" binding:"required,objectid"`
			Amount    float64 `json:"amount" binding:"gt=0"`
			Message   string  `json:"message" binding:"max=1000"`
		}
		if err := bind(c, &req); err != nil {
			d.fail(c, err)
			return
		}
		sid, _ := store.ParseID(req.SponsorID)
		ctx := c.Request.Context()

		sponsor, err := d.Store.Users.ByID(ctx, sid)
		if err != nil {
			d.fail(c, notFound(err, "sponsor"))
			return
		}
		if sponsor.Role != models.RoleSponsor {
			d.fail(c, apperr.Validation("sponsorId must reference a Sponsor account"))
			return
		}

		s := &models.Sponsorship{
			AthleteID: uid(c),
			SponsorID: sponsor.ID,
			Amount:    req.Amount,
			Message:   req.Message,
			Status:    models.StatusPending,
		}
		if err := d.Store.Sponsorships.Create(ctx, s); err != nil {
			d.fail(c, err)
			return
		}
		d.logAction(ctx, s.AthleteID.Hex(), "sponsorship.create", sponsor.ID.Hex())
		d.publish(ctx, notify.Event{
			Type:    notify.SponsorshipCreated,
			ActorID: s.AthleteID.Hex(),
			Subject: s.ID.Hex(),
			Data:    map[string]any{"sponsor": sponsor.ID.Hex(), "amount": s.Amount},
		})
		c.JSON(http.StatusCreated, s)
	}
}

// GET /api/sponsorships/mine: sponsors see requests addressed to them,
// everyone else sees the requests they made.
func MySponsorships(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		me := uid(c)
		f := store.SponsorshipFilter{AthleteID: &me}
		if identity(c).Role == models.RoleSponsor {
			f = store.SponsorshipFilter{SponsorID: &me}
		}
		if s := c.Query("status"); s != "" {
			f.Status = models.Status(s)
			if !f.Status.Valid() {
				d.fail(c, apperr.Validation("status must be one of Pending, Approved, Rejected"))
				return
			}
		}
		ctx := c.Request.Context()
		list, err := d.Store.Sponsorships.List(ctx, f)
		if err != nil {
			d.fail(c, err)
			return
		}
		out, err := d.populateSponsorships(ctx, list)
		if err != nil {
			d.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// PUT /api/sponsorships/:id/status
func SetSponsorshipStatus(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Status models.Status `json:"status" binding:"required,status"`
		}
		if err := bind(c, &req); err != nil {
			d.fail(c, err)
			return
		}
		id, err := paramID(c, "sponsorship")
		if err != nil {
			d.fail(c, err)
			return
		}
		ctx := c.Request.Context()
		s, err := d.Store.Sponsorships.ByID(ctx, id)
		if err != nil {
			d.fail(c, notFound(err, "sponsorship"))
			return
		}
		if err := authorize(c, auth.SponsorshipStatus, auth.Owners{auth.RelSponsor: s.SponsorID.Hex()}); err != nil {
			d.fail(c, err)
			return
		}
		s, err = d.Store.Sponsorships.SetStatus(ctx, id, req.Status)
		if err != nil {
			d.fail(c, notFound(err, "sponsorship"))
			return
		}

		actor := identity(c).UserID
		d.logAction(ctx, actor, "sponsorship.status", id.Hex()+" "+string(req.Status))
		d.publish(ctx, notify.Event{
			Type:    notify.SponsorshipStatusChanged,
			ActorID: actor,
			Subject: id.Hex(),
			Data:    map[string]any{"status": s.Status, "athlete": s.AthleteID.Hex()},
		})
		c.JSON(http.StatusOK, s)
	}
}

// DELETE /api/sponsorships/:id
func DeleteSponsorship(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "sponsorship")
		if err != nil {
			d.fail(c, err)
			return
		}
		ctx := c.Request.Context()
		s, err := d.Store.Sponsorships.ByID(ctx, id)
		if err != nil {
			d.fail(c, notFound(err, "sponsorship"))
			return
		}
		if err := authorize(c, auth.SponsorshipDelete, auth.Owners{auth.RelAthlete: s.AthleteID.Hex()}); err != nil {
			d.fail(c, err)
			return
		}
		if err := d.Store.Sponsorships.Delete(ctx, id); err != nil {
			d.fail(c, notFound(err, "sponsorship"))
			return
		}
		d.logAction(ctx, identity(c).UserID, "sponsorship.delete", id.Hex())
		respondOK(c)
	}
}
