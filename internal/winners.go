package internal

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"sports-platform/internal/apperr"
	"sports-platform/internal/models"
	"sports-platform/internal/notify"
	"sports-platform/internal/store"
)

// GET /api/winners?tournament=
func ListWinners(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f store.WinnerFilter
		if s := c.Query("tournament"); s != "" {
			tid, err := store.ParseID(s)
			if err != nil {
				c.JSON(http.StatusOK, []winnerView{})
				return
			}
			f.TournamentID = &tid
		}
		ctx := c.Request.Context()
		list, err := d.Store.Winners.List(ctx, f)
		if err != nil {
			d.fail(c, err)
			return
		}
		out, err := d.populateWinners(ctx, list)
		if err != nil {
			d.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// POST /api/winners. A position is awarded once per tournament, after
// registration has closed.
func CreateWinner(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			TournamentID string  `json:"tournamentId" binding:"required,objectid"`
			AthleteID    string  `json:"athleteId" binding:"required,objectid"`
			Position     int     `json:"position" binding:"required,min=1,max=3"`
			Prize        float64 `json:"prize" binding:"gte=0"`
			Award        string  `json:"award" binding:"max=200"`
		}
		if err := bind(c, &req); err != nil {
			d.fail(c, err)
			return
		}
		tid, _ := store.ParseID(req.TournamentID)
		aid, _ := store.ParseID(req.AthleteID)
		ctx := c.Request.Context()

		t, err := d.Store.Tournaments.ByID(ctx, tid)
		if err != nil {
			d.fail(c, notFound(err, "tournament"))
			return
		}
		if t.RegistrationOpen {
			d.fail(c, apperr.Validation("close registration before assigning winners"))
			return
		}
		athlete, err := d.Store.Users.ByID(ctx, aid)
		if err != nil {
			d.fail(c, notFound(err, "athlete"))
			return
		}
		if athlete.Role != models.RoleAthlete {
			d.fail(c, apperr.Validation("athleteId must reference an Athlete account"))
			return
		}

		w := &models.Winner{
			AthleteID:    athlete.ID,
			TournamentID: t.ID,
			Position:     req.Position,
			Prize:        req.Prize,
			Award:        req.Award,
			AwardedBy:    uid(c),
		}
		if err := d.Store.Winners.Create(ctx, w); err != nil {
			if errors.Is(err, store.ErrConflict) {
				err = apperr.Conflict(fmt.Sprintf("position %d already assigned for this tournament", req.Position))
			}
			d.fail(c, err)
			return
		}

		actor := identity(c).UserID
		d.logAction(ctx, actor, "winner.create", fmt.Sprintf("%s #%d %s", t.Name, w.Position, athlete.Name))
		d.publish(ctx, notify.Event{
			Type:    notify.WinnerAssigned,
			ActorID: actor,
			Subject: w.ID.Hex(),
			Data:    map[string]any{"tournament": t.ID.Hex(), "athlete": athlete.ID.Hex(), "position": w.Position},
		})
		c.JSON(http.StatusCreated, w)
	}
}

// PUT /api/winners/:id
func UpdateWinner(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Prize *float64 `json:"prize" binding:"omitempty,gte=0"`
			Award *string  `json:"award" binding:"omitempty,max=200"`
		}
		if err := bind(c, &req); err != nil {
			d.fail(c, err)
			return
		}
		id, err := paramID(c, "winner")
		if err != nil {
			d.fail(c, err)
			return
		}
		ctx := c.Request.Context()
		w, err := d.Store.Winners.Update(ctx, id, store.WinnerUpdate{Prize: req.Prize, Award: req.Award})
		if err != nil {
			d.fail(c, notFound(err, "winner"))
			return
		}
		d.logAction(ctx, identity(c).UserID, "winner.update", id.Hex())
		c.JSON(http.StatusOK, w)
	}
}

// DELETE /api/winners/:id
func DeleteWinner(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "winner")
		if err != nil {
			d.fail(c, err)
			return
		}
		ctx := c.Request.Context()
		if err := d.Store.Winners.Delete(ctx, id); err != nil {
			d.fail(c, notFound(err, "winner"))
			return
		}
		d.logAction(ctx, identity(c).UserID, "winner.delete", id.Hex())
		respondOK(c)
	}
}
