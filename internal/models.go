package internal

import (
	"context"

	"sports-platform/internal/auth"
	"sports-platform/internal/models"
	"sports-platform/internal/store"
)

type tokenResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expiresIn"` // seconds
	User      *models.User `json:"user,omitempty"`
}

// Populated views. The outer fields shadow the embedded id fields of the
// same json name, so "athlete" renders as the user object.

type applicationView struct {
	models.Application
	Athlete    *models.User       `json:"athlete"`
	Tournament *models.Tournament `json:"tournament"`
}

type sponsorshipView struct {
	models.Sponsorship
	Athlete *models.User `json:"athlete"`
	Sponsor *models.User `json:"sponsor"`
}

type winnerView struct {
	models.Winner
	Athlete    *models.User       `json:"athlete"`
	Tournament *models.Tournament `json:"tournament"`
}

func identityOf(u *models.User) auth.Identity {
	id := auth.Identity{UserID: u.ID.Hex(), Role: u.Role}
	if u.InstituteID != nil {
		id.InstituteID = u.InstituteID.Hex()
	}
	return id
}

func hexOf(id *store.ID) string {
	if id == nil || id.IsZero() {
		return ""
	}
	return id.Hex()
}

func (d *Deps) usersByID(ctx context.Context, ids []store.ID) (map[store.ID]*models.User, error) {
	out := map[store.ID]*models.User{}
	if len(ids) == 0 {
		return out, nil
	}
	list, err := d.Store.Users.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}

func (d *Deps) tournamentsByID(ctx context.Context, ids []store.ID) (map[store.ID]*models.Tournament, error) {
	out := map[store.ID]*models.Tournament{}
	if len(ids) == 0 {
		return out, nil
	}
	list, err := d.Store.Tournaments.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}

func (d *Deps) populateApplications(ctx context.Context, apps []models.Application) ([]applicationView, error) {
	var uids, tids []store.ID
	for _, a := range apps {
		uids = append(uids, a.AthleteID)
		tids = append(tids, a.TournamentID)
	}
	users, err := d.usersByID(ctx, uids)
	if err != nil {
		return nil, err
	}
	tours, err := d.tournamentsByID(ctx, tids)
	if err != nil {
		return nil, err
	}
	out := make([]applicationView, 0, len(apps))
	for _, a := range apps {
		out = append(out, applicationView{Application: a, Athlete: users[a.AthleteID], Tournament: tours[a.TournamentID]})
	}
	return out, nil
}

func (d *Deps) populateSponsorships(ctx context.Context, list []models.Sponsorship) ([]sponsorshipView, error) {
	var ids []store.ID
	for _, s := range list {
		ids = append(ids, s.AthleteID, s.SponsorID)
	}
	users, err := d.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]sponsorshipView, 0, len(list))
	for _, s := range list {
		out = append(out, sponsorshipView{Sponsorship: s, Athlete: users[s.AthleteID], Sponsor: users[s.SponsorID]})
	}
	return out, nil
}

func (d *Deps) populateWinners(ctx context.Context, list []models.Winner) ([]winnerView, error) {
	var uids, tids []store.ID
	for _, w := range list {
		uids = append(uids, w.AthleteID)
		tids = append(tids, w.TournamentID)
	}
	users, err := d.usersByID(ctx, uids)
	if err != nil {
		return nil, err
	}
	tours, err := d.tournamentsByID(ctx, tids)
	if err != nil {
		return nil, err
	}
	out := make([]winnerView, 0, len(list))
	for _, w := range list {
		out = append(out, winnerView{Winner: w, Athlete: users[w.AthleteID], Tournament: tours[w.TournamentID]})
	}
	return out, nil
}
