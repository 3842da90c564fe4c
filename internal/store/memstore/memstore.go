// Package memstore is a mutex-guarded in-memory store. It enforces the same
// uniqueness invariants as the MongoDB indexes.
package memstore

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"sports-platform/internal/models"
	"sports-platform/internal/store"
)

type ID = store.ID

type db struct {
	mu           sync.RWMutex
	users        map[ID]models.User
	institutions map[ID]models.Institution
	tournaments  map[ID]models.Tournament
	applications map[ID]models.Application
	sponsorships map[ID]models.Sponsorship
	winners      map[ID]models.Winner
	council      map[ID]models.CouncilMember
	now          func() time.Time
}

func New() *store.Store {
	d := &db{
		users:        map[ID]models.User{},
		institutions: map[ID]models.Institution{},
		tournaments:  map[ID]models.Tournament{},
		applications: map[ID]models.Application{},
		sponsorships: map[ID]models.Sponsorship{},
		winners:      map[ID]models.Winner{},
		council:      map[ID]models.CouncilMember{},
		now:          func() time.Time { return time.Now().UTC() },
	}
	return &store.Store{
		Users:        &users{d},
		Institutions: &institutions{d},
		Tournaments:  &tournaments{d},
		Applications: &applications{d},
		Sponsorships: &sponsorships{d},
		Winners:      &winners{d},
		Council:      &council{d},
		Ping:         func(context.Context) error { return nil },
		Close:        func(context.Context) error { return nil },
	}
}

// collect returns the values of m accepted by keep, newest id first.
func collect[T any](m map[ID]T, id func(T) ID, keep func(T) bool) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := id(out[i]), id(out[j])
		return bytes.Compare(a[:], b[:]) > 0
	})
	return out
}

func get[T any](m map[ID]T, id ID) (*T, error) {
	v, ok := m[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &v, nil
}

func del[T any](m map[ID]T, id ID) error {
	if _, ok := m[id]; !ok {
		return store.ErrNotFound
	}
	delete(m, id)
	return nil
}

func newID(cur ID) ID {
	if cur.IsZero() {
		return primitive.NewObjectID()
	}
	return cur
}

func sameID(p *ID, v ID) bool { return p == nil || *p == v }

// ---------------- users ----------------

type users struct{ *db }

func (r *users) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.Email = models.NormalizeEmail(u.Email)
	for _, x := range r.users {
		if x.Email == u.Email {
			return store.ErrConflict
		}
	}
	u.ID = newID(u.ID)
	now := r.now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.users[u.ID] = *u
	return nil
}

func (r *users) ByID(_ context.Context, id ID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return get(r.users, id)
}

func (r *users) ByEmail(_ context.Context, email string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *users) ByIDs(_ context.Context, ids []ID) ([]models.User, error) {
	want := make(map[ID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return collect(r.users, userID, func(u models.User) bool { return want[u.ID] }), nil
}

func (r *users) List(_ context.Context, f store.UserFilter) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return collect(r.users, userID, func(u models.User) bool {
		if f.Role != "" && u.Role != f.Role {
			return false
		}
		if f.InstituteID != nil && (u.InstituteID == nil || *u.InstituteID != *f.InstituteID) {
			return false
		}
		return true
	}), nil
}

func (r *users) Update(_ context.Context, id ID, upd store.UserUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if upd.Email != nil {
		email := models.NormalizeEmail(*upd.Email)
		for _, x := range r.users {
			if x.ID != id && x.Email == email {
				return nil, store.ErrConflict
			}
		}
		u.Email = email
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.ProfileImage != nil {
		u.ProfileImage = *upd.ProfileImage
	}
	if upd.InstituteID != nil {
		iid := *upd.InstituteID
		u.InstituteID = &iid
	}
	if upd.AdmissionNumber != nil {
		u.AdmissionNumber = *upd.AdmissionNumber
	}
	u.UpdatedAt = r.now()
	r.users[id] = u
	return &u, nil
}

func (r *users) Delete(_ context.Context, id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return del(r.users, id)
}

func userID(u models.User) ID { return u.ID }

// ---------------- institutions ----------------

type institutions struct{ *db }

func (r *institutions) Create(_ context.Context, in *models.Institution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	in.ID = newID(in.ID)
	in.CreatedAt = r.now()
	r.institutions[in.ID] = *in
	return nil
}

func (r *institutions) ByID(_ context.Context, id ID) (*models.Institution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return get(r.institutions, id)
}

func (r *institutions) List(context.Context) ([]models.Institution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return collect(r.institutions, func(i models.Institution) ID { return i.ID }, nil), nil
}

func (r *institutions) Update(_ context.Context, id ID, upd store.InstitutionUpdate) (*models.Institution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.institutions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if upd.Name != nil {
		in.Name = *upd.Name
	}
	if upd.Location != nil {
		in.Location = *upd.Location
	}
	r.institutions[id] = in
	return &in, nil
}

func (r *institutions) Delete(_ context.Context, id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return del(r.institutions, id)
}

// ---------------- tournaments ----------------

type tournaments struct{ *db }

func tournamentID(t models.Tournament) ID { return t.ID }

func (r *tournaments) Create(_ context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = newID(t.ID)
	now := r.now()
	t.CreatedAt, t.UpdatedAt = now, now
	r.tournaments[t.ID] = *t
	return nil
}

func (r *tournaments) ByID(_ context.Context, id ID) (*models.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return get(r.tournaments, id)
}

func (r *tournaments) ByIDs(_ context.Context, ids []ID) ([]models.Tournament, error) {
	want := make(map[ID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return collect(r.tournaments, tournamentID, func(t models.Tournament) bool { return want[t.ID] }), nil
}

func (r *tournaments) List(context.Context) ([]models.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return collect(r.tournaments, tournamentID, nil), nil
}

func (r *tournaments) Update(_ context.Context, id ID, upd store.TournamentUpdate) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if upd.Name != nil {
		t.Name = *upd.Name
	}
	if upd.Date != nil {
		t.Date = *upd.Date
	}
	if upd.Location != nil {
		t.Location = *upd.Location
	}
	if upd.Image != nil {
		t.Image = *upd.Image
	}
	if upd.RegistrationOpen != nil {
		t.RegistrationOpen = *upd.RegistrationOpen
	}
	t.UpdatedAt = r.now()
	r.tournaments[id] = t
	return &t, nil
}

func (r *tournaments) Delete(_ context.Context, id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return del(r.tournaments, id)
}

// ---------------- applications ----------------

type applications struct{ *db }

func applicationID(a models.Application) ID { return a.ID }

func (r *applications) Create(_ context.Context, a *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.applications {
		if x.AthleteID == a.AthleteID && x.TournamentID == a.TournamentID {
			return store.ErrConflict
		}
	}
	a.ID = newID(a.ID)
	now := r.now()
	a.CreatedAt, a.UpdatedAt = now, now
	r.applications[a.ID] = *a
	return nil
}

func (r *applications) ByID(_ context.Context, id ID) (*models.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return get(r.applications, id)
}

func (r *applications) List(_ context.Context, f store.ApplicationFilter) ([]models.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return collect(r.applications, applicationID, func(a models.Application) bool {
		return sameID(f.AthleteID, a.AthleteID) && sameID(f.TournamentID, a.TournamentID) &&
			(f.Status == "" || f.Status == a.Status)
	}), nil
}

func (r *applications) SetStatus(_ context.Context, id ID, st models.Status) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.applications[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	a.Status = st
	a.UpdatedAt = r.now()
	r.applications[id] = a
	return &a, nil
}

func (r *applications) Delete(_ context.Context, id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return del(r.applications, id)
}

// ---------------- sponsorships ----------------

type sponsorships struct{ *db }

func sponsorshipID(s models.Sponsorship) ID { return s.ID }

func (r *sponsorships) Create(_ context.Context, s *models.Sponsorship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = newID(s.ID)
	now := r.now()
	s.CreatedAt, s.UpdatedAt = now, now
	r.sponsorships[s.ID] = *s
	return nil
}

func (r *sponsorships) ByID(_ context.Context, id ID) (*models.Sponsorship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return get(r.sponsorships, id)
}

func (r *sponsorships) List(_ context.Context, f store.SponsorshipFilter) ([]models.Sponsorship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return collect(r.sponsorships, sponsorshipID, func(s models.Sponsorship) bool {
		return sameID(f.AthleteID, s.AthleteID) && sameID(f.SponsorID, s.SponsorID) &&
			(f.Status == "" || f.Status == s.Status)
	}), nil
}

func (r *sponsorships) SetStatus(_ context.Context, id ID, st models.Status) (*models.Sponsorship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sponsorships[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	s.Status = st
	s.UpdatedAt = r.now()
	r.sponsorships[id] = s
	return &s, nil
}

func (r *sponsorships) Delete(_ context.Context, id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return del(r.sponsorships, id)
}

// ---------------- winners ----------------

type winners struct{ *db }

func winnerID(w models.Winner) ID { return w.ID }

func (r *winners) Create(_ context.Context, w *models.Winner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.winners {
		if x.TournamentID == w.TournamentID && x.Position == w.Position {
			return store.ErrConflict
		}
	}
	w.ID = newID(w.ID)
	w.CreatedAt = r.now()
	r.winners[w.ID] = *w
	return nil
}

func (r *winners) ByID(_ context.Context, id ID) (*models.Winner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return get(r.winners, id)
}

func (r *winners) List(_ context.Context, f store.WinnerFilter) ([]models.Winner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := collect(r.winners, winnerID, func(w models.Winner) bool {
		return sameID(f.TournamentID, w.TournamentID) && sameID(f.AthleteID, w.AthleteID)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *winners) Update(_ context.Context, id ID, upd store.WinnerUpdate) (*models.Winner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.winners[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if upd.Prize != nil {
		w.Prize = *upd.Prize
	}
	if upd.Award != nil {
		w.Award = *upd.Award
	}
	r.winners[id] = w
	return &w, nil
}

func (r *winners) Delete(_ context.Context, id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return del(r.winners, id)
}

// ---------------- council ----------------

type council struct{ *db }

func (r *council) Create(_ context.Context, m *models.CouncilMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = newID(m.ID)
	m.CreatedAt = r.now()
	r.council[m.ID] = *m
	return nil
}

func (r *council) ByID(_ context.Context, id ID) (*models.CouncilMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return get(r.council, id)
}

func (r *council) List(context.Context) ([]models.CouncilMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return collect(r.council, func(m models.CouncilMember) ID { return m.ID }, nil), nil
}

func (r *council) Update(_ context.Context, id ID, upd store.CouncilUpdate) (*models.CouncilMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.council[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if upd.Name != nil {
		m.Name = *upd.Name
	}
	if upd.Role != nil {
		m.Role = *upd.Role
	}
	r.council[id] = m
	return &m, nil
}

func (r *council) Delete(_ context.Context, id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return del(r.council, id)
}
