package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sports-platform/internal/models"
	"sports-platform/internal/store"
)

type ID = store.ID

func ensureID(id *ID) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
}

// ---------------- users ----------------

type users struct {
	c   *mongo.Collection
	now func() time.Time
}

func (r *users) Create(ctx context.Context, u *models.User) error {
	ensureID(&u.ID)
	u.Email = models.NormalizeEmail(u.Email)
	u.CreatedAt = r.now()
	u.UpdatedAt = u.CreatedAt
	return insert(ctx, r.c, u)
}

func (r *users) ByID(ctx context.Context, id ID) (*models.User, error) {
	return findOne[models.User](ctx, r.c, bson.M{"_id": id})
}

func (r *users) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, r.c, bson.M{"email": models.NormalizeEmail(email)})
}

func (r *users) ByIDs(ctx context.Context, ids []ID) ([]models.User, error) {
	return findAll[models.User](ctx, r.c, inIDs(ids))
}

func (r *users) List(ctx context.Context, f store.UserFilter) ([]models.User, error) {
	q := bson.M{}
	if f.Role != "" {
		q["role"] = f.Role
	}
	if f.InstituteID != nil {
		q["institute_id"] = *f.InstituteID
	}
	return findAll[models.User](ctx, r.c, q, newestFirst)
}

func (r *users) Update(ctx context.Context, id ID, upd store.UserUpdate) (*models.User, error) {
	set := bson.M{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Email != nil {
		set["email"] = models.NormalizeEmail(*upd.Email)
	}
	if upd.Role != nil {
		set["role"] = *upd.Role
	}
	if upd.ProfileImage != nil {
		set["profile_image"] = *upd.ProfileImage
	}
	if upd.InstituteID != nil {
		set["institute_id"] = *upd.InstituteID
	}
	if upd.AdmissionNumber != nil {
		set["admission_number"] = *upd.AdmissionNumber
	}
	if len(set) > 0 {
		set["updated_at"] = r.now()
	}
	return updateByID[models.User](ctx, r.c, id, set)
}

func (r *users) Delete(ctx context.Context, id ID) error {
	return deleteByID(ctx, r.c, id)
}

// ---------------- institutions ----------------

type institutions struct {
	c   *mongo.Collection
	now func() time.Time
}

func (r *institutions) Create(ctx context.Context, in *models.Institution) error {
	ensureID(&in.ID)
	in.CreatedAt = r.now()
	return insert(ctx, r.c, in)
}

func (r *institutions) ByID(ctx context.Context, id ID) (*models.Institution, error) {
	return findOne[models.Institution](ctx, r.c, bson.M{"_id": id})
}

func (r *institutions) List(ctx context.Context) ([]models.Institution, error) {
	return findAll[models.Institution](ctx, r.c, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *institutions) Update(ctx context.Context, id ID, upd store.InstitutionUpdate) (*models.Institution, error) {
	set := bson.M{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	return updateByID[models.Institution](ctx, r.c, id, set)
}

func (r *institutions) Delete(ctx context.Context, id ID) error {
	return deleteByID(ctx, r.c, id)
}

// ---------------- tournaments ----------------

type tournaments struct {
	c   *mongo.Collection
	now func() time.Time
}

func (r *tournaments) Create(ctx context.Context, t *models.Tournament) error {
	ensureID(&t.ID)
	t.CreatedAt = r.now()
	t.UpdatedAt = t.CreatedAt
	return insert(ctx, r.c, t)
}

func (r *tournaments) ByID(ctx context.Context, id ID) (*models.Tournament, error) {
	return findOne[models.Tournament](ctx, r.c, bson.M{"_id": id})
}

func (r *tournaments) ByIDs(ctx context.Context, ids []ID) ([]models.Tournament, error) {
	return findAll[models.Tournament](ctx, r.c, inIDs(ids))
}

func (r *tournaments) List(ctx context.Context) ([]models.Tournament, error) {
	return findAll[models.Tournament](ctx, r.c, bson.M{}, newestFirst)
}

func (r *tournaments) Update(ctx context.Context, id ID, upd store.TournamentUpdate) (*models.Tournament, error) {
	set := bson.M{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Date != nil {
		set["date"] = *upd.Date
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	if upd.Image != nil {
		set["image"] = *upd.Image
	}
	if upd.RegistrationOpen != nil {
		set["registration_open"] = *upd.RegistrationOpen
	}
	if len(set) > 0 {
		set["updated_at"] = r.now()
	}
	return updateByID[models.Tournament](ctx, r.c, id, set)
}

func (r *tournaments) Delete(ctx context.Context, id ID) error {
	return deleteByID(ctx, r.c, id)
}

// ---------------- applications ----------------

type applications struct {
	c   *mongo.Collection
	now func() time.Time
}

func (r *applications) Create(ctx context.Context, a *models.Application) error {
	ensureID(&a.ID)
	a.CreatedAt = r.now()
	a.UpdatedAt = a.CreatedAt
	return insert(ctx, r.c, a)
}

func (r *applications) ByID(ctx context.Context, id ID) (*models.Application, error) {
	return findOne[models.Application](ctx, r.c, bson.M{"_id": id})
}

func (r *applications) List(ctx context.Context, f store.ApplicationFilter) ([]models.Application, error) {
	q := bson.M{}
	if f.AthleteID != nil {
		q["athlete"] = *f.AthleteID
	}
	if f.TournamentID != nil {
		q["tournament"] = *f.TournamentID
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	return findAll[models.Application](ctx, r.c, q, newestFirst)
}

func (r *applications) SetStatus(ctx context.Context, id ID, st models.Status) (*models.Application, error) {
	return updateByID[models.Application](ctx, r.c, id, bson.M{"status": st, "updated_at": r.now()})
}

func (r *applications) Delete(ctx context.Context, id ID) error {
	return deleteByID(ctx, r.c, id)
}

// ---------------- sponsorships ----------------

type sponsorships struct {
	c   *mongo.Collection
	now func() time.Time
}

func (r *sponsorships) Create(ctx context.Context, s *models.Sponsorship) error {
	ensureID(&s.ID)
	s.CreatedAt = r.now()
	s.UpdatedAt = s.CreatedAt
	return insert(ctx, r.c, s)
}

func (r *sponsorships) ByID(ctx context.Context, id ID) (*models.Sponsorship, error) {
	return findOne[models.Sponsorship](ctx, r.c, bson.M{"_id": id})
}

func (r *sponsorships) List(ctx context.Context, f store.SponsorshipFilter) ([]models.Sponsorship, error) {
	q := bson.M{}
	if f.AthleteID != nil {
		q["athlete"] = *f.AthleteID
	}
	if f.SponsorID != nil {
		q["sponsor"] = *f.SponsorID
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	return findAll[models.Sponsorship](ctx, r.c, q, newestFirst)
}

func (r *sponsorships) SetStatus(ctx context.Context, id ID, st models.Status) (*models.Sponsorship, error) {
	return updateByID[models.Sponsorship](ctx, r.c, id, bson.M{"status": st, "updated_at": r.now()})
}

func (r *sponsorships) Delete(ctx context.Context, id ID) error {
	return deleteByID(ctx, r.c, id)
}

// ---------------- winners ----------------

type winners struct {
	c   *mongo.Collection
	now func() time.Time
}

func (r *winners) Create(ctx context.Context, w *models.Winner) error {
	ensureID(&w.ID)
	w.CreatedAt = r.now()
	return insert(ctx, r.c, w)
}

func (r *winners) ByID(ctx context.Context, id ID) (*models.Winner, error) {
	return findOne[models.Winner](ctx, r.c, bson.M{"_id": id})
}

func (r *winners) List(ctx context.Context, f store.WinnerFilter) ([]models.Winner, error) {
	q := bson.M{}
	if f.TournamentID != nil {
		q["tournament"] = *f.TournamentID
	}
	if f.AthleteID != nil {
		q["athlete"] = *f.AthleteID
	}
	return findAll[models.Winner](ctx, r.c, q,
		options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: -1}}))
}

func (r *winners) Update(ctx context.Context, id ID, upd store.WinnerUpdate) (*models.Winner, error) {
	set := bson.M{}
	if upd.Prize != nil {
		set["prize"] = *upd.Prize
	}
	if upd.Award != nil {
		set["award"] = *upd.Award
	}
	return updateByID[models.Winner](ctx, r.c, id, set)
}

func (r *winners) Delete(ctx context.Context, id ID) error {
	return deleteByID(ctx, r.c, id)
}

// ---------------- council ----------------

type council struct {
	c   *mongo.Collection
	now func() time.Time
}

func (r *council) Create(ctx context.Context, m *models.CouncilMember) error {
	ensureID(&m.ID)
	m.CreatedAt = r.now()
	return insert(ctx, r.c, m)
}

func (r *council) ByID(ctx context.Context, id ID) (*models.CouncilMember, error) {
	return findOne[models.CouncilMember](ctx, r.c, bson.M{"_id": id})
}

func (r *council) List(ctx context.Context) ([]models.CouncilMember, error) {
	return findAll[models.CouncilMember](ctx, r.c, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *council) Update(ctx context.Context, id ID, upd store.CouncilUpdate) (*models.CouncilMember, error) {
	set := bson.M{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Role != nil {
		set["role"] = *upd.Role
	}
	return updateByID[models.CouncilMember](ctx, r.c, id, set)
}

func (r *council) Delete(ctx context.Context, id ID) error {
	return deleteByID(ctx, r.c, id)
}
