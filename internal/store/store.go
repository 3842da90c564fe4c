// Package store declares the persistence contract shared by the MongoDB
// and in-memory backends.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"sports-platform/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

type ID = primitive.ObjectID

// ParseID parses a hex object id; malformed input is reported as ErrNotFound.
func ParseID(s string) (ID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return ID{}, ErrNotFound
	}
	return id, nil
}

type UserFilter struct {
	Role        models.Role
	InstituteID *ID
}

// UserUpdate carries the fields to change; nil means unchanged.
type UserUpdate struct {
	Name            *string
	Email           *string
	Role            *models.Role
	ProfileImage    *string
	InstituteID     *ID
	AdmissionNumber *string
}

type UserRepo interface {
	// Create fails with ErrConflict when the email is taken.
	Create(ctx context.Context, u *models.User) error
	ByID(ctx context.Context, id ID) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByIDs(ctx context.Context, ids []ID) ([]models.User, error)
	List(ctx context.Context, f UserFilter) ([]models.User, error)
	Update(ctx context.Context, id ID, upd UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id ID) error
}

type InstitutionUpdate struct {
	Name     *string
	Location *string
}

type InstitutionRepo interface {
	Create(ctx context.Context, in *models.Institution) error
	ByID(ctx context.Context, id ID) (*models.Institution, error)
	List(ctx context.Context) ([]models.Institution, error)
	Update(ctx context.Context, id ID, upd InstitutionUpdate) (*models.Institution, error)
	Delete(ctx context.Context, id ID) error
}

type TournamentUpdate struct {
	Name             *string
	Date             *time.Time
	Location         *string
	Image            *string
	RegistrationOpen *bool
}

type TournamentRepo interface {
	Create(ctx context.Context, t *models.Tournament) error
	ByID(ctx context.Context, id ID) (*models.Tournament, error)
	ByIDs(ctx context.Context, ids []ID) ([]models.Tournament, error)
	List(ctx context.Context) ([]models.Tournament, error)
	Update(ctx context.Context, id ID, upd TournamentUpdate) (*models.Tournament, error)
	Delete(ctx context.Context, id ID) error
}

type ApplicationFilter struct {
	AthleteID    *ID
	TournamentID *ID
	Status       models.Status
}

type ApplicationRepo interface {
	// Create fails with ErrConflict when the athlete already applied to the tournament.
	Create(ctx context.Context, a *models.Application) error
	ByID(ctx context.Context, id ID) (*models.Application, error)
	List(ctx context.Context, f ApplicationFilter) ([]models.Application, error)
	SetStatus(ctx context.Context, id ID, st models.Status) (*models.Application, error)
	Delete(ctx context.Context, id ID) error
}

type SponsorshipFilter struct {
	AthleteID *ID
	SponsorID *ID
	Status    models.Status
}

type SponsorshipRepo interface {
	Create(ctx context.Context, s *models.Sponsorship) error
	ByID(ctx context.Context, id ID) (*models.Sponsorship, error)
	List(ctx context.Context, f SponsorshipFilter) ([]models.Sponsorship, error)
	SetStatus(ctx context.Context, id ID, st models.Status) (*models.Sponsorship, error)
	Delete(ctx context.Context, id ID) error
}

type WinnerFilter struct {
	TournamentID *ID
	AthleteID    *ID
}

type WinnerUpdate struct {
	Prize *float64
	Award *string
}

type WinnerRepo interface {
	// Create fails with ErrConflict when the tournament position is taken.
	Create(ctx context.Context, w *models.Winner) error
	ByID(ctx context.Context, id ID) (*models.Winner, error)
	List(ctx context.Context, f WinnerFilter) ([]models.Winner, error)
	Update(ctx context.Context, id ID, upd WinnerUpdate) (*models.Winner, error)
	Delete(ctx context.Context, id ID) error
}

type CouncilUpdate struct {
	Name *string
	Role *string
}

type CouncilRepo interface {
	Create(ctx context.Context, m *models.CouncilMember) error
	ByID(ctx context.Context, id ID) (*models.CouncilMember, error)
	List(ctx context.Context) ([]models.CouncilMember, error)
	Update(ctx context.Context, id ID, upd CouncilUpdate) (*models.CouncilMember, error)
	Delete(ctx context.Context, id ID) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Users        UserRepo
	Institutions InstitutionRepo
	Tournaments  TournamentRepo
	Applications ApplicationRepo
	Sponsorships SponsorshipRepo
	Winners      WinnerRepo
	Council      CouncilRepo

	Ping  func(ctx context.Context) error
	Close func(ctx context.Context) error
}
