package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleAdmin         Role = "Admin"
	RoleAthlete       Role = "Athlete"
	RoleSponsor       Role = "Sponsor"
	RoleSportsCouncil Role = "SportsCouncil"
	RoleInstitution   Role = "Institution"
)

var Roles = []Role{RoleAdmin, RoleAthlete, RoleSponsor, RoleSportsCouncil, RoleInstitution}

func (r Role) Valid() bool {
	for _, v := range Roles {
		if r == v {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type User struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name            string              `bson:"name" json:"name"`
	Email           string              `bson:"email" json:"email"` // lowercase
	PasswordHash    string              `bson:"password" json:"-"`
	Role            Role                `bson:"role" json:"role"`
	ProfileImage    string              `bson:"profile_image,omitempty" json:"profileImage,omitempty"`
	InstituteID     *primitive.ObjectID `bson:"institute_id,omitempty" json:"instituteId,omitempty"`
	AdmissionNumber string              `bson:"admission_number,omitempty" json:"admissionNumber,omitempty"`
	CreatedAt       time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updated_at" json:"updatedAt"`
}

type Institution struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Location  string             `bson:"location" json:"location"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

type Tournament struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Date             time.Time          `bson:"date" json:"date"`
	Location         string             `bson:"location" json:"location"`
	Image            string             `bson:"image,omitempty" json:"image,omitempty"`
	RegistrationOpen bool               `bson:"registration_open" json:"registrationOpen"`
	CreatedBy        primitive.ObjectID `bson:"created_by" json:"createdBy"`
	CreatedAt        time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updatedAt"`
}

type Application struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AthleteID          primitive.ObjectID `bson:"athlete" json:"athlete"`
	TournamentID       primitive.ObjectID `bson:"tournament" json:"tournament"`
	TournamentName     string             `bson:"tournament_name" json:"tournamentName"`
	TournamentLocation string             `bson:"tournament_location" json:"tournamentLocation"`
	Status             Status             `bson:"status" json:"status"`
	CreatedAt          time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updatedAt"`
}

type Sponsorship struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AthleteID primitive.ObjectID `bson:"athlete" json:"athlete"`
	SponsorID primitive.ObjectID `bson:"sponsor" json:"sponsor"`
	Amount    float64            `bson:"amount" json:"amount"`
	Message   string             `bson:"message,omitempty" json:"message,omitempty"`
	Status    Status             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

type Winner struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AthleteID    primitive.ObjectID `bson:"athlete" json:"athlete"`
	TournamentID primitive.ObjectID `bson:"tournament" json:"tournament"`
	Position     int                `bson:"position" json:"position"` // 1..3
	Prize        float64            `bson:"prize" json:"prize"`
	Award        string             `bson:"award" json:"award"`
	AwardedBy    primitive.ObjectID `bson:"awarded_by" json:"awardedBy"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
}

// CouncilMember is a public listing entry. It is not a login account.
type CouncilMember struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Role      string             `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
