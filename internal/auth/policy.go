package auth

import "sports-platform/internal/models"

type Action string

const (
	TournamentCreate  Action = "tournament.create"
	TournamentUpdate  Action = "tournament.update"
	TournamentDelete  Action = "tournament.delete"
	TournamentClose   Action = "tournament.close"
	ApplicationCreate Action = "application.create"
	ApplicationStatus Action = "application.status"
	ApplicationDelete Action = "application.delete"
	ApplicationList   Action = "application.list"
	SponsorshipCreate Action = "sponsorship.create"
	SponsorshipStatus Action = "sponsorship.status"
	SponsorshipDelete Action = "sponsorship.delete"
	WinnerCreate      Action = "winner.create"
	WinnerUpdate      Action = "winner.update"
	WinnerDelete      Action = "winner.delete"
	InstitutionRoster Action = "institution.roster"
	AthleteUpdate     Action = "athlete.update"
	UserAdmin         Action = "user.admin"
	InstitutionAdmin  Action = "institution.admin"
	CouncilAdmin      Action = "council.admin"
	AuditRead         Action = "audit.read"
)

// Relation names the field of a resource that designates an owner.
type Relation string

const (
	RelCreator     Relation = "creator"
	RelAthlete     Relation = "athlete"
	RelSponsor     Relation = "sponsor"
	RelInstitution Relation = "institution"
)

// Resource exposes owner ids by relation. An empty string means no owner.
type Resource interface {
	Owner(rel Relation) string
}

// Owners is a Resource built from a literal map.
type Owners map[Relation]string

func (o Owners) Owner(rel Relation) string { return o[rel] }

// Rule grants an action to any of Roles, or to the identity named by Owner.
type Rule struct {
	Roles []models.Role
	Owner Relation
}

var rules = map[Action]Rule{
	TournamentCreate:  {Roles: []models.Role{models.RoleSportsCouncil, models.RoleAdmin}},
	TournamentUpdate:  {Roles: []models.Role{models.RoleAdmin}, Owner: RelCreator},
	TournamentDelete:  {Roles: []models.Role{models.RoleAdmin}, Owner: RelCreator},
	TournamentClose:   {Roles: []models.Role{models.RoleAdmin}, Owner: RelCreator},
	ApplicationCreate: {Roles: []models.Role{models.RoleAthlete}},
	ApplicationStatus: {Roles: []models.Role{models.RoleSportsCouncil}},
	ApplicationDelete: {Owner: RelAthlete},
	ApplicationList:   {Roles: []models.Role{models.RoleSportsCouncil, models.RoleAdmin}},
	SponsorshipCreate: {Roles: []models.Role{models.RoleAthlete}},
	SponsorshipStatus: {Owner: RelSponsor},
	SponsorshipDelete: {Owner: RelAthlete},
	WinnerCreate:      {Roles: []models.Role{models.RoleSportsCouncil}},
	WinnerUpdate:      {Roles: []models.Role{models.RoleSportsCouncil}},
	WinnerDelete:      {Roles: []models.Role{models.RoleSportsCouncil, models.RoleAdmin}},
	InstitutionRoster: {Roles: []models.Role{models.RoleInstitution}},
	AthleteUpdate:     {Owner: RelInstitution},
	UserAdmin:         {Roles: []models.Role{models.RoleAdmin}},
	InstitutionAdmin:  {Roles: []models.Role{models.RoleAdmin}},
	CouncilAdmin:      {Roles: []models.Role{models.RoleAdmin}},
	AuditRead:         {Roles: []models.Role{models.RoleAdmin}},
}

// Can reports whether id may perform act on res. res may be nil for
// actions that have no owner relation. Unknown actions are denied.
func Can(id Identity, act Action, res Resource) bool {
	rule, ok := rules[act]
	if !ok {
		return false
	}
	for _, r := range rule.Roles {
		if id.Role == r {
			return true
		}
	}
	if rule.Owner == "" || res == nil || id.UserID == "" {
		return false
	}
	if rule.Owner == RelInstitution {
		// institution accounts own athletes through their institute id
		return id.Role == models.RoleInstitution && id.InstituteID != "" && res.Owner(rule.Owner) == id.InstituteID
	}
	return res.Owner(rule.Owner) == id.UserID
}
