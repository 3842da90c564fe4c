package internal

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sports-platform/internal/models"
	"sports-platform/internal/notify"
	"sports-platform/internal/store"
)

func TestAthleteApplicationApprovedFlow(t *testing.T) {
	e := newEnv(t)
	e.register(map[string]any{"name": "Ann", "email": "ann@x.io", "password": "secret1", "role": "Athlete"})
	w := e.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "ann@x.io", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	athlete := decode[authBody](t, w)

	council, _ := e.seed(models.RoleSportsCouncil, "council@x.io")
	tour := e.createTournament(council, "Spring Open")

	w = e.do(http.MethodPost, "/api/applications", athlete.Token, map[string]any{"tournamentId": tour.ID.Hex()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	app := decode[models.Application](t, w)
	assert.Equal(t, models.StatusPending, app.Status)
	assert.Equal(t, "Spring Open", app.TournamentName)
	assert.Equal(t, "Main Arena", app.TournamentLocation)

	w = e.do(http.MethodPost, "/api/applications", athlete.Token, map[string]any{"tournamentId": tour.ID.Hex()})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(http.MethodGet, "/api/applications?tournament="+tour.ID.Hex(), council, nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[[]struct {
		ID      store.ID     `json:"id"`
		Athlete *models.User `json:"athlete"`
	}](t, w)
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].Athlete)
	assert.Equal(t, "Ann", listed[0].Athlete.Name)

	w = e.do(http.MethodPut, "/api/applications/"+app.ID.Hex()+"/status", council, map[string]any{"status": "Approved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodGet, "/api/applications/mine", athlete.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[[]models.Application](t, w)
	require.Len(t, mine, 1)
	assert.Equal(t, models.StatusApproved, mine[0].Status)

	var types []string
	for _, ev := range e.events.Events() {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []string{notify.ApplicationCreated, notify.ApplicationStatusChanged}, types)
}

func TestApplicationStatusValidation(t *testing.T) {
	e := newEnv(t)
	council, _ := e.seed(models.RoleSportsCouncil, "c@x.io")
	athlete, _ := e.seed(models.RoleAthlete, "a@x.io")
	tour := e.createTournament(council, "Cup")
	w := e.do(http.MethodPost, "/api/applications", athlete, map[string]any{"tournamentId": tour.ID.Hex()})
	require.Equal(t, http.StatusCreated, w.Code)
	app := decode[models.Application](t, w)

	w = e.do(http.MethodPut, "/api/applications/"+app.ID.Hex()+"/status", council, map[string]any{"status": "Maybe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPut, "/api/applications/65f000000000000000000000/status", council, map[string]any{"status": "Rejected"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodPut, "/api/applications/not-an-id/status", council, map[string]any{"status": "Rejected"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApplicationRequiresOpenRegistration(t *testing.T) {
	e := newEnv(t)
	council, _ := e.seed(models.RoleSportsCouncil, "c@x.io")
	athlete, _ := e.seed(models.RoleAthlete, "a@x.io")
	tour := e.createTournament(council, "Cup")
	e.closeTournament(council, tour)

	w := e.do(http.MethodPost, "/api/applications", athlete, map[string]any{"tournamentId": tour.ID.Hex()})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "registration is closed for this tournament", decode[errBody](t, w).Error)

	w = e.do(http.MethodPost, "/api/applications", athlete, map[string]any{"tournamentId": "65f000000000000000000000"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApplicationDeleteOwnerOnly(t *testing.T) {
	e := newEnv(t)
	council, _ := e.seed(models.RoleSportsCouncil, "c@x.io")
	admin, _ := e.seed(models.RoleAdmin, "root@x.io")
	owner, _ := e.seed(models.RoleAthlete, "a@x.io")
	other, _ := e.seed(models.RoleAthlete, "b@x.io")
	tour := e.createTournament(council, "Cup")

	w := e.do(http.MethodPost, "/api/applications", owner, map[string]any{"tournamentId": tour.ID.Hex()})
	require.Equal(t, http.StatusCreated, w.Code)
	app := decode[models.Application](t, w)
	path := "/api/applications/" + app.ID.Hex()

	for name, tok := range map[string]string{"other athlete": other, "council": council, "admin": admin} {
		w = e.do(http.MethodDelete, path, tok, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, name)
	}
	_, err := e.d.Store.Applications.ByID(context.Background(), app.ID)
	require.NoError(t, err)

	w = e.do(http.MethodDelete, path, owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(http.MethodDelete, path, owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWinnerPositionAssignedOnce(t *testing.T) {
	e := newEnv(t)
	council, _ := e.seed(models.RoleSportsCouncil, "c@x.io")
	_, a1 := e.seed(models.RoleAthlete, "a1@x.io")
	_, a2 := e.seed(models.RoleAthlete, "a2@x.io")
	_, sponsor := e.seed(models.RoleSponsor, "s@x.io")
	tour := e.createTournament(council, "Final")

	award := func(athlete store.ID, pos int) *httptest.ResponseRecorder {
		return e.do(http.MethodPost, "/api/winners", council, map[string]any{
			"tournamentId": tour.ID.Hex(), "athleteId": athlete.Hex(), "position": pos, "prize": 100, "award": "Gold",
		})
	}

	w := award(a1.ID, 1)
	require.Equal(t, http.StatusBadRequest, w.Code, "registration still open")

	e.closeTournament(council, tour)

	w = award(a1.ID, 1)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[models.Winner](t, w)

	w = award(a2.ID, 1)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "position 1 already assigned for this tournament", decode[errBody](t, w).Error)

	assert.Equal(t, http.StatusCreated, award(a2.ID, 2).Code)
	assert.Equal(t, http.StatusBadRequest, award(a2.ID, 4).Code)
	assert.Equal(t, http.StatusBadRequest, award(sponsor.ID, 3).Code)

	w = e.do(http.MethodGet, "/api/winners?tournament="+tour.ID.Hex(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]struct {
		Position   int                `json:"position"`
		Athlete    *models.User       `json:"athlete"`
		Tournament *models.Tournament `json:"tournament"`
	}](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Position)
	assert.Equal(t, a1.ID, list[0].Athlete.ID)
	assert.Equal(t, "Final", list[0].Tournament.Name)

	w = e.do(http.MethodPut, "/api/winners/"+first.ID.Hex(), council, map[string]any{"award": "Champion"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Champion", decode[models.Winner](t, w).Award)

	w = e.do(http.MethodDelete, "/api/winners/"+first.ID.Hex(), council, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusCreated, award(a2.ID, 1).Code, "freed position can be reassigned")
}

func TestInstitutionRegistersAthleteFlow(t *testing.T) {
	e := newEnv(t)
	reg := e.register(map[string]any{
		"name": "North High", "email": "north@x.io", "password": "secret1", "role": "Institution", "location": "Oslo",
	})
	require.NotNil(t, reg.User.InstituteID)
	instID := *reg.User.InstituteID

	ident, err := e.d.Tokens.Verify(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, instID.Hex(), ident.InstituteID)

	w := e.do(http.MethodPost, "/api/institution/athletes", reg.Token, map[string]any{
		"name": "Kid", "email": "kid@x.io", "password": "secret1", "admissionNumber": "A-17",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	kid := decode[models.User](t, w)
	assert.Equal(t, models.RoleAthlete, kid.Role)
	require.NotNil(t, kid.InstituteID)
	assert.Equal(t, instID, *kid.InstituteID)

	w = e.do(http.MethodGet, "/api/institutions/"+kid.InstituteID.Hex(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	inst := decode[models.Institution](t, w)
	assert.Equal(t, "North High", inst.Name)
	assert.Equal(t, "Oslo", inst.Location)

	w = e.do(http.MethodGet, "/api/institutions/"+instID.Hex()+"/athletes", reg.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	athletes := decode[[]models.User](t, w)
	require.Len(t, athletes, 1)
	assert.Equal(t, kid.ID, athletes[0].ID)

	w = e.do(http.MethodGet, "/api/institution/athletes", reg.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.User](t, w), 1)

	// the kid can log in with the credentials the institution set
	w = e.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "kid@x.io", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	kidIdent, err := e.d.Tokens.Verify(decode[authBody](t, w).Token)
	require.NoError(t, err)
	assert.Equal(t, instID.Hex(), kidIdent.InstituteID)
}

func TestInstitutionAthleteScope(t *testing.T) {
	e := newEnv(t)
	north := e.register(map[string]any{"name": "North", "email": "north@x.io", "password": "secret1", "role": "Institution"})
	south := e.register(map[string]any{"name": "South", "email": "south@x.io", "password": "secret1", "role": "Institution"})
	admin, _ := e.seed(models.RoleAdmin, "root@x.io")

	w := e.do(http.MethodPost, "/api/institution/athletes", north.Token, map[string]any{
		"name": "Kid", "email": "kid@x.io", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	kid := decode[models.User](t, w)
	path := "/api/institution/athletes/" + kid.ID.Hex()

	w = e.do(http.MethodGet, "/api/institution/athletes", south.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.User](t, w))

	w = e.do(http.MethodPut, path, south.Token, map[string]any{"name": "Stolen"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodPut, path, north.Token, map[string]any{"admissionNumber": "N-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "N-1", decode[models.User](t, w).AdmissionNumber)

	// admins pass the policy but the route is for institution accounts
	w = e.do(http.MethodPut, path, admin, map[string]any{"name": "X"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodPut, "/api/institution/athletes/"+north.User.ID.Hex(), north.Token, map[string]any{"name": "X"})
	assert.Equal(t, http.StatusNotFound, w.Code, "non-athletes are not editable here")
}

func TestSponsorshipLifecycle(t *testing.T) {
	e := newEnv(t)
	athlete, a := e.seed(models.RoleAthlete, "a@x.io")
	sponsorTok, sponsor := e.seed(models.RoleSponsor, "s@x.io")
	otherSponsor, _ := e.seed(models.RoleSponsor, "s2@x.io")
	_, notSponsor := e.seed(models.RoleAthlete, "b@x.io")

	w := e.do(http.MethodPost, "/api/sponsorships", athlete, map[string]any{"sponsorId": notSponsor.ID.Hex(), "amount": 50})
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = e.do(http.MethodPost, "/api/sponsorships", athlete, map[string]any{"sponsorId": sponsor.ID.Hex(), "amount": 0})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "amount must be greater than 0", decode[errBody](t, w).Error)

	w = e.do(http.MethodPost, "/api/sponsorships", athlete, map[string]any{"sponsorId": sponsor.ID.Hex(), "amount": 250, "message": "new shoes"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sp := decode[models.Sponsorship](t, w)
	assert.Equal(t, models.StatusPending, sp.Status)
	assert.Equal(t, a.ID, sp.AthleteID)

	w = e.do(http.MethodGet, "/api/sponsorships/mine", sponsorTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	inbox := decode[[]struct {
		Athlete *models.User `json:"athlete"`
		Sponsor *models.User `json:"sponsor"`
	}](t, w)
	require.Len(t, inbox, 1)
	assert.Equal(t, a.ID, inbox[0].Athlete.ID)
	assert.Equal(t, sponsor.ID, inbox[0].Sponsor.ID)

	w = e.do(http.MethodGet, "/api/sponsorships/mine", otherSponsor, nil)
	assert.Empty(t, decode[[]sponsorshipView](t, w))

	w = e.do(http.MethodGet, "/api/sponsorships/mine?status=Pending", sponsorTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]sponsorshipView](t, w), 1)
	w = e.do(http.MethodGet, "/api/sponsorships/mine?status=Maybe", sponsorTok, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "status must be one of Pending, Approved, Rejected", decode[errBody](t, w).Error)

	path := "/api/sponsorships/" + sp.ID.Hex()
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPut, path+"/status", otherSponsor, map[string]any{"status": "Approved"}).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPut, path+"/status", athlete, map[string]any{"status": "Approved"}).Code)

	w = e.do(http.MethodPut, path+"/status", sponsorTok, map[string]any{"status": "Approved"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusApproved, decode[models.Sponsorship](t, w).Status)

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodDelete, path, sponsorTok, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodDelete, path, athlete, nil).Code)
}

func TestTournamentOwnershipAndCache(t *testing.T) {
	e := newEnv(t)
	creator, _ := e.seed(models.RoleSportsCouncil, "c1@x.io")
	otherCouncil, _ := e.seed(models.RoleSportsCouncil, "c2@x.io")
	admin, _ := e.seed(models.RoleAdmin, "root@x.io")
	tour := e.createTournament(creator, "Cup")
	assert.True(t, tour.RegistrationOpen)
	path := "/api/tournaments/" + tour.ID.Hex()

	// warm the cache
	w := e.do(http.MethodGet, "/api/tournaments", "", nil)
	require.Len(t, decode[[]models.Tournament](t, w), 1)
	require.Equal(t, http.StatusOK, e.do(http.MethodGet, path, "", nil).Code)

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPut, path, otherCouncil, map[string]any{"name": "Mine"}).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, path+"/close", otherCouncil, nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodDelete, path, otherCouncil, nil).Code)

	w = e.do(http.MethodPut, path, admin, map[string]any{"name": "Grand Cup", "date": "2026-07-04"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodGet, "/api/tournaments", "", nil)
	assert.Equal(t, "Grand Cup", decode[[]models.Tournament](t, w)[0].Name)
	w = e.do(http.MethodGet, path, "", nil)
	got := decode[models.Tournament](t, w)
	assert.Equal(t, "Grand Cup", got.Name)
	assert.Equal(t, 2026, got.Date.Year())
	assert.Equal(t, 7, int(got.Date.Month()))

	w = e.do(http.MethodPost, path+"/close", creator, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[models.Tournament](t, w).RegistrationOpen)
	w = e.do(http.MethodPost, path+"/open", creator, nil)
	assert.True(t, decode[models.Tournament](t, w).RegistrationOpen)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPut, path, creator, map[string]any{"date": "soon"}).Code)

	require.Equal(t, http.StatusOK, e.do(http.MethodDelete, path, creator, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, path, "", nil).Code)
	w = e.do(http.MethodGet, "/api/tournaments", "", nil)
	assert.Empty(t, decode[[]models.Tournament](t, w))
}

func TestAdminRoutes(t *testing.T) {
	e := newEnv(t)
	admin, root := e.seed(models.RoleAdmin, "root@x.io")
	_, victim := e.seed(models.RoleSponsor, "s@x.io")

	w := e.do(http.MethodDelete, "/api/admin/users/"+root.ID.Hex(), admin, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cannot delete yourself", decode[errBody](t, w).Error)

	w = e.do(http.MethodGet, "/api/admin/users?role=Sponsor", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.User](t, w), 1)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/admin/users?role=Coach", admin, nil).Code)

	w = e.do(http.MethodPut, "/api/admin/users/"+victim.ID.Hex(), admin, map[string]any{"role": "Athlete"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleAthlete, decode[models.User](t, w).Role)
	assert.Equal(t, http.StatusConflict, e.do(http.MethodPut, "/api/admin/users/"+victim.ID.Hex(), admin, map[string]any{"email": "root@x.io"}).Code)

	require.Equal(t, http.StatusOK, e.do(http.MethodDelete, "/api/admin/users/"+victim.ID.Hex(), admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/users/"+victim.ID.Hex(), admin, nil).Code)

	// council listing is cached and invalidated on writes
	w = e.do(http.MethodGet, "/api/council", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.CouncilMember](t, w))

	w = e.do(http.MethodPost, "/api/admin/council", admin, map[string]any{"name": "Dana", "role": "Chair"})
	require.Equal(t, http.StatusCreated, w.Code)
	member := decode[models.CouncilMember](t, w)

	w = e.do(http.MethodGet, "/api/council", "", nil)
	members := decode[[]models.CouncilMember](t, w)
	require.Len(t, members, 1)
	assert.Equal(t, "Chair", members[0].Role)

	require.Equal(t, http.StatusOK, e.do(http.MethodDelete, "/api/admin/council/"+member.ID.Hex(), admin, nil).Code)
	w = e.do(http.MethodGet, "/api/council", "", nil)
	assert.Empty(t, decode[[]models.CouncilMember](t, w))

	w = e.do(http.MethodPost, "/api/admin/institutions", admin, map[string]any{"name": "East", "location": "Rome"})
	require.Equal(t, http.StatusCreated, w.Code)
	inst := decode[models.Institution](t, w)
	require.Equal(t, http.StatusOK, e.do(http.MethodDelete, "/api/admin/institutions/"+inst.ID.Hex(), admin, nil).Code)

	w = e.do(http.MethodGet, "/api/admin/logs", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	logs := decode[[]struct {
		Action string `json:"action"`
	}](t, w)
	var actions []string
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.Contains(t, actions, "admin.user.delete")
	assert.Contains(t, actions, "admin.council.create")
	assert.Equal(t, "admin.institution.delete", actions[0])
}

type failingUsers struct {
	store.UserRepo
}

func (failingUsers) List(context.Context, store.UserFilter) ([]models.User, error) {
	return nil, errors.New("mongo: connection pool for db-7 exhausted")
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	e := newEnv(t)
	tok, _ := e.seed(models.RoleAthlete, "a@x.io")
	e.d.Store.Users = failingUsers{e.d.Store.Users}

	w := e.do(http.MethodGet, "/api/users/athletes", tok, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode[errBody](t, w)
	assert.Equal(t, "internal error", body.Error)
	assert.Equal(t, "internal", body.Kind)
	assert.NotContains(t, w.Body.String(), "db-7")
}

func multipartImage(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestProfileImageUpload(t *testing.T) {
	e := newEnv(t)
	tok, _ := e.seed(models.RoleAthlete, "a@x.io")

	body, ctype := multipartImage(t, "me.PNG")
	req := httptest.NewRequest(http.MethodPost, "/api/users/me/image", body)
	req.Header.Set("Content-Type", ctype)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := e.request(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	u := decode[models.User](t, w)
	require.True(t, strings.HasPrefix(u.ProfileImage, "/uploads/"))
	assert.True(t, strings.HasSuffix(u.ProfileImage, ".png"))
	_, err := os.Stat(filepath.Join(e.d.UploadDir, filepath.Base(u.ProfileImage)))
	require.NoError(t, err)

	w = e.request(httptest.NewRequest(http.MethodGet, u.ProfileImage, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	body, ctype = multipartImage(t, "script.sh")
	req = httptest.NewRequest(http.MethodPost, "/api/users/me/image", body)
	req.Header.Set("Content-Type", ctype)
	req.Header.Set("Authorization", "Bearer "+tok)
	assert.Equal(t, http.StatusBadRequest, e.request(req).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/readyz", "", nil).Code)

	e.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "x@x.io", "password": "whatever"})
	w := e.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `sports_auth_total{op="login",outcome="failure"} 1`)
	assert.Contains(t, w.Body.String(), "sports_http_requests_total")

	w = e.do(http.MethodGet, "/healthz", "", nil)
	assert.NotEmpty(t, w.Header().Get(headerReqID))
}

func TestRecoveredPanicIsLoggedAndCounted(t *testing.T) {
	e := newEnv(t)
	e.r.GET("/boom", func(*gin.Context) { panic("kaboom") })

	w := e.do(http.MethodGet, "/boom", "", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", decode[errBody](t, w).Error)

	w = e.do(http.MethodGet, "/metrics", "", nil)
	assert.Contains(t, w.Body.String(), `sports_http_requests_total{method="GET",path="/boom",status="500"} 1`)
}
