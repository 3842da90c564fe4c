package memstore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"sports-platform/internal/models"
	"sports-platform/internal/store"
)

func TestUserEmailUniqueCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	st := New()

	u := &models.User{Name: "A", Email: "Ann@Example.com", Role: models.RoleAthlete}
	require.NoError(t, st.Users.Create(ctx, u))
	assert.Equal(t, "ann@example.com", u.Email)

	err := st.Users.Create(ctx, &models.User{Name: "B", Email: "ANN@example.COM", Role: models.RoleSponsor})
	assert.ErrorIs(t, err, store.ErrConflict)

	all, err := st.Users.List(ctx, store.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	got, err := st.Users.ByEmail(ctx, " ann@EXAMPLE.com ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestUserUpdateEmailConflict(t *testing.T) {
	ctx := context.Background()
	st := New()
	a := &models.User{Email: "a@x.io", Role: models.RoleAthlete}
	b := &models.User{Email: "b@x.io", Role: models.RoleAthlete}
	require.NoError(t, st.Users.Create(ctx, a))
	require.NoError(t, st.Users.Create(ctx, b))

	taken := "A@x.io"
	_, err := st.Users.Update(ctx, b.ID, store.UserUpdate{Email: &taken})
	assert.ErrorIs(t, err, store.ErrConflict)

	name := "Bea"
	got, err := st.Users.Update(ctx, b.ID, store.UserUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Bea", got.Name)

	_, err = st.Users.Update(ctx, primitive.NewObjectID(), store.UserUpdate{Name: &name})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserListFilters(t *testing.T) {
	ctx := context.Background()
	st := New()
	inst := primitive.NewObjectID()
	require.NoError(t, st.Users.Create(ctx, &models.User{Email: "1@x.io", Role: models.RoleAthlete, InstituteID: &inst}))
	require.NoError(t, st.Users.Create(ctx, &models.User{Email: "2@x.io", Role: models.RoleAthlete}))
	require.NoError(t, st.Users.Create(ctx, &models.User{Email: "3@x.io", Role: models.RoleSponsor}))

	athletes, _ := st.Users.List(ctx, store.UserFilter{Role: models.RoleAthlete})
	assert.Len(t, athletes, 2)
	scoped, _ := st.Users.List(ctx, store.UserFilter{Role: models.RoleAthlete, InstituteID: &inst})
	require.Len(t, scoped, 1)
	assert.Equal(t, "1@x.io", scoped[0].Email)
}

func TestWinnerPositionAssignedOnceUnderContention(t *testing.T) {
	ctx := context.Background()
	st := New()
	tid := primitive.NewObjectID()

	var ok, conflicts int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := st.Winners.Create(ctx, &models.Winner{TournamentID: tid, AthleteID: primitive.NewObjectID(), Position: 1})
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case errors.Is(err, store.ErrConflict):
				atomic.AddInt32(&conflicts, 1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, ok)
	assert.EqualValues(t, 15, conflicts)

	// other positions and tournaments are independent
	require.NoError(t, st.Winners.Create(ctx, &models.Winner{TournamentID: tid, Position: 2}))
	require.NoError(t, st.Winners.Create(ctx, &models.Winner{TournamentID: primitive.NewObjectID(), Position: 1}))

	list, _ := st.Winners.List(ctx, store.WinnerFilter{TournamentID: &tid})
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Position)
}

func TestApplicationDuplicateAndStatus(t *testing.T) {
	ctx := context.Background()
	st := New()
	athlete, tour := primitive.NewObjectID(), primitive.NewObjectID()

	a := &models.Application{AthleteID: athlete, TournamentID: tour, Status: models.StatusPending}
	require.NoError(t, st.Applications.Create(ctx, a))
	err := st.Applications.Create(ctx, &models.Application{AthleteID: athlete, TournamentID: tour})
	assert.ErrorIs(t, err, store.ErrConflict)

	got, err := st.Applications.SetStatus(ctx, a.ID, models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)

	mine, _ := st.Applications.List(ctx, store.ApplicationFilter{AthleteID: &athlete})
	require.Len(t, mine, 1)
	assert.Equal(t, models.StatusApproved, mine[0].Status)

	require.NoError(t, st.Applications.Delete(ctx, a.ID))
	assert.ErrorIs(t, st.Applications.Delete(ctx, a.ID), store.ErrNotFound)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	st := New()
	tour := &models.Tournament{Name: "Open"}
	require.NoError(t, st.Tournaments.Create(ctx, tour))

	got, err := st.Tournaments.ByID(ctx, tour.ID)
	require.NoError(t, err)
	got.Name = "mutated"

	again, _ := st.Tournaments.ByID(ctx, tour.ID)
	assert.Equal(t, "Open", again.Name)
}
