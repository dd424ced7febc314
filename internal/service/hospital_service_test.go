package service

import (
	"context"
	"math/rand"
	"testing"

	"cardioalert/internal/apperror"
	"cardioalert/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hospitalIDs(hs []models.NearbyHospital) []string {
	ids := make([]string, len(hs))
	for i, h := range hs {
		ids[i] = h.ID
	}
	return ids
}

func TestFindNearbyHospitalAtPatientLocation(t *testing.T) {
	f := newFixture(t, fixtureOptions{})

	got, err := f.hospitals.FindNearby(context.Background(), patientLat, patientLon, 15, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "H001", got[0].ID)
	assert.Equal(t, 0.0, got[0].DistanceKm)
}

func TestFindNearbyFiltersSortsAndTruncates(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	ctx := context.Background()

	got, err := f.hospitals.FindNearby(ctx, patientLat, patientLon, 0.7, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"H001", "H003", "H002"}, hospitalIDs(got))

	got, err = f.hospitals.FindNearby(ctx, patientLat, patientLon, 0.7, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"H001", "H003"}, hospitalIDs(got))

	got, err = f.hospitals.FindNearby(ctx, 0, 0, 15, 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = f.hospitals.FindNearby(ctx, patientLat, patientLon, 15, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindNearbyBreaksTiesByID(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	ctx := context.Background()

	for _, id := range []string{"Z2", "Z1"} {
		_, err := f.hospitals.CreateHospital(ctx, HospitalInput{
			ID: id, Name: id, Address: "somewhere", Phone: "1",
			Latitude: 13.5, Longitude: 77.5,
		}, 1)
		require.NoError(t, err)
	}

	got, err := f.hospitals.FindNearby(ctx, 13.5, 77.5, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Z1", "Z2"}, hospitalIDs(got))
}

func TestFindNearbyProperties(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		lat := patientLat + (rng.Float64()-0.5)*0.2
		lon := patientLon + (rng.Float64()-0.5)*0.2
		radius := rng.Float64() * 5
		limit := rng.Intn(5)

		got, err := f.hospitals.FindNearby(ctx, lat, lon, radius, limit)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(got), limit)
		for j, h := range got {
			assert.LessOrEqual(t, h.DistanceKm, radius)
			if j > 0 {
				assert.LessOrEqual(t, got[j-1].DistanceKm, h.DistanceKm)
			}
		}
	}
}

func TestDeactivatedHospitalLeavesDirectory(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	ctx := context.Background()

	require.NoError(t, f.hospitals.DeleteHospital(ctx, "H001", 1))

	got, err := f.hospitals.FindNearby(ctx, patientLat, patientLon, 15, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEqual(t, "H001", got[0].ID)

	_, err = f.hospitals.GetHospital(ctx, "H001")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateHospitalValidatesCoordinates(t *testing.T) {
	f := newFixture(t, fixtureOptions{})

	_, err := f.hospitals.CreateHospital(context.Background(), HospitalInput{
		ID: "BAD", Name: "x", Address: "x", Phone: "x", Latitude: 91, Longitude: 0,
	}, 1)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCreateHospitalDuplicateIDConflicts(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	ctx := context.Background()
	in := HospitalInput{
		ID: "H001", Name: "Copy", Address: "x", Phone: "x", Latitude: 12.9, Longitude: 76.5,
	}

	_, err := f.hospitals.CreateHospital(ctx, in, 1)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	require.NoError(t, f.hospitals.DeleteHospital(ctx, "H001", 1))
	_, err = f.hospitals.CreateHospital(ctx, in, 1)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestStaffAccess(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	ctx := context.Background()

	staff := &models.User{Name: "Nurse", Email: "nurse@example.com", PasswordHash: "x", Role: models.RoleStaff}
	require.NoError(t, f.userRepo.Create(ctx, staff))

	assert.ErrorIs(t, f.hospitals.CheckStaffAccess(ctx, staff.ID, staff.Role, "H001"), apperror.ErrForbidden)

	require.NoError(t, f.hospitals.AssignStaff(ctx, "H001", staff.ID, 99))
	require.NoError(t, f.hospitals.AssignStaff(ctx, "H001", staff.ID, 99))
	assert.NoError(t, f.hospitals.CheckStaffAccess(ctx, staff.ID, staff.Role, "H001"))
	assert.ErrorIs(t, f.hospitals.CheckStaffAccess(ctx, staff.ID, staff.Role, "H002"), apperror.ErrForbidden)
	assert.NoError(t, f.hospitals.CheckStaffAccess(ctx, 12345, models.RoleAdmin, "H002"))

	assert.ErrorIs(t, f.hospitals.AssignStaff(ctx, "NOPE", staff.ID, 99), apperror.ErrNotFound)
}
