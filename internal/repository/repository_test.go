package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"cardioalert/internal/apperror"
	"cardioalert/internal/database"
	"cardioalert/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedHospitals(context.Background(), db))
	return db
}

func newAlertWithPayment(t *testing.T, repo *AlertRepository, id string) (*models.Alert, *models.Payment) {
	t.Helper()
	alert := &models.Alert{
		ID:        id,
		UserID:    7,
		Tier:      1,
		Latitude:  12.8540,
		Longitude: 76.4850,
		Status:    models.AlertPending,
	}
	payment := &models.Payment{
		ID:          "pay-" + id,
		AlertID:     id,
		OrderID:     "order-" + id,
		AmountMinor: 100,
		Currency:    "INR",
		Status:      models.PaymentPending,
	}
	require.NoError(t, repo.CreateWithPayment(context.Background(), alert, payment))
	return alert, payment
}

func TestAlertTransitionIsConditional(t *testing.T) {
	db := newTestDB(t)
	repo := NewAlertRepo(db)
	ctx := context.Background()
	newAlertWithPayment(t, repo, "a1")

	ok, err := repo.TransitionStatus(ctx, "a1", models.AlertPending, models.AlertPaymentVerified)
	require.NoError(t, err)
	assert.True(t, ok)

	// second writer with the same expectation loses
	ok, err = repo.TransitionStatus(ctx, "a1", models.AlertPending, models.AlertPaymentVerified)
	require.NoError(t, err)
	assert.False(t, ok)

	alert, err := repo.FindByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, models.AlertPaymentVerified, alert.Status)
}

func TestClaimDispatchSingleWinner(t *testing.T) {
	db := newTestDB(t)
	repo := NewAlertRepo(db)
	ctx := context.Background()
	newAlertWithPayment(t, repo, "a1")

	// pending alerts cannot be claimed
	ok, err := repo.ClaimDispatch(ctx, "a1", time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.TransitionStatus(ctx, "a1", models.AlertPending, models.AlertPaymentVerified)
	require.NoError(t, err)

	ok, err = repo.ClaimDispatch(ctx, "a1", time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ClaimDispatch(ctx, "a1", time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.ReleaseDispatch(ctx, "a1"))
	ok, err = repo.ClaimDispatch(ctx, "a1", time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReleaseStaleClaims(t *testing.T) {
	db := newTestDB(t)
	repo := NewAlertRepo(db)
	ctx := context.Background()
	newAlertWithPayment(t, repo, "old")
	newAlertWithPayment(t, repo, "fresh")
	for _, id := range []string{"old", "fresh"} {
		_, err := repo.TransitionStatus(ctx, id, models.AlertPending, models.AlertPaymentVerified)
		require.NoError(t, err)
	}

	now := time.Now().UTC()
	_, err := repo.ClaimDispatch(ctx, "old", now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = repo.ClaimDispatch(ctx, "fresh", now)
	require.NoError(t, err)

	released, err := repo.ReleaseStaleClaims(ctx, now.Add(-10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), released)

	old, err := repo.FindByID(ctx, "old")
	require.NoError(t, err)
	assert.Nil(t, old.DispatchStartedAt)
	fresh, err := repo.FindByID(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, fresh.DispatchStartedAt)
}

func TestStaleClaimWithLinksIsFinalizedNotReleased(t *testing.T) {
	db := newTestDB(t)
	repo := NewAlertRepo(db)
	ctx := context.Background()
	newAlertWithPayment(t, repo, "linked")
	_, err := repo.TransitionStatus(ctx, "linked", models.AlertPending, models.AlertPaymentVerified)
	require.NoError(t, err)

	now := time.Now().UTC()
	_, err = repo.ClaimDispatch(ctx, "linked", now.Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.CreateLinks(ctx, []models.AlertHospital{{ID: "l1", AlertID: "linked", HospitalID: "H001"}}))

	require.NoError(t, repo.ReleaseDispatch(ctx, "linked"))
	released, err := repo.ReleaseStaleClaims(ctx, now.Add(-10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(0), released)

	alert, err := repo.FindByID(ctx, "linked")
	require.NoError(t, err)
	assert.NotNil(t, alert.DispatchStartedAt)

	finalized, err := repo.FinalizeStaleDispatches(ctx, now.Add(-10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), finalized)

	alert, err = repo.FindByID(ctx, "linked")
	require.NoError(t, err)
	assert.Equal(t, models.AlertSent, alert.Status)
}

func TestCreateLinksSkipsExistingPairs(t *testing.T) {
	db := newTestDB(t)
	repo := NewAlertRepo(db)
	ctx := context.Background()
	newAlertWithPayment(t, repo, "a1")

	links := []models.AlertHospital{
		{ID: "l1", AlertID: "a1", HospitalID: "H001"},
		{ID: "l2", AlertID: "a1", HospitalID: "H002"},
	}
	require.NoError(t, repo.CreateLinks(ctx, links))

	retry := []models.AlertHospital{
		{ID: "l3", AlertID: "a1", HospitalID: "H001"},
		{ID: "l4", AlertID: "a1", HospitalID: "H003"},
	}
	require.NoError(t, repo.CreateLinks(ctx, retry))

	got, err := repo.FindLinks(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "H001", got[0].HospitalID)
	assert.Equal(t, "l1", got[0].ID)
	assert.Equal(t, "Bahubali Children Hospital", got[0].HospitalName)
	assert.Equal(t, "+91-81763-41450", got[0].HospitalPhone)
}

func TestLinkFlagsOnlyMoveForward(t *testing.T) {
	db := newTestDB(t)
	repo := NewAlertRepo(db)
	ctx := context.Background()
	newAlertWithPayment(t, repo, "a1")
	require.NoError(t, repo.CreateLinks(ctx, []models.AlertHospital{{ID: "l1", AlertID: "a1", HospitalID: "H001"}}))

	first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ok, err := repo.MarkNotificationSent(ctx, "a1", "H001", first)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.MarkNotificationSent(ctx, "a1", "H001", first.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Acknowledge(ctx, "a1", "H001", first)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Acknowledge(ctx, "a1", "H001", first.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)

	link, err := repo.FindLink(ctx, "a1", "H001")
	require.NoError(t, err)
	assert.True(t, link.NotificationSent)
	assert.True(t, link.Acknowledged)
	require.NotNil(t, link.SentAt)
	assert.True(t, first.Equal(*link.SentAt))

	_, err = repo.FindLink(ctx, "a1", "H004")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPaymentCompletionIsSetOnce(t *testing.T) {
	db := newTestDB(t)
	alerts := NewAlertRepo(db)
	payments := NewPaymentRepo(db)
	ctx := context.Background()
	_, payment := newAlertWithPayment(t, alerts, "a1")

	ok, err := payments.Complete(ctx, payment.ID, "pay_1")
	require.NoError(t, err)
	assert.True(t, ok)

	// completed payments cannot be failed or re-completed
	ok, err = payments.Fail(ctx, payment.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = payments.Complete(ctx, payment.ID, "pay_2")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := payments.FindByOrderID(ctx, "order-a1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, got.Status)
	require.NotNil(t, got.PaymentRef)
	assert.Equal(t, "pay_1", *got.PaymentRef)

	none, err := payments.FindByAlertID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestHospitalDeactivateHidesHospital(t *testing.T) {
	db := newTestDB(t)
	repo := NewHospitalRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Deactivate(ctx, "H002"))
	_, err := repo.FindByID(ctx, "H002")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, repo.Deactivate(ctx, "H002"), apperror.ErrNotFound)

	active, err := repo.FindActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 3)
}

func TestTransitionStatusIssuesConditionalUpdate(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `alerts` SET `status`=?")).
		WithArgs("sent", "a1", "payment_verified").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := NewAlertRepo(db).TransitionStatus(context.Background(), "a1", models.AlertPaymentVerified, models.AlertSent)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
