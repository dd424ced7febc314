package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cardioalert/internal/config"
	"cardioalert/internal/database"
	"cardioalert/internal/lock"
	"cardioalert/internal/notification"
	"cardioalert/internal/payment"
	"cardioalert/internal/repository"
	"cardioalert/pkg/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testSecret = "test-secret"

// Shravanabelagola, at hospital H001
const (
	patientLat = 12.8540
	patientLon = 76.4850
)

type fakeNotifier struct {
	mu        sync.Mutex
	calls     []notification.Message
	fail      map[string]error
	delay     time.Duration
	simulated bool
}

func (f *fakeNotifier) Send(ctx context.Context, msg notification.Message) (*notification.Receipt, error) {
	f.mu.Lock()
	f.calls = append(f.calls, msg)
	err := f.fail[msg.Channel]
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &notification.Receipt{MessageID: "m-" + msg.Channel, Simulated: f.simulated}, nil
}

func (f *fakeNotifier) Calls() []notification.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]notification.Message, len(f.calls))
	copy(out, f.calls)
	return out
}

type failingProcessor struct{}

func (failingProcessor) CreateOrder(context.Context, payment.OrderRequest) (*payment.Order, error) {
	return nil, errors.New("connection refused")
}

// grantingLocker never refuses, leaving exclusion to the dispatch claim
type grantingLocker struct{}

func (grantingLocker) TryLock(context.Context, string, time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}

type fixture struct {
	db          *gorm.DB
	alertRepo   *repository.AlertRepository
	paymentRepo *repository.PaymentRepository
	userRepo    *repository.UserRepository
	staffRepo   *repository.HospitalStaffRepository
	auditRepo   *repository.AuditRepository
	hospitals   *HospitalService
	alerts      *AlertService
	payments    *PaymentService
	auth        *AuthService
	worker      *WorkerService
	notifier    *fakeNotifier
}

type fixtureOptions struct {
	secret    string
	processor payment.Processor
	locker    lock.Locker
}

func newFixture(t *testing.T, opts fixtureOptions) *fixture {
	t.Helper()

	db, err := database.OpenSQLite(":memory:", gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedHospitals(context.Background(), db))

	utils.InitJWT("access-secret", "refresh-secret", time.Minute, time.Hour)
	utils.SetBcryptCost(4)

	if opts.processor == nil {
		opts.processor = payment.NewSimulatedProcessor()
	}
	if opts.locker == nil {
		opts.locker = lock.NewLocalLocker()
	}

	f := &fixture{
		db:          db,
		alertRepo:   repository.NewAlertRepo(db),
		paymentRepo: repository.NewPaymentRepo(db),
		userRepo:    repository.NewUserRepo(db),
		staffRepo:   repository.NewHospitalStaffRepo(db),
		auditRepo:   repository.NewAuditRepo(db),
		notifier:    &fakeNotifier{fail: map[string]error{}},
	}

	tiers := NewTierPolicy(config.PricingConfig{
		TierPrices:    [3]int64{100, 200, 300},
		TierHospitals: [3]int{1, 3, 10},
	})
	gateway := payment.NewGatewayWith(opts.processor, opts.secret, "INR", "rzp_test_key")
	fanout := NewDispatchService(f.notifier, time.Second, 4)

	f.hospitals = NewHospitalService(repository.NewHospitalRepo(db), f.staffRepo, f.userRepo, f.auditRepo)
	f.alerts = NewAlertService(f.alertRepo, f.paymentRepo, f.auditRepo, f.hospitals, tiers, fanout, opts.locker, 15, time.Minute)
	f.payments = NewPaymentService(f.paymentRepo, f.alertRepo, f.auditRepo, gateway, f.alerts, f.hospitals, tiers, 15)
	f.auth = NewAuthService(f.userRepo, f.auditRepo)
	f.worker = NewWorkerService(f.alertRepo, 10*time.Minute, time.Minute)
	return f
}

// createOrder opens an order for user 1 near H001
func (f *fixture) createOrder(t *testing.T, tier int) *OrderResult {
	t.Helper()
	res, err := f.payments.CreateOrder(context.Background(), 1, CreateOrderInput{
		Tier:      tier,
		Latitude:  patientLat,
		Longitude: patientLon,
		Symptoms:  "chest pain",
	})
	require.NoError(t, err)
	return res
}

// paidAlert creates an order and verifies it with a valid signature
func (f *fixture) paidAlert(t *testing.T, tier int) *OrderResult {
	t.Helper()
	res := f.createOrder(t, tier)
	_, err := f.payments.Verify(context.Background(), 1, VerifyInput{
		AlertID:   res.Alert.ID,
		OrderID:   res.Order.ID,
		PaymentID: "pay_" + res.Alert.ID[:8],
		Signature: payment.Sign(testSecret, res.Order.ID, "pay_"+res.Alert.ID[:8]),
	})
	require.NoError(t, err)
	return res
}
