package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"salesledger/internal/config"
	"salesledger/internal/database"
	"salesledger/internal/model"
	"salesledger/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordedEvent struct {
	owner uuid.UUID
	event Event
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeNotifier) Notify(ownerID uuid.UUID, event Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{owner: ownerID, event: event})
}

func (f *fakeNotifier) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.events))
	for _, e := range f.events {
		names = append(names, e.event.Event)
	}
	return names
}

type fixture struct {
	db       *gorm.DB
	current  time.Time
	notifier *fakeNotifier

	users       repository.UserRepository
	audit       repository.AuditRepository
	sales       *saleService
	receivables *receivableService
	payables    *payableService
	clients     *clientService
	products    *productService
	dashboard   *dashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewConnection(config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: ":memory:",
		LogLevel:   "silent",
	}, zap.NewNop())
	require.NoError(t, err)

	f := &fixture{
		db:       db,
		current:  time.Date(2024, time.June, 10, 15, 30, 0, 0, time.UTC),
		notifier: &fakeNotifier{},
	}
	clock := func() time.Time { return f.current }
	log := zap.NewNop()

	txManager := repository.NewTransactionManager(db)
	saleRepo := repository.NewSaleRepository(db)
	clientRepo := repository.NewClientRepository(db)
	productRepo := repository.NewProductRepository(db)
	receivableRepo := repository.NewReceivableRepository(db)
	payableRepo := repository.NewPayableRepository(db)
	f.users = repository.NewUserRepository(db)
	f.audit = repository.NewAuditRepository(db)

	f.sales = NewSaleService(saleRepo, clientRepo, productRepo, receivableRepo, f.audit, txManager, f.notifier, log).(*saleService)
	f.sales.now = clock
	f.receivables = NewReceivableService(receivableRepo, f.audit, txManager, f.notifier, log).(*receivableService)
	f.receivables.now = clock
	f.payables = NewPayableService(payableRepo, f.audit, txManager, f.notifier, log).(*payableService)
	f.payables.now = clock
	f.clients = NewClientService(clientRepo, saleRepo, receivableRepo, f.audit, txManager, log).(*clientService)
	f.clients.now = clock
	f.products = NewProductService(productRepo, f.audit, txManager, log).(*productService)
	f.dashboard = NewDashboardService(repository.NewDashboardRepository(db), saleRepo, receivableRepo, payableRepo, log).(*dashboardService)
	f.dashboard.now = clock

	return f
}

func (f *fixture) owner(t *testing.T, email string) uuid.UUID {
	t.Helper()
	user := &model.User{Name: email, Username: email, Email: email, Password: "x"}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user.ID
}

func (f *fixture) client(t *testing.T, ownerID uuid.UUID, name string) string {
	t.Helper()
	res, err := f.clients.Create(context.Background(), ownerID, ClientRequest{Name: name})
	require.NoError(t, err)
	return res.ID
}

func (f *fixture) product(t *testing.T, ownerID uuid.UUID, name, price string) string {
	t.Helper()
	res, err := f.products.Create(context.Background(), ownerID, ProductRequest{Name: name, Price: price, Stock: 10})
	require.NoError(t, err)
	return res.ID
}

func (f *fixture) count(t *testing.T, table interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(table).Count(&n).Error)
	return n
}
