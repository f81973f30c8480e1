package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/blinkedin/backend/internal/models"
)

// ---------------------------------------------------------------------------
// In-memory mocks shared by the service tests. They let us exercise the real
// dispatch, state machine, ledger, and oversight logic without a database.
// ---------------------------------------------------------------------------

// --- noopTx satisfies pgx.Tx for test use; only Commit/Rollback are called. ---

type noopTx struct{}

func (noopTx) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }
func (noopTx) Commit(context.Context) error          { return nil }
func (noopTx) Rollback(context.Context) error        { return nil }
func (noopTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (noopTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (noopTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (noopTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (noopTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (noopTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (noopTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (noopTx) Conn() *pgx.Conn { return nil }

// --- TxBeginner mock ---

type mockPool struct{}

func (mockPool) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }

// --- account store mock ---

type mockAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*models.Account
}

func newMockAccountRepo(accs ...*models.Account) *mockAccountRepo {
	m := &mockAccountRepo{accounts: make(map[uuid.UUID]*models.Account)}
	for _, a := range accs {
		cp := *a
		m.accounts[a.ID] = &cp
	}
	return m
}

func (m *mockAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (m *mockAccountRepo) GetByIDForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*models.Account, error) {
	return m.GetByID(context.Background(), id)
}

func (m *mockAccountRepo) Debit(_ context.Context, _ pgx.Tx, id uuid.UUID, amount int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.WalletBalance < amount {
		return 0, pgx.ErrNoRows
	}
	a.WalletBalance -= amount
	return a.WalletBalance, nil
}

func (m *mockAccountRepo) Credit(_ context.Context, _ pgx.Tx, id uuid.UUID, amount int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	a.WalletBalance += amount
	return a.WalletBalance, nil
}

func (m *mockAccountRepo) FindProfessionals(_ context.Context, profession, city string) ([]*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Account
	for _, a := range m.accounts {
		if a.Role == models.RoleProfessional && a.Profession == profession && a.City == city {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockAccountRepo) List(_ context.Context) ([]*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Account
	for _, a := range m.accounts {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockAccountRepo) DeleteTx(_ context.Context, _ pgx.Tx, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, id)
	return nil
}

func (m *mockAccountRepo) balance(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[id].WalletBalance
}

func (m *mockAccountRepo) totalBalance() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := 0
	for _, a := range m.accounts {
		sum += a.WalletBalance
	}
	return sum
}

func (m *mockAccountRepo) has(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.accounts[id]
	return ok
}

// --- order store mock ---

type mockOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*models.Order
}

func newMockOrderRepo(orders ...*models.Order) *mockOrderRepo {
	m := &mockOrderRepo{orders: make(map[uuid.UUID]*models.Order)}
	for _, o := range orders {
		cp := *o
		m.orders[o.ID] = &cp
	}
	return m
}

func (m *mockOrderRepo) Create(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) GetByIDForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*models.Order, error) {
	return m.GetByID(context.Background(), id)
}

func (m *mockOrderRepo) AcceptPending(_ context.Context, orderID, proID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.Status != models.OrderStatusPending {
		return false, nil
	}
	o.Status = models.OrderStatusAccepted
	id := proID
	o.ProID = &id
	return true, nil
}

func (m *mockOrderRepo) CompleteAccepted(_ context.Context, _ pgx.Tx, orderID, proID uuid.UUID, amount int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.Status != models.OrderStatusAccepted || o.ProID == nil || *o.ProID != proID {
		return false, nil
	}
	o.Status = models.OrderStatusCompleted
	o.Amount = amount
	return true, nil
}

func (m *mockOrderRepo) SetRating(_ context.Context, orderID uuid.UUID, rating int, feedback string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.Status != models.OrderStatusCompleted {
		return false, nil
	}
	o.Rating = rating
	o.Feedback = feedback
	return true, nil
}

func (m *mockOrderRepo) SumCompletedAmount(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, o := range m.orders {
		if o.Status == models.OrderStatusCompleted {
			sum += int64(o.Amount)
		}
	}
	return sum, nil
}

func (m *mockOrderRepo) CountActiveByAccount(_ context.Context, _ pgx.Tx, accountID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, o := range m.orders {
		if o.Status == models.OrderStatusCompleted {
			continue
		}
		if o.CustomerID == accountID || (o.ProID != nil && *o.ProID == accountID) {
			n++
		}
	}
	return n, nil
}

func (m *mockOrderRepo) get(id uuid.UUID) *models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.orders[id]
	return &cp
}

// --- transaction journal mock ---

type mockTxRepo struct {
	mu      sync.Mutex
	entries []*models.Transaction
}

func (m *mockTxRepo) CreateTx(_ context.Context, _ pgx.Tx, t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *mockTxRepo) List(_ context.Context) ([]*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Transaction, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		cp := *m.entries[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockTxRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
