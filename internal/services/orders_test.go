package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/blinkedin/backend/internal/auth"
	"github.com/blinkedin/backend/internal/models"
)

func testLogger() *slog.Logger { return slog.Default() }

func proPrincipal(id uuid.UUID) auth.Principal {
	return auth.Principal{AccountID: id, Name: "Asha", Role: models.RoleProfessional, City: "Pune", Profession: "Plumber"}
}

func customerPrincipal(id uuid.UUID) auth.Principal {
	return auth.Principal{AccountID: id, Name: "Ravi", Role: models.RoleCustomer, City: "Pune"}
}

func pendingOrder(customerID uuid.UUID, mode models.PaymentMode) *models.Order {
	return &models.Order{
		ID:           uuid.New(),
		CustomerID:   customerID,
		CustomerName: "Ravi",
		Service:      "Plumber",
		City:         "Pune",
		Status:       models.OrderStatusPending,
		PaymentMode:  mode,
	}
}

func acceptedOrder(customerID, proID uuid.UUID, mode models.PaymentMode) *models.Order {
	o := pendingOrder(customerID, mode)
	o.Status = models.OrderStatusAccepted
	o.ProID = &proID
	return o
}

func newTestOrders(repo *mockOrderRepo, accounts *mockAccountRepo) (*Orders, *mockTxRepo) {
	txRepo := &mockTxRepo{}
	wallet := NewWallet(accounts, txRepo)
	return NewOrders(mockPool{}, repo, wallet, testLogger()), txRepo
}

func TestAcceptPendingOrder(t *testing.T) {
	customerID, proID := uuid.New(), uuid.New()
	order := pendingOrder(customerID, models.PaymentCash)
	repo := newMockOrderRepo(order)
	svc, _ := newTestOrders(repo, newMockAccountRepo())

	got, err := svc.Accept(context.Background(), proPrincipal(proID), order.ID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if got.Status != models.OrderStatusAccepted {
		t.Errorf("status = %s, want accepted", got.Status)
	}
	if got.ProID == nil || *got.ProID != proID {
		t.Errorf("pro_id = %v, want %s", got.ProID, proID)
	}
}

func TestAcceptRequiresProfessional(t *testing.T) {
	order := pendingOrder(uuid.New(), models.PaymentCash)
	svc, _ := newTestOrders(newMockOrderRepo(order), newMockAccountRepo())

	_, err := svc.Accept(context.Background(), customerPrincipal(uuid.New()), order.ID)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestAcceptMissingOrder(t *testing.T) {
	svc, _ := newTestOrders(newMockOrderRepo(), newMockAccountRepo())

	_, err := svc.Accept(context.Background(), proPrincipal(uuid.New()), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAcceptNonPendingOrder(t *testing.T) {
	order := acceptedOrder(uuid.New(), uuid.New(), models.PaymentCash)
	svc, _ := newTestOrders(newMockOrderRepo(order), newMockAccountRepo())

	_, err := svc.Accept(context.Background(), proPrincipal(uuid.New()), order.ID)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
}

// Exactly one of N concurrent accepts on the same pending order wins; the
// losers all observe an invalid transition and the order keeps the winner's
// assignment.
func TestAcceptConcurrentSingleWinner(t *testing.T) {
	order := pendingOrder(uuid.New(), models.PaymentCash)
	repo := newMockOrderRepo(order)
	svc, _ := newTestOrders(repo, newMockAccountRepo())

	const n = 32
	pros := make([]uuid.UUID, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		pros[i] = uuid.New()
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Accept(context.Background(), proPrincipal(pros[i]), order.ID)
		}(i)
	}
	wg.Wait()

	winners := 0
	var winner uuid.UUID
	for i, err := range errs {
		switch {
		case err == nil:
			winners++
			winner = pros[i]
		case errors.Is(err, ErrInvalidTransition):
		default:
			t.Fatalf("accept %d: unexpected error %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}
	got := repo.get(order.ID)
	if got.Status != models.OrderStatusAccepted || got.ProID == nil || *got.ProID != winner {
		t.Errorf("order = %s/%v, want accepted/%s", got.Status, got.ProID, winner)
	}
}

func TestCompleteWalletOrderTransfersFunds(t *testing.T) {
	customerID, proID := uuid.New(), uuid.New()
	accounts := newMockAccountRepo(
		&models.Account{ID: customerID, Role: models.RoleCustomer, WalletBalance: 1000},
		&models.Account{ID: proID, Role: models.RoleProfessional, WalletBalance: 1000},
	)
	order := acceptedOrder(customerID, proID, models.PaymentWallet)
	repo := newMockOrderRepo(order)
	svc, txRepo := newTestOrders(repo, accounts)

	got, err := svc.Complete(context.Background(), proPrincipal(proID), order.ID, 300)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Status != models.OrderStatusCompleted || got.Amount != 300 {
		t.Errorf("order = %s/%d, want completed/300", got.Status, got.Amount)
	}
	if b := accounts.balance(customerID); b != 700 {
		t.Errorf("customer balance = %d, want 700", b)
	}
	if b := accounts.balance(proID); b != 1300 {
		t.Errorf("pro balance = %d, want 1300", b)
	}
	if txRepo.count() != 1 {
		t.Errorf("journal entries = %d, want 1", txRepo.count())
	}
}

func TestCompleteCashOrderSkipsWallet(t *testing.T) {
	customerID, proID := uuid.New(), uuid.New()
	accounts := newMockAccountRepo(
		&models.Account{ID: customerID, Role: models.RoleCustomer, WalletBalance: 50},
		&models.Account{ID: proID, Role: models.RoleProfessional, WalletBalance: 50},
	)
	order := acceptedOrder(customerID, proID, models.PaymentCash)
	svc, txRepo := newTestOrders(newMockOrderRepo(order), accounts)

	got, err := svc.Complete(context.Background(), proPrincipal(proID), order.ID, 900)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Status != models.OrderStatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
	if b := accounts.balance(customerID); b != 50 {
		t.Errorf("customer balance moved on cash order: %d", b)
	}
	if txRepo.count() != 0 {
		t.Errorf("journal entries = %d, want 0 for cash", txRepo.count())
	}
}

func TestCompleteInsufficientFundsKeepsOrderAccepted(t *testing.T) {
	customerID, proID := uuid.New(), uuid.New()
	accounts := newMockAccountRepo(
		&models.Account{ID: customerID, Role: models.RoleCustomer, WalletBalance: 100},
		&models.Account{ID: proID, Role: models.RoleProfessional, WalletBalance: 0},
	)
	order := acceptedOrder(customerID, proID, models.PaymentWallet)
	repo := newMockOrderRepo(order)
	svc, txRepo := newTestOrders(repo, accounts)

	_, err := svc.Complete(context.Background(), proPrincipal(proID), order.ID, 500)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if got := repo.get(order.ID); got.Status != models.OrderStatusAccepted {
		t.Errorf("status = %s, want accepted after failed settlement", got.Status)
	}
	if b := accounts.balance(customerID); b != 100 {
		t.Errorf("customer balance = %d, want 100 untouched", b)
	}
	if txRepo.count() != 0 {
		t.Errorf("journal entries = %d, want 0", txRepo.count())
	}
}

func TestCompleteRejectsWrongProfessional(t *testing.T) {
	customerID, proID := uuid.New(), uuid.New()
	order := acceptedOrder(customerID, proID, models.PaymentCash)
	svc, _ := newTestOrders(newMockOrderRepo(order), newMockAccountRepo())

	_, err := svc.Complete(context.Background(), proPrincipal(uuid.New()), order.ID, 100)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestCompleteRejectsPendingOrder(t *testing.T) {
	order := pendingOrder(uuid.New(), models.PaymentCash)
	svc, _ := newTestOrders(newMockOrderRepo(order), newMockAccountRepo())

	_, err := svc.Complete(context.Background(), proPrincipal(uuid.New()), order.ID, 100)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestCompleteRejectsCompletedOrder(t *testing.T) {
	proID := uuid.New()
	order := acceptedOrder(uuid.New(), proID, models.PaymentCash)
	order.Status = models.OrderStatusCompleted
	svc, _ := newTestOrders(newMockOrderRepo(order), newMockAccountRepo())

	_, err := svc.Complete(context.Background(), proPrincipal(proID), order.ID, 100)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestCompleteRejectsNonPositiveAmount(t *testing.T) {
	proID := uuid.New()
	order := acceptedOrder(uuid.New(), proID, models.PaymentWallet)
	svc, _ := newTestOrders(newMockOrderRepo(order), newMockAccountRepo())

	for _, amount := range []int{0, -5} {
		if _, err := svc.Complete(context.Background(), proPrincipal(proID), order.ID, amount); !errors.Is(err, ErrValidation) {
			t.Errorf("amount %d: err = %v, want ErrValidation", amount, err)
		}
	}
}

func TestRateCompletedOrder(t *testing.T) {
	customerID, proID := uuid.New(), uuid.New()
	order := acceptedOrder(customerID, proID, models.PaymentCash)
	order.Status = models.OrderStatusCompleted
	repo := newMockOrderRepo(order)
	svc, _ := newTestOrders(repo, newMockAccountRepo())

	if err := svc.Rate(context.Background(), customerPrincipal(customerID), order.ID, 4, "quick work"); err != nil {
		t.Fatalf("Rate: %v", err)
	}
	got := repo.get(order.ID)
	if got.Rating != 4 || got.Feedback != "quick work" {
		t.Errorf("rating = %d %q, want 4 %q", got.Rating, got.Feedback, "quick work")
	}

	// Last write wins.
	if err := svc.Rate(context.Background(), customerPrincipal(customerID), order.ID, 2, "revised"); err != nil {
		t.Fatalf("Rate again: %v", err)
	}
	if got := repo.get(order.ID); got.Rating != 2 {
		t.Errorf("rating = %d, want 2 after rewrite", got.Rating)
	}
}

func TestRateClampsToRange(t *testing.T) {
	customerID := uuid.New()
	order := acceptedOrder(customerID, uuid.New(), models.PaymentCash)
	order.Status = models.OrderStatusCompleted
	repo := newMockOrderRepo(order)
	svc, _ := newTestOrders(repo, newMockAccountRepo())

	if err := svc.Rate(context.Background(), customerPrincipal(customerID), order.ID, 99, ""); err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if got := repo.get(order.ID); got.Rating != 5 {
		t.Errorf("rating = %d, want clamp to 5", got.Rating)
	}
	if err := svc.Rate(context.Background(), customerPrincipal(customerID), order.ID, -3, ""); err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if got := repo.get(order.ID); got.Rating != 1 {
		t.Errorf("rating = %d, want clamp to 1", got.Rating)
	}
}

func TestRateGuards(t *testing.T) {
	customerID := uuid.New()
	order := acceptedOrder(customerID, uuid.New(), models.PaymentCash)
	svc, _ := newTestOrders(newMockOrderRepo(order), newMockAccountRepo())

	if err := svc.Rate(context.Background(), customerPrincipal(customerID), order.ID, 3, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("rate accepted order: err = %v, want ErrInvalidTransition", err)
	}
	if err := svc.Rate(context.Background(), customerPrincipal(uuid.New()), order.ID, 3, ""); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("rate by stranger: err = %v, want ErrUnauthorized", err)
	}
	if err := svc.Rate(context.Background(), customerPrincipal(customerID), uuid.New(), 3, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("rate missing order: err = %v, want ErrNotFound", err)
	}
}
