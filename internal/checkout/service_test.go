package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"lunchbox-be/internal/cart"
	"lunchbox-be/internal/children"
	"lunchbox-be/internal/payment"
	"lunchbox-be/internal/pricing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateIntent(ctx context.Context, intent *Intent) error {
	args := m.Called(ctx, intent)
	return args.Error(0)
}

func (m *MockRepository) SetProcessorSession(ctx context.Context, intentID uuid.UUID, sessionID string) error {
	args := m.Called(ctx, intentID, sessionID)
	return args.Error(0)
}

func (m *MockRepository) GetIntent(ctx context.Context, intentID uuid.UUID) (*Intent, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Intent), args.Error(1)
}

func (m *MockRepository) MaterializeIntent(ctx context.Context, intentID uuid.UUID, paymentRef string) (MaterializeResult, error) {
	args := m.Called(ctx, intentID, paymentRef)
	return args.Get(0).(MaterializeResult), args.Error(1)
}

func (m *MockRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockChildrenRepository struct {
	mock.Mock
}

func (m *MockChildrenRepository) GetChild(ctx context.Context, childID uint) (*children.Child, error) {
	args := m.Called(ctx, childID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*children.Child), args.Error(1)
}

func (m *MockChildrenRepository) GetChildForParent(ctx context.Context, childID, parentID uint) (*children.Child, error) {
	args := m.Called(ctx, childID, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*children.Child), args.Error(1)
}

func (m *MockChildrenRepository) ListByParent(ctx context.Context, parentID uint) ([]*children.Child, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*children.Child), args.Error(1)
}

// ownedChildren answers every ownership lookup positively.
func ownedChildren() *MockChildrenRepository {
	m := new(MockChildrenRepository)
	m.On("GetChildForParent", mock.Anything, mock.Anything, mock.Anything).
		Return(&children.Child{ID: 7, ParentID: 1, Name: "Alex"}, nil)
	return m
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	args := m.Called(ctx, email, name)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, params payment.CheckoutParams) (*payment.Session, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Session), args.Error(1)
}

func (m *MockGateway) GetSessionStatus(ctx context.Context, sessionID string) (*payment.SessionStatus, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.SessionStatus), args.Error(1)
}

func (m *MockGateway) VerifySignature(payload []byte, signature string) error {
	args := m.Called(payload, signature)
	return args.Error(0)
}

// --- Tests ---

func testConfig() Config {
	return Config{
		Pricing:         pricing.Config{TaxRate: 0.09},
		MinChargeAmount: 0.50,
		IntentTTL:       24 * time.Hour,
	}
}

func testOrders() []OrderDay {
	return []OrderDay{
		{
			ChildID: 7,
			Date:    "2025-03-10",
			Lines: []cart.Line{
				{MenuItemID: "dumpling-1", MenuItemName: "Dumplings", Portion: cart.PortionFull, Quantity: 2, UnitPrice: 6.50},
			},
			ComputedTotal: 13.00,
		},
		{
			ChildID: 7,
			Date:    "2025-03-11",
			Lines: []cart.Line{
				{MenuItemID: "noodles-2", MenuItemName: "Noodles", Portion: cart.PortionFull, Quantity: 2, UnitPrice: 6.50},
			},
			ComputedTotal: 13.00,
		},
	}
}

func TestService_CreateCheckoutSession(t *testing.T) {
	ctx := context.Background()
	userID := uint(1)
	email := "parent@example.com"

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockGateway := new(MockGateway)
		svc := NewService(mockRepo, ownedChildren(), mockGateway, testConfig())

		// 1. Intent persisted OPEN with the server-side breakdown.
		mockRepo.On("CreateIntent", ctx, mock.MatchedBy(func(i *Intent) bool {
			return i.Status == IntentOpen &&
				i.UserID == userID &&
				i.Subtotal == 26.00 &&
				i.SalesTax == 2.34 &&
				i.TotalAmount == 28.34
		})).Return(nil)

		// 2. One summary line per order-day, intent id in the metadata.
		mockGateway.On("CreateCheckoutSession", ctx, mock.MatchedBy(func(p payment.CheckoutParams) bool {
			return len(p.Lines) == 2 &&
				p.Amount == 28.34 &&
				p.CustomerEmail == email &&
				p.Metadata["intent_id"] == p.ReferenceID
		})).Return(&payment.Session{ID: "cs_123", URL: "https://pay.example/cs_123"}, nil)

		mockRepo.On("SetProcessorSession", ctx, mock.AnythingOfType("uuid.UUID"), "cs_123").Return(nil)

		res, err := svc.CreateCheckoutSession(ctx, userID, email, testOrders())

		assert.NoError(t, err)
		assert.Equal(t, "cs_123", res.SessionID)
		assert.Equal(t, "https://pay.example/cs_123", res.RedirectURL)
		assert.Equal(t, 28.34, res.Breakdown.Total)
		mockRepo.AssertExpectations(t)
		mockGateway.AssertExpectations(t)
	})

	t.Run("EmptyCart", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockChildrenRepository), new(MockGateway), testConfig())

		_, err := svc.CreateCheckoutSession(ctx, userID, email, nil)
		assert.Equal(t, ErrEmptyCart, err)
	})

	t.Run("DayWithNoLines", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockChildrenRepository), new(MockGateway), testConfig())

		orders := []OrderDay{{ChildID: 7, Date: "2025-03-10", ComputedTotal: 0}}
		_, err := svc.CreateCheckoutSession(ctx, userID, email, orders)
		assert.Equal(t, ErrEmptyCart, err)
	})

	t.Run("InvalidDate", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockChildrenRepository), new(MockGateway), testConfig())

		orders := testOrders()
		orders[0].Date = "03/10/2025"
		_, err := svc.CreateCheckoutSession(ctx, userID, email, orders)
		assert.Equal(t, ErrInvalidDate, err)
	})

	t.Run("TotalMismatch", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, new(MockChildrenRepository), new(MockGateway), testConfig())

		// Client claims a lower total than the lines produce.
		orders := testOrders()
		orders[0].ComputedTotal = 1.00

		_, err := svc.CreateCheckoutSession(ctx, userID, email, orders)

		assert.Equal(t, ErrTotalMismatch, err)
		mockRepo.AssertNotCalled(t, "CreateIntent")
	})

	t.Run("NegativeUnitPrice", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockChildrenRepository), new(MockGateway), testConfig())

		orders := testOrders()
		orders[0].Lines[0].UnitPrice = -5

		_, err := svc.CreateCheckoutSession(ctx, userID, email, orders)
		assert.Equal(t, ErrTotalMismatch, err)
	})

	t.Run("BelowMinimum", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, ownedChildren(), new(MockGateway), testConfig())

		orders := []OrderDay{{
			ChildID: 7,
			Date:    "2025-03-10",
			Lines: []cart.Line{
				{MenuItemID: "cookie-3", Portion: cart.PortionFull, Quantity: 1, UnitPrice: 0.25},
			},
			ComputedTotal: 0.25,
		}}

		_, err := svc.CreateCheckoutSession(ctx, userID, email, orders)

		assert.Equal(t, ErrBelowMinimum, err)
		mockRepo.AssertNotCalled(t, "CreateIntent")
	})

	t.Run("ChildNotOwned", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockChildren := new(MockChildrenRepository)
		svc := NewService(mockRepo, mockChildren, new(MockGateway), testConfig())

		// Both order-days reference child 7, so ownership is checked once.
		mockChildren.On("GetChildForParent", ctx, uint(7), userID).
			Return(nil, children.ErrNotOwned)

		_, err := svc.CreateCheckoutSession(ctx, userID, email, testOrders())

		assert.Equal(t, children.ErrNotOwned, err)
		mockRepo.AssertNotCalled(t, "CreateIntent")
		mockChildren.AssertNumberOfCalls(t, "GetChildForParent", 1)
	})

	t.Run("GatewayError_IntentStaysOpen", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockGateway := new(MockGateway)
		svc := NewService(mockRepo, ownedChildren(), mockGateway, testConfig())

		mockRepo.On("CreateIntent", ctx, mock.AnythingOfType("*checkout.Intent")).Return(nil)
		mockGateway.On("CreateCheckoutSession", ctx, mock.Anything).
			Return(nil, errors.New("processor unavailable"))

		_, err := svc.CreateCheckoutSession(ctx, userID, email, testOrders())

		assert.Error(t, err)
		// The intent is never deleted or expired here; the sweeper owns that.
		mockRepo.AssertNotCalled(t, "SetProcessorSession")
	})

	t.Run("RepoError_CreateIntent", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockGateway := new(MockGateway)
		svc := NewService(mockRepo, ownedChildren(), mockGateway, testConfig())

		mockRepo.On("CreateIntent", ctx, mock.Anything).Return(errors.New("db error"))

		_, err := svc.CreateCheckoutSession(ctx, userID, email, testOrders())

		assert.Error(t, err)
		mockGateway.AssertNotCalled(t, "CreateCheckoutSession")
	})
}

func TestService_HandlePaymentConfirmed(t *testing.T) {
	ctx := context.Background()
	intentID := uuid.New()

	t.Run("Created", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, new(MockChildrenRepository), new(MockGateway), testConfig())

		mockRepo.On("MaterializeIntent", ctx, intentID, "pay_1").Return(MaterializeCreated, nil)

		res, err := svc.HandlePaymentConfirmed(ctx, intentID.String(), "pay_1")

		assert.NoError(t, err)
		assert.Equal(t, MaterializeCreated, res)
		mockRepo.AssertExpectations(t)
	})

	t.Run("AlreadyConsumed", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, new(MockChildrenRepository), new(MockGateway), testConfig())

		mockRepo.On("MaterializeIntent", ctx, intentID, "pay_1").Return(MaterializeAlreadyConsumed, nil)

		res, err := svc.HandlePaymentConfirmed(ctx, intentID.String(), "pay_1")

		assert.NoError(t, err)
		assert.Equal(t, MaterializeAlreadyConsumed, res)
	})

	t.Run("ExpiredAnomaly", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, new(MockChildrenRepository), new(MockGateway), testConfig())

		mockRepo.On("MaterializeIntent", ctx, intentID, "pay_1").Return(MaterializeExpiredAnomaly, nil)

		res, err := svc.HandlePaymentConfirmed(ctx, intentID.String(), "pay_1")

		assert.NoError(t, err)
		assert.Equal(t, MaterializeExpiredAnomaly, res)
	})

	t.Run("MalformedIntentID", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, new(MockChildrenRepository), new(MockGateway), testConfig())

		res, err := svc.HandlePaymentConfirmed(ctx, "not-a-uuid", "pay_1")

		assert.NoError(t, err)
		assert.Equal(t, MaterializeIntentNotFound, res)
		mockRepo.AssertNotCalled(t, "MaterializeIntent")
	})

	t.Run("RepoError", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, new(MockChildrenRepository), new(MockGateway), testConfig())

		mockRepo.On("MaterializeIntent", ctx, intentID, "pay_1").
			Return(MaterializeResult(0), errors.New("db error"))

		_, err := svc.HandlePaymentConfirmed(ctx, intentID.String(), "pay_1")
		assert.Error(t, err)
	})
}

func TestService_GetIntent(t *testing.T) {
	ctx := context.Background()
	intentID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, new(MockChildrenRepository), new(MockGateway), testConfig())

		mockRepo.On("GetIntent", ctx, intentID).Return(&Intent{ID: intentID, Status: IntentOpen}, nil)

		intent, err := svc.GetIntent(ctx, intentID.String())
		assert.NoError(t, err)
		assert.Equal(t, intentID, intent.ID)
	})

	t.Run("MalformedID", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockChildrenRepository), new(MockGateway), testConfig())

		_, err := svc.GetIntent(ctx, "nope")
		assert.Equal(t, ErrIntentNotFound, err)
	})
}

func TestService_ExpireStale(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := NewService(mockRepo, new(MockChildrenRepository), new(MockGateway), testConfig())

	mockRepo.On("ExpireStale", mock.Anything, mock.AnythingOfType("time.Time")).Return(int64(3), nil)

	n, err := svc.ExpireStale(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
