package order

import (
	"context"
	"time"

	"lunchbox-be/internal/cart"
	"lunchbox-be/internal/children"
	"lunchbox-be/internal/logger"
	"lunchbox-be/internal/menu"
	"lunchbox-be/internal/payment"
	"lunchbox-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	CreateOrder(ctx context.Context, parentID uint, input CreateOrderInput) (*Order, error)
	ListOrders(ctx context.Context, parentID uint, f Filter) ([]*Order, error)
	GroupedOrders(ctx context.Context, parentID uint) ([]WeekGroup, error)
	CheckMissingOrders(ctx context.Context, parentID, childID uint, weekDates []string) (*MissingOrdersResult, error)
	ConfirmPaymentSync(ctx context.Context, parentID uint, sessionID string) (int64, error)
	UpdateOrderStatus(ctx context.Context, orderID uint, status *OrderStatus, fulfillment *FulfillmentStatus) error
	ReorderToCart(ctx context.Context, parentID, orderID uint, store *cart.Store) error
}

type Config struct {
	// ReorderUseCurrentPrice re-snapshots reorder lines from the live
	// catalog instead of reusing the historical frozen price.
	ReorderUseCurrentPrice bool
}

type service struct {
	repo         Repository
	childrenRepo children.Repository
	menuRepo     menu.Repository
	gateway      payment.Gateway
	cfg          Config
}

func NewService(
	repo Repository,
	childrenRepo children.Repository,
	menuRepo menu.Repository,
	gateway payment.Gateway,
	cfg Config,
) Service {
	return &service{
		repo:         repo,
		childrenRepo: childrenRepo,
		menuRepo:     menuRepo,
		gateway:      gateway,
		cfg:          cfg,
	}
}

// CreateOrder is the direct/legacy path: one PENDING_PAYMENT order created at
// submission time, promoted to PAID by ConfirmPaymentSync. The canonical
// checkout path defers all order creation to the webhook reconciler.
func (s *service) CreateOrder(ctx context.Context, parentID uint, input CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.Uint("parent_id", parentID),
		zap.Uint("child_id", input.ChildID),
	)

	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	orderDate, err := utils.ParseDate(input.OrderDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	// Ownership check before anything is written.
	if _, err := s.childrenRepo.GetChildForParent(ctx, input.ChildID, parentID); err != nil {
		return nil, err
	}

	var (
		lines []OrderLine
		total float64
	)
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, ErrEmptyOrder
		}
		if item.Portion != cart.PortionFull && item.Portion != cart.PortionHalf {
			return nil, ErrInvalidPortion
		}

		m, err := s.menuRepo.GetItem(ctx, item.MenuItemID)
		if err != nil {
			return nil, err
		}

		price := m.PriceFor(item.Portion)
		lines = append(lines, OrderLine{
			MenuItemID:   m.ID,
			MenuItemName: m.Name,
			Quantity:     item.Quantity,
			Portion:      item.Portion,
			UnitPrice:    price,
		})
		total += price * float64(item.Quantity)
	}

	o := &Order{
		ExternalID:         uuid.New(),
		ParentID:           parentID,
		ChildID:            input.ChildID,
		OrderDate:          orderDate,
		TotalAmount:        utils.Round2(total),
		Status:             StatusPendingPayment,
		FulfillmentStatus:  FulfillmentPendingDelivery,
		ProcessorSessionID: input.PaymentSessionID,
		SpecialRequests:    input.SpecialRequests,
		Lines:              lines,
	}

	if err := s.repo.CreateOrderTx(ctx, o); err != nil {
		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	log.Info("order created",
		zap.Uint("order_id", o.ID),
		zap.Float64("total", o.TotalAmount),
	)

	return o, nil
}

func (s *service) ListOrders(ctx context.Context, parentID uint, f Filter) ([]*Order, error) {
	return s.repo.FetchOrders(ctx, parentID, f)
}

func (s *service) GroupedOrders(ctx context.Context, parentID uint) ([]WeekGroup, error) {
	orders, err := s.repo.FetchOrders(ctx, parentID, Filter{})
	if err != nil {
		return nil, err
	}
	return GroupOrders(orders), nil
}

func (s *service) CheckMissingOrders(ctx context.Context, parentID, childID uint, weekDates []string) (*MissingOrdersResult, error) {
	if _, err := s.childrenRepo.GetChildForParent(ctx, childID, parentID); err != nil {
		return nil, err
	}

	ordered, err := s.repo.DatesWithOrders(ctx, childID, weekDates)
	if err != nil {
		return nil, err
	}

	orderedSet := make(map[string]bool, len(ordered))
	for _, d := range ordered {
		orderedSet[d] = true
	}

	result := &MissingOrdersResult{
		MissingDates: []string{},
		OrderedDates: []string{},
	}
	// Preserve the requested ordering in both output lists.
	for _, d := range weekDates {
		if orderedSet[d] {
			result.OrderedDates = append(result.OrderedDates, d)
		} else {
			result.MissingDates = append(result.MissingDates, d)
		}
	}
	result.HasMissingOrders = len(result.MissingDates) > 0

	return result, nil
}

// ConfirmPaymentSync re-fetches the session status from the processor (never
// trusting a client-supplied status) and promotes the pre-created
// PENDING_PAYMENT orders for that session to PAID.
func (s *service) ConfirmPaymentSync(ctx context.Context, parentID uint, sessionID string) (int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ConfirmPaymentSync"),
		zap.String("session_id", sessionID),
	)

	status, err := s.gateway.GetSessionStatus(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	if status.Status != payment.SessionStatusPaid || status.PaymentRef == "" {
		return 0, ErrPaymentNotCompleted
	}

	n, err := s.repo.PromotePaidBySession(ctx, parentID, sessionID, status.PaymentRef)
	if err != nil {
		return 0, err
	}

	log.Info("orders promoted to paid", zap.Int64("count", n))
	return n, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, orderID uint, status *OrderStatus, fulfillment *FulfillmentStatus) error {
	if status == nil && fulfillment == nil {
		return ErrInvalidStatus
	}

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if status != nil {
		switch *status {
		case StatusPendingPayment, StatusPaid, StatusCancelled:
		default:
			return ErrInvalidStatus
		}
		// CANCELLED is terminal.
		if o.Status == StatusCancelled && *status != StatusCancelled {
			return ErrInvalidStatus
		}
		// An order can never be PAID without a processor payment reference.
		if *status == StatusPaid && o.ProcessorPaymentRef == nil {
			return ErrPaidWithoutPaymentRef
		}
	}

	if fulfillment != nil {
		switch *fulfillment {
		case FulfillmentPendingDelivery, FulfillmentDelivered:
		default:
			return ErrInvalidStatus
		}
	}

	return s.repo.UpdateStatus(ctx, orderID, status, fulfillment)
}

// ReorderToCart copies a past order's lines back into the cart at shifted
// dates: the original weekday offset is mapped onto the next selectable week.
// Durable order storage is never touched.
func (s *service) ReorderToCart(ctx context.Context, parentID, orderID uint, store *cart.Store) error {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if o.ParentID != parentID {
		return ErrUnauthorized
	}

	weekdayOffset := (int(o.OrderDate.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	targetDate := utils.FormatDate(utils.NextWeekStart(time.Now().UTC()).AddDate(0, 0, weekdayOffset))

	for _, line := range o.Lines {
		price := line.UnitPrice
		if s.cfg.ReorderUseCurrentPrice {
			m, err := s.menuRepo.GetItem(ctx, line.MenuItemID)
			if err != nil {
				return err
			}
			price = m.PriceFor(line.Portion)
		}

		store.AddLine(o.ChildID, targetDate, cart.MenuItemRef{
			ID:   line.MenuItemID,
			Name: line.MenuItemName,
		}, line.Portion, price)

		if line.Quantity > 1 {
			store.UpdateQuantity(o.ChildID, targetDate, line.MenuItemID, line.Portion, line.Quantity)
		}
	}

	return nil
}
