package checkout

import (
	"context"
	"fmt"
	"math"
	"time"

	"lunchbox-be/internal/children"
	"lunchbox-be/internal/logger"
	"lunchbox-be/internal/payment"
	"lunchbox-be/internal/pricing"
	"lunchbox-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// totalTolerance absorbs float representation noise when comparing a
// client-submitted total against the recomputed one. Anything beyond half a
// cent is tampering or a client bug.
const totalTolerance = 0.005

type Service interface {
	CreateCheckoutSession(ctx context.Context, userID uint, userEmail string, orders []OrderDay) (*CheckoutResult, error)
	HandlePaymentConfirmed(ctx context.Context, intentID string, paymentRef string) (MaterializeResult, error)
	GetIntent(ctx context.Context, intentID string) (*Intent, error)
	ExpireStale(ctx context.Context) (int64, error)
}

type Config struct {
	Pricing         pricing.Config
	MinChargeAmount float64
	IntentTTL       time.Duration
}

type service struct {
	repo         Repository
	childrenRepo children.Repository
	gateway      payment.Gateway
	cfg          Config
}

func NewService(repo Repository, childrenRepo children.Repository, gateway payment.Gateway, cfg Config) Service {
	return &service{
		repo:         repo,
		childrenRepo: childrenRepo,
		gateway:      gateway,
		cfg:          cfg,
	}
}

func (s *service) CreateCheckoutSession(
	ctx context.Context,
	userID uint,
	userEmail string,
	orders []OrderDay,
) (*CheckoutResult, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateCheckoutSession"),
		zap.Uint("user_id", userID),
		zap.Int("day_count", len(orders)),
	)

	log.Info("create checkout session started")

	// 1. Reject empty submissions.
	if len(orders) == 0 {
		return nil, ErrEmptyCart
	}

	// 2. Recompute each day's total from its lines; the client-sent total is
	// never trusted.
	var subtotal float64
	for i, day := range orders {
		if len(day.Lines) == 0 {
			return nil, ErrEmptyCart
		}
		if _, err := utils.ParseDate(day.Date); err != nil {
			return nil, ErrInvalidDate
		}

		var dayTotal float64
		for _, line := range day.Lines {
			if line.Quantity < 1 || line.UnitPrice < 0 {
				return nil, ErrTotalMismatch
			}
			dayTotal += line.UnitPrice * float64(line.Quantity)
		}
		dayTotal = utils.Round2(dayTotal)

		if math.Abs(dayTotal-day.ComputedTotal) > totalTolerance {
			log.Warn("order total mismatch",
				zap.Int("index", i),
				zap.Float64("claimed", day.ComputedTotal),
				zap.Float64("computed", dayTotal),
			)
			return nil, ErrTotalMismatch
		}

		subtotal += dayTotal
	}
	subtotal = utils.Round2(subtotal)

	// 3. Every child in the submission must belong to the caller; otherwise a
	// parent could pay orders into another parent's account.
	checked := make(map[uint]struct{}, len(orders))
	for _, day := range orders {
		if _, ok := checked[day.ChildID]; ok {
			continue
		}
		checked[day.ChildID] = struct{}{}

		if _, err := s.childrenRepo.GetChildForParent(ctx, day.ChildID, userID); err != nil {
			log.Warn("checkout rejected for child not owned by caller",
				zap.Uint("child_id", day.ChildID),
				zap.Error(err),
			)
			return nil, err
		}
	}

	breakdown, err := pricing.ComputeBreakdown(subtotal, s.cfg.Pricing)
	if err != nil {
		return nil, err
	}

	// 4. Processor minimum chargeable amount.
	if breakdown.Total < s.cfg.MinChargeAmount {
		return nil, ErrBelowMinimum
	}

	// 5. Persist the intent before the processor is contacted. No order rows
	// exist until payment is confirmed.
	now := time.Now().UTC()
	intent := &Intent{
		ID:           uuid.New(),
		UserID:       userID,
		Status:       IntentOpen,
		OrdersData:   orders,
		Subtotal:     breakdown.Subtotal,
		SalesTax:     breakdown.SalesTax,
		ServiceFee:   breakdown.ServiceFee,
		ProcessorFee: breakdown.ProcessorFee,
		TotalAmount:  breakdown.Total,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.cfg.IntentTTL),
	}

	if err := s.repo.CreateIntent(ctx, intent); err != nil {
		log.Error("failed to persist checkout intent", zap.Error(err))
		return nil, err
	}

	log = log.With(zap.String("intent_id", intent.ID.String()))

	// 6. One synthetic summary line per order-day keeps the request bounded.
	lines := make([]payment.SummaryLine, 0, len(orders))
	for _, day := range orders {
		lines = append(lines, payment.SummaryLine{
			Description: fmt.Sprintf("Meals for %s", day.Date),
			Amount:      day.ComputedTotal,
		})
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutParams{
		ReferenceID:   intent.ID.String(),
		CustomerEmail: userEmail,
		Amount:        breakdown.Total,
		Lines:         lines,
		Metadata: map[string]string{
			"intent_id": intent.ID.String(),
		},
	})
	if err != nil {
		// The intent stays OPEN: retryable by the caller, or swept to
		// EXPIRED by the cleanup job.
		log.Error("processor session creation failed", zap.Error(err))
		return nil, err
	}

	if err := s.repo.SetProcessorSession(ctx, intent.ID, session.ID); err != nil {
		log.Error("failed to store processor session id", zap.Error(err))
		return nil, err
	}

	log.Info("checkout session created",
		zap.String("processor_session_id", session.ID),
		zap.Float64("total", breakdown.Total),
	)

	return &CheckoutResult{
		IntentID:    intent.ID,
		SessionID:   session.ID,
		RedirectURL: session.URL,
		Breakdown:   breakdown,
	}, nil
}

// HandlePaymentConfirmed materializes the orders of a paid intent, exactly
// once. Every non-error result maps to a 200 acknowledgment upstream; only
// infrastructure failures bubble up to force redelivery.
func (s *service) HandlePaymentConfirmed(
	ctx context.Context,
	intentID string,
	paymentRef string,
) (MaterializeResult, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "HandlePaymentConfirmed"),
		zap.String("intent_id", intentID),
	)

	id, err := uuid.Parse(intentID)
	if err != nil {
		log.Warn("payment confirmed with malformed intent id")
		return MaterializeIntentNotFound, nil
	}

	result, err := s.repo.MaterializeIntent(ctx, id, paymentRef)
	if err != nil {
		log.Error("materialization failed, intent left open for retry", zap.Error(err))
		return 0, err
	}

	switch result {
	case MaterializeCreated:
		log.Info("orders materialized", zap.String("payment_ref", paymentRef))
	case MaterializeAlreadyConsumed:
		log.Info("duplicate payment confirmation ignored")
	case MaterializeIntentNotFound:
		log.Warn("payment confirmed for unknown intent")
	case MaterializeExpiredAnomaly:
		log.Error("payment confirmed for expired intent, manual reconciliation required",
			zap.String("payment_ref", paymentRef),
		)
	}

	return result, nil
}

func (s *service) GetIntent(ctx context.Context, intentID string) (*Intent, error) {
	id, err := uuid.Parse(intentID)
	if err != nil {
		return nil, ErrIntentNotFound
	}
	return s.repo.GetIntent(ctx, id)
}

func (s *service) ExpireStale(ctx context.Context) (int64, error) {
	return s.repo.ExpireStale(ctx, time.Now().UTC())
}
