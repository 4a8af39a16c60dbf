package webhook

import (
	"io"
	"net/http"

	"lunchbox-be/internal/checkout"
	"lunchbox-be/internal/logger"
	"lunchbox-be/internal/payment"

	"go.uber.org/zap"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw payload.
const SignatureHeader = "X-Processor-Signature"

// Handler is the payment event reconciler's inbound edge. It acknowledges
// with 200 everything that was handled or deliberately ignored, and with a
// non-200 only when the processor should redeliver.
type Handler struct {
	checkoutSvc checkout.Service
	gateway     payment.Gateway
	repo        payment.Repository
}

func NewHandler(checkoutSvc checkout.Service, gateway payment.Gateway, repo payment.Repository) *Handler {
	return &Handler{
		checkoutSvc: checkoutSvc,
		gateway:     gateway,
		repo:        repo,
	}
}

func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(zap.String("handler", "payment_webhook"))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// 1. Verify the signature before anything is parsed. A mismatch is a
	// security event, never processed as if valid.
	if err := h.gateway.VerifySignature(body, r.Header.Get(SignatureHeader)); err != nil {
		log.Warn("webhook signature verification failed",
			zap.String("remote_addr", r.RemoteAddr),
		)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	// 2. Decode into the tagged event union.
	event, err := payment.ParseEvent(body)
	if err != nil {
		log.Warn("malformed webhook payload", zap.Error(err))
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	log = log.With(
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
	)

	var intentID string
	if event.Completed != nil {
		intentID = event.Completed.Metadata.IntentID
	}

	// 3. Record the delivery in the inbox. Only a duplicate whose first
	// delivery finished is an idempotent success; a redelivery after a failed
	// attempt falls through so materialization gets retried.
	entry, err := h.repo.SaveWebhookEvent(ctx, event.ID, event.Type, intentID, body)
	if err != nil {
		log.Error("failed to record webhook event", zap.Error(err))
		http.Error(w, "failed to record event", http.StatusInternalServerError)
		return
	}
	if entry.Duplicate {
		if entry.Processed {
			log.Info("duplicate webhook delivery acknowledged")
			writeOK(w)
			return
		}
		log.Info("redelivery of unfinished event, retrying")
	}

	// 4. Only a completed checkout with a paid status materializes orders;
	// everything else is acknowledged and ignored.
	if event.Completed == nil || event.Completed.Status != payment.SessionStatusPaid {
		_ = h.repo.MarkWebhookProcessed(ctx, entry.ID)
		log.Info("webhook event ignored")
		writeOK(w)
		return
	}

	// A paid event must carry the processor's payment reference; orders are
	// never marked PAID without one.
	if event.Completed.PaymentRef == "" {
		_ = h.repo.MarkWebhookFailed(ctx, entry.ID, "paid event without payment reference")
		log.Error("paid event missing payment reference")
		writeOK(w)
		return
	}

	result, err := h.checkoutSvc.HandlePaymentConfirmed(ctx, intentID, event.Completed.PaymentRef)
	if err != nil {
		// Materialization rolled back; non-200 so the processor retries.
		_ = h.repo.MarkWebhookFailed(ctx, entry.ID, err.Error())
		http.Error(w, "failed to process payment event", http.StatusInternalServerError)
		return
	}

	if result == checkout.MaterializeExpiredAnomaly {
		_ = h.repo.MarkWebhookFailed(ctx, entry.ID, "payment for expired intent")
		// Still acknowledged: redelivery storms cannot fix an expired intent.
		writeOK(w)
		return
	}

	_ = h.repo.MarkWebhookProcessed(ctx, entry.ID)
	writeOK(w)
}

func writeOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
