package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cia-labs/nischte-app/internal/handoff"
	"github.com/cia-labs/nischte-app/internal/platform"
	"github.com/cia-labs/nischte-app/internal/pricing"
	"github.com/cia-labs/nischte-app/pkg/config"
	pkgerrors "github.com/cia-labs/nischte-app/pkg/errors"
	"github.com/cia-labs/nischte-app/pkg/logger"
	"github.com/cia-labs/nischte-app/pkg/metrics"
)

// FailureRedirectPath is where the client lands when reconciliation cannot
// complete.
const FailureRedirectPath = "/payment/failure"

// Service settles a gateway callback against the parked checkout: validate
// the payment, create the order from the parked summary, clean the mailbox
// and notify the shop owner. Each transaction settles at most once.
type Service interface {
	Reconcile(ctx context.Context, token, userID string) (*Result, error)
}

// Result is a successful settlement.
type Result struct {
	TransactionID string `json:"transactionId"`
	OrderUserID   string `json:"orderUserId"`
	RedirectPath  string `json:"redirectPath"`
}

// Platform is the slice of the platform client reconciliation needs.
type Platform interface {
	ValidatePayment(ctx context.Context, token, transactionID string) error
	CreateOrder(ctx context.Context, token string, summary any, transactionID string) (*platform.CreatedOrder, error)
	GetShop(ctx context.Context, token, shopID string) (*platform.Shop, error)
	GetDeviceToken(ctx context.Context, token, userID string) (string, error)
	SendNotification(ctx context.Context, token, deviceToken, title, body string) error
}

// GuardStore is the redis slice backing the cross-instance run-once guard.
type GuardStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	ReconcileGuardKey(transactionID string) string
}

// CartCleaner empties the session cart once its items turned into an order.
type CartCleaner interface {
	Clear(ctx context.Context, userID string) error
}

type service struct {
	mailbox  handoff.Mailbox
	platform Platform
	guard    GuardStore
	carts    CartCleaner
	latch    *Latch
	cfg      config.CheckoutConfig
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the reconciliation saga.
func NewService(mailbox handoff.Mailbox, backend Platform, guard GuardStore, carts CartCleaner, cfg config.CheckoutConfig, checkoutMetrics *metrics.CheckoutMetrics, logg *logger.Logger) (Service, error) {
	if mailbox == nil || backend == nil || guard == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "reconciliation requires mailbox, platform and guard dependencies")
	}
	return &service{
		mailbox:  mailbox,
		platform: backend,
		guard:    guard,
		carts:    carts,
		latch:    NewLatch(),
		cfg:      cfg,
		metrics:  checkoutMetrics,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) Reconcile(ctx context.Context, token, userID string) (*Result, error) {
	started := s.now()

	record, err := s.mailbox.GetPaymentHandoff(ctx, userID)
	if err != nil {
		return s.fail(ctx, started, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load payment hand-off"))
	}
	if record == nil {
		s.metrics.ObserveReconciliation("missing", s.now().Sub(started))
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment information not found")
	}

	transactionID := record.TransactionID
	if s.logg != nil {
		ctx = s.logg.WithTransactionID(ctx, transactionID)
	}

	if !s.latch.Begin(transactionID) {
		s.metrics.ObserveReconciliation("replay", s.now().Sub(started))
		return nil, pkgerrors.New(pkgerrors.CodeIdempotency, "payment is already being processed")
	}

	acquired, err := s.guard.SetNX(ctx, s.guard.ReconcileGuardKey(transactionID), "1", s.cfg.HandoffTTL)
	if err != nil {
		s.latch.Forget(transactionID)
		return s.fail(ctx, started, transactionID, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to acquire reconciliation guard"))
	}
	if !acquired {
		s.latch.Complete(transactionID)
		s.metrics.ObserveReconciliation("replay", s.now().Sub(started))
		return nil, pkgerrors.New(pkgerrors.CodeIdempotency, "payment has already been processed")
	}

	// Staleness is decided before talking to the gateway so an expired
	// hand-off never turns into an order.
	if s.now().Sub(record.CreatedAt()) > s.cfg.HandoffTTL {
		return s.abandon(ctx, started, userID, transactionID,
			pkgerrors.New(pkgerrors.CodeStateConflict, "payment session expired"))
	}

	if err := s.platform.ValidatePayment(ctx, token, transactionID); err != nil {
		return s.abandon(ctx, started, userID, transactionID, err)
	}

	summary, err := s.mailbox.GetOrderSummary(ctx, userID)
	if err != nil {
		return s.abandon(ctx, started, userID, transactionID,
			pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load order summary"))
	}
	if summary == nil {
		return s.abandon(ctx, started, userID, transactionID,
			pkgerrors.New(pkgerrors.CodeNotFound, "order summary not found"))
	}

	order, err := s.platform.CreateOrder(ctx, token, summary, transactionID)
	if err != nil {
		return s.abandon(ctx, started, userID, transactionID, err)
	}

	s.latch.Complete(transactionID)
	s.cleanup(ctx, userID, true)
	if s.carts != nil {
		if err := s.carts.Clear(ctx, userID); err != nil && s.logg != nil {
			s.logg.Error(ctx, "reconcile.cart_clear_failed", err)
		}
	}
	s.notifyOwner(ctx, token, order, summary)

	s.metrics.ObserveReconciliation("success", s.now().Sub(started))
	if s.logg != nil {
		s.logg.Info(ctx, "reconcile.settled")
	}
	return &Result{
		TransactionID: transactionID,
		OrderUserID:   order.UserID,
		RedirectPath:  "/" + order.UserID + "/order",
	}, nil
}

// abandon handles terminal failures past the guard: the hand-off is consumed
// so the same callback cannot loop, the summary stays for support follow-up.
func (s *service) abandon(ctx context.Context, started time.Time, userID, transactionID string, err error) (*Result, error) {
	s.cleanup(ctx, userID, false)
	s.latch.Forget(transactionID)
	return s.fail(ctx, started, transactionID, err)
}

func (s *service) fail(ctx context.Context, started time.Time, transactionID string, err error) (*Result, error) {
	s.metrics.ObserveReconciliation("failure", s.now().Sub(started))
	if s.logg != nil {
		s.logg.Error(ctx, "reconcile.failed", err)
	}
	return nil, err
}

func (s *service) cleanup(ctx context.Context, userID string, withSummary bool) {
	if err := s.mailbox.DeletePaymentHandoff(ctx, userID); err != nil && s.logg != nil {
		s.logg.Error(ctx, "reconcile.handoff_cleanup_failed", err)
	}
	if !withSummary {
		return
	}
	if err := s.mailbox.DeleteOrderSummary(ctx, userID); err != nil && s.logg != nil {
		s.logg.Error(ctx, "reconcile.summary_cleanup_failed", err)
	}
}

// notifyOwner pushes a new-order notification to the shop owner's device.
// Every step is best effort; a missing token or a failed push never touches
// the settlement outcome.
func (s *service) notifyOwner(ctx context.Context, token string, order *platform.CreatedOrder, summary *pricing.OrderSummary) {
	if order == nil || len(order.Items) == 0 {
		return
	}

	shop, err := s.platform.GetShop(ctx, token, order.Items[0].ShopID)
	if err != nil || shop == nil || shop.OwnerID == "" {
		s.logNotifySkip(ctx, "shop lookup", err)
		return
	}

	deviceToken, err := s.platform.GetDeviceToken(ctx, token, shop.OwnerID)
	if err != nil {
		s.logNotifySkip(ctx, "device token lookup", err)
		return
	}
	if deviceToken == "" {
		return
	}

	if err := s.platform.SendNotification(ctx, token, deviceToken, "New Order Received", orderNotificationBody(summary)); err != nil {
		s.logNotifySkip(ctx, "push", err)
	}
}

func (s *service) logNotifySkip(ctx context.Context, stage string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(ctx, "reconcile.notify_skipped "+stage, err)
}

func orderNotificationBody(summary *pricing.OrderSummary) string {
	lines := make([]string, 0, len(summary.Items))
	for _, item := range summary.Items {
		lines = append(lines, fmt.Sprintf("%s (x%d)", item.ItemName, item.Quantity))
	}
	return fmt.Sprintf("You have a new order: %s. Total: ₹%s", strings.Join(lines, ", "), summary.CartTotal.String())
}
