package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cia-labs/nischte-app/internal/cart"
	"github.com/cia-labs/nischte-app/internal/handoff"
	"github.com/cia-labs/nischte-app/internal/offers"
	"github.com/cia-labs/nischte-app/internal/platform"
	"github.com/cia-labs/nischte-app/internal/pricing"
	"github.com/cia-labs/nischte-app/pkg/config"
	pkgerrors "github.com/cia-labs/nischte-app/pkg/errors"
	"github.com/cia-labs/nischte-app/pkg/logger"
	"github.com/cia-labs/nischte-app/pkg/metrics"
)

// Service turns the current cart session into a payment hand-off: price the
// cart, park the order summary, open a gateway payment session and park the
// hand-off record next to it. The order itself is only created later, when
// the gateway calls back and reconciliation picks both slots up.
type Service interface {
	Execute(ctx context.Context, token, userID string) (*Result, error)
}

// Result is the checkout outcome handed to the client. RedirectURL always
// carries a scheme.
type Result struct {
	TransactionID string               `json:"transactionId"`
	RedirectURL   string               `json:"redirectUrl"`
	Summary       pricing.OrderSummary `json:"summary"`
	OfferWarning  string               `json:"offerWarning,omitempty"`
}

// PaymentGateway is the slice of the platform client checkout needs.
type PaymentGateway interface {
	InitiatePayment(ctx context.Context, token string, amount decimal.Decimal, now time.Time) (*platform.PaymentSession, error)
}

type service struct {
	carts   cart.Service
	offers  offers.Service
	gateway PaymentGateway
	mailbox handoff.Mailbox
	cfg     config.CheckoutConfig
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService wires the checkout orchestrator.
func NewService(carts cart.Service, resolver offers.Service, gateway PaymentGateway, mailbox handoff.Mailbox, cfg config.CheckoutConfig, checkoutMetrics *metrics.CheckoutMetrics, logg *logger.Logger) (Service, error) {
	if carts == nil || resolver == nil || gateway == nil || mailbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "checkout requires cart, offer, gateway and mailbox dependencies")
	}
	return &service{
		carts:   carts,
		offers:  resolver,
		gateway: gateway,
		mailbox: mailbox,
		cfg:     cfg,
		metrics: checkoutMetrics,
		logg:    logg,
		now:     time.Now,
	}, nil
}

func (s *service) Execute(ctx context.Context, token, userID string) (*Result, error) {
	session, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load cart session")
	}
	if len(session.State.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	resolution := s.offers.Resolve(ctx, token, session.State.Items)
	summary := pricing.BuildOrderSummary(session.State.Items, session.Selected, resolution.Offers, userID)

	if err := s.mailbox.PutOrderSummary(ctx, userID, summary, s.cfg.HandoffTTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to persist order summary")
	}

	paymentSession, err := s.gateway.InitiatePayment(ctx, token, summary.CartTotal, s.now())
	if err != nil {
		s.cleanupSummary(ctx, userID)
		s.metrics.IncInitiated("failure")
		return nil, err
	}
	if paymentSession.MerchantTransactionID == "" {
		s.cleanupSummary(ctx, userID)
		s.metrics.IncInitiated("failure")
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment session is missing a transaction id")
	}

	record := handoff.PaymentHandoff{
		TransactionID: paymentSession.MerchantTransactionID,
		PaymentData:   paymentSession.Data,
		Timestamp:     s.now().UnixMilli(),
	}
	if err := s.mailbox.PutPaymentHandoff(ctx, userID, record, s.cfg.HandoffTTL); err != nil {
		s.cleanupSummary(ctx, userID)
		s.metrics.IncInitiated("failure")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to persist payment hand-off")
	}

	s.metrics.IncInitiated("success")
	if s.logg != nil {
		ctx = s.logg.WithTransactionID(ctx, record.TransactionID)
		s.logg.Info(ctx, "checkout.initiated")
	}

	return &Result{
		TransactionID: record.TransactionID,
		RedirectURL:   normalizeRedirectURL(paymentSession.RedirectURL),
		Summary:       summary,
		OfferWarning:  resolution.Warning,
	}, nil
}

// cleanupSummary rolls the parked summary back after a failed initiation so
// a later gateway callback cannot reconcile against a dead checkout.
func (s *service) cleanupSummary(ctx context.Context, userID string) {
	if err := s.mailbox.DeleteOrderSummary(ctx, userID); err != nil && s.logg != nil {
		s.logg.Error(ctx, "checkout.summary_cleanup_failed", err)
	}
}

// normalizeRedirectURL guarantees a scheme on gateway redirect targets; some
// gateways return bare hosts.
func normalizeRedirectURL(raw string) string {
	if raw == "" {
		return raw
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}
