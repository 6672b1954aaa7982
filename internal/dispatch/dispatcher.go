// Package dispatch sends messages through the telephony bridge, wrapping
// native failures into the domain error taxonomy and feeding the audit
// trail without ever blocking on it.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tailor-sms-dispatch/internal/domain"
	"tailor-sms-dispatch/internal/phone"
	"tailor-sms-dispatch/internal/ports"
	"tailor-sms-dispatch/internal/simdetect"
)

const (
	// defaultSendTimeout bounds the native send call. The bridge gives no
	// completion guarantee, and an unbounded call would hang a batch at
	// that item.
	defaultSendTimeout = 15 * time.Second

	auditTimeout = 5 * time.Second
)

// Dispatcher sends one message to one recipient via a specific SIM slot.
type Dispatcher struct {
	detector    *simdetect.Detector
	sender      ports.SmsSender
	audit       ports.AuditSink
	sendTimeout time.Duration
	log         *slog.Logger
}

// Option tweaks a Dispatcher.
type Option func(*Dispatcher)

// WithSendTimeout overrides the per-send native call timeout.
func WithSendTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.sendTimeout = d
		}
	}
}

// New wires a Dispatcher. audit may be nil when no trail is configured.
func New(detector *simdetect.Detector, sender ports.SmsSender, audit ports.AuditSink, log *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		detector:    detector,
		sender:      sender,
		audit:       audit,
		sendTimeout: defaultSendTimeout,
		log:         log,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Send dispatches one message. The returned error classifies the failure
// (domain.ErrPermissionDenied, ErrModuleUnavailable, ErrInvalidInput,
// ErrNativeSend); the SendResult mirrors it so batch callers can use the
// result directly. Every attempt that reaches the native layer is audited,
// success or not, and audit failures never propagate.
func (d *Dispatcher) Send(ctx context.Context, req domain.SendRequest) (domain.SendResult, error) {
	if err := d.detector.EnsureAvailability(ctx); err != nil {
		return domain.NewSendFailure("", err), err
	}

	if strings.TrimSpace(req.RecipientPhone) == "" {
		err := fmt.Errorf("%w: recipient phone is blank", domain.ErrInvalidInput)
		return domain.NewSendFailure("", err), err
	}
	if strings.TrimSpace(req.MessageBody) == "" {
		err := fmt.Errorf("%w: message body is blank", domain.ErrInvalidInput)
		return domain.NewSendFailure("", err), err
	}

	normalized := phone.Normalize(req.RecipientPhone)
	if normalized == "" {
		err := fmt.Errorf("%w: recipient phone has no digits", domain.ErrInvalidInput)
		return domain.NewSendFailure("", err), err
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	if err := d.sender.SendSms(sendCtx, normalized, req.MessageBody, req.SimID); err != nil {
		wrapped := fmt.Errorf("%w: %v", domain.ErrNativeSend, err)
		d.recordAudit(req, normalized, domain.AuditStatusFailed)
		return domain.NewSendFailure(normalized, wrapped), wrapped
	}

	d.recordAudit(req, normalized, domain.AuditStatusSent)
	d.log.Info("sms sent", "customer_id", req.CustomerID, "sim_slot", req.SimID)
	return domain.NewSendSuccess(normalized), nil
}

// recordAudit fires the audit call on a detached goroutine. The spawning
// request may be long gone before the sink answers, so the record gets its
// own context; failure is observed only in the log.
func (d *Dispatcher) recordAudit(req domain.SendRequest, normalized string, status domain.AuditStatus) {
	if d.audit == nil {
		return
	}
	rec := domain.NewAuditRecord(req, normalized, status)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()
		if err := d.audit.Record(ctx, rec); err != nil {
			d.log.Warn("audit record dropped",
				"customer_id", rec.CustomerID,
				"status", rec.Status,
				"err", err)
		}
	}()
}
