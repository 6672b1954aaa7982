package transport

import (
	"errors"
	"log/slog"

	"tailor-sms-dispatch/internal/dispatch"
	"tailor-sms-dispatch/internal/domain"
	"tailor-sms-dispatch/internal/ports"
	"tailor-sms-dispatch/internal/simdetect"

	"github.com/gofiber/fiber/v2"
)

// Handler holds all HTTP handlers for the SMS dispatch service.
type Handler struct {
	dispatcher *dispatch.Dispatcher
	detector   *simdetect.Detector
	audits     ports.AuditRepository
	log        *slog.Logger
}

// NewHandler wires up a Handler with its dependencies. audits may be nil
// when no audit store is configured; the listing route is then not mounted.
func NewHandler(dispatcher *dispatch.Dispatcher, detector *simdetect.Detector, audits ports.AuditRepository, log *slog.Logger) *Handler {
	return &Handler{dispatcher: dispatcher, detector: detector, audits: audits, log: log}
}

// Register mounts all routes onto the given Fiber router.
func (h *Handler) Register(router fiber.Router) {
	router.Get("/availability", h.Availability)
	router.Get("/sims", h.ListSims)
	router.Post("/sms/send", h.SendSms)
	router.Post("/sms/batch", h.SendBatch)
	if h.audits != nil {
		router.Get("/audit", h.ListAudit)
	}
}

// ── Availability & SIMs ───────────────────────────────────────────────────────

// Availability reports whether sending is currently possible.
//
// GET /availability
func (h *Handler) Availability(c *fiber.Ctx) error {
	err := h.detector.CheckAvailability(c.Context())
	resp := fiber.Map{"available": err == nil}
	if err != nil {
		resp["reason"] = err.Error()
	}
	return c.JSON(resp)
}

// ListSims returns the detected SIM slots.
//
// GET /sims
func (h *Handler) ListSims(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"sims": h.detector.AvailableSims(c.Context())})
}

// ── Send API ──────────────────────────────────────────────────────────────────

type sendSmsRequest struct {
	Phone      string `json:"phone"`
	Message    string `json:"message"`
	CustomerID string `json:"customer_id"`
	TemplateID string `json:"template_id"`
	SimSlot    *int   `json:"sim_slot"`
}

// SendSms sends one message to one customer. Failures surface as an error
// status so the app can show its blocking dialog.
//
// POST /sms/send
// Body: { "phone": "...", "message": "...", "customer_id": "...", "template_id": "...", "sim_slot": 0 }
func (h *Handler) SendSms(c *fiber.Ctx) error {
	var req sendSmsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	res, err := h.dispatcher.Send(c.Context(), domain.SendRequest{
		RecipientPhone: req.Phone,
		MessageBody:    req.Message,
		SimID:          h.simSlot(c, req.SimSlot),
		CustomerID:     req.CustomerID,
		TemplateID:     req.TemplateID,
	})
	if err != nil {
		h.log.Error("send sms", "customer_id", req.CustomerID, "err", err)
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error":  res.ErrorMessage,
			"result": res,
		})
	}

	return c.JSON(fiber.Map{"result": res})
}

type batchRecipient struct {
	Phone      string `json:"phone"`
	CustomerID string `json:"customer_id"`
}

type batchRequest struct {
	Recipients []batchRecipient `json:"recipients"`
	Message    string           `json:"message"`
	TemplateID string           `json:"template_id"`
	SimSlot    *int             `json:"sim_slot"`
}

// SendBatch sends one message to many customers. The response always
// carries one result per recipient plus an aggregate summary; individual
// failures never fail the call.
//
// POST /sms/batch
// Body: { "recipients": [{"phone": "...", "customer_id": "..."}], "message": "...", "sim_slot": 0 }
func (h *Handler) SendBatch(c *fiber.Ctx) error {
	var req batchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if len(req.Recipients) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "recipients are required"})
	}

	simSlot := h.simSlot(c, req.SimSlot)
	requests := make([]domain.SendRequest, 0, len(req.Recipients))
	for _, r := range req.Recipients {
		requests = append(requests, domain.SendRequest{
			RecipientPhone: r.Phone,
			MessageBody:    req.Message,
			SimID:          simSlot,
			CustomerID:     r.CustomerID,
			TemplateID:     req.TemplateID,
		})
	}

	results := h.dispatcher.SendBatch(c.Context(), requests)
	succeeded, failed := dispatch.Summarize(results)

	return c.JSON(fiber.Map{
		"total":     len(results),
		"succeeded": succeeded,
		"failed":    failed,
		"results":   results,
	})
}

// simSlot resolves the slot to send through when the caller did not pick one.
func (h *Handler) simSlot(c *fiber.Ctx, requested *int) int {
	if requested != nil {
		return *requested
	}
	return h.detector.DefaultSimID(c.Context())
}

// ── Audit listing ─────────────────────────────────────────────────────────────

// ListAudit returns the stored send-attempt trail for the shop's records
// screen.
//
// GET /audit?customer_id=...&status=...&limit=...&offset=...
func (h *Handler) ListAudit(c *fiber.Ctx) error {
	f := ports.AuditFilter{
		CustomerID: c.Query("customer_id"),
		Status:     domain.AuditStatus(c.Query("status")),
		Limit:      c.QueryInt("limit", 50),
		Offset:     c.QueryInt("offset", 0),
	}

	recs, err := h.audits.List(c.Context(), f)
	if err != nil {
		h.log.Error("list audit", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(fiber.Map{"records": recs, "count": len(recs)})
}

// statusForError maps the dispatch error taxonomy onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrPermissionDenied):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrModuleUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, domain.ErrNativeSend):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
