package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
)

// mockSendRequest mirrors what httpbridge.Client posts to /send.
type mockSendRequest struct {
	PhoneNumber string `json:"phone_number"`
	Message     string `json:"message"`
	SimSlot     int    `json:"sim_slot"`
}

// The enumeration endpoints deliberately use different field names per
// source, mirroring how real bridge builds disagree on naming. Keep them
// inconsistent so the detector's field probing stays exercised in dev.
var (
	activeSims = []map[string]any{
		{"displayName": "Roshan", "subscriptionId": 1, "countryIso": "af", "mcc": "412", "mnc": "20"},
		{"carrierName": "AWCC", "subscriptionId": 2, "number": "+93700000002"},
	}
	phoneNumbers = []map[string]any{
		{"line1Number": "+93799000001"},
		{},
	}
	simSlots = []map[string]any{
		{"operatorName": "Roshan", "slotIndex": 0, "isReady": true, "isActive": true, "iccid": "89934120000000000001"},
		{"operatorName": "AWCC", "slotIndex": 1, "isReady": false, "isActive": false},
	}
	moduleSims = []map[string]any{
		{"carrier": "Roshan", "ready": true},
	}
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	addr := getenv("HTTP_ADDR", ":9090")

	fiberApp := fiber.New(fiber.Config{AppName: "mock-bridge"})

	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	// POST /send — accepts a message unless the radio is "off".
	fiberApp.Post("/send", func(c *fiber.Ctx) error {
		var req mockSendRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
		}

		if getenv("MOCK_RADIO", "on") == "off" {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "radio off"})
		}
		if !strings.HasPrefix(req.PhoneNumber, "+") {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "generic failure: number not international"})
		}
		if req.SimSlot < 0 || req.SimSlot >= len(simSlots) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "no such sim slot"})
		}

		log.Info("mock bridge sent message",
			"to", req.PhoneNumber,
			"sim_slot", req.SimSlot,
			"chars", len(req.Message),
		)
		return c.SendStatus(fiber.StatusAccepted)
	})

	// POST /permissions/request — grants everything except contacts.
	fiberApp.Post("/permissions/request", func(c *fiber.Ctx) error {
		var req struct {
			Capabilities []string `json:"capabilities"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
		}

		grants := make(map[string]bool, len(req.Capabilities))
		for _, cap := range req.Capabilities {
			grants[cap] = cap != "read-contacts"
		}
		return c.JSON(grants)
	})

	// SIM-enumeration sources. MOCK_FAIL_TIERS knocks out individual tiers
	// so fallback behaviour can be poked by hand, e.g. MOCK_FAIL_TIERS=a,b.
	fiberApp.Get("/sims/active", tierEndpoint("a", activeSims))
	fiberApp.Get("/sims/numbers", tierEndpoint("a", phoneNumbers))
	fiberApp.Get("/sims/slots", tierEndpoint("b", simSlots))
	fiberApp.Get("/sims", tierEndpoint("c", moduleSims))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("mock-bridge listening", "addr", addr)
		if err := fiberApp.Listen(addr); err != nil {
			log.Error("fiber listen", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down mock-bridge")
	_ = fiberApp.Shutdown()
}

func tierEndpoint(tier string, recs []map[string]any) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if strings.Contains(getenv("MOCK_FAIL_TIERS", ""), tier) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "source unavailable"})
		}
		return c.JSON(recs)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
