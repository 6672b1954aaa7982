// Package httpbridge talks to the telephony bridge device over HTTP. The
// bridge is an Android handset running the gateway app; it exposes the
// native send primitive, the SIM enumeration sources, and the permission
// prompt.
package httpbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tailor-sms-dispatch/internal/ports"
)

// Client implements ports.SmsSender, ports.SimLister, and
// ports.PermissionRequester against one bridge device.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client targeting the given base URL. Per-call deadlines
// come from the caller's context; the transport timeout is a backstop.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type sendRequest struct {
	PhoneNumber string `json:"phone_number"`
	Message     string `json:"message"`
	SimSlot     int    `json:"sim_slot"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// SendSms posts one message to the bridge's /send endpoint. A rejection
// carries the bridge's error text verbatim.
func (c *Client) SendSms(ctx context.Context, phoneNumber, message string, simSlot int) error {
	payload, err := json.Marshal(sendRequest{
		PhoneNumber: phoneNumber,
		Message:     message,
		SimSlot:     simSlot,
	})
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusAccepted {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err == nil && er.Error != "" {
		return fmt.Errorf("bridge rejected send: %s", er.Error)
	}
	return fmt.Errorf("bridge returned %d", resp.StatusCode)
}

// Ping checks the bridge's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bridge unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge health returned %d", resp.StatusCode)
	}
	return nil
}

// ListSims is the send module's own SIM listing, consulted as the last
// enumeration tier.
func (c *Client) ListSims(ctx context.Context) ([]map[string]any, error) {
	return c.fetchRecords(ctx, "/sims")
}

type permissionRequest struct {
	Capabilities []ports.Capability `json:"capabilities"`
}

// Request asks the bridge to acquire the capabilities. The call blocks
// while the device shows its prompt, so callers must bound ctx.
func (c *Client) Request(ctx context.Context, caps []ports.Capability) (map[ports.Capability]bool, error) {
	payload, err := json.Marshal(permissionRequest{Capabilities: caps})
	if err != nil {
		return nil, fmt.Errorf("marshal permission request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/permissions/request", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bridge permissions returned %d", resp.StatusCode)
	}

	var grants map[ports.Capability]bool
	if err := json.NewDecoder(resp.Body).Decode(&grants); err != nil {
		return nil, fmt.Errorf("decode grants: %w", err)
	}
	return grants, nil
}

// ActiveSims is the display-oriented enumeration source.
func (c *Client) ActiveSims() ports.SimSource {
	return source{c: c, name: "active-sims", path: "/sims/active"}
}

// PhoneNumbers is the parallel per-slot phone-number source.
func (c *Client) PhoneNumbers() ports.SimSource {
	return source{c: c, name: "phone-numbers", path: "/sims/numbers"}
}

// SimSlots is the slot-oriented enumeration source.
func (c *Client) SimSlots() ports.SimSource {
	return source{c: c, name: "sim-slots", path: "/sims/slots"}
}

type source struct {
	c    *Client
	name string
	path string
}

func (s source) Name() string { return s.name }

func (s source) List(ctx context.Context) ([]map[string]any, error) {
	return s.c.fetchRecords(ctx, s.path)
}

func (c *Client) fetchRecords(ctx context.Context, path string) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bridge %s returned %d", path, resp.StatusCode)
	}

	var recs []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return recs, nil
}
