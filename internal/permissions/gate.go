// Package permissions acquires and caches the device authorizations
// required to send SMS and read SIM metadata.
package permissions

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"tailor-sms-dispatch/internal/ports"
)

// requestedCaps is the batch asked for in one prompt. Send and phone
// identity are required; the rest are best-effort diagnostics.
var requestedCaps = []ports.Capability{
	ports.CapabilitySendSMS,
	ports.CapabilityReadPhoneState,
	ports.CapabilityReadPhoneNumbers,
	ports.CapabilityReadContacts,
}

// Gate mediates permission acquisition for the dispatch pipeline. A
// positive grant is cached for the lifetime of the Gate; a denial is not,
// so the user can be re-prompted.
type Gate struct {
	requester ports.PermissionRequester
	log       *slog.Logger

	mu      sync.Mutex
	granted bool
}

// NewGate wires a Gate. A nil requester means the platform has no
// permission model at all; the gate then always reports granted.
func NewGate(requester ports.PermissionRequester, log *slog.Logger) *Gate {
	return &Gate{requester: requester, log: log}
}

// RequestPermissions asks the device for the capability batch and reports
// whether sending is authorized: both send-message and read-phone-identity
// must be granted. Absence of read-phone-numbers does not fail the gate.
// The call may block on an interactive OS prompt until ctx is done.
func (g *Gate) RequestPermissions(ctx context.Context) (bool, error) {
	if g.requester == nil {
		return true, nil
	}

	g.mu.Lock()
	if g.granted {
		g.mu.Unlock()
		return true, nil
	}
	g.mu.Unlock()

	grants, err := g.requester.Request(ctx, requestedCaps)
	if err != nil {
		return false, fmt.Errorf("request permissions: %w", err)
	}

	granted := grants[ports.CapabilitySendSMS] && grants[ports.CapabilityReadPhoneState]
	if !grants[ports.CapabilityReadPhoneNumbers] {
		g.log.Warn("read-phone-numbers not granted; own-device number unavailable")
	}

	if granted {
		g.mu.Lock()
		g.granted = true
		g.mu.Unlock()
	}
	return granted, nil
}
