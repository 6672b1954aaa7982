// Package simdetect produces a non-empty, well-formed SIM descriptor list
// for the dispatch pipeline, even when every underlying enumeration source
// is absent, partial, or failing.
package simdetect

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"tailor-sms-dispatch/internal/domain"
	"tailor-sms-dispatch/internal/permissions"
	"tailor-sms-dispatch/internal/ports"
)

// Config wires a Detector with its collaborators. Any of the sources may
// be nil; the corresponding tier is then skipped.
type Config struct {
	Gate   *permissions.Gate
	Sender ports.SmsSender

	// ActiveSims and PhoneNumbers back the richest, display-oriented tier;
	// SimSlots backs the slot-oriented tier.
	ActiveSims   ports.SimSource
	PhoneNumbers ports.SimSource
	SimSlots     ports.SimSource

	// NoTelephony marks a platform with no telephony concept at all.
	// Detection then short-circuits to a single synthetic device entry.
	NoTelephony bool

	Logger *slog.Logger
}

// Detector holds the process-scoped detection state: the adopted SIM list
// and whether sending has been confirmed available. State is rebuilt
// wholesale on every detection run, never patched incrementally.
type Detector struct {
	gate         *permissions.Gate
	sender       ports.SmsSender
	activeSims   ports.SimSource
	phoneNumbers ports.SimSource
	simSlots     ports.SimSource
	noTelephony  bool
	log          *slog.Logger

	mu        sync.RWMutex
	sims      []domain.SimDescriptor
	available bool
}

// New builds a Detector from cfg.
func New(cfg Config) *Detector {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Detector{
		gate:         cfg.Gate,
		sender:       cfg.Sender,
		activeSims:   cfg.ActiveSims,
		phoneNumbers: cfg.PhoneNumbers,
		simSlots:     cfg.SimSlots,
		noTelephony:  cfg.NoTelephony,
		log:          log,
	}
}

// Detect rebuilds the SIM list by walking the enumeration tiers in priority
// order. The first tier that yields a non-empty list is adopted in full;
// partial output from a failed tier is never merged with a later tier's.
// Detect never fails: when every tier is unusable it falls back to a fixed
// synthetic two-slot list so callers always have a slot to default to.
func (d *Detector) Detect(ctx context.Context) []domain.SimDescriptor {
	var sims []domain.SimDescriptor
	if d.noTelephony {
		sims = deviceSim()
	} else {
		sims = d.runTiers(ctx)
	}

	d.mu.Lock()
	d.sims = sims
	d.mu.Unlock()

	return slices.Clone(sims)
}

// AvailableSims returns the cached SIM list, running detection first if no
// result set has been adopted yet. ID assignment is stable across calls as
// long as the underlying sources do not change.
func (d *Detector) AvailableSims(ctx context.Context) []domain.SimDescriptor {
	d.mu.RLock()
	cached := slices.Clone(d.sims)
	d.mu.RUnlock()

	if len(cached) > 0 {
		return cached
	}
	return d.Detect(ctx)
}

// DefaultSimID is the slot used when a caller does not pick one.
func (d *Detector) DefaultSimID(ctx context.Context) int {
	sims := d.AvailableSims(ctx)
	for _, s := range sims {
		if s.IsReady {
			return s.ID
		}
	}
	return sims[0].ID
}

// CheckAvailability verifies that sending is possible: permissions granted
// and the native send module reachable. On success it opportunistically
// runs detection; a detection failure is logged but never fails
// availability, which is about sending, not about rich SIM metadata.
// A nil return means available; otherwise the error wraps
// domain.ErrPermissionDenied or domain.ErrModuleUnavailable.
func (d *Detector) CheckAvailability(ctx context.Context) error {
	granted, err := d.gate.RequestPermissions(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPermissionDenied, err)
	}
	if !granted {
		return domain.ErrPermissionDenied
	}

	if d.sender == nil {
		return domain.ErrModuleUnavailable
	}
	if err := d.sender.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrModuleUnavailable, err)
	}

	d.Detect(ctx)

	d.mu.Lock()
	d.available = true
	d.mu.Unlock()
	return nil
}

// EnsureAvailability is the lazy form used by the dispatcher: a previously
// confirmed positive result short-circuits; anything else re-checks.
func (d *Detector) EnsureAvailability(ctx context.Context) error {
	d.mu.RLock()
	ok := d.available
	d.mu.RUnlock()
	if ok {
		return nil
	}
	return d.CheckAvailability(ctx)
}

// Available reports the last confirmed availability without probing.
func (d *Detector) Available() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.available
}
