package permissions

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"tailor-sms-dispatch/internal/ports"
)

type fakeRequester struct {
	grants map[ports.Capability]bool
	err    error
	calls  int
}

func (f *fakeRequester) Request(_ context.Context, caps []ports.Capability) (map[ports.Capability]bool, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.grants, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequestPermissions_GrantedWhenRequiredCapsGranted(t *testing.T) {
	req := &fakeRequester{grants: map[ports.Capability]bool{
		ports.CapabilitySendSMS:        true,
		ports.CapabilityReadPhoneState: true,
	}}
	g := NewGate(req, discard())

	ok, err := g.RequestPermissions(context.Background())
	if err != nil {
		t.Fatalf("RequestPermissions: %v", err)
	}
	if !ok {
		t.Fatal("expected granted")
	}
}

func TestRequestPermissions_PhoneNumbersIsBestEffort(t *testing.T) {
	req := &fakeRequester{grants: map[ports.Capability]bool{
		ports.CapabilitySendSMS:          true,
		ports.CapabilityReadPhoneState:   true,
		ports.CapabilityReadPhoneNumbers: false,
	}}
	g := NewGate(req, discard())

	ok, err := g.RequestPermissions(context.Background())
	if err != nil || !ok {
		t.Fatalf("missing read-phone-numbers must not fail the gate: ok=%v err=%v", ok, err)
	}
}

func TestRequestPermissions_DeniedWithoutSendCap(t *testing.T) {
	req := &fakeRequester{grants: map[ports.Capability]bool{
		ports.CapabilityReadPhoneState: true,
	}}
	g := NewGate(req, discard())

	ok, err := g.RequestPermissions(context.Background())
	if err != nil {
		t.Fatalf("RequestPermissions: %v", err)
	}
	if ok {
		t.Fatal("expected denial without send-message capability")
	}
}

func TestRequestPermissions_PositiveGrantIsCached(t *testing.T) {
	req := &fakeRequester{grants: map[ports.Capability]bool{
		ports.CapabilitySendSMS:        true,
		ports.CapabilityReadPhoneState: true,
	}}
	g := NewGate(req, discard())

	for i := 0; i < 3; i++ {
		if ok, err := g.RequestPermissions(context.Background()); err != nil || !ok {
			t.Fatalf("call %d: ok=%v err=%v", i, ok, err)
		}
	}
	if req.calls != 1 {
		t.Fatalf("expected a single prompt, got %d", req.calls)
	}
}

func TestRequestPermissions_DenialIsNotCached(t *testing.T) {
	req := &fakeRequester{grants: map[ports.Capability]bool{}}
	g := NewGate(req, discard())

	_, _ = g.RequestPermissions(context.Background())
	_, _ = g.RequestPermissions(context.Background())
	if req.calls != 2 {
		t.Fatalf("denial must re-prompt, got %d calls", req.calls)
	}
}

func TestRequestPermissions_NoPermissionModel(t *testing.T) {
	g := NewGate(nil, discard())
	ok, err := g.RequestPermissions(context.Background())
	if err != nil || !ok {
		t.Fatalf("nil requester must short-circuit to granted: ok=%v err=%v", ok, err)
	}
}

func TestRequestPermissions_RequesterError(t *testing.T) {
	req := &fakeRequester{err: errors.New("bridge offline")}
	g := NewGate(req, discard())

	ok, err := g.RequestPermissions(context.Background())
	if ok || err == nil {
		t.Fatalf("expected error, got ok=%v err=%v", ok, err)
	}
}
