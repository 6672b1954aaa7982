package simdetect

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"tailor-sms-dispatch/internal/domain"
	"tailor-sms-dispatch/internal/permissions"
	"tailor-sms-dispatch/internal/ports"
)

type fakeSource struct {
	name string
	recs []map[string]any
	err  error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) List(context.Context) ([]map[string]any, error) {
	return f.recs, f.err
}

type fakeSender struct {
	sims    []map[string]any
	simsErr error
	pingErr error
}

func (f *fakeSender) SendSms(context.Context, string, string, int) error { return nil }
func (f *fakeSender) Ping(context.Context) error                         { return f.pingErr }
func (f *fakeSender) ListSims(context.Context) ([]map[string]any, error) {
	return f.sims, f.simsErr
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDetector(cfg Config) *Detector {
	if cfg.Gate == nil {
		cfg.Gate = permissions.NewGate(nil, discard())
	}
	cfg.Logger = discard()
	return New(cfg)
}

func TestDetect_TierA_ZipsPhoneNumbers(t *testing.T) {
	d := newDetector(Config{
		ActiveSims: &fakeSource{name: "active", recs: []map[string]any{
			{"displayName": "Roshan", "countryIso": "af", "mcc": float64(412)},
			{"carrierName": "AWCC", "number": "0700000001"},
		}},
		PhoneNumbers: &fakeSource{name: "numbers", recs: []map[string]any{
			{"line1Number": "+93799123456"},
		}},
	})

	sims := d.Detect(context.Background())
	if len(sims) != 2 {
		t.Fatalf("expected 2 sims, got %d", len(sims))
	}
	if sims[0].CarrierName != "Roshan" || sims[0].PhoneNumber != "+93799123456" {
		t.Errorf("slot 0 not zipped with number list: %+v", sims[0])
	}
	if sims[0].MCC != "412" || sims[0].CountryISO != "af" {
		t.Errorf("diagnostic fields not probed: %+v", sims[0])
	}
	if sims[1].PhoneNumber != "0700000001" {
		t.Errorf("slot 1 must fall back to per-entry field: %+v", sims[1])
	}
	// Tier A does not report readiness.
	if !sims[0].IsReady || !sims[0].IsActive || !sims[1].IsReady {
		t.Errorf("tier A slots must default to ready/active")
	}
}

func TestDetect_TierBFailoverAdoptsWholesale(t *testing.T) {
	d := newDetector(Config{
		ActiveSims: &fakeSource{name: "active", err: errors.New("binder died")},
		SimSlots: &fakeSource{name: "slots", recs: []map[string]any{
			{"operatorName": "Etisalat", "isReady": true, "isActive": false, "iccid": "8993x"},
		}},
	})

	sims := d.Detect(context.Background())
	want := []domain.SimDescriptor{
		{ID: 0, CarrierName: "Etisalat", IsReady: true, IsActive: false, ICCID: "8993x"},
	}
	if !reflect.DeepEqual(sims, want) {
		t.Fatalf("tier B output must be adopted exactly, got %+v", sims)
	}
}

func TestDetect_TierC_UsesSenderListing(t *testing.T) {
	d := newDetector(Config{
		ActiveSims: &fakeSource{name: "active", err: errors.New("down")},
		SimSlots:   &fakeSource{name: "slots", err: errors.New("down")},
		Sender: &fakeSender{sims: []map[string]any{
			{"simOperatorName": "MTN", "ready": "true"},
		}},
	})

	sims := d.Detect(context.Background())
	if len(sims) != 1 || sims[0].CarrierName != "MTN" || !sims[0].IsReady {
		t.Fatalf("expected sender-module tier result, got %+v", sims)
	}
}

func TestDetect_AllTiersFail_SyntheticDefaults(t *testing.T) {
	d := newDetector(Config{
		ActiveSims: &fakeSource{name: "active", err: errors.New("down")},
		SimSlots:   &fakeSource{name: "slots", err: errors.New("down")},
		Sender:     &fakeSender{simsErr: errors.New("down")},
	})

	sims := d.Detect(context.Background())
	if len(sims) != 2 {
		t.Fatalf("expected synthetic two-slot fallback, got %d", len(sims))
	}
	if sims[0].ID != 0 || !sims[0].IsReady || !sims[0].IsActive {
		t.Errorf("primary synthetic slot wrong: %+v", sims[0])
	}
	if sims[1].ID != 1 || sims[1].IsReady || sims[1].IsActive {
		t.Errorf("secondary synthetic slot wrong: %+v", sims[1])
	}
}

func TestDetect_EmptyTierFallsThrough(t *testing.T) {
	d := newDetector(Config{
		ActiveSims: &fakeSource{name: "active", recs: nil},
		SimSlots: &fakeSource{name: "slots", recs: []map[string]any{
			{"carrier": "Salaam"},
		}},
	})

	sims := d.Detect(context.Background())
	if len(sims) != 1 || sims[0].CarrierName != "Salaam" {
		t.Fatalf("empty tier A must fall through to tier B, got %+v", sims)
	}
}

func TestDetect_MissingCarrierGetsPlaceholder(t *testing.T) {
	d := newDetector(Config{
		ActiveSims: &fakeSource{name: "active", recs: []map[string]any{{"subId": float64(7)}}},
	})

	sims := d.Detect(context.Background())
	if sims[0].CarrierName != domain.UnknownCarrier {
		t.Fatalf("carrier must never be empty, got %q", sims[0].CarrierName)
	}
	if sims[0].SubscriptionID != "7" {
		t.Fatalf("subscription id not probed: %+v", sims[0])
	}
}

func TestAvailableSims_StableIDsAcrossCalls(t *testing.T) {
	d := newDetector(Config{
		ActiveSims: &fakeSource{name: "active", recs: []map[string]any{
			{"carrierName": "Roshan"},
			{"carrierName": "AWCC"},
		}},
	})

	first := d.AvailableSims(context.Background())
	second := d.AvailableSims(context.Background())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("id assignment must be stable: %+v vs %+v", first, second)
	}
}

func TestDetect_NoTelephonyPlatform(t *testing.T) {
	d := newDetector(Config{NoTelephony: true})

	sims := d.Detect(context.Background())
	if len(sims) != 1 || sims[0].CarrierName != "Device SIM" || !sims[0].IsReady {
		t.Fatalf("expected single Device SIM entry, got %+v", sims)
	}
}

func TestCheckAvailability(t *testing.T) {
	t.Run("sender absent", func(t *testing.T) {
		d := newDetector(Config{})
		err := d.CheckAvailability(context.Background())
		if !errors.Is(err, domain.ErrModuleUnavailable) {
			t.Fatalf("expected ErrModuleUnavailable, got %v", err)
		}
	})

	t.Run("sender unreachable", func(t *testing.T) {
		d := newDetector(Config{Sender: &fakeSender{pingErr: errors.New("no route")}})
		err := d.CheckAvailability(context.Background())
		if !errors.Is(err, domain.ErrModuleUnavailable) {
			t.Fatalf("expected ErrModuleUnavailable, got %v", err)
		}
	})

	t.Run("detection failure does not fail availability", func(t *testing.T) {
		d := newDetector(Config{
			Sender:     &fakeSender{simsErr: errors.New("down")},
			ActiveSims: &fakeSource{name: "active", err: errors.New("down")},
			SimSlots:   &fakeSource{name: "slots", err: errors.New("down")},
		})
		if err := d.CheckAvailability(context.Background()); err != nil {
			t.Fatalf("availability is about sending, not metadata: %v", err)
		}
		if !d.Available() {
			t.Fatal("availability not cached")
		}
	})
}

type denyAll struct{}

func (denyAll) Request(context.Context, []ports.Capability) (map[ports.Capability]bool, error) {
	return map[ports.Capability]bool{}, nil
}

func TestCheckAvailability_PermissionDenied(t *testing.T) {
	d := newDetector(Config{
		Gate:   permissions.NewGate(denyAll{}, discard()),
		Sender: &fakeSender{},
	})
	err := d.CheckAvailability(context.Background())
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}
