package simdetect

import (
	"context"
	"fmt"
	"sync"

	"tailor-sms-dispatch/internal/domain"
	"tailor-sms-dispatch/internal/ports"
)

// tier is one independent enumeration attempt. Tiers return an error or an
// empty list to pass control to the next one.
type tier struct {
	name string
	run  func(ctx context.Context) ([]domain.SimDescriptor, error)
}

// runTiers walks the tiers in priority order and adopts the first usable
// result wholesale. Every failure is absorbed here as a warning.
func (d *Detector) runTiers(ctx context.Context) []domain.SimDescriptor {
	tiers := []tier{
		{name: "active-sims", run: d.tierActiveSims},
		{name: "sim-slots", run: d.tierSimSlots},
		{name: "sender-module", run: d.tierSenderModule},
	}

	for _, t := range tiers {
		sims, err := t.run(ctx)
		if err != nil {
			d.log.Warn("sim enumeration tier failed",
				"tier", t.name,
				"err", fmt.Errorf("%w: %v", domain.ErrDetectionFailed, err))
			continue
		}
		if len(sims) == 0 {
			d.log.Warn("sim enumeration tier returned no slots", "tier", t.name)
			continue
		}
		d.log.Info("sim list adopted", "tier", t.name, "slots", len(sims))
		return sims
	}

	d.log.Warn("all sim enumeration tiers unusable; using synthetic defaults")
	return syntheticSims()
}

// tierActiveSims queries the active SIM list and the device phone-number
// list in parallel and zips them by index. This tier does not report
// readiness, so slots default to ready and active.
func (d *Detector) tierActiveSims(ctx context.Context) ([]domain.SimDescriptor, error) {
	if d.activeSims == nil {
		return nil, fmt.Errorf("active sim source not present")
	}

	var (
		wg      sync.WaitGroup
		recs    []map[string]any
		numbers []map[string]any
		recsErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		recs, recsErr = d.activeSims.List(ctx)
	}()

	if d.phoneNumbers != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			numbers, err = d.phoneNumbers.List(ctx)
			if err != nil {
				// The number list is a cross-reference nicety; per-entry
				// fields still apply.
				d.log.Warn("phone number source failed", "source", d.phoneNumbers.Name(), "err", err)
				numbers = nil
			}
		}()
	}
	wg.Wait()

	if recsErr != nil {
		return nil, fmt.Errorf("%s: %w", d.activeSims.Name(), recsErr)
	}

	sims := make([]domain.SimDescriptor, 0, len(recs))
	for i, rec := range recs {
		desc := descriptorFromRecord(i, rec)
		if i < len(numbers) {
			if n := firstNonEmpty(numbers[i], phoneFields); n != "" {
				desc.PhoneNumber = n
			}
		}
		desc.IsReady = true
		desc.IsActive = true
		sims = append(sims, desc)
	}
	return sims, nil
}

// tierSimSlots queries the slot-oriented source, which reports readiness
// directly.
func (d *Detector) tierSimSlots(ctx context.Context) ([]domain.SimDescriptor, error) {
	if d.simSlots == nil {
		return nil, fmt.Errorf("sim slot source not present")
	}

	recs, err := d.simSlots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.simSlots.Name(), err)
	}

	sims := make([]domain.SimDescriptor, 0, len(recs))
	for i, rec := range recs {
		desc := descriptorFromRecord(i, rec)
		desc.IsReady = firstBool(rec, readyFields, true)
		desc.IsActive = firstBool(rec, activeFields, true)
		sims = append(sims, desc)
	}
	return sims, nil
}

// tierSenderModule asks the send module itself for its SIM listing, when
// the build exposes one.
func (d *Detector) tierSenderModule(ctx context.Context) ([]domain.SimDescriptor, error) {
	lister, ok := d.sender.(ports.SimLister)
	if !ok {
		return nil, fmt.Errorf("send module does not list sims")
	}

	recs, err := lister.ListSims(ctx)
	if err != nil {
		return nil, fmt.Errorf("sender listing: %w", err)
	}

	sims := make([]domain.SimDescriptor, 0, len(recs))
	for i, rec := range recs {
		desc := descriptorFromRecord(i, rec)
		desc.IsReady = firstBool(rec, readyFields, true)
		desc.IsActive = firstBool(rec, activeFields, true)
		sims = append(sims, desc)
	}
	return sims, nil
}

// descriptorFromRecord maps one loosely-typed record to a descriptor using
// the shared field-name probes. The index is the stable ID.
func descriptorFromRecord(i int, rec map[string]any) domain.SimDescriptor {
	carrier := firstNonEmpty(rec, carrierFields)
	if carrier == "" {
		carrier = domain.UnknownCarrier
	}
	return domain.SimDescriptor{
		ID:             i,
		SubscriptionID: firstNonEmpty(rec, subIDFields),
		CarrierName:    carrier,
		PhoneNumber:    firstNonEmpty(rec, phoneFields),
		CountryISO:     firstNonEmpty(rec, countryFields),
		MCC:            firstNonEmpty(rec, mccFields),
		MNC:            firstNonEmpty(rec, mncFields),
		ICCID:          firstNonEmpty(rec, iccIDFields),
	}
}

// syntheticSims is the total-fallback result: one usable primary slot and
// an inert secondary one.
func syntheticSims() []domain.SimDescriptor {
	return []domain.SimDescriptor{
		{ID: 0, CarrierName: "Primary", IsReady: true, IsActive: true},
		{ID: 1, CarrierName: "Secondary", IsReady: false, IsActive: false},
	}
}

// deviceSim is the single entry used on platforms with no telephony concept.
func deviceSim() []domain.SimDescriptor {
	return []domain.SimDescriptor{
		{ID: 0, CarrierName: "Device SIM", IsReady: true, IsActive: true},
	}
}
