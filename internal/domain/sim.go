package domain

// UnknownCarrier is the placeholder used when no enumeration source
// reports a carrier name for a slot.
const UnknownCarrier = "Unknown"

// SimDescriptor describes one physical or logical SIM slot as understood
// by the application. A descriptor set is always adopted from a single
// enumeration source; sets from different sources are never merged.
type SimDescriptor struct {
	// ID is a stable index, unique within one detection result set.
	ID int `json:"id"`

	// SubscriptionID is the native subscription handle, when reported.
	SubscriptionID string `json:"subscription_id,omitempty"`

	// CarrierName is never empty; it falls back to UnknownCarrier.
	CarrierName string `json:"carrier_name"`

	// PhoneNumber may be empty; not all carriers expose the line number.
	PhoneNumber string `json:"phone_number,omitempty"`

	// IsActive and IsReady report whether the slot can currently send.
	IsActive bool `json:"is_active"`
	IsReady  bool `json:"is_ready"`

	// Diagnostic metadata. Not used for routing decisions.
	CountryISO string `json:"country_iso,omitempty"`
	MCC        string `json:"mcc,omitempty"`
	MNC        string `json:"mnc,omitempty"`
	ICCID      string `json:"icc_id,omitempty"`
}
