package ports

import "context"

// Capability identifies one device authorization the bridge can grant.
type Capability string

const (
	CapabilitySendSMS          Capability = "send-message"
	CapabilityReadPhoneState   Capability = "read-phone-identity"
	CapabilityReadPhoneNumbers Capability = "read-phone-numbers"
	CapabilityReadContacts     Capability = "read-contacts"
)

// PermissionRequester asks the device to grant a batch of capabilities and
// reports the per-capability outcome. A request may block indefinitely on
// an interactive prompt, so implementations must honour ctx.
type PermissionRequester interface {
	Request(ctx context.Context, caps []Capability) (map[Capability]bool, error)
}

// SimSource is one SIM enumeration source on the device. Record field names
// are not consistent across sources or bridge builds, so entries are
// loosely typed and callers probe candidate field names.
type SimSource interface {
	// Name identifies the source in logs.
	Name() string

	// List returns the source's raw slot records.
	List(ctx context.Context) ([]map[string]any, error)
}

// SmsSender abstracts the native one-shot send primitive.
type SmsSender interface {
	// SendSms submits one message through the given SIM slot. The returned
	// error carries the native failure text verbatim.
	SendSms(ctx context.Context, phoneNumber, message string, simSlot int) error

	// Ping reports whether the send module is reachable at all.
	Ping(ctx context.Context) error
}

// SimLister is optionally implemented by an SmsSender whose native module
// exposes its own SIM listing. It is consulted as the last enumeration
// tier before synthetic defaults.
type SimLister interface {
	ListSims(ctx context.Context) ([]map[string]any, error)
}
