package simdetect

import "strconv"

// Candidate field names per attribute, probed in order. Bridge builds and
// Android vendors disagree on naming, so every tier shares these lists.
var (
	carrierFields = []string{"carrierName", "carrier", "displayName", "simOperatorName", "operatorName"}
	phoneFields   = []string{"number", "phoneNumber", "phone", "line1Number", "msisdn", "mdn"}
	subIDFields   = []string{"subscriptionId", "subId", "subscription_id"}
	countryFields = []string{"countryIso", "isoCountryCode", "countryCode"}
	mccFields     = []string{"mcc", "mobileCountryCode"}
	mncFields     = []string{"mnc", "mobileNetworkCode"}
	iccIDFields   = []string{"iccId", "iccid", "simSerialNumber"}
	readyFields   = []string{"isReady", "ready", "simReady"}
	activeFields  = []string{"isActive", "active", "isEnabled"}
)

// firstNonEmpty probes the record for the named fields in order and returns
// the first value that renders to a non-empty string.
func firstNonEmpty(rec map[string]any, names []string) string {
	for _, name := range names {
		if v, ok := rec[name]; ok {
			if s := asString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// firstBool probes the record for the named fields in order; absent or
// unusable fields fall back to def.
func firstBool(rec map[string]any, names []string, def bool) bool {
	for _, name := range names {
		v, ok := rec[name]
		if !ok {
			continue
		}
		switch b := v.(type) {
		case bool:
			return b
		case string:
			if parsed, err := strconv.ParseBool(b); err == nil {
				return parsed
			}
		case float64:
			return b != 0
		}
	}
	return def
}

// asString renders the JSON-decoded value types a bridge actually emits.
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return ""
	}
}
