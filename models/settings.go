package models

// PresenceFilter is a tri-state filter encoded as two flags. Has alone
// requires the value, Missing alone requires its absence; both set or both
// clear impose no constraint.
type PresenceFilter struct {
	Has     bool `json:"has"`
	Missing bool `json:"missing"`
}

// Allows reports whether a value with the given presence passes the filter.
func (p PresenceFilter) Allows(present bool) bool {
	switch {
	case p.Has && !p.Missing:
		return present
	case p.Missing && !p.Has:
		return !present
	default:
		return true
	}
}

// SelectionSettings is the filter parameter value. It is replaced wholesale
// on every change, never edited in place. Date boundaries are ISO dates;
// an empty string means unbounded on that side.
type SelectionSettings struct {
	Query string `json:"query"`

	FirstPrice         PresenceFilter `json:"firstPrice"`
	FirstPriceAdjusted PresenceFilter `json:"firstPriceAdjusted"`
	CurrentPrice       PresenceFilter `json:"currentPrice"`

	OnlyWithCurrentPrice bool `json:"onlyWithCurrentPrice"`

	FirstDateFrom   string `json:"firstDateFrom,omitempty"`
	FirstDateTo     string `json:"firstDateTo,omitempty"`
	CurrentDateFrom string `json:"currentDateFrom,omitempty"`
	CurrentDateTo   string `json:"currentDateTo,omitempty"`
}

// DefaultSelectionSettings imposes no constraint at all.
func DefaultSelectionSettings() SelectionSettings {
	return SelectionSettings{}
}
