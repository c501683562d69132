// Package feature defines the entitlement gate for premium-only capabilities.
package feature

import "context"

// Key identifies a gated capability.
type Key string

// Gated capabilities checked at the point of use.
const (
	UnlimitedSwipes Key = "unlimited_swipes"
	ProfileFilters  Key = "profile_filters"
	DirectContact   Key = "direct_contact"
)

// Copy is the static paywall presentation for a denied feature.
type Copy struct {
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Benefits []string `json:"benefits"`
}

// Decision is the result of an entitlement check.
type Decision struct {
	Allowed bool `json:"allowed"`
	Feature Key  `json:"feature"`
	// Copy is populated only on denial.
	Copy Copy `json:"copy,omitempty"`
}

// Gate decides whether the current account tier may use a capability.
// Implementations perform no network I/O.
type Gate interface {
	Check(ctx context.Context, key Key, premium bool) Decision
}

// paywallCopy holds the upgrade prompt shown per denied feature.
var paywallCopy = map[Key]Copy{
	UnlimitedSwipes: {
		Title:   "You're out of swipes for today",
		Message: "Free accounts get a limited number of swipes per day. Upgrade to keep discovering.",
		Benefits: []string{
			"Unlimited daily swipes",
			"Filter candidates by profile type",
			"See direct contact details of your matches",
		},
	},
	ProfileFilters: {
		Title:   "Filters are a premium feature",
		Message: "Upgrade to choose exactly which profile types you want to discover.",
		Benefits: []string{
			"Filter candidates by profile type",
			"Unlimited daily swipes",
			"See direct contact details of your matches",
		},
	},
	DirectContact: {
		Title:   "Direct contact is a premium feature",
		Message: "Upgrade to see email, phone and social handles of this profile.",
		Benefits: []string{
			"See direct contact details of your matches",
			"Unlimited daily swipes",
			"Filter candidates by profile type",
		},
	},
}

// PolicyGate is the static tier policy: every gated capability requires a
// premium account.
type PolicyGate struct{}

// NewPolicyGate creates the static policy gate.
func NewPolicyGate() *PolicyGate {
	return &PolicyGate{}
}

// Check applies the policy table for key against the account tier.
func (g *PolicyGate) Check(_ context.Context, key Key, premium bool) Decision {
	if premium {
		return Decision{Allowed: true, Feature: key}
	}
	return Decision{Allowed: false, Feature: key, Copy: CopyFor(key)}
}

// CopyFor returns the paywall copy for a feature. Unknown keys fall back to
// the unlimited-swipes copy so the paywall never renders empty.
func CopyFor(key Key) Copy {
	if c, ok := paywallCopy[key]; ok {
		return c
	}
	return paywallCopy[UnlimitedSwipes]
}
