package quota

import "sort"

// Policy bounds a subscription tier: total requests per calendar day,
// burst requests per 60-second window, and the result-set cap handed to
// the request layer on admission.
type Policy struct {
	Name                 string `json:"name"`
	RequestsPerDay       int64  `json:"requests_per_day"`
	RequestsPerMinute    int    `json:"requests_per_minute"`
	MaxResultsPerRequest int    `json:"max_results_per_request"`
}

// FreeTier is the fallback policy name for unrecognized tiers.
const FreeTier = "free"

// Tiers is a read-only mapping from tier name to policy. It is fixed at
// construction; tiers are deployment configuration, not runtime state.
type Tiers struct {
	policies map[string]Policy
}

// DefaultTiers returns the standard tier table.
func DefaultTiers() *Tiers {
	return NewTiers(
		Policy{Name: "free", RequestsPerDay: 100, RequestsPerMinute: 10, MaxResultsPerRequest: 20},
		Policy{Name: "basic", RequestsPerDay: 1000, RequestsPerMinute: 30, MaxResultsPerRequest: 50},
		Policy{Name: "premium", RequestsPerDay: 10000, RequestsPerMinute: 60, MaxResultsPerRequest: 100},
	)
}

// NewTiers builds a tier table from the given policies. A "free" policy
// must be present; it doubles as the fallback for unknown tier names.
func NewTiers(policies ...Policy) *Tiers {
	m := make(map[string]Policy, len(policies))
	for _, p := range policies {
		m[p.Name] = p
	}
	if _, ok := m[FreeTier]; !ok {
		panic("quota: tier table requires a free policy")
	}
	return &Tiers{policies: m}
}

// Resolve returns the policy for the named tier, falling back to the free
// policy when the name is unknown.
func (t *Tiers) Resolve(name string) Policy {
	if p, ok := t.policies[name]; ok {
		return p
	}
	return t.policies[FreeTier]
}

// Known reports whether the tier name is present in the table.
func (t *Tiers) Known(name string) bool {
	_, ok := t.policies[name]
	return ok
}

// Names returns the configured tier names, sorted.
func (t *Tiers) Names() []string {
	names := make([]string, 0, len(t.policies))
	for name := range t.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
