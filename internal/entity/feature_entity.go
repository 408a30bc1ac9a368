package entity

// Feature is the closed enum of gated actions. Each feature carries its limit
// and counter accessors as data so gating code never branches on raw strings.
type Feature string

const (
	FeaturePropertyCreate Feature = "property_create"
	FeatureVisitSchedule  Feature = "visit_schedule"
	FeatureBoost          Feature = "boost"
	FeatureMediaUpload    Feature = "media_upload"
	FeatureAmenityAdd     Feature = "amenity_add"
)

type GateType string

const (
	GateTypeNone GateType = ""
	GateTypeSoft GateType = "SOFT"
	GateTypeHard GateType = "HARD"
)

type featureSpec struct {
	limit func(p *SubscriptionPlan) int
	usage func(s *Subscription) int
	// flag is nil for plain quota features, which are always "accessible"
	// and only quota-limited.
	flag func(p *SubscriptionPlan) bool
	// defaultLimit and defaultAllowed are the last-resort fallback applied
	// when no free plan exists in the catalog.
	defaultLimit   int
	defaultAllowed bool
}

var featureSpecs = map[Feature]featureSpec{
	FeaturePropertyCreate: {
		limit:          func(p *SubscriptionPlan) int { return p.MaxProperties },
		usage:          func(s *Subscription) int { return s.PropertiesUsed },
		defaultLimit:   3,
		defaultAllowed: true,
	},
	FeatureVisitSchedule: {
		limit:          func(p *SubscriptionPlan) int { return p.MaxVisitsPerMonth },
		usage:          func(s *Subscription) int { return s.VisitsUsed },
		defaultLimit:   5,
		defaultAllowed: true,
	},
	FeatureBoost: {
		limit:          func(p *SubscriptionPlan) int { return p.MaxBoostsPerMonth },
		usage:          func(s *Subscription) int { return s.BoostsUsed },
		flag:           func(p *SubscriptionPlan) bool { return p.BoostEnabled },
		defaultLimit:   0,
		defaultAllowed: false,
	},
	FeatureMediaUpload: {
		limit:          func(p *SubscriptionPlan) int { return p.MaxMediaPerProperty },
		usage:          func(s *Subscription) int { return s.MediaUsed },
		defaultLimit:   5,
		defaultAllowed: true,
	},
	FeatureAmenityAdd: {
		limit:          func(p *SubscriptionPlan) int { return p.MaxAmenitiesPerProperty },
		usage:          func(s *Subscription) int { return s.AmenitiesUsed },
		defaultLimit:   10,
		defaultAllowed: true,
	},
}

// AllFeatures returns the closed set of gated features in a stable order.
func AllFeatures() []Feature {
	return []Feature{
		FeaturePropertyCreate,
		FeatureVisitSchedule,
		FeatureBoost,
		FeatureMediaUpload,
		FeatureAmenityAdd,
	}
}

func (f Feature) Valid() bool {
	_, ok := featureSpecs[f]
	return ok
}

// LimitOn resolves the feature's quota limit from a plan.
func (f Feature) LimitOn(p *SubscriptionPlan) int {
	return featureSpecs[f].limit(p)
}

// UsageOn resolves the feature's consumed counter from a subscription.
func (f Feature) UsageOn(s *Subscription) int {
	return featureSpecs[f].usage(s)
}

// EnabledOn resolves the feature's boolean flag from a plan. Plain quota
// features have no flag and are always accessible.
func (f Feature) EnabledOn(p *SubscriptionPlan) bool {
	spec := featureSpecs[f]
	if spec.flag == nil {
		return true
	}
	return spec.flag(p)
}

// DefaultLimit is the hard-coded fallback limit used when the catalog has no
// free plan to resolve.
func (f Feature) DefaultLimit() int {
	return featureSpecs[f].defaultLimit
}

// DefaultAllowed is the hard-coded fallback for the feature's boolean flag.
func (f Feature) DefaultAllowed() bool {
	return featureSpecs[f].defaultAllowed
}
