package model

// ServiceType is a category of purchasable promotional content.
type ServiceType string

const (
	ServiceJobPosting       ServiceType = "job-posting"
	ServiceSeminar          ServiceType = "seminar"
	ServiceLabAdvertisement ServiceType = "lab-advertisement"
	ServiceAdvertisement    ServiceType = "advertisement"
	ServiceNewProduct       ServiceType = "new-product"
)

// Tier is a sub-variant of a service type with its own price.
type Tier string

const (
	TierNone     Tier = ""
	TierBasic    Tier = "basic"
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

// orderPrefixes map each service type to the 3-letter prefix used in order numbers.
var orderPrefixes = map[ServiceType]string{
	ServiceJobPosting:       "JOB",
	ServiceSeminar:          "SEM",
	ServiceLabAdvertisement: "LAB",
	ServiceAdvertisement:    "ADV",
	ServiceNewProduct:       "PRD",
}

// OrderPrefix returns the order-number prefix for t, or "SVC" for unknown types.
func (t ServiceType) OrderPrefix() string {
	if p, ok := orderPrefixes[t]; ok {
		return p
	}
	return "SVC"
}

// Valid reports whether t is a known service type.
func (t ServiceType) Valid() bool {
	_, ok := orderPrefixes[t]
	return ok
}

// PriceCatalogEntry is an immutable price/duration snapshot for one
// (serviceType, tier) pair. Amounts are in the minor currency unit.
type PriceCatalogEntry struct {
	ServiceType  ServiceType
	Tier         Tier
	Price        int64
	DurationDays int
	DisplayName  string
}

// DefaultPriceTable is the compiled-in fallback used when the catalog source
// is unreachable. A quote must never fail, so this table covers every
// sellable (serviceType, tier) pair.
func DefaultPriceTable() []PriceCatalogEntry {
	return []PriceCatalogEntry{
		{ServiceType: ServiceJobPosting, Tier: TierNone, Price: 20000, DurationDays: 30, DisplayName: "Job Posting"},
		{ServiceType: ServiceSeminar, Tier: TierNone, Price: 50000, DurationDays: 60, DisplayName: "Seminar"},
		{ServiceType: ServiceLabAdvertisement, Tier: TierNone, Price: 30000, DurationDays: 30, DisplayName: "Lab Advertisement"},
		{ServiceType: ServiceAdvertisement, Tier: TierBasic, Price: 50000, DurationDays: 30, DisplayName: "Advertisement (Basic)"},
		{ServiceType: ServiceAdvertisement, Tier: TierStandard, Price: 100000, DurationDays: 30, DisplayName: "Advertisement (Standard)"},
		{ServiceType: ServiceAdvertisement, Tier: TierPremium, Price: 200000, DurationDays: 30, DisplayName: "Advertisement (Premium)"},
		{ServiceType: ServiceNewProduct, Tier: TierNone, Price: 15000, DurationDays: 30, DisplayName: "New Product Listing"},
	}
}
