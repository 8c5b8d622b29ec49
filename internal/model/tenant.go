package model

import "time"

// Tenant status values.  Only ACTIVE tenants are eligible as a login's
// primary tenant.
const (
    TenantStatusActive    = "ACTIVE"
    TenantStatusSuspended = "SUSPENDED"
    TenantStatusNotActive = "NOT_ACTIVE"
)

// Subscription plan tiers and statuses.  Every registration starts at the
// FREE tier; paid tiers are assigned by billing flows outside this service.
const (
    PlanTierFree  = "FREE"
    PlanTierPaid1 = "PAID_TIER_1"
    PlanTierPaid2 = "PAID_TIER_2"

    SubscriptionStatusActive    = "ACTIVE"
    SubscriptionStatusCancelled = "CANCELLED"
    SubscriptionStatusPastDue   = "PAST_DUE"
)

// Tenant represents an enterprise as stored in the `tenants` table.
// A tenant is created exactly once per successful registration and is
// owned by exactly one account at creation time.
//
// Fields:
//  ID               – primary key identifier.
//  Name             – company name.
//  Siret            – French company registry number (14 digits).
//  Kbis             – company registration document reference.
//  OwnerID          – account that registered the tenant.
//  Status           – ACTIVE, SUSPENDED or NOT_ACTIVE.
//  LogoURL          – object storage URL of the logo (nullable).
//  CoverImageURL    – object storage URL of the cover image (nullable).
//  ActivityDomainID – optional reference into activity_domains.
//  SpecialityID     – optional reference into specialities.
//  AddressJSON      – raw JSON address blob as stored in the column.
//  CreationDate     – when the enterprise was registered.
type Tenant struct {
    ID               uint64     // tenants.id
    Name             string     // tenants.name
    Siret            string     // tenants.siret
    Kbis             string     // tenants.kbis
    OwnerID          uint64     // tenants.owner_id
    Status           string     // tenants.status
    LogoURL          *string    // tenants.logo_url (nullable)
    CoverImageURL    *string    // tenants.cover_image_url (nullable)
    ActivityDomainID *uint64    // tenants.activity_domain_id (nullable)
    SpecialityID     *uint64    // tenants.speciality_id (nullable)
    AddressJSON      []byte     // tenants.address (JSON, nullable)
    CreationDate     time.Time  // tenants.creation_date
}

// Address is the structured form of the tenant address JSON column.
type Address struct {
    Street     string   `json:"street"`
    City       string   `json:"city"`
    PostalCode string   `json:"postalCode"`
    Country    string   `json:"country"`
    Latitude   *float64 `json:"latitude,omitempty"`
    Longitude  *float64 `json:"longitude,omitempty"`
}

// Subscription models a row in the `subscriptions` table.  It is created
// in the same transaction as its tenant and carries a synthetic billing
// reference until real payment integration exists.
//
// Fields:
//  ID                 – primary key identifier.
//  TenantID           – owning tenant (unique).
//  PlanTier           – FREE or a paid tier.
//  MaxUsers           – seat limit for the tier.
//  Status             – subscription lifecycle status.
//  BillingRef         – external billing customer reference (synthetic).
//  CurrentPeriodStart – start of the current billing window.
//  CurrentPeriodEnd   – end of the current billing window.
type Subscription struct {
    ID                 uint64    // subscriptions.id
    TenantID           uint64    // subscriptions.tenant_id
    PlanTier           string    // subscriptions.plan_tier
    MaxUsers           uint32    // subscriptions.max_users
    Status             string    // subscriptions.status
    BillingRef         string    // subscriptions.billing_ref
    CurrentPeriodStart time.Time // subscriptions.current_period_start
    CurrentPeriodEnd   time.Time // subscriptions.current_period_end
}
