package domain

import (
	"slices"
	"strings"
	"time"
)

// PipelineStage tracks a client's onboarding progress.
type PipelineStage string

const (
	PipelineDiscovery  PipelineStage = "discovery"
	PipelineOnboarding PipelineStage = "onboarding"
	PipelineBuild      PipelineStage = "build"
	PipelineLive       PipelineStage = "live"
)

// Tenant is a client organization: the unit of billing and data isolation.
type Tenant struct {
	ID                  string
	Name                string
	AssignedEngineerIDs []string
	SubscriptionID      string // empty when no active subscription
	CreditBalance       int64
	PipelineStage       PipelineStage
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasEngineer reports whether userID is in the tenant's assigned-engineer set.
func (t *Tenant) HasEngineer(userID string) bool {
	return slices.Contains(t.AssignedEngineerIDs, userID)
}

// NormalizeTenantName is the case-insensitive uniqueness key for tenant names.
func NormalizeTenantName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
