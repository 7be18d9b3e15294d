package domain

import (
	"strings"
	"time"
)

// UserPlan enumerates billing plans.
type UserPlan string

const (
	UserPlanFree    UserPlan = "free"
	UserPlanPro     UserPlan = "pro"
	UserPlanPremium UserPlan = "premium"
)

// DefaultProfileImage is assigned to accounts that never uploaded an avatar.
const DefaultProfileImage = "https://via.placeholder.com/150"

// User represents a registered account.
type User struct {
	ID                   int64
	Username             string
	Email                string
	PasswordHash         string
	ProfileImage         string
	PlanType             UserPlan
	StripeCustomerID     *string
	StripeSubscriptionID *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ValidPlan reports whether p names a supported plan.
func ValidPlan(p UserPlan) bool {
	switch p {
	case UserPlanFree, UserPlanPro, UserPlanPremium:
		return true
	}
	return false
}

// UsernameFromEmail derives the default username from the local part of an
// email address.
func UsernameFromEmail(email string) string {
	email = strings.TrimSpace(email)
	if idx := strings.Index(email, "@"); idx >= 0 {
		return email[:idx]
	}
	return email
}
