package session

// Package session contains domain-level types for the identity gateway:
// the active session, the impersonation context, and role metadata.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and header transport.
// Valid values mirror the upstream role codes.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleTenantAdmin Role = "tenant_admin"
	RoleTeacher     Role = "teacher"
	RoleParent      Role = "parent"
	RoleAccountant  Role = "accountant"
	RoleStudent     Role = "student"
)

// PlatformDashboardPath is where a platform operator lands after
// impersonation exit. The operator is already authenticated, so exit never
// routes through the login screen.
const PlatformDashboardPath = "/platform/dashboard"

// DashboardPath returns the landing path for a role after login.
func DashboardPath(role Role) string {
	switch role {
	case RoleSuperAdmin:
		return "/admin/overview"
	case RoleTenantAdmin:
		return "/students"
	case RoleTeacher:
		return "/teacher/attendance"
	case RoleParent:
		return "/parent/fees"
	case RoleAccountant:
		return "/finance/overview"
	case RoleStudent:
		return "/"
	default:
		return "/"
	}
}

// Session is the identity context currently acting. It is either wholly
// present (all required fields set) or wholly absent; a partially
// populated session is never a valid state and Validate rejects it.
type Session struct {
	Token       string   `json:"auth_token"`
	UserID      string   `json:"user_id"`
	Email       string   `json:"user_email"`
	DisplayName string   `json:"user_name"`
	Role        Role     `json:"user_role"`
	TenantID    string   `json:"tenant_id"`
	// Permissions is the granted capability set. Roles with implicit full
	// access may carry an empty set.
	Permissions []string `json:"user_permissions,omitempty"`
}

// Validate reports whether every required field is set. DisplayName and
// Permissions are optional attributes.
func (s Session) Validate() bool {
	return s.Token != "" && s.UserID != "" && s.Email != "" && s.Role != "" && s.TenantID != ""
}

// ImpersonationContext exists only while a platform operator is acting as
// a tenant user. Operator is a full snapshot of the session that initiated
// impersonation and must be restorable field-for-field. The Target* fields
// are denormalised at begin time so exit can report who was being
// impersonated even after the active session has been overwritten by
// further activity.
type ImpersonationContext struct {
	EpisodeID       string    `json:"impersonation_episode_id"`
	Operator        Session   `json:"impersonator"`
	TargetTenantID  string    `json:"impersonation_target_tenant_id"`
	TargetUserID    string    `json:"impersonation_target_user_id"`
	TargetUserEmail string    `json:"impersonation_target_user_email"`
	StartedAt       time.Time `json:"impersonation_started_at"`
	Reason          string    `json:"impersonation_reason"`
}

// ExitRecord is the audit payload reported to the backend when an
// impersonation episode ends. Field names follow the backend contract.
type ExitRecord struct {
	Reason          string `json:"reason"`
	Notes           string `json:"impersonation_notes"`
	TargetTenantID  string `json:"-"`
	TargetUserID    string `json:"target_user_id"`
	TargetUserEmail string `json:"target_user_email"`
	StartedAt       string `json:"started_at"`
}
