package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTrainer UserRole = "TRAINER"
	RoleStudent UserRole = "STUDENT"
)

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID    string   `json:"user_id"`
	Role      UserRole `json:"role"`
	FullName  string   `json:"full_name"`
	BranchID  string   `json:"branch_id,omitempty"`
	StudentID string   `json:"student_id,omitempty"`
	jwt.RegisteredClaims
}

// SelfID returns the identifier used for SELF access checks.
func (c *JWTClaims) SelfID() string {
	if c == nil {
		return ""
	}
	if c.Role == RoleStudent && c.StudentID != "" {
		return c.StudentID
	}
	return c.UserID
}
