package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/noah-isme/training-attendance-api/internal/models"
	"github.com/noah-isme/training-attendance-api/internal/service"
	"github.com/noah-isme/training-attendance-api/pkg/config"
)

// issue_token signs an access token with the configured JWT secret, for local
// development and smoke tests against a running API.
func main() {
	var (
		userID    string
		role      string
		fullName  string
		branchID  string
		studentID string
		ttl       time.Duration
	)

	flag.StringVar(&userID, "user", "", "User ID (required)")
	flag.StringVar(&role, "role", string(models.RoleTrainer), "ADMIN, TRAINER or STUDENT")
	flag.StringVar(&fullName, "name", "", "Display name")
	flag.StringVar(&branchID, "branch", "", "Branch ID scoping a trainer's roster")
	flag.StringVar(&studentID, "student", "", "Student ID linked to a STUDENT account")
	flag.DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to JWT_EXPIRATION)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if ttl <= 0 {
		ttl = cfg.JWT.Expiration
	}

	auth := service.NewAuthService(nil, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: ttl,
		Issuer:            cfg.JWT.Issuer,
	})
	token, err := auth.IssueToken(models.JWTClaims{
		UserID:    userID,
		Role:      models.UserRole(role),
		FullName:  fullName,
		BranchID:  branchID,
		StudentID: studentID,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
