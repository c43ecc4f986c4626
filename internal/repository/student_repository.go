package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/training-attendance-api/internal/models"
)

// StudentRepository is the roster provider backed by the students table.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListForCaller returns active students visible to the caller.
// Admins see everyone, trainers their branch, students only themselves.
func (r *StudentRepository) ListForCaller(ctx context.Context, caller *models.JWTClaims) ([]models.Student, error) {
	if caller == nil {
		return nil, fmt.Errorf("list students: missing caller")
	}
	where := []string{"active = TRUE"}
	args := []interface{}{}
	switch caller.Role {
	case models.RoleAdmin:
	case models.RoleTrainer:
		if caller.BranchID != "" {
			where = append(where, fmt.Sprintf("branch_id = $%d", len(args)+1))
			args = append(args, caller.BranchID)
		}
	case models.RoleStudent:
		if caller.StudentID == "" {
			return []models.Student{}, nil
		}
		where = append(where, fmt.Sprintf("id = $%d", len(args)+1))
		args = append(args, caller.StudentID)
	default:
		return []models.Student{}, nil
	}

	query := fmt.Sprintf(`SELECT id, full_name, courses, email, phone, branch_id, active
FROM students WHERE %s ORDER BY full_name ASC`, strings.Join(where, " AND "))
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID loads a single student.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, full_name, courses, email, phone, branch_id, active FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, fmt.Errorf("find student %s: %w", id, err)
	}
	return &student, nil
}
