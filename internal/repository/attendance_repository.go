package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/training-attendance-api/internal/models"
)

// AttendanceRepository persists attendance records. The table carries no unique
// constraint on (student_id, course, date); callers decide between create and update.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `id, student_id, course, date, status, created_at, updated_at`

// List returns attendance records matching the filter, newest first.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Course != "" {
		where = append(where, fmt.Sprintf("course = $%d", len(args)+1))
		args = append(args, filter.Course)
	}
	if filter.Date != nil {
		where = append(where, fmt.Sprintf("date = $%d", len(args)+1))
		args = append(args, models.DateOnly(*filter.Date))
	}
	if filter.StudentID != "" {
		where = append(where, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	query := fmt.Sprintf(`SELECT %s FROM attendance_records WHERE %s ORDER BY date DESC, created_at DESC`,
		attendanceColumns, strings.Join(where, " AND "))

	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	return rows, nil
}

// Create inserts a new record under a fresh surrogate id.
func (r *AttendanceRepository) Create(ctx context.Context, record models.AttendanceRecord) (*models.AttendanceRecord, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	query := `INSERT INTO attendance_records (` + attendanceColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + attendanceColumns
	var stored models.AttendanceRecord
	if err := r.db.GetContext(ctx, &stored, query, record.ID, record.StudentID, record.Course, models.DateOnly(record.Date), record.Status, now, now); err != nil {
		return nil, fmt.Errorf("create attendance record: %w", err)
	}
	return &stored, nil
}

// Update overwrites the record stored under id.
func (r *AttendanceRepository) Update(ctx context.Context, id string, record models.AttendanceRecord) (*models.AttendanceRecord, error) {
	query := `UPDATE attendance_records
SET student_id = $2, course = $3, date = $4, status = $5, updated_at = $6
WHERE id = $1
RETURNING ` + attendanceColumns
	var stored models.AttendanceRecord
	if err := r.db.GetContext(ctx, &stored, query, id, record.StudentID, record.Course, models.DateOnly(record.Date), record.Status, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("update attendance record %s: %w", id, err)
	}
	return &stored, nil
}
