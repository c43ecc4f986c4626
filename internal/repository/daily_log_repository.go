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

// DailyLogRepository persists per-student daily log entries.
type DailyLogRepository struct {
	db *sqlx.DB
}

// NewDailyLogRepository constructs the repository.
func NewDailyLogRepository(db *sqlx.DB) *DailyLogRepository {
	return &DailyLogRepository{db: db}
}

const dailyLogColumns = `id, student_id, student_name, course, report_date, topics_covered, trainer_remarks, created_at`

// List returns log entries matching the filter, most recently created first.
// A date filter compares on the UTC calendar day of report_date.
func (r *DailyLogRepository) List(ctx context.Context, filter models.DailyLogFilter) ([]models.DailyLogEntry, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Course != "" {
		where = append(where, fmt.Sprintf("course = $%d", len(args)+1))
		args = append(args, filter.Course)
	}
	if filter.Date != nil {
		where = append(where, fmt.Sprintf("(report_date AT TIME ZONE 'UTC')::date = $%d", len(args)+1))
		args = append(args, models.DateOnly(*filter.Date))
	}
	if filter.StudentID != "" {
		where = append(where, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	query := fmt.Sprintf(`SELECT %s FROM daily_logs WHERE %s ORDER BY created_at DESC, id ASC`,
		dailyLogColumns, strings.Join(where, " AND "))

	var rows []models.DailyLogEntry
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list daily logs: %w", err)
	}
	return rows, nil
}

// Create always inserts a new entry; there is no upsert key.
func (r *DailyLogRepository) Create(ctx context.Context, entry models.DailyLogEntry) (*models.DailyLogEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	query := `INSERT INTO daily_logs (` + dailyLogColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + dailyLogColumns
	var stored models.DailyLogEntry
	if err := r.db.GetContext(ctx, &stored, query,
		entry.ID, entry.StudentID, entry.StudentName, entry.Course, entry.ReportDate,
		entry.TopicsCovered, entry.TrainerRemarks, time.Now().UTC(),
	); err != nil {
		return nil, fmt.Errorf("create daily log: %w", err)
	}
	return &stored, nil
}
