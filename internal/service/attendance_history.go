package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/training-attendance-api/internal/models"
	"github.com/noah-isme/training-attendance-api/pkg/export"
	appErrors "github.com/noah-isme/training-attendance-api/pkg/errors"
)

const recordedAtPlaceholder = "-"

// MergeHistory joins each attendance record with the first daily log entry of
// the same student on the same calendar day. Records without a matching entry
// keep their status and carry empty notes. Output is sorted newest day first,
// then by course name.
func MergeHistory(records []models.AttendanceRecord, entries []models.DailyLogEntry, loc *time.Location) []models.HistoryEntry {
	if loc == nil {
		loc = time.UTC
	}
	merged := make([]models.HistoryEntry, 0, len(records))
	for _, record := range records {
		item := models.HistoryEntry{
			Date:       models.DateOnly(record.Date),
			Course:     record.Course,
			Status:     record.Status,
			RecordedAt: recordedAt(record, loc),
		}
		for _, entry := range entries {
			if entry.StudentID == record.StudentID && models.SameDay(entry.ReportDate, record.Date) {
				item.Topics = entry.TopicsCovered
				item.Remarks = entry.Remarks()
				break
			}
		}
		merged = append(merged, item)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].Date.Equal(merged[j].Date) {
			return merged[i].Date.After(merged[j].Date)
		}
		return merged[i].Course < merged[j].Course
	})
	return merged
}

func recordedAt(record models.AttendanceRecord, loc *time.Location) string {
	ts := record.CreatedAt
	if ts == nil {
		ts = record.UpdatedAt
	}
	if ts == nil {
		return recordedAtPlaceholder
	}
	return ts.In(loc).Format("15:04")
}

// HistoryResult is a merged timeline plus the sources that degraded while building it.
type HistoryResult struct {
	Entries []models.HistoryEntry
	Notices []models.LoadNotice
}

// StudentLookup loads a single student.
type StudentLookup interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// HistoryService builds a student's personal attendance timeline.
type HistoryService struct {
	students   StudentLookup
	attendance AttendanceStore
	logs       DailyLogStore
	location   *time.Location
	logger     *zap.Logger
}

// NewHistoryService constructs the service. A nil location means UTC.
func NewHistoryService(students StudentLookup, attendance AttendanceStore, logs DailyLogStore, location *time.Location, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &HistoryService{students: students, attendance: attendance, logs: logs, location: location, logger: logger}
}

// StudentHistory fetches records and log entries of one student concurrently and
// merges them. A failed log fetch degrades to empty notes; a failed record fetch
// fails the call.
func (s *HistoryService) StudentHistory(ctx context.Context, caller *models.JWTClaims, studentID string) (*HistoryResult, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	if err := s.authorize(ctx, caller, studentID); err != nil {
		return nil, err
	}

	var (
		records []models.AttendanceRecord
		entries []models.DailyLogEntry
		logErr  error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.attendance.List(gctx, models.AttendanceFilter{StudentID: studentID})
		return err
	})
	g.Go(func() error {
		// logs degrade instead of failing the group
		entries, logErr = s.logs.List(gctx, models.DailyLogFilter{StudentID: studentID})
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load attendance history", zap.String("student_id", studentID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance history")
	}

	result := &HistoryResult{}
	if logErr != nil {
		s.logger.Warn("daily logs unavailable for history", zap.String("student_id", studentID), zap.Error(logErr))
		entries = nil
		result.Notices = append(result.Notices, models.LoadNotice{Source: models.LoadSourceDailyLogs, Message: "daily logs unavailable"})
	}
	result.Entries = MergeHistory(records, entries, s.location)
	return result, nil
}

// authorize applies the same scoping as the roster: trainers bound to a branch
// only see students of that branch, students only themselves.
func (s *HistoryService) authorize(ctx context.Context, caller *models.JWTClaims, studentID string) error {
	if caller == nil {
		return appErrors.ErrUnauthorized
	}
	if caller.Role == models.RoleStudent && caller.SelfID() != studentID {
		return appErrors.Clone(appErrors.ErrForbidden, "students may only read their own history")
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		s.logger.Error("failed to load student", zap.String("student_id", studentID), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if caller.Role == models.RoleTrainer && caller.BranchID != "" {
		if student.BranchID == nil || *student.BranchID != caller.BranchID {
			return appErrors.Clone(appErrors.ErrForbidden, "student belongs to another branch")
		}
	}
	return nil
}

// HistoryDataset renders a merged timeline for the CSV exporter.
func HistoryDataset(entries []models.HistoryEntry) export.Dataset {
	headers := []string{"date", "course", "status", "topics", "remarks", "recorded_at"}
	rows := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, map[string]string{
			"date":        entry.Date.Format(models.DateLayout),
			"course":      entry.Course,
			"status":      string(entry.Status),
			"topics":      entry.Topics,
			"remarks":     entry.Remarks,
			"recorded_at": entry.RecordedAt,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
