package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/noah-isme/training-attendance-api/internal/models"
)

var errStoreDown = errors.New("store unavailable")

type fakeRoster struct {
	students []models.Student
	err      error
	calls    int
	mu       sync.Mutex
}

func (f *fakeRoster) ListForCaller(ctx context.Context, caller *models.JWTClaims) ([]models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Student(nil), f.students...), nil
}

// fakeAttendance keeps records newest first, the order the SQL store returns.
type fakeAttendance struct {
	mu        sync.Mutex
	records   []models.AttendanceRecord
	seq       int
	listErr   error
	createErr error
	updateErr error
	lists     int
	creates   int
	updates   int
}

func (f *fakeAttendance) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.AttendanceRecord
	for _, record := range f.records {
		if filter.Course != "" && record.Course != filter.Course {
			continue
		}
		if filter.Date != nil && !models.SameDay(record.Date, *filter.Date) {
			continue
		}
		if filter.StudentID != "" && record.StudentID != filter.StudentID {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func (f *fakeAttendance) Create(ctx context.Context, record models.AttendanceRecord) (*models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	record.ID = fmt.Sprintf("rec-%d", f.seq)
	now := time.Now()
	record.CreatedAt = &now
	record.UpdatedAt = &now
	f.records = append([]models.AttendanceRecord{record}, f.records...)
	return &record, nil
}

func (f *fakeAttendance) Update(ctx context.Context, id string, record models.AttendanceRecord) (*models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].Status = record.Status
			f.records[i].Course = record.Course
			f.records[i].Date = record.Date
			out := f.records[i]
			return &out, nil
		}
	}
	return nil, errors.New("record not found")
}

type fakeDailyLogs struct {
	mu        sync.Mutex
	entries   []models.DailyLogEntry
	seq       int
	listErr   error
	createErr error
	lists     int
}

func (f *fakeDailyLogs) List(ctx context.Context, filter models.DailyLogFilter) ([]models.DailyLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.DailyLogEntry
	for _, entry := range f.entries {
		if filter.Course != "" && entry.Course != filter.Course {
			continue
		}
		if filter.Date != nil && !models.SameDay(entry.ReportDate, *filter.Date) {
			continue
		}
		if filter.StudentID != "" && entry.StudentID != filter.StudentID {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (f *fakeDailyLogs) Create(ctx context.Context, entry models.DailyLogEntry) (*models.DailyLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	entry.ID = fmt.Sprintf("log-%d", f.seq)
	now := time.Now()
	entry.CreatedAt = &now
	f.entries = append([]models.DailyLogEntry{entry}, f.entries...)
	return &entry, nil
}

func (f *fakeDailyLogs) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

type fakeStudents struct {
	byID map[string]models.Student
	err  error
}

func (f *fakeStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	student, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("find student %s: %w", id, sql.ErrNoRows)
	}
	return &student, nil
}

func knownStudents(students ...models.Student) *fakeStudents {
	byID := make(map[string]models.Student, len(students))
	for _, student := range students {
		byID[student.ID] = student
	}
	return &fakeStudents{byID: byID}
}

func threeStudents() []models.Student {
	return []models.Student{
		{ID: "s1", FullName: "Ana", Courses: models.CourseNames{"Hair Styling"}},
		{ID: "s2", FullName: "Budi", Courses: models.CourseNames{"hair styling", "Makeup"}},
		{ID: "s3", FullName: "Citra", Courses: models.CourseNames{" Hair Styling"}},
	}
}

func trainerClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "trainer-1", Role: models.RoleTrainer}
}
