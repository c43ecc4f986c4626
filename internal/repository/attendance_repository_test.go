package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/training-attendance-api/internal/models"
)

var attendanceRowColumns = []string{"id", "student_id", "course", "date", "status", "created_at", "updated_at"}

func TestAttendanceRepositoryListByCourseAndDate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance_records WHERE 1=1 AND course = $1 AND date = $2 ORDER BY date DESC, created_at DESC")).
		WithArgs("Hair Styling", date).
		WillReturnRows(sqlmock.NewRows(attendanceRowColumns).
			AddRow("rec-1", "stu-1", "Hair Styling", date, "Late", created, nil))

	rows, err := repo.List(context.Background(), models.AttendanceFilter{Course: "Hair Styling", Date: &date})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.AttendanceStatusLate, rows[0].Status)
	require.NotNil(t, rows[0].CreatedAt)
	assert.Nil(t, rows[0].UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance_records WHERE 1=1 AND student_id = $1")).
		WithArgs("stu-7").
		WillReturnRows(sqlmock.NewRows(attendanceRowColumns))

	rows, err := repo.List(context.Background(), models.AttendanceFilter{StudentID: "stu-7"})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)
	day := models.DateOnly(date)
	mock.ExpectQuery("INSERT INTO attendance_records").
		WithArgs(sqlmock.AnyArg(), "stu-1", "Hair Styling", day, models.AttendanceStatusPresent, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(attendanceRowColumns).
			AddRow("rec-new", "stu-1", "Hair Styling", day, "Present", time.Now(), time.Now()))

	stored, err := repo.Create(context.Background(), models.AttendanceRecord{StudentID: "stu-1", Course: "Hair Styling", Date: date, Status: models.AttendanceStatusPresent})
	require.NoError(t, err)
	assert.Equal(t, "rec-new", stored.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("UPDATE attendance_records").
		WithArgs("rec-42", "stu-1", "Hair Styling", sqlmock.AnyArg(), models.AttendanceStatusAbsent, sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), "rec-42", models.AttendanceRecord{StudentID: "stu-1", Course: "Hair Styling", Date: time.Now(), Status: models.AttendanceStatusAbsent})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}
