package models

import (
	"strings"
	"time"
)

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "Present"
	AttendanceStatusAbsent  AttendanceStatus = "Absent"
	AttendanceStatusLate    AttendanceStatus = "Late"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate:
		return true
	default:
		return false
	}
}

// ParseAttendanceStatus maps case-insensitive input onto a known status.
func ParseAttendanceStatus(raw string) (AttendanceStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "present":
		return AttendanceStatusPresent, true
	case "absent":
		return AttendanceStatusAbsent, true
	case "late":
		return AttendanceStatusLate, true
	default:
		return "", false
	}
}

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DateOnly truncates t to its calendar day at UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two instants fall on the same UTC calendar day.
// Stored dates are UTC midnights, so the session zone of the reader must not shift them.
func SameDay(a, b time.Time) bool {
	return DateOnly(a.UTC()).Equal(DateOnly(b.UTC()))
}

// AttendanceRecord is one persisted status keyed logically by (student, course, date).
type AttendanceRecord struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Course    string           `db:"course" json:"course"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	CreatedAt *time.Time       `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt *time.Time       `db:"updated_at" json:"updated_at,omitempty"`
}

// AttendanceFilter scopes attendance listing queries. Empty fields are ignored.
type AttendanceFilter struct {
	Course    string
	Date      *time.Time
	StudentID string
}

// AttendanceOperationKind distinguishes planned writes.
type AttendanceOperationKind string

const (
	AttendanceOperationCreate AttendanceOperationKind = "create"
	AttendanceOperationUpdate AttendanceOperationKind = "update"
)

// AttendanceOperation is a single planned write against the attendance store.
type AttendanceOperation struct {
	Kind     AttendanceOperationKind
	RecordID string
	Record   AttendanceRecord
}
