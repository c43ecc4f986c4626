package service

import (
	"github.com/noah-isme/training-attendance-api/internal/models"
)

// PlanAttendance turns a draft into one write per roster entry. Entries that
// were loaded with an existing record become updates of that record; the rest
// become creates. A missing status is written as Absent.
func PlanAttendance(draft models.SessionDraft) []models.AttendanceOperation {
	ops := make([]models.AttendanceOperation, 0, len(draft.Roster))
	date := models.DateOnly(draft.Date)
	for _, entry := range draft.Roster {
		status := entry.Status
		if status == "" {
			status = models.AttendanceStatusAbsent
		}
		record := models.AttendanceRecord{
			StudentID: entry.Student.ID,
			Course:    draft.Course,
			Date:      date,
			Status:    status,
		}
		if entry.ExistingRecordID != nil && *entry.ExistingRecordID != "" {
			ops = append(ops, models.AttendanceOperation{
				Kind:     models.AttendanceOperationUpdate,
				RecordID: *entry.ExistingRecordID,
				Record:   record,
			})
			continue
		}
		ops = append(ops, models.AttendanceOperation{Kind: models.AttendanceOperationCreate, Record: record})
	}
	return ops
}
