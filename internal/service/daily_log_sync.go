package service

import (
	"strings"

	"github.com/noah-isme/training-attendance-api/internal/models"
)

// PlanDailyLogs fans the shared session note out into one new entry per roster
// student. Nothing is planned when the topics text is blank.
//
// Entries are always creates: previous entries for the same student, course
// and date are neither looked up nor replaced, so every save adds rows.
func PlanDailyLogs(draft models.SessionDraft) []models.DailyLogEntry {
	if strings.TrimSpace(draft.Topics) == "" {
		return nil
	}
	var remarks *string
	if draft.Remarks != "" {
		r := draft.Remarks
		remarks = &r
	}
	date := models.DateOnly(draft.Date)
	entries := make([]models.DailyLogEntry, 0, len(draft.Roster))
	for _, entry := range draft.Roster {
		entries = append(entries, models.DailyLogEntry{
			StudentID:      entry.Student.ID,
			StudentName:    entry.Student.FullName,
			Course:         draft.Course,
			ReportDate:     date,
			TopicsCovered:  draft.Topics,
			TrainerRemarks: remarks,
		})
	}
	return entries
}
