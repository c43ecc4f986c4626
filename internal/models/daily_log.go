package models

import "time"

// DailyLogEntry records material covered in a session for one student.
type DailyLogEntry struct {
	ID             string     `db:"id" json:"id"`
	StudentID      string     `db:"student_id" json:"student_id"`
	StudentName    string     `db:"student_name" json:"student_name"`
	Course         string     `db:"course" json:"course"`
	ReportDate     time.Time  `db:"report_date" json:"report_date"`
	TopicsCovered  string     `db:"topics_covered" json:"topics_covered"`
	TrainerRemarks *string    `db:"trainer_remarks" json:"trainer_remarks,omitempty"`
	CreatedAt      *time.Time `db:"created_at" json:"created_at,omitempty"`
}

// DailyLogFilter scopes daily log queries. Empty fields are ignored.
type DailyLogFilter struct {
	Course    string
	Date      *time.Time
	StudentID string
}

// Remarks returns the trainer remarks or an empty string.
func (e DailyLogEntry) Remarks() string {
	if e.TrainerRemarks == nil {
		return ""
	}
	return *e.TrainerRemarks
}
