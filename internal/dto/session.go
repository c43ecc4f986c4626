package dto

import (
	"github.com/noah-isme/training-attendance-api/internal/models"
)

// RosterStudentResponse is one row of the attendance sheet.
type RosterStudentResponse struct {
	StudentID        string                  `json:"student_id"`
	FullName         string                  `json:"full_name"`
	Status           models.AttendanceStatus `json:"status"`
	ExistingRecordID *string                 `json:"existing_record_id,omitempty"`
}

// SessionResponse describes an attendance draft.
type SessionResponse struct {
	ID         string                       `json:"id"`
	State      models.SessionState          `json:"state"`
	Course     string                       `json:"course"`
	Date       string                       `json:"date,omitempty"`
	Roster     []RosterStudentResponse      `json:"roster"`
	Topics     string                       `json:"topics"`
	Remarks    string                       `json:"remarks"`
	Membership *models.MembershipOutcome    `json:"membership,omitempty"`
	Diagnostic *models.MembershipDiagnostic `json:"membership_diagnostic,omitempty"`
	LastError  string                       `json:"last_error,omitempty"`
}

// SaveResponse reports a completed save and the reloaded draft.
type SaveResponse struct {
	Summary models.SaveSummary `json:"summary"`
	Session SessionResponse    `json:"session"`
}

// HistoryEntryResponse is one row of a student's timeline.
type HistoryEntryResponse struct {
	Date       string                  `json:"date"`
	Course     string                  `json:"course"`
	Status     models.AttendanceStatus `json:"status"`
	Topics     string                  `json:"topics"`
	Remarks    string                  `json:"remarks"`
	RecordedAt string                  `json:"recorded_at"`
}

// NewSessionResponse maps a snapshot onto its wire form.
func NewSessionResponse(id string, snapshot models.SessionSnapshot) SessionResponse {
	resp := SessionResponse{
		ID:        id,
		State:     snapshot.State,
		Course:    snapshot.Draft.Course,
		Roster:    make([]RosterStudentResponse, 0, len(snapshot.Draft.Roster)),
		Topics:    snapshot.Draft.Topics,
		Remarks:   snapshot.Draft.Remarks,
		LastError: snapshot.LastError,
	}
	if !snapshot.Draft.Date.IsZero() {
		resp.Date = snapshot.Draft.Date.Format(models.DateLayout)
	}
	for _, entry := range snapshot.Draft.Roster {
		resp.Roster = append(resp.Roster, RosterStudentResponse{
			StudentID:        entry.Student.ID,
			FullName:         entry.Student.FullName,
			Status:           entry.Status,
			ExistingRecordID: entry.ExistingRecordID,
		})
	}
	if snapshot.Membership != nil {
		outcome := snapshot.Membership.Outcome
		resp.Membership = &outcome
		resp.Diagnostic = snapshot.Membership.Diagnostic
	}
	return resp
}

// NewHistoryResponse maps merged history entries onto their wire form.
func NewHistoryResponse(entries []models.HistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, HistoryEntryResponse{
			Date:       entry.Date.Format(models.DateLayout),
			Course:     entry.Course,
			Status:     entry.Status,
			Topics:     entry.Topics,
			Remarks:    entry.Remarks,
			RecordedAt: entry.RecordedAt,
		})
	}
	return out
}
