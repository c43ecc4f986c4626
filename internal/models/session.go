package models

import "time"

// SessionState is the lifecycle position of an attendance draft.
type SessionState string

const (
	SessionStateIdle   SessionState = "idle"
	SessionStateLoaded SessionState = "loaded"
	SessionStateDirty  SessionState = "dirty"
	SessionStateSaving SessionState = "saving"
	SessionStateError  SessionState = "error"
)

// RosterEntry is one student row in a draft.
type RosterEntry struct {
	Student          Student          `json:"student"`
	Status           AttendanceStatus `json:"status,omitempty"`
	ExistingRecordID *string          `json:"existing_record_id,omitempty"`
}

// SessionDraft is the in-memory aggregate edited by a trainer for one (course, date).
type SessionDraft struct {
	Course  string        `json:"course"`
	Date    time.Time     `json:"date"`
	Roster  []RosterEntry `json:"roster"`
	Topics  string        `json:"topics"`
	Remarks string        `json:"remarks"`
}

// Clone returns a deep copy of the draft.
func (d SessionDraft) Clone() SessionDraft {
	out := d
	out.Roster = make([]RosterEntry, len(d.Roster))
	for i, entry := range d.Roster {
		out.Roster[i] = entry
		if entry.ExistingRecordID != nil {
			id := *entry.ExistingRecordID
			out.Roster[i].ExistingRecordID = &id
		}
		out.Roster[i].Student.Courses = append(CourseNames(nil), entry.Student.Courses...)
	}
	return out
}

// MembershipOutcome tags how a roster was resolved for a course.
type MembershipOutcome string

const (
	MembershipNoSelection MembershipOutcome = "no_selection"
	MembershipExactMatch  MembershipOutcome = "exact_match"
	MembershipFallbackAll MembershipOutcome = "fallback_all"
)

// MembershipDiagnostic explains a fallback to the unfiltered roster.
type MembershipDiagnostic struct {
	Target      string   `json:"target"`
	SeenCourses []string `json:"seen_courses"`
}

// MembershipResult is the tagged outcome of resolving a course roster.
type MembershipResult struct {
	Outcome    MembershipOutcome     `json:"outcome"`
	Students   []Student             `json:"-"`
	Diagnostic *MembershipDiagnostic `json:"diagnostic,omitempty"`
}

// LoadSource names one of the concurrent fetches performed on load.
type LoadSource string

const (
	LoadSourceRoster     LoadSource = "roster"
	LoadSourceAttendance LoadSource = "attendance"
	LoadSourceDailyLogs  LoadSource = "daily_logs"
)

// LoadNotice is a non-blocking warning that one load source degraded to empty.
type LoadNotice struct {
	Source  LoadSource `json:"source"`
	Message string     `json:"message"`
}

// SessionSnapshot is a read-only copy of a draft and its lifecycle metadata.
type SessionSnapshot struct {
	State      SessionState      `json:"state"`
	Draft      SessionDraft      `json:"draft"`
	Membership *MembershipResult `json:"membership,omitempty"`
	Notices    []LoadNotice      `json:"notices,omitempty"`
	LastError  string            `json:"last_error,omitempty"`
}

// SaveSummary counts the writes a successful save issued.
type SaveSummary struct {
	Created     int `json:"attendance_created"`
	Updated     int `json:"attendance_updated"`
	LogsCreated int `json:"daily_logs_created"`
}

// HistoryEntry is one merged row in a student's attendance timeline.
type HistoryEntry struct {
	Date       time.Time        `json:"date"`
	Course     string           `json:"course"`
	Status     AttendanceStatus `json:"status"`
	Topics     string           `json:"topics"`
	Remarks    string           `json:"remarks"`
	RecordedAt string           `json:"recorded_at"`
}
