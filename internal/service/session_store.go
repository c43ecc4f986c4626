package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/training-attendance-api/internal/models"
	appErrors "github.com/noah-isme/training-attendance-api/pkg/errors"
)

// RosterProvider lists the students visible to a caller.
type RosterProvider interface {
	ListForCaller(ctx context.Context, caller *models.JWTClaims) ([]models.Student, error)
}

// AttendanceStore persists attendance records.
type AttendanceStore interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
	Create(ctx context.Context, record models.AttendanceRecord) (*models.AttendanceRecord, error)
	Update(ctx context.Context, id string, record models.AttendanceRecord) (*models.AttendanceRecord, error)
}

// DailyLogStore persists daily log entries.
type DailyLogStore interface {
	List(ctx context.Context, filter models.DailyLogFilter) ([]models.DailyLogEntry, error)
	Create(ctx context.Context, entry models.DailyLogEntry) (*models.DailyLogEntry, error)
}

// SessionDeps bundles the collaborators shared by every session store.
type SessionDeps struct {
	Roster              RosterProvider
	Attendance          AttendanceStore
	DailyLogs           DailyLogStore
	Resolver            *CourseMembershipResolver
	Metrics             *MetricsService
	Logger              *zap.Logger
	MaxConcurrentWrites int
}

// LoadResult is returned by Load.
type LoadResult struct {
	Snapshot       models.SessionSnapshot `json:"session"`
	DiscardedEdits bool                   `json:"discarded_edits"`
}

// SaveResult is returned by a successful Save.
type SaveResult struct {
	Summary  models.SaveSummary     `json:"summary"`
	Snapshot models.SessionSnapshot `json:"session"`
}

// SessionStateStore holds one trainer's attendance draft for a (course, date)
// and drives it through load, edit and save.
type SessionStateStore struct {
	deps   SessionDeps
	caller *models.JWTClaims
	logger *zap.Logger

	mu         sync.Mutex
	state      models.SessionState
	draft      models.SessionDraft
	membership *models.MembershipResult
	notices    []models.LoadNotice
	lastError  string
	edited     bool
	generation uint64
	closed     bool
}

// NewSessionStateStore creates an idle store acting on behalf of caller.
func NewSessionStateStore(deps SessionDeps, caller *models.JWTClaims) *SessionStateStore {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Resolver == nil {
		deps.Resolver = NewCourseMembershipResolver(deps.Logger, deps.Metrics)
	}
	logger := deps.Logger
	if caller != nil {
		logger = logger.With(zap.String("user_id", caller.UserID))
	}
	return &SessionStateStore{
		deps:   deps,
		caller: caller,
		logger: logger,
		state:  models.SessionStateIdle,
		draft:  models.SessionDraft{Roster: []models.RosterEntry{}},
	}
}

type loadOutcome struct {
	draft      models.SessionDraft
	membership models.MembershipResult
	notices    []models.LoadNotice
}

// Load replaces the draft with a fresh one for course and date. Unsaved edits
// are discarded and reported. An empty course performs no fetch and leaves the
// store idle.
func (s *SessionStateStore) Load(ctx context.Context, course string, date time.Time) (*LoadResult, error) {
	course = strings.TrimSpace(course)
	if course != "" && date.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date is required")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, appErrors.ErrSessionClosed
	}
	s.generation++
	gen := s.generation
	discarded := s.edited
	if course == "" {
		s.applyLocked(loadOutcome{
			draft:      models.SessionDraft{Date: models.DateOnly(date), Roster: []models.RosterEntry{}},
			membership: models.MembershipResult{Outcome: models.MembershipNoSelection},
		}, models.SessionStateIdle)
		result := &LoadResult{Snapshot: s.snapshotLocked(), DiscardedEdits: discarded}
		s.mu.Unlock()
		return result, nil
	}
	s.mu.Unlock()

	outcome := s.fetch(ctx, course, models.DateOnly(date))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.generation != gen {
		return nil, appErrors.ErrStaleSession
	}
	s.applyLocked(outcome, models.SessionStateLoaded)
	if discarded {
		s.logger.Info("discarded unsaved attendance edits", zap.String("course", course))
	}
	return &LoadResult{Snapshot: s.snapshotLocked(), DiscardedEdits: discarded}, nil
}

// fetch reads the roster, the existing records and the daily logs concurrently.
// Each source fails on its own and degrades to empty with a notice.
func (s *SessionStateStore) fetch(ctx context.Context, course string, date time.Time) loadOutcome {
	var (
		students   []models.Student
		records    []models.AttendanceRecord
		entries    []models.DailyLogEntry
		rosterErr  error
		recordsErr error
		entriesErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		students, rosterErr = s.deps.Roster.ListForCaller(ctx, s.caller)
		return nil
	})
	g.Go(func() error {
		records, recordsErr = s.deps.Attendance.List(ctx, models.AttendanceFilter{Course: course, Date: &date})
		return nil
	})
	g.Go(func() error {
		entries, entriesErr = s.deps.DailyLogs.List(ctx, models.DailyLogFilter{Course: course, Date: &date})
		return nil
	})
	_ = g.Wait()

	var notices []models.LoadNotice
	degrade := func(source models.LoadSource, err error, message string) {
		if err == nil {
			return
		}
		s.logger.Warn("session load source degraded",
			zap.String("source", string(source)),
			zap.String("course", course),
			zap.Error(err),
		)
		s.deps.Metrics.RecordLoadDegraded(source)
		notices = append(notices, models.LoadNotice{Source: source, Message: message})
	}
	degrade(models.LoadSourceRoster, rosterErr, "students could not be loaded")
	degrade(models.LoadSourceAttendance, recordsErr, "existing attendance could not be loaded")
	degrade(models.LoadSourceDailyLogs, entriesErr, "daily logs could not be loaded")
	if rosterErr != nil {
		students = nil
	}
	if recordsErr != nil {
		records = nil
	}
	if entriesErr != nil {
		entries = nil
	}

	membership := s.deps.Resolver.Resolve(students, course)

	existing := make(map[string]models.AttendanceRecord, len(records))
	for _, record := range records {
		if _, ok := existing[record.StudentID]; !ok {
			existing[record.StudentID] = record
		}
	}

	roster := make([]models.RosterEntry, 0, len(membership.Students))
	for _, student := range membership.Students {
		entry := models.RosterEntry{Student: student, Status: models.AttendanceStatusPresent}
		if record, ok := existing[student.ID]; ok {
			id := record.ID
			entry.ExistingRecordID = &id
			if record.Status.Valid() {
				entry.Status = record.Status
			}
		}
		roster = append(roster, entry)
	}

	draft := models.SessionDraft{Course: course, Date: date, Roster: roster}
	if len(entries) > 0 {
		draft.Topics = entries[0].TopicsCovered
		draft.Remarks = entries[0].Remarks()
	}
	return loadOutcome{draft: draft, membership: membership, notices: notices}
}

func (s *SessionStateStore) applyLocked(outcome loadOutcome, state models.SessionState) {
	membership := outcome.membership
	s.draft = outcome.draft
	s.membership = &membership
	s.notices = outcome.notices
	s.state = state
	s.lastError = ""
	s.edited = false
}

// UpdateStatus sets one student's status locally.
func (s *SessionStateStore) UpdateStatus(studentID string, status models.AttendanceStatus) (models.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return models.SessionSnapshot{}, err
	}
	if !status.Valid() {
		return models.SessionSnapshot{}, appErrors.Clone(appErrors.ErrValidation, "status must be Present, Absent or Late")
	}
	for i := range s.draft.Roster {
		if s.draft.Roster[i].Student.ID == studentID {
			s.draft.Roster[i].Status = status
			s.markDirtyLocked()
			return s.snapshotLocked(), nil
		}
	}
	return models.SessionSnapshot{}, appErrors.Clone(appErrors.ErrNotFound, "student is not on this roster")
}

// SetNotes replaces the shared topics and remarks of the session.
func (s *SessionStateStore) SetNotes(topics, remarks string) (models.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return models.SessionSnapshot{}, err
	}
	s.draft.Topics = topics
	s.draft.Remarks = remarks
	s.markDirtyLocked()
	return s.snapshotLocked(), nil
}

func (s *SessionStateStore) editableLocked() error {
	if s.closed {
		return appErrors.ErrSessionClosed
	}
	switch s.state {
	case models.SessionStateIdle:
		return appErrors.Clone(appErrors.ErrInvalidTransition, "select a course and date first")
	case models.SessionStateSaving:
		return appErrors.Clone(appErrors.ErrInvalidTransition, "session is being saved")
	}
	return nil
}

func (s *SessionStateStore) markDirtyLocked() {
	s.state = models.SessionStateDirty
	s.edited = true
	s.lastError = ""
}

// Save writes every roster status and, when topics are set, one daily log entry
// per student. All writes are issued concurrently; the first failure moves the
// store to the error state and the draft is kept for a retry. Writes that
// already succeeded are not undone. On success the draft is reloaded from the
// stores.
func (s *SessionStateStore) Save(ctx context.Context) (*SaveResult, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, appErrors.ErrSessionClosed
	}
	if s.draft.Course == "" || s.state == models.SessionStateIdle {
		s.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrValidation, "course is required")
	}
	if s.state == models.SessionStateSaving {
		s.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "session is already being saved")
	}
	gen := s.generation
	draft := s.draft.Clone()
	s.state = models.SessionStateSaving
	s.mu.Unlock()

	started := time.Now()
	summary, err := s.write(ctx, draft)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.deps.Metrics.RecordSave(false, models.SaveSummary{}, time.Since(started))
		s.logger.Error("failed to save attendance",
			zap.String("course", draft.Course),
			zap.String("date", draft.Date.Format(models.DateLayout)),
			zap.Error(err),
		)
		if s.closed || s.generation != gen {
			return nil, appErrors.ErrStaleSession
		}
		s.state = models.SessionStateError
		s.lastError = appErrors.ErrSaveFailed.Message
		return nil, appErrors.ErrSaveFailed
	}

	outcome := s.fetch(ctx, draft.Course, draft.Date)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.deps.Metrics.RecordSave(true, summary, time.Since(started))
	if s.closed || s.generation != gen {
		return nil, appErrors.ErrStaleSession
	}
	s.applyLocked(outcome, models.SessionStateLoaded)
	return &SaveResult{Summary: summary, Snapshot: s.snapshotLocked()}, nil
}

func (s *SessionStateStore) write(ctx context.Context, draft models.SessionDraft) (models.SaveSummary, error) {
	ops := PlanAttendance(draft)
	entries := PlanDailyLogs(draft)

	var g errgroup.Group
	if s.deps.MaxConcurrentWrites > 0 {
		g.SetLimit(s.deps.MaxConcurrentWrites)
	}
	var summary models.SaveSummary
	for _, op := range ops {
		op := op
		switch op.Kind {
		case models.AttendanceOperationUpdate:
			summary.Updated++
			g.Go(func() error {
				_, err := s.deps.Attendance.Update(ctx, op.RecordID, op.Record)
				return err
			})
		default:
			summary.Created++
			g.Go(func() error {
				_, err := s.deps.Attendance.Create(ctx, op.Record)
				return err
			})
		}
	}
	for _, entry := range entries {
		entry := entry
		summary.LogsCreated++
		g.Go(func() error {
			_, err := s.deps.DailyLogs.Create(ctx, entry)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return models.SaveSummary{}, err
	}
	return summary, nil
}

// Snapshot returns a copy of the draft and its lifecycle metadata.
func (s *SessionStateStore) Snapshot() models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *SessionStateStore) snapshotLocked() models.SessionSnapshot {
	snapshot := models.SessionSnapshot{
		State:     s.state,
		Draft:     s.draft.Clone(),
		LastError: s.lastError,
	}
	if s.membership != nil {
		membership := *s.membership
		if membership.Diagnostic != nil {
			diagnostic := *membership.Diagnostic
			diagnostic.SeenCourses = append([]string(nil), diagnostic.SeenCourses...)
			membership.Diagnostic = &diagnostic
		}
		membership.Students = nil
		snapshot.Membership = &membership
	}
	if len(s.notices) > 0 {
		snapshot.Notices = append([]models.LoadNotice(nil), s.notices...)
	}
	return snapshot
}

// Close discards the draft. Results of in-flight calls are dropped and later
// calls fail.
func (s *SessionStateStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.generation++
}
