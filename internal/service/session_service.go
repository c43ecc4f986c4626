package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/training-attendance-api/internal/models"
	appErrors "github.com/noah-isme/training-attendance-api/pkg/errors"
)

const defaultDraftTTL = 2 * time.Hour

// SessionSelectionRequest chooses the course and date a draft edits. An empty
// course clears the selection.
type SessionSelectionRequest struct {
	Course string `json:"course" validate:"max=255"`
	Date   string `json:"date" validate:"required"`
}

// UpdateStatusRequest sets one student's status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,attendance_status"`
}

// SessionNotesRequest replaces the shared notes of a draft.
type SessionNotesRequest struct {
	Topics  string `json:"topics" validate:"max=4000"`
	Remarks string `json:"remarks" validate:"max=2000"`
}

// OpenedSession is the identifier and initial load of a new draft.
type OpenedSession struct {
	ID string
	*LoadResult
}

type draftEntry struct {
	store    *SessionStateStore
	owner    string
	lastSeen time.Time
}

// SessionService keeps the live drafts of every editor. Each draft belongs to
// the user who opened it and expires after a period without access.
type SessionService struct {
	deps      SessionDeps
	validator *validator.Validate
	ttl       time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu     sync.Mutex
	drafts map[string]*draftEntry
}

// NewSessionService constructs the draft registry.
func NewSessionService(deps SessionDeps, validate *validator.Validate, ttl time.Duration, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultDraftTTL
	}
	deps.Logger = logger
	if deps.Resolver == nil {
		deps.Resolver = NewCourseMembershipResolver(logger, deps.Metrics)
	}
	_ = validate.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseAttendanceStatus(fl.Field().String())
		return ok
	})
	return &SessionService{
		deps:      deps,
		validator: validate,
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
		drafts:    make(map[string]*draftEntry),
	}
}

// Open creates a draft owned by caller and loads the requested selection.
func (s *SessionService) Open(ctx context.Context, caller *models.JWTClaims, req SessionSelectionRequest) (*OpenedSession, error) {
	if caller == nil || caller.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	course, date, err := s.parseSelection(req)
	if err != nil {
		return nil, err
	}

	store := NewSessionStateStore(s.deps, caller)
	result, err := store.Load(ctx, course, date)
	if err != nil {
		store.Close()
		return nil, err
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.evictLocked()
	s.drafts[id] = &draftEntry{store: store, owner: caller.UserID, lastSeen: s.now()}
	s.mu.Unlock()

	s.logger.Info("attendance draft opened",
		zap.String("session_id", id),
		zap.String("user_id", caller.UserID),
		zap.String("course", course),
	)
	return &OpenedSession{ID: id, LoadResult: result}, nil
}

// Snapshot returns the current state of a draft.
func (s *SessionService) Snapshot(caller *models.JWTClaims, id string) (models.SessionSnapshot, error) {
	store, err := s.lookup(caller, id)
	if err != nil {
		return models.SessionSnapshot{}, err
	}
	return store.Snapshot(), nil
}

// Select reloads a draft for a new selection, discarding unsaved edits.
func (s *SessionService) Select(ctx context.Context, caller *models.JWTClaims, id string, req SessionSelectionRequest) (*LoadResult, error) {
	store, err := s.lookup(caller, id)
	if err != nil {
		return nil, err
	}
	course, date, err := s.parseSelection(req)
	if err != nil {
		return nil, err
	}
	return store.Load(ctx, course, date)
}

// UpdateStatus sets one student's status in a draft.
func (s *SessionService) UpdateStatus(caller *models.JWTClaims, id, studentID string, req UpdateStatusRequest) (models.SessionSnapshot, error) {
	store, err := s.lookup(caller, id)
	if err != nil {
		return models.SessionSnapshot{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return models.SessionSnapshot{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "status must be Present, Absent or Late")
	}
	status, _ := models.ParseAttendanceStatus(req.Status)
	return store.UpdateStatus(studentID, status)
}

// SetNotes replaces the topics and remarks of a draft.
func (s *SessionService) SetNotes(caller *models.JWTClaims, id string, req SessionNotesRequest) (models.SessionSnapshot, error) {
	store, err := s.lookup(caller, id)
	if err != nil {
		return models.SessionSnapshot{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return models.SessionSnapshot{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notes")
	}
	return store.SetNotes(req.Topics, req.Remarks)
}

// Save persists a draft.
func (s *SessionService) Save(ctx context.Context, caller *models.JWTClaims, id string) (*SaveResult, error) {
	store, err := s.lookup(caller, id)
	if err != nil {
		return nil, err
	}
	return store.Save(ctx)
}

// Discard closes a draft and forgets it.
func (s *SessionService) Discard(caller *models.JWTClaims, id string) error {
	store, err := s.lookup(caller, id)
	if err != nil {
		return err
	}
	store.Close()
	s.mu.Lock()
	delete(s.drafts, id)
	s.mu.Unlock()
	return nil
}

// Len reports the number of live drafts.
func (s *SessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	return len(s.drafts)
}

func (s *SessionService) lookup(caller *models.JWTClaims, id string) (*SessionStateStore, error) {
	if caller == nil || caller.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	entry, ok := s.drafts[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	if entry.owner != caller.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "session belongs to another user")
	}
	entry.lastSeen = s.now()
	return entry.store, nil
}

func (s *SessionService) evictLocked() {
	cutoff := s.now().Add(-s.ttl)
	for id, entry := range s.drafts {
		if entry.lastSeen.Before(cutoff) {
			entry.store.Close()
			delete(s.drafts, id)
			s.logger.Debug("attendance draft expired", zap.String("session_id", id))
		}
	}
}

func (s *SessionService) parseSelection(req SessionSelectionRequest) (string, time.Time, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection")
	}
	date, err := time.Parse(models.DateLayout, req.Date)
	if err != nil {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	return req.Course, date, nil
}
