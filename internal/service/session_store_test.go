package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/training-attendance-api/internal/models"
	appErrors "github.com/noah-isme/training-attendance-api/pkg/errors"
)

var sessionDate = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

type sessionFixture struct {
	roster     *fakeRoster
	attendance *fakeAttendance
	logs       *fakeDailyLogs
	store      *SessionStateStore
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		roster:     &fakeRoster{students: threeStudents()},
		attendance: &fakeAttendance{},
		logs:       &fakeDailyLogs{},
	}
	f.store = NewSessionStateStore(SessionDeps{
		Roster:     f.roster,
		Attendance: f.attendance,
		DailyLogs:  f.logs,
		Metrics:    NewMetricsService(),
	}, trainerClaims())
	return f
}

func TestSessionStoreLoadSeedsDefaults(t *testing.T) {
	f := newSessionFixture(t)
	f.attendance.records = []models.AttendanceRecord{
		{ID: "42", StudentID: "s2", Course: "Hair Styling", Date: sessionDate, Status: models.AttendanceStatusLate},
	}
	f.logs.entries = []models.DailyLogEntry{
		{ID: "l2", StudentID: "s1", Course: "Hair Styling", ReportDate: sessionDate, TopicsCovered: "Braiding", TrainerRemarks: strPtr("Good")},
		{ID: "l1", StudentID: "s2", Course: "Hair Styling", ReportDate: sessionDate, TopicsCovered: "Older"},
	}

	result, err := f.store.Load(context.Background(), "Hair Styling", sessionDate.Add(9*time.Hour))
	require.NoError(t, err)
	snap := result.Snapshot
	assert.Equal(t, models.SessionStateLoaded, snap.State)
	assert.False(t, result.DiscardedEdits)
	assert.Equal(t, sessionDate, snap.Draft.Date)
	require.Len(t, snap.Draft.Roster, 3)

	byID := map[string]models.RosterEntry{}
	for _, entry := range snap.Draft.Roster {
		byID[entry.Student.ID] = entry
	}
	assert.Equal(t, models.AttendanceStatusPresent, byID["s1"].Status)
	assert.Nil(t, byID["s1"].ExistingRecordID)
	assert.Equal(t, models.AttendanceStatusLate, byID["s2"].Status)
	require.NotNil(t, byID["s2"].ExistingRecordID)
	assert.Equal(t, "42", *byID["s2"].ExistingRecordID)

	assert.Equal(t, "Braiding", snap.Draft.Topics)
	assert.Equal(t, "Good", snap.Draft.Remarks)
	require.NotNil(t, snap.Membership)
	assert.Equal(t, models.MembershipExactMatch, snap.Membership.Outcome)
}

func TestSessionStoreEmptyCourseIssuesNoFetch(t *testing.T) {
	f := newSessionFixture(t)

	result, err := f.store.Load(context.Background(), "  ", sessionDate)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStateIdle, result.Snapshot.State)
	assert.Empty(t, result.Snapshot.Draft.Roster)
	assert.Zero(t, f.roster.calls)
	assert.Zero(t, f.attendance.lists)
	assert.Zero(t, f.logs.lists)

	_, err = f.store.Save(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Zero(t, f.attendance.creates)
}

func TestSessionStoreSaveRoundTrip(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	_, err := f.store.Load(ctx, "Hair Styling", sessionDate)
	require.NoError(t, err)
	_, err = f.store.UpdateStatus("s1", models.AttendanceStatusAbsent)
	require.NoError(t, err)
	_, err = f.store.UpdateStatus("s3", models.AttendanceStatusLate)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStateDirty, f.store.Snapshot().State)

	saved, err := f.store.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SaveSummary{Created: 3}, saved.Summary)
	assert.Equal(t, models.SessionStateLoaded, saved.Snapshot.State)

	want := map[string]models.AttendanceStatus{
		"s1": models.AttendanceStatusAbsent,
		"s2": models.AttendanceStatusPresent,
		"s3": models.AttendanceStatusLate,
	}
	for _, entry := range saved.Snapshot.Draft.Roster {
		assert.Equal(t, want[entry.Student.ID], entry.Status, entry.Student.ID)
		assert.NotNil(t, entry.ExistingRecordID, entry.Student.ID)
	}

	_, err = f.store.UpdateStatus("s2", models.AttendanceStatusAbsent)
	require.NoError(t, err)
	saved, err = f.store.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SaveSummary{Updated: 3}, saved.Summary)
	assert.Len(t, f.attendance.records, 3)
}

func TestSessionStoreSavingTwiceDoublesDailyLogs(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	_, err := f.store.Load(ctx, "Hair Styling", sessionDate)
	require.NoError(t, err)
	_, err = f.store.SetNotes("Blow-drying", "")
	require.NoError(t, err)

	saved, err := f.store.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, saved.Summary.LogsCreated)
	assert.Equal(t, 3, f.logs.count())
	assert.Equal(t, "Blow-drying", saved.Snapshot.Draft.Topics)

	_, err = f.store.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, f.logs.count())
}

func TestSessionStoreAttendanceFetchFailureDegrades(t *testing.T) {
	f := newSessionFixture(t)
	f.attendance.listErr = errStoreDown

	result, err := f.store.Load(context.Background(), "Hair Styling", sessionDate)
	require.NoError(t, err)
	snap := result.Snapshot
	assert.Equal(t, models.SessionStateLoaded, snap.State)
	require.Len(t, snap.Draft.Roster, 3)
	for _, entry := range snap.Draft.Roster {
		assert.Nil(t, entry.ExistingRecordID)
		assert.Equal(t, models.AttendanceStatusPresent, entry.Status)
	}
	require.Len(t, snap.Notices, 1)
	assert.Equal(t, models.LoadSourceAttendance, snap.Notices[0].Source)
}

func TestSessionStoreSaveFailureAllowsRetry(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	_, err := f.store.Load(ctx, "Hair Styling", sessionDate)
	require.NoError(t, err)
	_, err = f.store.UpdateStatus("s1", models.AttendanceStatusLate)
	require.NoError(t, err)

	f.attendance.createErr = errStoreDown
	_, err = f.store.Save(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrSaveFailed))
	assert.NotContains(t, err.Error(), errStoreDown.Error())

	snap := f.store.Snapshot()
	assert.Equal(t, models.SessionStateError, snap.State)
	assert.Equal(t, "failed to save attendance", snap.LastError)
	assert.Equal(t, models.AttendanceStatusLate, snap.Draft.Roster[0].Status)

	f.attendance.createErr = nil
	saved, err := f.store.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStateLoaded, saved.Snapshot.State)
	assert.Empty(t, saved.Snapshot.LastError)
}

func TestSessionStoreUpdateStatusValidation(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.store.UpdateStatus("s1", models.AttendanceStatusPresent)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))

	_, err = f.store.Load(context.Background(), "Hair Styling", sessionDate)
	require.NoError(t, err)

	_, err = f.store.UpdateStatus("nobody", models.AttendanceStatusPresent)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = f.store.UpdateStatus("s1", models.AttendanceStatus("Sick"))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, models.SessionStateLoaded, f.store.Snapshot().State)
}

func TestSessionStoreSelectionChangeDiscardsEdits(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	_, err := f.store.Load(ctx, "Hair Styling", sessionDate)
	require.NoError(t, err)
	_, err = f.store.UpdateStatus("s1", models.AttendanceStatusAbsent)
	require.NoError(t, err)

	result, err := f.store.Load(ctx, "Hair Styling", sessionDate.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, result.DiscardedEdits)
	assert.Equal(t, models.AttendanceStatusPresent, result.Snapshot.Draft.Roster[0].Status)
}

func TestSessionStoreFallbackMembership(t *testing.T) {
	f := newSessionFixture(t)

	result, err := f.store.Load(context.Background(), "Barbering", sessionDate)
	require.NoError(t, err)
	require.NotNil(t, result.Snapshot.Membership)
	assert.Equal(t, models.MembershipFallbackAll, result.Snapshot.Membership.Outcome)
	assert.Len(t, result.Snapshot.Draft.Roster, 3)
	require.NotNil(t, result.Snapshot.Membership.Diagnostic)
	assert.Equal(t, []string{"hair styling", "makeup"}, result.Snapshot.Membership.Diagnostic.SeenCourses)
}

func TestSessionStoreClosedRejectsCalls(t *testing.T) {
	f := newSessionFixture(t)
	f.store.Close()

	_, err := f.store.Load(context.Background(), "Hair Styling", sessionDate)
	assert.True(t, errors.Is(err, appErrors.ErrSessionClosed))
	_, err = f.store.Save(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrSessionClosed))
}

type blockingRoster struct {
	release chan struct{}
	entered chan struct{}
}

func (b *blockingRoster) ListForCaller(ctx context.Context, caller *models.JWTClaims) ([]models.Student, error) {
	close(b.entered)
	<-b.release
	return threeStudents(), nil
}

func TestSessionStoreDiscardsStaleLoad(t *testing.T) {
	roster := &blockingRoster{release: make(chan struct{}), entered: make(chan struct{})}
	store := NewSessionStateStore(SessionDeps{
		Roster:     roster,
		Attendance: &fakeAttendance{},
		DailyLogs:  &fakeDailyLogs{},
	}, trainerClaims())

	errCh := make(chan error, 1)
	go func() {
		_, err := store.Load(context.Background(), "Hair Styling", sessionDate)
		errCh <- err
	}()
	<-roster.entered
	store.Close()
	close(roster.release)

	err := <-errCh
	assert.True(t, errors.Is(err, appErrors.ErrStaleSession))
}

type blockingAttendance struct {
	*fakeAttendance
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (b *blockingAttendance) Create(ctx context.Context, record models.AttendanceRecord) (*models.AttendanceRecord, error) {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return b.fakeAttendance.Create(ctx, record)
}

func TestSessionStoreDiscardsStaleSave(t *testing.T) {
	attendance := &blockingAttendance{
		fakeAttendance: &fakeAttendance{},
		entered:        make(chan struct{}),
		release:        make(chan struct{}),
	}
	store := NewSessionStateStore(SessionDeps{
		Roster:     &fakeRoster{students: threeStudents()},
		Attendance: attendance,
		DailyLogs:  &fakeDailyLogs{},
	}, trainerClaims())
	_, err := store.Load(context.Background(), "Hair Styling", sessionDate)
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, err := store.Save(context.Background())
		errCh <- err
	}()
	<-attendance.entered
	store.Close()
	close(attendance.release)

	err = <-errCh
	assert.True(t, errors.Is(err, appErrors.ErrStaleSession))
	// writes already issued are kept
	assert.Equal(t, 3, attendance.creates)
	_, err = store.Save(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrSessionClosed))
}
