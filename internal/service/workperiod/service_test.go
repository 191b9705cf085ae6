package workperiod

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/worklens/timeledger-backend-go/internal/domain/compliance"
	"github.com/worklens/timeledger-backend-go/internal/domain/ledger"
	"github.com/worklens/timeledger-backend-go/internal/domain/policy"
	"github.com/worklens/timeledger-backend-go/internal/domain/session"
	"github.com/worklens/timeledger-backend-go/internal/domain/workperiod"
	ledgerService "github.com/worklens/timeledger-backend-go/internal/service/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePeriodRepo struct {
	periods map[string]workperiod.WorkPeriod
	order   []string
}

func newFakePeriodRepo() *fakePeriodRepo {
	return &fakePeriodRepo{periods: make(map[string]workperiod.WorkPeriod)}
}

func (f *fakePeriodRepo) Create(_ context.Context, period workperiod.WorkPeriod) (workperiod.WorkPeriod, error) {
	period.CreatedAt = time.Now().UTC()
	period.UpdatedAt = period.CreatedAt
	f.periods[period.ID] = period
	f.order = append(f.order, period.ID)
	return period, nil
}

func (f *fakePeriodRepo) GetByID(_ context.Context, id string) (workperiod.WorkPeriod, error) {
	period, ok := f.periods[id]
	if !ok {
		return workperiod.WorkPeriod{}, workperiod.ErrWorkPeriodNotFound
	}
	return period, nil
}

func (f *fakePeriodRepo) GetActive(_ context.Context, employeeID string) (*workperiod.WorkPeriod, error) {
	for _, id := range f.order {
		p, ok := f.periods[id]
		if ok && p.EmployeeID == employeeID && p.EndTime == nil {
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakePeriodRepo) Update(_ context.Context, period workperiod.WorkPeriod) error {
	if _, ok := f.periods[period.ID]; !ok {
		return workperiod.ErrWorkPeriodNotFound
	}
	period.UpdatedAt = time.Now().UTC()
	f.periods[period.ID] = period
	return nil
}

func (f *fakePeriodRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.periods[id]; !ok {
		return workperiod.ErrWorkPeriodNotFound
	}
	delete(f.periods, id)
	return nil
}

func (f *fakePeriodRepo) ListCompletedBetween(_ context.Context, employeeID string, from, to time.Time) ([]workperiod.WorkPeriod, error) {
	var out []workperiod.WorkPeriod
	for _, id := range f.order {
		p, ok := f.periods[id]
		if !ok || p.EmployeeID != employeeID || p.EndTime == nil {
			continue
		}
		if p.StartTime.Before(from) || !p.StartTime.Before(to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePeriodRepo) ListByEmployee(_ context.Context, employeeID string, _ workperiod.PeriodFilter) ([]workperiod.WorkPeriod, int64, error) {
	var out []workperiod.WorkPeriod
	for _, id := range f.order {
		if p, ok := f.periods[id]; ok && p.EmployeeID == employeeID {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

type fakeEventRepo struct {
	events []ledger.TimeEvent
}

func (f *fakeEventRepo) Create(_ context.Context, event ledger.TimeEvent) (ledger.TimeEvent, error) {
	event.CreatedAt = time.Now().UTC()
	f.events = append(f.events, event)
	return event, nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id string) (ledger.TimeEvent, error) {
	for _, e := range f.events {
		if e.ID == id {
			return e, nil
		}
	}
	return ledger.TimeEvent{}, ledger.ErrEventNotFound
}

func (f *fakeEventRepo) GetChainTip(_ context.Context, employeeID string) (*ledger.TimeEvent, error) {
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].EmployeeID == employeeID {
			e := f.events[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (f *fakeEventRepo) MarkSuperseded(_ context.Context, eventID string, byEventID string, note *string) error {
	for i := range f.events {
		if f.events[i].ID == eventID {
			f.events[i].IsSuperseded = true
			if byEventID != "" {
				f.events[i].SupersededByID = &byEventID
			}
			if note != nil {
				f.events[i].Notes = note
			}
			return nil
		}
	}
	return ledger.ErrEventNotFound
}

func (f *fakeEventRepo) ClearSuperseded(_ context.Context, eventID string) error {
	for i := range f.events {
		if f.events[i].ID == eventID {
			f.events[i].IsSuperseded = false
			f.events[i].SupersededByID = nil
			return nil
		}
	}
	return ledger.ErrEventNotFound
}

func (f *fakeEventRepo) ListChain(_ context.Context, employeeID string) ([]ledger.TimeEvent, error) {
	var out []ledger.TimeEvent
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].EmployeeID == employeeID {
			out = append(out, f.events[i])
		}
	}
	return out, nil
}

func (f *fakeEventRepo) ListByEmployee(_ context.Context, employeeID string, _ ledger.EventFilter) ([]ledger.TimeEvent, int64, error) {
	events, _ := f.ListChain(context.Background(), employeeID)
	return events, int64(len(events)), nil
}

type passthroughTxRunner struct{}

func (passthroughTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeSettings struct{}

func (fakeSettings) GetTimezone(_ context.Context, _ string) (string, error) { return "UTC", nil }

// stubResolver returns a fixed capability and clock-out approval answer.
type stubResolver struct {
	capability    policy.EditCapability
	needsApproval bool
	err           error
}

func (s stubResolver) ResolvePolicy(_ context.Context, _ string) (policy.ChangePolicy, error) {
	return policy.ChangePolicy{}, s.err
}

func (s stubResolver) GetEditCapability(_ context.Context, _ string, _ time.Time, _ string) (policy.EditCapability, error) {
	return s.capability, s.err
}

func (s stubResolver) CheckClockOutNeedsApproval(_ context.Context, _ string) (bool, error) {
	return s.needsApproval, s.err
}

type testEnv struct {
	svc        *WorkPeriodServiceImpl
	periodRepo *fakePeriodRepo
	eventRepo  *fakeEventRepo
	ledgerSvc  ledger.Service
}

func newTestEnv(resolver policy.Resolver, now time.Time) *testEnv {
	periodRepo := newFakePeriodRepo()
	eventRepo := &fakeEventRepo{}
	ledgerSvc := ledgerService.NewLedgerService(eventRepo)
	svc := NewWorkPeriodService(passthroughTxRunner{}, periodRepo, ledgerSvc, resolver, fakeSettings{}, nil)
	svc.now = func() time.Time { return now }
	return &testEnv{svc: svc, periodRepo: periodRepo, eventRepo: eventRepo, ledgerSvc: ledgerSvc}
}

var (
	testPrincipal = session.Principal{UserID: "user-1", EmployeeID: "emp-1", OrganizationID: "org-1"}
	testMeta      = session.ClientMeta{}
)

func TestClockInCreatesActivePeriod(t *testing.T) {
	now := time.Date(2024, 6, 14, 8, 0, 0, 0, time.UTC)
	env := newTestEnv(stubResolver{}, now)
	ctx := context.Background()

	resp, err := env.svc.ClockIn(ctx, testPrincipal, testMeta, workperiod.ClockInRequest{})
	require.NoError(t, err)
	assert.Equal(t, "emp-1", resp.EmployeeID)
	assert.Nil(t, resp.EndTime)
	assert.Equal(t, workperiod.StatusApproved, resp.ApprovalStatus)

	active, err := env.periodRepo.GetActive(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, now, active.StartTime)
	require.Len(t, env.eventRepo.events, 1)
	assert.Equal(t, ledger.KindClockIn, env.eventRepo.events[0].Kind)
}

func TestClockInWhileActiveIsRejected(t *testing.T) {
	env := newTestEnv(stubResolver{}, time.Now().UTC())
	ctx := context.Background()

	_, err := env.svc.ClockIn(ctx, testPrincipal, testMeta, workperiod.ClockInRequest{})
	require.NoError(t, err)

	_, err = env.svc.ClockIn(ctx, testPrincipal, testMeta, workperiod.ClockInRequest{})
	assert.ErrorIs(t, err, workperiod.ErrAlreadyClockedIn)

	// Exactly one period and one event; the rejection wrote nothing.
	assert.Len(t, env.periodRepo.order, 1)
	assert.Len(t, env.eventRepo.events, 1)
}

func TestClockOutWithoutActiveIsRejected(t *testing.T) {
	env := newTestEnv(stubResolver{}, time.Now().UTC())

	_, err := env.svc.ClockOut(context.Background(), testPrincipal, testMeta, workperiod.ClockOutRequest{})
	assert.ErrorIs(t, err, workperiod.ErrNotClockedIn)
}

func TestClockOutCompletesPeriod(t *testing.T) {
	start := time.Date(2024, 6, 14, 8, 0, 0, 0, time.UTC)
	env := newTestEnv(stubResolver{}, start)
	ctx := context.Background()

	_, err := env.svc.ClockIn(ctx, testPrincipal, testMeta, workperiod.ClockInRequest{})
	require.NoError(t, err)

	env.svc.now = func() time.Time { return start.Add(8 * time.Hour) }
	resp, err := env.svc.ClockOut(ctx, testPrincipal, testMeta, workperiod.ClockOutRequest{})
	require.NoError(t, err)
	assert.False(t, resp.RequiresApproval)
	require.NotNil(t, resp.Period.DurationMinutes)
	assert.Equal(t, 480, *resp.Period.DurationMinutes)
	assert.Equal(t, workperiod.StatusApproved, resp.Period.ApprovalStatus)

	active, err := env.periodRepo.GetActive(ctx, "emp-1")
	require.NoError(t, err)
	assert.Nil(t, active)

	report, err := env.ledgerSvc.VerifyChain(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, report.Intact)
	assert.Equal(t, 2, report.Length)
}

func TestClockOutWithPastTimestamp(t *testing.T) {
	start := time.Date(2024, 6, 14, 8, 0, 0, 0, time.UTC)
	env := newTestEnv(stubResolver{}, start)
	ctx := context.Background()

	_, err := env.svc.ClockIn(ctx, testPrincipal, testMeta, workperiod.ClockInRequest{})
	require.NoError(t, err)

	env.svc.now = func() time.Time { return start.Add(9 * time.Hour) }

	// The desktop client closes the session at the moment a break started.
	ts := start.Add(7 * time.Hour).Format(time.RFC3339)
	resp, err := env.svc.ClockOut(ctx, testPrincipal, testMeta, workperiod.ClockOutRequest{Timestamp: &ts})
	require.NoError(t, err)
	require.NotNil(t, resp.Period.DurationMinutes)
	assert.Equal(t, 420, *resp.Period.DurationMinutes)
}

func TestClockOutRejectsBadTimestamps(t *testing.T) {
	start := time.Date(2024, 6, 14, 8, 0, 0, 0, time.UTC)
	env := newTestEnv(stubResolver{}, start)
	ctx := context.Background()

	_, err := env.svc.ClockIn(ctx, testPrincipal, testMeta, workperiod.ClockInRequest{})
	require.NoError(t, err)

	env.svc.now = func() time.Time { return start.Add(4 * time.Hour) }

	future := start.Add(5 * time.Hour).Format(time.RFC3339)
	_, err = env.svc.ClockOut(ctx, testPrincipal, testMeta, workperiod.ClockOutRequest{Timestamp: &future})
	assert.ErrorIs(t, err, workperiod.ErrClockOutInFuture)

	beforeIn := start.Add(-time.Hour).Format(time.RFC3339)
	_, err = env.svc.ClockOut(ctx, testPrincipal, testMeta, workperiod.ClockOutRequest{Timestamp: &beforeIn})
	assert.ErrorIs(t, err, workperiod.ErrClockOutNotAfterIn)

	// The period is still open after both rejections.
	active, err := env.periodRepo.GetActive(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, active)
}

func TestClockOutZeroDayPolicyGoesPending(t *testing.T) {
	start := time.Date(2024, 6, 14, 8, 0, 0, 0, time.UTC)
	env := newTestEnv(stubResolver{needsApproval: true}, start)
	ctx := context.Background()

	_, err := env.svc.ClockIn(ctx, testPrincipal, testMeta, workperiod.ClockInRequest{})
	require.NoError(t, err)

	env.svc.now = func() time.Time { return start.Add(8 * time.Hour) }
	resp, err := env.svc.ClockOut(ctx, testPrincipal, testMeta, workperiod.ClockOutRequest{})
	require.NoError(t, err)
	assert.True(t, resp.RequiresApproval)
	assert.Equal(t, workperiod.StatusPending, resp.Period.ApprovalStatus)
	require.NotNil(t, resp.Period.PendingChanges)
}

func TestClockOutPolicyFailureFallsBackToApproval(t *testing.T) {
	start := time.Date(2024, 6, 14, 8, 0, 0, 0, time.UTC)
	env := newTestEnv(stubResolver{err: errors.New("policy store down")}, start)
	ctx := context.Background()

	// Clock-in never consults the policy, so it succeeds regardless.
	_, err := env.svc.ClockIn(ctx, testPrincipal, testMeta, workperiod.ClockInRequest{})
	require.NoError(t, err)

	env.svc.now = func() time.Time { return start.Add(8 * time.Hour) }
	resp, err := env.svc.ClockOut(ctx, testPrincipal, testMeta, workperiod.ClockOutRequest{})
	require.NoError(t, err)
	assert.True(t, resp.RequiresApproval)
	assert.Equal(t, workperiod.StatusPending, resp.Period.ApprovalStatus)
}

func TestEditDirectReplacesEvents(t *testing.T) {
	start := time.Date(2024, 6, 14, 8, 2, 0, 0, time.UTC)
	env := newTestEnv(stubResolver{capability: policy.EditCapability{Kind: policy.CapabilityDirect}}, start)
	ctx := context.Background()

	_, err := env.svc.ClockIn(ctx, testPrincipal, testMeta, workperiod.ClockInRequest{})
	require.NoError(t, err)
	env.svc.now = func() time.Time { return start.Add(8 * time.Hour) }
	out, err := env.svc.ClockOut(ctx, testPrincipal, testMeta, workperiod.ClockOutRequest{})
	require.NoError(t, err)

	originalInEventID := env.eventRepo.events[0].ID
	originalOutEventID := env.eventRepo.events[1].ID

	// Edited the next morning.
	env.svc.now = func() time.Time { return start.Add(24 * time.Hour) }

	reason := "forgot to clock in on arrival"
	outTime := "16:30"
	resp, err := env.svc.EditDirect(ctx, testPrincipal, testMeta, workperiod.EditRequest{
		ID:           out.Period.ID,
		ClockInTime:  "07:45",
		ClockOutTime: &outTime,
		Reason:       &reason,
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-14T07:45:00Z", resp.StartTime)
	require.NotNil(t, resp.EndTime)
	assert.Equal(t, "2024-06-14T16:30:00Z", *resp.EndTime)
	require.NotNil(t, resp.DurationMinutes)
	assert.Equal(t, 525, *resp.DurationMinutes)

	// Original events are superseded by corrections; the chain has four
	// events and still verifies.
	inEvent, err := env.ledgerSvc.GetEvent(ctx, originalInEventID)
	require.NoError(t, err)
	assert.True(t, inEvent.IsSuperseded)
	outEvent, err := env.ledgerSvc.GetEvent(ctx, originalOutEventID)
	require.NoError(t, err)
	assert.True(t, outEvent.IsSuperseded)

	report, err := env.ledgerSvc.VerifyChain(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, report.Intact)
	assert.Equal(t, 4, report.Length)
}

func TestEditDirectHonorsPolicyGate(t *testing.T) {
	start := time.Date(2024, 6, 14, 8, 0, 0, 0, time.UTC)

	for _, tt := range []struct {
		name       string
		capability policy.EditCapability
		expected   error
	}{
		{"approval required", policy.EditCapability{Kind: policy.CapabilityApprovalRequired}, workperiod.ErrApprovalRequired},
		{"forbidden", policy.EditCapability{Kind: policy.CapabilityForbidden, DaysBack: 14}, workperiod.ErrEditForbidden},
	} {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(stubResolver{capability: tt.capability}, start)
			ctx := context.Background()

			_, err := env.svc.ClockIn(ctx, testPrincipal, testMeta, workperiod.ClockInRequest{})
			require.NoError(t, err)
			env.svc.now = func() time.Time { return start.Add(8 * time.Hour) }
			out, err := env.svc.ClockOut(ctx, testPrincipal, testMeta, workperiod.ClockOutRequest{})
			require.NoError(t, err)

			_, err = env.svc.EditDirect(ctx, testPrincipal, testMeta, workperiod.EditRequest{
				ID:          out.Period.ID,
				ClockInTime: "07:00",
			})
			assert.ErrorIs(t, err, tt.expected)

			// Nothing was written.
			assert.Len(t, env.eventRepo.events, 2)
		})
	}
}

func TestEditDirectRejectsActivePeriod(t *testing.T) {
	start := time.Date(2024, 6, 14, 8, 0, 0, 0, time.UTC)
	env := newTestEnv(stubResolver{capability: policy.EditCapability{Kind: policy.CapabilityDirect}}, start)
	ctx := context.Background()

	_, err := env.svc.ClockIn(ctx, testPrincipal, testMeta, workperiod.ClockInRequest{})
	require.NoError(t, err)
	active, err := env.periodRepo.GetActive(ctx, "emp-1")
	require.NoError(t, err)

	_, err = env.svc.EditDirect(ctx, testPrincipal, testMeta, workperiod.EditRequest{
		ID:          active.ID,
		ClockInTime: "07:00",
	})
	assert.ErrorIs(t, err, workperiod.ErrPeriodStillActive)
}

func TestSplitConservesDuration(t *testing.T) {
	start := time.Date(2024, 6, 14, 8, 0, 0, 0, time.UTC)
	env := newTestEnv(stubResolver{}, start)
	ctx := context.Background()

	_, err := env.svc.ClockIn(ctx, testPrincipal, testMeta, workperiod.ClockInRequest{})
	require.NoError(t, err)
	env.svc.now = func() time.Time { return start.Add(9 * time.Hour) }
	out, err := env.svc.ClockOut(ctx, testPrincipal, testMeta, workperiod.ClockOutRequest{})
	require.NoError(t, err)

	resp, err := env.svc.Split(ctx, testPrincipal, testMeta, workperiod.SplitRequest{
		ID:        out.Period.ID,
		SplitTime: "12:00",
	})
	require.NoError(t, err)

	require.NotNil(t, resp.First.DurationMinutes)
	require.NotNil(t, resp.Second.DurationMinutes)
	assert.Equal(t, 240, *resp.First.DurationMinutes)
	assert.Equal(t, 300, *resp.Second.DurationMinutes)
	assert.Equal(t, 540, *resp.First.DurationMinutes+*resp.Second.DurationMinutes)

	// Second period keeps the original clock-out event reference.
	second, err := env.periodRepo.GetByID(ctx, resp.Second.ID)
	require.NoError(t, err)
	require.NotNil(t, second.ClockOutEventID)
	assert.Equal(t, env.eventRepo.events[1].ID, *second.ClockOutEventID)

	report, err := env.ledgerSvc.VerifyChain(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, report.Intact)
}

func TestSplitOutsideRangeIsRejected(t *testing.T) {
	start := time.Date(2024, 6, 14, 8, 0, 0, 0, time.UTC)
	env := newTestEnv(stubResolver{}, start)
	ctx := context.Background()

	_, err := env.svc.ClockIn(ctx, testPrincipal, testMeta, workperiod.ClockInRequest{})
	require.NoError(t, err)
	env.svc.now = func() time.Time { return start.Add(8 * time.Hour) }
	out, err := env.svc.ClockOut(ctx, testPrincipal, testMeta, workperiod.ClockOutRequest{})
	require.NoError(t, err)

	for _, splitTime := range []string{"07:00", "08:00", "16:00", "18:00"} {
		_, err = env.svc.Split(ctx, testPrincipal, testMeta, workperiod.SplitRequest{
			ID:        out.Period.ID,
			SplitTime: splitTime,
		})
		assert.ErrorIs(t, err, workperiod.ErrSplitOutOfRange, "split at %s", splitTime)
	}
}

func TestDeleteAsBreakKeepsAuditTrail(t *testing.T) {
	start := time.Date(2024, 6, 14, 8, 0, 0, 0, time.UTC)
	env := newTestEnv(stubResolver{}, start)
	ctx := context.Background()

	_, err := env.svc.ClockIn(ctx, testPrincipal, testMeta, workperiod.ClockInRequest{})
	require.NoError(t, err)
	env.svc.now = func() time.Time { return start.Add(time.Hour) }
	out, err := env.svc.ClockOut(ctx, testPrincipal, testMeta, workperiod.ClockOutRequest{})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteAsBreak(ctx, testPrincipal, testMeta, out.Period.ID))

	_, err = env.periodRepo.GetByID(ctx, out.Period.ID)
	assert.ErrorIs(t, err, workperiod.ErrWorkPeriodNotFound)

	// Events survive, marked superseded, and the chain still verifies.
	require.Len(t, env.eventRepo.events, 2)
	for _, e := range env.eventRepo.events {
		assert.True(t, e.IsSuperseded)
	}
	report, err := env.ledgerSvc.VerifyChain(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, report.Intact)
}

func TestEditsOnAnotherEmployeesPeriod(t *testing.T) {
	start := time.Date(2024, 6, 14, 8, 0, 0, 0, time.UTC)
	env := newTestEnv(stubResolver{capability: policy.EditCapability{Kind: policy.CapabilityDirect}}, start)
	ctx := context.Background()

	_, err := env.svc.ClockIn(ctx, testPrincipal, testMeta, workperiod.ClockInRequest{})
	require.NoError(t, err)
	env.svc.now = func() time.Time { return start.Add(8 * time.Hour) }
	out, err := env.svc.ClockOut(ctx, testPrincipal, testMeta, workperiod.ClockOutRequest{})
	require.NoError(t, err)

	intruder := session.Principal{UserID: "user-9", EmployeeID: "emp-9", OrganizationID: "org-1"}
	outTime := "16:30"
	periodID := out.Period.ID

	// Every mutation and capability lookup answers as if the period does
	// not exist, so another employee cannot learn the record is there.
	_, err = env.svc.EditDirect(ctx, intruder, testMeta, workperiod.EditRequest{
		ID: periodID, ClockInTime: "07:45", ClockOutTime: &outTime,
	})
	assert.ErrorIs(t, err, workperiod.ErrWorkPeriodNotFound)

	_, err = env.svc.EditCapability(ctx, intruder, periodID)
	assert.ErrorIs(t, err, workperiod.ErrWorkPeriodNotFound)

	_, err = env.svc.Split(ctx, intruder, testMeta, workperiod.SplitRequest{
		ID: periodID, SplitTime: "12:00",
	})
	assert.ErrorIs(t, err, workperiod.ErrWorkPeriodNotFound)

	err = env.svc.DeleteAsBreak(ctx, intruder, testMeta, periodID)
	assert.ErrorIs(t, err, workperiod.ErrWorkPeriodNotFound)

	// The period and its events are untouched.
	period, err := env.periodRepo.GetByID(ctx, periodID)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", period.EmployeeID)
	require.Len(t, env.eventRepo.events, 2)
	for _, e := range env.eventRepo.events {
		assert.False(t, e.IsSuperseded)
	}
}

func TestGetStatus(t *testing.T) {
	start := time.Date(2024, 6, 14, 8, 0, 0, 0, time.UTC)
	env := newTestEnv(stubResolver{}, start)
	ctx := context.Background()

	status, err := env.svc.GetStatus(ctx, session.Principal{UserID: "user-x"})
	require.NoError(t, err)
	assert.False(t, status.HasEmployee)

	status, err = env.svc.GetStatus(ctx, testPrincipal)
	require.NoError(t, err)
	assert.True(t, status.HasEmployee)
	assert.False(t, status.IsClockedIn)

	_, err = env.svc.ClockIn(ctx, testPrincipal, testMeta, workperiod.ClockInRequest{})
	require.NoError(t, err)

	status, err = env.svc.GetStatus(ctx, testPrincipal)
	require.NoError(t, err)
	assert.True(t, status.IsClockedIn)
	require.NotNil(t, status.ActiveWorkPeriod)
}

// failingEngine proves the compliance side channel cannot fail a clock-out.
type failingEngine struct{}

func (failingEngine) CalculateDeficit(_, _ int, _ *compliance.BreakRegulation) compliance.DeficitResult {
	return compliance.DeficitResult{}
}

func (failingEngine) BreaksTakenMinutes(_ context.Context, _ string, _ time.Time, _ string) (int, error) {
	return 0, errors.New("break lookup exploded")
}

func (failingEngine) Warn(_ context.Context, _ string, _, _ int) (compliance.DeficitResult, error) {
	return compliance.DeficitResult{}, errors.New("warn exploded")
}

func (failingEngine) EnforceAfterClockOut(_ context.Context, _, _ string, _, _ int) compliance.EnforcementResult {
	return compliance.EnforcementResult{WasAdjusted: false}
}

func TestClockOutSurvivesComplianceFailure(t *testing.T) {
	start := time.Date(2024, 6, 14, 8, 0, 0, 0, time.UTC)
	env := newTestEnv(stubResolver{}, start)
	env.svc.AttachComplianceEngine(failingEngine{})
	ctx := context.Background()

	_, err := env.svc.ClockIn(ctx, testPrincipal, testMeta, workperiod.ClockInRequest{})
	require.NoError(t, err)
	env.svc.now = func() time.Time { return start.Add(8 * time.Hour) }

	resp, err := env.svc.ClockOut(ctx, testPrincipal, testMeta, workperiod.ClockOutRequest{})
	require.NoError(t, err)
	assert.Nil(t, resp.ComplianceWarning)
	require.NotNil(t, resp.Period.DurationMinutes)
	assert.Equal(t, 480, *resp.Period.DurationMinutes)
}
