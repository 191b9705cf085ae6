package correction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/worklens/timeledger-backend-go/internal/domain/approval"
	"github.com/worklens/timeledger-backend-go/internal/domain/correction"
	"github.com/worklens/timeledger-backend-go/internal/domain/employee"
	"github.com/worklens/timeledger-backend-go/internal/domain/holiday"
	"github.com/worklens/timeledger-backend-go/internal/domain/ledger"
	"github.com/worklens/timeledger-backend-go/internal/domain/session"
	"github.com/worklens/timeledger-backend-go/internal/domain/workperiod"
	ledgerService "github.com/worklens/timeledger-backend-go/internal/service/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePeriodRepo struct {
	periods map[string]workperiod.WorkPeriod
}

func (f *fakePeriodRepo) Create(_ context.Context, period workperiod.WorkPeriod) (workperiod.WorkPeriod, error) {
	f.periods[period.ID] = period
	return period, nil
}

func (f *fakePeriodRepo) GetByID(_ context.Context, id string) (workperiod.WorkPeriod, error) {
	period, ok := f.periods[id]
	if !ok {
		return workperiod.WorkPeriod{}, workperiod.ErrWorkPeriodNotFound
	}
	return period, nil
}

func (f *fakePeriodRepo) GetActive(_ context.Context, _ string) (*workperiod.WorkPeriod, error) {
	return nil, nil
}

func (f *fakePeriodRepo) Update(_ context.Context, period workperiod.WorkPeriod) error {
	if _, ok := f.periods[period.ID]; !ok {
		return workperiod.ErrWorkPeriodNotFound
	}
	f.periods[period.ID] = period
	return nil
}

func (f *fakePeriodRepo) Delete(_ context.Context, id string) error {
	delete(f.periods, id)
	return nil
}

func (f *fakePeriodRepo) ListCompletedBetween(_ context.Context, _ string, _, _ time.Time) ([]workperiod.WorkPeriod, error) {
	return nil, nil
}

func (f *fakePeriodRepo) ListByEmployee(_ context.Context, _ string, _ workperiod.PeriodFilter) ([]workperiod.WorkPeriod, int64, error) {
	return nil, 0, nil
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

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (f *fakeEmployeeRepo) GetByUserID(_ context.Context, userID string) (employee.Employee, error) {
	for _, emp := range f.employees {
		if emp.UserID == userID {
			return emp, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

type fakeApprovalRepo struct {
	requests map[string]approval.ApprovalRequest
}

func (f *fakeApprovalRepo) Create(_ context.Context, request approval.ApprovalRequest) (approval.ApprovalRequest, error) {
	request.CreatedAt = time.Now().UTC()
	f.requests[request.ID] = request
	return request, nil
}

func (f *fakeApprovalRepo) GetByID(_ context.Context, id string) (approval.ApprovalRequest, error) {
	request, ok := f.requests[id]
	if !ok {
		return approval.ApprovalRequest{}, approval.ErrApprovalNotFound
	}
	return request, nil
}

func (f *fakeApprovalRepo) Update(_ context.Context, request approval.ApprovalRequest) error {
	f.requests[request.ID] = request
	return nil
}

func (f *fakeApprovalRepo) ListPendingForApprover(_ context.Context, _ string, _, _ int) ([]approval.ApprovalRequest, int64, error) {
	return nil, 0, nil
}

type fakeHolidayValidator struct {
	result holiday.ValidationResult
}

func (f fakeHolidayValidator) ValidateRange(_ context.Context, _ string, _, _ time.Time) (holiday.ValidationResult, error) {
	return f.result, nil
}

type fakeSettings struct{}

func (fakeSettings) GetTimezone(_ context.Context, _ string) (string, error) { return "UTC", nil }

type sentEmail struct {
	to           string
	managerName  string
	employeeName string
	periodDate   string
}

type fakeEmailService struct {
	sent []sentEmail
	err  error
}

func (f *fakeEmailService) SendCorrectionRequested(to, managerName, employeeName, periodDate, _ string, _ *string, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{to: to, managerName: managerName, employeeName: employeeName, periodDate: periodDate})
	return nil
}

type passthroughTxRunner struct{}

func (passthroughTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

const testPeriodID = "3a2b1c0d-4e5f-4a6b-8c7d-0e1f2a3b0001"

var worker = session.Principal{UserID: "user-1", EmployeeID: "emp-1", OrganizationID: "org-1"}

type correctionEnv struct {
	svc       *CorrectionServiceImpl
	periods   *fakePeriodRepo
	events    *fakeEventRepo
	approvals *fakeApprovalRepo
	email     *fakeEmailService
	ledgerSvc ledger.Service
}

func newCorrectionEnv(t *testing.T, blackout holiday.ValidationResult) *correctionEnv {
	t.Helper()
	ctx := context.Background()

	managerID := "mgr-1"
	employees := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": {ID: "emp-1", UserID: "user-1", OrganizationID: "org-1", ManagerID: &managerID, FullName: "Ada Worker", Email: "ada@example.com"},
		"mgr-1": {ID: "mgr-1", UserID: "user-2", OrganizationID: "org-1", FullName: "Max Manager", Email: "max@example.com"},
	}}

	periods := &fakePeriodRepo{periods: make(map[string]workperiod.WorkPeriod)}
	events := &fakeEventRepo{}
	approvals := &fakeApprovalRepo{requests: make(map[string]approval.ApprovalRequest)}
	emailSvc := &fakeEmailService{}
	ledgerSvc := ledgerService.NewLedgerService(events)

	start := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)
	inEvent, err := ledgerSvc.Append(ctx, "emp-1", ledger.KindClockIn, start, ledger.EventMeta{CreatedBy: "user-1"})
	require.NoError(t, err)
	outEvent, err := ledgerSvc.Append(ctx, "emp-1", ledger.KindClockOut, end, ledger.EventMeta{CreatedBy: "user-1"})
	require.NoError(t, err)

	duration := 480
	_, err = periods.Create(ctx, workperiod.WorkPeriod{
		ID:              testPeriodID,
		EmployeeID:      "emp-1",
		ClockInEventID:  inEvent.ID,
		ClockOutEventID: &outEvent.ID,
		StartTime:       start,
		EndTime:         &end,
		DurationMinutes: &duration,
		ApprovalStatus:  workperiod.StatusApproved,
	})
	require.NoError(t, err)

	svc := NewCorrectionService(
		passthroughTxRunner{}, periods, ledgerSvc, employees, approvals,
		fakeHolidayValidator{result: blackout}, fakeSettings{}, emailSvc, nil,
	).(*CorrectionServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, 6, 11, 9, 0, 0, 0, time.UTC) }

	return &correctionEnv{svc: svc, periods: periods, events: events, approvals: approvals, email: emailSvc, ledgerSvc: ledgerSvc}
}

func validRange() holiday.ValidationResult { return holiday.ValidationResult{IsValid: true} }

func TestRequestCorrectionStagesChange(t *testing.T) {
	env := newCorrectionEnv(t, validRange())
	ctx := context.Background()

	outTime := "16:30"
	resp, err := env.svc.RequestCorrection(ctx, worker, session.ClientMeta{}, correction.RequestCorrectionRequest{
		WorkPeriodID: testPeriodID,
		ClockInTime:  "07:30",
		ClockOutTime: &outTime,
		Reason:       "forgot my badge, arrived earlier",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ApprovalID)

	// Two correction events joined the chain and the originals are marked
	// superseded immediately, even though the period stays pending.
	require.Len(t, env.events.events, 4)
	assert.Equal(t, ledger.KindCorrection, env.events.events[2].Kind)
	assert.Equal(t, ledger.KindCorrection, env.events.events[3].Kind)
	assert.True(t, env.events.events[0].IsSuperseded)
	require.NotNil(t, env.events.events[0].SupersededByID)
	assert.Equal(t, env.events.events[2].ID, *env.events.events[0].SupersededByID)
	assert.True(t, env.events.events[1].IsSuperseded)
	require.NotNil(t, env.events.events[1].SupersededByID)
	assert.Equal(t, env.events.events[3].ID, *env.events.events[1].SupersededByID)

	period, err := env.periods.GetByID(ctx, testPeriodID)
	require.NoError(t, err)
	assert.Equal(t, workperiod.StatusPending, period.ApprovalStatus)
	require.NotNil(t, period.PendingChanges)
	pending := *period.PendingChanges
	require.NotNil(t, pending.ClockInEventID)
	assert.Equal(t, env.events.events[2].ID, *pending.ClockInEventID)
	require.NotNil(t, pending.ClockOutEventID)
	assert.Equal(t, env.events.events[3].ID, *pending.ClockOutEventID)
	require.NotNil(t, pending.StartTime)
	assert.Equal(t, time.Date(2024, 6, 10, 7, 30, 0, 0, time.UTC), *pending.StartTime)
	require.NotNil(t, pending.EndTime)
	assert.Equal(t, time.Date(2024, 6, 10, 16, 30, 0, 0, time.UTC), *pending.EndTime)
	require.NotNil(t, pending.DurationMinutes)
	assert.Equal(t, 540, *pending.DurationMinutes)

	// The period's live values have not moved.
	assert.Equal(t, time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC), period.StartTime)
	require.NotNil(t, period.DurationMinutes)
	assert.Equal(t, 480, *period.DurationMinutes)

	request, err := env.approvals.GetByID(ctx, resp.ApprovalID)
	require.NoError(t, err)
	assert.Equal(t, approval.EntityTypeTimeEntry, request.EntityType)
	assert.Equal(t, testPeriodID, request.EntityID)
	assert.Equal(t, "emp-1", request.RequestedBy)
	assert.Equal(t, "mgr-1", request.ApproverID)
	assert.Equal(t, approval.StatusPending, request.Status)

	require.Len(t, env.email.sent, 1)
	assert.Equal(t, "max@example.com", env.email.sent[0].to)
	assert.Equal(t, "Max Manager", env.email.sent[0].managerName)
	assert.Equal(t, "Ada Worker", env.email.sent[0].employeeName)
	assert.Equal(t, "2024-06-10", env.email.sent[0].periodDate)

	report, err := env.ledgerSvc.VerifyChain(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, report.Intact)
}

func TestRequestCorrectionWithoutManager(t *testing.T) {
	env := newCorrectionEnv(t, validRange())

	loner := session.Principal{UserID: "user-2", EmployeeID: "mgr-1", OrganizationID: "org-1"}
	_, err := env.svc.RequestCorrection(context.Background(), loner, session.ClientMeta{}, correction.RequestCorrectionRequest{
		WorkPeriodID: testPeriodID,
		ClockInTime:  "07:30",
		Reason:       "test",
	})
	assert.ErrorIs(t, err, employee.ErrNoManagerAssigned)
}

func TestRequestCorrectionBlackoutRange(t *testing.T) {
	env := newCorrectionEnv(t, holiday.ValidationResult{IsValid: false, Reason: "public holiday: Pfingstmontag"})
	ctx := context.Background()

	_, err := env.svc.RequestCorrection(ctx, worker, session.ClientMeta{}, correction.RequestCorrectionRequest{
		WorkPeriodID: testPeriodID,
		ClockInTime:  "07:30",
		Reason:       "forgot my badge",
	})
	require.ErrorIs(t, err, correction.ErrBlackoutRange)
	assert.Contains(t, err.Error(), "Pfingstmontag")

	// Nothing was staged.
	assert.Len(t, env.events.events, 2)
	period, err := env.periods.GetByID(ctx, testPeriodID)
	require.NoError(t, err)
	assert.Nil(t, period.PendingChanges)
	assert.Equal(t, workperiod.StatusApproved, period.ApprovalStatus)
	assert.Empty(t, env.approvals.requests)
}

func TestRequestCorrectionOwnership(t *testing.T) {
	env := newCorrectionEnv(t, validRange())

	// A different employee cannot touch someone else's period; the response
	// does not reveal that the period exists.
	intruder := session.Principal{UserID: "user-9", EmployeeID: "emp-9", OrganizationID: "org-1"}
	env.svc.employeeRepo.(*fakeEmployeeRepo).employees["emp-9"] = employee.Employee{
		ID: "emp-9", UserID: "user-9", OrganizationID: "org-1",
		ManagerID: func() *string { s := "mgr-1"; return &s }(),
	}

	_, err := env.svc.RequestCorrection(context.Background(), intruder, session.ClientMeta{}, correction.RequestCorrectionRequest{
		WorkPeriodID: testPeriodID,
		ClockInTime:  "07:30",
		Reason:       "test",
	})
	assert.ErrorIs(t, err, workperiod.ErrWorkPeriodNotFound)
}

func TestRequestCorrectionActivePeriod(t *testing.T) {
	env := newCorrectionEnv(t, validRange())
	ctx := context.Background()

	period, err := env.periods.GetByID(ctx, testPeriodID)
	require.NoError(t, err)
	period.EndTime = nil
	period.ClockOutEventID = nil
	require.NoError(t, env.periods.Update(ctx, period))

	_, err = env.svc.RequestCorrection(ctx, worker, session.ClientMeta{}, correction.RequestCorrectionRequest{
		WorkPeriodID: testPeriodID,
		ClockInTime:  "07:30",
		Reason:       "test",
	})
	assert.ErrorIs(t, err, workperiod.ErrPeriodStillActive)
}

func TestRequestCorrectionSurvivesEmailFailure(t *testing.T) {
	env := newCorrectionEnv(t, validRange())
	env.email.err = errors.New("smtp connection refused")

	resp, err := env.svc.RequestCorrection(context.Background(), worker, session.ClientMeta{}, correction.RequestCorrectionRequest{
		WorkPeriodID: testPeriodID,
		ClockInTime:  "07:30",
		Reason:       "forgot my badge",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ApprovalID)
}
