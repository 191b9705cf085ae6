package http

import (
	"encoding/json"
	"net/http"

	"github.com/worklens/timeledger-backend-go/internal/domain/workperiod"
	"github.com/worklens/timeledger-backend-go/internal/handler/http/response"
)

type TimeClockHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
}

type timeClockHandlerImpl struct {
	workPeriodService workperiod.Service
}

func NewTimeClockHandler(workPeriodService workperiod.Service) TimeClockHandler {
	return &timeClockHandlerImpl{
		workPeriodService: workPeriodService,
	}
}

// ClockIn implements TimeClockHandler.
func (h *timeClockHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		response.Unauthorized(w, "Missing principal")
		return
	}

	var req workperiod.ClockInRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	result, err := h.workPeriodService.ClockIn(r.Context(), p, clientMeta(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clock in successful", result)
}

// ClockOut implements TimeClockHandler.
func (h *timeClockHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		response.Unauthorized(w, "Missing principal")
		return
	}

	var req workperiod.ClockOutRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	result, err := h.workPeriodService.ClockOut(r.Context(), p, clientMeta(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clock out successful", result)
}

// Status implements TimeClockHandler.
func (h *timeClockHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		response.Unauthorized(w, "Missing principal")
		return
	}

	result, err := h.workPeriodService.GetStatus(r.Context(), p)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
