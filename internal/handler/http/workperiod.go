package http

import (
	"encoding/json"
	"net/http"

	"github.com/worklens/timeledger-backend-go/internal/domain/workperiod"
	"github.com/worklens/timeledger-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type WorkPeriodHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Edit(w http.ResponseWriter, r *http.Request)
	Split(w http.ResponseWriter, r *http.Request)
	DeleteAsBreak(w http.ResponseWriter, r *http.Request)
	EditCapability(w http.ResponseWriter, r *http.Request)
}

type workPeriodHandlerImpl struct {
	workPeriodService workperiod.Service
}

func NewWorkPeriodHandler(workPeriodService workperiod.Service) WorkPeriodHandler {
	return &workPeriodHandlerImpl{
		workPeriodService: workPeriodService,
	}
}

// List implements WorkPeriodHandler.
func (h *workPeriodHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		response.Unauthorized(w, "Missing principal")
		return
	}

	page, limit := pagination(r)
	filter := workperiod.PeriodFilter{
		StartDate: optionalQuery(r, "start_date"),
		EndDate:   optionalQuery(r, "end_date"),
		Status:    optionalQuery(r, "status"),
		Page:      page,
		Limit:     limit,
	}

	result, err := h.workPeriodService.ListMyPeriods(r.Context(), p, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Periods, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
	})
}

// Edit implements WorkPeriodHandler.
func (h *workPeriodHandlerImpl) Edit(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		response.Unauthorized(w, "Missing principal")
		return
	}

	var req workperiod.EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.workPeriodService.EditDirect(r.Context(), p, clientMeta(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Work period updated", result)
}

// Split implements WorkPeriodHandler.
func (h *workPeriodHandlerImpl) Split(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		response.Unauthorized(w, "Missing principal")
		return
	}

	var req workperiod.SplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.workPeriodService.Split(r.Context(), p, clientMeta(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Work period split", result)
}

// DeleteAsBreak implements WorkPeriodHandler.
func (h *workPeriodHandlerImpl) DeleteAsBreak(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		response.Unauthorized(w, "Missing principal")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.workPeriodService.DeleteAsBreak(r.Context(), p, clientMeta(r), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Work period converted to break", nil)
}

// EditCapability implements WorkPeriodHandler. Clients use this to decide
// whether to offer a direct edit, a correction request, or nothing.
func (h *workPeriodHandlerImpl) EditCapability(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		response.Unauthorized(w, "Missing principal")
		return
	}

	capability, err := h.workPeriodService.EditCapability(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, capability)
}
