package http

import (
	"net/http"
	"time"

	"github.com/worklens/timeledger-backend-go/internal/domain/ledger"
	"github.com/worklens/timeledger-backend-go/internal/handler/http/response"
)

type LedgerHandler interface {
	ListMyEvents(w http.ResponseWriter, r *http.Request)
	VerifyChain(w http.ResponseWriter, r *http.Request)
}

type ledgerHandlerImpl struct {
	ledgerService ledger.Service
}

func NewLedgerHandler(ledgerService ledger.Service) LedgerHandler {
	return &ledgerHandlerImpl{
		ledgerService: ledgerService,
	}
}

type timeEventResponse struct {
	ID              string  `json:"id"`
	Kind            string  `json:"kind"`
	Timestamp       string  `json:"timestamp"`
	Hash            string  `json:"hash"`
	PreviousHash    *string `json:"previous_hash,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	ReplacesEventID *string `json:"replaces_event_id,omitempty"`
	IsSuperseded    bool    `json:"is_superseded"`
	SupersededByID  *string `json:"superseded_by_id,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

type chainReportResponse struct {
	Intact          bool    `json:"intact"`
	Length          int     `json:"length"`
	BrokenAtEventID *string `json:"broken_at_event_id,omitempty"`
}

// ListMyEvents implements LedgerHandler.
func (h *ledgerHandlerImpl) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		response.Unauthorized(w, "Missing principal")
		return
	}

	page, limit := pagination(r)
	filter := ledger.EventFilter{
		Kind:      optionalQuery(r, "kind"),
		StartDate: optionalQuery(r, "start_date"),
		EndDate:   optionalQuery(r, "end_date"),
		Page:      page,
		Limit:     limit,
	}

	events, total, err := h.ledgerService.ListEvents(r.Context(), p.EmployeeID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	responses := make([]timeEventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, mapTimeEvent(event))
	}

	response.SuccessWithMeta(w, responses, &response.Meta{
		Page:       page,
		Limit:      limit,
		TotalItems: total,
	})
}

// VerifyChain implements LedgerHandler.
func (h *ledgerHandlerImpl) VerifyChain(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		response.Unauthorized(w, "Missing principal")
		return
	}

	report, err := h.ledgerService.VerifyChain(r.Context(), p.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, chainReportResponse{
		Intact:          report.Intact,
		Length:          report.Length,
		BrokenAtEventID: report.BrokenAtEventID,
	})
}

func mapTimeEvent(e ledger.TimeEvent) timeEventResponse {
	return timeEventResponse{
		ID:              e.ID,
		Kind:            string(e.Kind),
		Timestamp:       e.Timestamp.UTC().Format(time.RFC3339Nano),
		Hash:            e.Hash,
		PreviousHash:    e.PreviousHash,
		Notes:           e.Notes,
		ReplacesEventID: e.ReplacesEventID,
		IsSuperseded:    e.IsSuperseded,
		SupersededByID:  e.SupersededByID,
		CreatedAt:       e.CreatedAt.UTC().Format(time.RFC3339),
	}
}
