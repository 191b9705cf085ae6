package http

import (
	"encoding/json"
	"net/http"

	"github.com/worklens/timeledger-backend-go/internal/domain/correction"
	"github.com/worklens/timeledger-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type CorrectionHandler interface {
	RequestCorrection(w http.ResponseWriter, r *http.Request)
}

type correctionHandlerImpl struct {
	correctionService correction.Service
}

func NewCorrectionHandler(correctionService correction.Service) CorrectionHandler {
	return &correctionHandlerImpl{
		correctionService: correctionService,
	}
}

// RequestCorrection implements CorrectionHandler.
func (h *correctionHandlerImpl) RequestCorrection(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		response.Unauthorized(w, "Missing principal")
		return
	}

	var req correction.RequestCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.WorkPeriodID = chi.URLParam(r, "id")

	result, err := h.correctionService.RequestCorrection(r.Context(), p, clientMeta(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Correction request submitted", result)
}
