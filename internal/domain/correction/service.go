package correction

import (
	"context"

	"github.com/worklens/timeledger-backend-go/internal/domain/session"
)

// Service runs the end-to-end correction request: validate the proposed
// timestamps, stage correction events on the ledger, open an approval
// request and notify the approver. Each step commits independently; the
// notification step is best-effort and never rolls back the others.
type Service interface {
	RequestCorrection(ctx context.Context, p session.Principal, meta session.ClientMeta, req RequestCorrectionRequest) (RequestCorrectionResponse, error)
}
