package http

import (
	"log/slog"
	"os"

	"github.com/worklens/timeledger-backend-go/internal/handler/http/middleware"
	"github.com/worklens/timeledger-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	JWTService jwt.Service,
	timeClockHandler TimeClockHandler,
	workPeriodHandler WorkPeriodHandler,
	ledgerHandler LedgerHandler,
	correctionHandler CorrectionHandler,
	approvalHandler ApprovalHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "timeledger"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/time-events", func(r chi.Router) {
				r.Get("/status", timeClockHandler.Status)

				r.Group(func(r chi.Router) {
					r.Use(middleware.EmployeeRequired)
					r.Post("/clock-in", timeClockHandler.ClockIn)
					r.Post("/clock-out", timeClockHandler.ClockOut)
					r.Get("/", ledgerHandler.ListMyEvents)
					r.Get("/ledger/verify", ledgerHandler.VerifyChain)
				})
			})

			r.Route("/work-periods", func(r chi.Router) {
				r.Use(middleware.EmployeeRequired)
				r.Get("/", workPeriodHandler.List)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/edit-capability", workPeriodHandler.EditCapability)
					r.Put("/", workPeriodHandler.Edit)
					r.Post("/split", workPeriodHandler.Split)
					r.Delete("/", workPeriodHandler.DeleteAsBreak)
					r.Post("/corrections", correctionHandler.RequestCorrection)
				})
			})

			r.Route("/approvals", func(r chi.Router) {
				r.Use(middleware.EmployeeRequired)
				r.Get("/", approvalHandler.ListPending)
				r.Post("/{id}/approve", approvalHandler.Approve)
				r.Post("/{id}/reject", approvalHandler.Reject)
			})
		})
	})
	return r
}
