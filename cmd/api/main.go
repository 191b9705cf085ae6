package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/worklens/timeledger-backend-go/internal/config"
	appHTTP "github.com/worklens/timeledger-backend-go/internal/handler/http"
	"github.com/worklens/timeledger-backend-go/internal/pkg/database"
	"github.com/worklens/timeledger-backend-go/internal/pkg/email"
	"github.com/worklens/timeledger-backend-go/internal/pkg/jwt"
	"github.com/worklens/timeledger-backend-go/internal/pkg/metrics"
	"github.com/worklens/timeledger-backend-go/internal/repository/postgresql"
	approvalService "github.com/worklens/timeledger-backend-go/internal/service/approval"
	complianceService "github.com/worklens/timeledger-backend-go/internal/service/compliance"
	correctionService "github.com/worklens/timeledger-backend-go/internal/service/correction"
	ledgerService "github.com/worklens/timeledger-backend-go/internal/service/ledger"
	policyService "github.com/worklens/timeledger-backend-go/internal/service/policy"
	workperiodService "github.com/worklens/timeledger-backend-go/internal/service/workperiod"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	txRunner := postgresql.NewTxRunner(db)
	timeEventRepo := postgresql.NewTimeEventRepository(db)
	workPeriodRepo := postgresql.NewWorkPeriodRepository(db)
	breakRegulationRepo := postgresql.NewBreakRegulationRepository(db)
	changePolicyRepo := postgresql.NewChangePolicyRepository(db)
	approvalRequestRepo := postgresql.NewApprovalRequestRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	holidayValidator := postgresql.NewHolidayValidator(db)
	settingsRepo := postgresql.NewSettingsRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	appMetrics := metrics.New()
	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service:", err)
	}

	ledgerSvc := ledgerService.NewLedgerService(timeEventRepo)
	policyResolver := policyService.NewPolicyResolver(changePolicyRepo, employeeRepo)
	workPeriodSvc := workperiodService.NewWorkPeriodService(
		txRunner,
		workPeriodRepo,
		ledgerSvc,
		policyResolver,
		settingsRepo,
		appMetrics,
	)
	// The compliance engine splits periods through the work period service,
	// so the two are wired after construction.
	complianceEngine := complianceService.NewComplianceEngine(
		breakRegulationRepo,
		workPeriodRepo,
		workPeriodSvc,
		appMetrics,
	)
	workPeriodSvc.AttachComplianceEngine(complianceEngine)

	correctionSvc := correctionService.NewCorrectionService(
		txRunner,
		workPeriodRepo,
		ledgerSvc,
		employeeRepo,
		approvalRequestRepo,
		holidayValidator,
		settingsRepo,
		emailService,
		appMetrics,
	)
	approvalSvc := approvalService.NewApprovalService(
		txRunner,
		approvalRequestRepo,
		workPeriodRepo,
		ledgerSvc,
	)

	timeClockHandler := appHTTP.NewTimeClockHandler(workPeriodSvc)
	workPeriodHandler := appHTTP.NewWorkPeriodHandler(workPeriodSvc)
	ledgerHandler := appHTTP.NewLedgerHandler(ledgerSvc)
	correctionHandler := appHTTP.NewCorrectionHandler(correctionSvc)
	approvalHandler := appHTTP.NewApprovalHandler(approvalSvc)

	router := appHTTP.NewRouter(
		JWTService,
		timeClockHandler,
		workPeriodHandler,
		ledgerHandler,
		correctionHandler,
		approvalHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
