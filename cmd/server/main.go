/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store (payslips, periods, advance ledger)
  3. Load payroll rules (JSON document or built-in defaults)
  4. Wire engine, advance ledger, and period aggregator
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: payroll.db)
           Use ":memory:" for in-memory database
  -rules   Path to a JSON payroll rules document (optional)
  -demo    Seed demo contracts and attendance data

DATA SOURCES:
  Attendance and contract data come from in-memory providers here;
  production deployments implement payroll.AttendanceProvider and
  payroll.CompensationProvider against their HR system and swap them in.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Persist the advance ledger
  4. Close database connection

EXAMPLES:
  # Run with file database and demo data
  ./server -db="./data/payroll.db" -demo

  # Run with custom rules
  ./server -rules=./rules.json

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/advance"
	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payperiod"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/payroll/providers"
	"github.com/warp/payroll-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "payroll.db", "SQLite database path")
	rulesPath := flag.String("rules", "", "JSON payroll rules document")
	demo := flag.Bool("demo", false, "seed demo contracts and attendance")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Load rules
	cfg := payroll.DefaultSnapshot()
	if *rulesPath != "" {
		doc, err := os.ReadFile(*rulesPath)
		if err != nil {
			log.Fatalf("Failed to read rules document: %v", err)
		}
		cfg, err = factory.ParseConfig(string(doc))
		if err != nil {
			log.Fatalf("Failed to parse rules document: %v", err)
		}
	}

	// Data sources (in-memory; see DATA SOURCES note above)
	attendance := providers.NewMemoryAttendance()
	compensation := providers.NewMemoryCompensation()
	extras := providers.NewMemoryExtras()
	if *demo {
		seedDemo(attendance, compensation)
	}

	// Advance ledger, restored from the last saved state
	advances := advance.NewLedger(cfg, compensation, nil)
	if state, err := store.LoadAdvanceLedger(context.Background()); err != nil {
		log.Printf("Warning: failed to restore advance ledger: %v", err)
	} else if len(state.Advances) > 0 {
		advances.ImportState(state)
	}

	// Engine and aggregator
	engine := payroll.NewEngine(payroll.EngineOptions{
		Attendance:   attendance,
		Compensation: compensation,
		Extras:       extras,
		Advances:     advances,
		Store:        store,
		Config:       cfg,
	})
	aggregator := payperiod.NewAggregator(sqlite.PeriodStoreAdapter{S: store}, store, cfg, nil)

	// Router
	handler := api.NewHandler(engine, advances, aggregator, store)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Payroll engine listening on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if err := store.SaveAdvanceLedger(context.Background(), advances.ExportState()); err != nil {
		log.Printf("Warning: failed to persist advance ledger: %v", err)
	}

	log.Println("Server stopped")
}

// seedDemo loads a small set of contracts and one month of attendance so
// the API is explorable out of the box.
func seedDemo(attendance *providers.MemoryAttendance, compensation *providers.MemoryCompensation) {
	now := time.Now()
	period := payroll.PeriodKey{Year: now.Year(), Month: int(now.Month())}

	contracts := []payroll.Contract{
		{
			EmployeeID: "emp-001", EmployeeCode: "E001", Role: payroll.RoleOtherStaff,
			Department: "Production", BasicSalary: payroll.MoneyFromString("45000.00"),
			IsMarried: true, Children: 2, TaxLiable: true,
		},
		{
			EmployeeID: "emp-002", EmployeeCode: "E002", Role: payroll.RoleOfficeWorker,
			Department: "Accounts", BasicSalary: payroll.MoneyFromString("60000.00"),
			TaxLiable: true,
		},
		{
			EmployeeID: "emp-003", EmployeeCode: "E003", Role: payroll.RoleManager,
			Department: "Accounts", BasicSalary: payroll.MoneyFromString("120000.00"),
			IsMarried: true, Children: 1, TaxLiable: true,
		},
	}
	for _, c := range contracts {
		compensation.SetContract(c)
	}

	for _, c := range contracts {
		attendance.SetSummary(payroll.MonthlySummary{
			EmployeeID:           c.EmployeeID,
			Period:               period,
			WorkingDays:          22,
			AttendedDays:         21,
			AbsentDays:           1,
			TotalWorkHours:       decimal.NewFromFloat(204.75),
			TotalOvertimeHours:   decimal.NewFromInt(5),
			AttendancePercentage: decimal.NewFromFloat(95.5),
			PunctualityScore:     decimal.NewFromFloat(98.2),
		})
	}

	log.Printf("Seeded %d demo contracts for %s", len(contracts), period)
}
