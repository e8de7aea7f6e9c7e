/*
scanner.go - Background missing-punch scanner

PURPOSE:
  Periodically scans every employee's current pay period for unmatched
  punches and logs the open exceptions with their suggested repairs. The
  scan reuses the same aggregation path as the /api/exceptions endpoint,
  so the log and the dashboard always agree.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Scans immediately on start, then on every tick
  - Locations without a valid ruleset are skipped, never fatal
  - Read-only: suggested repairs are logged, never auto-applied

CONFIGURATION:
  - CheckInterval: How often to scan (default: 1 hour)
  - Enabled: Whether the scanner is active (default: true)

USAGE:
  scanner := NewExceptionScanner(handler)
  scanner.Start()
  // ... later
  scanner.Stop()

SEE ALSO:
  - handlers.go: ScanExceptions (shared scan logic), ListExceptions
  - engine/repair.go: Repair suggestions
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/timecard-engine/engine"
)

// ExceptionScanner watches for open missing-punch exceptions.
type ExceptionScanner struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewExceptionScanner creates a new scanner.
func NewExceptionScanner(handler *Handler) *ExceptionScanner {
	return &ExceptionScanner{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scanner.
func (es *ExceptionScanner) Start() {
	es.mu.Lock()
	defer es.mu.Unlock()

	if !es.Enabled {
		log.Println("[Scanner] Disabled, not starting")
		return
	}

	es.ticker = time.NewTicker(es.CheckInterval)
	es.wg.Add(1)

	go es.run()

	log.Printf("[Scanner] Started with check interval: %v", es.CheckInterval)
}

// Stop stops the scanner.
func (es *ExceptionScanner) Stop() {
	es.mu.Lock()
	defer es.mu.Unlock()

	if es.ticker != nil {
		es.ticker.Stop()
		close(es.stop)
		es.wg.Wait()
		log.Println("[Scanner] Stopped")
	}
}

func (es *ExceptionScanner) run() {
	defer es.wg.Done()

	// Run immediately on start
	es.scan()

	for {
		select {
		case <-es.ticker.C:
			es.scan()
		case <-es.stop:
			return
		}
	}
}

func (es *ExceptionScanner) scan() {
	ctx := context.Background()
	today := engine.Today()

	reports, err := es.Handler.ScanExceptions(ctx, today)
	if err != nil {
		log.Printf("[Scanner] Scan failed: %v", err)
		return
	}
	if len(reports) == 0 {
		log.Printf("[Scanner] No open exceptions as of %s", today)
		return
	}

	for _, report := range reports {
		log.Printf("[Scanner] %s (%s): %d open exception(s) in period %s .. %s",
			report.EmployeeName, report.EmployeeID,
			report.ExceptionCount, report.Period.Start, report.Period.End)
		for _, repair := range report.Repairs {
			log.Printf("[Scanner]   %s on %s: suggest %s at %s",
				repair.Exception, repair.Date, repair.Suggested.Type, repair.Suggested.Timestamp)
		}
	}
}
