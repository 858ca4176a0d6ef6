package jobs

import (
	"context"
	"log"
	"time"

	"frontdesk/internal/db"
)

// Sweeper periodically expires pending help requests whose deadline has
// passed. Read paths already sweep lazily; this keeps the stored state fresh
// even when the dashboard is idle. Timeouts live in the data, so a missed
// tick (or a process restart) loses nothing.
type Sweeper struct {
	db       *db.DB
	interval time.Duration
}

// NewSweeper creates a sweeper running at the given interval.
func NewSweeper(database *db.DB, interval time.Duration) *Sweeper {
	return &Sweeper{db: database, interval: interval}
}

// Start begins the background sweep loop and blocks until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	log.Printf("Expiry sweeper started (interval: %v)", s.interval)

	// Run immediately on start
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Expiry sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	count, err := s.db.SweepExpiredRequests(ctx)
	if err != nil {
		log.Printf("Expiry sweeper: sweep failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("Expiry sweeper: marked %d requests unresolved", count)
	}
}
