package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

// Sweeper is anything holding expirable cached state.
type Sweeper interface {
	SweepExpired() int
}

// Service periodically sweeps expired cache entries. The cache itself runs
// no timers; its cleanup lifecycle is owned here so it can be started and
// stopped with the process.
type Service struct {
	sweeper  Sweeper
	interval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewService(sweeper Sweeper, interval time.Duration) *Service {
	return &Service{sweeper: sweeper, interval: interval}
}

// Start begins the background sweep loop. Starting an already-running
// service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	s.wg.Add(1)
	go s.loop(ctx)

	log.Printf("[scheduler] cache sweep started (interval=%s)", s.interval)
	return nil
}

// Stop halts the sweep loop and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	log.Println("[scheduler] cache sweep stopped")
}

func (s *Service) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.sweeper.SweepExpired(); removed > 0 {
				log.Printf("[scheduler] swept %d expired cache entries", removed)
			}
		}
	}
}
