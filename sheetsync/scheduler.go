package sheetsync

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// ILastRunStore persists last-successful-run timestamps per configuration
// and direction. The engine never touches it; only the scheduler does.
type ILastRunStore interface {
	LastRun(configName string, direction string) time.Time
	SetLastRun(configName string, direction string, at time.Time)
}

// memoryLastRunStore keeps last-run timestamps in process memory. Good
// enough for a long-running scheduler; deployments that restart often should
// back this with durable storage.
type memoryLastRunStore struct {
	mu   sync.Mutex
	runs map[string]time.Time
}

func NewMemoryLastRunStore() ILastRunStore {
	return &memoryLastRunStore{runs: make(map[string]time.Time)}
}

func (s *memoryLastRunStore) LastRun(configName string, direction string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[configName+"\x00"+direction]
}

func (s *memoryLastRunStore) SetLastRun(configName string, direction string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[configName+"\x00"+direction] = at
}

// Scheduler ticks every five minutes and runs each engine's enabled
// directions whose configured interval has elapsed since the last
// successful run.
type Scheduler struct {
	engines []ISheetSync
	runs    ILastRunStore
	cron    *cron.Cron
	now     func() time.Time
}

func NewScheduler(engines []ISheetSync, runs ILastRunStore) *Scheduler {
	if runs == nil {
		runs = NewMemoryLastRunStore()
	}
	return &Scheduler{
		engines: engines,
		runs:    runs,
		cron:    cron.New(),
		now:     time.Now,
	}
}

// Start begins ticking. The tick granularity matches the shortest
// configurable interval.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@every 5m", s.tick); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("sheetsync: scheduler started for %d configuration(s)", len(s.engines))
	return nil
}

// Stop halts the cron runner; a tick already in flight finishes.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) tick() {
	for _, engine := range s.engines {
		var cfg = engine.Config()
		if cfg.AutoSyncPush && s.due(cfg, DirectionPush) {
			s.run(engine, cfg, DirectionPush)
		}
		if cfg.AutoSyncPull && s.due(cfg, DirectionPull) {
			s.run(engine, cfg, DirectionPull)
		}
	}
}

func (s *Scheduler) due(cfg *Config, direction string) bool {
	var last = s.runs.LastRun(cfg.Name, direction)
	return s.now().Sub(last) >= cfg.Interval.Duration()
}

func (s *Scheduler) run(engine ISheetSync, cfg *Config, direction string) {
	var runID = uuid.NewString()
	var result *SyncResult
	if direction == DirectionPush {
		result = engine.PushAll()
	} else {
		result = engine.Pull()
	}
	s.runs.SetLastRun(cfg.Name, direction, s.now())
	log.Printf("sheetsync: run %s (%s %s): created=%d updated=%d skipped=%d errors=%d",
		runID, cfg.Name, direction, result.Created, result.Updated, result.Skipped, len(result.Errors))
	for _, msg := range result.Errors {
		log.Printf("sheetsync: run %s: %s", runID, msg)
	}
}
