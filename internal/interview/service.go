package interview

import (
	"context"
	"fmt"
	"sync"

	"github.com/epanichev/sheetcheck/internal/observability"
)

// Store is the persistence seam the service needs. Implemented by
// internal/store; kept narrow so tests can supply an in-memory fake.
type Store interface {
	Save(ctx context.Context, session Session) error
	Get(ctx context.Context, id string) (Session, error)
}

// ServiceConfig tunes report grading.
type ServiceConfig struct {
	// PassCutoff is the overall score at or above which the recommendation
	// is at least "hire".
	PassCutoff float64
}

// Service coordinates the engine and the store. Read-modify-write cycles for
// one session are serialized by a per-id mutex so concurrent requests cannot
// drop each other's updates.
type Service struct {
	engine  *Engine
	store   Store
	metrics *observability.Metrics
	cfg     ServiceConfig

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(engine *Engine, st Store, metrics *observability.Metrics, cfg ServiceConfig) *Service {
	if cfg.PassCutoff <= 0 {
		cfg.PassCutoff = 70
	}
	return &Service{
		engine:  engine,
		store:   st,
		metrics: metrics,
		cfg:     cfg,
		locks:   make(map[string]*sync.Mutex),
	}
}

// StartParams are the fields required to open an interview.
type StartParams struct {
	CandidateName   string
	TargetRole      string
	ExperienceLevel string
}

// Start opens a new session and persists it in the setup phase.
func (s *Service) Start(ctx context.Context, params StartParams) (Session, error) {
	sess := s.engine.StartSession(params.CandidateName, params.TargetRole, params.ExperienceLevel)
	if err := s.store.Save(ctx, sess); err != nil {
		return Session{}, fmt.Errorf("persist new session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ActiveInterviews.Inc()
		s.metrics.InterviewEvents.WithLabelValues("created").Inc()
	}
	return sess, nil
}

// HandleMessage advances the session with one candidate message. Any failure
// (oracle, store) leaves the persisted session exactly as it was.
func (s *Service) HandleMessage(ctx context.Context, id, message string) (Session, Turn, error) {
	lock := s.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return Session{}, Turn{}, err
	}

	next, turn, err := s.engine.Advance(ctx, sess, message)
	if err != nil {
		return Session{}, Turn{}, err
	}

	if err := s.store.Save(ctx, next); err != nil {
		return Session{}, Turn{}, fmt.Errorf("persist session %s: %w", id, err)
	}

	if s.metrics != nil {
		if sess.Phase != PhaseConclusion && next.Phase == PhaseConclusion {
			s.metrics.ActiveInterviews.Dec()
			s.metrics.InterviewEvents.WithLabelValues("completed").Inc()
		}
		s.metrics.InterviewEvents.WithLabelValues("message").Inc()
	}
	return next, turn, nil
}

// Status returns the stored session unchanged.
func (s *Service) Status(ctx context.Context, id string) (Session, error) {
	return s.store.Get(ctx, id)
}

// Report aggregates the stored records into the final report.
func (s *Service) Report(ctx context.Context, id string) (Report, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return Report{}, err
	}
	return BuildReport(sess, s.cfg.PassCutoff)
}

func (s *Service) sessionLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}
