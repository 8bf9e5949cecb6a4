// Package daemon provides the long-running background goal monitor service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/theirongolddev/yeargoals/internal/engine"
	"github.com/theirongolddev/yeargoals/internal/model"
	"github.com/theirongolddev/yeargoals/internal/pipeline"
	"github.com/theirongolddev/yeargoals/internal/store"
)

// ErrAlreadyRunning is returned by Run when another daemon holds the lock.
var ErrAlreadyRunning = errors.New("daemon already running")

// Config controls the daemon runtime behavior.
type Config struct {
	Year         int // 0 follows the engine clock
	Category     model.Category
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	LockPath     string // empty disables the single-instance lock
}

// Snapshot is a compact progress state for status/event payloads.
type Snapshot struct {
	At              time.Time `json:"at"`
	Year            int       `json:"year"`
	Goals           int       `json:"goals"`
	CompletedGoals  int       `json:"completed_goals"`
	InProgressGoals int       `json:"in_progress_goals"`
	OverallProgress int       `json:"overall_progress"`
	TotalTasks      int       `json:"total_tasks"`
	CompletedTasks  int       `json:"completed_tasks"`
	CurrentStreak   int       `json:"current_streak"`
	LongestStreak   int       `json:"longest_streak"`
	Version         uint64    `json:"version"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Goals           int `json:"goals"`
	CompletedGoals  int `json:"completed_goals"`
	CompletedTasks  int `json:"completed_tasks"`
	OverallProgress int `json:"overall_progress"`
}

func (d Delta) isZero() bool {
	return d.Goals == 0 &&
		d.CompletedGoals == 0 &&
		d.CompletedTasks == 0 &&
		d.OverallProgress == 0
}

// Event types.
const (
	EventSnapshot = "snapshot"
	EventProgress = "progress_delta"
	EventMutation = "mutation"
)

// Event is emitted whenever the progress snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`

	// Set for mutation events only
	Op     engine.Op        `json:"op,omitempty"`
	Stage  engine.EventKind `json:"stage,omitempty"`
	GoalID string           `json:"goal_id,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Year            int       `json:"year"`
	Category        string    `json:"category,omitempty"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// GoalView is one row of /v1/goals.
type GoalView struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Type           model.GoalType `json:"type"`
	Category       model.Category `json:"category"`
	Year           int            `json:"year"`
	Progress       int            `json:"progress"`
	TotalTasks     int            `json:"total_tasks"`
	CompletedTasks int            `json:"completed_tasks"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	eng     *engine.Engine
	journal *store.Journal
	log     *slog.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithJournal serves recent mutation outcomes at /v1/history.
func WithJournal(j *store.Journal) Option {
	return func(s *Service) { s.journal = j }
}

// New returns a new daemon service over eng.
func New(eng *engine.Engine, cfg Config, opts ...Option) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 60 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8797"
	}

	s := &Service{
		cfg:       cfg,
		eng:       eng,
		log:       slog.New(slog.DiscardHandler),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	mux.HandleFunc("GET /v1/goals", s.handleGoals)
	mux.HandleFunc("GET /v1/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /v1/heatmap", s.handleHeatmap)
	mux.HandleFunc("GET /v1/history", s.handleHistory)
	mux.HandleFunc("POST /v1/refresh", s.handleRefresh)
	return mux
}

// Run holds the instance lock, serves the HTTP API, forwards engine events
// and refreshes on every interval until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.LockPath != "" {
		lock := flock.New(s.cfg.LockPath)
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire daemon lock: %w", err)
		}
		if !locked {
			return fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, s.cfg.LockPath)
		}
		defer func() { _ = lock.Unlock() }()
	}

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	events, unsubscribe := s.eng.Subscribe()
	defer unsubscribe()
	go s.forward(events)

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// forward turns engine mutation events into daemon events. Refreshes are
// reported by pollOnce.
func (s *Service) forward(events <-chan engine.Event) {
	for ev := range events {
		if ev.Kind == engine.EventRefreshed {
			continue
		}
		s.observe(ev)
	}
}

func (s *Service) observe(ev engine.Event) {
	now := s.eng.Now()
	snap := s.compute(now)

	s.mu.Lock()
	prev := s.snapshot
	s.snapshot = snap
	s.hasSnapshot = true
	s.nextEventID++
	out := Event{
		ID:        s.nextEventID,
		Type:      EventMutation,
		Timestamp: now,
		Snapshot:  snap,
		Delta:     diffSnapshots(prev, snap),
		Op:        ev.Op,
		Stage:     ev.Kind,
		GoalID:    ev.GoalID,
	}
	s.mu.Unlock()

	s.publishEvent(out)
}

func (s *Service) pollOnce(ctx context.Context) {
	if err := s.eng.Refresh(ctx); err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = time.Now()
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn("daemon poll failed", "err", err)
		return
	}

	now := s.eng.Now()
	snap := s.compute(now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      EventSnapshot,
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      EventProgress,
			Timestamp: now,
			Snapshot:  snap,
			Delta:     delta,
		}
		publish = true
	}
	s.mu.Unlock()

	s.log.Debug("daemon poll", "goals", snap.Goals, "progress", snap.OverallProgress, "published", publish)
	if publish {
		s.publishEvent(ev)
	}
}

func (s *Service) year(now time.Time) int {
	if s.cfg.Year > 0 {
		return s.cfg.Year
	}
	return now.Year()
}

// compute derives the snapshot for the configured year and category.
func (s *Service) compute(now time.Time) Snapshot {
	snap := s.eng.Snapshot()
	goals := pipeline.FilterByCategory(snap.Goals, s.cfg.Category)
	a := pipeline.Analyze(goals, snap.Activity, s.year(now), now)
	return snapshotFromAnalytics(a, now, snap.Version)
}

func snapshotFromAnalytics(a model.Analytics, at time.Time, version uint64) Snapshot {
	return Snapshot{
		At:              at,
		Year:            a.Year,
		Goals:           a.TotalGoals,
		CompletedGoals:  a.CompletedGoals,
		InProgressGoals: a.InProgressGoals,
		OverallProgress: a.OverallProgress,
		TotalTasks:      a.TotalTasks,
		CompletedTasks:  a.CompletedTasks,
		CurrentStreak:   a.CurrentStreak,
		LongestStreak:   a.LongestStreak,
		Version:         version,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Goals:           curr.Goals - prev.Goals,
		CompletedGoals:  curr.CompletedGoals - prev.CompletedGoals,
		CompletedTasks:  curr.CompletedTasks - prev.CompletedTasks,
		OverallProgress: curr.OverallProgress - prev.OverallProgress,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Year:            s.snapshot.Year,
		Category:        string(s.cfg.Category),
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

// queryYear reads ?year=, falling back to the configured year.
func (s *Service) queryYear(r *http.Request) (int, error) {
	v := r.URL.Query().Get("year")
	if v == "" {
		return s.year(s.eng.Now()), nil
	}
	y, err := strconv.Atoi(v)
	if err != nil || y < 1 {
		return 0, fmt.Errorf("invalid year %q", v)
	}
	return y, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, events)
}

func (s *Service) handleGoals(w http.ResponseWriter, r *http.Request) {
	year, err := s.queryYear(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	category := s.cfg.Category
	if c := r.URL.Query().Get("category"); c != "" {
		category = model.NormalizeCategory(c)
	}

	goals := pipeline.FilterByCategory(pipeline.FilterByYear(s.eng.Goals(), year), category)
	out := make([]GoalView, 0, len(goals))
	for _, g := range goals {
		total, done := model.TaskCounts(g)
		out = append(out, GoalView{
			ID:             g.ID,
			Title:          g.Title,
			Type:           g.Type(),
			Category:       g.Category,
			Year:           g.Year,
			Progress:       model.Progress(g),
			TotalTasks:     total,
			CompletedTasks: done,
		})
	}
	writeJSON(w, out)
}

func (s *Service) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	year, err := s.queryYear(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	snap := s.eng.Snapshot()
	goals := pipeline.FilterByCategory(snap.Goals, s.cfg.Category)
	writeJSON(w, pipeline.Analyze(goals, snap.Activity, year, s.eng.Now()))
}

func (s *Service) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	year, err := s.queryYear(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, pipeline.Heatmap(s.eng.Activity(), year))
}

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		http.Error(w, "journal disabled", http.StatusNotFound)
		return
	}
	n := 50
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid n %q", v), http.StatusBadRequest)
			return
		}
		n = parsed
	}
	entries, err := s.journal.Recent(r.Context(), n)
	if err != nil {
		s.log.Warn("reading journal", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, entries)
}

func (s *Service) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.pollOnce(r.Context())
	st := s.snapshotStatus()
	if st.LastError != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(st)
		return
	}
	writeJSON(w, st)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
