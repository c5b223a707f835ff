package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/analyzer/repository"
	"golang-stock-analyzer/internal/entity"
	"golang-stock-analyzer/pkg/logger"
	"golang-stock-analyzer/pkg/telegram"
	"golang-stock-analyzer/pkg/utils"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	defaultMaxWorkers       = 10
	defaultSubscriberBuffer = 64
	defaultTaskRetention    = time.Hour
	relayBuffer             = 1024
	relayTimeout            = 5 * time.Second
	sinkTimeout             = 10 * time.Second
)

var (
	// ErrTaskFinished is returned when cancelling a task that already reached a terminal state.
	ErrTaskFinished = errors.New("task already finished")
	// ErrShuttingDown is returned for submissions after Shutdown started.
	ErrShuttingDown = errors.New("batch service is shutting down")
)

// BatchConfig bounds the orchestrator.
type BatchConfig struct {
	MaxWorkers       int
	Deadline         time.Duration
	Retention        time.Duration
	SubscriberBuffer int
}

// BatchService runs many pipelines concurrently and tracks their progress.
type BatchService interface {
	SubmitBatch(ctx context.Context, symbols []string, opts dto.AnalyzeOptions) (string, error)
	// GetProgress returns a snapshot of the task. Once a task has left
	// memory it is rebuilt from the persisted batch run, without results.
	GetProgress(ctx context.Context, taskID string) (dto.BatchTask, error)
	// Subscribe returns a channel of progress events and a function that
	// unsubscribes. The channel is closed when the task finishes.
	Subscribe(taskID string) (<-chan dto.ProgressEvent, func(), error)
	Cancel(taskID string) error
	Shutdown(ctx context.Context) error
}

type batchService struct {
	cfg          BatchConfig
	log          *logger.Logger
	analysis     AnalysisService
	historyRepo  repository.AnalysisHistoryRepository
	batchRunRepo repository.BatchRunRepository
	publisher    repository.ProgressPublisher
	notifier     telegram.Notifier

	tasks *cache.Cache
	relay chan dto.ProgressEvent

	// ctx is the parent of every pipeline; it is cancelled only by Shutdown.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	closing bool

	now   func() time.Time
	newID func() string
}

// batchTask is the live state of one submitted batch. Every field of task
// is guarded by mu.
type batchTask struct {
	mu          sync.Mutex
	task        dto.BatchTask
	opts        dto.AnalyzeOptions
	subscribers map[int]chan dto.ProgressEvent
	nextSubID   int
}

// NewBatchService creates the orchestrator. historyRepo, batchRunRepo,
// publisher and notifier are optional.
func NewBatchService(cfg BatchConfig, log *logger.Logger,
	analysis AnalysisService,
	historyRepo repository.AnalysisHistoryRepository,
	batchRunRepo repository.BatchRunRepository,
	publisher repository.ProgressPublisher,
	notifier telegram.Notifier) BatchService {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = defaultMaxWorkers
	}
	if cfg.SubscriberBuffer <= 0 {
		cfg.SubscriberBuffer = defaultSubscriberBuffer
	}
	if cfg.Retention <= 0 {
		cfg.Retention = defaultTaskRetention
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &batchService{
		cfg:          cfg,
		log:          log,
		analysis:     analysis,
		historyRepo:  historyRepo,
		batchRunRepo: batchRunRepo,
		publisher:    publisher,
		notifier:     notifier,
		tasks:        cache.New(cfg.Retention, cfg.Retention/2),
		ctx:          ctx,
		cancel:       cancel,
		now:          time.Now,
		newID:        uuid.NewString,
	}
	if publisher != nil {
		s.relay = make(chan dto.ProgressEvent, relayBuffer)
		utils.GoSafe(s.log, s.relayLoop)
	}
	return s
}

func (s *batchService) SubmitBatch(ctx context.Context, symbols []string, opts dto.AnalyzeOptions) (string, error) {
	unique := dedupeSymbols(symbols)
	if len(unique) == 0 {
		return "", dto.NewError(dto.KindValidation, "", "symbol list is empty", nil)
	}

	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return "", ErrShuttingDown
	}
	s.wg.Add(1)
	s.mu.Unlock()

	t := &batchTask{
		task: dto.BatchTask{
			TaskID:    s.newID(),
			Symbols:   unique,
			Statuses:  make(map[string]dto.SymbolStatus, len(unique)),
			Status:    dto.TaskCreated,
			CreatedAt: s.now().UTC(),
		},
		opts:        opts,
		subscribers: make(map[int]chan dto.ProgressEvent),
	}
	for _, symbol := range unique {
		t.task.Statuses[symbol] = dto.SymbolStatus{State: dto.SymbolPending}
	}
	taskID := t.task.TaskID
	s.tasks.Set(taskID, t, cache.NoExpiration)

	s.log.InfoContext(ctx, "Batch submitted",
		zap.String("task_id", taskID),
		zap.Int("total", len(unique)),
		zap.Int("duplicates", len(symbols)-len(unique)))

	utils.GoSafe(s.log, func() {
		defer s.wg.Done()
		s.run(t)
	})
	return taskID, nil
}

// dedupeSymbols collapses repeated inputs, keeping first-seen order. Valid
// symbols are keyed by their normalized code.
func dedupeSymbols(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		key := strings.ToUpper(strings.TrimSpace(r))
		if symbol, err := dto.ParseSymbol(r); err == nil {
			key = symbol.String()
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

func (s *batchService) run(t *batchTask) {
	taskID := t.task.TaskID
	symbols := t.task.Symbols
	ctx := logger.WithTaskID(s.ctx, taskID)

	t.mu.Lock()
	if t.task.Status == dto.TaskCreated {
		started := s.now().UTC()
		t.task.Status = dto.TaskRunning
		t.task.StartedAt = &started
	}
	t.mu.Unlock()

	var deadline <-chan time.Time
	if s.cfg.Deadline > 0 {
		timer := time.NewTimer(s.cfg.Deadline)
		defer timer.Stop()
		deadline = timer.C
	}

	queue := make(chan string, len(symbols))
	for _, symbol := range symbols {
		queue <- symbol
	}
	close(queue)

	workers := s.cfg.MaxWorkers
	if workers > len(symbols) {
		workers = len(symbols)
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		utils.GoSafe(s.log, func() {
			defer wg.Done()
			for symbol := range queue {
				// Symbols failed by cancel or deadline are no longer Pending and are skipped.
				if !s.transition(t, symbol, dto.SymbolStatus{State: dto.SymbolRunning}) {
					continue
				}
				s.process(ctx, t, symbol)
			}
		})
	}

	done := make(chan struct{})
	utils.GoSafe(s.log, func() {
		wg.Wait()
		close(done)
	})

	select {
	case <-done:
	case <-deadline:
		s.log.WarnContext(ctx, "Batch deadline exceeded", logger.DurationField("deadline", s.cfg.Deadline))
		t.mu.Lock()
		s.failPendingLocked(t, dto.KindTaskTimeout, "batch deadline exceeded")
		t.mu.Unlock()
		<-done
	}

	s.finish(ctx, t)
}

func (s *batchService) process(ctx context.Context, t *batchTask, symbol string) {
	var result dto.AnalysisResult
	err := utils.SafeCall(func() error {
		var err error
		result, err = s.analysis.Run(ctx, symbol, t.opts)
		return err
	})
	if err != nil {
		failure := dto.FailureOf(symbol, err)
		s.log.WarnContext(ctx, "Symbol analysis failed",
			zap.String("symbol", symbol),
			zap.String("kind", string(failure.Kind)),
			zap.String("reason", failure.Reason))
		s.transition(t, symbol, dto.SymbolStatus{State: dto.SymbolFailed, Failure: &failure})
		return
	}

	s.transition(t, symbol, dto.SymbolStatus{State: dto.SymbolSucceeded, Result: &result})

	if s.historyRepo != nil {
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkTimeout)
		defer cancel()
		if err := s.historyRepo.Save(saveCtx, result); err != nil {
			s.log.ErrorContext(ctx, "Failed to save analysis history", zap.String("symbol", symbol), zap.Error(err))
		}
	}
}

func (s *batchService) transition(t *batchTask, symbol string, next dto.SymbolStatus) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return s.transitionLocked(t, symbol, next)
}

// transitionLocked is the only place symbol statuses and counters change.
// The event is broadcast under the same lock, so each symbol's events are
// delivered in transition order. A symbol failed before it ever started
// emits no event.
func (s *batchService) transitionLocked(t *batchTask, symbol string, next dto.SymbolStatus) bool {
	current, ok := t.task.Statuses[symbol]
	if !ok || !allowedTransition(current.State, next.State) {
		return false
	}
	t.task.Statuses[symbol] = next

	event := dto.ProgressEvent{
		TaskID:     t.task.TaskID,
		Symbol:     symbol,
		TotalCount: len(t.task.Symbols),
		Timestamp:  s.now().UTC(),
	}
	switch next.State {
	case dto.SymbolRunning:
		event.Kind = dto.ProgressStarted
	case dto.SymbolSucceeded:
		t.task.Completed++
		event.Kind = dto.ProgressCompleted
	case dto.SymbolFailed:
		t.task.Failed++
		event.Kind = dto.ProgressFailed
		if next.Failure != nil {
			event.Reason = next.Failure.Reason
		}
	}
	event.CompletedCount = t.task.Completed + t.task.Failed

	if current.State == dto.SymbolPending && next.State == dto.SymbolFailed {
		return true
	}
	s.broadcastLocked(t, event)
	return true
}

func allowedTransition(from, to dto.SymbolState) bool {
	switch from {
	case dto.SymbolPending:
		return to == dto.SymbolRunning || to == dto.SymbolFailed
	case dto.SymbolRunning:
		return to == dto.SymbolSucceeded || to == dto.SymbolFailed
	default:
		return false
	}
}

func (s *batchService) failPendingLocked(t *batchTask, kind dto.ErrorKind, reason string) {
	for _, symbol := range t.task.Symbols {
		if t.task.Statuses[symbol].State != dto.SymbolPending {
			continue
		}
		failure := dto.Failure{Symbol: symbol, Kind: kind, Reason: reason}
		s.transitionLocked(t, symbol, dto.SymbolStatus{State: dto.SymbolFailed, Failure: &failure})
	}
}

func (s *batchService) broadcastLocked(t *batchTask, event dto.ProgressEvent) {
	for _, ch := range t.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
	if s.relay != nil {
		select {
		case s.relay <- event:
		default:
			s.log.Debug("Progress relay full, dropping event", zap.String("task_id", event.TaskID))
		}
	}
}

func (s *batchService) relayLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event := <-s.relay:
			ctx, cancel := context.WithTimeout(context.Background(), relayTimeout)
			if err := s.publisher.Publish(ctx, event); err != nil {
				s.log.Warn("Failed to relay progress event", zap.String("task_id", event.TaskID), zap.Error(err))
			}
			cancel()
		}
	}
}

func (s *batchService) finish(ctx context.Context, t *batchTask) {
	t.mu.Lock()
	// Workers only skip symbols that already failed, so anything left here
	// was lost to a recovered worker panic.
	for _, symbol := range t.task.Symbols {
		if st := t.task.Statuses[symbol]; !st.State.Terminal() {
			failure := dto.Failure{Symbol: symbol, Kind: dto.KindInternal, Reason: "worker stopped before the symbol finished"}
			if st.State == dto.SymbolPending {
				s.transitionLocked(t, symbol, dto.SymbolStatus{State: dto.SymbolRunning})
			}
			s.transitionLocked(t, symbol, dto.SymbolStatus{State: dto.SymbolFailed, Failure: &failure})
		}
	}

	switch {
	case t.task.Status == dto.TaskCancelling:
		t.task.Status = dto.TaskCancelled
	case t.task.Failed > 0:
		t.task.Status = dto.TaskCompletedWithFailures
	default:
		t.task.Status = dto.TaskCompleted
	}
	finished := s.now().UTC()
	t.task.FinishedAt = &finished
	for id, ch := range t.subscribers {
		close(ch)
		delete(t.subscribers, id)
	}
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	s.tasks.Set(snapshot.TaskID, t, cache.DefaultExpiration)

	s.log.InfoContext(ctx, "Batch finished",
		zap.String("status", string(snapshot.Status)),
		zap.Int("completed", snapshot.Completed),
		zap.Int("failed", snapshot.Failed))

	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkTimeout)
	defer cancel()
	if s.batchRunRepo != nil {
		if err := s.batchRunRepo.Save(sinkCtx, snapshot); err != nil {
			s.log.ErrorContext(ctx, "Failed to save batch run", zap.Error(err))
		}
	}
	if t.opts.Notify && s.notifier != nil {
		s.notify(ctx, snapshot)
	}
}

func (s *batchService) notify(ctx context.Context, task dto.BatchTask) {
	narratives := make(map[string]string, len(task.Statuses))
	for symbol, st := range task.Statuses {
		if st.Result == nil {
			continue
		}
		if st.Result.Narrative != nil {
			narratives[symbol] = *st.Result.Narrative
		} else {
			narratives[symbol] = FallbackNarrative(summaryOf(*st.Result))
		}
	}
	for _, message := range telegram.FormatBatchSummaryForTelegram(task, narratives) {
		if err := s.notifier.SendMessage(message); err != nil {
			s.log.ErrorContext(ctx, "Failed to send batch summary", zap.Error(err))
			return
		}
	}
}

// snapshotLocked copies the task so callers never share mutable state with
// the workers. Results are shared by value; their maps and slices are never
// modified after the pipeline returns.
func (t *batchTask) snapshotLocked() dto.BatchTask {
	out := t.task
	out.Symbols = append([]string(nil), t.task.Symbols...)
	out.Statuses = make(map[string]dto.SymbolStatus, len(t.task.Statuses))
	for symbol, st := range t.task.Statuses {
		if st.Result != nil {
			result := *st.Result
			st.Result = &result
		}
		if st.Failure != nil {
			failure := *st.Failure
			st.Failure = &failure
		}
		out.Statuses[symbol] = st
	}
	if t.task.StartedAt != nil {
		started := *t.task.StartedAt
		out.StartedAt = &started
	}
	if t.task.FinishedAt != nil {
		finished := *t.task.FinishedAt
		out.FinishedAt = &finished
	}
	return out
}

func (s *batchService) lookup(taskID string) (*batchTask, error) {
	v, ok := s.tasks.Get(taskID)
	if !ok {
		return nil, dto.ErrTaskNotFound
	}
	return v.(*batchTask), nil
}

func (s *batchService) GetProgress(ctx context.Context, taskID string) (dto.BatchTask, error) {
	t, err := s.lookup(taskID)
	if err == nil {
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.snapshotLocked(), nil
	}
	if s.batchRunRepo == nil || taskID == "" {
		return dto.BatchTask{}, err
	}

	run, err := s.batchRunRepo.GetByTaskID(ctx, taskID)
	if err != nil {
		return dto.BatchTask{}, err
	}
	return archivedTask(run), nil
}

// archivedTask rebuilds a snapshot from a persisted summary row. Per-symbol
// results are not stored, so succeeded entries carry no Result.
func archivedTask(run *entity.BatchRun) dto.BatchTask {
	failed := make(map[string]bool, len(run.FailedSymbols))
	for _, symbol := range run.FailedSymbols {
		failed[symbol] = true
	}

	statuses := make(map[string]dto.SymbolStatus, len(run.Symbols))
	for _, symbol := range run.Symbols {
		if failed[symbol] {
			statuses[symbol] = dto.SymbolStatus{
				State:   dto.SymbolFailed,
				Failure: &dto.Failure{Symbol: symbol, Kind: dto.KindInternal, Reason: "archived"},
			}
			continue
		}
		statuses[symbol] = dto.SymbolStatus{State: dto.SymbolSucceeded}
	}

	return dto.BatchTask{
		TaskID:     run.TaskID,
		Symbols:    append([]string(nil), run.Symbols...),
		Statuses:   statuses,
		Status:     dto.TaskStatus(run.Status),
		Completed:  run.Completed,
		Failed:     run.Failed,
		CreatedAt:  run.CreatedAt,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
}

func (s *batchService) Subscribe(taskID string) (<-chan dto.ProgressEvent, func(), error) {
	t, err := s.lookup(taskID)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan dto.ProgressEvent, s.cfg.SubscriberBuffer)
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.task.Status.Terminal() {
		close(ch)
		return ch, func() {}, nil
	}

	id := t.nextSubID
	t.nextSubID++
	t.subscribers[id] = ch
	unsubscribe := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if c, ok := t.subscribers[id]; ok {
			delete(t.subscribers, id)
			close(c)
		}
	}
	return ch, unsubscribe, nil
}

// Cancel stops new symbols from starting. Pending symbols fail at once and
// in-flight pipelines run to completion.
func (s *batchService) Cancel(taskID string) error {
	t, err := s.lookup(taskID)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case t.task.Status.Terminal():
		return ErrTaskFinished
	case t.task.Status == dto.TaskCancelling:
		return nil
	}
	t.task.Status = dto.TaskCancelling
	s.failPendingLocked(t, dto.KindCancelled, "cancelled")
	s.log.Info("Batch cancelling", zap.String("task_id", taskID))
	return nil
}

// Shutdown cancels every running task and waits for in-flight pipelines.
// When ctx expires first the pipelines are aborted through their context.
func (s *batchService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	for id := range s.tasks.Items() {
		if err := s.Cancel(id); err != nil && !errors.Is(err, ErrTaskFinished) && !errors.Is(err, dto.ErrTaskNotFound) {
			s.log.Warn("Failed to cancel task on shutdown", zap.String("task_id", id), zap.Error(err))
		}
	}

	done := make(chan struct{})
	utils.GoSafe(s.log, func() {
		s.wg.Wait()
		close(done)
	})

	defer s.cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
