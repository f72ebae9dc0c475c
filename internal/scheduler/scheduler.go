package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"MarketCourier/internal/model"
	"MarketCourier/internal/recorder"
	"MarketCourier/internal/report"
)

// PriceSource fetches a fresh live price map.
type PriceSource interface {
	Collect(ctx context.Context) (model.PriceMap, error)
}

// Snapshots refreshes and reads the hourly comparison baseline.
type Snapshots interface {
	Refresh(ctx context.Context) (int, error)
	Read(ctx context.Context) model.PriceMap
}

// Subscribers enumerates every stored profile.
type Subscribers interface {
	Profiles() (map[string]model.Profile, error)
}

// Sender delivers a rendered report to one subscriber.
type Sender interface {
	SendWithRetry(ctx context.Context, chatID, text string, maxRetries int) error
}

type claimPruner interface {
	PruneClaims(olderThan time.Time) (int64, error)
}

// claimRetention is how long dispatch claims are kept in a durable ledger.
const claimRetention = 48 * time.Hour

// Options tunes the scheduler; zero values fall back to defaults.
type Options struct {
	Location            *time.Location
	InitialRefreshDelay time.Duration
	Concurrency         int
	SendRetries         int
}

// Scheduler manages the hourly snapshot refresh and the minute dispatch scan.
type Scheduler struct {
	Cron        *cron.Cron
	Prices      PriceSource
	Snapshots   Snapshots
	Subscribers Subscribers
	Sender      Sender
	Recorder    recorder.Recorder
	Ctx         context.Context

	loc          *time.Location
	initialDelay time.Duration
	concurrency  int
	sendRetries  int
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, opts Options, prices PriceSource, snaps Snapshots, subs Subscribers, sender Sender, rec recorder.Recorder) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.SendRetries < 0 {
		opts.SendRetries = 0
	}

	logger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(opts.Location),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		Prices:       prices,
		Snapshots:    snaps,
		Subscribers:  subs,
		Sender:       sender,
		Recorder:     rec,
		Ctx:          ctx,
		loc:          opts.Location,
		initialDelay: opts.InitialRefreshDelay,
		concurrency:  opts.Concurrency,
		sendRetries:  opts.SendRetries,
	}
}

// RegisterAll registers the hourly refresh and the minute dispatch tasks.
func (s *Scheduler) RegisterAll(hourlyCron, minuteCron string) error {
	if _, err := s.Cron.AddFunc(hourlyCron, s.refreshTask); err != nil {
		return fmt.Errorf("register hourly refresh: %w", err)
	}
	if _, err := s.Cron.AddFunc(minuteCron, s.minuteTask); err != nil {
		return fmt.Errorf("register minute dispatch: %w", err)
	}
	return nil
}

// Start starts the cron scheduler and the delayed first refresh.
func (s *Scheduler) Start() {
	s.Cron.Start()
	go func() {
		select {
		case <-s.Ctx.Done():
		case <-time.After(s.initialDelay):
			s.refreshTask()
		}
	}()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

func (s *Scheduler) refreshTask() {
	log.Println("[INFO] running hourly snapshot refresh")
	n, err := s.Snapshots.Refresh(s.Ctx)
	evt := &recorder.RefreshEvent{OK: err == nil, Symbols: n, At: time.Now()}
	if err != nil {
		log.Printf("[ERROR] snapshot refresh: %v", err)
		evt.Error = err.Error()
	} else {
		log.Printf("[INFO] snapshot refreshed: %d symbols", n)
	}
	if err := s.Recorder.RecordRefresh(evt); err != nil {
		log.Printf("[ERROR] record refresh: %v", err)
	}

	if p, ok := s.Recorder.(claimPruner); ok {
		if _, err := p.PruneClaims(time.Now().Add(-claimRetention)); err != nil {
			log.Printf("[WARN] prune dispatch claims: %v", err)
		}
	}
}

func (s *Scheduler) minuteTask() {
	s.RunDueReports(s.Ctx, time.Now())
}

// RunDueReports sends the aggregated report to every subscriber whose
// schedule matches now's local HH:MM. It returns the number delivered.
// Each (subscriber, minute) is dispatched at most once even if called again.
func (s *Scheduler) RunDueReports(ctx context.Context, now time.Time) int {
	local := now.In(s.loc)
	hhmm := local.Format("15:04")
	slot := local.Format("2006-01-02 15:04")

	profiles, err := s.Subscribers.Profiles()
	if err != nil {
		log.Printf("[ERROR] load subscribers: %v", err)
		return 0
	}

	var due []string
	for id, p := range profiles {
		if p.Due(hhmm) {
			due = append(due, id)
		}
	}
	if len(due) == 0 {
		return 0
	}
	slices.Sort(due)

	live, err := s.Prices.Collect(ctx)
	if err == nil && len(live) == 0 {
		err = errors.New("no prices")
	}
	if err != nil {
		log.Printf("[WARN] scheduled fetch at %s failed, skipping %d subscribers: %v", hhmm, len(due), err)
		return 0
	}
	snap := s.Snapshots.Read(ctx)
	header := report.DateHeader(local)
	runID := uuid.NewString()
	log.Printf("[INFO] dispatch run %s at %s: %d subscribers due", runID, hhmm, len(due))

	var sent atomic.Int32
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, id := range due {
		p := profiles[id]
		g.Go(func() error {
			if s.dispatch(ctx, runID, id, slot, p, live, snap, header) {
				sent.Add(1)
			}
			return nil
		})
	}
	g.Wait()
	return int(sent.Load())
}

// dispatch claims the slot, renders and delivers one subscriber's report.
// Failures are logged and never propagated to other subscribers.
func (s *Scheduler) dispatch(ctx context.Context, runID, id, slot string, p model.Profile, live, snap model.PriceMap, header string) bool {
	claimed, err := s.Recorder.ClaimDispatch(id, slot)
	if err != nil {
		log.Printf("[ERROR] claim dispatch %s@%s: %v", id, slot, err)
		return false
	}
	if !claimed {
		log.Printf("[INFO] dispatch %s@%s already handled, skipping", id, slot)
		return false
	}

	text := report.AggregatedReport(p.Schedule.Reports, p, live, snap, header)
	evt := &recorder.DispatchEvent{
		RunID:        runID,
		SubscriberID: id,
		Slot:         slot,
		Reports:      p.Schedule.Reports,
		Status:       recorder.StatusSent,
		Bytes:        len(text),
		At:           time.Now(),
	}

	err = s.Sender.SendWithRetry(ctx, id, text, s.sendRetries)
	if err != nil {
		log.Printf("[ERROR] scheduled report to %s: %v", id, err)
		evt.Status = recorder.StatusFailed
		evt.Error = err.Error()
	}
	if rerr := s.Recorder.RecordDispatch(evt); rerr != nil {
		log.Printf("[ERROR] record dispatch: %v", rerr)
	}
	return err == nil
}
