package task

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atelierhq/atelier/internal/feed"
	"github.com/atelierhq/atelier/internal/model"
	"github.com/atelierhq/atelier/internal/notify"
	"github.com/atelierhq/atelier/internal/store"
	"github.com/google/uuid"
)

// ReminderResultMsg is a tea.Msg sent when a reminder sweep completes.
type ReminderResultMsg struct {
	Created int
	Err     error
}

// sweepTimeout is the maximum time allowed for a single sweep.
const sweepTimeout = 30 * time.Second

// Sweeper generates deadline-reminder notifications for the current
// user's assigned active tasks. It sweeps once on start and then on a
// fixed interval, bridging results to the Bubble Tea runtime.
type Sweeper struct {
	store    store.Store
	feed     feed.ChangeFeed
	userID   string
	interval time.Duration

	resultCh  chan ReminderResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
}

// NewSweeper creates a sweeper for the given user.
func NewSweeper(st store.Store, f feed.ChangeFeed, userID string, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Sweeper{
		store:     st,
		feed:      f,
		userID:    userID,
		interval:  interval,
		resultCh:  make(chan ReminderResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the sweep loop and returns a command that waits for the
// first result.
func (s *Sweeper) Start() tea.Cmd {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	go s.loop()
	return s.waitForResult()
}

// Stop halts the sweep loop.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
}

// SweepNow triggers an immediate sweep without waiting for the ticker.
func (s *Sweeper) SweepNow() {
	select {
	case s.triggerCh <- struct{}{}:
	default:
	}
}

// WaitForNextResult returns a command that waits for the next sweep
// result. Call it after processing a ReminderResultMsg to keep listening.
func (s *Sweeper) WaitForNextResult() tea.Cmd {
	return s.waitForResult()
}

func (s *Sweeper) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runSweep()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.runSweep()
		case <-s.triggerCh:
			s.runSweep()
		}
	}
}

func (s *Sweeper) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	created, err := s.Sweep(ctx, time.Now())
	select {
	case s.resultCh <- ReminderResultMsg{Created: created, Err: err}:
	default:
		// Drop if the channel is full to avoid blocking the loop.
	}
}

// Sweep runs one reminder pass: for each of the user's active assigned
// tasks with a deadline, it fires the tier the deadline currently falls
// in unless that tier has already fired for this (user, task). A tier
// fires at most once per task per user, ever — the check is against
// notification existence, not a time window, so editing a deadline back
// into a tier never re-sends it. Returns how many reminders were created.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	status := model.TaskStatusActive
	tasks, err := s.store.ListTasks(ctx, store.TaskFilter{
		Status:     &status,
		AssigneeID: &s.userID,
	})
	if err != nil {
		return 0, err
	}

	created := 0
	for _, t := range tasks {
		if t.Deadline == nil {
			continue
		}
		tier := tierFor(t.Deadline.Sub(now))
		if tier == "" {
			continue
		}

		exists, err := s.store.HasNotification(ctx, s.userID, tier, t.ID)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		n := model.Notification{
			ID:            uuid.New().String(),
			RecipientID:   s.userID,
			Type:          tier,
			Title:         notify.Title(tier, ""),
			Message:       notify.TruncateMessage(t.Title),
			Link:          taskLink(t.ID),
			ReferenceType: "task",
			ReferenceID:   t.ID,
			CreatedAt:     now.UTC(),
		}
		if err := s.store.CreateNotifications(ctx, []model.Notification{n}); err != nil {
			return created, err
		}
		created++

		ev := feed.Event{Table: "notifications", Op: feed.OpInsert, RecordID: n.ID, At: n.CreatedAt}
		// Push is best-effort; the inbox catches up on its next load.
		_ = s.feed.Publish(ctx, feed.NotificationTopic(s.userID), ev)
	}
	return created, nil
}

// tierFor maps time-until-deadline to the reminder tier it falls in.
// Overdue and far-future deadlines fall in no tier.
func tierFor(until time.Duration) model.NotificationType {
	switch {
	case until <= 0:
		return ""
	case until <= 24*time.Hour:
		return model.NotificationDeadline24h
	case until <= 48*time.Hour:
		return model.NotificationDeadline48h
	case until <= 7*24*time.Hour:
		return model.NotificationDeadline7d
	default:
		return ""
	}
}

func (s *Sweeper) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-s.resultCh
		if !ok {
			return nil
		}
		return result
	}
}
