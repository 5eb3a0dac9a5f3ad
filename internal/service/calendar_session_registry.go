package service

import (
	"sync"
	"sync/atomic"
	"time"

	"clinic-calendar/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

// Interval for sweeping idle calendar sessions
const sessionCleanupInterval = time.Minute

// SourceFactory picks the appointment source a session's store loads from.
type SourceFactory func(p entity.Principal) CalendarSource

// CalendarSessionRegistry keeps one CalendarStore per authenticated session. Stores are
// created lazily and evicted after idleTimeout without use.
// Call Stop() during graceful shutdown.
type CalendarSessionRegistry struct {
	sources     SourceFactory
	defaultView entity.CalendarView
	idleTimeout time.Duration
	log         *logrus.Logger

	stores sync.Map // map[string]*CalendarStore

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

func NewCalendarSessionRegistry(sources SourceFactory, defaultView entity.CalendarView, idleTimeout time.Duration, log *logrus.Logger) *CalendarSessionRegistry {
	r := &CalendarSessionRegistry{
		sources:     sources,
		defaultView: defaultView,
		idleTimeout: idleTimeout,
		log:         log,
		stopChan:    make(chan struct{}),
	}

	r.wg.Add(1)
	go r.cleanupLoop()

	return r
}

// Stop ends the cleanup loop and closes every store. Safe to call multiple times.
func (r *CalendarSessionRegistry) Stop() {
	if r.stopped.CompareAndSwap(false, true) {
		close(r.stopChan)
		r.wg.Wait()
		r.stores.Range(func(key, value any) bool {
			value.(*CalendarStore).Close()
			r.stores.Delete(key)
			return true
		})
		r.log.Info("CalendarSessionRegistry stopped")
	}
}

// Get returns the store of the caller's session, creating it on first use.
func (r *CalendarSessionRegistry) Get(p entity.Principal) *CalendarStore {
	if existing, ok := r.stores.Load(p.SessionID); ok {
		store := existing.(*CalendarStore)
		store.touch()
		return store
	}

	store, loaded := r.stores.LoadOrStore(p.SessionID, NewCalendarStore(r.sources(p), r.defaultView, r.log))
	if !loaded {
		r.log.Debugf("Created calendar store for session %s", p.SessionID)
	}
	return store.(*CalendarStore)
}

// Lookup returns the store of a session without creating one.
func (r *CalendarSessionRegistry) Lookup(sessionID string) (*CalendarStore, bool) {
	v, ok := r.stores.Load(sessionID)
	if !ok {
		return nil, false
	}
	return v.(*CalendarStore), true
}

// Remove drops a session's store, e.g. on logout.
func (r *CalendarSessionRegistry) Remove(sessionID string) {
	if v, ok := r.stores.LoadAndDelete(sessionID); ok {
		v.(*CalendarStore).Close()
	}
}

func (r *CalendarSessionRegistry) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			r.log.Debug("Calendar session cleanup goroutine stopping")
			return
		case <-ticker.C:
			r.evictIdle(time.Now())
		}
	}
}

func (r *CalendarSessionRegistry) evictIdle(now time.Time) int {
	cutoff := now.Add(-r.idleTimeout)
	var evicted int

	r.stores.Range(func(key, value any) bool {
		store, ok := value.(*CalendarStore)
		if !ok {
			return true
		}
		if store.idleSince().Before(cutoff) {
			r.stores.Delete(key)
			store.Close()
			evicted++
		}
		return true
	})

	if evicted > 0 {
		r.log.Debugf("Evicted %d idle calendar sessions", evicted)
	}
	return evicted
}
