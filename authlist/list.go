package authlist

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// List holds the authorizations of one user and keeps them in sync with the
// server. Load and revoke requests run as independent tasks; their results
// are applied one at a time, in completion order, so the last writer wins.
//
// Subscribers are called after every transition with the new State, one
// transition at a time from inside the task that caused it. They may call
// back into the List, except Close and Wait, which wait for that task.
type List struct {
	gateway Gateway

	// notifyMu orders transitions together with their notifications.
	notifyMu sync.Mutex

	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a List.
type Option func(*List)

// WithInitialState seeds the list, e.g. with records the caller already has.
func WithInitialState(s State) Option {
	return func(l *List) { l.state = s }
}

// NewList creates an empty List backed by gateway.
func NewList(gateway Gateway, opts ...Option) *List {
	ctx, cancel := context.WithCancel(context.Background())
	l := &List{
		gateway: gateway,
		subs:    make(map[int]func(State)),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Mount starts loading the records. The load is abandoned when ctx is done
// or the List is closed.
func (l *List) Mount(ctx context.Context) {
	l.start(ctx, func(ctx context.Context) func(State) State {
		records, err := l.gateway.List(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load authorizations")
			return func(s State) State { return s.ApplyLoadError(err) }
		}
		return func(s State) State { return s.ApplyLoad(records) }
	})
}

// Revoke asks the server to revoke clientID and removes it from the list
// once the server confirms. Concurrent revokes of the same id are all sent.
func (l *List) Revoke(clientID string) {
	l.start(l.ctx, func(ctx context.Context) func(State) State {
		if err := l.gateway.Revoke(ctx, clientID); err != nil {
			log.Warn().Err(err).Str("client_id", clientID).Msg("Failed to revoke authorization")
			return func(s State) State { return s.ApplyRevokeError(clientID, err) }
		}
		return func(s State) State { return s.ApplyRevoke(clientID) }
	})
}

// State returns the current state.
func (l *List) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Records returns the current records.
func (l *List) Records() []Record {
	return l.State().Authorizations
}

// Rows returns one row per record with its revoke callback bound to l.
func (l *List) Rows() []RowView {
	records := l.Records()
	rows := make([]RowView, len(records))
	for i, r := range records {
		rows[i] = RowView{Record: r, OnRevoke: l.Revoke}
	}
	return rows
}

// Subscribe registers fn for state changes and returns a function that
// removes it again.
func (l *List) Subscribe(fn func(State)) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs, id)
	}
}

// Wait blocks until all started tasks have finished.
func (l *List) Wait() {
	l.wg.Wait()
}

// Close cancels pending tasks and waits for them. No result is applied
// after Close returns.
func (l *List) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	l.cancel()
	l.wg.Wait()
}

func (l *List) start(parent context.Context, run func(ctx context.Context) func(State) State) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()

		ctx, cancel := context.WithCancel(parent)
		defer cancel()
		stop := context.AfterFunc(l.ctx, cancel)
		defer stop()

		transition := run(ctx)
		l.apply(ctx, transition)
	}()
}

func (l *List) apply(ctx context.Context, transition func(State) State) {
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()

	l.mu.Lock()
	if l.closed || ctx.Err() != nil {
		l.mu.Unlock()
		return
	}
	l.state = transition(l.state)
	state := l.state
	subs := make([]func(State), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
