package usecases

import (
	"context"
	"sync"
	"time"

	"card-clicker/internal/game"
	"card-clicker/internal/models"
)

// session serializes every action on one player. Jobs run one at a time on
// the session goroutine, which is the only place state is read or replaced.
type session struct {
	playerID string
	state    *game.Session

	inbox chan func()
	quit  chan struct{}
	done  chan struct{}

	tickerMU   sync.Mutex
	stopTicker context.CancelFunc
	tickerDone chan struct{}
	closing    bool

	closeOnce sync.Once
	closeErr  error
}

func newSession(state *game.Session) *session {
	s := &session{
		playerID: state.Player.ID,
		state:    state,
		inbox:    make(chan func()),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *session) run() {
	defer close(s.done)
	for {
		select {
		case job := <-s.inbox:
			job()
		case <-s.quit:
			return
		}
	}
}

// do waits for job to run on the session goroutine. Once accepted a job
// always runs to completion, even if ctx is cancelled meanwhile.
func (s *session) do(ctx context.Context, job func() error) error {
	errc := make(chan error, 1)
	select {
	case s.inbox <- func() { errc <- job() }:
	case <-s.quit:
		return models.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-errc
}

// startTicker calls tick every interval until stopTicking. Ticks go through
// do like any other action.
func (s *session) startTicker(interval time.Duration, tick func(ctx context.Context)) bool {
	s.tickerMU.Lock()
	defer s.tickerMU.Unlock()

	if s.closing || s.stopTicker != nil || interval <= 0 {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.stopTicker, s.tickerDone = cancel, done

	go func() {
		defer close(done)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				tick(ctx)
			}
		}
	}()
	return true
}

// stopTicking cancels the ticker and waits until no tick is in flight.
func (s *session) stopTicking() {
	s.tickerMU.Lock()
	cancel, done := s.stopTicker, s.tickerDone
	s.stopTicker, s.tickerDone = nil, nil
	s.tickerMU.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *session) isClosing() bool {
	s.tickerMU.Lock()
	defer s.tickerMU.Unlock()
	return s.closing
}

func (s *session) ticking() bool {
	s.tickerMU.Lock()
	defer s.tickerMU.Unlock()
	return s.stopTicker != nil
}

// close stops the ticker, runs final as the last job and stops the goroutine.
func (s *session) close(ctx context.Context, final func() error) error {
	s.closeOnce.Do(func() {
		s.tickerMU.Lock()
		s.closing = true
		s.tickerMU.Unlock()

		s.stopTicking()
		s.closeErr = s.do(ctx, final)
		close(s.quit)
		<-s.done
	})
	return s.closeErr
}
