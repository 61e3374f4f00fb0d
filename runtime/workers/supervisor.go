// Package workers contains the supervised background loops of the chat
// server and the supervisor that keeps them alive.
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"campus-chat/contract"
	"campus-chat/errors"
)

const defaultRestartDelay = 200 * time.Millisecond

// Supervisor runs each worker in its own goroutine, recovers panics,
// restarts crashed workers after a configurable delay, and shuts
// everything down when the parent context is canceled. A failure in
// one worker never stops the supervisor itself.
type Supervisor struct {
	Cancel       context.CancelFunc
	wg           *sync.WaitGroup
	log          *slog.Logger
	workers      []contract.Worker
	restartDelay time.Duration
}

// NewSupervisor builds a supervisor restarting crashed workers after
// restartDelay. A non-positive delay falls back to the default.
func NewSupervisor(log *slog.Logger, restartDelay time.Duration) *Supervisor {
	if restartDelay <= 0 {
		restartDelay = defaultRestartDelay
	}
	return &Supervisor{wg: &sync.WaitGroup{}, log: log, restartDelay: restartDelay}
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Run starts every added worker under a cancellation scope derived from
// ctx and blocks until all of them have finished. Canceling the parent
// stops the children; calling Stop only stops the children.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.Cancel = cancel
	defer s.Cancel()

	for _, worker := range s.workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

// Start launches one worker under supervision. A clean return retires
// the worker; a panic or error restarts it after the restart delay,
// unless the context was canceled in the meantime.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	workerName := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()

		for {
			if ctx.Err() != nil {
				s.log.Info(fmt.Sprintf("Stopping : %s", workerName))
				return
			}

			err := func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = errors.ErrWorkerPanic
					}
				}()
				return worker.Run(ctx)
			}()

			if err == nil {
				// Terminated properly, never restart
				s.log.Info(fmt.Sprintf("Worker finished : %s", workerName))
				return
			}
			if ctx.Err() != nil {
				s.log.Info("Worker stopped (context canceled)", "name", workerName)
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", workerName, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.restartDelay):
			}
		}
	}()
}

// Stop cancels the supervision scope; Run then waits for the
// goroutines to drain.
func (s *Supervisor) Stop() {
	if s.Cancel != nil {
		s.Cancel()
	}
}
