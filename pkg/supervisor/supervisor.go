// Package supervisor starts the workers, waits for a stop request and joins
// them.
package supervisor

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/ericogr/accel-color-monitor/pkg/stop"
)

// Runner is a worker loop. Run must return promptly once the shared stop
// flag is set.
type Runner interface {
	Run() error
}

type entry struct {
	name string
	r    Runner
}

type Supervisor struct {
	stop    *stop.Controller
	signals []os.Signal
	entries []entry
}

type Option func(*Supervisor)

// WithSignals replaces the signals that trigger a stop. No signals means no
// handler is installed.
func WithSignals(sig ...os.Signal) Option {
	return func(s *Supervisor) { s.signals = sig }
}

func New(c *stop.Controller, opts ...Option) *Supervisor {
	s := &Supervisor{stop: c, signals: []os.Signal{os.Interrupt, syscall.SIGTERM}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Add registers a runner. It must be called before Run.
func (s *Supervisor) Add(name string, r Runner) {
	s.entries = append(s.entries, entry{name: name, r: r})
}

// Run installs the stop triggers, starts every runner, blocks until a stop is
// requested and joins all runners. Cancelling ctx requests a stop as well.
//
// Runner errors (a sensor that failed to initialize, for instance) do not end
// the run; they are joined and returned once everything has stopped.
func (s *Supervisor) Run(ctx context.Context) error {
	// triggers go in before any worker exists so an early stop is not lost
	sigCh := make(chan os.Signal, 1)
	if len(s.signals) > 0 {
		signal.Notify(sigCh, s.signals...)
		defer signal.Stop(sigCh)
	}
	forwardDone := make(chan struct{})
	defer close(forwardDone)
	go s.forward(ctx, sigCh, forwardDone)

	log.Debug().Int("workers", len(s.entries)).Msg("creating workers")
	errs := make([]error, len(s.entries))
	var wg sync.WaitGroup
	for i, e := range s.entries {
		i, e := i, e
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = e.r.Run()
			log.Debug().Str("worker", e.name).Msg("worker finished")
		}()
	}

	<-s.stop.Done()
	log.Info().Msg("stopping workers")

	wg.Wait()
	log.Debug().Msg("all workers finished")
	return errors.Join(errs...)
}

func (s *Supervisor) forward(ctx context.Context, sigCh <-chan os.Signal, done <-chan struct{}) {
	for {
		select {
		case sig := <-sigCh:
			if s.stop.RequestStop() {
				log.Info().Str("signal", sig.String()).Msg("stop requested")
			} else {
				log.Warn().Str("signal", sig.String()).Msg("already stopping, waiting for workers")
			}
		case <-ctx.Done():
			if s.stop.RequestStop() {
				log.Info().Msg("context cancelled, stop requested")
			}
			return
		case <-done:
			return
		}
	}
}
