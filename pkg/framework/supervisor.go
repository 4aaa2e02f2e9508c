package framework

import (
	"context"
	"errors"
	"log"
	"runtime/debug"

	"github.com/golang/glog"
)

// Indicator is a binary status output, typically a LED wired active
// low: it's driven high while running and low once a failure happened.
type Indicator interface {
	Set(high bool)
}

// IndicatorFunc is the func form of Indicator.
type IndicatorFunc func(high bool)

// Set implements Indicator.
func (f IndicatorFunc) Set(high bool) {
	f(high)
}

// Supervisor is the top-level failure handler owned by main. It runs a
// Runnable, converts panics into errors and drives the Indicator low
// on failure. Nothing below main needs to know about it.
type Supervisor struct {
	Indicator Indicator
}

// NewSupervisor creates a Supervisor. ind may be nil.
func NewSupervisor(ind Indicator) *Supervisor {
	return &Supervisor{Indicator: ind}
}

// Run runs r. Cancellation of ctx is a clean stop, not a failure.
func (s *Supervisor) Run(ctx context.Context, r Runnable) (err error) {
	s.set(true)
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Value: p, Stack: debug.Stack()}
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			s.Fail(err)
		}
	}()
	return r.Run(ctx)
}

// Fail reports err and drives the indicator low.
func (s *Supervisor) Fail(err error) {
	s.set(false)
	if p, ok := err.(*PanicError); ok {
		glog.Errorf("%v\n%s", p, p.Stack)
		return
	}
	glog.Errorf("failed: %v", err)
}

// RunOrFail runs r with signal handling and exits the process on failure.
func (s *Supervisor) RunOrFail(r Runnable) {
	runner := NewRunner().HandleSignals()
	err := s.Run(runner.Context, r)
	if err != nil && !errors.Is(err, context.Canceled) {
		glog.Flush()
		log.Fatalln(err)
	}
}

func (s *Supervisor) set(high bool) {
	if s.Indicator != nil {
		s.Indicator.Set(high)
	}
}
