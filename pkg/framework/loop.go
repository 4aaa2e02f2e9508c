package framework

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the delay between iterations of a Loop.
const DefaultInterval = time.Second

// Loop runs controllers repeatedly by priority level. The delay
// between two iterations starts when the previous one ends, so slow
// controllers never cause iterations to pile up.
type Loop struct {
	Interval time.Duration
	// MaxIterations stops the loop after the given number of
	// iterations. Zero runs until the context is done.
	MaxIterations uint64
	// Clock overrides time.Now for ControlContext.Time.
	Clock func() time.Time

	controllers [PriorityLevels]controllerList
	runners     []Runnable

	wakeUpCh chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type loopIteration struct {
	*Loop
	ctx           context.Context
	time          time.Time
	seq           uint64
	priorityLevel int
}

type controllerList struct {
	controllers []Controller
	postHooks   []Controller
	lock        sync.Mutex
}

type ctxKey struct{}

// CtlCtxFrom gets ControlContext from the context of an iteration.
func CtlCtxFrom(ctx context.Context) (ControlContext, bool) {
	cc, ok := ctx.Value(ctxKey{}).(ControlContext)
	return cc, ok
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers to the loop. Controllers which
// are also Runnable are started with the loop.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	lst := &l.controllers[priorityLevel]
	lst.controllers = append(lst.controllers, ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds Runnable implementions.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

func (l *Loop) init() {
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}
	if l.stopCh == nil {
		l.stopCh = make(chan struct{})
	}
}

// Run implements Runnable. The first iteration runs immediately.
// Runnables added to the loop are canceled when it returns.
func (l *Loop) Run(ctx context.Context) error {
	l.init()
	runCtx, cancel := context.WithCancel(ctx)
	runner := NewRunnerWith(runCtx)
	runner.Go(l.runners...)
	defer func() {
		cancel()
		if err := runner.Wait(); err != nil {
			glog.Warningf("loop runners: %v", err)
		}
	}()

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	timer := time.NewTimer(0)
	defer timer.Stop()
	for seq := uint64(0); l.MaxIterations == 0 || seq < l.MaxIterations; seq++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stopCh:
			return nil
		case <-timer.C:
		case <-l.wakeUpCh:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}
		l.runIteration(runCtx, seq)
		timer.Reset(interval)
	}
	return nil
}

// RunOrFail is intended to be used in main to simply run the loop.
func (l *Loop) RunOrFail() {
	if err := l.Run(context.Background()); err != nil {
		log.Fatalln(err)
	}
}

// PostRunAt implements LoopControl.
func (l *Loop) PostRunAt(priorityLevel int, hooks ...Controller) {
	lst := &l.controllers[priorityLevel]
	lst.lock.Lock()
	lst.postHooks = append(lst.postHooks, hooks...)
	lst.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	l.init()
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

// Stop implements LoopControl.
func (l *Loop) Stop() {
	l.init()
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *Loop) now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now()
}

func (l *Loop) runIteration(ctx context.Context, seq uint64) {
	iter := &loopIteration{Loop: l, time: l.now(), seq: seq}
	iter.ctx = context.WithValue(ctx, ctxKey{}, iter)
	glog.V(5).Infof("iteration %d", seq)
	for i := 0; i < PriorityLevels; i++ {
		iter.priorityLevel = i
		l.controllers[i].run(iter)
	}
}

func (t *loopIteration) Context() context.Context {
	return t.ctx
}

func (t *loopIteration) Time() time.Time {
	return t.time
}

func (t *loopIteration) Iteration() uint64 {
	return t.seq
}

func (t *loopIteration) PriorityLevel() int {
	return t.priorityLevel
}

func (t *loopIteration) PostRun(hooks ...Controller) {
	t.PostRunAt(t.priorityLevel, hooks...)
}

func (c *controllerList) run(iter *loopIteration) {
	runControllers(iter, c.controllers)
	c.lock.Lock()
	hooks := c.postHooks
	c.postHooks = nil
	c.lock.Unlock()
	runControllers(iter, hooks)
}

func runControllers(iter *loopIteration, ctls []Controller) {
	for _, ctl := range ctls {
		if err := ctl.Control(iter); err != nil {
			glog.Errorf("iteration %d: controller error: %v", iter.seq, err)
		}
	}
}
