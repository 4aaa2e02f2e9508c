package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Controller is invoked once per loop iteration.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc defines the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(ctx ControlContext) error {
	return f(ctx)
}

// TimeSource provides the time for controlling logic.
type TimeSource interface {
	Time() time.Time
}

// ControlContext provides the context of current control
// iteration.
type ControlContext interface {
	TimeSource
	// Context retrieves context.Context.
	Context() context.Context
	// Iteration is the zero-based sequence number of the iteration.
	Iteration() uint64
	// PriorityLevel gets the current priority level.
	PriorityLevel() int
	// PostRun injects one-shot hooks run after the controllers at
	// current priority level.
	PostRun(hooks ...Controller)

	LoopControl
}

// LoopControl exposes access to the controlling loop.
type LoopControl interface {
	// PostRunAt injects one-shot hooks at specified priority level.
	PostRunAt(priorityLevel int, hooks ...Controller)
	// TriggerNext schedules the next iteration to be executed
	// immediately after the current iteration.
	TriggerNext()
	// Stop ends the loop after the current iteration.
	Stop()
}

// PriorityLevels is the total levels of priorities.
const PriorityLevels int = 8

// Predefined priority levels.
const (
	PrLvTop  int = 0
	PrLvIdle int = PriorityLevels - 1

	// PrLvSense reads inputs like the RTC.
	PrLvSense int = 1
	// PrLvControl talks to the card.
	PrLvControl int = 3
	// PrLvOutput renders results.
	PrLvOutput int = 5
)
