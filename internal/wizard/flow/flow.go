package flow

import (
	"context"
	"fmt"
	"time"

	"agenda/pkg/logger"
)

// Step is one named unit of a flow. Steps share the flow's state value and
// run strictly in order; the first failing step stops the flow.
type Step[S any] struct {
	Name    string
	Execute func(ctx context.Context, state *S) error
}

func NewStep[S any](name string, execute func(ctx context.Context, state *S) error) *Step[S] {
	return &Step[S]{
		Name:    name,
		Execute: execute,
	}
}

type Flow[S any] struct {
	name  string
	steps []*Step[S]
}

func New[S any](name string, steps ...*Step[S]) *Flow[S] {
	return &Flow[S]{name: name, steps: steps}
}

func (f *Flow[S]) Name() string {
	return f.name
}

func (f *Flow[S]) Steps() []*Step[S] {
	return f.steps
}

// StepError names the step that stopped a flow. It unwraps to the step's own
// error so callers can still classify it.
type StepError struct {
	Flow string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed, %s flow errored: %v", e.Step, e.Flow, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type Engine[S any] struct {
	flows map[string]*Flow[S]
	log   *logger.Logger
}

func NewEngine[S any](log *logger.Logger, flows ...*Flow[S]) *Engine[S] {
	m := map[string]*Flow[S]{}
	for _, f := range flows {
		m[f.Name()] = f
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Engine[S]{flows: m, log: log}
}

func (e *Engine[S]) Run(ctx context.Context, flowName string, state *S) error {
	f, exists := e.flows[flowName]
	if !exists {
		return fmt.Errorf("unsupported flow: %v", flowName)
	}

	started := time.Now()
	for _, step := range f.Steps() {
		if err := ctx.Err(); err != nil {
			return &StepError{Flow: flowName, Step: step.Name, Err: err}
		}
		stepStarted := time.Now()
		if err := step.Execute(ctx, state); err != nil {
			e.log.Debug("Flow step failed",
				"flow", flowName,
				"step", step.Name,
				"duration_ms", time.Since(stepStarted).Milliseconds(),
				"error", err,
			)
			return &StepError{Flow: flowName, Step: step.Name, Err: err}
		}
		e.log.Debug("Flow step completed",
			"flow", flowName,
			"step", step.Name,
			"duration_ms", time.Since(stepStarted).Milliseconds(),
		)
	}
	e.log.Debug("Flow completed", "flow", flowName, "duration_ms", time.Since(started).Milliseconds())
	return nil
}
