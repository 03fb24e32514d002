/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package engine runs compiled plans step by step against a private runtime scope.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asgardeo/stepflow/internal/flow/event"
	"github.com/asgardeo/stepflow/internal/flow/model"
	"github.com/asgardeo/stepflow/internal/flow/template"
	"github.com/asgardeo/stepflow/internal/system/log"
	"github.com/asgardeo/stepflow/internal/system/utils"
)

// Status is the state of an execution.
type Status string

const (
	// StatusPending is the state before the first step runs.
	StatusPending Status = "Pending"
	// StatusRunning is the state while steps run.
	StatusRunning Status = "Running"
	// StatusSucceeded is the state after every step succeeded.
	StatusSucceeded Status = "Succeeded"
	// StatusFailed is the state after a step failed or the plan could not run.
	StatusFailed Status = "Failed"
	// StatusCancelled is the state after the context was cancelled between steps.
	StatusCancelled Status = "Cancelled"
)

// ErrInvalidPlan is reported when Execute is called without a plan.
var ErrInvalidPlan = errors.New("invalid plan")

// Result is the outcome of one execution.
type Result struct {
	ExecutionID string              `json:"executionId"`
	WorkflowID  string              `json:"workflowId,omitempty"`
	Status      Status              `json:"status"`
	Scope       map[string]any      `json:"scope"`
	FailedStep  *StepExecutionError `json:"failedStep,omitempty"`
	StepsRun    int                 `json:"stepsRun"`
	Response    any                 `json:"response,omitempty"`
	Reason      string              `json:"reason,omitempty"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithSink sets the sink receiving execution events.
func WithSink(sink event.Sink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithPreviewLength sets the length after which string previews are shortened.
func WithPreviewLength(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.previewLength = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator overrides how execution ids are generated.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		e.newID = newID
	}
}

// Engine executes plans. An Engine holds no per-execution state and may run any number of
// executions concurrently.
type Engine struct {
	registry      Registry
	sink          event.Sink
	previewLength int
	now           func() time.Time
	newID         func() string
	logger        *log.Logger
}

// New creates an engine dispatching steps through the registry.
func New(registry Registry, opts ...Option) *Engine {
	e := &Engine{
		registry:      registry,
		previewLength: defaultPreviewLength,
		now:           time.Now,
		newID:         utils.GenerateUUID,
		logger:        log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ExecutionEngine")),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = Registry{}
	}
	return e
}

// execution is the state of one run of a plan.
type execution struct {
	engine   *Engine
	plan     *model.Plan
	result   *Result
	scope    *model.RuntimeScope
	sequence int
	logger   *log.Logger
}

// Execute runs the plan to completion, failure or cancellation. Runtime inputs override
// the initial values of declared input variables; undeclared inputs are ignored.
func (e *Engine) Execute(ctx context.Context, plan *model.Plan, inputs map[string]any) *Result {
	result := &Result{
		ExecutionID: e.newID(),
		Status:      StatusPending,
	}
	x := &execution{
		engine: e,
		plan:   plan,
		result: result,
		logger: e.logger.With(log.String(log.LoggerKeyExecutionID, result.ExecutionID)),
	}

	if plan == nil {
		result.Status = StatusFailed
		result.Reason = ErrInvalidPlan.Error()
		result.Scope = map[string]any{}
		x.emit(event.Event{Type: event.TypeExecutionFailed, Reason: result.Reason})
		return result
	}
	result.WorkflowID = plan.WorkflowID

	x.scope = model.NewRuntimeScope(mergeInputs(plan.InitialScope.Input, inputs))
	result.Status = StatusRunning

	for i, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			result.Status = StatusCancelled
			result.Reason = err.Error()
			result.Scope = x.scope.Snapshot()
			x.emit(event.Event{Type: event.TypeExecutionCancelled, StepIndex: result.StepsRun, Reason: result.Reason})
			return result
		}

		if failure := x.runStep(ctx, i+1, step); failure != nil {
			result.Status = StatusFailed
			result.FailedStep = failure
			result.Reason = failure.Reason
			result.Scope = x.scope.Snapshot()
			x.emit(event.Event{
				Type:      event.TypeError,
				StepIndex: failure.StepIndex,
				StepID:    failure.StepID,
				Kind:      failure.Kind,
				Reason:    failure.Reason,
			})
			return result
		}
	}

	result.Status = StatusSucceeded
	result.Scope = x.scope.Snapshot()
	x.emit(event.Event{Type: event.TypeExecutionFinished, Scope: redactScope(result.Scope)})
	return result
}

// runStep executes one step and binds its value. The scope is untouched when the step fails.
func (x *execution) runStep(ctx context.Context, index int, step model.CompiledStep) *StepExecutionError {
	x.emit(event.Event{Type: event.TypeStepStarted, StepIndex: index, StepID: step.ID, Kind: step.Kind})
	x.result.StepsRun++
	started := x.engine.now()

	fail := func(err error) *StepExecutionError {
		return &StepExecutionError{StepIndex: index, StepID: step.ID, Kind: step.Kind, Reason: err.Error(), Err: err}
	}

	handler := x.engine.registry[step.Kind]
	if handler == nil {
		return fail(fmt.Errorf("no handler registered for kind %s", step.Kind))
	}

	fields := template.ResolveFields(step.ResolvedFields, x.scope)
	value, err := x.invoke(ctx, handler, fields)
	if err != nil {
		return fail(err)
	}

	value = utils.DeepCopyValue(value)
	if step.OutputVar != "" {
		x.scope.Bind(step.OutputVar, value)
	}
	if step.Kind == model.KindResponse {
		x.result.Response = value
	}

	x.emit(event.Event{
		Type:       event.TypeStepFinished,
		StepIndex:  index,
		StepID:     step.ID,
		Kind:       step.Kind,
		DurationMs: x.engine.now().Sub(started).Milliseconds(),
		Preview:    preview(value, x.engine.previewLength),
	})
	return nil
}

// invoke calls the handler, turning a panic into a step failure.
func (x *execution) invoke(ctx context.Context, handler StepHandler, fields map[string]any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			x.logger.Error("Step handler panicked", log.Any("panic", r))
			value = nil
			err = fmt.Errorf("step handler panicked: %v", r)
		}
	}()
	return handler.Execute(ctx, fields, x.scope.ReadOnly())
}

// emit stamps the event and hands it to the sink. Sink failures never stop an execution.
func (x *execution) emit(e event.Event) {
	x.sequence++
	e.Sequence = x.sequence
	e.ExecutionID = x.result.ExecutionID
	e.WorkflowID = x.result.WorkflowID
	e.Timestamp = x.engine.now()

	if x.engine.sink == nil {
		return
	}
	if err := x.engine.sink.Emit(e); err != nil {
		x.logger.Warn("Failed to emit execution event", log.String("event", string(e.Type)), log.Error(err))
	}
}

func mergeInputs(declared, inputs map[string]any) map[string]any {
	merged := make(map[string]any, len(declared))
	for name, value := range declared {
		merged[name] = value
		if override, ok := inputs[name]; ok {
			merged[name] = override
		}
	}
	return merged
}
