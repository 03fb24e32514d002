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

// Package event defines the events emitted while a plan executes and the sinks that
// consume them.
package event

import (
	"errors"
	"sync"
	"time"

	"github.com/asgardeo/stepflow/internal/flow/model"
)

// Type identifies an execution event.
type Type string

const (
	// TypeStepStarted is emitted before a step runs.
	TypeStepStarted Type = "step_started"
	// TypeStepFinished is emitted after a step succeeds.
	TypeStepFinished Type = "step_finished"
	// TypeError is emitted when a step fails. It is the last event of the execution.
	TypeError Type = "error"
	// TypeExecutionFinished is emitted after the last step succeeds.
	TypeExecutionFinished Type = "execution_finished"
	// TypeExecutionFailed is emitted when an execution cannot start.
	TypeExecutionFailed Type = "execution_failed"
	// TypeExecutionCancelled is emitted when the execution context is cancelled between steps.
	TypeExecutionCancelled Type = "execution_cancelled"
)

// Event is one entry of an execution event stream.
type Event struct {
	Type        Type           `json:"type"`
	ExecutionID string         `json:"executionId"`
	WorkflowID  string         `json:"workflowId,omitempty"`
	Sequence    int            `json:"sequence"`
	StepIndex   int            `json:"stepIndex,omitempty"`
	StepID      string         `json:"stepId,omitempty"`
	Kind        model.Kind     `json:"kind,omitempty"`
	DurationMs  int64          `json:"durationMs,omitempty"`
	Preview     any            `json:"preview,omitempty"`
	Reason      string         `json:"reason,omitempty"`
	Scope       map[string]any `json:"scope,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Duration returns the step duration carried by a step_finished event.
func (e Event) Duration() time.Duration {
	return time.Duration(e.DurationMs) * time.Millisecond
}

// IsTerminal reports whether no further events follow this one.
func (e Event) IsTerminal() bool {
	switch e.Type {
	case TypeError, TypeExecutionFinished, TypeExecutionFailed, TypeExecutionCancelled:
		return true
	}
	return false
}

// Sink consumes execution events. Sinks are called synchronously and in order.
type Sink interface {
	Emit(e Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(e Event) error

// Emit implements Sink.
func (f SinkFunc) Emit(e Event) error {
	return f(e)
}

// MultiSink fans an event out to several sinks. Every sink is called even when an earlier
// one fails; the errors are joined.
type MultiSink []Sink

// Emit implements Sink.
func (m MultiSink) Emit(e Event) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Emit(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit implements Sink.
func (r *Recorder) Emit(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the types of the recorded events in order.
func (r *Recorder) Types() []Type {
	events := r.Events()
	types := make([]Type, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}
