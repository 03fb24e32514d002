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

package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/asgardeo/stepflow/internal/flow/event"
	"github.com/asgardeo/stepflow/internal/flow/model"
	"github.com/asgardeo/stepflow/internal/flow/template"
)

type mockHandler struct {
	mock.Mock
}

func (m *mockHandler) Execute(ctx context.Context, fields map[string]any, scope model.ScopeReader) (any, error) {
	args := m.Called(ctx, fields, scope)
	return args.Get(0), args.Error(1)
}

type EngineTestSuite struct {
	suite.Suite
	recorder *event.Recorder
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (suite *EngineTestSuite) SetupTest() {
	suite.recorder = event.NewRecorder()
}

func (suite *EngineTestSuite) newEngine(registry Registry) *Engine {
	ids := 0
	return New(registry, WithSink(suite.recorder), WithIDGenerator(func() string {
		ids++
		return fmt.Sprintf("exec-%d", ids)
	}))
}

// loginPlan is Input -> DbFind -> Response.
func loginPlan() *model.Plan {
	return &model.Plan{
		WorkflowID: "wf-login",
		GraphHash:  "hash",
		Steps: []model.CompiledStep{
			{ID: "in", Kind: model.KindInput, PassMode: model.PassModeFull,
				ResolvedFields: map[string]any{"variables": []any{map[string]any{"name": "email"}}}},
			{ID: "find", Kind: model.KindDBFind, OutputVar: "foundData", PassMode: model.PassModeFull,
				ResolvedFields: map[string]any{
					"collection": "users",
					"filter":     map[string]any{"email": template.Ref("input.email")},
				}},
			{ID: "resp", Kind: model.KindResponse, OutputVar: "responseData", PassMode: model.PassModeFull,
				ResolvedFields: map[string]any{
					"status": 200,
					"body":   map[string]any{"greeting": "Hello {{foundData.name}}", "id": template.Ref("foundData._id")},
				}},
		},
		InitialScope: model.InitialScope{Input: map[string]any{"email": ""}},
	}
}

func echoResponse(_ context.Context, fields map[string]any, _ model.ScopeReader) (any, error) {
	return map[string]any{"status": fields["status"], "body": fields["body"]}, nil
}

func noop(context.Context, map[string]any, model.ScopeReader) (any, error) {
	return nil, nil
}

func (suite *EngineTestSuite) TestSuccessfulExecution() {
	find := &mockHandler{}
	find.On("Execute", mock.Anything, map[string]any{
		"collection": "users",
		"filter":     map[string]any{"email": "a@example.com"},
	}, mock.Anything).Return(map[string]any{"_id": "u1", "name": "Alice", "password": "$2a$10$abc"}, nil).Once()

	registry := Registry{}.
		Register(model.KindInput, StepHandlerFunc(noop)).
		Register(model.KindDBFind, find).
		Register(model.KindResponse, StepHandlerFunc(echoResponse))

	result := suite.newEngine(registry).Execute(context.Background(), loginPlan(),
		map[string]any{"email": "a@example.com", "undeclared": true})

	require.Equal(suite.T(), StatusSucceeded, result.Status)
	assert.Equal(suite.T(), "exec-1", result.ExecutionID)
	assert.Equal(suite.T(), "wf-login", result.WorkflowID)
	assert.Equal(suite.T(), 3, result.StepsRun)
	assert.Nil(suite.T(), result.FailedStep)
	assert.Equal(suite.T(), map[string]any{"email": "a@example.com"}, result.Scope["input"])
	assert.Equal(suite.T(), map[string]any{
		"status": 200,
		"body":   map[string]any{"greeting": "Hello Alice", "id": "u1"},
	}, result.Response)
	find.AssertExpectations(suite.T())

	assert.Equal(suite.T(), []event.Type{
		event.TypeStepStarted, event.TypeStepFinished,
		event.TypeStepStarted, event.TypeStepFinished,
		event.TypeStepStarted, event.TypeStepFinished,
		event.TypeExecutionFinished,
	}, suite.recorder.Types())

	events := suite.recorder.Events()
	for i, e := range events {
		assert.Equal(suite.T(), i+1, e.Sequence)
		assert.Equal(suite.T(), "exec-1", e.ExecutionID)
	}
	assert.Equal(suite.T(), 2, events[2].StepIndex)
	assert.Equal(suite.T(), "find", events[2].StepID)
	preview := events[3].Preview.(map[string]any)
	assert.Equal(suite.T(), "***", preview["password"])
	assert.Equal(suite.T(), "Alice", preview["name"])
	assert.NotNil(suite.T(), events[6].Scope["foundData"])
}

func (suite *EngineTestSuite) TestFinishedEventScopeIsRedacted() {
	long := strings.Repeat("y", 100)
	plan := &model.Plan{
		Steps: []model.CompiledStep{
			{ID: "in", Kind: model.KindInput, PassMode: model.PassModeFull},
			{ID: "login", Kind: model.KindUserLogin, OutputVar: "loginResult", PassMode: model.PassModeFull},
		},
		InitialScope: model.InitialScope{Input: map[string]any{"email": "", "password": ""}},
	}
	registry := Registry{}.
		Register(model.KindInput, StepHandlerFunc(noop)).
		Register(model.KindUserLogin, StepHandlerFunc(func(context.Context, map[string]any, model.ScopeReader) (any, error) {
			return map[string]any{"ok": true, "token": "jwt-value", "name": long}, nil
		}))

	result := suite.newEngine(registry).Execute(context.Background(), plan,
		map[string]any{"email": "a@example.com", "password": "s3cret"})
	require.Equal(suite.T(), StatusSucceeded, result.Status)

	events := suite.recorder.Events()
	finished := events[len(events)-1]
	require.Equal(suite.T(), event.TypeExecutionFinished, finished.Type)
	input := finished.Scope["input"].(map[string]any)
	assert.Equal(suite.T(), "***", input["password"])
	assert.Equal(suite.T(), "a@example.com", input["email"])
	login := finished.Scope["loginResult"].(map[string]any)
	assert.Equal(suite.T(), "***", login["token"])
	assert.Equal(suite.T(), long, login["name"])
	assert.Equal(suite.T(), true, login["ok"])

	assert.Equal(suite.T(), "s3cret", result.Scope["input"].(map[string]any)["password"])
	assert.Equal(suite.T(), "jwt-value", result.Scope["loginResult"].(map[string]any)["token"])
}

func (suite *EngineTestSuite) TestEventSequenceIsDeterministic() {
	registry := Registry{}.
		Register(model.KindInput, StepHandlerFunc(noop)).
		Register(model.KindDBFind, StepHandlerFunc(func(context.Context, map[string]any, model.ScopeReader) (any, error) {
			return map[string]any{"_id": "u1", "name": "Alice"}, nil
		})).
		Register(model.KindResponse, StepHandlerFunc(echoResponse))

	strip := func(events []event.Event) []event.Event {
		for i := range events {
			events[i].ExecutionID = ""
			events[i].Timestamp = time.Time{}
			events[i].DurationMs = 0
		}
		return events
	}

	first := event.NewRecorder()
	New(registry, WithSink(first)).Execute(context.Background(), loginPlan(), map[string]any{"email": "x"})
	second := event.NewRecorder()
	New(registry, WithSink(second)).Execute(context.Background(), loginPlan(), map[string]any{"email": "x"})

	assert.Equal(suite.T(), strip(first.Events()), strip(second.Events()))
}

func (suite *EngineTestSuite) TestFailureStopsExecution() {
	response := &mockHandler{}
	registry := Registry{}.
		Register(model.KindInput, StepHandlerFunc(noop)).
		Register(model.KindDBFind, StepHandlerFunc(func(context.Context, map[string]any, model.ScopeReader) (any, error) {
			return nil, errors.New("no matching record in users")
		})).
		Register(model.KindResponse, response)

	result := suite.newEngine(registry).Execute(context.Background(), loginPlan(), map[string]any{"email": "x"})

	require.Equal(suite.T(), StatusFailed, result.Status)
	require.NotNil(suite.T(), result.FailedStep)
	assert.Equal(suite.T(), 2, result.FailedStep.StepIndex)
	assert.Equal(suite.T(), "find", result.FailedStep.StepID)
	assert.Equal(suite.T(), model.KindDBFind, result.FailedStep.Kind)
	assert.Equal(suite.T(), "no matching record in users", result.FailedStep.Reason)
	assert.Equal(suite.T(), 2, result.StepsRun)
	assert.NotContains(suite.T(), result.Scope, "foundData")
	assert.Nil(suite.T(), result.Response)

	response.AssertNotCalled(suite.T(), "Execute", mock.Anything, mock.Anything, mock.Anything)

	assert.Equal(suite.T(), []event.Type{
		event.TypeStepStarted, event.TypeStepFinished,
		event.TypeStepStarted, event.TypeError,
	}, suite.recorder.Types())
	last := suite.recorder.Events()[3]
	assert.Equal(suite.T(), "no matching record in users", last.Reason)
	assert.Equal(suite.T(), model.KindDBFind, last.Kind)
}

func (suite *EngineTestSuite) TestEarlierBindingsSurviveFailure() {
	plan := loginPlan()
	plan.Steps[2].Kind = model.KindEmailSend
	plan.Steps[2].OutputVar = "emailResult"

	registry := Registry{}.
		Register(model.KindInput, StepHandlerFunc(noop)).
		Register(model.KindDBFind, StepHandlerFunc(func(context.Context, map[string]any, model.ScopeReader) (any, error) {
			return map[string]any{"_id": "u1"}, nil
		})).
		Register(model.KindEmailSend, StepHandlerFunc(func(context.Context, map[string]any, model.ScopeReader) (any, error) {
			return map[string]any{"sent": true}, errors.New("smtp unavailable")
		}))

	result := suite.newEngine(registry).Execute(context.Background(), plan, nil)

	assert.Equal(suite.T(), StatusFailed, result.Status)
	assert.Equal(suite.T(), map[string]any{"_id": "u1"}, result.Scope["foundData"])
	assert.NotContains(suite.T(), result.Scope, "emailResult")
}

func (suite *EngineTestSuite) TestMissingHandlerFailsStep() {
	registry := Registry{}.Register(model.KindInput, StepHandlerFunc(noop))

	result := suite.newEngine(registry).Execute(context.Background(), loginPlan(), nil)

	require.NotNil(suite.T(), result.FailedStep)
	assert.Equal(suite.T(), "find", result.FailedStep.StepID)
	assert.Contains(suite.T(), result.FailedStep.Reason, "no handler registered for kind dbFind")
	assert.Contains(suite.T(), registry.Missing(), model.KindDBFind)
	assert.NotContains(suite.T(), registry.Missing(), model.KindInput)
}

func (suite *EngineTestSuite) TestPanickingHandlerFailsStep() {
	registry := Registry{}.
		Register(model.KindInput, StepHandlerFunc(func(context.Context, map[string]any, model.ScopeReader) (any, error) {
			panic("boom")
		}))

	result := suite.newEngine(registry).Execute(context.Background(), loginPlan(), nil)

	assert.Equal(suite.T(), StatusFailed, result.Status)
	assert.Contains(suite.T(), result.FailedStep.Reason, "boom")
}

func (suite *EngineTestSuite) TestHandlerCannotMutateScope() {
	registry := Registry{}.
		Register(model.KindInput, StepHandlerFunc(func(_ context.Context, _ map[string]any, scope model.ScopeReader) (any, error) {
			in, _ := scope.Get("input")
			in.(map[string]any)["email"] = "tampered"
			return nil, nil
		})).
		Register(model.KindDBFind, StepHandlerFunc(noop)).
		Register(model.KindResponse, StepHandlerFunc(echoResponse))

	result := suite.newEngine(registry).Execute(context.Background(), loginPlan(), map[string]any{"email": "a@b.c"})

	assert.Equal(suite.T(), "a@b.c", result.Scope["input"].(map[string]any)["email"])
}

func (suite *EngineTestSuite) TestCancellationBetweenSteps() {
	ctx, cancel := context.WithCancel(context.Background())
	response := &mockHandler{}
	registry := Registry{}.
		Register(model.KindInput, StepHandlerFunc(noop)).
		Register(model.KindDBFind, StepHandlerFunc(func(context.Context, map[string]any, model.ScopeReader) (any, error) {
			cancel()
			return map[string]any{"_id": "u1"}, nil
		})).
		Register(model.KindResponse, response)

	result := suite.newEngine(registry).Execute(ctx, loginPlan(), nil)

	assert.Equal(suite.T(), StatusCancelled, result.Status)
	assert.Equal(suite.T(), 2, result.StepsRun)
	assert.Contains(suite.T(), result.Scope, "foundData")
	response.AssertNotCalled(suite.T(), "Execute", mock.Anything, mock.Anything, mock.Anything)

	types := suite.recorder.Types()
	assert.Equal(suite.T(), event.TypeExecutionCancelled, types[len(types)-1])
}

func (suite *EngineTestSuite) TestNilPlanFailsExecution() {
	result := suite.newEngine(Registry{}).Execute(context.Background(), nil, nil)

	assert.Equal(suite.T(), StatusFailed, result.Status)
	assert.Equal(suite.T(), ErrInvalidPlan.Error(), result.Reason)
	assert.Equal(suite.T(), []event.Type{event.TypeExecutionFailed}, suite.recorder.Types())
}

func (suite *EngineTestSuite) TestSinkFailureDoesNotStopExecution() {
	registry := Registry{}.
		Register(model.KindInput, StepHandlerFunc(noop)).
		Register(model.KindDBFind, StepHandlerFunc(noop)).
		Register(model.KindResponse, StepHandlerFunc(echoResponse))
	failing := event.SinkFunc(func(event.Event) error { return errors.New("sink down") })

	result := New(registry, WithSink(failing)).Execute(context.Background(), loginPlan(), nil)

	assert.Equal(suite.T(), StatusSucceeded, result.Status)
}

func (suite *EngineTestSuite) TestPreview() {
	long := strings.Repeat("x", 100)
	value := map[string]any{
		"passwordHash": "abc",
		"accessToken":  "t",
		"items":        []any{map[string]any{"secret": 1, "note": long}},
		"count":        3,
	}

	out := preview(value, 10).(map[string]any)

	assert.Equal(suite.T(), "***", out["passwordHash"])
	assert.Equal(suite.T(), "***", out["accessToken"])
	assert.Equal(suite.T(), 3, out["count"])
	item := out["items"].([]any)[0].(map[string]any)
	assert.Equal(suite.T(), "***", item["secret"])
	assert.Equal(suite.T(), "xxxxxxxxxx...", item["note"])
	assert.Equal(suite.T(), long, value["items"].([]any)[0].(map[string]any)["note"])
}
