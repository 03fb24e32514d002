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

// Package inputvalidation provides the handler of the input validation step.
package inputvalidation

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dop251/goja"

	"github.com/asgardeo/stepflow/internal/executor/common"
	flowmodel "github.com/asgardeo/stepflow/internal/flow/model"
	"github.com/asgardeo/stepflow/internal/system/log"
)

const loggerComponentName = "InputValidationExecutor"

// Rule fields.
const (
	ruleField     = "field"
	ruleValue     = "value"
	ruleRequired  = "required"
	ruleType      = "type"
	ruleMinLength = "minLength"
	ruleMaxLength = "maxLength"
	rulePattern   = "pattern"
	ruleExpr      = "expr"
	ruleMessage   = "message"
)

const defaultExpressionTimeout = time.Second

// ErrExpressionTimeout is returned when an expr rule runs longer than the expression timeout.
var ErrExpressionTimeout = errors.New("expression timed out")

// ValidationError is one failed rule.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// InputValidationExecutor evaluates validation rules against input values.
type InputValidationExecutor struct {
	exprTimeout time.Duration
}

// NewInputValidationExecutor creates a new instance of InputValidationExecutor.
func NewInputValidationExecutor() *InputValidationExecutor {
	return &InputValidationExecutor{exprTimeout: defaultExpressionTimeout}
}

// Execute validates every rule and fails with all messages when any rule fails. On success
// the value is {valid: true, errors: []} plus the resolved output object, if any, as data.
// An expr rule interrupted by cancellation or by the expression timeout fails the step.
func (e *InputValidationExecutor) Execute(ctx context.Context, fields map[string]any,
	scope flowmodel.ScopeReader) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	input, _ := scope.Get(flowmodel.InputScopeKey)
	var failures []ValidationError
	for _, item := range common.List(fields, "rules") {
		rule, ok := item.(map[string]any)
		if !ok {
			continue
		}
		field := common.String(rule, ruleField)
		value, hasValue := rule[ruleValue]
		if !hasValue && field != "" {
			value, _ = scope.Get(flowmodel.InputScopeKey + "." + field)
		}
		msg, err := e.checkRule(ctx, rule, value, input)
		if err != nil {
			logger.Debug("Validation expression interrupted", log.String("field", field), log.Error(err))
			return nil, fmt.Errorf("validation of %s interrupted: %w", field, err)
		}
		if msg != "" {
			failures = append(failures, ValidationError{Field: field, Message: msg})
		}
	}

	if len(failures) > 0 {
		messages := make([]string, len(failures))
		for i, f := range failures {
			messages[i] = f.Message
		}
		logger.Debug("Input validation failed", log.Int("failures", len(failures)))
		return nil, fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
	}

	result := map[string]any{"valid": true, "errors": []any{}}
	if output, ok := fields["output"]; ok {
		result["data"] = output
	}
	return result, nil
}

// checkRule returns the failure message of the rule, or "" when the value passes. The error
// is set only when an expression was interrupted.
func (e *InputValidationExecutor) checkRule(ctx context.Context, rule map[string]any,
	value, input any) (string, error) {
	field := common.String(rule, ruleField)
	custom := common.String(rule, ruleMessage)
	fail := func(format string, args ...any) string {
		if custom != "" {
			return custom
		}
		return fmt.Sprintf(format, args...)
	}

	if common.IsEmpty(value) {
		if common.Bool(rule, ruleRequired) {
			return fail("%s is required", field), nil
		}
		return "", nil
	}

	switch common.String(rule, ruleType) {
	case "", "any":
	case "string":
		if _, ok := value.(string); !ok {
			return fail("%s must be a string", field), nil
		}
	case "number":
		if _, ok := common.ToInt(value); !ok {
			if _, isFloat := value.(float64); !isFloat {
				return fail("%s must be a number", field), nil
			}
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fail("%s must be a boolean", field), nil
		}
	case "email":
		s, ok := value.(string)
		if !ok {
			return fail("%s must be a valid email", field), nil
		}
		if addr, err := mail.ParseAddress(s); err != nil || addr.Address != s {
			return fail("%s must be a valid email", field), nil
		}
	default:
		return fail("%s has unknown type %s", field, common.String(rule, ruleType)), nil
	}

	text := common.ToString(value)
	if minLen, ok := common.Int(rule, ruleMinLength); ok && utf8.RuneCountInString(text) < minLen {
		return fail("%s must be at least %d characters", field, minLen), nil
	}
	if maxLen, ok := common.Int(rule, ruleMaxLength); ok && utf8.RuneCountInString(text) > maxLen {
		return fail("%s must be at most %d characters", field, maxLen), nil
	}
	if pattern := common.String(rule, rulePattern); pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fail("%s has an invalid pattern", field), nil
		}
		if !re.MatchString(text) {
			return fail("%s has an invalid format", field), nil
		}
	}
	if expr := common.String(rule, ruleExpr); expr != "" {
		ok, err := evaluate(ctx, expr, value, input, e.exprTimeout)
		var interrupted *interruptedError
		if errors.As(err, &interrupted) {
			return "", interrupted.cause
		}
		if err != nil {
			return fail("%s could not be validated: %v", field, err), nil
		}
		if !ok {
			return fail("%s is invalid", field), nil
		}
	}
	return "", nil
}

// interruptedError reports an expression stopped by cancellation or timeout.
type interruptedError struct {
	cause error
}

func (e *interruptedError) Error() string {
	return e.cause.Error()
}

// evaluate runs a JavaScript expression with value and input bound as globals. The run is
// interrupted when ctx is done or the timeout elapses.
func evaluate(ctx context.Context, expr string, value, input any, timeout time.Duration) (bool, error) {
	vm := goja.New()
	if err := vm.Set("value", value); err != nil {
		return false, err
	}
	if err := vm.Set("input", input); err != nil {
		return false, err
	}

	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()
	if timeout > 0 {
		timer := time.AfterFunc(timeout, func() {
			vm.Interrupt(ErrExpressionTimeout)
		})
		defer timer.Stop()
	}

	result, err := vm.RunString(expr)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			cause, ok := interrupted.Value().(error)
			if !ok {
				cause = fmt.Errorf("expression interrupted: %v", interrupted.Value())
			}
			return false, &interruptedError{cause: cause}
		}
		return false, err
	}
	return result.ToBoolean(), nil
}
