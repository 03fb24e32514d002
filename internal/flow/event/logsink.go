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

package event

import (
	"github.com/asgardeo/stepflow/internal/system/log"
)

// LogSink writes events to the server log.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink creates a sink logging through the given logger, or the default one when nil.
func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &LogSink{logger: logger.With(log.String(log.LoggerKeyComponentName, "ExecutionEvents"))}
}

// Emit implements Sink.
func (s *LogSink) Emit(e Event) error {
	fields := []log.Field{
		log.String("event", string(e.Type)),
		log.String(log.LoggerKeyExecutionID, e.ExecutionID),
	}
	if e.WorkflowID != "" {
		fields = append(fields, log.String(log.LoggerKeyWorkflowID, e.WorkflowID))
	}
	if e.StepID != "" {
		fields = append(fields, log.String(log.LoggerKeyStepID, e.StepID), log.Int("stepIndex", e.StepIndex),
			log.String("kind", string(e.Kind)))
	}

	switch e.Type {
	case TypeStepStarted:
		s.logger.Debug("Step started", fields...)
	case TypeStepFinished:
		s.logger.Debug("Step finished", append(fields, log.Duration("duration", e.Duration()))...)
	case TypeError:
		s.logger.Error("Step failed", append(fields, log.String("reason", e.Reason))...)
	case TypeExecutionFailed:
		s.logger.Error("Execution failed", append(fields, log.String("reason", e.Reason))...)
	case TypeExecutionCancelled:
		s.logger.Warn("Execution cancelled", append(fields, log.String("reason", e.Reason))...)
	case TypeExecutionFinished:
		s.logger.Info("Execution finished", fields...)
	default:
		s.logger.Debug("Execution event", fields...)
	}
	return nil
}
