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
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "stepflow"

// MetricsSink records step and execution metrics.
type MetricsSink struct {
	steps        *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	executions   *prometheus.CounterVec
	running      prometheus.Gauge
}

// NewMetricsSink creates the collectors and registers them with the registerer.
func NewMetricsSink(reg prometheus.Registerer) (*MetricsSink, error) {
	s := &MetricsSink{
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "steps_total",
			Help:      "Number of executed steps by kind and outcome.",
		}, []string{"kind", "status"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of successful steps.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "executions_total",
			Help:      "Number of executions by final status.",
		}, []string{"status"}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "executions_running",
			Help:      "Number of executions currently running.",
		}),
	}

	for _, c := range []prometheus.Collector{s.steps, s.stepDuration, s.executions, s.running} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Emit implements Sink.
func (s *MetricsSink) Emit(e Event) error {
	switch e.Type {
	case TypeStepStarted:
		if e.StepIndex == 1 {
			s.running.Inc()
		}
	case TypeStepFinished:
		s.steps.WithLabelValues(string(e.Kind), "succeeded").Inc()
		s.stepDuration.WithLabelValues(string(e.Kind)).Observe(e.Duration().Seconds())
	case TypeError:
		s.steps.WithLabelValues(string(e.Kind), "failed").Inc()
		s.executions.WithLabelValues("failed").Inc()
		s.running.Dec()
	case TypeExecutionFinished:
		s.executions.WithLabelValues("succeeded").Inc()
		s.running.Dec()
	case TypeExecutionCancelled:
		s.executions.WithLabelValues("cancelled").Inc()
		if e.StepIndex > 0 {
			s.running.Dec()
		}
	case TypeExecutionFailed:
		s.executions.WithLabelValues("failed").Inc()
	}
	return nil
}
