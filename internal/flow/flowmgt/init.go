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

package flowmgt

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/asgardeo/stepflow/internal/executor"
	"github.com/asgardeo/stepflow/internal/executor/emailsend"
	"github.com/asgardeo/stepflow/internal/flow/engine"
	"github.com/asgardeo/stepflow/internal/flow/event"
	"github.com/asgardeo/stepflow/internal/flow/schema"
	"github.com/asgardeo/stepflow/internal/flow/store"
	"github.com/asgardeo/stepflow/internal/system/config"
	"github.com/asgardeo/stepflow/internal/system/database/provider"
	"github.com/asgardeo/stepflow/internal/system/log"
	"github.com/asgardeo/stepflow/internal/system/middleware"
)

// Initialize wires the workflow service from the runtime configuration, loads the
// configured graph definitions and registers the HTTP routes.
func Initialize(mux *http.ServeMux, dbProvider provider.DBProviderInterface) (WorkflowServiceInterface, error) {
	runtime := config.GetStepflowRuntime()
	cfg := runtime.Config

	workflowStore := store.NewWorkflowStore(dbProvider)
	schemaRegistry := schema.NewRegistry(cfg.Collections, schema.NewDBIntrospector(dbProvider))
	registry := executor.BuildRegistry(executor.Dependencies{
		DBProvider: dbProvider,
		Schema:     schemaRegistry,
		Auth:       cfg.Auth,
		Sender:     emailsend.NewSender(cfg.Email),
	})

	metricsRegistry := prometheus.NewRegistry()
	metricsRegistry.MustRegister(collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsSink, err := event.NewMetricsSink(metricsRegistry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	hub := event.NewHub(cfg.CORS.AllowedOrigins)
	sinks := event.MultiSink{
		event.NewLogSink(log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ExecutionEvents"))),
		hub,
		metricsSink,
	}
	if cfg.Flow.PersistEvents {
		sinks = append(sinks, event.NewStoreSink(workflowStore))
	}

	graphDir := ""
	if cfg.Flow.GraphDirectory != "" {
		graphDir = filepath.Join(runtime.StepflowHome, cfg.Flow.GraphDirectory)
	}

	service := NewWorkflowService(ServiceConfig{
		Store:    workflowStore,
		Schema:   schemaRegistry,
		Registry: registry,
		Engine: []engine.Option{
			engine.WithSink(sinks),
			engine.WithPreviewLength(cfg.Flow.PreviewLength),
		},
		Flow:           cfg.Flow,
		GraphDirectory: graphDir,
	})
	if err := service.Init(); err != nil {
		return nil, err
	}

	registerRoutes(mux, newWorkflowHandler(service), hub,
		promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{Registry: metricsRegistry}))
	return service, nil
}

func registerRoutes(mux *http.ServeMux, handler *workflowHandler, hub *event.Hub, metrics http.Handler) {
	opts := middleware.CORSOptions{
		AllowedMethods:   "GET, POST, DELETE",
		AllowedHeaders:   "Content-Type, Authorization",
		AllowCredentials: true,
	}
	noContent := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}

	mux.HandleFunc(middleware.WithCORS("POST /workflows", handler.HandleWorkflowPostRequest, opts))
	mux.HandleFunc(middleware.WithCORS("GET /workflows", handler.HandleWorkflowListRequest, opts))
	mux.HandleFunc(middleware.WithCORS("OPTIONS /workflows", noContent, opts))
	mux.HandleFunc(middleware.WithCORS("GET /workflows/{id}", handler.HandleWorkflowGetRequest, opts))
	mux.HandleFunc(middleware.WithCORS("DELETE /workflows/{id}", handler.HandleWorkflowDeleteRequest, opts))
	mux.HandleFunc(middleware.WithCORS("POST /workflows/validate", handler.HandleValidateRequest, opts))
	mux.HandleFunc(middleware.WithCORS("POST /workflows/connections/validate",
		handler.HandleConnectionValidateRequest, opts))
	mux.HandleFunc(middleware.WithCORS("POST /workflows/variables", handler.HandleVariablesRequest, opts))
	mux.HandleFunc(middleware.WithCORS("POST /workflows/compile", handler.HandleCompileRequest, opts))
	mux.HandleFunc(middleware.WithCORS("POST /workflows/{id}/execute", handler.HandleExecuteRequest, opts))
	mux.HandleFunc(middleware.WithCORS("OPTIONS /workflows/{path...}", noContent, opts))
	mux.Handle("GET /workflows/events", hub)
	mux.Handle("GET /metrics", metrics)
}
