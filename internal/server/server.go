// Package server exposes the goal seek solver over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/adbudget/internal/config"
	"github.com/iwvelando/adbudget/internal/presets"
	"github.com/iwvelando/adbudget/internal/solver"
	"github.com/iwvelando/adbudget/internal/telemetry"
	"github.com/iwvelando/adbudget/pkg/constants"
	"github.com/iwvelando/adbudget/pkg/format"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// HandlerConfig carries the dependencies of the HTTP handler.
type HandlerConfig struct {
	MaxUploadSize int64
	Version       string
	Catalog       *presets.Catalog
	// Tracer records each solve as a span. Nil uses the global provider.
	Tracer trace.Tracer
	// MaxIterations applies when a request and its preset leave it unset.
	MaxIterations *int
	// Debug logs each goal seek iteration.
	Debug bool
}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	catalog       *presets.Catalog
	tracer        trace.Tracer
	maxIterations *int
	debug         bool
}

// NewHandler constructs the HTTP handler that serves the solver API.
func NewHandler(logger *zap.Logger, cfg HandlerConfig) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxUploadSize := cfg.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(cfg.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	catalog := cfg.Catalog
	if catalog == nil {
		catalog = presets.Builtin()
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = telemetry.Tracer()
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		catalog:       catalog,
		tracer:        tracer,
		maxIterations: cfg.MaxIterations,
		debug:         cfg.Debug,
	}

	mux := http.NewServeMux()

	// Solve an ad hoc request, optionally based on a preset
	mux.HandleFunc("/api/solve", h.handleSolve)

	// Preset listing and preset solves
	mux.HandleFunc("/api/presets", h.handlePresets)
	mux.HandleFunc("/api/presets/{name}", h.handlePreset)

	// Version endpoint
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type solveRequest struct {
	Preset string `json:"preset,omitempty" yaml:"preset,omitempty"`
	Trace  bool   `json:"trace,omitempty" yaml:"trace,omitempty"`
	solver.Input `yaml:",inline"`
}

type solveResponse struct {
	Preset   string             `json:"preset,omitempty"`
	Input    solver.Input       `json:"input"`
	Result   solver.Result      `json:"result"`
	Display  displayValues      `json:"display"`
	Trace    []solver.Iteration `json:"trace,omitempty"`
	Warnings []string           `json:"warnings,omitempty"`
	Duration string             `json:"duration"`
}

type displayValues struct {
	NewAdBudget string `json:"newAdBudget"`
	TotalSpent  string `json:"totalSpent"`
}

type presetSummary struct {
	Name  string       `json:"name"`
	Input solver.Input `json:"input"`
}

func (h *handler) handleSolve(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSolve"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		h.respondErrorWithOp(w, http.StatusBadRequest, "request body is empty", op)
		return
	}

	req, fields, err := decodeSolveRequest(body, r.Header.Get("Content-Type"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	conf := config.Configuration{
		Solver:  config.SolverConfig{MaxIterations: h.maxIterations},
		Request: config.RequestConfig{Preset: req.Preset, Input: req.Input},
	}
	conf.SetRequestFields(fields...)

	in, err := conf.ResolveInput(h.catalog)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	// Warnings describe the input that will be solved, not the partial body.
	check := config.Configuration{Solver: conf.Solver, Request: config.RequestConfig{Input: in}}
	h.runSolve(w, r, strings.TrimSpace(req.Preset), in, check.ValidateConfiguration(), req.Trace, start, op)
}

func (h *handler) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	names := h.catalog.Names()
	summaries := make([]presetSummary, 0, len(names))
	for _, name := range names {
		in, _ := h.catalog.Get(name)
		summaries = append(summaries, presetSummary{Name: name, Input: in})
	}
	h.writeJSON(w, http.StatusOK, summaries)
}

func (h *handler) handlePreset(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePreset"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	name := r.PathValue("name")
	conf := config.Configuration{
		Solver:  config.SolverConfig{MaxIterations: h.maxIterations},
		Request: config.RequestConfig{Preset: name},
	}
	in, err := conf.ResolveInput(h.catalog)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return
	}

	withTrace, _ := strconv.ParseBool(r.URL.Query().Get("trace"))
	h.runSolve(w, r, name, in, nil, withTrace, start, op)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// runSolve runs the goal seek off the request goroutine and writes the
// response. A client that disconnects first gets no response.
func (h *handler) runSolve(w http.ResponseWriter, r *http.Request, preset string, in solver.Input, warnings []string, withTrace bool, start time.Time, op string) {
	params := solver.NewParameters(in)

	ctx, span := telemetry.Start(r.Context(), h.tracer, params)
	opts := []solver.Option{solver.WithObserver(span)}
	var recorder *solver.Recorder
	if withTrace {
		recorder = &solver.Recorder{}
		opts = append(opts, solver.WithObserver(recorder))
	}
	if h.debug {
		opts = append(opts, solver.WithObserver(solver.LogObserver(h.logger)))
	}

	results := solver.New(params, opts...).GoalSeekAsync()

	var res solver.Result
	select {
	case res = <-results:
		span.Finish(res)
	case <-ctx.Done():
		go func() {
			span.Finish(<-results)
		}()
		h.logger.Warn("client went away before the solve finished",
			zap.String("op", op),
			zap.Error(ctx.Err()),
		)
		return
	}

	for _, warning := range warnings {
		h.logger.Warn("request warning: "+warning, zap.String("op", op))
	}
	if !res.Converged() && res.Status != solver.StatusNoHeadroom {
		h.logger.Warn("goal seek did not converge",
			zap.String("op", op),
			zap.Int("iterations", res.Iterations),
			zap.String("totalSpent", res.TotalSpent.String()),
		)
	}

	resp := solveResponse{
		Preset: preset,
		Input:  in,
		Result: res,
		Display: displayValues{
			NewAdBudget: format.Currency(res.NewAdBudget),
			TotalSpent:  format.Currency(res.TotalSpent),
		},
		Warnings: warnings,
		Duration: time.Since(start).String(),
	}
	if recorder != nil {
		resp.Trace = recorder.Iterations()
	}

	h.logger.Info("solve completed",
		zap.String("op", op),
		zap.String("preset", preset),
		zap.String("status", string(res.Status)),
		zap.Int("iterations", res.Iterations),
		zap.Duration("duration", time.Since(start)),
	)
	h.writeJSON(w, http.StatusOK, resp)
}

// decodeSolveRequest parses a JSON or YAML body and reports which solver
// input fields it contained.
func decodeSolveRequest(body []byte, contentType string) (solveRequest, []string, error) {
	var req solveRequest
	var keys map[string]interface{}

	if isYAML(contentType) {
		var err error
		keys, err = decodeYAMLToMap(body)
		if err != nil {
			return req, nil, err
		}
		if err := yaml.Unmarshal(body, &req); err != nil {
			return req, nil, err
		}
	} else {
		if err := json.Unmarshal(body, &keys); err != nil {
			return req, nil, err
		}
		if err := json.Unmarshal(body, &req); err != nil {
			return req, nil, err
		}
	}

	var fields []string
	for _, field := range config.AllFields {
		if _, ok := keys[field]; ok {
			fields = append(fields, field)
		}
	}
	return req, fields, nil
}

func isYAML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return true
	}
	return false
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("solve request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
