// Package server exposes the calculators over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/iwvelando/calcmaster/internal/config"
	"github.com/iwvelando/calcmaster/internal/forecast"
	"github.com/iwvelando/calcmaster/internal/metrics"
	"github.com/iwvelando/calcmaster/pkg/constants"
	"github.com/iwvelando/calcmaster/pkg/finance"
	"github.com/iwvelando/calcmaster/pkg/loans"
	"github.com/iwvelando/calcmaster/pkg/output"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	metrics       *metrics.Recorder
	maxUploadSize int64
	version       string

	generator *loans.AmortizationScheduleGenerator
	growth    *finance.GrowthProcessor
	planner   *finance.RetirementPlanner
}

// NewHandler constructs the HTTP handler that serves the calculator API. A
// nil recorder gets a fresh one.
func NewHandler(logger *zap.Logger, recorder *metrics.Recorder, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = metrics.NewRecorder()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		metrics:       recorder,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		generator:     loans.NewAmortizationScheduleGenerator(logger),
		growth:        finance.NewGrowthProcessor(logger),
		planner:       finance.NewRetirementPlanner(logger),
	}

	mux := http.NewServeMux()

	// Single calculations
	h.route(mux, "/api/loan", h.handleLoan)
	h.route(mux, "/api/mortgage", h.handleMortgage)
	h.route(mux, "/api/auto-loan", h.handleAutoLoan)
	h.route(mux, "/api/investment", h.handleInvestment)
	h.route(mux, "/api/retirement", h.handleRetirement)

	// Calculation files, uploaded or sent as JSON
	h.route(mux, "/api/forecast", h.handleForecast)
	h.route(mux, "/api/editor/forecast", h.handleForecastEditor)
	h.route(mux, "/api/editor/export", h.handleConfigExport)

	h.route(mux, "/api/version", h.handleVersion)
	h.route(mux, "/healthz", h.handleHealth)
	mux.Handle("/metrics", recorder.Handler())

	mux.Handle("/", h.instrument("other", http.NotFound))

	return mux
}

func (h *handler) route(mux *http.ServeMux, path string, fn http.HandlerFunc) {
	mux.Handle(path, h.instrument(path, fn))
}

type calculationResponse struct {
	Forecast forecast.Forecast `json:"forecast"`
	Warnings []string          `json:"warnings,omitempty"`
	Duration string            `json:"duration"`
}

type forecastResponse struct {
	Forecasts  []forecast.Forecast `json:"forecasts"`
	CSV        string              `json:"csv"`
	Warnings   []string            `json:"warnings,omitempty"`
	Duration   string              `json:"duration"`
	ConfigYAML string              `json:"configYaml,omitempty"`
}

// decodeJSON reads a strict JSON body into target.
func decodeJSON(r *http.Request, target interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

// calculate runs one calculation request: decode, validate, compute, respond.
func (h *handler) calculate(w http.ResponseWriter, r *http.Request, op string, target interface{}, build func() ([]string, forecast.Forecast, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := decodeJSON(r, target); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	warnings, result, err := build()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	h.metrics.ObserveProjection(result.Kind, len(result.Rows))

	elapsed := time.Since(start)
	h.logger.Debug("calculation computed",
		zap.String("op", op),
		zap.String("name", result.Name),
		zap.Int("rows", len(result.Rows)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, calculationResponse{
		Forecast: result,
		Warnings: warnings,
		Duration: elapsed.String(),
	})
}

func (h *handler) handleLoan(w http.ResponseWriter, r *http.Request) {
	var loan config.Loan
	h.calculate(w, r, "server.handleLoan", &loan, func() ([]string, forecast.Forecast, error) {
		conf := config.Configuration{Loans: []config.Loan{loan}}
		if err := conf.CheckHorizons(); err != nil {
			return nil, forecast.Forecast{}, err
		}
		schedule, err := h.generator.GenerateSchedule(loan.ToLoanConfig())
		if err != nil {
			return nil, forecast.Forecast{}, err
		}
		return conf.ValidateConfiguration(), forecast.LoanForecast(loan.Name, schedule), nil
	})
}

func (h *handler) handleMortgage(w http.ResponseWriter, r *http.Request) {
	var mortgage config.Mortgage
	h.calculate(w, r, "server.handleMortgage", &mortgage, func() ([]string, forecast.Forecast, error) {
		conf := config.Configuration{Mortgages: []config.Mortgage{mortgage}}
		if err := conf.CheckHorizons(); err != nil {
			return nil, forecast.Forecast{}, err
		}
		result, err := h.generator.Mortgage(mortgage.ToMortgageInput())
		if err != nil {
			return nil, forecast.Forecast{}, err
		}
		return conf.ValidateConfiguration(), forecast.MortgageForecast(mortgage.Name, result), nil
	})
}

func (h *handler) handleAutoLoan(w http.ResponseWriter, r *http.Request) {
	var auto config.AutoLoan
	h.calculate(w, r, "server.handleAutoLoan", &auto, func() ([]string, forecast.Forecast, error) {
		conf := config.Configuration{AutoLoans: []config.AutoLoan{auto}}
		if err := conf.CheckHorizons(); err != nil {
			return nil, forecast.Forecast{}, err
		}
		input, err := auto.ToAutoLoanInput()
		if err != nil {
			return nil, forecast.Forecast{}, err
		}
		result, err := h.generator.AutoLoan(input)
		if err != nil {
			return nil, forecast.Forecast{}, err
		}
		return conf.ValidateConfiguration(), forecast.AutoLoanForecast(auto.Name, result), nil
	})
}

func (h *handler) handleInvestment(w http.ResponseWriter, r *http.Request) {
	var investment config.Investment
	h.calculate(w, r, "server.handleInvestment", &investment, func() ([]string, forecast.Forecast, error) {
		conf := config.Configuration{Investments: []config.Investment{investment}}
		if err := conf.CheckHorizons(); err != nil {
			return nil, forecast.Forecast{}, err
		}
		input, err := investment.ToGrowthInput()
		if err != nil {
			return nil, forecast.Forecast{}, err
		}
		return conf.ValidateConfiguration(), forecast.InvestmentForecast(investment.Name, h.growth.Project(input)), nil
	})
}

func (h *handler) handleRetirement(w http.ResponseWriter, r *http.Request) {
	var retirement config.Retirement
	h.calculate(w, r, "server.handleRetirement", &retirement, func() ([]string, forecast.Forecast, error) {
		conf := config.Configuration{Retirements: []config.Retirement{retirement}}
		if err := conf.CheckHorizons(); err != nil {
			return nil, forecast.Forecast{}, err
		}
		result := h.planner.Simulate(retirement.ToRetirementInput())
		return conf.ValidateConfiguration(), forecast.RetirementForecast(retirement.Name, result), nil
	})
}

func (h *handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize))
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing configuration file")
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", "server.handleForecast"),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err))
		return
	}

	h.runForecast(w, buf.Bytes(), start, "server.handleForecast")
}

func (h *handler) handleForecastEditor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), "server.handleForecastEditor")
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	configBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), "server.handleForecastEditor")
		return
	}

	h.runForecast(w, configBytes, start, "server.handleForecastEditor")
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), "server.handleConfigExport")
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), "server.handleConfigExport")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

// configKeyOrder is the order in which calculation file sections are written.
var configKeyOrder = []string{"logging", "output", "loans", "mortgages", "autoLoans", "investments", "retirements"}

func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range configKeyOrder {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	return yaml.Marshal(orderedConfig{items: items})
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func (h *handler) runForecast(w http.ResponseWriter, configBytes []byte, start time.Time, op string) {
	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	if err := cfg.CheckHorizons(); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	warnings := cfg.ValidateConfiguration()

	results, err := forecast.GetForecast(h.logger, *cfg)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to compute forecast: %v", err), op)
		return
	}
	if results == nil {
		results = []forecast.Forecast{}
	}
	h.metrics.ObserveForecasts(results)

	csvBytes, err := output.CSVFormatter{}.Format(results)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render CSV: %v", err), op)
		return
	}

	elapsed := time.Since(start)

	response := forecastResponse{
		Forecasts:  results,
		CSV:        string(csvBytes),
		Warnings:   warnings,
		Duration:   elapsed.String(),
		ConfigYAML: string(configBytes),
	}

	h.logger.Info("forecast computed",
		zap.String("op", op),
		zap.Int("forecasts", len(results)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
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

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondErrorWithOp(w, status, msg, "server.handleForecast")
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
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
