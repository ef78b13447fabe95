package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/calcmaster/internal/forecast"
	"github.com/iwvelando/calcmaster/internal/metrics"
	"github.com/iwvelando/calcmaster/pkg/constants"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newTestHandler() http.Handler {
	return NewHandler(zap.NewNop(), metrics.NewRecorder(), constants.DefaultMaxUploadSizeBytes, "test")
}

func readTestConfig(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "test", "test_config.yaml"))
	if err != nil {
		t.Fatalf("failed to read test config: %v", err)
	}
	return data
}

func performUpload(t *testing.T, handler http.Handler, contents, filename string) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(contents)); err != nil {
		t.Fatalf("failed to write form data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/forecast", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func performJSON(t *testing.T, handler http.Handler, payload interface{}, path string) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	switch p := payload.(type) {
	case string:
		body = strings.NewReader(p)
	default:
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp["error"]
}

func decodeCalculation(t *testing.T, rr *httptest.ResponseRecorder) calculationResponse {
	t.Helper()
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp calculationResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func metric(t *testing.T, f forecast.Forecast, label string) float64 {
	t.Helper()
	value, ok := f.Metric(label)
	if !ok {
		t.Fatalf("forecast %s has no %q metric", f.Name, label)
	}
	return value
}

func within(got, want, tolerance float64) bool {
	diff := got - want
	return diff <= tolerance && diff >= -tolerance
}

func TestHandleLoan(t *testing.T) {
	rr := performJSON(t, newTestHandler(), `{"name":"car","startDate":"2025-01","principal":25000,"interestRate":5.5,"term":60}`, "/api/loan")
	resp := decodeCalculation(t, rr)

	if resp.Forecast.Kind != forecast.KindLoan || resp.Forecast.Name != "car" {
		t.Fatalf("unexpected forecast header %s/%s", resp.Forecast.Kind, resp.Forecast.Name)
	}
	if len(resp.Forecast.Rows) != 60 {
		t.Fatalf("expected 60 rows, got %d", len(resp.Forecast.Rows))
	}
	if payment := metric(t, resp.Forecast, "Monthly payment"); !within(payment, 477.53, 0.01) {
		t.Fatalf("expected payment 477.53, got %f", payment)
	}
	if interest := metric(t, resp.Forecast, "Total interest"); !within(interest, 3651.76, 1) {
		t.Fatalf("expected interest near 3651.76, got %f", interest)
	}
	if resp.Duration == "" {
		t.Fatal("expected duration in response")
	}
	if rr.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected a request ID header")
	}
}

func TestHandleLoanWarnings(t *testing.T) {
	rr := performJSON(t, newTestHandler(), `{"name":"odd","principal":1000,"interestRate":-2,"term":12}`, "/api/loan")
	resp := decodeCalculation(t, rr)
	if len(resp.Warnings) == 0 {
		t.Fatal("expected a warning for a negative interest rate")
	}
}

func TestHandleLoanRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		text string
	}{
		{name: "Unknown field", body: `{"name":"x","principle":1000}`, text: "unknown field"},
		{name: "Empty body", body: ``, text: "empty"},
		{name: "Wrong type", body: `{"term":"sixty"}`, text: "failed to decode"},
		{name: "Bad start date", body: `{"name":"x","startDate":"01/2025","principal":1000,"interestRate":5,"term":12}`, text: "invalid start date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := performJSON(t, newTestHandler(), tt.body, "/api/loan")
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
			}
			if msg := decodeError(t, rr); !strings.Contains(msg, tt.text) {
				t.Fatalf("expected error to mention %q, got %q", tt.text, msg)
			}
		})
	}
}

func TestHandleMortgage(t *testing.T) {
	rr := performJSON(t, newTestHandler(), map[string]interface{}{
		"name":              "house",
		"homePrice":         400000,
		"downPayment":       40000,
		"interestRate":      6.5,
		"termYears":         30,
		"mortgageInsurance": 150,
	}, "/api/mortgage")
	resp := decodeCalculation(t, rr)

	if len(resp.Forecast.Rows) != 360 {
		t.Fatalf("expected 360 rows, got %d", len(resp.Forecast.Rows))
	}
	if pi := metric(t, resp.Forecast, "Principal and interest"); !within(pi, 2275.44, 0.01) {
		t.Fatalf("expected principal and interest 2275.44, got %f", pi)
	}
	if len(resp.Forecast.Notes) == 0 || !strings.Contains(resp.Forecast.Notes[0], "108 months") {
		t.Fatalf("expected mortgage insurance note, got %v", resp.Forecast.Notes)
	}
}

func TestHandleAutoLoan(t *testing.T) {
	rr := performJSON(t, newTestHandler(), map[string]interface{}{
		"name":         "truck",
		"price":        30000,
		"tradeIn":      5000,
		"salesTaxRate": 7,
		"interestRate": 6,
		"termMonths":   60,
	}, "/api/auto-loan")
	resp := decodeCalculation(t, rr)

	if tax := metric(t, resp.Forecast, "Sales tax"); !within(tax, 1750, 1e-6) {
		t.Fatalf("expected sales tax 1750, got %f", tax)
	}
	if financed := metric(t, resp.Forecast, "Amount financed"); !within(financed, 26750, 1e-6) {
		t.Fatalf("expected amount financed 26750, got %f", financed)
	}

	rr = performJSON(t, newTestHandler(), `{"name":"truck","price":100,"termMonths":12,"taxBasis":"never"}`, "/api/auto-loan")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown tax basis, got %d", rr.Code)
	}
}

func TestHandleInvestment(t *testing.T) {
	rr := performJSON(t, newTestHandler(), map[string]interface{}{
		"name":              "brokerage",
		"startingBalance":   10000,
		"contribution":      500,
		"annualReturnRate":  7,
		"years":             10,
		"compoundFrequency": "annual",
	}, "/api/investment")
	resp := decodeCalculation(t, rr)

	if len(resp.Forecast.Rows) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(resp.Forecast.Rows))
	}
	if ending := metric(t, resp.Forecast, "Ending balance"); !within(ending, 108373.11, 0.01) {
		t.Fatalf("expected ending balance 108373.11, got %f", ending)
	}
	if principal := metric(t, resp.Forecast, "Total principal"); !within(principal, 70000, 1e-6) {
		t.Fatalf("expected total principal 70000, got %f", principal)
	}

	rr = performJSON(t, newTestHandler(), `{"name":"b","years":1,"compoundFrequency":"daily"}`, "/api/investment")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown compound frequency, got %d", rr.Code)
	}
}

func TestHandleHorizonTooLong(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "Investment years", path: "/api/investment", body: `{"name":"big","startingBalance":1,"annualReturnRate":5,"years":1099511627776}`},
		{name: "Zero rate loan term", path: "/api/loan", body: `{"name":"forever","principal":1000,"interestRate":0,"term":1099511627776}`},
		{name: "Mortgage years", path: "/api/mortgage", body: `{"name":"house","homePrice":300000,"downPayment":60000,"interestRate":6,"termYears":1099511627776}`},
		{name: "Auto loan months", path: "/api/auto-loan", body: `{"name":"car","price":30000,"interestRate":6,"termMonths":1801}`},
		{name: "Retirement ages", path: "/api/retirement", body: `{"name":"plan","startAge":30,"retireAge":65,"endAge":10000000}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := performJSON(t, newTestHandler(), tt.body, tt.path)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
			}
			if msg := decodeError(t, rr); !strings.Contains(msg, "horizon exceeds the supported maximum") {
				t.Fatalf("expected horizon error message, got %q", msg)
			}
		})
	}

	contents := "investments:\n  - name: big\n    startingBalance: 1\n    annualReturnRate: 5\n    years: 1099511627776\n"
	rr := performUpload(t, newTestHandler(), contents, "config.yaml")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for an oversized uploaded horizon, got %d", rr.Code)
	}
	if msg := decodeError(t, rr); !strings.Contains(msg, "horizon exceeds the supported maximum") {
		t.Fatalf("expected horizon error message, got %q", msg)
	}
}

func TestHandleRetirement(t *testing.T) {
	rr := performJSON(t, newTestHandler(), map[string]interface{}{
		"name":                 "plan",
		"startAge":             30,
		"retireAge":            65,
		"endAge":               90,
		"startingBalance":      50000,
		"annualContribution":   12000,
		"contributionGrowth":   7,
		"preRetirementReturn":  7,
		"postRetirementReturn": 5,
		"inflationRate":        2.5,
		"desiredAnnualIncome":  60000,
	}, "/api/retirement")
	resp := decodeCalculation(t, rr)

	if len(resp.Forecast.Rows) != 61 {
		t.Fatalf("expected 61 rows, got %d", len(resp.Forecast.Rows))
	}
	if savings := metric(t, resp.Forecast, "Retirement savings"); savings <= 0 {
		t.Fatalf("expected positive retirement savings, got %f", savings)
	}
	if _, depleted := resp.Forecast.Metric("Depletion age"); depleted {
		t.Fatal("expected savings to last")
	}
}

func TestHandleCalculationMethodNotAllowed(t *testing.T) {
	handler := newTestHandler()
	for _, path := range []string{"/api/loan", "/api/mortgage", "/api/auto-loan", "/api/investment", "/api/retirement", "/api/forecast", "/api/editor/forecast", "/api/editor/export"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s: expected status 405, got %d", path, rr.Code)
		}
	}
}

func TestHandleForecastSuccess(t *testing.T) {
	rr := performUpload(t, newTestHandler(), string(readTestConfig(t)), "test_config.yaml")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp forecastResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Forecasts) != 6 {
		t.Fatalf("expected 6 active forecasts, got %d", len(resp.Forecasts))
	}
	if resp.CSV == "" || !strings.HasPrefix(resp.CSV, "forecast,kind,section,label,name,value") {
		t.Fatalf("expected CSV data in response, got %q", resp.CSV)
	}
	if resp.Duration == "" {
		t.Fatal("expected duration in response")
	}
	if resp.ConfigYAML == "" {
		t.Fatal("expected config YAML in response")
	}
}

func TestHandleForecastEditorSuccess(t *testing.T) {
	var payload map[string]interface{}
	if err := yaml.Unmarshal(readTestConfig(t), &payload); err != nil {
		t.Fatalf("failed to unmarshal yaml: %v", err)
	}

	rr := performJSON(t, newTestHandler(), payload, "/api/editor/forecast")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp forecastResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Forecasts) != 6 {
		t.Fatalf("expected 6 active forecasts, got %d", len(resp.Forecasts))
	}
	if !strings.HasPrefix(resp.ConfigYAML, "logging:") {
		t.Fatalf("expected ordered config YAML, got %q", resp.ConfigYAML)
	}
}

func TestHandleForecastEditorInvalidJSON(t *testing.T) {
	rr := performJSON(t, newTestHandler(), `{"loans": [`, "/api/editor/forecast")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if msg := decodeError(t, rr); !strings.Contains(msg, "failed to decode configuration") {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestHandleConfigExport(t *testing.T) {
	payload := map[string]interface{}{
		"retirements": []interface{}{
			map[string]interface{}{"name": "plan", "startAge": 30},
		},
		"loans": []interface{}{
			map[string]interface{}{"name": "car", "principal": 25000.0},
		},
		"output": map[string]interface{}{
			"format": "pretty",
		},
		"logging": map[string]interface{}{
			"level": "info",
		},
		"extra": true,
	}

	rr := performJSON(t, newTestHandler(), payload, "/api/editor/export")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	yamlStr := resp["configYaml"]
	var top []string
	for _, line := range strings.Split(strings.TrimRight(yamlStr, "\n"), "\n") {
		if line == "" || strings.HasPrefix(line, " ") || strings.HasPrefix(line, "-") {
			continue
		}
		top = append(top, strings.TrimSuffix(strings.Fields(line)[0], ":"))
	}

	want := []string{"logging", "output", "loans", "retirements", "extra"}
	if strings.Join(top, ",") != strings.Join(want, ",") {
		t.Fatalf("expected top-level keys %v, got %v in %q", want, top, yamlStr)
	}
}

func TestHandleForecastMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/forecast", nil)
	rr := httptest.NewRecorder()

	newTestHandler().ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

func TestHandleForecastUploadTooLarge(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, 64, "")

	rr := performUpload(t, handler, strings.Repeat("a", 128), "config.yaml")

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rr.Code)
	}
	if msg := decodeError(t, rr); !strings.Contains(msg, "upload exceeds limit") {
		t.Fatalf("expected upload limit error message, got %q", msg)
	}
}

func TestHandleForecastMissingFile(t *testing.T) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/forecast", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rr := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if msg := decodeError(t, rr); msg != "missing configuration file" {
		t.Fatalf("expected missing file error, got %q", msg)
	}
}

func TestHandleForecastInvalidYAML(t *testing.T) {
	rr := performUpload(t, newTestHandler(), "loans: [", "config.yaml")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if msg := decodeError(t, rr); !strings.Contains(msg, "error reading config") {
		t.Fatalf("expected parse error message, got %q", msg)
	}
}

func TestHandleForecastCalculationFailure(t *testing.T) {
	contents := "loans:\n  - name: bad\n    startDate: \"2025/01\"\n    principal: 1000\n    interestRate: 5\n    term: 12\n"
	rr := performUpload(t, newTestHandler(), contents, "config.yaml")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if msg := decodeError(t, rr); !strings.Contains(msg, "failed to compute forecast") {
		t.Fatalf("expected compute error message, got %q", msg)
	}
}

func TestHandleVersion(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, 0, "  v1.2.3  ")

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["version"] != "v1.2.3" {
		t.Fatalf("expected version v1.2.3, got %q", resp["version"])
	}

	req = httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr = httptest.NewRecorder()
	NewHandler(nil, nil, 0, "").ServeHTTP(rr, req)
	if !strings.Contains(rr.Body.String(), `"dev"`) {
		t.Fatalf("expected dev version, got %s", rr.Body.String())
	}
}

func TestHandleHealthAndNotFound(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response %d %s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rr, req)

	if got := rr.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected request ID to be echoed, got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestHandler()
	performJSON(t, handler, `{"name":"car","principal":25000,"interestRate":5.5,"term":60}`, "/api/loan")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`calcmaster_projections_total{kind="loan"} 1`,
		`calcmaster_http_requests_total{path="/api/loan",status="200"} 1`,
		`calcmaster_http_request_duration_seconds_count{path="/api/loan"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected metrics to contain %q", want)
		}
	}
}
