package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/cnp-fraud-console/internal/domain/errors"
	"github.com/davidleathers/cnp-fraud-console/internal/domain/transaction"
	"github.com/davidleathers/cnp-fraud-console/internal/infrastructure/model"
	"github.com/davidleathers/cnp-fraud-console/internal/infrastructure/repository"
	"github.com/davidleathers/cnp-fraud-console/internal/metrics"
	"github.com/davidleathers/cnp-fraud-console/internal/service/features"
	"github.com/davidleathers/cnp-fraud-console/internal/service/fraud"
	usagesvc "github.com/davidleathers/cnp-fraud-console/internal/service/usage"
	"github.com/davidleathers/cnp-fraud-console/internal/testutil/fixtures"
)

// Test Helpers

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type testServer struct {
	handler  http.Handler
	registry *prometheus.Registry
}

func setupServer(t *testing.T, services Services, maxUpload int64) *testServer {
	t.Helper()

	h, err := NewHandler(services, "v1", maxUpload, false, quietLogger())
	require.NoError(t, err)

	promReg := prometheus.NewRegistry()
	cfg := DefaultRouterConfig()
	cfg.RateLimit.RequestsPerSecond = 0
	cfg.Metrics = metrics.NewRegistry(promReg)
	cfg.Gatherer = promReg
	cfg.Logger = quietLogger()

	health := NewHealthService(DefaultHealthConfig())
	health.RegisterChecker(NewModelHealthChecker(stubModel{trees: 3}))

	router, err := NewRouter(cfg, h, health)
	require.NoError(t, err)
	return &testServer{handler: router, registry: promReg}
}

// realServices wires the fixture model and usage log through the real services.
func realServices(t *testing.T) Services {
	t.Helper()

	ens, err := model.Parse([]byte(fixtures.ModelJSON))
	require.NoError(t, err)
	explainer, err := model.NewTreeExplainer(ens, features.Columns())
	require.NoError(t, err)

	repo := repository.NewUsageLogRepository(fixtures.WriteFile(t, "usage_log.csv", fixtures.UsageLog))
	return Services{
		Fraud: fraud.NewService(ens, explainer,
			fraud.WithLogger(quietLogger()),
			fraud.WithModelVersion(ens.Version())),
		Usage: usagesvc.NewService(repo, nil, quietLogger()),
	}
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func errorCode(body map[string]interface{}) string {
	if errObj, ok := body["error"].(map[string]interface{}); ok {
		code, _ := errObj["code"].(string)
		return code
	}
	return ""
}

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file"))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func manualForm(overrides map[string]string) url.Values {
	form := url.Values{
		"card_number":          {""},
		"card_ip_province":     {"Gauteng"},
		"transaction_province": {"Gauteng"},
		"transaction_time":     {"2024-01-15T10:00"},
		"device_id":            {""},
		"card_type":            {"VISA"},
		"transaction_type":     {"TRANSFER"},
		"amount":               {"120.50"},
		"oldbalanceOrg":        {"1000"},
		"newbalanceOrig":       {"879.50"},
		"oldbalanceDest":       {"0"},
		"newbalanceDest":       {"120.50"},
	}
	for k, v := range overrides {
		form.Set(k, v)
	}
	return form
}

func TestRootRedirectsToFraud(t *testing.T) {
	srv := setupServer(t, Services{}, 1<<20)

	w := do(t, srv.handler, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/fraud", w.Header().Get("Location"))
}

func TestFraudPage(t *testing.T) {
	srv := setupServer(t, Services{}, 1<<20)

	tests := []struct {
		name     string
		path     string
		contains []string
		absent   []string
	}{
		{
			name:     "upload mode by default",
			path:     "/fraud",
			contains: []string{"Upload Transactions", `name="file"`},
			absent:   []string{"Manual Entry</h2>"},
		},
		{
			name: "manual mode with defaults",
			path: "/fraud?mode=manual",
			contains: []string{
				"Manual Entry</h2>",
				`value="CARD1234"`,
				`value="DEVICE1"`,
				"KwaZulu-Natal",
				"Northern Cape",
				"MasterCard",
				"CASH_OUT",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv.handler, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
			for _, s := range tt.contains {
				assert.Contains(t, w.Body.String(), s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, w.Body.String(), s)
			}
		})
	}
}

func TestScoreBatchAPI(t *testing.T) {
	srv := setupServer(t, realServices(t), 1<<20)

	t.Run("text/csv body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/fraud/score", strings.NewReader(fixtures.UploadCSV))
		req.Header.Set("Content-Type", "text/csv")

		w := do(t, srv.handler, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var env struct {
			Success bool               `json:"success"`
			Data    ScoreBatchResponse `json:"data"`
			Meta    ResponseMeta       `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.True(t, env.Success)
		assert.NotEmpty(t, env.Meta.RequestID)
		assert.Equal(t, "v1", env.Meta.Version)

		data := env.Data
		require.Equal(t, 3, data.RowCount)
		assert.Equal(t, features.Columns(), data.Columns)
		assert.Equal(t, transaction.CodebookVersion, data.CodebookVersion)

		// Time-sorted: the 03:30 CARD2 row is first, then CARD1 10:00, 10:05.
		got := []int{
			data.Predictions[0].Features.SourceIndex,
			data.Predictions[1].Features.SourceIndex,
			data.Predictions[2].Features.SourceIndex,
		}
		assert.Equal(t, []int{2, 1, 0}, got)
		assert.Equal(t, 1, data.Predictions[1].Features.Count10min)
		assert.Equal(t, 2, data.Predictions[2].Features.Count10min)

		flagged := 0
		for _, p := range data.Predictions {
			assert.GreaterOrEqual(t, p.Probability, 0.0)
			assert.LessOrEqual(t, p.Probability, 1.0)
			if p.Probability >= fraud.RiskScoreMedium {
				flagged++
			}
		}
		assert.Equal(t, flagged, data.Flagged)

		require.NotNil(t, data.Explanation)
		assert.Equal(t, 2, data.Explanation.SourceIndex)
		assert.LessOrEqual(t, len(data.Explanation.Attributions), fraud.BatchTopK)
	})

	t.Run("multipart file", func(t *testing.T) {
		body, contentType := multipartUpload(t, "file", "batch.csv", fixtures.UploadCSV)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/fraud/score", body)
		req.Header.Set("Content-Type", contentType)

		w := do(t, srv.handler, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		data := decodeEnvelope(t, w)["data"].(map[string]interface{})
		assert.EqualValues(t, 3, data["row_count"])
	})
}

func TestScoreBatchAPI_Errors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		multipart   bool
		maxUpload   int64
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:       "empty body",
			body:       "",
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "EMPTY_UPLOAD",
		},
		{
			name:        "missing columns",
			body:        "card_number,amount\nCARD1,10\n",
			wantStatus:  http.StatusUnprocessableEntity,
			wantCode:    "MISSING_COLUMNS",
			wantMessage: "transaction_time",
		},
		{
			name:       "bad timestamp",
			body:       fixtures.UploadHeader + "\nCARD1,Gauteng,Gauteng,yesterday,D1,VISA,TRANSFER,1,1,1,1,1,0\n",
			wantStatus: http.StatusBadRequest,
			wantCode:   "PARSE_ERROR",
		},
		{
			name:       "unknown card type",
			body:       fixtures.UploadHeader + "\nCARD1,Gauteng,Gauteng,2024-01-15 10:00:00,D1,DINERS,TRANSFER,1,1,1,1,1,0\n",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "multipart without file",
			multipart:  true,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "body over limit",
			body:       fixtures.UploadCSV,
			maxUpload:  64,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   "PAYLOAD_TOO_LARGE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maxUpload := tt.maxUpload
			if maxUpload == 0 {
				maxUpload = 1 << 20
			}
			srv := setupServer(t, realServices(t), maxUpload)

			var req *http.Request
			if tt.multipart {
				body, contentType := multipartUpload(t, "", "", "")
				req = httptest.NewRequest(http.MethodPost, "/api/v1/fraud/score", body)
				req.Header.Set("Content-Type", contentType)
			} else {
				req = httptest.NewRequest(http.MethodPost, "/api/v1/fraud/score", strings.NewReader(tt.body))
				req.Header.Set("Content-Type", "text/csv")
			}

			w := do(t, srv.handler, req)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			body := decodeEnvelope(t, w)
			assert.Equal(t, false, body["success"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(body))
			}
			if tt.wantMessage != "" {
				assert.Contains(t, w.Body.String(), tt.wantMessage)
			}
		})
	}
}

func TestScoreManualAPI(t *testing.T) {
	srv := setupServer(t, realServices(t), 1<<20)

	t.Run("defaults applied", func(t *testing.T) {
		payload := `{"card_ip_province":"Gauteng","transaction_province":"Limpopo",` +
			`"transaction_time":"2024-01-15 03:10:00","card_type":"AMEX","transaction_type":"CASH_OUT",` +
			`"amount":"9000","oldbalanceOrg":9000,"newbalanceOrig":0,"oldbalanceDest":0,"newbalanceDest":0}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/fraud/manual", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")

		w := do(t, srv.handler, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var env struct {
			Data fraud.ManualResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		row := env.Data.Prediction.Features
		assert.Equal(t, 0, row.ProvinceMatch)
		assert.Equal(t, 3, row.TransactionHour)
		assert.Equal(t, 1, row.Count1h)
		assert.Equal(t, 1, row.IsNewDevice)
		assert.Equal(t, 0, row.CardTypeCode)
		assert.Equal(t, 0, row.TransactionTypeCode)
		require.NotNil(t, env.Data.Explanation)
		assert.LessOrEqual(t, len(env.Data.Explanation.Attributions), fraud.ManualTopK)
	})

	tests := []struct {
		name       string
		payload    string
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{
			name:       "malformed json",
			payload:    `{"card_type":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "wrong type",
			payload:    `{"card_type":7}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "TYPE_MISMATCH",
		},
		{
			name:       "empty body",
			payload:    ``,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name: "unknown province",
			payload: `{"card_ip_province":"Atlantis","transaction_province":"Gauteng",` +
				`"card_type":"VISA","transaction_type":"TRANSFER","amount":1}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
			wantField:  "card_ip_province",
		},
		{
			name: "negative amount",
			payload: `{"card_ip_province":"Gauteng","transaction_province":"Gauteng",` +
				`"card_type":"VISA","transaction_type":"TRANSFER","amount":-5}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
			wantField:  "amount",
		},
		{
			name: "bad transaction time",
			payload: `{"card_ip_province":"Gauteng","transaction_province":"Gauteng",` +
				`"card_type":"VISA","transaction_type":"TRANSFER","transaction_time":"soon"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
			wantField:  "transaction_time",
		},
		{
			name:       "unknown field",
			payload:    `{"card_ip_province":"Gauteng","colour":"red"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/fraud/manual", strings.NewReader(tt.payload))
			req.Header.Set("Content-Type", "application/json")

			w := do(t, srv.handler, req)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			body := decodeEnvelope(t, w)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(body))
			}
			if tt.wantField != "" {
				fields := body["error"].(map[string]interface{})["fields"].(map[string]interface{})
				assert.Contains(t, fields, tt.wantField)
			}
		})
	}
}

func TestUploadPage(t *testing.T) {
	srv := setupServer(t, realServices(t), 1<<20)

	t.Run("renders predictions and chart", func(t *testing.T) {
		body, contentType := multipartUpload(t, "file", "batch.csv", fixtures.UploadCSV)
		req := httptest.NewRequest(http.MethodPost, "/fraud/upload", body)
		req.Header.Set("Content-Type", contentType)

		w := do(t, srv.handler, req)
		require.Equal(t, http.StatusOK, w.Code)

		html := w.Body.String()
		assert.Contains(t, html, "Predictions for batch.csv")
		assert.Contains(t, html, "3 transactions scored")
		assert.Contains(t, html, "fraud_probability")
		assert.Contains(t, html, "Explanation for row 3")
		assert.Contains(t, html, "<svg")
	})

	t.Run("schema error shown on page", func(t *testing.T) {
		body, contentType := multipartUpload(t, "file", "bad.csv", "card_number\nCARD1\n")
		req := httptest.NewRequest(http.MethodPost, "/fraud/upload", body)
		req.Header.Set("Content-Type", contentType)

		w := do(t, srv.handler, req)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), `class="error"`)
		assert.Contains(t, w.Body.String(), "missing required columns")
	})

	t.Run("missing file", func(t *testing.T) {
		body, contentType := multipartUpload(t, "", "", "")
		req := httptest.NewRequest(http.MethodPost, "/fraud/upload", body)
		req.Header.Set("Content-Type", contentType)

		w := do(t, srv.handler, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "A CSV file is required")
	})
}

func TestManualPage(t *testing.T) {
	srv := setupServer(t, realServices(t), 1<<20)

	post := func(form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/fraud/manual", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return do(t, srv.handler, req)
	}

	t.Run("scores with four decimals", func(t *testing.T) {
		w := post(manualForm(nil))
		require.Equal(t, http.StatusOK, w.Code)
		html := w.Body.String()
		assert.Contains(t, html, "Fraud probability")
		assert.Regexp(t, `class="metric sev-[a-z]+">0\.\d{4}<`, html)
		assert.Contains(t, html, "Top feature attributions")
	})

	t.Run("invalid amount keeps form values", func(t *testing.T) {
		w := post(manualForm(map[string]string{"amount": "lots", "card_number": "CARD77"}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		html := w.Body.String()
		assert.Contains(t, html, "Must be a number")
		assert.Contains(t, html, `value="CARD77"`)
	})

	t.Run("invalid province", func(t *testing.T) {
		w := post(manualForm(map[string]string{"transaction_province": "Atlantis"}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Please correct the highlighted fields.")
	})
}

func TestManualPage_UsesServiceResult(t *testing.T) {
	fraudSvc := new(MockFraudService)
	srv := setupServer(t, Services{Fraud: fraudSvc}, 1<<20)

	fraudSvc.On("ScoreManual", mock.Anything, metrics.SourceManual, mock.MatchedBy(func(tx transaction.Transaction) bool {
		return tx.CardNumber == transaction.DefaultManualCard && tx.DeviceID == transaction.DefaultManualDevice
	})).Return(&fraud.ManualResult{
		ModelVersion: "m-7",
		Prediction: fraud.Prediction{
			Probability: 0.87654321,
			Severity:    fraud.SeverityCritical,
		},
		Explanation: &fraud.Explanation{Attributions: []fraud.Attribution{
			{Feature: "amount", Value: 1.25},
			{Feature: "transaction_hour", Value: -0.5},
		}},
	}, nil)

	form := manualForm(nil)
	req := httptest.NewRequest(http.MethodPost, "/fraud/manual", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := do(t, srv.handler, req)

	require.Equal(t, http.StatusOK, w.Code)
	html := w.Body.String()
	assert.Contains(t, html, "0.8765")
	assert.Contains(t, html, "critical")
	assert.Contains(t, html, "+1.2500")
	assert.Contains(t, html, "-0.5000")
	fraudSvc.AssertExpectations(t)
}

func TestManualPage_ModelFailure(t *testing.T) {
	fraudSvc := new(MockFraudService)
	srv := setupServer(t, Services{Fraud: fraudSvc}, 1<<20)

	fraudSvc.On("ScoreManual", mock.Anything, metrics.SourceManual, mock.Anything).
		Return(nil, errors.NewModelError("SCORING_FAILED", "model scoring failed"))

	req := httptest.NewRequest(http.MethodPost, "/fraud/manual", strings.NewReader(manualForm(nil).Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := do(t, srv.handler, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "model scoring failed")
}

func TestUsagePage(t *testing.T) {
	srv := setupServer(t, realServices(t), 1<<20)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		contains   []string
	}{
		{
			name:       "defaults to most recent month",
			path:       "/admin/usage",
			wantStatus: http.StatusOK,
			contains:   []string{"Summary for 2024-02", `<option value="2024-02" selected>`, "<td>acme</td><td>10</td>"},
		},
		{
			name:       "over quota highlighted",
			path:       "/admin/usage?month=2024-01",
			wantStatus: http.StatusOK,
			contains: []string{
				"Total transactions: <strong>10001</strong>",
				`<tr class="over-quota"><td>acme</td><td>5001</td><td>yes</td></tr>`,
				"<td>globex</td><td>5000</td><td>no</td>",
			},
		},
		{
			name:       "month with no entries",
			path:       "/admin/usage?month=2023-11",
			wantStatus: http.StatusOK,
			contains:   []string{"No usage recorded for 2023-11."},
		},
		{
			name:       "invalid month",
			path:       "/admin/usage?month=January",
			wantStatus: http.StatusBadRequest,
			contains:   []string{`class="error"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv.handler, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
			for _, s := range tt.contains {
				assert.Contains(t, w.Body.String(), s)
			}
		})
	}
}

func TestUsagePage_NoLog(t *testing.T) {
	services := realServices(t)
	services.Usage = usagesvc.NewService(
		repository.NewUsageLogRepository(t.TempDir()+"/absent.csv"), nil, quietLogger())
	srv := setupServer(t, services, 1<<20)

	w := do(t, srv.handler, httptest.NewRequest(http.MethodGet, "/admin/usage", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), repository.NoUsageLogsMessage)
}

func TestUsageAPI(t *testing.T) {
	srv := setupServer(t, realServices(t), 1<<20)

	t.Run("months", func(t *testing.T) {
		w := do(t, srv.handler, httptest.NewRequest(http.MethodGet, "/api/v1/usage/months", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var env struct {
			Data UsageMonthsResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, "2024-02", env.Data.Months[0].String())
		assert.Equal(t, "2024-01", env.Data.Months[1].String())
	})

	t.Run("summary totals add up", func(t *testing.T) {
		w := do(t, srv.handler, httptest.NewRequest(http.MethodGet, "/api/v1/usage/summary?month=2024-01", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var env struct {
			Data usagesvc.Report `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

		var sum int64
		for _, s := range env.Data.Summaries {
			sum += s.TotalTransactions
		}
		assert.Equal(t, env.Data.TotalTransactions, sum)
		assert.Len(t, env.Data.Entries, 3)
	})

	t.Run("missing log is 404", func(t *testing.T) {
		services := Services{Usage: usagesvc.NewService(
			repository.NewUsageLogRepository(t.TempDir()+"/absent.csv"), nil, quietLogger())}
		srv := setupServer(t, services, 1<<20)

		w := do(t, srv.handler, httptest.NewRequest(http.MethodGet, "/api/v1/usage/summary", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "RESOURCE_MISSING", errorCode(decodeEnvelope(t, w)))
	})
}

func TestRequestMetricsRecorded(t *testing.T) {
	srv := setupServer(t, Services{}, 1<<20)

	do(t, srv.handler, httptest.NewRequest(http.MethodGet, "/fraud", nil))
	do(t, srv.handler, httptest.NewRequest(http.MethodGet, "/fraud?mode=manual", nil))

	count, err := testutil.GatherAndCount(srv.registry, "cnp_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	w := do(t, srv.handler, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `cnp_http_requests_total{method="GET",route="/fraud",status="200"} 2`)
}

func TestHealthEndpoints(t *testing.T) {
	srv := setupServer(t, Services{}, 1<<20)

	for _, path := range []string{"/health/live", "/health/ready"} {
		t.Run(path, func(t *testing.T) {
			w := do(t, srv.handler, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "application/health+json", w.Header().Get("Content-Type"))

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, HealthStatusPass, resp.Status)
		})
	}
}
