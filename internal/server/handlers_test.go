package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rupeeflow/internal/model"
	"rupeeflow/internal/pipeline"
	"rupeeflow/internal/service"
	"rupeeflow/internal/storage"
)

type stubClassifier struct {
	suggestion *model.Suggestion
}

func (s *stubClassifier) Classify(_ context.Context, _ float64, _ string, _ []string) (*model.Suggestion, error) {
	return s.suggestion, nil
}

type stubNotifier struct{}

func (stubNotifier) Schedule(_ context.Context, _ service.Notification) error { return nil }

func newTestServer(t *testing.T, classifier *stubClassifier) (*Server, service.Storage) {
	t.Helper()
	ctx := context.Background()

	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	t.Cleanup(func() { _ = db.Close() })

	pipe := pipeline.New(db, classifier, stubNotifier{}, nil, pipeline.Config{})
	return New(pipe, nil, Config{}), db
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &stubClassifier{})

	w := doJSON(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestIngestNotification(t *testing.T) {
	srv, db := newTestServer(t, &stubClassifier{
		suggestion: &model.Suggestion{
			Category: "Groceries", Description: "XYZ Store", Type: "Expense", Confidence: 9.3,
		},
	})

	w := doJSON(t, srv, http.MethodPost, "/v1/notifications",
		`{"title":"Axis Bank","text":"Rs 250.00 • UPI • XYZ Store"}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "finalized", resp["outcome"])

	txns, err := db.GetRecentTransactions(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, 250.0, txns[0].Amount)
}

func TestIngestNotificationRejectsMissingText(t *testing.T) {
	srv, _ := newTestServer(t, &stubClassifier{})

	w := doJSON(t, srv, http.MethodPost, "/v1/notifications", `{"title":"Axis Bank"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestNotificationIgnoresChatter(t *testing.T) {
	srv, _ := newTestServer(t, &stubClassifier{})

	w := doJSON(t, srv, http.MethodPost, "/v1/notifications",
		`{"title":"Messages","text":"You have 3 new messages"}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ignored", resp["outcome"])
}

func TestPendingAndCategoriseFlow(t *testing.T) {
	// Low confidence forces a deferral.
	srv, db := newTestServer(t, &stubClassifier{
		suggestion: &model.Suggestion{
			Category: "Groceries", Description: "XYZ Store", Type: "Expense", Confidence: 4,
		},
	})

	w := doJSON(t, srv, http.MethodPost, "/v1/notifications",
		`{"title":"Axis Bank","text":"Rs 250.00 • UPI • XYZ Store"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "deferred")

	w = doJSON(t, srv, http.MethodGet, "/v1/transactions/pending", "")
	require.Equal(t, http.StatusOK, w.Code)

	var pending []model.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	require.Len(t, pending, 1)
	assert.True(t, pending[0].Pending)

	// Finalize through the categorise endpoint. The receiver is omitted, so
	// the stored pending row supplies it.
	w = doJSON(t, srv, http.MethodPost,
		"/v1/transactions/"+strconv.FormatInt(pending[0].ID, 10)+"/categorise",
		`{"category":"Groceries","alwaysAsk":false}`)
	require.Equal(t, http.StatusOK, w.Code)

	txn, err := db.GetTransactionByID(context.Background(), pending[0].ID)
	require.NoError(t, err)
	assert.False(t, txn.Pending)

	merchant, err := db.GetMerchant(context.Background(), "XYZ Store")
	require.NoError(t, err)
	require.NotNil(t, merchant)
	assert.Equal(t, "Groceries", merchant.Category)
}

func TestCategoriseValidation(t *testing.T) {
	srv, _ := newTestServer(t, &stubClassifier{})

	w := doJSON(t, srv, http.MethodPost, "/v1/transactions/abc/categorise",
		`{"receiver":"X","category":"Groceries"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/v1/transactions/1/categorise",
		`{"receiver":"X","category":"Groceries","type":"Transfer"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/v1/transactions/1/categorise", `{"receiver":"X"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown transaction id.
	w = doJSON(t, srv, http.MethodPost, "/v1/transactions/999/categorise",
		`{"receiver":"X","category":"Groceries"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCategories(t *testing.T) {
	srv, _ := newTestServer(t, &stubClassifier{})

	w := doJSON(t, srv, http.MethodGet, "/v1/categories", "")
	require.Equal(t, http.StatusOK, w.Code)

	var cats []model.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cats))
	assert.NotEmpty(t, cats)
}

func TestMonthlySummaryValidation(t *testing.T) {
	srv, _ := newTestServer(t, &stubClassifier{})

	w := doJSON(t, srv, http.MethodGet, "/v1/summary?month=13", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/v1/summary", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "total_expenses")
}
