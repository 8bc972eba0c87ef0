package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayClientClassify(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"category":"Groceries","description":"Blinkit","type":"Expense","confidence_score":"9.5"}`))
	}))
	defer server.Close()

	client, err := newGatewayClient(Config{GatewayURL: server.URL})
	require.NoError(t, err)

	suggestion, err := client.Classify(context.Background(), "₹ 250,XYZ Store", []string{"Groceries", "Restaurants"})
	require.NoError(t, err)

	assert.Equal(t, "₹ 250,XYZ Store", gotBody["prompt"])
	assert.Equal(t, []any{"Groceries", "Restaurants"}, gotBody["categories"])

	assert.Equal(t, "Groceries", suggestion.Category)
	assert.Equal(t, "Blinkit", suggestion.Description)
	assert.Equal(t, 9.5, suggestion.Confidence)
}

func TestGatewayClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := newGatewayClient(Config{GatewayURL: server.URL})
	require.NoError(t, err)

	_, err = client.Classify(context.Background(), "₹ 250,XYZ Store", nil)
	assert.ErrorContains(t, err, "status 500")
}

func TestGatewayClientRequiresURL(t *testing.T) {
	_, err := newGatewayClient(Config{})
	assert.Error(t, err)
}

func TestClassifierRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "flaky", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"category":"Fuel","description":"HP Petrol Pump","type":"Expense","confidence_score":9.1}`))
	}))
	defer server.Close()

	classifier, err := NewClassifier(Config{GatewayURL: server.URL, MaxRetries: 2}, nil)
	require.NoError(t, err)

	suggestion, err := classifier.Classify(context.Background(), 500, "HP Petrol", []string{"Fuel"})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, "Fuel", suggestion.Category)
}

func TestBuildPrompt(t *testing.T) {
	assert.Equal(t, "₹ 250,XYZ Store", BuildPrompt(250, "XYZ Store"))
	assert.Equal(t, "₹ 1250.5,merchant@okaxis", BuildPrompt(1250.50, "merchant@okaxis"))
}
