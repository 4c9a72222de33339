package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/questionbank-client/internal/config"
)

func testConfig(baseURL string) *config.App {
	return &config.App{
		Name:     "questionbank-client",
		Env:      "test",
		LogLevel: "error",
		QuestionBank: config.QuestionBank{
			BaseURL:         baseURL,
			HTTPTimeout:     time.Second,
			MaxConcurrency:  5,
			MetadataVersion: 2,
		},
	}
}

func TestNewRejectsMissingConfig(t *testing.T) {
	_, err := New(nil, Options{})
	assert.Error(t, err)

	_, err = New(testConfig("not a url"), Options{Registerer: prometheus.NewRegistry()})
	assert.ErrorContains(t, err, "invalid config")
}

func TestNewWiresAdapter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"qs-1","title":"Algebra","metadata":{"keywords":["k"],"languages":["en"]}}`))
	}))
	t.Cleanup(srv.Close)

	reg := prometheus.NewRegistry()
	nop := zerolog.Nop()
	application, err := New(testConfig(srv.URL), Options{Logger: &nop, HTTPClient: srv.Client(), Registerer: reg})
	require.NoError(t, err)
	require.NotNil(t, application.Adapter())

	set, err := application.Adapter().GetQuestionset(context.Background(), "qs-1", false)
	require.NoError(t, err)
	assert.Equal(t, "Algebra", set.Title)
	assert.Equal(t, []string{"k"}, set.Keywords())

	count, err := testutil.GatherAndCount(reg, "questionbank_client_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
