package inference_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/carepath/pkg/adapters/inference"
)

func TestParseStage(t *testing.T) {
	assert.Equal(t, inference.StageMulticlass, inference.ParseStage("MultiClass"))
	assert.Equal(t, inference.StageBinary, inference.ParseStage("binary"))
	assert.Equal(t, inference.StageBinary, inference.ParseStage(""))
	assert.Equal(t, inference.StageBinary, inference.ParseStage("other"))
}

func TestClient_Payloads(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		got = nil
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = io.WriteString(w, `{"prediction": "normal", "confidence": 0.93}`)
	}))
	defer srv.Close()

	client := inference.New(srv.URL+"/binary", srv.URL+"/multi")
	ctx := context.Background()

	resp, err := client.Classify(ctx, inference.StageBinary, inference.Request{Image: "aGVsbG8="})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"prediction": "normal", "confidence": 0.93}`, string(resp.Body))
	assert.Equal(t, map[string]any{"image": "aGVsbG8=", "apply_medical_enhancement": true}, got)

	off := false
	_, err = client.Classify(ctx, inference.StageBinary, inference.Request{Image: "x", ApplyMedicalEnhancement: &off})
	require.NoError(t, err)
	assert.Equal(t, false, got["apply_medical_enhancement"])

	_, err = client.Classify(ctx, inference.StageMulticlass, inference.Request{Image: "x", ApplyMedicalEnhancement: &off})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"image": "x"}, got)
}

func TestClient_RelaysNonJSONAndStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, "bad image")
	}))
	defer srv.Close()

	resp, err := inference.New(srv.URL, srv.URL).Classify(context.Background(), inference.StageBinary, inference.Request{Image: "x"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)
	assert.JSONEq(t, `{"raw": "bad image"}`, string(resp.Body))
}

func TestClient_MissingImage(t *testing.T) {
	_, err := inference.New("http://unused", "http://unused").Classify(context.Background(), inference.StageBinary, inference.Request{})
	assert.ErrorIs(t, err, inference.ErrMissingImage)
}

func TestClient_BreakerOpensAfterUpstreamFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"error": "model offline"}`)
	}))
	defer srv.Close()

	client := inference.New(srv.URL, srv.URL)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		resp, err := client.Classify(ctx, inference.StageMulticlass, inference.Request{Image: "x"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.Status)
	}

	_, err := client.Classify(ctx, inference.StageMulticlass, inference.Request{Image: "x"})
	assert.ErrorIs(t, err, inference.ErrUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}
