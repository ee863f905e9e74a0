package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qubitkit/qubitkit/internal/database"
	"github.com/qubitkit/qubitkit/internal/modules/calculations"
	"github.com/qubitkit/qubitkit/internal/modules/fluxqubit"
)

func setupTestHandler(t *testing.T) *Handler {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    fmt.Sprintf("file:%s?mode=memory", t.Name()),
		Profile: database.ProfileCache,
		Name:    "handlers-test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cache, err := calculations.NewCache(db, time.Hour, zerolog.Nop())
	require.NoError(t, err)

	return NewHandler(cache, zerolog.Nop())
}

func testParams() fluxqubit.Params {
	p := fluxqubit.DefaultParams()
	p.Ncut = 2
	return p
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	bodyBytes, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(bodyBytes))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestHandleSpectrum(t *testing.T) {
	handler := setupTestHandler(t)

	w := postJSON(t, handler.HandleSpectrum, "/api/fluxqubit/spectrum", map[string]interface{}{
		"params": testParams(),
		"count":  4,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	data := response["data"].(map[string]interface{})
	values := data["values"].([]interface{})
	require.Len(t, values, 4)
	assert.Equal(t, float64(25), data["hilbert_dim"])

	floats := make([]float64, len(values))
	for i, v := range values {
		floats[i] = v.(float64)
	}
	assert.True(t, sort.Float64sAreSorted(floats))

	metadata := response["metadata"].(map[string]interface{})
	assert.NotEmpty(t, metadata["snapshot_key"])
}

func TestHandleSpectrum_DefaultCount(t *testing.T) {
	handler := setupTestHandler(t)

	w := postJSON(t, handler.HandleSpectrum, "/api/fluxqubit/spectrum", map[string]interface{}{
		"params": testParams(),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	data := response["data"].(map[string]interface{})
	assert.Len(t, data["values"].([]interface{}), 6)
}

func TestHandleSpectrum_WithVectors(t *testing.T) {
	handler := setupTestHandler(t)

	w := postJSON(t, handler.HandleSpectrum, "/api/fluxqubit/spectrum", map[string]interface{}{
		"params":          testParams(),
		"count":           2,
		"include_vectors": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	data := response["data"].(map[string]interface{})
	vectors := data["vectors"].(map[string]interface{})
	vecReal := vectors["real"].([]interface{})
	require.Len(t, vecReal, 25) // rows = hilbert dim
	assert.Len(t, vecReal[0].([]interface{}), 2)
}

func TestHandleSpectrum_InvalidBody(t *testing.T) {
	handler := setupTestHandler(t)

	req := httptest.NewRequest("POST", "/api/fluxqubit/spectrum", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	handler.HandleSpectrum(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSpectrum_CountBeyondDimension(t *testing.T) {
	handler := setupTestHandler(t)

	w := postJSON(t, handler.HandleSpectrum, "/api/fluxqubit/spectrum", map[string]interface{}{
		"params": testParams(),
		"count":  10_000,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleWavefunction(t *testing.T) {
	handler := setupTestHandler(t)

	w := postJSON(t, handler.HandleWavefunction, "/api/fluxqubit/wavefunction", map[string]interface{}{
		"params": testParams(),
		"which":  0,
		"grid":   map[string]interface{}{"min": -1.5, "max": 4.7, "points": 12},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	data := response["data"].(map[string]interface{})
	grid := data["grid"].(map[string]interface{})
	assert.Equal(t, float64(12), grid["points"])

	density := data["density"].([]interface{})
	require.Len(t, density, 12)
	for _, row := range density {
		for _, v := range row.([]interface{}) {
			assert.GreaterOrEqual(t, v.(float64), 0.0)
		}
	}
}

func TestHandleWavefunction_WhichOutOfRange(t *testing.T) {
	handler := setupTestHandler(t)

	w := postJSON(t, handler.HandleWavefunction, "/api/fluxqubit/wavefunction", map[string]interface{}{
		"params": testParams(),
		"which":  -1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlePotential(t *testing.T) {
	handler := setupTestHandler(t)

	w := postJSON(t, handler.HandlePotential, "/api/fluxqubit/potential", map[string]interface{}{
		"params": testParams(),
		"grid":   map[string]interface{}{"min": -1.5, "max": 4.7, "points": 8},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	data := response["data"].(map[string]interface{})
	values := data["values"].([]interface{})
	require.Len(t, values, 8)
	assert.Len(t, values[0].([]interface{}), 8)
}

func TestHandleSpectrum_SecondCallServedFromCache(t *testing.T) {
	handler := setupTestHandler(t)
	body := map[string]interface{}{"params": testParams(), "count": 3}

	first := postJSON(t, handler.HandleSpectrum, "/api/fluxqubit/spectrum", body)
	require.Equal(t, http.StatusOK, first.Code)
	second := postJSON(t, handler.HandleSpectrum, "/api/fluxqubit/spectrum", body)
	require.Equal(t, http.StatusOK, second.Code)

	assert.JSONEq(t, stripTimestamp(t, first.Body.Bytes()), stripTimestamp(t, second.Body.Bytes()))
}

func stripTimestamp(t *testing.T, body []byte) string {
	t.Helper()

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &response))
	delete(response["metadata"].(map[string]interface{}), "timestamp")
	out, err := json.Marshal(response)
	require.NoError(t, err)
	return string(out)
}
