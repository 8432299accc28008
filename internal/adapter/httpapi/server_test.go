package httpapi_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/crime-zone-api/internal/adapter/httpapi"
	"github.com/couchcryptid/crime-zone-api/internal/domain"
	"github.com/couchcryptid/crime-zone-api/internal/observability"
	"github.com/couchcryptid/crime-zone-api/internal/pipeline"
	"github.com/couchcryptid/crime-zone-api/internal/risk"
	"github.com/couchcryptid/crime-zone-api/internal/store"
	"github.com/couchcryptid/crime-zone-api/internal/zone"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, records ...domain.CrimeRecord) *httpapi.Server {
	t.Helper()

	st := store.New()
	st.Replace(records, store.Meta{})

	engine := risk.NewEngine(st, 0, 0)
	registry := []domain.CityCoordinate{
		{City: "Kozhikode", Latitude: 11.2588, Longitude: 75.7804},
		{City: "Kollam", Latitude: 8.8932, Longitude: 76.6141},
	}
	resolver := zone.NewResolver(registry, st, engine, 0)
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(st, nil, nil, discardLogger(), metrics, "", 0)

	return httpapi.NewServer(":0", st, engine, resolver, p, p, metrics, discardLogger())
}

func doRequest(t *testing.T, srv *httpapi.Server, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()

	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reqBody)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	resp := rec.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func seedRecords() []domain.CrimeRecord {
	return []domain.CrimeRecord{
		{City: "Kozhikode", CrimeType: "Theft", Year: 2021, Count: 100},
		{City: "Kozhikode", CrimeType: "Theft", Year: 2022, Count: 50},
		{City: "Kozhikode", CrimeType: "Robbery", Year: 2022, Count: 10},
		{City: "Kollam", CrimeType: "Theft", Year: 2022, Count: 20},
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, body := doRequest(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyz_NotReadyOnEmptyStore(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := doRequest(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestReadyz_ReadyWithData(t *testing.T) {
	srv := newTestServer(t, seedRecords()...)
	resp, body := doRequest(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body["status"])
}

func TestGetCities(t *testing.T) {
	srv := newTestServer(t, seedRecords()...)
	resp, body := doRequest(t, srv, http.MethodGet, "/cities", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["totalCities"])
	assert.Equal(t, []any{"Kollam", "Kozhikode"}, body["cities"])
}

func TestGetCity(t *testing.T) {
	srv := newTestServer(t, seedRecords()...)
	resp, body := doRequest(t, srv, http.MethodGet, "/city/kozhikode", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Kozhikode", body["city"])

	riskBody, ok := body["risk"].(map[string]any)
	require.True(t, ok, "risk object missing")
	assert.Equal(t, "SEVERE", riskBody["level"])
	assert.Equal(t, float64(100), riskBody["score"])

	stats, ok := body["statistics"].(map[string]any)
	require.True(t, ok, "statistics object missing")
	assert.Equal(t, float64(160), stats["recentCrimes"])

	trend, ok := stats["trend"].(map[string]any)
	require.True(t, ok, "trend object missing")
	assert.Equal(t, "DOWN", trend["direction"])
	assert.Equal(t, float64(-40), trend["percentage"])

	topCrimes, ok := stats["topCrimes"].([]any)
	require.True(t, ok, "topCrimes array missing")
	first := topCrimes[0].(map[string]any)
	assert.Equal(t, "Theft", first["type"])
	assert.Equal(t, float64(150), first["count"])
}

func TestGetCity_NotFound(t *testing.T) {
	srv := newTestServer(t, seedRecords()...)
	resp, body := doRequest(t, srv, http.MethodGet, "/city/Atlantis", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body["error"], "not found")
}

func TestGetCityRisks_SortedByScore(t *testing.T) {
	srv := newTestServer(t, seedRecords()...)
	resp, body := doRequest(t, srv, http.MethodGet, "/city-risks", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["totalCities"])

	cities, ok := body["cities"].([]any)
	require.True(t, ok)
	require.Len(t, cities, 2)
	assert.Equal(t, "Kozhikode", cities[0].(map[string]any)["city"])
	assert.Equal(t, "Kollam", cities[1].(map[string]any)["city"])
}

func TestPostZoneAlert(t *testing.T) {
	srv := newTestServer(t, seedRecords()...)
	resp, body := doRequest(t, srv, http.MethodPost, "/zone-alert",
		`{"latitude":11.2588,"longitude":75.7804,"address":"Mananchira Square"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Kozhikode", body["city"])
	assert.Equal(t, "Mananchira Square", body["address"])
	assert.Contains(t, body["alert"], "Kozhikode")
	assert.Equal(t, float64(0), body["distanceKm"])

	riskBody, ok := body["risk"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "SEVERE", riskBody["level"])

	_, ok = body["statistics"].(map[string]any)
	assert.True(t, ok, "statistics object missing")
}

func TestPostZoneAlert_MissingCoordinates(t *testing.T) {
	srv := newTestServer(t, seedRecords()...)
	resp, _ := doRequest(t, srv, http.MethodPost, "/zone-alert", `{"address":"nowhere"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPostZoneAlert_MalformedBody(t *testing.T) {
	srv := newTestServer(t, seedRecords()...)
	resp, _ := doRequest(t, srv, http.MethodPost, "/zone-alert", "not-json{{{")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPostZoneAlert_EmptyStore(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := doRequest(t, srv, http.MethodPost, "/zone-alert",
		`{"latitude":11.2588,"longitude":75.7804}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestPostIngest_RoundTrip(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doRequest(t, srv, http.MethodPost, "/ingest",
		"Kozhikode\nCrime Head\t2021\t2022\nTheft\t10\t15\n")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["records"])
	assert.Equal(t, float64(0), body["droppedLines"])
	assert.Equal(t, []any{"Kozhikode"}, body["cities"])

	// The ingested data is immediately queryable.
	resp, body = doRequest(t, srv, http.MethodGet, "/city/Kozhikode", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Kozhikode", body["city"])
}
