package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/couchcryptid/fatality-map-service/internal/adapter/http"
	"github.com/couchcryptid/fatality-map-service/internal/config"
	"github.com/couchcryptid/fatality-map-service/internal/dataset"
	"github.com/couchcryptid/fatality-map-service/internal/domain"
	"github.com/couchcryptid/fatality-map-service/internal/mapview"
	"github.com/couchcryptid/fatality-map-service/internal/observability"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testdataPath = "../../dataset/testdata/fatal.geojson"

func newService(t *testing.T, path string) *mapview.Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return mapview.NewService(dataset.NewFileLoader(path), config.DefaultMapView(), logger, observability.NewMetricsForTesting())
}

func newTestServer(t *testing.T, load bool) *httpadapter.Server {
	t.Helper()
	svc := newService(t, testdataPath)
	if load {
		require.NoError(t, svc.Load(context.Background()))
	}
	return httpadapter.NewServer(":0", svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func get(t *testing.T, srv *httpadapter.Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(t, false), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503BeforeLoad(t *testing.T) {
	rec := get(t, newTestServer(t, false), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReadyzReturns200AfterLoad(t *testing.T) {
	rec := get(t, newTestServer(t, true), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t, false), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestYears(t *testing.T) {
	rec := get(t, newTestServer(t, true), "/api/years")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	if diff := cmp.Diff([]string{"2019", "2020"}, body["years"]); diff != "" {
		t.Errorf("years mismatch (-want +got):\n%s", diff)
	}
}

func TestYearsNotLoaded(t *testing.T) {
	rec := get(t, newTestServer(t, false), "/api/years")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLegend(t *testing.T) {
	rec := get(t, newTestServer(t, false), "/api/legend")
	require.Equal(t, http.StatusOK, rec.Code)

	var legend domain.Legend
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &legend))
	assert.Equal(t, domain.DefaultLegend(), legend)
}

type layerBody struct {
	Index int         `json:"index"`
	Year  domain.Year `json:"year"`
	Layer struct {
		Markers []struct {
			State string `json:"state"`
			Style struct {
				FillColor string `json:"fillColor"`
			} `json:"style"`
		} `json:"markers"`
	} `json:"layer"`
}

func decodeLayer(t *testing.T, rec *httptest.ResponseRecorder) layerBody {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body layerBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestLayerFiltered(t *testing.T) {
	body := decodeLayer(t, get(t, newTestServer(t, true), "/api/layer?index=0&min=111&max=4500"))

	assert.Equal(t, 0, body.Index)
	assert.Equal(t, domain.Year("2019"), body.Year)
	states := make([]string, 0, len(body.Layer.Markers))
	for _, m := range body.Layer.Markers {
		states = append(states, m.State)
		assert.Equal(t, domain.PositiveFill, m.Style.FillColor)
	}
	assert.Equal(t, []string{"Alabama", "Texas"}, states)
}

func TestLayerWithoutBoundsIsUnbounded(t *testing.T) {
	body := decodeLayer(t, get(t, newTestServer(t, true), "/api/layer"))
	assert.Len(t, body.Layer.Markers, 3)
}

func TestLayerStepWraps(t *testing.T) {
	srv := newTestServer(t, true)

	body := decodeLayer(t, get(t, srv, "/api/layer?index=1&step=forward"))
	assert.Equal(t, 0, body.Index)
	assert.Equal(t, domain.Year("2019"), body.Year)

	body = decodeLayer(t, get(t, srv, "/api/layer?index=0&step=backward"))
	assert.Equal(t, 1, body.Index)
	assert.Equal(t, domain.Year("2020"), body.Year)
}

func TestLayerBadRequests(t *testing.T) {
	srv := newTestServer(t, true)

	for _, target := range []string{
		"/api/layer?index=abc",
		"/api/layer?index=2",
		"/api/layer?index=-1",
		"/api/layer?step=sideways",
	} {
		t.Run(target, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, get(t, srv, target).Code)
		})
	}
}

func TestLayerNotLoaded(t *testing.T) {
	rec := get(t, newTestServer(t, false), "/api/layer?index=0")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestIndexServesLivePage(t *testing.T) {
	rec := get(t, newTestServer(t, true), "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	page := rec.Body.String()
	assert.Contains(t, page, `"live":true`)
	assert.Contains(t, page, `id="year-label">2019</span>`)
	assert.Contains(t, page, "Accident Data Legend")
	assert.Contains(t, page, `"state":"Alaska"`)
}

func TestIndexTileOnlyWhenNotLoaded(t *testing.T) {
	rec := get(t, newTestServer(t, false), "/")

	require.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()
	assert.Contains(t, page, `"layer":null`)
	assert.NotContains(t, page, "year-slider\"")
}

func TestUnknownPathReturns404(t *testing.T) {
	rec := get(t, newTestServer(t, true), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
