package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"uglgen/internal"
	"uglgen/internal/catalog"
	"uglgen/internal/config"
	"uglgen/internal/pipeline"
	"uglgen/internal/ugl"
)

func testRouter(t *testing.T, charset string) http.Handler {
	h, _ := testRouterWithService(t, charset)
	return h
}

func testRouterWithService(t *testing.T, charset string) (http.Handler, *pipeline.Service) {
	t.Helper()
	idx, err := catalog.NewIndex([]internal.CatalogEntry{
		{ArticleNumber: "102082", EAN: "4015211102083", Description: "Viega Sanpress Kupferrohr 22x1 Hartkupfer"},
		{ArticleNumber: "2316-22", Description: "Viega Sanpress Bogen 90° 22 2316"},
	})
	require.NoError(t, err)

	cfg := config.Config{
		MatchThreshold: 0.3,
		ArticleKey:     string(internal.KeyArticleNumber),
		DefaultUnit:    string(internal.PolicyPiece),
		ResolveWorkers: 2,
		OutputCharset:  charset,
		MaxBodyKB:      1,
	}
	clock := func() time.Time { return time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC) }
	svc := pipeline.NewService(idx, cfg, zerolog.Nop()).WithClock(clock)
	return NewRouter(cfg, svc, zerolog.Nop()), svc
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h, svc := testRouterWithService(t, "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","catalogVersion":"`+svc.CatalogVersion()+`"}`, rec.Body.String())
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCreateOrder(t *testing.T) {
	rec := postJSON(t, testRouter(t, ""), "/orders", `{"text":"Kupferrohr 22 8 Meter, qqq, Press Bogen 22 90"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items     []internal.ResolvedLineItem `json:"items"`
		Document  string                      `json:"document"`
		Fragments int                         `json:"fragments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.Fragments)
	require.Len(t, resp.Items, 2)
	require.Equal(t, internal.QuantitySpec{Value: 8, Unit: internal.UnitMeter}, resp.Items[0].Quantity)
	require.True(t, strings.HasSuffix(resp.Document, "\nEND"))
}

func TestCreateOrderErrors(t *testing.T) {
	h := testRouter(t, "")

	rec := postJSON(t, h, "/orders", `{"text":"xyzqqqnonsense123"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.JSONEq(t, `{"error":"no items recognized"}`, rec.Body.String())

	rec = postJSON(t, h, "/orders", `{"text":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, h, "/orders", `{"text":"   "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, h, "/orders", `{"text":"`+strings.Repeat("a", 2048)+`"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCreateOrderFile(t *testing.T) {
	rec := postJSON(t, testRouter(t, "windows-1252"), "/orders/ugl", `{"text":"Press Bogen 22 90"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/plain; charset=windows-1252", rec.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="ugl.001"`, rec.Header().Get("Content-Disposition"))

	body := rec.Body.Bytes()
	lines := bytes.Split(body, []byte("\n"))
	require.Len(t, lines, 4)
	require.Len(t, lines[2], ugl.PositionWidth)

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(lines[2])
	require.NoError(t, err)
	require.Contains(t, string(decoded), "Viega Sanpress Bogen 90° 22 2316")
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, string) (pipeline.Result, error) {
	return pipeline.Result{}, errors.New("catalog gone")
}

func (failingGenerator) CatalogVersion() string { return "" }

func TestCreateOrderInternalError(t *testing.T) {
	h := CreateOrder(failingGenerator{}, zerolog.Nop())
	rec := postJSON(t, h, "/orders", `{"text":"x"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"internal"}`, rec.Body.String())
}
