package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"uglgen/internal"
	"uglgen/internal/middleware"
	"uglgen/internal/pipeline"
	"uglgen/internal/ugl"
)

// Generator is the part of pipeline.Service the handlers need.
type Generator interface {
	Generate(ctx context.Context, text string) (pipeline.Result, error)
	CatalogVersion() string
}

type orderRequest struct {
	Text string `json:"text"`
}

type orderResponse struct {
	Items     []internal.ResolvedLineItem `json:"items"`
	Document  string                      `json:"document"`
	Fragments int                         `json:"fragments"`
}

func Health(gen Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "catalogVersion": gen.CatalogVersion()})
	}
}

func CreateOrder(gen Generator, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := generate(w, r, gen, logger)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, orderResponse{
			Items:     res.Items,
			Document:  res.Document,
			Fragments: res.Fragments,
		})
	}
}

// CreateOrderFile returns the document as a downloadable file in the
// configured charset.
func CreateOrderFile(gen Generator, charset string, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := generate(w, r, gen, logger)
		if !ok {
			return
		}
		blob, err := ugl.EncodeBytes(res.Document, charset)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		contentType := "text/plain; charset=" + charset
		if charset == "" {
			contentType = "text/plain; charset=utf-8"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ugl.DefaultFileName))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(blob)
	}
}

func generate(w http.ResponseWriter, r *http.Request, gen Generator, logger zerolog.Logger) (pipeline.Result, bool) {
	log := middleware.Logger(r.Context(), logger)
	defer r.Body.Close()

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return pipeline.Result{}, false
		}
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return pipeline.Result{}, false
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return pipeline.Result{}, false
	}

	res, err := gen.Generate(r.Context(), req.Text)
	switch {
	case err == nil:
		return res, true
	case errors.Is(err, pipeline.ErrNothingMatched):
		writeError(w, http.StatusUnprocessableEntity, pipeline.ErrNothingMatched.Error())
	case errors.Is(err, pipeline.ErrTooManyPositions):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Error().Err(err).Msg("generate failed")
		writeError(w, http.StatusInternalServerError, "internal")
	}
	return pipeline.Result{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
