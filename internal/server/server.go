// Package server exposes the operator HTTP API: coverage reporting, missing
// source listing, manual translation upserts and batch job triggers.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/quillworks/traduit/internal/jobs"
	"github.com/quillworks/traduit/internal/locale"
	"github.com/quillworks/traduit/pkg/types"
)

// EngineManual marks translation rows written by an operator rather than a
// machine engine.
const EngineManual = "manual"

const defaultListLimit = 100

// Server serves the operator API over a translation store.
type Server struct {
	store      types.Store
	runner     *jobs.Runner
	translator types.Translator
	locales    *locale.Resolver
	logger     *log.Logger
}

// New builds a Server. translator may be nil; the translate endpoint then
// answers 503.
func New(store types.Store, runner *jobs.Runner, translator types.Translator, locales *locale.Resolver, logger *log.Logger) *Server {
	return &Server{
		store:      store,
		runner:     runner,
		translator: translator,
		locales:    locales,
		logger:     logger,
	}
}

// Handler builds the routed handler with JSON and logging middleware applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter().StrictSlash(true)
	r.HandleFunc("/healthz", s.getHealth).Methods("GET")
	r.HandleFunc("/locales", s.getLocales).Methods("GET")
	r.HandleFunc("/coverage", s.getCoverage).Methods("GET")
	r.HandleFunc("/strings/{hash}", s.getSource).Methods("GET")
	r.HandleFunc("/strings/{hash}/translations/{locale}", s.putTranslation).Methods("POST", "PUT")
	r.HandleFunc("/locales/{locale}/missing", s.getMissing).Methods("GET")
	r.HandleFunc("/locales/{locale}/backfill", s.postBackfill).Methods("POST")
	r.HandleFunc("/locales/{locale}/translate", s.postTranslate).Methods("POST")

	return handlers.CombinedLoggingHandler(s.logger.Writer(), setJSONHeaders(r))
}

// ListenAndServe blocks serving the operator API on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Printf("operator API listening on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func setJSONHeaders(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		h.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status == http.StatusNotFound && errors.Is(err, types.ErrNotFound) {
		msg = "not found"
	}
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: msg})
}

// statusFor maps a store error to an HTTP status.
func statusFor(err error) int {
	if errors.Is(err, types.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func queryLimit(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	return limit, nil
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{Status: "ok"})
}

func (s *Server) getLocales(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Default string   `json:"default"`
		Enabled []string `json:"enabled"`
	}{
		Default: s.locales.Default(),
		Enabled: s.locales.Enabled(),
	})
}

func (s *Server) getCoverage(w http.ResponseWriter, r *http.Request) {
	targets := s.locales.Enabled()
	if raw := r.URL.Query().Get("locales"); raw != "" {
		targets = locale.NormalizeAll(splitComma(raw))
	}

	coverage, err := s.runner.CoverageAll(r.Context(), targets)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Coverage []types.Coverage `json:"coverage"`
	}{Coverage: coverage})
}

func (s *Server) getSource(w http.ResponseWriter, r *http.Request) {
	hash := mux.Vars(r)["hash"]

	src, err := s.store.GetSource(r.Context(), hash)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, src)
}

func (s *Server) getMissing(w http.ResponseWriter, r *http.Request) {
	target := locale.Normalize(mux.Vars(r)["locale"])
	limit, err := queryLimit(r, defaultListLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	missing := make([]types.SourceString, 0)
	err = s.store.IterateMissing(r.Context(), target, r.URL.Query().Get("source"), limit, func(src types.SourceString) error {
		missing = append(missing, src)
		return nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Locale  string               `json:"locale"`
		Missing []types.SourceString `json:"missing"`
	}{Locale: target, Missing: missing})
}

// putTranslation records operator-supplied text for a source string. The row
// is keyed under the manual engine so machine runs never overwrite it
// silently.
func (s *Server) putTranslation(w http.ResponseWriter, r *http.Request) {
	hash := mux.Vars(r)["hash"]
	target := locale.Normalize(mux.Vars(r)["locale"])

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if body.Text == "" {
		writeError(w, http.StatusBadRequest, errors.New("text must not be empty"))
		return
	}

	if _, err := s.store.GetSource(r.Context(), hash); err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	key := types.TranslationKey{Hash: hash, TargetLocale: target, Engine: EngineManual}
	if err := key.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err := s.store.WithinTx(r.Context(), func(ops types.StoreOps) error {
		return ops.UpsertText(r.Context(), key, body.Text, types.StatusTranslated, nil)
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Result string `json:"result"`
	}{Result: "ok"})
}

func (s *Server) postBackfill(w http.ResponseWriter, r *http.Request) {
	target := locale.Normalize(mux.Vars(r)["locale"])
	limit, err := queryLimit(r, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := s.runner.BackfillStubs(r.Context(), target, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) postTranslate(w http.ResponseWriter, r *http.Request) {
	if s.translator == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no translation engine configured"))
		return
	}

	target := locale.Normalize(mux.Vars(r)["locale"])
	limit, err := queryLimit(r, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := s.runner.TranslateMissing(r.Context(), s.translator, target, r.URL.Query().Get("source"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func splitComma(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
