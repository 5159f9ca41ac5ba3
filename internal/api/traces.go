package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"

	"github.com/nerrad567/gray-logic-trace/internal/graph"
	"github.com/nerrad567/gray-logic-trace/internal/store"
	"github.com/nerrad567/gray-logic-trace/internal/trace"
)

// handleListTraces returns run summaries, newest first.
func (s *Server) handleListTraces(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.TraceFilter{
		Domain: q.Get("domain"),
		ItemID: q.Get("item_id"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	traces, err := s.traces.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing traces failed", "error", err)
		writeInternalError(w, "failed to list traces")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"traces": traces,
		"count":  len(traces),
	})
}

func (s *Server) handleGetTrace(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadTrace(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleTimeline reconstructs a run. The locale comes from ?lang= or,
// failing that, the first Accept-Language tag.
func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "run_id")

	result, err := s.timelines.Build(r.Context(), runID, requestLocale(r))
	if errors.Is(err, store.ErrTraceNotFound) {
		writeNotFound(w, "trace not found")
		return
	}
	if err != nil {
		s.logger.Error("building timeline failed", "run_id", runID, "error", err)
		writeInternalError(w, "failed to build timeline")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGraph returns the executed control-flow tree as Graphviz DOT.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadTrace(w, r)
	if !ok {
		return
	}
	dot, err := graph.Render(rec, s.describe)
	if err != nil {
		s.logger.Error("rendering graph failed", "run_id", rec.RunID, "error", err)
		writeInternalError(w, "failed to render graph")
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write([]byte(dot))
}

// handleConfigAtPath returns the static config node a trace path points
// at. An empty path returns the whole config.
func (s *Server) handleConfigAtPath(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadTrace(w, r)
	if !ok {
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusOK, map[string]any{"path": "", "config": rec.Config})
		return
	}

	node, err := trace.GetDataFromPath(rec.Config, path)
	if errors.Is(err, trace.ErrPathResolution) {
		writeError(w, http.StatusNotFound, ErrCodePathNotFound, err.Error())
		return
	}
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"path": path, "config": node})
}

func (s *Server) loadTrace(w http.ResponseWriter, r *http.Request) (*trace.Record, bool) {
	runID := chi.URLParam(r, "run_id")
	rec, err := s.traces.Get(r.Context(), runID)
	if errors.Is(err, store.ErrTraceNotFound) {
		writeNotFound(w, "trace not found")
		return nil, false
	}
	if err != nil {
		s.logger.Error("loading trace failed", "run_id", runID, "error", err)
		writeInternalError(w, "failed to load trace")
		return nil, false
	}
	return rec, true
}

func requestLocale(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return lang
	}
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return ""
	}
	return tags[0].String()
}
