package route

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"nlcal/src-server/handler"
	"nlcal/src-server/model"
	"nlcal/src-server/utils"
)

// Requests longer than this are refused before the oracle sees them.
const maxRequestBytes = 64 << 10

type ErrorResponseBody struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

// Events mounts the HTTP surface:
//
//	POST /events        body is the request text, ?date=YYYY-MM-DD optional
//	GET  /events        history, newest first, ?limit=N optional
func Events(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("POST /events", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes+1))
		if err != nil {
			writeError(w, http.StatusBadRequest, "request", "Can't read request body")
			return
		}
		if len(body) > maxRequestBytes {
			writeError(w, http.StatusRequestEntityTooLarge, "request", "Request text is too long")
			return
		}
		text := strings.TrimSpace(string(body))

		opts := handler.ScheduleOptions{}
		if dateStr := r.URL.Query().Get("date"); dateStr != "" {
			date, err := model.ParseDate(dateStr)
			if err != nil {
				writeError(w, http.StatusBadRequest, "request", "date must be YYYY-MM-DD")
				return
			}
			opts.ReferenceDate = date
		}

		result, err := handler.Build(r.Context(), as, text, opts)
		if err != nil {
			kind := handler.ErrorKind(err)
			slog.Warn("can't build event", "kind", kind, "error", err)
			writeError(w, statusForKind(kind), kind, err.Error())
			return
		}
		if err := handler.RecordHistory(r.Context(), as, text, opts.ReferenceDate, result); err != nil {
			slog.Warn("can't record history", "error", err)
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(result.Document.Bytes()); err != nil {
			slog.Warn("can't write to response", "where", "route/events.go", "err", err)
		}
	})

	muxer.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		if as.BunDB == nil {
			writeError(w, http.StatusNotFound, "history", "History is disabled, set NLCAL_DATABASE")
			return
		}
		limit := 50
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			n, err := strconv.Atoi(limitStr)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "request", "limit must be a non-negative integer")
				return
			}
			limit = n
		}
		events, err := model.ListGeneratedEvents(r.Context(), as.BunDB, limit)
		if err != nil {
			slog.Error("can't list history", "error", err)
			writeError(w, http.StatusInternalServerError, "history", "Can't read history")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(events); err != nil {
			slog.Warn("can't write to response", "where", "route/events.go", "err", err)
		}
	})
}

func statusForKind(kind string) int {
	switch kind {
	case "empty":
		return http.StatusBadRequest
	case "communication", "schema":
		return http.StatusBadGateway
	case "render":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, kind string, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponseBody{Kind: kind, Description: description}); err != nil {
		slog.Warn("can't write to response", "where", "route/events.go", "err", err)
	}
}
