package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"

	"github.com/jaminalder/timetravel-tic-tac-toe/internal/app"
	"github.com/jaminalder/timetravel-tic-tac-toe/internal/domain"
)

type handlers struct {
	svc       *app.Service
	tpl       *templates
	logger    *log.Logger
	clock     quartz.Clock
	heartbeat time.Duration
}

// renderGame renders the #game fragment; it doubles as the broadcast renderer.
func (h *handlers) renderGame(gs app.GameState) []byte {
	b, err := renderTemplate(h.tpl.game, "", newGameData(gs))
	if err != nil {
		h.logger.Error("render game", "game", gs.ID, "err", err)
	}
	return b
}

func (h *handlers) writeHTML(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	b, err := renderTemplate(h.tpl.index, "base", nil)
	if err != nil {
		h.logger.Error("render index", "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	h.writeHTML(w, b)
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	gs, err := h.svc.CreateGame()
	if err != nil {
		http.Error(w, "failed to create", http.StatusInternalServerError)
		return
	}
	h.logger.Info("game created", "game", gs.ID)
	http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	data := newGameData(*gs)
	b, err := renderTemplate(h.tpl.page, "base", data)
	if err != nil {
		h.logger.Error("render page", "game", gs.ID, "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	h.writeHTML(w, b)
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cell, err := strconv.Atoi(r.FormValue("cell"))
	if err != nil {
		http.Error(w, "bad cell", http.StatusBadRequest)
		return
	}
	gs, err := h.svc.Click(id, cell)
	h.respond(w, r, gs, err, "cell", cell)
}

func (h *handlers) jump(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	step, err := strconv.Atoi(r.FormValue("step"))
	if err != nil {
		http.Error(w, "bad step", http.StatusBadRequest)
		return
	}
	gs, err := h.svc.JumpTo(id, step)
	h.respond(w, r, gs, err, "step", step)
}

func (h *handlers) reverse(w http.ResponseWriter, r *http.Request) {
	gs, err := h.svc.ToggleOrder(chi.URLParam(r, "id"))
	h.respond(w, r, gs, err)
}

// respond maps a service result to a response. Clicks on an occupied cell
// or a finished board are ignored and answered with the unchanged game.
// htmx requests get the #game fragment, plain form posts a redirect.
func (h *handlers) respond(w http.ResponseWriter, r *http.Request, gs *app.GameState, err error, kv ...any) {
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrOccupied), errors.Is(err, domain.ErrGameOver):
		h.logger.Debug("move ignored", append(kv, "game", gs.ID, "reason", err)...)
	case errors.Is(err, app.ErrNotFound):
		http.NotFound(w, r)
		return
	case errors.Is(err, domain.ErrOutOfBounds), errors.Is(err, domain.ErrStepOutOfRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	default:
		h.logger.Error("request failed", append(kv, "err", err)...)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if r.Header.Get("HX-Request") != "true" {
		http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
		return
	}
	h.writeHTML(w, h.renderGame(*gs))
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// Non-EventSource requests only get the headers
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer unsub()
	ticker := h.clock.NewTicker(h.heartbeat, "heartbeat")
	defer ticker.Stop()
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case b, ok := <-ch:
			if !ok {
				return
			}
			writeEvent(w, "game", b)
			flusher.Flush()
		}
	}
}

// writeEvent writes one SSE event; multi-line payloads become one data
// line per line.
func writeEvent(w io.Writer, name string, b []byte) {
	_, _ = fmt.Fprintf(w, "event: %s\n", name)
	start := 0
	for i, c := range b {
		if c == '\n' {
			_, _ = fmt.Fprintf(w, "data: %s\n", b[start:i])
			start = i + 1
		}
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", b[start:])
}
