package web

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaminalder/timetravel-tic-tac-toe/internal/app"
)

func newTestServer(t *testing.T) (*app.Service, http.Handler) {
	t.Helper()
	s := app.NewService()
	h := NewServer(s)
	return s, h
}

func post(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func playCells(t *testing.T, h http.Handler, id string, cells ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rr *httptest.ResponseRecorder
	for _, c := range cells {
		rr = post(t, h, "/game/"+id+"/play", url.Values{"cell": {c}})
		require.Equal(t, http.StatusOK, rr.Code, "cell %s", c)
	}
	return rr
}

func TestIndexPage(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "<!doctype html>")
	assert.Contains(t, body, `action="/game"`)
}

func TestHealthz(t *testing.T) {
	_, h := newTestServer(t)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestCreateRedirectsToGame(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest("POST", "/game", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	loc := rr.Result().Header.Get("Location")
	assert.True(t, strings.HasPrefix(loc, "/game/"), "redirect to %q", loc)
}

func TestGamePageHasMountPointAndSSE(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()

	req := httptest.NewRequest("GET", "/game/"+url.PathEscape(gs.ID), nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, `id="root"`)
	assert.Contains(t, body, `id="game"`)
	assert.Contains(t, body, `hx-ext="sse"`)
	assert.Contains(t, body, "/game/"+gs.ID+"/events")
	assert.Contains(t, body, "Next player: X")
	assert.Contains(t, body, "Go to game start")
	assert.Contains(t, body, "reverse history")
	assert.Equal(t, 9, strings.Count(body, `name="cell"`))
}

func TestUnknownGame(t *testing.T) {
	_, h := newTestServer(t)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/game/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = post(t, h, "/game/missing/play", url.Values{"cell": {"0"}})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPlayUpdatesStateAndReturnsFragment(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()

	rr := playCells(t, h, gs.ID, "4")
	body := rr.Body.String()
	assert.Contains(t, body, `id="game"`)
	assert.NotContains(t, body, "<!doctype html>")
	assert.Contains(t, body, "Next player: O")
	assert.Contains(t, body, `class="game" data-step="1"`)
	assert.Contains(t, body, "Go to move #1 (row:1,col:1)")

	latest, _ := svc.Get(gs.ID)
	assert.Equal(t, 2, latest.Game.Len())
}

func TestPlayWithoutHTMXRedirects(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()

	form := url.Values{"cell": {"0"}}
	req := httptest.NewRequest("POST", "/game/"+gs.ID+"/play", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/game/"+gs.ID, rr.Result().Header.Get("Location"))

	latest, _ := svc.Get(gs.ID)
	assert.Equal(t, 2, latest.Game.Len())
}

func TestPlayRejectsMalformedCell(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()

	for _, c := range []string{"", "x", "9", "-1"} {
		rr := post(t, h, "/game/"+gs.ID+"/play", url.Values{"cell": {c}})
		assert.Equal(t, http.StatusBadRequest, rr.Code, "cell %q", c)
	}
	latest, _ := svc.Get(gs.ID)
	assert.Equal(t, 1, latest.Game.Len())
}

func TestOccupiedCellIsSilentNoop(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()
	playCells(t, h, gs.ID, "0")

	rr := post(t, h, "/game/"+gs.ID+"/play", url.Values{"cell": {"0"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Next player: O")

	latest, _ := svc.Get(gs.ID)
	assert.Equal(t, 2, latest.Game.Len())
}

func TestWinnerHighlightsLineAndBlocksMoves(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()

	body := playCells(t, h, gs.ID, "0", "4", "1", "5", "2").Body.String()
	assert.Contains(t, body, "Winner: X")
	assert.Contains(t, body, `class="game game-over" data-step="5"`)
	assert.Equal(t, 3, strings.Count(body, " winning"))
	for _, i := range []string{"0", "1", "2"} {
		assert.Contains(t, body, `square square-`+i+` winning`)
	}

	rr := post(t, h, "/game/"+gs.ID+"/play", url.Values{"cell": {"8"}})
	require.Equal(t, http.StatusOK, rr.Code)
	latest, _ := svc.Get(gs.ID)
	assert.Equal(t, 6, latest.Game.Len())
}

func TestDrawStatus(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()

	body := playCells(t, h, gs.ID, "0", "1", "2", "4", "3", "5", "7", "6", "8").Body.String()
	// html/template escapes the apostrophe.
	assert.Contains(t, body, "It&#39;s a draw!")
}

func TestJumpAndBranch(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()
	playCells(t, h, gs.ID, "0", "4", "1", "5")

	rr := post(t, h, "/game/"+gs.ID+"/jump", url.Values{"step": {"1"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Next player: O")
	latest, _ := svc.Get(gs.ID)
	assert.Equal(t, 5, latest.Game.Len())
	assert.Equal(t, 1, latest.Game.Step())

	rr = playCells(t, h, gs.ID, "8")
	assert.Contains(t, rr.Body.String(), "Go to move #2 (row:2,col:2)")
	assert.NotContains(t, rr.Body.String(), "Go to move #3")
	latest, _ = svc.Get(gs.ID)
	assert.Equal(t, 3, latest.Game.Len())
}

func TestJumpRejectsBadStep(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()

	for _, s := range []string{"", "two", "1", "-1"} {
		rr := post(t, h, "/game/"+gs.ID+"/jump", url.Values{"step": {s}})
		assert.Equal(t, http.StatusBadRequest, rr.Code, "step %q", s)
	}
}

func TestReverseHistory(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()
	playCells(t, h, gs.ID, "0")

	body := post(t, h, "/game/"+gs.ID+"/reverse", url.Values{}).Body.String()
	start := strings.Index(body, "Go to game start")
	move := strings.Index(body, "Go to move #1")
	require.True(t, start > 0 && move > 0)
	assert.Less(t, move, start, "reversed list shows the latest move first")
	assert.Contains(t, body, `class="moves reversed"`)

	latest, _ := svc.Get(gs.ID)
	assert.True(t, latest.Game.Reversed())
}

func TestEventsEndpointSSEHeaders(t *testing.T) {
	_, h := newTestServer(t)
	// create a game via POST
	reqCreate := httptest.NewRequest("POST", "/game", nil)
	rrCreate := httptest.NewRecorder()
	h.ServeHTTP(rrCreate, reqCreate)
	loc := rrCreate.Result().Header.Get("Location")
	require.NotEmpty(t, loc)

	req := httptest.NewRequest("GET", loc+"/events", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Result().Header.Get("Content-Type"), "text/event-stream"))
}

func TestEventsStreamsGameFragments(t *testing.T) {
	svc, h := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()
	gs, _ := svc.CreateGame()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/game/"+gs.ID+"/events", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Headers are flushed once the subscription is registered.
	_, err = svc.Click(gs.ID, 4)
	require.NoError(t, err)

	sc := bufio.NewScanner(resp.Body)
	var event string
	var sawStatus bool
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "event: ") {
			event = strings.TrimPrefix(line, "event: ")
		}
		if strings.Contains(line, "Next player: O") {
			sawStatus = true
			break
		}
	}
	assert.Equal(t, "game", event)
	assert.True(t, sawStatus, "expected game fragment in stream")
}

func TestEventsHeartbeatFollowsClock(t *testing.T) {
	mClock := quartz.NewMock(t)
	svc := app.NewService()
	h := NewServer(svc, WithClock(mClock), WithHeartbeat(10*time.Second))
	srv := httptest.NewServer(h)
	defer srv.Close()
	gs, _ := svc.CreateGame()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/game/"+gs.ID+"/events", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The ticker exists before the headers are flushed.
	mClock.Advance(10 * time.Second).MustWait(ctx)

	sc := bufio.NewScanner(resp.Body)
	require.True(t, sc.Scan())
	assert.Equal(t, ": ping", sc.Text())
}

func TestWriteEventSplitsLines(t *testing.T) {
	var sb strings.Builder
	writeEvent(&sb, "game", []byte("a\nb"))
	assert.Equal(t, "event: game\ndata: a\ndata: b\n\n", sb.String())
}
