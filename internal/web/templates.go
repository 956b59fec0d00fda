package web

import (
	"bytes"
	"html/template"

	"github.com/jaminalder/timetravel-tic-tac-toe/internal/app"
	"github.com/jaminalder/timetravel-tic-tac-toe/internal/view"
)

type templates struct {
	index *template.Template
	page  *template.Template
	game  *template.Template
}

// gameData is what the game fragment renders.
type gameData struct {
	ID    string
	Frame view.Frame
}

func newGameData(gs app.GameState) gameData {
	return gameData{ID: gs.ID, Frame: view.Project(gs.Game)}
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Parse(baseTemplate))
	// Define the game fragment within the same set so the page can include it
	template.Must(base.New("game").Parse(gameTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(
		`<h1>Tic-Tac-Toe</h1><form action="/game" method="post"><button>New game</button></form>`))
	page := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" hx-sse="connect:/game/{{.ID}}/events">
  <div id="root" hx-sse="swap:game">{{template "game" .}}</div>
</div>`))
	// Standalone fragment used for htmx swaps and broadcasts
	game := template.Must(template.New("game").Parse(gameTemplate))
	return &templates{index: index, page: page, game: game}
}

func renderTemplate(t *template.Template, name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if name == "" {
		err = t.Execute(&buf, data)
	} else {
		err = t.ExecuteTemplate(&buf, name, data)
	}
	return buf.Bytes(), err
}

const baseTemplate = `<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic-Tac-Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org@1.9.12/dist/ext/sse.js"></script>
<style>.square.winning{font-weight:bold;background:#ffe680}.selected button{font-weight:bold}.game-over .square{cursor:default}</style>
</head><body>{{template "content" .}}</body></html>`

const gameTemplate = `
<div id="game" class="game{{if .Frame.Over}} game-over{{end}}" data-step="{{.Frame.Step}}">
  <div class="game-board">
    {{range .Frame.Rows}}
    <div class="board-row">
      {{range .}}
      <form action="/game/{{$.ID}}/play" method="post" hx-post="/game/{{$.ID}}/play" hx-target="#game" hx-swap="outerHTML">
        <input type="hidden" name="cell" value="{{.Index}}">
        <button type="submit" class="square square-{{.Index}}{{if .Winning}} winning{{end}}">{{.Value}}</button>
      </form>
      {{end}}
    </div>
    {{end}}
  </div>
  <div class="game-info">
    <div class="status">{{.Frame.Status}}</div>
    <ol class="moves{{if .Frame.Reversed}} reversed{{end}}">
      {{range .Frame.Moves}}
      <li class="{{if .Selected}}selected{{end}}">
        <form action="/game/{{$.ID}}/jump" method="post" hx-post="/game/{{$.ID}}/jump" hx-target="#game" hx-swap="outerHTML">
          <input type="hidden" name="step" value="{{.Step}}">
          <button type="submit">{{.Label}}</button>
        </form>
      </li>
      {{end}}
    </ol>
    <div><small>
      <form action="/game/{{.ID}}/reverse" method="post" hx-post="/game/{{.ID}}/reverse" hx-target="#game" hx-swap="outerHTML">
        <button type="submit">reverse history</button>
      </form>
    </small></div>
  </div>
</div>
`
