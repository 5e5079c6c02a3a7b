package handlers

import (
	"html/template"
	"net/http"

	"heating_card/internal/models"

	"github.com/gin-gonic/gin"
)

var cardTmpl = template.Must(template.New("card").Funcs(template.FuncMap{
	"displayName": func(cfg models.CardConfig) string {
		if cfg.Name == "" {
			return "Room"
		}
		return cfg.Name
	},
}).Parse(cardHTML))

const cardHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{displayName .Config}}</title>
<style>
body { font-family: sans-serif; max-width: 420px; margin: 2em auto; padding: 0 1em; }
.card { border-radius: 12px; padding: 16px; box-shadow: 0 2px 6px rgba(0,0,0,.15); cursor: pointer; }
.header { display: flex; justify-content: space-between; align-items: center; }
.name { font-size: 1.2em; font-weight: 500; }
.temps { display: flex; gap: 2em; margin: 1em 0; }
.temp { font-size: 2em; }
.label { color: #888; font-size: .8em; }
.heating .temp { color: #ff5722; }
.boost { border: none; border-radius: 16px; padding: 6px 12px; cursor: pointer; background: #eee; }
.boost.active { background: #ff5722; color: #fff; }
.boost.highlighted { color: #ff5722; }
.boost.pending { opacity: .7; }
.missing { color: #c62828; }
#live { display: inline-block; width: 8px; height: 8px; border-radius: 50%; background: orange; }
#live.ok { background: green; }
#live.err { background: red; }
</style>
</head>
<body>
<div id="card" class="card idle">
  <div class="header">
    <span class="name" id="name">{{displayName .Config}}</span>
    <span id="live" title="connecting"></span>
    <button id="boost" class="boost" type="button">&#128293; <span id="countdown"></span></button>
  </div>
  <div id="body">
    <div class="temps">
      <div><div class="temp" id="current">--</div><div class="label">Current</div></div>
      <div><div class="temp" id="target">--</div><div class="label">Target</div></div>
    </div>
    <div><span id="trend-icon"></span> <span id="trend-text"></span></div>
    <div id="eta"></div>
  </div>
  <div id="missing" class="missing" hidden>Entity {{.Config.Entity}} not found</div>
</div>
<script>
(function() {
  var cardID = {{.ID}};
  var token = {{.Token}};
  var el = function(id) { return document.getElementById(id); };
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var url = proto + location.host + "/ws/cards/" + encodeURIComponent(cardID) +
    "?access_token=" + encodeURIComponent(token);
  var ws;

  function paint(v) {
    el("missing").hidden = !v.not_found;
    el("body").hidden = v.not_found;
    el("name").textContent = v.name;
    if (v.not_found) { return; }
    el("card").className = "card " + v.state_class;
    el("current").textContent = v.current_temp + "°C";
    el("target").textContent = v.target_temp + "°C";
    el("trend-icon").textContent = v.trend.icon;
    el("trend-text").textContent = v.trend.text;
    el("eta").textContent = v.eta ? v.eta + (v.confidence ? " (" + v.confidence + ")" : "") : "";
    var b = v.boost, cls = "boost";
    if (b.active_background) { cls += " active"; }
    if (b.icon_highlighted) { cls += " highlighted"; }
    if (b.pending) { cls += " pending"; }
    el("boost").className = cls;
    el("countdown").textContent = b.countdown || "";
  }

  function send(msg) {
    if (ws && ws.readyState === WebSocket.OPEN) { ws.send(JSON.stringify(msg)); }
  }

  function connect() {
    ws = new WebSocket(url);
    ws.onopen = function() { el("live").className = "ok"; };
    ws.onclose = function() { el("live").className = "err"; setTimeout(connect, 5000); };
    ws.onmessage = function(ev) {
      var msg;
      try { msg = JSON.parse(ev.data); } catch (e) { return; }
      if (msg.type === "view") { paint(msg.data); }
      if (msg.type === "countdown") { el("countdown").textContent = msg.data.text; }
      if (msg.type === "signal") { window.dispatchEvent(new CustomEvent(msg.data.type, { detail: msg.data.data })); }
      if (msg.type === "error") { console.warn(msg.error); }
    };
  }

  el("boost").addEventListener("click", function(ev) {
    ev.stopPropagation();
    send({ type: "toggle_boost" });
  });
  el("card").addEventListener("click", function() { send({ type: "tap" }); });

  connect();
})();
</script>
</body>
</html>
`

type cardPageData struct {
	ID     string
	Config models.CardConfig
	Token  string
}

// @Summary      Card page
// @Description  Standalone page that mounts the card over /ws/cards/{id}
// @Tags         cards
// @Produce      html
// @Param        id            path   string  true   "Card id"
// @Param        access_token  query  string  false  "Bearer token"
// @Success      200
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /cards/{id} [get]
func (h *Handler) cardPage(c *gin.Context) {
	rec, err := h.services.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errCardNotFound})
		return
	}

	token := c.Query(accessTokenQuery)
	if token == "" {
		token, _ = bearerToken(c.GetHeader("Authorization"))
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := cardTmpl.Execute(c.Writer, cardPageData{ID: rec.ID, Config: rec.Config, Token: token}); err != nil && h.log != nil {
		h.log.Errorw("card_page_render_failed", "card", rec.ID, "err", err)
	}
}
