package server

import (
	"bytes"
	"strings"
)

// clientEvents are forwarded for elements carrying data-vb-id. The server
// ignores events nothing listens to.
var clientEvents = []string{"click", "dblclick", "change", "submit", "keydown", "keyup", "focusin", "focusout"}

// clientScript is the thin client. It forwards input and events, swaps the
// body on render, and reloads the page when asked to.
var clientScript = `<script data-vbind-client>
(function () {
  var events = ` + jsArray(clientEvents) + `;
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");
  function send(m) { if (ws.readyState === 1) ws.send(JSON.stringify(m)); }
  function id(el) { return el && el.getAttribute && el.getAttribute("data-vb-id"); }

  document.addEventListener("input", function (e) {
    var n = id(e.target);
    if (n) send({type: "input", id: n, value: e.target.value});
  }, true);
  events.forEach(function (type) {
    document.addEventListener(type, function (e) {
      var n = id(e.target);
      if (!n) return;
      if (type === "submit") e.preventDefault();
      send({type: "event", id: n, event: type});
    }, true);
  });

  ws.onmessage = function (e) {
    var m = JSON.parse(e.data);
    if (m.type === "render") {
      var active = id(document.activeElement);
      document.body.innerHTML = m.html;
      if (active) {
        var el = document.querySelector('[data-vb-id="' + active + '"]');
        if (el) el.focus();
      }
    } else if (m.type === "reload") {
      location.reload();
    } else if (m.type === "error") {
      console.error("vbind " + m.code + ": " + m.message);
    }
  };
  ws.onclose = function () { setTimeout(function () { location.reload(); }, 1000); };
})();
</script>`

func jsArray(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = `"` + s + `"`
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// injectClient places the client script before the closing body tag, or
// appends it when the document has none.
func injectClient(page []byte) []byte {
	i := bytes.LastIndex(bytes.ToLower(page), []byte("</body>"))
	if i < 0 {
		return append(page, clientScript...)
	}
	out := make([]byte, 0, len(page)+len(clientScript))
	out = append(out, page[:i]...)
	out = append(out, clientScript...)
	return append(out, page[i:]...)
}
