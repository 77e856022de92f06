// Package dom is the host document vbind binds to.
//
// It wraps a golang.org/x/net/html tree and adds what a browser document
// provides and a parse tree does not: value get/set for form controls,
// markup get/set, event listeners, a "document ready" signal and simple
// selector queries.
//
//	doc, err := dom.ParseString(`<div id="app"><input v-model="name"></div>`)
//	app, err := doc.Query("#app")
//	input := app.Children()[0]
//	input.AddEventListener("input", func(e dom.Event) { fmt.Println(e.Value) })
//	doc.Input(input, "Cy") // sets the value, then fires "input"
//
// Events do not bubble. Listeners run synchronously in registration order.
// Elements that carry listeners get a stable data-vb-id attribute so a
// remote client can address them.
//
// A Document is not safe for concurrent use.
package dom
