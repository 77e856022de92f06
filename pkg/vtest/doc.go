// Package vtest provides testing helpers for vbind templates.
//
// Mount compiles a template against model data and marks the document
// ready, so tests can drive user edits and events the way a browser would
// and assert on the resulting markup.
//
// # Quick Start
//
//	func TestGreeting(t *testing.T) {
//	    app := vtest.Mount(t, `<div id="app"><input v-model="name"><p>{{name}}</p></div>`,
//	        map[string]any{"name": "Ann"})
//
//	    app.Input("input", "Bo")
//	    app.ExpectText("p", "Bo")
//	}
//
// # Methods
//
// Event handlers are passed as options:
//
//	app := vtest.Mount(t, markup, data, vtest.WithMethod("inc", func(vm *vbind.VM, e dom.Event) {
//	    vm.Set("count", vm.Peek("count").(int)+1)
//	}))
//	app.Click("button")
//
// # Runtime Errors
//
// Errors reported through the VM's error handler (missing handlers,
// panicking subscribers) are collected and available from Errors.
// ExpectNoErrors fails the test if any were reported.
package vtest
