// Package errors provides structured, coded error values for vbind.
//
// Each error carries a code (e.g. "E001") registered with a category, a short
// message and a longer explanation. Errors are built fluently:
//
//	err := errors.New("E003").
//	    WithDetail(`selector "#app" matched no element`).
//	    WithSuggestion(`Add <div id="app"> to the template or change Options.El`)
//
//	fmt.Fprint(os.Stderr, err.Format())
//	// ERROR E003: Root element not found
//	//
//	//   selector "#app" matched no element
//	//
//	//   Hint: Add <div id="app"> to the template or change Options.El
//
// # Error Categories
//
//   - config: invalid startup options or configuration files
//   - compile: template parsing failures
//   - runtime: handler and notification failures after startup
//   - protocol: malformed live-host messages
//   - cli: command line usage errors
package errors
