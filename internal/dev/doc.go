// Package dev watches template, data and config files during development.
//
// A Watcher reports debounced batches of changes through its OnChange
// callback. The live server uses it to re-read the template and tell every
// session to reload:
//
//	w := dev.NewWatcher(dev.WatcherConfig{
//	    Paths:    []string{"index.html", "data.json"},
//	    Debounce: 100 * time.Millisecond,
//	})
//	w.OnChange(func(changes []dev.Change) {
//	    srv.Reload()
//	})
//	if err := w.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop()
package dev
