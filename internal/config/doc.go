// Package config loads vbind project configuration.
//
// Configuration lives in vbind.json (or vbind.yaml / vbind.yml) next to the
// template. Every key can be overridden from the environment with the
// VBIND_ prefix, dots replaced by underscores (VBIND_SERVER_PORT=4000).
//
// # Configuration File Structure
//
//	{
//	  "template": "index.html",
//	  "data": "data.json",
//	  "root": "#app",
//	  "log": {"level": "info", "format": "text"},
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000,
//	    "watch": true,
//	    "read_timeout": "60s",
//	    "heartbeat_interval": "30s",
//	    "max_message_size": 65536
//	  },
//	  "metrics": {"enabled": true, "namespace": "vbind", "path": "/metrics"},
//	  "reactive": {"max_notify_depth": 100},
//	  "actions": [
//	    {"name": "increment", "set": ["count+=1"]},
//	    {"name": "reset", "set": ["count=0", "name=Ann"]}
//	  ]
//	}
//
// Actions give v-on handlers to templates served by the CLI: each action
// applies its assignments to the model when it runs.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	data, err := config.LoadData(cfg.DataPath())
package config
