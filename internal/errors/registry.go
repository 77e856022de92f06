package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Config errors (E001-E009)
	"E001": {
		Category: CategoryConfig,
		Message:  "Root element missing",
		Detail:   "Options.El must be a dom.Node or a selector string naming the element to compile.",
	},
	"E002": {
		Category: CategoryConfig,
		Message:  "Data missing",
		Detail:   "Options.Data must be a map[string]any holding the initial model.",
	},
	"E003": {
		Category: CategoryConfig,
		Message:  "Root element not found",
		Detail:   "The selector given as Options.El did not match any element of the document.",
	},
	"E004": {
		Category: CategoryConfig,
		Message:  "Unsupported root element",
		Detail:   "Options.El has a type that is neither a dom.Node nor a string.",
	},
	"E005": {
		Category: CategoryConfig,
		Message:  "Document missing",
		Detail:   "A selector string can only be resolved against Options.Document.",
	},

	// Runtime errors (E010-E019)
	"E010": {
		Category: CategoryRuntime,
		Message:  "Handler not found",
		Detail:   "A v-on directive names a method that is not registered in Options.Methods.",
	},
	"E011": {
		Category: CategoryRuntime,
		Message:  "Handler panic",
		Detail:   "An event handler panicked. The panic was recovered; the model may be partially updated.",
	},
	"E012": {
		Category: CategoryRuntime,
		Message:  "Subscriber panic",
		Detail:   "A subscriber panicked while being notified. Remaining subscribers were still notified.",
	},
	"E013": {
		Category: CategoryRuntime,
		Message:  "Notification depth exceeded",
		Detail:   "Property writes triggered by change callbacks nested deeper than the allowed limit. This usually means two bindings write each other in a cycle.",
	},

	// Compile errors (E020-E029)
	"E020": {
		Category: CategoryCompile,
		Message:  "Template parse failed",
		Detail:   "The template could not be parsed as HTML.",
	},
	"E021": {
		Category: CategoryCompile,
		Message:  "Data file invalid",
		Detail:   "The data file must hold a JSON or YAML object at the top level.",
	},
	"E022": {
		Category: CategoryCompile,
		Message:  "Markup fragment invalid",
		Detail:   "A v-html value could not be parsed as an HTML fragment.",
	},

	// Config file errors (E030-E039)
	"E030": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file contains invalid values.",
	},
	"E031": {
		Category: CategoryConfig,
		Message:  "Configuration file unreadable",
		Detail:   "The configuration file could not be read or decoded.",
	},

	// Protocol errors (E040-E049)
	"E040": {
		Category: CategoryProtocol,
		Message:  "Invalid message",
		Detail:   "A client message could not be decoded or has an unknown type.",
	},
	"E041": {
		Category: CategoryProtocol,
		Message:  "Unknown node",
		Detail:   "A client message referenced a node id that does not exist in the session document.",
	},
	"E042": {
		Category: CategoryProtocol,
		Message:  "Event queue full",
		Detail:   "The session is receiving events faster than it can apply them.",
	},

	// CLI errors (E050-E059)
	"E050": {
		Category: CategoryCLI,
		Message:  "Invalid flag value",
		Detail:   "A command line flag has a malformed value.",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
