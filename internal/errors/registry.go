package errors

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// Registered error codes.
const (
	CodeInvalidTag       = "E001"
	CodeChildOutOfRange  = "E002"
	CodeNotAChild        = "E003"
	CodeUnsupportedValue = "E004"
	CodeListenerNotFunc  = "E005"
	CodeHierarchy        = "E006"
	CodeNoExpansion      = "E020"
	CodeNotAnElement     = "E021"
	CodeNilNode          = "E022"
	CodeMountNotFound    = "E040"
	CodeUnknownField     = "E041"
	CodeSetDuringRender  = "E042"
	CodeAlreadyMounted   = "E043"
	CodeNotMounted       = "E044"
	CodeUnknownMethod    = "E045"
	CodeConfigParse      = "E060"
	CodeConfigInvalid    = "E061"
	CodeDocumentParse    = "E080"
	CodeDocumentNode     = "E081"
	CodeSnapshotFailed   = "E090"
	CodeSnapshotNotFound = "E091"
	CodeCommandArguments = "E100"
)

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Surface Errors (E001-E019)
	// ============================================

	CodeInvalidTag: {
		Category: CategorySurface,
		Message:  "Invalid tag name",
		Detail:   "The surface cannot create an element for this tag. Unregistered custom types are treated as primitive tags.",
	},
	CodeChildOutOfRange: {
		Category: CategorySurface,
		Message:  "Child index out of range",
		Detail:   "The parent has no child node at the requested position.",
	},
	CodeNotAChild: {
		Category: CategorySurface,
		Message:  "Node is not a child of this parent",
	},
	CodeUnsupportedValue: {
		Category: CategorySurface,
		Message:  "Unsupported attribute value",
		Detail:   "Attribute values must be strings, numbers, booleans, functions or slices of those.",
	},
	CodeListenerNotFunc: {
		Category: CategorySurface,
		Message:  "Event listener is not a function",
	},
	CodeHierarchy: {
		Category: CategorySurface,
		Message:  "Node cannot be inserted here",
		Detail:   "A node cannot become a descendant of itself.",
	},

	// ============================================
	// Render Errors (E020-E039)
	// ============================================

	CodeNoExpansion: {
		Category: CategoryRender,
		Message:  "Custom node has no expansion",
		Detail:   "Nodes whose type is a registered custom type must be produced by the registry factory.",
	},
	CodeNotAnElement: {
		Category: CategoryRender,
		Message:  "Surface child is not an element",
	},
	CodeNilNode: {
		Category: CategoryRender,
		Message:  "Nil node",
	},

	// ============================================
	// State Errors (E040-E059)
	// ============================================

	CodeMountNotFound: {
		Category: CategoryState,
		Message:  "Mount target not found",
		Detail:   "No surface element carries the requested id.",
	},
	CodeUnknownField: {
		Category: CategoryState,
		Message:  "Unknown state field",
		Detail:   "Only keys declared in Data are reactive.",
	},
	CodeSetDuringRender: {
		Category: CategoryState,
		Message:  "State set during render",
		Detail:   "State values must not be modified while the tree is rendering. Write from an event handler instead.",
	},
	CodeAlreadyMounted: {
		Category: CategoryState,
		Message:  "Tree already mounted",
		Detail:   "A tree owns exactly one mount point. Create another tree for another mount.",
	},
	CodeNotMounted: {
		Category: CategoryState,
		Message:  "Tree not mounted",
	},
	CodeUnknownMethod: {
		Category: CategoryState,
		Message:  "Unknown method",
	},

	// ============================================
	// Config Errors (E060-E079)
	// ============================================

	CodeConfigParse: {
		Category: CategoryConfig,
		Message:  "Cannot parse configuration",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},

	// ============================================
	// Document Errors (E080-E089)
	// ============================================

	CodeDocumentParse: {
		Category: CategoryDocument,
		Message:  "Cannot parse tree document",
	},
	CodeDocumentNode: {
		Category: CategoryDocument,
		Message:  "Invalid node in tree document",
		Detail:   "A node is either a scalar (text) or a mapping with a type, optional props and optional children.",
	},

	// ============================================
	// Storage Errors (E090-E099)
	// ============================================

	CodeSnapshotFailed: {
		Category: CategoryStorage,
		Message:  "Snapshot store failed",
	},
	CodeSnapshotNotFound: {
		Category: CategoryStorage,
		Message:  "Snapshot not found",
	},

	// ============================================
	// CLI Errors (E100-E119)
	// ============================================

	CodeCommandArguments: {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
