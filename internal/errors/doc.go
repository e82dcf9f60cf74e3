// Package errors provides coded, structured errors for vtree.
//
// Every failure the library reports carries a registered code (e.g. "E001")
// mapping to a category, a short message and an optional detail. Callers
// match codes with errors.Is against a bare sentinel:
//
//	if errors.Is(err, vterrors.New(vterrors.CodeInvalidTag)) {
//	    ...
//	}
//
// # Categories
//
//   - surface: failures raised by a render surface (invalid tag, bad index)
//   - render: reconciliation failures (custom node without expansion)
//   - state: reactive tree misuse (unknown field, write during render)
//   - config: vtree.yaml problems
//   - document: tree document problems
//   - storage: snapshot store failures
//   - cli: command line usage
package errors
