// Package importer orchestrates the supplier-to-inventory import flow:
// search a supplier, normalize the match, resolve a category, apply
// overrides, and create the inventory records.
package importer

// Result classifies the outcome of an import attempt.
type Result string

const (
	// ResultSuccess means the part and all related records were created.
	ResultSuccess Result = "SUCCESS"
	// ResultIncomplete means the part was created but some related
	// records (supplier part, parameters) were rejected.
	ResultIncomplete Result = "INCOMPLETE"
	// ResultFailure means the inventory service rejected the part.
	ResultFailure Result = "FAILURE"
	// ResultError means the attempt failed before or outside the
	// inventory service (supplier error, transport error).
	ResultError Result = "ERROR"
)

// String implements fmt.Stringer.
func (r Result) String() string {
	return string(r)
}

// Committed reports whether a base part record exists after the attempt.
func (r Result) Committed() bool {
	return r == ResultSuccess || r == ResultIncomplete
}
