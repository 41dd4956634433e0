// Package types contains the shared domain types for cramdeck: the records
// the study pipeline consumes (lecture transcripts, class recordings,
// assignment descriptions) and the validation errors they can produce.
package types
