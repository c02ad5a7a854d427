// Package uid generates identifiers.
//
// NumberID backs primary keys: snowflake ids are k-sorted, so ordering by id
// also orders by creation time. StringID backs correlation ids.
package uid

// NumberID generates unique int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}
