// Package clock provides a tiny time abstraction.
//
// Business logic depends on Clocker instead of calling time.Now() directly, so
// expiry rules can be exercised with a Fixed clock in tests.
package clock
