// Package validator provides a small validation abstraction for request and
// domain structs.
//
// Business code depends on the Validator interface. V10Validator implements it
// with go-playground/validator v10 and reports failures keyed by the json name
// of the field.
package validator
