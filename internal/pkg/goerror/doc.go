// Package goerror defines the structured error used between usecases and the
// HTTP layer. The router turns an *Error into a status code and a JSON body
// using Msg, Code and Fields.
package goerror
