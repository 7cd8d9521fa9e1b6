// Package errors provides the classified error primitives used across the site builder.
//
// Every failure that crosses a package boundary is a ClassifiedError carrying a
// category, a severity and structured context. The categories mirror the build
// pipeline's failure taxonomy:
//   - CategoryConfig: missing or malformed project configuration (fatal, before any task runs)
//   - CategoryNotFound: a missing source or fragment file
//   - CategoryTransformer: an asset transformer reported failure
//   - CategoryTemplate: a page could not be composed
//
// Example usage:
//
//	err := errors.FileNotFoundError("page source missing").
//		WithContext("page", page.File).
//		WithCause(originalErr).
//		Build()
//
// CLIErrorAdapter and HTTPErrorAdapter turn classified errors into exit codes
// and JSON responses respectively.
package errors
