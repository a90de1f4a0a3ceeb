// Package v1 holds the optional run configuration accepted by dicomcheck
// through --config.
package v1

//go:generate go run ../../scripts/gen-docs.go
