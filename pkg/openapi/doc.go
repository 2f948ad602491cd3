// Package openapi imports the request body schema of an OpenAPI 3 operation
// as a form template record. kin-openapi types stay inside this package.
package openapi
