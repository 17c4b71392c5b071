// Package utils holds input validation shared by the HTTP handlers and the
// definition-file loader.
package utils
