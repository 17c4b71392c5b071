// Command budget evaluates uncertainty budget definition files and prints
// the budget table, or JSON with -json.
//
// Usage:
//
//	budget -f gauge.yaml
//	budget -f gauge.toml -k 3
//	budget -f 'lab/**/*.yaml' -json
//	cat gauge.json | budget -f -
//
// Input on stdin is detected as JSON or YAML; pass -format toml for TOML.
// A glob prints one report per matching file, or a JSON array.
//
// Logs go to stderr; reports go to stdout. The exit status is 2 for usage
// errors and 1 when a definition cannot be loaded or built.
package main
