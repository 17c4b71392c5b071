// Package filedef loads uncertainty budget and measurement series
// definitions from YAML, TOML or JSON files and builds them into core
// objects.
package filedef
