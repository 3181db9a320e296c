// Package file provides file-based configuration for the bridge.
//
// Adapters:
//   - ConfigStore: TOML configuration flattened to dot-notation keys
//   - Watcher: reloads a ConfigStore when its file changes on disk
package file
