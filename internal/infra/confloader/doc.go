// Package confloader provides configuration loading mechanism.
//
// This package implements a configuration loader that supports multiple
// sources using koanf as the underlying library.
//
// Priority (highest to lowest):
//
//  1. Overrides (command-line flags)
//  2. Environment variables (ROSSO_ prefix, "__" separates nesting levels)
//  3. Configuration file (YAML)
//  4. Values already present in the target struct (defaults)
//
// Watcher reports changes to the configuration file so selected settings
// (log level) can be reloaded without a restart.
package confloader
