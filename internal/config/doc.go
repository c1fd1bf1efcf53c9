// Package config provides configuration for Pad.
//
// Settings come from three layers, higher layers overriding lower:
//
//  1. Built-in defaults (Default)
//  2. An optional TOML or YAML file named with -config
//  3. Environment variables with the PAD_ prefix
//
// The merged layers are decoded into a typed Config and validated:
//
//	cfg, err := config.Load(config.LoadOptions{Path: "pad.toml"})
//	if err != nil {
//		return err
//	}
//
// # Sub-packages
//
//   - loader: TOML, YAML and environment loading plus map merging
//   - watcher: fsnotify based change notification for live reload
package config
