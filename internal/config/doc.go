// Package config loads rewind settings.
//
// Settings come from three places, later ones winning:
//
//  1. Built-in defaults (Default)
//  2. A TOML or YAML file, chosen by extension
//  3. REWIND_* environment variables
//
// Basic usage:
//
//	cfg, err := config.Load("~/.config/rewind/config.toml")
//	if err != nil {
//	    return err
//	}
//	h := history.New(history.WithCapacity(cfg.History.Capacity))
//
// A Watcher reloads the file when it changes so long-running sessions can
// pick up a new capacity without restarting.
package config
