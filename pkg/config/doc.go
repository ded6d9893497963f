// Package config loads personalens settings from layered sources.
//
// Precedence, lowest to highest: built-in defaults, a YAML file
// (.personalens.yaml in the working directory, then
// ~/.config/personalens/config.yaml), .env files, PERSONALENS_* environment
// variables, and command line flags:
//
//	cfg, err := config.Load("", map[string]interface{}{
//		"handle":  "adev",
//		"workers": 8,
//	})
package config
