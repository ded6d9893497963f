// Package storage writes extraction results to the output directory.
//
// Results are named after their snapshot file and encoded as JSON or YAML.
// Every write goes through a temporary file and a rename. On startup the
// Manager scans the directory so that batch runs can skip snapshots that
// already have a result.
//
//	manager, err := storage.NewManager(cfg.Output.Directory, cfg.Output.Format)
//	name := storage.ResultName(path)
//	if !manager.IsSaved(name) || cfg.Output.Overwrite {
//	    _, err = manager.Save(name, extraction)
//	}
package storage
