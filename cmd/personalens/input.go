package main

import (
	"io"
	"os"

	"personalens/pkg/errors"
	"personalens/pkg/ui"
)

// stdinName is the source name reported for snapshots read from stdin.
const stdinName = "-"

// readSnapshot reads the snapshot named by args[0], or stdin when args is
// empty or "-". An interactive stdin with nothing piped in is an input error.
func readSnapshot(args []string) (raw, source string, err error) {
	source = stdinName
	if len(args) > 0 {
		source = args[0]
	}

	if source == stdinName {
		if ui.IsTerminal(os.Stdin) {
			return "", source, errors.New(errors.ErrorTypeInput, "no snapshot given: pass a file or pipe one on stdin")
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", source, errors.Wrap(errors.ErrorTypeInput, err, "failed to read stdin")
		}
		return string(data), source, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return "", source, errors.Wrap(errors.ErrorTypeInput, err, "failed to read snapshot")
	}
	return string(data), source, nil
}
