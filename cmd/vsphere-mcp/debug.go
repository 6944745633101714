package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var debugCleanup func()

// logOutput returns stderr, teed into the --debug-log file when one is set.
// The returned level is forced to DEBUG while the file is active.
func logOutput(level string) (io.Writer, string) {
	if debugLogPath == "" {
		return os.Stderr, level
	}

	if dir := filepath.Dir(debugLogPath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to enable debug log: %v\n", err)
			return os.Stderr, level
		}
	}
	f, err := os.OpenFile(debugLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to enable debug log: %v\n", err)
		return os.Stderr, level
	}
	debugCleanup = func() { _ = f.Close() }
	return io.MultiWriter(os.Stderr, f), "DEBUG"
}
