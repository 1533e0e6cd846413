package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// I/O sentinel errors for exit-code mapping.
var (
	errReadInput   = errors.New("reading input failed")
	errWriteOutput = errors.New("writing output failed")
)

// readInput reads the named file, or stdin when path is empty or "-".
func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("%w: stdin: %v", errReadInput, err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path is user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errReadInput, err)
	}
	return data, nil
}

// writeOutput writes to the named file, or stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("%w: stdout: %v", errWriteOutput, err)
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 -- converted document, not a secret
		return fmt.Errorf("%w: %v", errWriteOutput, err)
	}
	return nil
}
