package main

import (
	"errors"
	"testing"
)

func TestRunUnknownCommand(t *testing.T) {
	err := run([]string{"frobnicate"})
	if !errors.Is(err, errUsage) {
		t.Errorf("run() error = %v, want errUsage", err)
	}
}

func TestRunNoArgs(t *testing.T) {
	err := run(nil)
	if !errors.Is(err, errUsage) {
		t.Errorf("run() error = %v, want errUsage", err)
	}
}

func TestRunHelp(t *testing.T) {
	if err := run([]string{"help"}); err != nil {
		t.Errorf("run(help) error = %v, want nil", err)
	}
}

func TestRunVersion(t *testing.T) {
	if err := run([]string{"version"}); err != nil {
		t.Errorf("run(version) error = %v, want nil", err)
	}
}

func TestConvertRejectsBadFormat(t *testing.T) {
	err := runConvert([]string{"--to", "rtf"})
	if !errors.Is(err, errUsage) {
		t.Errorf("runConvert() error = %v, want errUsage", err)
	}
}

func TestClipboardRejectsBadFormat(t *testing.T) {
	err := runClipboard([]string{"--from", "rtf"})
	if err == nil {
		t.Fatal("runClipboard() error = nil, want format error")
	}
	if exitCodeFor(err) != ExitUsage {
		t.Errorf("exitCodeFor(%v) = %d, want ExitUsage", err, exitCodeFor(err))
	}
}
