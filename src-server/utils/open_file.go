package utils

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenCommand returns the command line that hands path to the desktop's
// default application for goos.
func OpenCommand(goos string, path string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{path}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{path}, nil
	default:
		return "", nil, fmt.Errorf("OpenCommand: no opener for %s", goos)
	}
}

// OpenFile asks the OS to open path and doesn't wait for the application.
func OpenFile(path string) error {
	name, args, err := OpenCommand(runtime.GOOS, path)
	if err != nil {
		return fmt.Errorf("OpenFile: %w", err)
	}
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("OpenFile: %w", err)
	}
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("OpenFile: %w", err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
