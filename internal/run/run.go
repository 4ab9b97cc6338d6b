// Package run wraps invocation of external build tooling. Every call takes
// an explicit working directory so no stage depends on process-wide state.
package run

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Run executes a command in dir, streaming its output to the terminal.
// A non-zero exit is returned as an error.
func Run(ctx context.Context, dir string, name string, args ...string) error {
	return RunEnv(ctx, dir, nil, name, args...)
}

// RunEnv executes a command with extra environment entries ("KEY=value")
// appended to the inherited environment.
func RunEnv(ctx context.Context, dir string, extraEnv []string, name string, args ...string) error {
	logrus.Infof("$ %s %s", name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// BestEffort executes a command and only warns on failure. Used for steps
// that frequently fail on an already-satisfied environment, like dependency
// installation.
func BestEffort(ctx context.Context, dir string, name string, args ...string) bool {
	if err := Run(ctx, dir, name, args...); err != nil {
		logrus.Warnf("command failed (ignored): %s %s: %v", name, strings.Join(args, " "), err)
		return false
	}
	return true
}

// Output executes a command and returns its trimmed standard output
func Output(ctx context.Context, dir string, name string, args ...string) (string, error) {
	logrus.Debugf("$ %s %s", name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Require verifies every named command resolves on PATH. A missing tool
// means no job could possibly succeed, so the caller aborts the whole run.
func Require(names ...string) error {
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			return fmt.Errorf("missing command: %s", name)
		}
	}
	return nil
}
