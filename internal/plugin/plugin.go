// Package plugin runs the external command of a "command" hook.
package plugin

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/Mavwarf/favpack/internal/tmpl"
)

// defaultTimeout is used when the hook's Timeout field is nil.
const defaultTimeout = 10 * time.Second

// Run executes command through the system shell (sh -c on Unix, cmd /C on
// Windows) with FAVPACK_* environment variables describing the generation.
// The command string itself is never expanded through tmpl.Expand, so file
// and site names cannot inject shell syntax.
//
// Timeout behavior:
//   - nil  → 10-second default
//   - 0    → no timeout
//   - >0   → that many seconds
func Run(command, text string, timeoutSec *int, vars tmpl.Vars) error {
	timeout := defaultTimeout
	if timeoutSec != nil {
		timeout = time.Duration(*timeoutSec) * time.Second
	}

	ctx, cancel := context.Background(), context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}
	cmd.Env = buildEnv(text, vars)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("plugin %q timed out after %v", command, timeout)
		}
		if stderr.Len() > 0 {
			return fmt.Errorf("plugin %q: %s", command, bytes.TrimSpace(stderr.Bytes()))
		}
		return fmt.Errorf("plugin %q: %w", command, err)
	}
	return nil
}

// buildEnv returns the current process environment plus FAVPACK_* variables.
// Optional fields are only set when non-empty.
func buildEnv(text string, vars tmpl.Vars) []string {
	env := append(os.Environ(),
		"FAVPACK_KIND="+vars.Kind,
		"FAVPACK_TIMESTAMP="+vars.Timestamp,
		"FAVPACK_BYTES="+vars.Bytes,
	)
	optional := []struct{ key, val string }{
		{"FAVPACK_TEXT", text},
		{"FAVPACK_NAME", vars.Name},
		{"FAVPACK_SHORT_NAME", vars.ShortName},
		{"FAVPACK_SOURCE", vars.Source},
	}
	for _, o := range optional {
		if o.val != "" {
			env = append(env, o.key+"="+o.val)
		}
	}
	return env
}
