// Package aligner wraps the external programs used by a rescue: the STAR and
// Subread index builders and aligners, and blastn.
package aligner

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/guigolab/scavenger/utils"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrToolUnavailable is returned when a required program cannot be found.
var ErrToolUnavailable = errors.New("tool unavailable")

// errToken in the error stream of a tool marks an I/O failure even when the
// exit code is zero.
const errToken = "[Errno"

// Executor runs external programs.
type Executor interface {
	LookPath(file string) (string, error)
	Run(name string, args []string, stdout, stderr io.Writer) error
}

type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Run(name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// DefaultExecutor runs programs with os/exec.
var DefaultExecutor Executor = osExecutor{}

// ToolError reports a failed tool run. Reason tells which of the failure
// signals was seen.
type ToolError struct {
	Tool   string
	Reason string
	Stdout string
	Stderr string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s failed to complete (%s)!\n%s stdout: %s\n%s stderr: %s", e.Tool, e.Reason, e.Tool, e.Stdout, e.Tool, e.Stderr)
}

// Runner runs tools and checks their outcome.
type Runner struct {
	Exec Executor
	Log  log.FieldLogger
}

// NewRunner returns a Runner. A nil exec uses DefaultExecutor.
func NewRunner(exec Executor, logger log.FieldLogger) *Runner {
	if exec == nil {
		exec = DefaultExecutor
	}
	return &Runner{Exec: exec, Log: logger}
}

// Run executes name with args. A non-zero exit, a missing output file or an
// error token in the error stream all return a *ToolError. An empty output
// skips the file check.
func (r *Runner) Run(tool, name string, args []string, output string) error {
	r.Log.WithField("tool", tool).Debugf("Command: %s %s", name, strings.Join(args, " "))
	var stdout, stderr bytes.Buffer
	err := r.Exec.Run(name, args, &stdout, &stderr)
	toolErr := func(reason string) error {
		return &ToolError{Tool: tool, Reason: reason, Stdout: stdout.String(), Stderr: stderr.String()}
	}
	switch {
	case err != nil:
		return toolErr("non-zero return code")
	case output != "" && !utils.Exists(output):
		return toolErr("no output file is found")
	case strings.Contains(stderr.String(), errToken):
		return toolErr("error")
	}
	return nil
}

// Check looks up every executable and returns ErrToolUnavailable for the
// first one missing.
func (r *Runner) Check(executables ...string) error {
	for _, e := range executables {
		if _, err := r.Exec.LookPath(e); err != nil {
			return errors.Wrapf(ErrToolUnavailable, "[%s] not found in PATH", e)
		}
	}
	return nil
}

// SplitArgs splits an extra argument string on white space.
func SplitArgs(s string) []string {
	return strings.Fields(s)
}
