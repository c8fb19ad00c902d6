package dbbackup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Dumper produces a database dump at the given path. The dump mechanism is
// opaque to the rest of the system; only success or failure matters.
type Dumper interface {
	Dump(ctx context.Context, path string) error
}

// PathPlaceholder marks where the output path goes in the backup command.
const PathPlaceholder = "{path}"

// CommandDumper runs an external dump tool such as pg_dump or mysqldump.
// Occurrences of {path} in the command are replaced with the output path;
// if the command contains no placeholder, the path is appended as the last
// argument.
type CommandDumper struct {
	argv []string
	env  []string
}

// NewCommandDumper builds a dumper from a command line string and extra
// KEY=VALUE environment entries (e.g. PGPASSWORD for pg_dump). The command
// is split on whitespace; shell quoting is not interpreted.
func NewCommandDumper(command string, env []string) (*CommandDumper, error) {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return nil, errors.New("backup command is empty")
	}
	return &CommandDumper{argv: argv, env: env}, nil
}

// Dump runs the configured command and returns an error carrying the
// captured output when the command exits non-zero.
func (d *CommandDumper) Dump(ctx context.Context, path string) error {
	argv := make([]string, len(d.argv))
	replaced := false
	for i, arg := range d.argv {
		if strings.Contains(arg, PathPlaceholder) {
			arg = strings.ReplaceAll(arg, PathPlaceholder, path)
			replaced = true
		}
		argv[i] = arg
	}
	if !replaced {
		argv = append(argv, path)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), d.env...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		if trimmed := bytes.TrimSpace(out); len(trimmed) > 0 {
			return fmt.Errorf("backup command failed: %w: %s", err, trimmed)
		}
		return fmt.Errorf("backup command failed: %w", err)
	}

	return nil
}
