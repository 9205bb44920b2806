// Package commands is the registry behind the in-app console: each command is a name,
// a flag set and a run function.
package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ErrUnknown is returned by Execute for a name that was never registered.
var ErrUnknown = errors.New("unknown command")

// Command is a subcommand with its own flags and a Run function.
// Run is called after FlagSet.Parse and receives the remaining positional arguments.
type Command struct {
	Name    string
	Usage   string
	FlagSet *flag.FlagSet
	Run     func(args []string) error
}

// Registry holds commands by name.
type Registry struct {
	cmds map[string]*Command
	out  io.Writer
}

// NewRegistry returns an empty registry. Flag parse errors and help text go to out.
func NewRegistry(out io.Writer) *Registry {
	if out == nil {
		out = io.Discard
	}
	r := &Registry{cmds: make(map[string]*Command), out: out}
	r.Register("help", "list commands", nil, func([]string) error {
		_, err := io.WriteString(r.out, r.Help())
		return err
	})
	return r
}

// Register adds or replaces a command. fs may be nil for a command without flags.
func (r *Registry) Register(name, usage string, fs *flag.FlagSet, run func(args []string) error) {
	if fs == nil {
		fs = flag.NewFlagSet(name, flag.ContinueOnError)
	}
	fs.SetOutput(r.out)
	r.cmds[name] = &Command{Name: name, Usage: usage, FlagSet: fs, Run: run}
}

// Parse splits a console line into arguments. A leading "cmd" is accepted and dropped.
// ok is false for a blank line.
func Parse(line string) (args []string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) > 0 && fields[0] == "cmd" {
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return nil, false
	}
	return fields, true
}

// Execute runs args[0] with args[1:] parsed by its flag set.
func (r *Registry) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command")
	}
	cmd, ok := r.cmds[args[0]]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknown, args[0])
	}
	if err := cmd.FlagSet.Parse(args[1:]); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return cmd.Run(cmd.FlagSet.Args())
}

// Help lists every command with its usage, sorted by name.
func (r *Registry) Help() string {
	names := make([]string, 0, len(r.cmds))
	for name := range r.cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%-8s %s\n", name, r.cmds[name].Usage)
	}
	return b.String()
}
