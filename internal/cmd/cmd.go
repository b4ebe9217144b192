// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package cmd is a small gnuflag command runner: flag parsing, usage
// printing, and subcommand dispatch for the schemadiff tool.
package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"
)

// Info describes a Command's intent and usage.
type Info struct {
	// Name is the Command's name.
	Name string

	// Args describes the command's expected positional arguments.
	Args string

	// Purpose is a short explanation of the Command's purpose.
	Purpose string

	// Doc is the long documentation for the Command.
	Doc string
}

// Usage combines Name and Args to describe the Command's intended
// usage.
func (i *Info) Usage() string {
	if i.Args == "" {
		return i.Name
	}
	return fmt.Sprintf("%s %s", i.Name, i.Args)
}

// Command is implemented by types that interpret command-line
// arguments.
type Command interface {
	// Info returns information about the command.
	Info() *Info

	// SetFlags adds the command's options to f.
	SetFlags(f *gnuflag.FlagSet)

	// Init processes the positional arguments left after flag parsing.
	Init(args []string) error

	// Run executes the command.
	Run() error
}

func newFlagSet(c Command) *gnuflag.FlagSet {
	f := gnuflag.NewFlagSet(c.Info().Name, gnuflag.ContinueOnError)
	f.Usage = func() { PrintUsage(c) }
	c.SetFlags(f)
	return f
}

// PrintUsage prints usage information for c to stderr.
func PrintUsage(c Command) {
	i := c.Info()
	fmt.Fprintf(os.Stderr, "usage: %s\n", i.Usage())
	fmt.Fprintf(os.Stderr, "purpose: %s\n", i.Purpose)
	fmt.Fprintf(os.Stderr, "\noptions:\n")
	newFlagSet(c).PrintDefaults()
	if i.Doc != "" {
		fmt.Fprintf(os.Stderr, "\n%s\n", strings.TrimSpace(i.Doc))
	}
}

// Parse parses args on c. This must be called before c is Run.
func Parse(c Command, args []string) error {
	f := newFlagSet(c)
	if err := f.Parse(true, args); err != nil {
		return err
	}
	return c.Init(f.Args())
}

// CheckEmpty returns an error if args is not empty.
func CheckEmpty(args []string) error {
	if len(args) != 0 {
		return errors.Errorf("unrecognised args: %s", args)
	}
	return nil
}

// Main parses and runs a Command, returning the process exit code.
func Main(c Command, args []string) int {
	if err := Parse(c, args); err != nil {
		if err == gnuflag.ErrHelp {
			PrintUsage(c)
			return 0
		}
		fmt.Fprintf(os.Stderr, "ERROR %v\n", err)
		return 2
	}
	if err := c.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR %v\n", err)
		return 1
	}
	return 0
}

// SuperCommand dispatches its first positional argument to a
// registered subcommand.
type SuperCommand struct {
	name    string
	purpose string
	subs    map[string]Command
}

// NewSuperCommand returns a SuperCommand with no subcommands
// registered.
func NewSuperCommand(name, purpose string) *SuperCommand {
	return &SuperCommand{
		name:    name,
		purpose: purpose,
		subs:    make(map[string]Command),
	}
}

// Register adds a subcommand, replacing any previous subcommand of the
// same name.
func (s *SuperCommand) Register(c Command) {
	s.subs[c.Info().Name] = c
}

// Main dispatches args to the named subcommand and returns the process
// exit code.
func (s *SuperCommand) Main(args []string) int {
	if len(args) == 0 {
		s.printHelp()
		return 2
	}
	switch args[0] {
	case "help", "--help", "-h":
		s.printHelp()
		return 0
	}
	sub, ok := s.subs[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "ERROR unrecognised command: %s %s\n", s.name, args[0])
		s.printHelp()
		return 2
	}
	return Main(sub, args[1:])
}

func (s *SuperCommand) printHelp() {
	fmt.Fprintf(os.Stderr, "usage: %s <command> ...\n", s.name)
	fmt.Fprintf(os.Stderr, "purpose: %s\n", s.purpose)
	fmt.Fprintf(os.Stderr, "\ncommands:\n")
	names := make([]string, 0, len(s.subs))
	for name := range s.subs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "    %-10s %s\n", name, s.subs[name].Info().Purpose)
	}
}
