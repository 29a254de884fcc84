// Package shell is the interactive prompt a bootstrapped session drops into.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/peterh/liner"

	"github.com/san-kum/gcint/internal/dict"
	"github.com/san-kum/gcint/internal/draw"
	"github.com/san-kum/gcint/internal/logging"
	"github.com/san-kum/gcint/internal/namespace"
	"github.com/san-kum/gcint/internal/runopt"
	"github.com/san-kum/gcint/internal/session"
)

const Prompt = "gcint> "

var (
	ErrUnknownCommand = errors.New("shell: unknown command")
	ErrUsage          = errors.New("shell: bad usage")
	ErrNotFound       = errors.New("shell: no such name")
)

type command struct {
	usage string
	help  string
	run   func(s *Shell, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"ls":      {"ls [NAME]", "list session bindings, or the members of a scope", (*Shell).ls},
		"show":    {"show NAME", "print a binding; dotted or :: paths reach into scopes", (*Shell).show},
		"classes": {"classes [PREFIX]", "list known dictionary classes", (*Shell).classes},
		"get":     {"get NAME...", "bind scope members into the session under their short names", (*Shell).get},
		"entry":   {"entry TREE N", "load row N of a tree", (*Shell).entry},
		"draw":    {"draw TREE BRANCH [BINS]", "plot a branch, as a histogram when BINS is given", (*Shell).draw},
		"tune":    {"tune", "show the active run options", (*Shell).tune},
		"help":    {"help", "list commands", (*Shell).help},
	}
}

// Shell evaluates commands against a session.
type Shell struct {
	Session *session.Session
	Dict    *dict.Registry
	Out     io.Writer
	Draw    draw.Options
	// History is the liner history file; empty disables persistence.
	History string
	Logger  *log.Logger
}

func New(s *session.Session, reg *dict.Registry, out io.Writer) *Shell {
	if out == nil {
		out = os.Stdout
	}
	return &Shell{Session: s, Dict: reg, Out: out}
}

// Exec runs one command line. quit reports a request to leave the prompt.
func (s *Shell) Exec(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	name, args := fields[0], fields[1:]
	switch name {
	case "quit", "exit", ".q":
		return true, nil
	}
	cmd, ok := commands[name]
	if !ok {
		return false, fmt.Errorf("%w %q (try help)", ErrUnknownCommand, name)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", name, r)
		}
	}()
	return false, cmd.run(s, args)
}

// Run reads commands until EOF, quit or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	logger := logging.OrDiscard(s.Logger)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(s.Complete)

	if s.History != "" {
		if f, err := os.Open(s.History); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			f, err := os.Create(s.History)
			if err != nil {
				logger.Warn("could not save history", "path", s.History, "err", err)
				return
			}
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}()
	}

	for ctx.Err() == nil {
		line, err := ln.Prompt(Prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(s.Out)
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)

		quit, err := s.Exec(line)
		if err != nil {
			fmt.Fprintln(s.Out, red.Render(err.Error()))
		}
		if quit {
			return nil
		}
	}
	return ctx.Err()
}

// Banner summarizes the session the prompt starts in.
func (s *Shell) Banner() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(rule(26) + "\n")
	b.WriteString("           " + cyan.Render("g c i n t") + "\n")
	b.WriteString(rule(26) + "\n\n")
	if s.Session != nil {
		if s.Session.RunOpt != nil {
			b.WriteString("      " + dim.Render("tune     ") + white.Render(s.Session.RunOpt.TuneName()) + "\n")
		}
		for i, f := range s.Session.Files {
			b.WriteString("      " + dim.Render(fmt.Sprintf("%-9s", session.FileVar(i))) + white.Render(f.Name()) + "\n")
		}
		if n := len(s.Session.Exported); n > 0 {
			b.WriteString("      " + dim.Render("exported ") + white.Render(strconv.Itoa(n)) + "\n")
		}
	}
	b.WriteString("\n" + dim.Render("      help for commands, quit to leave") + "\n")
	return b.String()
}

// Complete offers command names first, then binding names and scope members.
func (s *Shell) Complete(line string) []string {
	fields := strings.Fields(line)
	trailing := strings.HasSuffix(line, " ")
	if len(fields) == 0 || (len(fields) == 1 && !trailing) {
		prefix := ""
		if len(fields) == 1 {
			prefix = fields[0]
		}
		return withPrefix(commandNames(), prefix)
	}

	head := line
	word := ""
	if !trailing {
		word = fields[len(fields)-1]
		head = line[:len(line)-len(word)]
	}

	var out []string
	for _, c := range s.candidates(word) {
		out = append(out, head+c)
	}
	return out
}

func (s *Shell) candidates(word string) []string {
	if i := strings.LastIndexAny(word, ".:"); i >= 0 {
		scopePath := strings.TrimRight(word[:i+1], ".:")
		sep := word[len(scopePath) : i+1]
		v, err := s.lookup(scopePath)
		if err != nil {
			return nil
		}
		ns, ok := v.(namespace.Namespace)
		if !ok {
			return nil
		}
		var out []string
		for _, m := range withPrefix(ns.Members(), word[i+1:]) {
			out = append(out, scopePath+sep+m)
		}
		return out
	}
	return withPrefix(s.bindingNames(), word)
}

func (s *Shell) bindingNames() []string {
	if s.Session == nil {
		return nil
	}
	return s.Session.Bindings.Names()
}

// lookup resolves a binding path such as genie.GHepRecord or G::GHepRecord.
func (s *Shell) lookup(path string) (any, error) {
	parts := splitPath(path)
	if len(parts) == 0 || s.Session == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, path)
	}
	v, ok := s.Session.Bindings[parts[0]]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, parts[0])
	}
	for i := 1; i < len(parts); i++ {
		ns, ok := v.(namespace.Namespace)
		if !ok {
			return nil, fmt.Errorf("%s is not a scope", strings.Join(parts[:i], "."))
		}
		next, err := ns.Lookup(parts[i])
		if err != nil {
			return nil, err
		}
		if _, scope := next.(namespace.Namespace); !scope && i < len(parts)-1 {
			// Nested classes are members of the enclosing scope under their
			// ::-joined relative name.
			return ns.Lookup(strings.Join(parts[i:], namespace.Separator))
		}
		v = next
	}
	return v, nil
}

func splitPath(path string) []string {
	path = strings.ReplaceAll(path, namespace.Separator, ".")
	var parts []string
	for _, p := range strings.Split(path, ".") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func (s *Shell) ls(args []string) error {
	if len(args) > 1 {
		return usage("ls")
	}
	if len(args) == 1 {
		v, err := s.lookup(args[0])
		if err != nil {
			return err
		}
		ns, ok := v.(namespace.Namespace)
		if !ok {
			return fmt.Errorf("%s is not a scope", args[0])
		}
		for _, m := range ns.Members() {
			fmt.Fprintln(s.Out, m)
		}
		return nil
	}

	w := tabwriter.NewWriter(s.Out, 0, 0, 2, ' ', 0)
	for _, name := range s.bindingNames() {
		fmt.Fprintf(w, "%s\t%s\n", name, describe(s.Session.Bindings[name]))
	}
	return w.Flush()
}

func (s *Shell) show(args []string) error {
	if len(args) != 1 {
		return usage("show")
	}
	v, err := s.lookup(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(s.Out, "%s = %s\n", args[0], describe(v))
	switch x := v.(type) {
	case *dict.Class:
		w := tabwriter.NewWriter(s.Out, 0, 0, 2, ' ', 0)
		for _, m := range x.Members {
			fmt.Fprintf(w, "  %s\t%s\n", m.Type, m.Name)
		}
		return w.Flush()
	case rowHolder:
		row := x.Row()
		if row == nil {
			return nil
		}
		cur, _ := x.Loaded()
		fmt.Fprintf(s.Out, "row %d:\n", cur)
		w := tabwriter.NewWriter(s.Out, 0, 0, 2, ' ', 0)
		for _, k := range sortedKeys(row) {
			fmt.Fprintf(w, "  %s\t%v\n", k, row[k])
		}
		return w.Flush()
	}
	return nil
}

func (s *Shell) classes(args []string) error {
	if s.Dict == nil {
		return errors.New("no class dictionary loaded")
	}
	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}
	for _, n := range withPrefix(s.Dict.Names(), prefix) {
		fmt.Fprintln(s.Out, n)
	}
	return nil
}

func (s *Shell) get(args []string) error {
	if len(args) == 0 {
		return usage("get")
	}
	for _, path := range args {
		v, err := s.lookup(path)
		if err != nil {
			return err
		}
		parts := splitPath(path)
		short := parts[len(parts)-1]
		s.Session.Bindings[short] = v
		fmt.Fprintf(s.Out, "%s = %s\n", short, describe(v))
	}
	return nil
}

func (s *Shell) entry(args []string) error {
	if len(args) != 2 {
		return usage("entry")
	}
	v, err := s.lookup(args[0])
	if err != nil {
		return err
	}
	t, ok := v.(session.Tree)
	if !ok {
		return fmt.Errorf("%s is not a tree", args[0])
	}
	n, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return usage("entry")
	}
	if err := t.LoadEntry(n); err != nil {
		return err
	}
	return s.show(args[:1])
}

func (s *Shell) draw(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usage("draw")
	}
	v, err := s.lookup(args[0])
	if err != nil {
		return err
	}
	src, ok := v.(draw.Source)
	if !ok {
		return fmt.Errorf("%s has no branches to draw", args[0])
	}
	opts := s.Draw
	if len(args) == 3 {
		bins, err := strconv.Atoi(args[2])
		if err != nil || bins <= 0 {
			return usage("draw")
		}
		opts.Bins = bins
	}
	return draw.Branch(s.Out, src, args[1], opts)
}

func (s *Shell) tune(args []string) error {
	if s.Session == nil || s.Session.RunOpt == nil {
		return errors.New("no run options in this session")
	}
	fmt.Fprintln(s.Out, s.Session.RunOpt)
	if e, ok := runopt.Lookup(s.Session.RunOpt.TuneName()); ok {
		fmt.Fprintln(s.Out, dim.Render(e.Description))
	}
	return nil
}

func (s *Shell) help(args []string) error {
	w := tabwriter.NewWriter(s.Out, 0, 0, 2, ' ', 0)
	for _, name := range commandNames() {
		c := commands[name]
		fmt.Fprintf(w, "  %s\t%s\n", c.usage, c.help)
	}
	fmt.Fprintf(w, "  %s\t%s\n", "quit", "leave the session")
	return w.Flush()
}

type rowHolder interface {
	Row() map[string]any
	Loaded() (int64, bool)
}

func describe(v any) string {
	switch x := v.(type) {
	case namespace.Namespace:
		name := x.Name()
		if name == "" {
			name = "(global)"
		}
		return fmt.Sprintf("<scope %s, %d members>", name, len(x.Members()))
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprintf("%v", v)
}

func usage(name string) error {
	return fmt.Errorf("%w: %s", ErrUsage, commands[name].usage)
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func withPrefix(names []string, prefix string) []string {
	var out []string
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
