package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"github.com/slipstream/mango"
	"github.com/slipstream/mango/pkg/commands"
	"github.com/slipstream/mango/pkg/flow"
	"github.com/slipstream/mango/pkg/ports"
)

var (
	// ErrUnknownCommand is returned for lines no ex command matches.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUsage is returned for commands with missing or malformed arguments.
	ErrUsage = errors.New("usage")
	// errQuit ends the shell loop.
	errQuit = errors.New("quit")
)

// Shell interprets vi-like ex commands against one Editor.
type Shell struct {
	ed     *mango.Editor
	store  ports.DocumentStore
	name   string
	out    *termenv.Output
	logger *slog.Logger
	runner *mango.Runner
}

// NewShell creates a shell editing the document called name in store.
func NewShell(ed *mango.Editor, store ports.DocumentStore, name string, out io.Writer) *Shell {
	return &Shell{
		ed:     ed,
		store:  store,
		name:   name,
		out:    termenv.NewOutput(out),
		logger: ed.Logger(),
		runner: mango.NewRunner(out),
	}
}

// Name is the document the next bare :w writes to.
func (s *Shell) Name() string { return s.name }

// Open loads name from the store. A missing document leaves an empty graph.
func (s *Shell) Open(ctx context.Context, name string) error {
	data, err := s.store.Load(ctx, name)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		s.name = name
		printSystemMessage(s.out, "New graph '%s'.", name)
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.ed.Load(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to open graph %q: %w", name, err)
	}
	s.name = name
	printSystemMessage(s.out, "Opened '%s' (%d nodes).", name, s.ed.Graph().Len())
	return nil
}

// Run reads commands from in until EOF or q. Failing commands are reported
// and the loop goes on. A prompt is written when interactive is set.
func (s *Shell) Run(ctx context.Context, in io.Reader, interactive bool) error {
	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(s.out, s.prompt())
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line, err := SanitizeLine(scanner.Text())
		if err == nil {
			err = s.Execute(ctx, line)
		}
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			s.logger.Debug("Command rejected", "line", line, "err", err)
			fmt.Fprintln(s.out, s.out.String("error: "+err.Error()).Foreground(s.out.Color("1")))
		}
	}
}

func (s *Shell) prompt() string {
	if id, ok := s.ed.Selected(); ok {
		return fmt.Sprintf("%s [%d]> ", s.name, id)
	}
	return s.name + "> "
}

// Execute runs one command line. A leading ':' is optional.
func (s *Shell) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), ":"))
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "q", "quit":
		return errQuit
	case "w", "write":
		name := s.name
		if len(args) > 0 {
			name = args[0]
		}
		return s.write(ctx, name)
	case "e", "edit":
		if len(args) != 1 {
			return fmt.Errorf("%w: e <name>", ErrUsage)
		}
		return s.Open(ctx, args[0])
	case "a", "after":
		return s.insert(commands.After, args)
	case "i", "before":
		return s.insert(commands.Before, args)
	case "s", "sub":
		return s.insert(commands.Substitute, args)
	case "n", "new":
		if len(args) == 0 {
			return fmt.Errorf("%w: n <type> [label]", ErrUsage)
		}
		id, err := s.ed.AddNode(args[0], strings.Join(args[1:], " "), 0, 0)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "+ %d %s\n", id, args[0])
		return nil
	case "sel":
		id, err := s.ids(args, 1, "sel <id>")
		if err != nil {
			return err
		}
		return s.ed.Select(id[0])
	case "c", "connect":
		if len(args) != 2 && len(args) != 3 {
			return fmt.Errorf("%w: c <from> <to> [slot]", ErrUsage)
		}
		ids, err := s.ids(args[:2], 2, "c <from> <to> [slot]")
		if err != nil {
			return err
		}
		slot := 0
		if len(args) == 3 {
			if slot, err = strconv.Atoi(args[2]); err != nil {
				return fmt.Errorf("%w: slot %q", ErrUsage, args[2])
			}
		}
		return s.ed.Connect(ids[0], ids[1], slot)
	case "dc":
		ids, err := s.ids(args, 2, "dc <from> <to>")
		if err != nil {
			return err
		}
		return s.ed.Disconnect(ids[0], ids[1])
	case "d", "delete":
		id, err := s.target(args, "d [id]")
		if err != nil {
			return err
		}
		return s.ed.Delete(id)
	case "set":
		if len(args) < 2 {
			return fmt.Errorf("%w: set <id> <field> [value]", ErrUsage)
		}
		ids, err := s.ids(args[:1], 1, "set <id> <field> [value]")
		if err != nil {
			return err
		}
		return s.ed.SetValue(ids[0], args[1], flow.String(strings.Join(args[2:], " ")))
	case "u", "undo":
		return s.step("undo", s.ed.Undo)
	case "r", "redo":
		return s.step("redo", s.ed.Redo)
	case "p", "pull":
		id, err := s.target(args, "p [id]")
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, s.ed.Pull(id).String())
		return nil
	case "run":
		_, err := s.runner.Run(s.ed)
		return err
	case "ls":
		s.list()
		return nil
	}
	return fmt.Errorf("%w %q", ErrUnknownCommand, cmd)
}

func (s *Shell) insert(mode commands.Mode, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: %s <type>", ErrUsage, mode)
	}
	id, err := s.ed.Insert(mode, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "+ %d %s\n", id, args[0])
	return nil
}

func (s *Shell) write(ctx context.Context, name string) error {
	var buf bytes.Buffer
	if err := s.ed.Save(&buf); err != nil {
		return err
	}
	if err := s.store.Save(ctx, name, buf.Bytes()); err != nil {
		return err
	}
	s.name = name
	printSystemMessage(s.out, "Wrote '%s'.", name)
	return nil
}

func (s *Shell) step(op string, fn func() (bool, error)) error {
	applied, err := fn()
	if err != nil {
		return err
	}
	if !applied {
		printSystemMessage(s.out, "Nothing to %s.", op)
	}
	return nil
}

// target resolves an optional id argument, falling back to the selection.
func (s *Shell) target(args []string, usage string) (int64, error) {
	if len(args) == 0 {
		id, ok := s.ed.Selected()
		if !ok {
			return 0, commands.ErrNoSelection
		}
		return id, nil
	}
	ids, err := s.ids(args, 1, usage)
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

func (s *Shell) ids(args []string, n int, usage string) ([]int64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%w: %s", ErrUsage, usage)
	}
	out := make([]int64, n)
	for i, a := range args {
		v, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUsage, usage)
		}
		out[i] = v
	}
	return out, nil
}

func (s *Shell) list() {
	g := s.ed.Graph()
	selected, hasSelected := s.ed.Selected()
	for _, n := range g.Nodes() {
		mark := " "
		if hasSelected && n.ID() == selected {
			mark = "*"
		}
		label := ""
		if gui, ok := g.GUI(n.ID()); ok && gui.Label != n.Type() {
			label = gui.Label
		}
		var inputs []string
		for _, c := range g.Incoming(n.ID()) {
			inputs = append(inputs, strconv.FormatInt(c.From, 10))
		}
		line := fmt.Sprintf("%s %3d %-16s", mark, n.ID(), n.Type())
		if len(inputs) > 0 {
			line += " <- " + strings.Join(inputs, ",")
		}
		if label != "" {
			line += "  " + label
		}
		fmt.Fprintln(s.out, strings.TrimRight(line, " "))
	}
}
