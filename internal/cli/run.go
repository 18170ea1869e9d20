package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/slipstream/mango"
)

// LoadFile opens the document at path into a new editor whose standard-in
// nodes read stdin.
func LoadFile(opts Options, path string, stdin io.Reader) (*mango.Editor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph: %w", err)
	}
	defer f.Close()

	ed := mango.New(opts.EditorOptions(stdin, nil)...)
	if err := ed.Load(f); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return ed, nil
}

// RunFile evaluates every terminal of the document at path.
func RunFile(opts Options, path string) error {
	stdin, closeInput, err := opts.OpenInput(os.Stdin)
	if err != nil {
		return err
	}
	defer closeInput()

	ed, err := LoadFile(opts, path, stdin)
	if err != nil {
		return err
	}
	results, err := mango.NewRunner(opts.stdout()).Run(ed)
	ed.Logger().Debug("Run finished", "path", path, "terminals", len(results))
	return err
}

// Edit runs the ex-command shell on the stored document name, reading
// commands from in.
func Edit(ctx context.Context, opts Options, name string, in io.Reader, interactive bool) error {
	storage, err := opts.OpenStorage()
	if err != nil {
		return err
	}
	defer storage.Close()

	// Commands arrive on stdin, so standard-in nodes only see --input.
	stdin, closeInput, err := opts.OpenInput(strings.NewReader(""))
	if err != nil {
		return err
	}
	defer closeInput()

	shell := NewShell(mango.New(opts.EditorOptions(stdin, nil)...), storage.Store, name, opts.stdout())
	if err := shell.Open(ctx, name); err != nil {
		return err
	}
	return shell.Run(ctx, in, interactive)
}
