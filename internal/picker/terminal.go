package picker

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"
	"golang.org/x/term"

	pkgLogger "github.com/fpt/folio/pkg/logger"
)

var logger = pkgLogger.NewComponentLogger("picker")

const otherFolder = "Other folder..."

// Terminal prompts on the agent's own terminal. Recent folders are offered
// in a selector first; anything else is typed in.
type Terminal struct {
	// Start is the default answer for the typed prompt.
	Start string
	// Recent lists folders offered before the typed prompt.
	Recent func() []string

	stdin       io.ReadCloser
	stdout      io.WriteCloser
	interactive func() bool

	mu sync.Mutex
}

// NewTerminal creates a picker bound to the process's stdin and stdout.
func NewTerminal(start string) *Terminal {
	return &Terminal{
		Start:  start,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

type pickResult struct {
	path string
	ok   bool
	err  error
}

// PickFolder prompts for a folder. Without a terminal on stdin the request
// is treated as cancelled.
func (t *Terminal) PickFolder(ctx context.Context) (string, bool, error) {
	if t.interactive != nil && !t.interactive() {
		logger.WarnWithIntention(pkgLogger.IntentionCancel, "No terminal attached, treating folder request as cancelled")
		return "", false, nil
	}

	done := make(chan pickResult, 1)
	go func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		path, ok, err := t.run()
		done <- pickResult{path, ok, err}
	}()

	select {
	case r := <-done:
		return r.path, r.ok, r.err
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

func (t *Terminal) run() (string, bool, error) {
	var recent []string
	if t.Recent != nil {
		recent = t.Recent()
	}

	if len(recent) > 0 {
		choice, ok, err := t.selectRecent(recent)
		if err != nil || !ok {
			return "", ok, err
		}
		if choice != otherFolder {
			return choice, true, nil
		}
	}

	prompt := promptui.Prompt{
		Label:     "Folder to open",
		Default:   t.Start,
		AllowEdit: true,
		Validate:  ValidateFolder,
		Stdin:     t.stdin,
		Stdout:    t.stdout,
	}
	answer, err := prompt.Run()
	if err != nil {
		return "", false, classifyPromptError(err)
	}
	if strings.TrimSpace(answer) == "" {
		return "", false, nil
	}
	path, err := ResolveFolder(answer)
	if err != nil {
		return "", false, err
	}
	return path, true, nil
}

func (t *Terminal) selectRecent(recent []string) (string, bool, error) {
	items := append(append([]string{}, recent...), otherFolder)
	sel := promptui.Select{
		Label: "Open folder",
		Items: items,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "> {{ . | cyan }}",
			Inactive: "  {{ . }}",
			Selected: "{{ . }}",
		},
		Size:   10,
		Stdin:  t.stdin,
		Stdout: t.stdout,
	}
	_, choice, err := sel.Run()
	if err != nil {
		return "", false, classifyPromptError(err)
	}
	return choice, true, nil
}

// classifyPromptError turns Ctrl-C and EOF into a cancel; anything else means
// the prompt itself broke.
func classifyPromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
		return nil
	}
	return errors.Wrap(err, "folder prompt failed")
}

// ResolveFolder expands a leading ~ and makes answer an absolute, clean path.
func ResolveFolder(answer string) (string, error) {
	answer = strings.TrimSpace(answer)
	if answer == "~" || strings.HasPrefix(answer, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolve home directory")
		}
		answer = filepath.Join(home, strings.TrimPrefix(answer, "~"))
	}
	abs, err := filepath.Abs(answer)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %s", answer)
	}
	return abs, nil
}

// ValidateFolder accepts an empty answer (cancel) or an existing directory.
func ValidateFolder(answer string) error {
	if strings.TrimSpace(answer) == "" {
		return nil
	}
	path, err := ResolveFolder(answer)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return errors.Errorf("%s does not exist", path)
	}
	if !info.IsDir() {
		return errors.Errorf("%s is not a folder", path)
	}
	return nil
}
