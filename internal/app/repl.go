package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/manifoldco/promptui"
)

// showCommandSelector lets the user pick a command with promptui. It
// returns the chosen command name, or "" when cancelled.
func showCommandSelector() string {
	commands := Commands()

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "▸ {{ .Usage | cyan }} - {{ .Description | faint }}",
		Inactive: "  {{ .Usage | cyan }} - {{ .Description | faint }}",
		Selected: "{{ .Name | cyan }}",
	}

	searcher := func(input string, index int) bool {
		name := strings.ToLower(commands[index].Name)
		return strings.Contains(name, strings.ToLower(strings.TrimSpace(input)))
	}

	prompt := promptui.Select{
		Label:     "Choose a command",
		Items:     commands,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
	}

	i, _, err := prompt.Run()
	if err != nil {
		if err != promptui.ErrInterrupt && err != promptui.ErrEOF {
			fmt.Printf("Command selection failed: %v\n", err)
		}
		return ""
	}
	return commands[i].Name
}

// createAutoCompleter completes command names.
func createAutoCompleter() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, c := range Commands() {
		items = append(items, readline.PcItem(c.Name))
	}
	return readline.NewPrefixCompleter(items...)
}

// filterInput drops Ctrl+Z so the shell is not suspended mid-line.
func filterInput(r rune) (rune, bool) {
	if r == readline.CharCtrlZ {
		return r, false
	}
	return r, true
}

// prompt shows the base name of the current folder.
func (s *Shell) prompt() string {
	if s.folder == "" {
		return "folio> "
	}
	return filepath.Base(s.folder) + "> "
}

// StartInteractiveMode runs the readline loop until the user quits or
// closes stdin. Ctrl+C while a call is running cancels that call only.
func StartInteractiveMode(ctx context.Context, s *Shell, addr string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:              s.prompt(),
		AutoComplete:        createAutoCompleter(),
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		HistoryLimit:        2000,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	WriteHeader(s.out, addr, s.colored)
	if s.folder != "" {
		fmt.Fprintf(s.out, "Current folder: %s\n", s.folder)
	}

	for {
		rl.SetPrompt(s.prompt())
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "/" {
			if line = showCommandSelector(); line == "" {
				continue
			}
		}
		if line == "" {
			continue
		}

		if s.runInterruptible(ctx, line) {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// runInterruptible executes line with a context that Ctrl+C cancels.
func (s *Shell) runInterruptible(ctx context.Context, line string) bool {
	execCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(s.out)
			cancel()
		case <-execCtx.Done():
		}
	}()

	return s.Execute(execCtx, line)
}
