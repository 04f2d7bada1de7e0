// This file implements the line-oriented interactive chat interface.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tinker/internal/engine"
	"tinker/internal/protocol"
)

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	explainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

const chatHelp = `Type a task and tinker will work on it step by step.

Control words:
  help          show this help
  clear         forget the current conversation
  exit, quit    leave the chat`

// narrator prints step-by-step progress. It implements engine.Observer.
type narrator struct{}

func newNarrator() *narrator {
	return &narrator{}
}

func (n *narrator) Decision(step int, d *protocol.Decision) {
	fmt.Println(stepStyle.Render(fmt.Sprintf("[step %d]", step)) + " " + explainStyle.Render(d.Explanation))
	if d.Operation != nil {
		detail := string(*d.Operation)
		switch {
		case d.Command != nil && *d.Command != "":
			detail += ": " + *d.Command
		case d.Path != "":
			detail += " " + d.Path
		}
		fmt.Println("  " + stepStyle.Render(detail))
	}
}

func (n *narrator) Result(step int, d *protocol.Decision, r *protocol.Result) {
	if r.Success {
		fmt.Println("  " + okStyle.Render("ok") + resultDetail(r))
		return
	}
	fmt.Println("  " + failStyle.Render("failed: "+r.Error))
}

func (n *narrator) Rejected(step int, err error) {
	fmt.Println("  " + failStyle.Render(fmt.Sprintf("model sent an invalid step (%v), asking it to retry", err)))
}

func resultDetail(r *protocol.Result) string {
	switch {
	case r.LineCount > 0:
		return stepStyle.Render(fmt.Sprintf(" (%d lines)", r.LineCount))
	case len(r.DirectoryList) > 0:
		return stepStyle.Render(fmt.Sprintf(" (%d entries)", len(r.DirectoryList)))
	case r.ByteCount > 0:
		return stepStyle.Render(fmt.Sprintf(" (%d bytes)", r.ByteCount))
	}
	return ""
}

// Summary renders the terminal line for a finished task.
func (n *narrator) Summary(outcome *engine.Outcome) string {
	switch outcome.Status {
	case engine.StatusCompleted:
		return doneStyle.Render("done") + " " + explainStyle.Render(outcome.Detail)
	case engine.StatusCappedOut:
		return failStyle.Render("gave up: ") + explainStyle.Render(outcome.Detail)
	default:
		return failStyle.Render("failed: ") + explainStyle.Render(outcome.Detail)
	}
}

// runChat is the default command: read a task, run it, repeat.
func runChat(ctx context.Context) error {
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	fmt.Printf("tinker ready in %s (model %s)\n", app.Root, app.Config.LLM.Model)
	fmt.Println(helpStyle.Render(`type a task, or "help"`))

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print(promptStyle.Render("> "))
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "help":
			fmt.Println(chatHelp)
			continue
		case "clear":
			app.Session.Reset()
			fmt.Println(helpStyle.Render("conversation cleared"))
			continue
		case "exit", "quit":
			return nil
		}

		outcome, err := app.Session.RunTask(ctx, line)
		switch {
		case errors.Is(err, context.Canceled):
			return nil
		case err != nil:
			fmt.Println(failStyle.Render("error: " + err.Error()))
			if outcome == nil {
				continue
			}
		}
		fmt.Println(app.Narrator.Summary(outcome))
	}
}
