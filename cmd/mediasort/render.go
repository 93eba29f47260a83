package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"

	"mediasort/internal/executor"
	"mediasort/internal/media"
	"mediasort/internal/oracle"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func shouldColorize(writer io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func colorAction(action media.Action, colorize bool) string {
	label := string(action)
	if !colorize {
		return label
	}
	switch action {
	case media.ActionMove:
		return ansiGreen + label + ansiReset
	case media.ActionSkip:
		return ansiYellow + label + ansiReset
	default:
		return label
	}
}

func renderPlan(out io.Writer, plan []media.PlanAction, colorize bool) {
	if len(plan) == 0 {
		fmt.Fprintln(out, "Plan is empty")
		return
	}
	rows := make([][]string, 0, len(plan))
	for _, action := range plan {
		rows = append(rows, []string{action.File, colorAction(action.Action, colorize), action.Target})
	}
	fmt.Fprintln(out, renderTable([]string{"File", "Action", "Target"}, rows, nil))
}

func renderFailures(out io.Writer, failures []executor.Failure, colorize bool) {
	rows := make([][]string, 0, len(failures))
	for _, f := range failures {
		reason := f.Reason
		if colorize {
			reason = ansiRed + reason + ansiReset
		}
		rows = append(rows, []string{f.Action.File, f.Action.Target, reason})
	}
	fmt.Fprintln(out, renderTable([]string{"File", "Target", "Reason"}, rows, nil))
}

func usageSummary(u oracle.Usage) string {
	if u.IsZero() {
		return "no oracle calls"
	}
	return strconv.Itoa(u.Requests) + " oracle calls, " + strconv.Itoa(u.Tokens()) + " tokens"
}
