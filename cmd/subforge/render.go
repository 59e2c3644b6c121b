package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func writeSection(out io.Writer, title string) {
	for _, line := range renderSectionHeader(title, shouldColorize(out)) {
		fmt.Fprintln(out, line)
	}
}

// colorizeDiff paints added lines green and removed lines red.
func colorizeDiff(diff string, colorize bool) string {
	if !colorize {
		return diff
	}
	lines := strings.SplitAfter(diff, "\n")
	var b strings.Builder
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "+"):
			b.WriteString(ansiGreen + strings.TrimSuffix(line, "\n") + ansiReset + "\n")
		case strings.HasPrefix(line, "-"):
			b.WriteString(ansiRed + strings.TrimSuffix(line, "\n") + ansiReset + "\n")
		case strings.HasPrefix(line, "@@"):
			b.WriteString(ansiYellow + strings.TrimSuffix(line, "\n") + ansiReset + "\n")
		default:
			b.WriteString(line)
		}
	}
	return b.String()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
