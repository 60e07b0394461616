// Package prompt provides the yes/no confirmation used before destructive steps.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ConfirmFunc asks question and reports whether the operator agreed
type ConfirmFunc func(ctx context.Context, question string) bool

// AssumeNo answers every question with no
func AssumeNo(context.Context, string) bool { return false }

// AssumeYes answers every question with yes
func AssumeYes(context.Context, string) bool { return true }

// Interactive asks on stdout and reads stdin when stdin is a terminal; otherwise it assumes no.
func Interactive() ConfirmFunc {
	if !isTerminal(os.Stdin) {
		return AssumeNo
	}
	return Reader(os.Stdin, os.Stdout)
}

// Reader asks on out and reads one answer line from in.
// Only "y" and "yes" (any case) agree; EOF, read errors and cancellation answer no.
func Reader(in io.Reader, out io.Writer) ConfirmFunc {
	br := bufio.NewReader(in)
	return func(ctx context.Context, question string) bool {
		fmt.Fprintf(out, "%s [y/N]: ", question)

		answer := make(chan string, 1)
		go func() {
			line, err := br.ReadString('\n')
			if err != nil && line == "" {
				answer <- ""
				return
			}
			answer <- line
		}()

		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return false
		case line := <-answer:
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "y", "yes":
				return true
			default:
				return false
			}
		}
	}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
