package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"wattle/downloader/internal/domain"

	log "github.com/sirupsen/logrus"
)

// Runner is the download service as seen by the shell
type Runner interface {
	List(ctx context.Context, filter string) ([]domain.Item, error)
	Download(ctx context.Context, expr, filter string) (domain.ErrorReport, error)
}

// Shell reads commands line by line and runs them sequentially
type Shell struct {
	runner Runner
	out    io.Writer
}

func NewShell(runner Runner, out io.Writer) *Shell {
	return &Shell{
		runner: runner,
		out:    out,
	}
}

// Run processes commands from in until EOF or quit
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(s.out, "To start, enter: list <filter>")
	fmt.Fprintln(s.out, "Example: list Lecture")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			break
		}

		quit, err := s.Execute(ctx, scanner.Text())
		if err != nil {
			log.Errorf("❌ %v", err)
		}
		if quit {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read command: %w", err)
	}
	return nil
}

// Execute runs a single command line. quit reports whether the shell should stop.
func (s *Shell) Execute(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch strings.ToLower(fields[0]) {
	case "list":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: list <filter>")
		}
		filter := strings.Join(fields[1:], " ")

		items, err := s.runner.List(ctx, filter)
		if err != nil {
			return false, err
		}
		PrintListing(s.out, filter, items)
		PrintUsage(s.out, filter)

	case "download":
		if len(fields) < 3 {
			return false, fmt.Errorf("usage: download <selection> <filter>")
		}
		expr := fields[1]
		filter := strings.Join(fields[2:], " ")

		report, err := s.runner.Download(ctx, expr, filter)
		if err != nil {
			return false, err
		}
		PrintSummary(s.out, filter, report)

	case "help":
		PrintUsage(s.out, "Lecture")

	case "quit", "exit":
		return true, nil

	default:
		return false, fmt.Errorf("unknown command %q (try list, download, help or quit)", fields[0])
	}

	return false, nil
}
