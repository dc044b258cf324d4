package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"wattle/downloader/internal/domain"
)

type fakeRunner struct {
	items  []domain.Item
	report domain.ErrorReport
	err    error

	lastExpr   string
	lastFilter string
}

func (f *fakeRunner) List(_ context.Context, filter string) ([]domain.Item, error) {
	f.lastFilter = filter
	return f.items, f.err
}

func (f *fakeRunner) Download(_ context.Context, expr, filter string) (domain.ErrorReport, error) {
	f.lastExpr = expr
	f.lastFilter = filter
	return f.report, f.err
}

func TestShell_List(t *testing.T) {
	runner := &fakeRunner{items: []domain.Item{
		{Ordinal: 1, Name: "Lecture 1"},
		{Ordinal: 2, Name: "Lecture 2"},
	}}
	var out bytes.Buffer
	shell := NewShell(runner, &out)

	quit, err := shell.Execute(context.Background(), "list Week 1")
	if err != nil || quit {
		t.Fatalf("Expected no error and no quit, got err=%v quit=%v", err, quit)
	}
	if runner.lastFilter != "Week 1" {
		t.Errorf("Expected filter 'Week 1', got '%s'", runner.lastFilter)
	}

	output := out.String()
	for _, want := range []string{"Available Week 1 items:", "1. Lecture 1\n", "2. Lecture 2\n", "download all Week 1"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestShell_DownloadSummary(t *testing.T) {
	runner := &fakeRunner{report: domain.ErrorReport{{Name: "Lecture 2", Error: "No download link found"}}}
	var out bytes.Buffer
	shell := NewShell(runner, &out)

	if _, err := shell.Execute(context.Background(), "download 1-3,5 Lecture"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if runner.lastExpr != "1-3,5" || runner.lastFilter != "Lecture" {
		t.Errorf("Unexpected arguments expr=%q filter=%q", runner.lastExpr, runner.lastFilter)
	}

	output := out.String()
	for _, want := range []string{
		"The following items encountered errors:",
		"- Lecture 2: No download link found",
		"download failed Lecture",
		"Download Finished",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestShell_DownloadWithoutErrors(t *testing.T) {
	var out bytes.Buffer
	shell := NewShell(&fakeRunner{}, &out)

	shell.Execute(context.Background(), "download all pdf")
	if !strings.Contains(out.String(), "All selected items were processed without errors.") {
		t.Errorf("Expected success confirmation, got:\n%s", out.String())
	}
}

func TestShell_Errors(t *testing.T) {
	shell := NewShell(&fakeRunner{err: errors.New("page unavailable")}, &bytes.Buffer{})
	ctx := context.Background()

	tests := []string{"list", "download all", "frobnicate", "list Lecture", "download all Lecture"}
	for _, line := range tests {
		if _, err := shell.Execute(ctx, line); err == nil {
			t.Errorf("Execute(%q): expected error, got nil", line)
		}
	}

	if quit, err := shell.Execute(ctx, "   "); quit || err != nil {
		t.Errorf("Expected blank line to be ignored, got quit=%v err=%v", quit, err)
	}
}

func TestShell_Run(t *testing.T) {
	runner := &fakeRunner{items: []domain.Item{{Ordinal: 1, Name: "Lecture 1"}}}
	var out bytes.Buffer
	shell := NewShell(runner, &out)

	input := strings.NewReader("list Lecture\nbogus\ndownload failed Lecture\nquit\nlist never\n")
	if err := shell.Run(context.Background(), input); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if runner.lastExpr != "failed" {
		t.Errorf("Expected download failed to run, got expr %q", runner.lastExpr)
	}
	if runner.lastFilter != "Lecture" {
		t.Errorf("Expected shell to stop at quit, last filter was %q", runner.lastFilter)
	}
	if !strings.Contains(out.String(), "1. Lecture 1") {
		t.Errorf("Expected listing in output, got:\n%s", out.String())
	}
}
