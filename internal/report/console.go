package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	defaultTitleWidth = 48
	ellipsis          = "…"
)

// ConsoleReporter prints the digest as an aligned table. Widths are display
// columns, so CJK titles line up with ASCII ones.
type ConsoleReporter struct {
	w          io.Writer
	titleWidth int
}

type ConsoleOption func(*ConsoleReporter)

func WithWriter(w io.Writer) ConsoleOption {
	return func(c *ConsoleReporter) {
		c.w = w
	}
}

func WithTitleWidth(n int) ConsoleOption {
	return func(c *ConsoleReporter) {
		if n > 0 {
			c.titleWidth = n
		}
	}
}

func NewConsoleReporter(opts ...ConsoleOption) *ConsoleReporter {
	c := &ConsoleReporter{w: os.Stdout, titleWidth: defaultTitleWidth}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ConsoleReporter) Name() string {
	return string(Console)
}

func (c *ConsoleReporter) Report(_ context.Context, d Digest) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s (%d)\n", d.Subject(), d.Count())

	gameWidth := 0
	for _, s := range d.Sections {
		if w := runewidth.StringWidth(s.Game); w > gameWidth {
			gameWidth = w
		}
	}

	for _, s := range d.Sections {
		for _, a := range s.Announcements {
			flag := " "
			if a.IsOfficial {
				flag = "*"
			}
			title := runewidth.Truncate(a.Title, c.titleWidth, ellipsis)
			fmt.Fprintf(&sb, "%s %s  %s  %s  %s\n",
				flag,
				runewidth.FillRight(s.Game, gameWidth),
				runewidth.FillRight(title, c.titleWidth),
				a.PublishedAt.Format("01-02 15:04"),
				a.Link,
			)
		}
	}

	if len(d.Failures) > 0 {
		sb.WriteString("failed sources:\n")
		for _, f := range d.Failures {
			fmt.Fprintf(&sb, "  %s / %s: %s\n", f.Game, f.Source, f.Reason)
		}
	}

	if _, err := io.WriteString(c.w, sb.String()); err != nil {
		return fmt.Errorf("failed to write digest: %w", err)
	}
	return nil
}
