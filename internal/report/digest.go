package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

const (
	SubjectPrefix = "游戏更新汇总"
	dateLayout    = "2006-01-02"
)

// Section is the block of announcements for one game.
type Section struct {
	Game          string                `json:"game"`
	Announcements []domain.Announcement `json:"announcements"`
}

// Failure is a source that could not be fetched in this run.
type Failure struct {
	Game   string `json:"game"`
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// Digest is the ordered result of a run, ready to be rendered.
type Digest struct {
	Date     time.Time `json:"date"`
	Sections []Section `json:"sections"`
	Failures []Failure `json:"failures,omitempty"`
}

// NewDigest groups already ranked announcements by game, keeping their order.
func NewDigest(date time.Time, ranked []domain.Announcement, failures []Failure) Digest {
	d := Digest{Date: date, Failures: failures}

	index := make(map[string]int)
	for _, a := range ranked {
		i, ok := index[a.Game]
		if !ok {
			i = len(d.Sections)
			index[a.Game] = i
			d.Sections = append(d.Sections, Section{Game: a.Game})
		}
		d.Sections[i].Announcements = append(d.Sections[i].Announcements, a)
	}
	return d
}

func (d Digest) Count() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Announcements)
	}
	return n
}

func (d Digest) Empty() bool {
	return d.Count() == 0
}

// Announcements flattens the sections back into ranked order.
func (d Digest) Announcements() []domain.Announcement {
	out := make([]domain.Announcement, 0, d.Count())
	for _, s := range d.Sections {
		out = append(out, s.Announcements...)
	}
	return out
}

func (d Digest) Subject() string {
	return fmt.Sprintf("%s - %s", SubjectPrefix, d.Date.Format(dateLayout))
}

// PlainText renders one "【game】title\n链接: link" entry per announcement, blank line separated.
func (d Digest) PlainText() string {
	var entries []string
	for _, a := range d.Announcements() {
		entries = append(entries, fmt.Sprintf("【%s】%s\n链接: %s", a.Game, a.Title, a.Link))
	}

	text := strings.Join(entries, "\n\n")
	if len(d.Failures) > 0 {
		var sb strings.Builder
		sb.WriteString(text)
		sb.WriteString("\n\n---\n未能获取的来源:\n")
		for _, f := range d.Failures {
			fmt.Fprintf(&sb, "- %s / %s: %s\n", f.Game, f.Source, f.Reason)
		}
		text = strings.TrimRight(sb.String(), "\n")
	}
	return text
}

func (d Digest) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(d.Subject()))

	for _, s := range d.Sections {
		fmt.Fprintf(&sb, "## %s\n\n", escapeMarkdown(s.Game))
		for _, a := range s.Announcements {
			marker := ""
			if a.IsOfficial {
				marker = " **官方**"
			}
			fmt.Fprintf(&sb, "- [%s](<%s>)%s  \n  %s · %s\n",
				escapeMarkdown(a.Title),
				a.Link,
				marker,
				escapeMarkdown(a.SourceLabel),
				a.PublishedAt.Format("2006-01-02 15:04"),
			)
		}
		sb.WriteString("\n")
	}

	if len(d.Failures) > 0 {
		sb.WriteString("---\n\n未能获取的来源:\n\n")
		for _, f := range d.Failures {
			fmt.Fprintf(&sb, "- %s / %s: `%s`\n", escapeMarkdown(f.Game), escapeMarkdown(f.Source), strings.ReplaceAll(f.Reason, "`", "'"))
		}
	}
	return sb.String()
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
		html.WithXHTML(),
	),
)

// HTML renders the markdown digest. Raw HTML in titles is escaped, never passed through.
func (d Digest) HTML() (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(d.Markdown()), &buf); err != nil {
		return "", fmt.Errorf("failed to render digest html: %w", err)
	}
	return buf.String(), nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`>`, `\>`,
	`#`, `\#`,
	`|`, `\|`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
