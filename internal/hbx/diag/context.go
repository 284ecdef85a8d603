package diag

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Context is a range of text in a template source. It is attached to compile
// errors so that the offending piece of markup can be shown.
type Context struct {
	Name   string
	Source string
	Ranging

	savedShowInfo *rangeShowInfo
}

// NewContext creates a new Context.
func NewContext(name, source string, r Ranger) *Context {
	return &Context{Name: name, Source: source, Ranging: r.Range()}
}

// Information about the source range that are needed for showing.
type rangeShowInfo struct {
	// Head is the text immediately before Culprit, back to the closest line
	// boundary.
	Head string
	// Culprit is Source[From:To], with any trailing newline stripped.
	Culprit string
	// Tail is the text immediately after Culprit, up to the closest line
	// boundary.
	Tail string
	// BeginLine is the 1-based line number of the first byte of Culprit.
	BeginLine int
	// EndLine is the 1-based line number of the last byte of Culprit.
	EndLine int
}

// Variables controlling the style of the culprit.
var (
	culpritLineBegin   = "\033[1;4m"
	culpritLineEnd     = "\033[m"
	culpritPlaceHolder = "^"
)

func (c *Context) showInfo() *rangeShowInfo {
	if c.savedShowInfo != nil {
		return c.savedShowInfo
	}

	before := c.Source[:c.From]
	culprit := c.Source[c.From:c.To]
	after := c.Source[c.To:]

	head := lastLine(before)
	beginLine := strings.Count(before, "\n") + 1

	var tail string
	if strings.HasSuffix(culprit, "\n") {
		culprit = culprit[:len(culprit)-1]
	} else {
		tail = firstLine(after)
	}

	endLine := beginLine + strings.Count(culprit, "\n")

	c.savedShowInfo = &rangeShowInfo{head, culprit, tail, beginLine, endLine}
	return c.savedShowInfo
}

// ShowCompact shows the context with its position and the relevant source
// on the same line. Continuation lines of a multi-line culprit are indented
// by sourceIndent and aligned with the source.
func (c *Context) ShowCompact(sourceIndent string) string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	desc := c.Name + ", " + c.lineRange() + " "
	descIndent := strings.Repeat(" ", utf8.RuneCountInString(desc))
	return desc + c.relevantSource(sourceIndent+descIndent)
}

func (c *Context) checkPosition() error {
	if c.From == -1 {
		return fmt.Errorf("%s, unknown position", c.Name)
	} else if c.From < 0 || c.To > len(c.Source) || c.From > c.To {
		return fmt.Errorf("%s, invalid position %d-%d", c.Name, c.From, c.To)
	}
	return nil
}

func (c *Context) lineRange() string {
	info := c.showInfo()

	if info.BeginLine == info.EndLine {
		return fmt.Sprintf("line %d:", info.BeginLine)
	}
	return fmt.Sprintf("line %d-%d:", info.BeginLine, info.EndLine)
}

func (c *Context) relevantSource(sourceIndent string) string {
	info := c.showInfo()

	var buf bytes.Buffer
	buf.WriteString(info.Head)

	culprit := info.Culprit
	if culprit == "" {
		culprit = culpritPlaceHolder
	}

	for i, line := range strings.Split(culprit, "\n") {
		if i > 0 {
			buf.WriteByte('\n')
			buf.WriteString(sourceIndent)
		}
		buf.WriteString(culpritLineBegin)
		buf.WriteString(line)
		buf.WriteString(culpritLineEnd)
	}

	buf.WriteString(info.Tail)
	return buf.String()
}

func firstLine(s string) string {
	i := strings.IndexByte(s, '\n')
	if i == -1 {
		return s
	}
	return s[:i]
}

func lastLine(s string) string {
	// LastIndexByte returns -1 when there is no newline, which is what we want.
	return s[strings.LastIndexByte(s, '\n')+1:]
}
