package diag

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Context is a range of text in a source code. It is typically used for
// errors that can be associated with a part of the source code, like parse
// errors and evaluation errors.
type Context struct {
	Name   string
	Source string
	Ranging
}

// NewContext creates a new Context.
func NewContext(name, source string, r Ranger) *Context {
	return &Context{name, source, r.Range()}
}

// Variables controlling the style of the culprit.
var (
	culpritStart       = "\033[1;4m"
	culpritEnd         = "\033[m"
	culpritPlaceHolder = "^"
)

// Position returns the 1-based line and column of the start of the range.
// Columns are counted in codepoints.
func (c *Context) Position() (line, col int) {
	from := clamp(c.From, len(c.Source))
	before := c.Source[:from]
	line = strings.Count(before, "\n") + 1
	col = utf8.RuneCountInString(lastLine(before)) + 1
	return line, col
}

// Describe returns "name:line:col" for the start of the range.
func (c *Context) Describe() string {
	line, col := c.Position()
	return fmt.Sprintf("%s:%d:%d", c.Name, line, col)
}

// Show shows the context: a header with the line range, and the relevant
// source lines with the culprit highlighted.
func (c *Context) Show(indent string) string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	return c.Name + ", " + c.lineRange() + "\n" + indent + c.relevantSource(indent)
}

// ShowCompact is like Show, but without a line break between the header and
// the source excerpt.
func (c *Context) ShowCompact(indent string) string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	desc := c.Name + ", " + c.lineRange() + " "
	descIndent := strings.Repeat(" ", utf8.RuneCountInString(desc))
	return desc + c.relevantSource(indent+descIndent)
}

func (c *Context) checkPosition() error {
	if c.From < 0 || c.To > len(c.Source) || c.From > c.To {
		return fmt.Errorf("%s, invalid position %d-%d", c.Name, c.From, c.To)
	}
	return nil
}

func (c *Context) lineRange() string {
	begin, _ := c.Position()
	end := begin + strings.Count(c.culprit(), "\n")
	if begin == end {
		return fmt.Sprintf("line %d:", begin)
	}
	return fmt.Sprintf("line %d-%d:", begin, end)
}

// Returns Source[From:To] with one trailing newline stripped.
func (c *Context) culprit() string {
	return strings.TrimSuffix(c.Source[c.From:c.To], "\n")
}

func (c *Context) relevantSource(indent string) string {
	var sb strings.Builder
	sb.WriteString(lastLine(c.Source[:c.From]))

	culprit := c.culprit()
	if culprit == "" {
		culprit = culpritPlaceHolder
	}
	for i, line := range strings.Split(culprit, "\n") {
		if i > 0 {
			sb.WriteByte('\n')
			sb.WriteString(indent)
		}
		sb.WriteString(culpritStart + line + culpritEnd)
	}

	if !strings.HasSuffix(c.Source[c.From:c.To], "\n") {
		sb.WriteString(firstLine(c.Source[c.To:]))
	}
	return sb.String()
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	} else if i > n {
		return n
	}
	return i
}

func firstLine(s string) string {
	i := strings.IndexByte(s, '\n')
	if i == -1 {
		return s
	}
	return s[:i]
}

func lastLine(s string) string {
	// When s does not contain '\n', LastIndexByte returns -1, which happens to
	// be what we want.
	return s[strings.LastIndexByte(s, '\n')+1:]
}
