package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// clearLine returns the cursor to column zero and erases the line.
const clearLine = "\r\x1b[2K"

// Console wraps standard IO for prompting and doubles as a terminal output
// target: Replace redraws the current line in place.
type Console struct {
	reader *bufio.Reader

	mu     sync.Mutex
	writer io.Writer
	live   bool
}

// NewConsole constructs a console facade.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		reader: bufio.NewReader(in),
		writer: out,
	}
}

// ReadLine reads a line without newline characters.
func (c *Console) ReadLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil && len(line) == 0 {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Print writes raw text.
func (c *Console) Print(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.breakLive()
	fmt.Fprint(c.writer, text)
}

// Println writes a line with newline.
func (c *Console) Println(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.breakLive()
	fmt.Fprintln(c.writer, text)
}

// Replace erases the live line and writes content in its place.
func (c *Console) Replace(content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := io.WriteString(c.writer, clearLine+content); err != nil {
		return err
	}
	c.live = true
	return nil
}

// EndLine terminates a live line, if any.
func (c *Console) EndLine() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.breakLive()
}

// breakLive moves past a live line so regular output does not overwrite it.
// Must be called with c.mu held.
func (c *Console) breakLive() {
	if !c.live {
		return
	}
	fmt.Fprintln(c.writer)
	c.live = false
}
