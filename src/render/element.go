package render

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultOutputID is the id of the element the clock is rendered into.
const DefaultOutputID = "output"

// ErrElementNotFound is returned when the document has no element with the requested id.
var ErrElementNotFound = errors.New("render: element not found")

// Element is a Target backed by one element of an HTML document on disk.
// Every Replace swaps the element's children for a single text node and
// rewrites the whole document.
type Element struct {
	mu   sync.Mutex
	path string
	doc  *html.Node
	node *html.Node
}

// OpenElement parses the document at path and locates the element with the given id.
func OpenElement(path, id string) (*Element, error) {
	doc, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	node := FindByID(doc, id)
	if node == nil {
		return nil, fmt.Errorf("%w: #%s in %s", ErrElementNotFound, id, path)
	}
	return &Element{path: path, doc: doc, node: node}, nil
}

// Path returns the document location.
func (e *Element) Path() string {
	return e.path
}

// PageID returns the id attribute of the document's root element.
func (e *Element) PageID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return RootID(e.doc)
}

// Replace sets the element's text to content and writes the document back.
func (e *Element) Replace(content string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for c := e.node.FirstChild; c != nil; c = e.node.FirstChild {
		e.node.RemoveChild(c)
	}
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: content})

	var buf bytes.Buffer
	if err := html.Render(&buf, e.doc); err != nil {
		return fmt.Errorf("render %s: %w", e.path, err)
	}
	return writeFileAtomic(e.path, buf.Bytes())
}

// Text returns the current text of the element.
func (e *Element) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return textOf(e.node)
}

// ReadPageID returns the id attribute of the root <html> element of the document at path.
func ReadPageID(path string) (string, error) {
	doc, err := parseFile(path)
	if err != nil {
		return "", err
	}
	return RootID(doc), nil
}

// RootID returns the id attribute of the <html> element, or "" when absent.
func RootID(doc *html.Node) string {
	root := find(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Html
	})
	if root == nil {
		return ""
	}
	return attr(root, "id")
}

// FindByID returns the first element whose id attribute equals id.
func FindByID(doc *html.Node, id string) *html.Node {
	return find(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "id") == id
	})
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
			continue
		}
		sb.WriteString(textOf(c))
	}
	return sb.String()
}

func parseFile(path string) (*html.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
