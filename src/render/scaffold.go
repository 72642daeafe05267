package render

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flosch/pongo2/v6"
)

const documentTemplate = `<!DOCTYPE html>
<html id="{{ page }}" lang="en">
<head>
<meta charset="utf-8">
<title>{{ title }}</title>
</head>
<body>
<h1>{{ title }}</h1>
<div id="{{ output_id }}"></div>
</body>
</html>
`

var document = pongo2.Must(pongo2.FromString(documentTemplate))

// Scaffold writes a minimal clock document for page to path unless a file
// already exists there. It reports whether a document was created.
func Scaffold(path, page string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	var buf bytes.Buffer
	err := document.ExecuteWriter(pongo2.Context{
		"page":      page,
		"title":     "Clock",
		"output_id": DefaultOutputID,
	}, &buf)
	if err != nil {
		return false, fmt.Errorf("scaffold %s: %w", path, err)
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return false, err
	}
	return true, nil
}
