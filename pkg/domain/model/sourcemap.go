package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// SourceMap is a source map file as read from disk. Raw is uploaded as-is;
// Sources lists the files it references, in document order.
type SourceMap struct {
	Path    string
	Raw     []byte
	Sources []string
}

type sourceMapDocument struct {
	Sources *[]string `json:"sources"`
}

// ParseSourceMap decodes raw and extracts its "sources" list. A document
// without a "sources" array is rejected.
func ParseSourceMap(path string, raw []byte) (*SourceMap, error) {
	var doc sourceMapDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, goerr.Wrap(err, "invalid source map JSON", goerr.V("path", path))
	}

	if doc.Sources == nil {
		return nil, goerr.New("source map has no sources field", goerr.V("path", path))
	}

	return &SourceMap{
		Path:    path,
		Raw:     raw,
		Sources: *doc.Sources,
	}, nil
}

// CollectSources concatenates the sources of all maps in order. Duplicates are kept.
func CollectSources(maps []*SourceMap) []string {
	var sources []string
	for _, m := range maps {
		sources = append(sources, m.Sources...)
	}
	return sources
}
