// Document loading for the CLI.
//
// Turns text files into passages for indexing. Files are split on blank
// lines; each paragraph becomes one passage with a file-anchored ID.

package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/richinex/loom/retrieval"
)

var textExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".rst":      true,
}

// LoadPassages reads the given files or directories and returns passages.
// Directories are walked recursively; only text files are loaded.
func LoadPassages(paths []string) ([]retrieval.Passage, error) {
	var passages []retrieval.Passage

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}

		if info.IsDir() {
			err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() || !textExtensions[strings.ToLower(filepath.Ext(p))] {
					return nil
				}
				loaded, err := loadFile(p)
				if err != nil {
					return err
				}
				passages = append(passages, loaded...)
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("failed to walk %s: %w", path, err)
			}
			continue
		}

		loaded, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		passages = append(passages, loaded...)
	}

	if len(passages) == 0 {
		return nil, fmt.Errorf("no passages found in %v", paths)
	}
	return passages, nil
}

func loadFile(path string) ([]retrieval.Passage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var passages []retrieval.Passage
	for i, para := range splitParagraphs(string(data)) {
		passages = append(passages, retrieval.Passage{
			ID:        fmt.Sprintf("%s#%d", filepath.Base(path), i),
			Content:   para,
			SourceRef: path,
		})
	}
	return passages, nil
}

// splitParagraphs splits text on blank lines, dropping empty segments.
func splitParagraphs(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	var paragraphs []string
	for _, block := range strings.Split(normalized, "\n\n") {
		trimmed := strings.TrimSpace(block)
		if trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}
