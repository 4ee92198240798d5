// Package seed loads an initial set of bookmarks from a YAML file and
// imports them into the store on startup.
package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry is one bookmark in the seed file.
type Entry struct {
	URL   string `yaml:"url"`
	Title string `yaml:"title"`
}

// Loader handles loading and parsing of the seed file.
type Loader struct {
	filePath string
}

func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads and parses the seed file.
func (l *Loader) Load() ([]Entry, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse seed yaml: %w", err)
	}
	return entries, nil
}
