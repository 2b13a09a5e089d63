package quill

import (
	"encoding/json"
	"os"
	"strings"
)

// Dict is a user dictionary protecting specific terms from being
// flagged.
type Dict struct {
	Words []string `json:"words"`
}

// NewDict creates a Dict from the given words.
func NewDict(words ...string) *Dict {
	return &Dict{Words: words}
}

// LoadDict reads a JSON file of the form {"words": ["Kubernetes", ...]}.
func LoadDict(path string) (*Dict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Dict
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Contains reports whether word matches a dictionary entry,
// case-insensitively and ignoring surrounding whitespace.
func (d *Dict) Contains(word string) bool {
	word = strings.TrimSpace(word)
	for _, w := range d.Words {
		if strings.EqualFold(strings.TrimSpace(w), word) {
			return true
		}
	}
	return false
}
