// Package transport provides search.Transport implementations: an
// in-memory index over a YAML corpus and an HTTP client for a remote index.
package transport

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed corpus.yaml
var sampleCorpus []byte

// Item is one searchable entry. Text terms match Title; range terms match
// Value.
type Item struct {
	Title string  `yaml:"title" json:"title"`
	Value float64 `yaml:"value" json:"value"`
}

// Corpus is the document set served by a Memory index.
type Corpus struct {
	Items []Item `yaml:"items" json:"items"`
}

// ParseCorpus decodes a YAML corpus.
func ParseCorpus(data []byte) (*Corpus, error) {
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse corpus: %w", err)
	}
	for i, item := range c.Items {
		if item.Title == "" {
			return nil, fmt.Errorf("corpus item %d has no title", i)
		}
	}
	return &c, nil
}

// LoadCorpus reads a YAML corpus from path. An empty path returns the
// built-in sample corpus.
func LoadCorpus(path string) (*Corpus, error) {
	if path == "" {
		return SampleCorpus(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}
	return ParseCorpus(data)
}

// SampleCorpus returns the built-in demonstration corpus.
func SampleCorpus() *Corpus {
	c, err := ParseCorpus(sampleCorpus)
	if err != nil {
		panic(fmt.Sprintf("embedded corpus is invalid: %v", err))
	}
	return c
}
