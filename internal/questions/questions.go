// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package questions supplies the question list for a run: the built-in
// Llama-2 questions or a list read from a YAML file.
package questions

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

var defaults = []string{
	"For which tasks has Llama-2 already been used successfully?",
	"What are promising areas of application for Llama-2?",
	"Name at least 5 domain-specific LLMs that have been created by fine-tuning Llama-2.",
	"What can you find out about the model structure of Llama-2 (required memory, required computing capacity, number of parameters, available quantizations)?",
}

// File is the on-disk representation of a question list:
//
//	questions:
//	  - What are promising areas of application for Llama-2?
type File struct {
	Questions []string `yaml:"questions"`
}

// Default returns a copy of the built-in questions.
func Default() []string {
	out := make([]string, len(defaults))
	copy(out, defaults)
	return out
}

// Load reads a question file. Blank entries are dropped and surrounding
// whitespace is trimmed; a file with no questions is an error.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading questions file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing questions file %s: %w", path, err)
	}

	var out []string
	for _, q := range f.Questions {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("questions file %s contains no questions", path)
	}
	return out, nil
}

// Resolve returns the questions from path, or the defaults when path is empty.
func Resolve(path string) ([]string, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
