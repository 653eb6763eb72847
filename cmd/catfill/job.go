package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"
)

// Job describes one imputation run.
type Job struct {
	Input Source `json:"input"`
	// Reference, when set, is the table the imputer is fitted on; the input
	// is fitted on otherwise.
	Reference *Source `json:"reference,omitempty"`
	Output    Sink    `json:"output"`
	// Steps run in order; each is an object with a single key naming the
	// step. Empty means a single impute_contingency step with defaults.
	Steps []json.RawMessage `json:"steps,omitempty"`
	// Report is an optional path for the before/after summary; .json selects
	// JSON, anything else text. "-" writes to stderr.
	Report string `json:"report,omitempty"`
}

type Source struct {
	Path        string   `json:"path"`
	Type        string   `json:"type,omitempty"` // csv|jsonl|parquet, default from extension
	HasHeader   *bool    `json:"has_header,omitempty"`
	Delimiter   string   `json:"delimiter,omitempty"`
	NullTokens  []string `json:"null_tokens,omitempty"`
	ForceString []string `json:"force_string,omitempty"`
}

type Sink struct {
	Path      string `json:"path"`
	Type      string `json:"type,omitempty"`
	Delimiter string `json:"delimiter,omitempty"`
	NullText  string `json:"null_text,omitempty"`
}

// loadJob reads a job file. JSON, YAML and TOML are accepted, chosen by
// extension; YAML and TOML are normalised through JSON so one set of tags
// drives all three.
func loadJob(path string) (*Job, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	job, err := decodeJob(b, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", path, err)
	}
	return job, nil
}

func decodeJob(b []byte, ext string) (*Job, error) {
	switch ext {
	case ".yaml", ".yml":
		var m map[string]any
		if err := yaml.Unmarshal(b, &m); err != nil {
			return nil, err
		}
		return reencode(m)
	case ".toml":
		var m map[string]any
		if err := toml.Unmarshal(b, &m); err != nil {
			return nil, err
		}
		return reencode(m)
	case ".json", "":
		var job Job
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&job); err != nil {
			return nil, err
		}
		return &job, job.validate()
	default:
		return nil, fmt.Errorf("unsupported job format %q", ext)
	}
}

func reencode(m map[string]any) (*Job, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return decodeJob(b, ".json")
}

func (j *Job) validate() error {
	if j.Input.Path == "" {
		return fmt.Errorf("input.path is required")
	}
	if j.Output.Path == "" {
		return fmt.Errorf("output.path is required")
	}
	return nil
}
