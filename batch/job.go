// Package batch runs many excerpt requests from a job file.
package batch

import (
	"errors"
	"io"
	"strings"

	"github.com/fwojciec/excerpt"
	"github.com/fwojciec/excerpt/extract"
	"gopkg.in/yaml.v3"
)

// Job is one entry of a job file.
type Job struct {
	URL       string              `yaml:"url" json:"url"`
	Selection string              `yaml:"selection" json:"selection"`
	Mode      excerpt.ContextMode `yaml:"mode" json:"mode,omitempty"`
	MaxTokens int                 `yaml:"maxTokens" json:"maxTokens,omitempty"`
	Explain   bool                `yaml:"explain" json:"explain,omitempty"`
	Template  string              `yaml:"template" json:"template,omitempty"`
}

// Request converts the job into a workflow request.
func (j Job) Request() extract.Request {
	return extract.Request{
		Location:  j.URL,
		Selection: j.Selection,
		Mode:      j.Mode,
		MaxTokens: j.MaxTokens,
		Explain:   j.Explain,
		Template:  j.Template,
	}
}

// JobFile is the YAML document read by ParseJobs. Concurrency and RPS
// override the runner's settings when positive.
type JobFile struct {
	Concurrency int     `yaml:"concurrency"`
	RPS         float64 `yaml:"rps"`
	Jobs        []Job   `yaml:"jobs"`
}

// ParseJobs decodes and validates a job file. Unknown keys are rejected.
func ParseJobs(r io.Reader) (*JobFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f JobFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, excerpt.Errorf(excerpt.EINVALID, "job file is empty")
		}
		return nil, excerpt.Errorf(excerpt.EINVALID, "invalid job file: %v", err)
	}

	if len(f.Jobs) == 0 {
		return nil, excerpt.Errorf(excerpt.EINVALID, "job file has no jobs")
	}
	for i := range f.Jobs {
		f.Jobs[i].URL = strings.TrimSpace(f.Jobs[i].URL)
		if f.Jobs[i].URL == "" {
			return nil, excerpt.Errorf(excerpt.EINVALID, "job %d: url required", i+1)
		}
		if f.Jobs[i].Explain && strings.TrimSpace(f.Jobs[i].Selection) == "" {
			return nil, excerpt.Errorf(excerpt.EINVALID, "job %d: explain needs a selection", i+1)
		}
	}
	return &f, nil
}
