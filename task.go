package main

import (
	"context"
	"fmt"

	"github.com/Ikomia-hub/infer-google-vision-ocr/internal/constants"
	"github.com/Ikomia-hub/infer-google-vision-ocr/ocr"
)

// Task metadata as registered with the workflow engine.
const (
	taskName    = "infer_google_vision_ocr"
	taskVersion = "1.0.0"
)

// Param holds the task parameters. The workflow engine stores parameter
// values as strings, so Param converts from and to a string map.
type Param struct {
	GoogleApplicationCredentials string
}

// SetValues fills the parameters from the engine's string map.
func (p *Param) SetValues(values map[string]string) {
	p.GoogleApplicationCredentials = values["google_application_credentials"]
}

// GetValues returns the parameters as the engine's string map.
func (p *Param) GetValues() map[string]string {
	return map[string]string{
		"google_application_credentials": p.GoogleApplicationCredentials,
	}
}

// TaskOutput holds the task's three output slots.
type TaskOutput struct {
	// Image is the input frame forwarded unchanged for downstream chaining.
	Image *ocr.Frame

	// Fields are the individual detected text units.
	Fields []ocr.TextField

	// Data maps the detected-text label to the full text block.
	Data map[string]string
}

// Task runs Google Vision text detection on one input frame per invocation.
// The engine invokes it sequentially; the provider and its remote client are
// built on the first run and reused afterwards.
type Task struct {
	Param *Param

	provider       ocr.Provider
	wordConfidence bool
}

// NewTask creates the task with the given parameters.
func NewTask(param *Param, wordConfidence bool) *Task {
	if param == nil {
		param = &Param{}
	}
	return &Task{Param: param, wordConfidence: wordConfidence}
}

// Run processes one frame and fills the output slots.
func (t *Task) Run(ctx context.Context, frame *ocr.Frame) (*TaskOutput, error) {
	if frame == nil {
		return nil, fmt.Errorf("no input image")
	}

	if t.provider == nil {
		provider, err := ocr.NewProvider(ocr.Config{
			CredentialsFile: t.Param.GoogleApplicationCredentials,
			WordConfidence:  t.wordConfidence,
		})
		if err != nil {
			return nil, fmt.Errorf("creating OCR provider: %w", err)
		}
		t.provider = provider
	}

	result, err := t.provider.Process(ctx, frame)
	if err != nil {
		return nil, err
	}

	return &TaskOutput{
		Image:  frame,
		Fields: result.Fields,
		Data:   map[string]string{constants.DetectedTextKey: result.Text},
	}, nil
}
