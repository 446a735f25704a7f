package modelprobe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phuslu/log"

	"github.com/knights-analytics/modelprobe/backends"
	"github.com/knights-analytics/modelprobe/options"
	"github.com/knights-analytics/modelprobe/util/checks"
)

// Session owns the runtime environment of one backend and every model loaded through it.
type Session struct {
	models             map[string]*backends.Model
	options            *options.Options
	environmentDestroy func() error
}

// SmokeTestResult holds the tensors of one zero input inference. Inputs is filled
// even when inference fails, Outputs only on success.
type SmokeTestResult struct {
	Inputs   []backends.TensorValue
	Outputs  []backends.TensorValue
	Duration time.Duration
}

// NewSession creates a session for the named backend: TFLITE, ORT or GO.
func NewSession(backend string, opts ...options.WithOption) (*Session, error) {
	switch backend {
	case "TFLITE":
		return NewTFLiteSession(opts...)
	case "ORT":
		return NewORTSession(opts...)
	case "GO":
		return NewGoSession(opts...)
	default:
		return nil, fmt.Errorf("backend %q is not supported, use TFLITE, ORT or GO", backend)
	}
}

// NewTFLiteSession creates a session running models with the TensorFlow Lite interpreter.
// The interpreter is only available in binaries built with cgo and the TFLITE or ALL tag.
func NewTFLiteSession(opts ...options.WithOption) (*Session, error) {
	return newSession("TFLITE", opts...)
}

// NewGoSession creates a session running ONNX models with the pure Go runtime.
func NewGoSession(opts ...options.WithOption) (*Session, error) {
	return newSession("GO", opts...)
}

func newSession(backend string, opts ...options.WithOption) (*Session, error) {
	parsedOptions := options.Defaults()
	parsedOptions.Backend = backend
	for _, option := range opts {
		err := option(parsedOptions)
		if err != nil {
			return nil, err
		}
	}

	session := &Session{
		models:  map[string]*backends.Model{},
		options: parsedOptions,
		environmentDestroy: func() error {
			return nil
		},
	}
	return session, nil
}

// Backend is the name of the backend the session runs models with.
func (s *Session) Backend() string {
	return s.options.Backend
}

// LoadModel loads the model at path, or returns it if the session already loaded it.
func (s *Session) LoadModel(ctx context.Context, path string) (*backends.Model, error) {
	if model, ok := s.models[path]; ok {
		return model, nil
	}
	start := time.Now()
	model, err := backends.LoadModel(ctx, path, s.options)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("path", path).
		Str("backend", model.Backend).
		Int("inputs", len(model.InputsMeta)).
		Int("outputs", len(model.OutputsMeta)).
		Dur("elapsed", time.Since(start)).
		Msg("model loaded")
	s.models[path] = model
	return model, nil
}

// SmokeTest runs one inference of model with zero filled inputs.
func (s *Session) SmokeTest(model *backends.Model) (SmokeTestResult, error) {
	var result SmokeTestResult
	inputs, err := backends.CreateDummyInputs(model.InputsMeta)
	result.Inputs = inputs
	if err != nil {
		return result, checks.Wrap(err)
	}

	start := time.Now()
	outputs, err := backends.RunInference(model, inputs)
	result.Duration = time.Since(start)
	if err != nil {
		return result, err
	}
	result.Outputs = outputs
	log.Debug().Str("path", model.Path).Dur("elapsed", result.Duration).Msg("smoke test passed")
	return result, nil
}

// Destroy releases every loaded model and the runtime environment.
// A session should be destroyed when not needed any more, preferably with a defer() call.
func (s *Session) Destroy() error {
	var err error
	for _, model := range s.models {
		err = errors.Join(err, model.Destroy())
	}
	s.models = nil

	if s.options != nil {
		err = errors.Join(err, s.options.Destroy())
		s.options = nil
	}

	err = errors.Join(err, s.environmentDestroy())
	return err
}
