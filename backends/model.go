package backends

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/modelprobe/options"
	"github.com/knights-analytics/modelprobe/util/checks"
	"github.com/knights-analytics/modelprobe/util/fileutil"
)

type Model struct {
	TFLiteModel *TFLiteModel
	ORTModel    *ORTModel
	GoModel     *GoModel
	Destroy     func() error
	Path        string
	Backend     string
	ModelBytes  []byte
	InputsMeta  []InputOutputInfo
	OutputsMeta []InputOutputInfo
	Size        int64
}

// InferBackend picks the backend able to load the file at path from its extension.
// Anything that is not an ONNX file is treated as a TensorFlow Lite model.
func InferBackend(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".onnx":
		return "ORT"
	default:
		return "TFLITE"
	}
}

// LoadModel reads the model at path, creates the backend given in options and
// fills the input and output descriptors. Errors carry the stack of the failing call.
func LoadModel(ctx context.Context, path string, options *options.Options) (*Model, error) {
	model := &Model{
		Path:    path,
		Backend: options.Backend,
	}

	size, err := fileutil.FileSize(ctx, path)
	if err != nil {
		return nil, checks.Wrap(fmt.Errorf("reading size of %s: %w", path, err))
	}
	model.Size = size

	model.ModelBytes, err = fileutil.ReadFileBytes(ctx, path)
	if err != nil {
		return nil, checks.Wrap(fmt.Errorf("reading %s: %w", path, err))
	}

	if err = CreateModelBackend(model, options); err != nil {
		return nil, checks.Wrap(err)
	}

	model.Destroy = func() error {
		var destroyErr error
		switch options.Backend {
		case "TFLITE":
			if model.TFLiteModel != nil {
				destroyErr = errors.Join(destroyErr, model.TFLiteModel.Destroy())
				model.TFLiteModel = nil
			}
		case "ORT":
			if model.ORTModel != nil {
				destroyErr = errors.Join(destroyErr, model.ORTModel.Destroy())
				model.ORTModel = nil
			}
		case "GO":
			model.GoModel = nil
		}
		model.ModelBytes = nil
		return destroyErr
	}
	return model, nil
}

func CreateModelBackend(model *Model, options *options.Options) error {
	var err error
	switch options.Backend {
	case "TFLITE":
		err = createTFLiteModelBackend(model, options)
	case "ORT":
		err = createORTModelBackend(model, options)
	case "GO":
		err = createGoModelBackend(model)
	default:
		err = fmt.Errorf("backend %q is not supported, use TFLITE, ORT or GO", options.Backend)
	}
	return err
}

// RunInference binds inputs to the model's input slots by index, runs one forward pass
// and reads back every output. A panic inside the engine is returned as an error.
func RunInference(model *Model, inputs []TensorValue) (outputs []TensorValue, err error) {
	defer checks.Recover(&err)
	if len(inputs) != len(model.InputsMeta) {
		return nil, checks.Wrap(fmt.Errorf("model has %d inputs but %d tensors were given", len(model.InputsMeta), len(inputs)))
	}
	switch model.Backend {
	case "TFLITE":
		outputs, err = runTFLiteInference(model, inputs)
	case "ORT":
		outputs, err = runORTInference(model, inputs)
	case "GO":
		outputs, err = runGoInference(model, inputs)
	default:
		err = fmt.Errorf("backend %q is not supported", model.Backend)
	}
	return outputs, checks.Wrap(err)
}
