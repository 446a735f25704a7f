//go:build !cgo || (!TFLITE && !ALL)

package backends

import (
	"errors"

	"github.com/knights-analytics/modelprobe/options"
)

type TFLiteModel struct {
	Destroy func() error
}

func createTFLiteModelBackend(_ *Model, _ *options.Options) error {
	return errors.New("TFLITE is not enabled, build with -tags TFLITE")
}

func runTFLiteInference(_ *Model, _ []TensorValue) ([]TensorValue, error) {
	return nil, errors.New("TFLITE is not enabled, build with -tags TFLITE")
}
