//go:build !cgo || (!ORT && !ALL)

package backends

import (
	"errors"

	"github.com/knights-analytics/modelprobe/options"
)

type ORTModel struct {
	Destroy func() error
}

func createORTModelBackend(_ *Model, _ *options.Options) error {
	return errors.New("ORT is not enabled, build with -tags ORT")
}

func runORTInference(_ *Model, _ []TensorValue) ([]TensorValue, error) {
	return nil, errors.New("ORT is not enabled, build with -tags ORT")
}
