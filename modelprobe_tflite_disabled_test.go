//go:build !cgo || (!TFLITE && !ALL)

package modelprobe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knights-analytics/modelprobe/backends/tfliteschema"
)

func TestTFLiteBackendDisabled(t *testing.T) {
	session, err := NewTFLiteSession()
	checkT(t, err)
	defer func(session *Session) {
		checkT(t, session.Destroy())
	}(session)

	path := filepath.Join(t.TempDir(), "model.tflite")
	modelBytes := tfliteschema.BuildModel([]tfliteschema.TensorSpec{{Name: "x", Shape: []int32{1}}}, nil)
	checkT(t, os.WriteFile(path, modelBytes, 0o600))

	_, err = session.LoadModel(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TFLITE is not enabled")
}
