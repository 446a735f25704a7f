package modelprobe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/advancedclimatesystems/gonnx/onnx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/knights-analytics/modelprobe/backends"
	"github.com/knights-analytics/modelprobe/options"
)

func checkT(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Test failed with error %s", err.Error())
	}
}

func tensorValueInfo(name string, elemType onnx.TensorProto_DataType, dims ...int64) *onnx.ValueInfoProto {
	shape := &onnx.TensorShapeProto{}
	for _, d := range dims {
		shape.Dim = append(shape.Dim, &onnx.TensorShapeProto_Dimension{
			Value: &onnx.TensorShapeProto_Dimension_DimValue{DimValue: d},
		})
	}
	return &onnx.ValueInfoProto{
		Name: name,
		Type: &onnx.TypeProto{
			Value: &onnx.TypeProto_TensorType{
				TensorType: &onnx.TypeProto_Tensor{ElemType: int32(elemType), Shape: shape},
			},
		},
	}
}

// writeAddModel writes an ONNX model computing sum = a + b over float [1, 4] tensors.
func writeAddModel(t *testing.T) string {
	t.Helper()
	model := &onnx.ModelProto{
		IrVersion:   7,
		OpsetImport: []*onnx.OperatorSetIdProto{{Version: 13}},
		Graph: &onnx.GraphProto{
			Name: "add",
			Node: []*onnx.NodeProto{
				{Name: "add", OpType: "Add", Input: []string{"a", "b"}, Output: []string{"sum"}},
			},
			Input: []*onnx.ValueInfoProto{
				tensorValueInfo("a", onnx.TensorProto_FLOAT, 1, 4),
				tensorValueInfo("b", onnx.TensorProto_FLOAT, 1, 4),
			},
			Output: []*onnx.ValueInfoProto{
				tensorValueInfo("sum", onnx.TensorProto_FLOAT, 1, 4),
			},
		},
	}
	modelBytes, err := proto.Marshal(model)
	checkT(t, err)
	path := filepath.Join(t.TempDir(), "add.onnx")
	checkT(t, os.WriteFile(path, modelBytes, 0o600))
	return path
}

func TestNewSessionUnsupportedBackend(t *testing.T) {
	_, err := NewSession("XLA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"XLA"`)
}

func TestNewSessionRejectsForeignOptions(t *testing.T) {
	_, err := NewGoSession(options.WithTFLiteNumThreads(2))
	assert.Error(t, err)

	session, err := NewSession("TFLITE", options.WithNumThreads(2))
	checkT(t, err)
	assert.Equal(t, "TFLITE", session.Backend())
	checkT(t, session.Destroy())
}

func TestSmokeTestGo(t *testing.T) {
	session, err := NewGoSession()
	checkT(t, err)
	defer func(session *Session) {
		destroyErr := session.Destroy()
		checkT(t, destroyErr)
	}(session)

	path := writeAddModel(t)
	model, err := session.LoadModel(context.Background(), path)
	checkT(t, err)
	again, err := session.LoadModel(context.Background(), path)
	checkT(t, err)
	assert.Same(t, model, again)

	require.Len(t, model.InputsMeta, 2)
	assert.Equal(t, []string{"a", "b"}, backends.GetNames(model.InputsMeta))

	result, err := session.SmokeTest(model)
	checkT(t, err)
	require.Len(t, result.Inputs, 2)
	assert.Equal(t, make([]float32, 4), result.Inputs[1].Data)
	require.Len(t, result.Outputs, 1)
	assert.Equal(t, "sum", result.Outputs[0].Name)
	assert.Equal(t, []float32{0, 0, 0, 0}, result.Outputs[0].Data)
}

func TestSmokeTestUnsupportedInputType(t *testing.T) {
	session, err := NewGoSession()
	checkT(t, err)
	defer func(session *Session) {
		checkT(t, session.Destroy())
	}(session)

	model := &backends.Model{
		Backend: "GO",
		InputsMeta: []backends.InputOutputInfo{
			{Name: "ids", Dimensions: backends.NewShape(1, 2), DataType: backends.DataTypeInt32},
			{Name: "text", Index: 1, Dimensions: backends.NewShape(1), DataType: backends.DataTypeString},
		},
	}
	result, err := session.SmokeTest(model)
	require.Error(t, err)
	assert.Len(t, result.Inputs, 1)
	assert.Nil(t, result.Outputs)
}

func TestLoadModelNotONNX(t *testing.T) {
	session, err := NewGoSession()
	checkT(t, err)
	defer func(session *Session) {
		checkT(t, session.Destroy())
	}(session)

	path := filepath.Join(t.TempDir(), "model.onnx")
	checkT(t, os.WriteFile(path, []byte("not a model"), 0o600))
	_, err = session.LoadModel(context.Background(), path)
	assert.Error(t, err)
}
