package tfliteschema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mobileBertLike() ([]TensorSpec, []TensorSpec) {
	inputs := []TensorSpec{
		{Name: "serving_default_input_ids:0", Shape: []int32{1, 128}, Type: TensorTypeInt32},
		{Name: "serving_default_attention_mask:0", Shape: []int32{1, 128}, Type: TensorTypeInt32},
	}
	outputs := []TensorSpec{
		{
			Name:       "StatefulPartitionedCall:0",
			Shape:      []int32{1, 2},
			Type:       TensorTypeInt8,
			Scales:     []float32{0.04724409},
			ZeroPoints: []int64{-3},
		},
	}
	return inputs, outputs
}

func TestGetRootAsModel(t *testing.T) {
	inputs, outputs := mobileBertLike()
	model, err := GetRootAsModel(BuildModel(inputs, outputs))
	require.NoError(t, err)
	assert.Equal(t, uint32(3), model.Version())
	require.Equal(t, 1, model.SubgraphsLength())

	subgraph := model.Subgraph(0)
	assert.Equal(t, "main", subgraph.Name())
	assert.Equal(t, 3, subgraph.TensorsLength())
	assert.Equal(t, []int32{0, 1}, subgraph.Inputs())
	assert.Equal(t, []int32{2}, subgraph.Outputs())
}

func TestGetRootAsModelRejectsOtherFiles(t *testing.T) {
	_, err := GetRootAsModel([]byte("short"))
	assert.True(t, errors.Is(err, ErrNotTFLite))

	_, err = GetRootAsModel([]byte("\x08\x00\x00\x00ONNXmore bytes"))
	assert.True(t, errors.Is(err, ErrNotTFLite))
}

func TestReadInputsOutputs(t *testing.T) {
	inputSpecs, outputSpecs := mobileBertLike()
	inputs, outputs, err := ReadInputsOutputs(BuildModel(inputSpecs, outputSpecs))
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	require.Len(t, outputs, 1)

	assert.Equal(t, "serving_default_input_ids:0", inputs[0].Name)
	assert.Equal(t, []int32{1, 128}, inputs[0].Shape)
	assert.Equal(t, TensorTypeInt32, inputs[0].Type)
	assert.Nil(t, inputs[0].Scales)
	assert.Equal(t, int32(1), inputs[1].TensorIndex)

	assert.Equal(t, TensorTypeInt8, outputs[0].Type)
	assert.Equal(t, []float32{0.04724409}, outputs[0].Scales)
	assert.Equal(t, []int64{-3}, outputs[0].ZeroPoints)
	assert.Equal(t, int32(0), outputs[0].QuantizedDimension)
	assert.Equal(t, int32(2), outputs[0].TensorIndex)
}

func TestReadInputsOutputsPerAxisQuantization(t *testing.T) {
	outputs := []TensorSpec{{
		Name:               "conv_weights",
		Shape:              []int32{3, 1, 1, 8},
		Type:               TensorTypeInt8,
		Scales:             []float32{0.5, 0.25, 0.125},
		ZeroPoints:         []int64{0, 0, 0},
		QuantizedDimension: 3,
	}}
	inputs := []TensorSpec{{Shape: []int32{}, Type: TensorTypeFloat32}}

	in, out, err := ReadInputsOutputs(BuildModel(inputs, outputs))
	require.NoError(t, err)
	assert.Empty(t, in[0].Name)
	assert.Empty(t, in[0].Shape)
	assert.Equal(t, TensorTypeFloat32, in[0].Type)
	assert.Equal(t, []float32{0.5, 0.25, 0.125}, out[0].Scales)
	assert.Equal(t, []int64{0, 0, 0}, out[0].ZeroPoints)
	assert.Equal(t, int32(3), out[0].QuantizedDimension)
}

func TestReadInputsOutputsMalformed(t *testing.T) {
	buf := BuildModel(mobileBertLike())
	truncated := buf[:len(buf)/3]
	_, _, err := ReadInputsOutputs(truncated)
	assert.Error(t, err)
}

func TestBuildPassthroughModel(t *testing.T) {
	buf := BuildPassthroughModel(
		TensorSpec{Name: "x", Shape: []int32{1, 3}, Type: TensorTypeInt8, Scales: []float32{0.5, 0.25, 0.125}, ZeroPoints: []int64{1, -2, 3}, QuantizedDimension: 1},
		TensorSpec{Name: "y", Shape: []int32{2}, Type: TensorTypeFloat32},
	)
	model, err := GetRootAsModel(buf)
	require.NoError(t, err)
	subgraph := model.Subgraph(0)
	assert.Equal(t, 2, subgraph.TensorsLength())
	assert.Equal(t, []int32{0, 1}, subgraph.Inputs())
	assert.Equal(t, []int32{0, 1}, subgraph.Outputs())

	inputs, outputs, err := ReadInputsOutputs(buf)
	require.NoError(t, err)
	assert.Equal(t, inputs, outputs)
	assert.Equal(t, []int64{1, -2, 3}, outputs[0].ZeroPoints)
	assert.Equal(t, int32(1), outputs[0].QuantizedDimension)
}
