package backends

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"

	"github.com/knights-analytics/modelprobe/backends/tfliteschema"
)

func checkT(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Test failed with error %s", err.Error())
	}
}

func TestDataTypeNames(t *testing.T) {
	assert.Equal(t, "int8", DataTypeInt8.String())
	assert.Equal(t, "float16", DataTypeFloat16.String())
	assert.Equal(t, "DataType(99)", DataType(99).String())

	text, err := DataTypeInt32.MarshalText()
	checkT(t, err)
	assert.Equal(t, "int32", string(text))
}

func TestDataTypeFromONNX(t *testing.T) {
	assert.Equal(t, DataTypeFloat32, DataTypeFromONNX(1))
	assert.Equal(t, DataTypeInt64, DataTypeFromONNX(7))
	assert.Equal(t, DataTypeFloat16, DataTypeFromONNX(10))
	assert.Equal(t, DataTypeUnknown, DataTypeFromONNX(16))
}

func TestDataTypeFromTFLiteSchema(t *testing.T) {
	assert.Equal(t, DataTypeFloat32, DataTypeFromTFLiteSchema(tfliteschema.TensorTypeFloat32))
	assert.Equal(t, DataTypeInt8, DataTypeFromTFLiteSchema(tfliteschema.TensorTypeInt8))
	assert.Equal(t, DataTypeUint16, DataTypeFromTFLiteSchema(tfliteschema.TensorTypeUint16))
	assert.Equal(t, DataTypeUnknown, DataTypeFromTFLiteSchema(tfliteschema.TensorTypeInt4))
}

func TestElementSize(t *testing.T) {
	assert.Equal(t, 1, DataTypeInt8.ElementSize())
	assert.Equal(t, 2, DataTypeFloat16.ElementSize())
	assert.Equal(t, 4, DataTypeInt32.ElementSize())
	assert.Equal(t, 8, DataTypeInt64.ElementSize())
	assert.Equal(t, 0, DataTypeString.ElementSize())
	assert.True(t, DataTypeUint8.IsInteger())
	assert.False(t, DataTypeFloat32.IsInteger())
}

func TestQuantizationFromTFLiteSchema(t *testing.T) {
	assert.Nil(t, QuantizationFromTFLiteSchema(tfliteschema.TensorInfo{Name: "ids"}))
	// zero points without scales is not a usable quantization
	assert.Nil(t, QuantizationFromTFLiteSchema(tfliteschema.TensorInfo{ZeroPoints: []int64{0}}))

	q := QuantizationFromTFLiteSchema(tfliteschema.TensorInfo{
		Scales:             []float32{0.5, 0.25},
		ZeroPoints:         []int64{0, 1},
		QuantizedDimension: 3,
	})
	require.NotNil(t, q)
	assert.Equal(t, []float32{0.5, 0.25}, q.Scales)
	assert.Equal(t, []int64{0, 1}, q.ZeroPoints)
	assert.Equal(t, 3, q.QuantizedDimension)
}

func TestShape(t *testing.T) {
	shape := NewShape(-1, 128)
	assert.Equal(t, "[-1 128]", shape.String())
	assert.Equal(t, Shape{1, 128}, shape.Concrete())
	assert.Equal(t, Shape{-1, 128}, shape)
	assert.Equal(t, 128, shape.NumElements())
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.Equal(t, 0, Shape{2, 0}.NumElements())
	assert.Equal(t, []int{-1, 128}, shape.ValuesInt())
	assert.Equal(t, Shape{1, 2}, ShapeFrom([]int32{1, 2}))
}

func TestIsQuantized(t *testing.T) {
	assert.False(t, InputOutputInfo{}.IsQuantized())
	assert.False(t, InputOutputInfo{Quantization: &QuantizationParams{}}.IsQuantized())
	assert.True(t, InputOutputInfo{Quantization: &QuantizationParams{Scales: []float32{1}, ZeroPoints: []int64{0}}}.IsQuantized())
}

func TestCreateDummyInputs(t *testing.T) {
	meta := []InputOutputInfo{
		{Name: "input_ids", Index: 0, Dimensions: NewShape(1, 128), DataType: DataTypeInt32},
		{Name: "mask", Index: 1, Dimensions: NewShape(-1, 4), DataType: DataTypeInt8},
		{Name: "half", Index: 2, Dimensions: NewShape(2), DataType: DataTypeFloat16},
	}
	inputs, err := CreateDummyInputs(meta)
	checkT(t, err)
	require.Len(t, inputs, 3)

	assert.Equal(t, make([]int32, 128), inputs[0].Data)
	assert.Equal(t, Shape{1, 128}, inputs[0].Shape)
	assert.Equal(t, 128, inputs[0].Len())
	assert.Equal(t, []any{int32(0), int32(0), int32(0)}, inputs[0].Sample(3))

	assert.Equal(t, Shape{1, 4}, inputs[1].Shape)
	assert.Equal(t, make([]int8, 4), inputs[1].Data)
	assert.Equal(t, 1, inputs[1].Index)

	assert.Equal(t, make([]float16.Float16, 2), inputs[2].Data)
	assert.Equal(t, DataTypeFloat16, inputs[2].DataType)
	assert.Len(t, inputs[2].Sample(5), 2)
}

func TestCreateDummyInputsUnsupportedType(t *testing.T) {
	meta := []InputOutputInfo{
		{Name: "ids", Dimensions: NewShape(1), DataType: DataTypeInt32},
		{Name: "text", Index: 1, Dimensions: NewShape(1), DataType: DataTypeString},
	}
	inputs, err := CreateDummyInputs(meta)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input 1 (text)")
	assert.Len(t, inputs, 1)
}

func TestZeroBuffer(t *testing.T) {
	data, err := ZeroBuffer(DataTypeBool, 3)
	checkT(t, err)
	assert.Equal(t, []bool{false, false, false}, data)

	_, err = ZeroBuffer(DataTypeUnknown, 1)
	assert.Error(t, err)
	_, err = ZeroBuffer(DataTypeFloat32, -1)
	assert.Error(t, err)
}

func TestSampleFloat16(t *testing.T) {
	v := TensorValue{
		Data:     []float16.Float16{float16.Fromfloat32(1), float16.Fromfloat32(-2.5), float16.Inf(1)},
		Shape:    NewShape(3),
		DataType: DataTypeFloat16,
	}
	assert.Equal(t, uint16(15360), float16.Fromfloat32(1).Bits())
	assert.Equal(t, []any{float32(1), float32(-2.5)}, v.Sample(2))
	sample := v.Sample(5)
	require.Len(t, sample, 3)
	assert.True(t, math.IsInf(float64(sample[2].(float32)), 1))

	raw := TensorValue{Data: []uint16{15360}, DataType: DataTypeUint16}
	assert.Equal(t, []any{uint16(15360)}, raw.Sample(1))
}

func TestTensorValueEmpty(t *testing.T) {
	var v TensorValue
	assert.Equal(t, 0, v.Len())
	assert.Nil(t, v.Sample(3))
}
