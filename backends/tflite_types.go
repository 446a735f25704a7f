package backends

import "github.com/knights-analytics/modelprobe/backends/tfliteschema"

var tfliteSchemaDataTypes = map[tfliteschema.TensorType]DataType{
	tfliteschema.TensorTypeFloat32:   DataTypeFloat32,
	tfliteschema.TensorTypeFloat16:   DataTypeFloat16,
	tfliteschema.TensorTypeInt32:     DataTypeInt32,
	tfliteschema.TensorTypeUint8:     DataTypeUint8,
	tfliteschema.TensorTypeInt64:     DataTypeInt64,
	tfliteschema.TensorTypeString:    DataTypeString,
	tfliteschema.TensorTypeBool:      DataTypeBool,
	tfliteschema.TensorTypeInt16:     DataTypeInt16,
	tfliteschema.TensorTypeComplex64: DataTypeComplex64,
	tfliteschema.TensorTypeInt8:      DataTypeInt8,
	tfliteschema.TensorTypeFloat64:   DataTypeFloat64,
	tfliteschema.TensorTypeUint64:    DataTypeUint64,
	tfliteschema.TensorTypeUint32:    DataTypeUint32,
	tfliteschema.TensorTypeUint16:    DataTypeUint16,
}

// DataTypeFromTFLiteSchema converts a flatbuffer tensor type to a DataType.
// Types without a Go representation (int4, resource, variant, complex128) are DataTypeUnknown.
func DataTypeFromTFLiteSchema(t tfliteschema.TensorType) DataType {
	if d, ok := tfliteSchemaDataTypes[t]; ok {
		return d
	}
	return DataTypeUnknown
}

// QuantizationFromTFLiteSchema returns the quantization table of a flatbuffer tensor,
// or nil when the tensor declares no scales.
func QuantizationFromTFLiteSchema(info tfliteschema.TensorInfo) *QuantizationParams {
	if len(info.Scales) == 0 {
		return nil
	}
	return &QuantizationParams{
		Scales:             info.Scales,
		ZeroPoints:         info.ZeroPoints,
		QuantizedDimension: int(info.QuantizedDimension),
	}
}
