package backends

import "fmt"

// DataType is the element type of a model input or output, independent of the engine that reported it.
type DataType int

const (
	DataTypeUnknown DataType = iota
	DataTypeFloat32
	DataTypeFloat16
	DataTypeFloat64
	DataTypeInt8
	DataTypeUint8
	DataTypeInt16
	DataTypeUint16
	DataTypeInt32
	DataTypeUint32
	DataTypeInt64
	DataTypeUint64
	DataTypeBool
	DataTypeString
	DataTypeComplex64
)

var dataTypeNames = map[DataType]string{
	DataTypeUnknown:   "unknown",
	DataTypeFloat32:   "float32",
	DataTypeFloat16:   "float16",
	DataTypeFloat64:   "float64",
	DataTypeInt8:      "int8",
	DataTypeUint8:     "uint8",
	DataTypeInt16:     "int16",
	DataTypeUint16:    "uint16",
	DataTypeInt32:     "int32",
	DataTypeUint32:    "uint32",
	DataTypeInt64:     "int64",
	DataTypeUint64:    "uint64",
	DataTypeBool:      "bool",
	DataTypeString:    "string",
	DataTypeComplex64: "complex64",
}

func (d DataType) String() string {
	if name, ok := dataTypeNames[d]; ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", int(d))
}

// MarshalText lets the JSON report carry the dtype name.
func (d DataType) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// IsInteger reports whether values of d are stored as Go integers.
func (d DataType) IsInteger() bool {
	switch d {
	case DataTypeInt8, DataTypeUint8, DataTypeInt16, DataTypeUint16,
		DataTypeInt32, DataTypeUint32, DataTypeInt64, DataTypeUint64:
		return true
	}
	return false
}

// ElementSize is the size in bytes of a single element, 0 for variable sized or unknown types.
func (d DataType) ElementSize() int {
	switch d {
	case DataTypeInt8, DataTypeUint8, DataTypeBool:
		return 1
	case DataTypeFloat16, DataTypeInt16, DataTypeUint16:
		return 2
	case DataTypeFloat32, DataTypeInt32, DataTypeUint32:
		return 4
	case DataTypeFloat64, DataTypeInt64, DataTypeUint64, DataTypeComplex64:
		return 8
	}
	return 0
}

// onnxElemTypes maps the ONNX TensorProto.DataType enum, shared by onnxruntime and the ONNX protobuf.
var onnxElemTypes = map[int32]DataType{
	1:  DataTypeFloat32,
	2:  DataTypeUint8,
	3:  DataTypeInt8,
	4:  DataTypeUint16,
	5:  DataTypeInt16,
	6:  DataTypeInt32,
	7:  DataTypeInt64,
	8:  DataTypeString,
	9:  DataTypeBool,
	10: DataTypeFloat16,
	11: DataTypeFloat64,
	12: DataTypeUint32,
	13: DataTypeUint64,
	14: DataTypeComplex64,
}

// DataTypeFromONNX converts an ONNX element type to a DataType.
func DataTypeFromONNX(elemType int32) DataType {
	if d, ok := onnxElemTypes[elemType]; ok {
		return d
	}
	return DataTypeUnknown
}
