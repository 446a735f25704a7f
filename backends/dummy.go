package backends

import (
	"fmt"
	"reflect"

	"github.com/x448/float16"
)

// TensorValue is a tensor held in a typed Go slice, e.g. []int8 for DataTypeInt8.
// Float16 values are held in a []float16.Float16.
type TensorValue struct {
	Data     any
	Name     string
	Shape    Shape
	Index    int
	DataType DataType
}

// Len is the number of elements held in Data.
func (v TensorValue) Len() int {
	if v.Data == nil {
		return 0
	}
	return reflect.ValueOf(v.Data).Len()
}

// Sample returns up to n leading values of the tensor in flattened order.
// Float16 values are widened to float32.
func (v TensorValue) Sample(n int) []any {
	if v.Data == nil {
		return nil
	}
	data := reflect.ValueOf(v.Data)
	n = min(n, data.Len())
	sample := make([]any, n)
	for i := range n {
		value := data.Index(i).Interface()
		if half, ok := value.(float16.Float16); ok {
			value = half.Float32()
		}
		sample[i] = value
	}
	return sample
}

// ZeroBuffer allocates a zero filled slice of the Go type backing dataType, with numElements elements.
func ZeroBuffer(dataType DataType, numElements int) (any, error) {
	if numElements < 0 {
		return nil, fmt.Errorf("negative element count %d", numElements)
	}
	switch dataType {
	case DataTypeFloat32:
		return make([]float32, numElements), nil
	case DataTypeFloat16:
		return make([]float16.Float16, numElements), nil
	case DataTypeUint16:
		return make([]uint16, numElements), nil
	case DataTypeFloat64:
		return make([]float64, numElements), nil
	case DataTypeInt8:
		return make([]int8, numElements), nil
	case DataTypeUint8:
		return make([]uint8, numElements), nil
	case DataTypeInt16:
		return make([]int16, numElements), nil
	case DataTypeInt32:
		return make([]int32, numElements), nil
	case DataTypeUint32:
		return make([]uint32, numElements), nil
	case DataTypeInt64:
		return make([]int64, numElements), nil
	case DataTypeUint64:
		return make([]uint64, numElements), nil
	case DataTypeBool:
		return make([]bool, numElements), nil
	case DataTypeComplex64:
		return make([]complex64, numElements), nil
	default:
		return nil, fmt.Errorf("cannot build a zero buffer for data type %s", dataType)
	}
}

// NewZeroTensor builds a zero filled tensor for the given descriptor. Dynamic axes are bound to 1.
func NewZeroTensor(meta InputOutputInfo) (TensorValue, error) {
	shape := meta.Dimensions.Concrete()
	data, err := ZeroBuffer(meta.DataType, shape.NumElements())
	if err != nil {
		return TensorValue{}, fmt.Errorf("input %d (%s): %w", meta.Index, meta.Name, err)
	}
	return TensorValue{
		Data:     data,
		Name:     meta.Name,
		Shape:    shape,
		Index:    meta.Index,
		DataType: meta.DataType,
	}, nil
}

// CreateDummyInputs builds one zero filled tensor per input descriptor, in descriptor order.
func CreateDummyInputs(inputsMeta []InputOutputInfo) ([]TensorValue, error) {
	inputs := make([]TensorValue, 0, len(inputsMeta))
	for _, meta := range inputsMeta {
		input, err := NewZeroTensor(meta)
		if err != nil {
			return inputs, err
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}
