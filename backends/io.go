package backends

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// InputOutputInfo describes one model input or output.
type InputOutputInfo struct {
	// The name of the input or output
	Name string
	// Quantization is nil when the tensor is not quantized.
	Quantization *QuantizationParams
	// The input or output's dimensions. Dynamic axes are -1.
	Dimensions Shape
	// Index is the position of the tensor in the model's input or output list.
	Index    int
	DataType DataType
}

// IsQuantized reports whether the tensor declares at least one quantization scale.
func (i InputOutputInfo) IsQuantized() bool {
	return i.Quantization != nil && len(i.Quantization.Scales) > 0
}

// QuantizationParams maps quantized values back to real numbers: real = scale * (q - zeroPoint).
// Per-tensor quantization has a single scale, per-axis quantization one per slice of QuantizedDimension.
type QuantizationParams struct {
	Scales             []float32 `json:"scales"`
	ZeroPoints         []int64   `json:"zero_points"`
	QuantizedDimension int       `json:"quantized_dimension"`
}

type Shape []int64

func (s Shape) String() string {
	return fmt.Sprintf("%v", []int64(s))
}

func (s Shape) ValuesInt() []int {
	output := make([]int, len(s))
	for i, v := range s {
		output[i] = int(v)
	}
	return output
}

// Concrete returns a copy of s with every dynamic axis bound to 1.
func (s Shape) Concrete() Shape {
	output := make(Shape, len(s))
	for i, v := range s {
		if v < 0 {
			v = 1
		}
		output[i] = v
	}
	return output
}

// NumElements is the number of elements a tensor of this shape holds once dynamic axes are bound.
func (s Shape) NumElements() int {
	return int(product(s.Concrete()))
}

// NewShape Returns a Shape, with the given dimensions.
func NewShape(dimensions ...int64) Shape {
	return dimensions
}

// ShapeFrom builds a Shape from any integer dimensions.
func ShapeFrom[T constraints.Integer](dimensions []T) Shape {
	output := make(Shape, len(dimensions))
	for i, v := range dimensions {
		output[i] = int64(v)
	}
	return output
}

func product[T constraints.Integer](dimensions []T) T {
	var total T = 1
	for _, d := range dimensions {
		total *= d
	}
	return total
}

func GetNames(info []InputOutputInfo) []string {
	names := make([]string, 0, len(info))
	for _, v := range info {
		names = append(names, v.Name)
	}
	return names
}
