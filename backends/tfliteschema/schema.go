// Package tfliteschema reads the parts of the TensorFlow Lite flatbuffer schema
// (tensorflow/lite/schema/schema.fbs) needed to describe a model's inputs and outputs.
// It does not need the TensorFlow Lite runtime.
package tfliteschema

import (
	"errors"
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"
)

// FileIdentifier is the flatbuffer file identifier of TensorFlow Lite models.
const FileIdentifier = "TFL3"

// TensorType is the schema's tensor element type. Its numbering differs from the C API's TfLiteType.
type TensorType int8

const (
	TensorTypeFloat32    TensorType = 0
	TensorTypeFloat16    TensorType = 1
	TensorTypeInt32      TensorType = 2
	TensorTypeUint8      TensorType = 3
	TensorTypeInt64      TensorType = 4
	TensorTypeString     TensorType = 5
	TensorTypeBool       TensorType = 6
	TensorTypeInt16      TensorType = 7
	TensorTypeComplex64  TensorType = 8
	TensorTypeInt8       TensorType = 9
	TensorTypeFloat64    TensorType = 10
	TensorTypeComplex128 TensorType = 11
	TensorTypeUint64     TensorType = 12
	TensorTypeResource   TensorType = 13
	TensorTypeVariant    TensorType = 14
	TensorTypeUint32     TensorType = 15
	TensorTypeUint16     TensorType = 16
	TensorTypeInt4       TensorType = 17
)

// vtable offsets, 4 + 2*field id
const (
	modelVersion   = 4
	modelSubgraphs = 8

	subgraphTensors = 4
	subgraphInputs  = 6
	subgraphOutputs = 8
	subgraphName    = 12

	tensorShape        = 4
	tensorType         = 6
	tensorName         = 10
	tensorQuantization = 12

	quantizationScale              = 8
	quantizationZeroPoint          = 10
	quantizationQuantizedDimension = 16
)

var ErrNotTFLite = errors.New("not a TensorFlow Lite model")

type Model struct {
	tab flatbuffers.Table
}

// GetRootAsModel validates the file identifier and returns the root Model table of buf.
func GetRootAsModel(buf []byte) (*Model, error) {
	if len(buf) < 8 {
		return nil, fmt.Errorf("%w: %d bytes is too short", ErrNotTFLite, len(buf))
	}
	if string(buf[4:8]) != FileIdentifier {
		return nil, fmt.Errorf("%w: file identifier %q", ErrNotTFLite, buf[4:8])
	}
	n := flatbuffers.GetUOffsetT(buf)
	if int(n) >= len(buf) {
		return nil, fmt.Errorf("%w: root offset %d out of range", ErrNotTFLite, n)
	}
	return &Model{tab: flatbuffers.Table{Bytes: buf, Pos: n}}, nil
}

func (m *Model) Version() uint32 {
	if o := flatbuffers.UOffsetT(m.tab.Offset(modelVersion)); o != 0 {
		return m.tab.GetUint32(o + m.tab.Pos)
	}
	return 0
}

func (m *Model) SubgraphsLength() int {
	if o := flatbuffers.UOffsetT(m.tab.Offset(modelSubgraphs)); o != 0 {
		return m.tab.VectorLen(o)
	}
	return 0
}

func (m *Model) Subgraph(j int) *SubGraph {
	o := flatbuffers.UOffsetT(m.tab.Offset(modelSubgraphs))
	if o == 0 {
		return nil
	}
	x := m.tab.Vector(o) + flatbuffers.UOffsetT(j)*4
	return &SubGraph{tab: flatbuffers.Table{Bytes: m.tab.Bytes, Pos: m.tab.Indirect(x)}}
}

type SubGraph struct {
	tab flatbuffers.Table
}

func (s *SubGraph) Name() string {
	if o := flatbuffers.UOffsetT(s.tab.Offset(subgraphName)); o != 0 {
		return string(s.tab.ByteVector(o + s.tab.Pos))
	}
	return ""
}

func (s *SubGraph) TensorsLength() int {
	if o := flatbuffers.UOffsetT(s.tab.Offset(subgraphTensors)); o != 0 {
		return s.tab.VectorLen(o)
	}
	return 0
}

func (s *SubGraph) Tensor(j int) *Tensor {
	o := flatbuffers.UOffsetT(s.tab.Offset(subgraphTensors))
	if o == 0 {
		return nil
	}
	x := s.tab.Vector(o) + flatbuffers.UOffsetT(j)*4
	return &Tensor{tab: flatbuffers.Table{Bytes: s.tab.Bytes, Pos: s.tab.Indirect(x)}}
}

// Inputs returns the tensor indices of the subgraph inputs.
func (s *SubGraph) Inputs() []int32 {
	return int32Vector(&s.tab, subgraphInputs)
}

// Outputs returns the tensor indices of the subgraph outputs.
func (s *SubGraph) Outputs() []int32 {
	return int32Vector(&s.tab, subgraphOutputs)
}

type Tensor struct {
	tab flatbuffers.Table
}

func (t *Tensor) Shape() []int32 {
	return int32Vector(&t.tab, tensorShape)
}

func (t *Tensor) Type() TensorType {
	if o := flatbuffers.UOffsetT(t.tab.Offset(tensorType)); o != 0 {
		return TensorType(t.tab.GetInt8(o + t.tab.Pos))
	}
	return TensorTypeFloat32
}

func (t *Tensor) Name() string {
	if o := flatbuffers.UOffsetT(t.tab.Offset(tensorName)); o != 0 {
		return string(t.tab.ByteVector(o + t.tab.Pos))
	}
	return ""
}

// Quantization returns nil when the tensor has no quantization table.
func (t *Tensor) Quantization() *QuantizationParameters {
	o := flatbuffers.UOffsetT(t.tab.Offset(tensorQuantization))
	if o == 0 {
		return nil
	}
	return &QuantizationParameters{tab: flatbuffers.Table{Bytes: t.tab.Bytes, Pos: t.tab.Indirect(o + t.tab.Pos)}}
}

type QuantizationParameters struct {
	tab flatbuffers.Table
}

func (q *QuantizationParameters) Scale() []float32 {
	o := flatbuffers.UOffsetT(q.tab.Offset(quantizationScale))
	if o == 0 {
		return nil
	}
	n := q.tab.VectorLen(o)
	start := q.tab.Vector(o)
	values := make([]float32, n)
	for j := range n {
		values[j] = q.tab.GetFloat32(start + flatbuffers.UOffsetT(j*4))
	}
	return values
}

func (q *QuantizationParameters) ZeroPoint() []int64 {
	o := flatbuffers.UOffsetT(q.tab.Offset(quantizationZeroPoint))
	if o == 0 {
		return nil
	}
	n := q.tab.VectorLen(o)
	start := q.tab.Vector(o)
	values := make([]int64, n)
	for j := range n {
		values[j] = q.tab.GetInt64(start + flatbuffers.UOffsetT(j*8))
	}
	return values
}

func (q *QuantizationParameters) QuantizedDimension() int32 {
	if o := flatbuffers.UOffsetT(q.tab.Offset(quantizationQuantizedDimension)); o != 0 {
		return q.tab.GetInt32(o + q.tab.Pos)
	}
	return 0
}

func int32Vector(tab *flatbuffers.Table, field flatbuffers.VOffsetT) []int32 {
	o := flatbuffers.UOffsetT(tab.Offset(field))
	if o == 0 {
		return nil
	}
	n := tab.VectorLen(o)
	start := tab.Vector(o)
	values := make([]int32, n)
	for j := range n {
		values[j] = tab.GetInt32(start + flatbuffers.UOffsetT(j*4))
	}
	return values
}
