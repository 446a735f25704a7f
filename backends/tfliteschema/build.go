package tfliteschema

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

// TensorSpec describes a tensor written by BuildModel.
type TensorSpec struct {
	Name               string
	Shape              []int32
	Scales             []float32
	ZeroPoints         []int64
	QuantizedDimension int32
	Type               TensorType
}

// BuildModel writes a model with a single operator-less subgraph whose tensors are the given inputs
// followed by the given outputs. It is enough to exercise metadata readers, not to run inference.
func BuildModel(inputs, outputs []TensorSpec) []byte {
	specs := make([]TensorSpec, 0, len(inputs)+len(outputs))
	specs = append(specs, inputs...)
	specs = append(specs, outputs...)
	return buildModel(specs, indices(0, len(inputs)), indices(len(inputs), len(outputs)))
}

// BuildPassthroughModel writes a model without operators where tensor i is both input i and output i.
// TensorFlow Lite can load and invoke it, and every output equals its input.
func BuildPassthroughModel(tensors ...TensorSpec) []byte {
	ends := indices(0, len(tensors))
	return buildModel(tensors, ends, ends)
}

func indices(first, count int) []int32 {
	result := make([]int32, count)
	for i := range result {
		result[i] = int32(first + i)
	}
	return result
}

func buildModel(specs []TensorSpec, inputs, outputs []int32) []byte {
	b := flatbuffers.NewBuilder(1024)

	tensorOffsets := make([]flatbuffers.UOffsetT, len(specs))
	for i, spec := range specs {
		tensorOffsets[i] = buildTensor(b, spec)
	}
	tensors := buildOffsetVector(b, tensorOffsets)
	inputIndices := buildIndexVector(b, inputs)
	outputIndices := buildIndexVector(b, outputs)
	operators := buildOffsetVector(b, nil)
	subgraphName := b.CreateString("main")

	b.StartObject(5)
	b.PrependUOffsetTSlot(0, tensors, 0)
	b.PrependUOffsetTSlot(1, inputIndices, 0)
	b.PrependUOffsetTSlot(2, outputIndices, 0)
	b.PrependUOffsetTSlot(3, operators, 0)
	b.PrependUOffsetTSlot(4, subgraphName, 0)
	subgraph := b.EndObject()

	subgraphs := buildOffsetVector(b, []flatbuffers.UOffsetT{subgraph})
	operatorCodes := buildOffsetVector(b, nil)
	description := b.CreateString("modelprobe test model")

	// buffer 0 is the empty buffer every tensor without constant data points at
	b.StartObject(1)
	emptyBuffer := b.EndObject()
	buffers := buildOffsetVector(b, []flatbuffers.UOffsetT{emptyBuffer})

	b.StartObject(8)
	b.PrependUint32Slot(0, 3, 0)
	b.PrependUOffsetTSlot(1, operatorCodes, 0)
	b.PrependUOffsetTSlot(2, subgraphs, 0)
	b.PrependUOffsetTSlot(3, description, 0)
	b.PrependUOffsetTSlot(4, buffers, 0)
	root := b.EndObject()

	b.FinishWithFileIdentifier(root, []byte(FileIdentifier))
	return b.FinishedBytes()
}

func buildTensor(b *flatbuffers.Builder, spec TensorSpec) flatbuffers.UOffsetT {
	var name flatbuffers.UOffsetT
	if spec.Name != "" {
		name = b.CreateString(spec.Name)
	}
	b.StartVector(4, len(spec.Shape), 4)
	for i := len(spec.Shape) - 1; i >= 0; i-- {
		b.PrependInt32(spec.Shape[i])
	}
	shape := b.EndVector(len(spec.Shape))

	var quantization flatbuffers.UOffsetT
	if spec.Scales != nil || spec.ZeroPoints != nil {
		b.StartVector(4, len(spec.Scales), 4)
		for i := len(spec.Scales) - 1; i >= 0; i-- {
			b.PrependFloat32(spec.Scales[i])
		}
		scales := b.EndVector(len(spec.Scales))
		b.StartVector(8, len(spec.ZeroPoints), 8)
		for i := len(spec.ZeroPoints) - 1; i >= 0; i-- {
			b.PrependInt64(spec.ZeroPoints[i])
		}
		zeroPoints := b.EndVector(len(spec.ZeroPoints))

		b.StartObject(7)
		b.PrependUOffsetTSlot(2, scales, 0)
		b.PrependUOffsetTSlot(3, zeroPoints, 0)
		b.PrependInt32Slot(6, spec.QuantizedDimension, 0)
		quantization = b.EndObject()
	}

	b.StartObject(8)
	b.PrependUOffsetTSlot(0, shape, 0)
	b.PrependInt8Slot(1, int8(spec.Type), 0)
	if name != 0 {
		b.PrependUOffsetTSlot(3, name, 0)
	}
	if quantization != 0 {
		b.PrependUOffsetTSlot(4, quantization, 0)
	}
	return b.EndObject()
}

func buildOffsetVector(b *flatbuffers.Builder, offsets []flatbuffers.UOffsetT) flatbuffers.UOffsetT {
	b.StartVector(4, len(offsets), 4)
	for i := len(offsets) - 1; i >= 0; i-- {
		b.PrependUOffsetT(offsets[i])
	}
	return b.EndVector(len(offsets))
}

func buildIndexVector(b *flatbuffers.Builder, values []int32) flatbuffers.UOffsetT {
	b.StartVector(4, len(values), 4)
	for i := len(values) - 1; i >= 0; i-- {
		b.PrependInt32(values[i])
	}
	return b.EndVector(len(values))
}
