package tfliteschema

import "fmt"

// TensorInfo is the flatbuffer description of one subgraph input or output.
type TensorInfo struct {
	Name               string
	Shape              []int32
	Scales             []float32
	ZeroPoints         []int64
	TensorIndex        int32
	QuantizedDimension int32
	Type               TensorType
}

// ReadInputsOutputs describes the inputs and outputs of the main subgraph (subgraph 0) of a model,
// in the same order the interpreter exposes them.
func ReadInputsOutputs(buf []byte) (inputs []TensorInfo, outputs []TensorInfo, err error) {
	model, err := GetRootAsModel(buf)
	if err != nil {
		return nil, nil, err
	}
	// flatbuffer accessors index into buf without bounds checks of their own
	defer func() {
		if r := recover(); r != nil {
			inputs, outputs = nil, nil
			err = fmt.Errorf("malformed TensorFlow Lite model: %v", r)
		}
	}()

	if model.SubgraphsLength() == 0 {
		return nil, nil, fmt.Errorf("model has no subgraphs")
	}
	subgraph := model.Subgraph(0)
	if inputs, err = describeTensors(subgraph, subgraph.Inputs()); err != nil {
		return nil, nil, err
	}
	if outputs, err = describeTensors(subgraph, subgraph.Outputs()); err != nil {
		return nil, nil, err
	}
	return inputs, outputs, nil
}

func describeTensors(subgraph *SubGraph, indices []int32) ([]TensorInfo, error) {
	numTensors := subgraph.TensorsLength()
	infos := make([]TensorInfo, 0, len(indices))
	for _, tensorIndex := range indices {
		if tensorIndex < 0 || int(tensorIndex) >= numTensors {
			return nil, fmt.Errorf("tensor index %d out of range, subgraph has %d tensors", tensorIndex, numTensors)
		}
		tensor := subgraph.Tensor(int(tensorIndex))
		info := TensorInfo{
			Name:        tensor.Name(),
			Shape:       tensor.Shape(),
			TensorIndex: tensorIndex,
			Type:        tensor.Type(),
		}
		if quantization := tensor.Quantization(); quantization != nil {
			info.Scales = quantization.Scale()
			info.ZeroPoints = quantization.ZeroPoint()
			info.QuantizedDimension = quantization.QuantizedDimension()
		}
		infos = append(infos, info)
	}
	return infos, nil
}
