//go:build cgo && (ORT || ALL)

package backends

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/knights-analytics/modelprobe/options"
)

type ORTModel struct {
	Session        *ort.DynamicAdvancedSession
	SessionOptions *ort.SessionOptions
	Options        *options.OrtOptions
	Destroy        func() error
}

func createORTModelBackend(model *Model, options *options.Options) error {
	// nil session options let onnxruntime use its defaults
	sessionOptions, _ := options.RuntimeOptions.(*ort.SessionOptions)

	inputs, outputs, err := loadInputOutputMetaORTBytes(model.ModelBytes)
	if err != nil {
		return err
	}

	session, err := ort.NewDynamicAdvancedSessionWithONNXData(
		model.ModelBytes,
		GetNames(inputs),
		GetNames(outputs),
		sessionOptions,
	)
	if err != nil {
		return err
	}

	model.ORTModel = &ORTModel{
		Session:        session,
		SessionOptions: sessionOptions,
		Options:        options.ORTOptions,
		Destroy: func() error {
			return session.Destroy()
		},
	}
	model.InputsMeta = inputs
	model.OutputsMeta = outputs
	return nil
}

func loadInputOutputMetaORTBytes(onnxBytes []byte) ([]InputOutputInfo, []InputOutputInfo, error) {
	inputs, outputs, err := ort.GetInputOutputInfoWithONNXData(onnxBytes)
	if err != nil {
		return nil, nil, err
	}
	return convertORTInputOutputs(inputs), convertORTInputOutputs(outputs), nil
}

func convertORTInputOutputs(inputOutputs []ort.InputOutputInfo) []InputOutputInfo {
	inputOutputsStandardised := make([]InputOutputInfo, len(inputOutputs))
	for i, inputOutput := range inputOutputs {
		inputOutputsStandardised[i] = InputOutputInfo{
			Index:      i,
			Name:       inputOutput.Name,
			Dimensions: Shape(inputOutput.Dimensions),
			DataType:   DataTypeFromONNX(int32(inputOutput.DataType)),
		}
	}
	return inputOutputsStandardised
}

func newORTTensor(input TensorValue) (ort.Value, error) {
	shape := ort.NewShape(input.Shape...)
	switch data := input.Data.(type) {
	case []float32:
		return ort.NewTensor(shape, data)
	case []float64:
		return ort.NewTensor(shape, data)
	case []int8:
		return ort.NewTensor(shape, data)
	case []uint8:
		return ort.NewTensor(shape, data)
	case []int16:
		return ort.NewTensor(shape, data)
	case []uint16:
		return ort.NewTensor(shape, data)
	case []float16.Float16:
		raw := make([]byte, 2*len(data))
		for i, half := range data {
			binary.LittleEndian.PutUint16(raw[2*i:], half.Bits())
		}
		return ort.NewCustomDataTensor(shape, raw, ort.TensorElementDataTypeFloat16)
	case []int32:
		return ort.NewTensor(shape, data)
	case []uint32:
		return ort.NewTensor(shape, data)
	case []int64:
		return ort.NewTensor(shape, data)
	case []uint64:
		return ort.NewTensor(shape, data)
	case []bool:
		raw := make([]byte, len(data))
		for i, b := range data {
			if b {
				raw[i] = 1
			}
		}
		return ort.NewCustomDataTensor(shape, raw, ort.TensorElementDataTypeBool)
	default:
		return nil, fmt.Errorf("input %d (%s): data type %s is not supported by the ORT backend", input.Index, input.Name, input.DataType)
	}
}

func runORTInference(model *Model, inputs []TensorValue) (outputs []TensorValue, err error) {
	if model.ORTModel == nil {
		return nil, errors.New("the ORT model has been destroyed")
	}

	inputValues := make([]ort.Value, 0, len(inputs))
	outputValues := make([]ort.Value, len(model.OutputsMeta))
	defer func() {
		for _, v := range inputValues {
			err = errors.Join(err, v.Destroy())
		}
		for _, v := range outputValues {
			if v != nil {
				err = errors.Join(err, v.Destroy())
			}
		}
	}()

	for _, input := range inputs {
		value, tensorErr := newORTTensor(input)
		if tensorErr != nil {
			return nil, tensorErr
		}
		inputValues = append(inputValues, value)
	}

	if err = model.ORTModel.Session.Run(inputValues, outputValues); err != nil {
		return nil, err
	}

	outputs = make([]TensorValue, len(outputValues))
	for i, value := range outputValues {
		meta := model.OutputsMeta[i]
		data, convertErr := ortValueData(value, meta.DataType)
		if convertErr != nil {
			return nil, fmt.Errorf("output %d (%s): %w", i, meta.Name, convertErr)
		}
		outputs[i] = TensorValue{
			Data:     data,
			Name:     meta.Name,
			Shape:    Shape(value.GetShape()),
			Index:    i,
			DataType: meta.DataType,
		}
	}
	return outputs, nil
}

// ortValueData copies the data of an output so it outlives the ORT value.
func ortValueData(value ort.Value, dataType DataType) (any, error) {
	switch v := value.(type) {
	case *ort.Tensor[float32]:
		return slices.Clone(v.GetData()), nil
	case *ort.Tensor[float64]:
		return slices.Clone(v.GetData()), nil
	case *ort.Tensor[int8]:
		return slices.Clone(v.GetData()), nil
	case *ort.Tensor[uint8]:
		return slices.Clone(v.GetData()), nil
	case *ort.Tensor[int16]:
		return slices.Clone(v.GetData()), nil
	case *ort.Tensor[uint16]:
		return slices.Clone(v.GetData()), nil
	case *ort.Tensor[int32]:
		return slices.Clone(v.GetData()), nil
	case *ort.Tensor[uint32]:
		return slices.Clone(v.GetData()), nil
	case *ort.Tensor[int64]:
		return slices.Clone(v.GetData()), nil
	case *ort.Tensor[uint64]:
		return slices.Clone(v.GetData()), nil
	case *ort.CustomDataTensor:
		raw := v.GetData()
		switch dataType {
		case DataTypeBool:
			data := make([]bool, len(raw))
			for i, b := range raw {
				data[i] = b != 0
			}
			return data, nil
		case DataTypeFloat16:
			data := make([]float16.Float16, len(raw)/2)
			for i := range data {
				data[i] = float16.Frombits(binary.LittleEndian.Uint16(raw[2*i:]))
			}
			return data, nil
		}
		return nil, fmt.Errorf("cannot read %s data from a custom tensor", dataType)
	}
	return nil, fmt.Errorf("unsupported output value %T", value)
}
