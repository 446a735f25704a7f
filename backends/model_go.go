package backends

import (
	"fmt"
	"reflect"

	"github.com/advancedclimatesystems/gonnx"
	"github.com/advancedclimatesystems/gonnx/onnx"
	"gorgonia.org/tensor"
)

type GoModel struct {
	Model *gonnx.Model
}

func createGoModelBackend(model *Model) error {
	modelProto, err := gonnx.ModelProtoFromBytes(model.ModelBytes)
	if err != nil {
		return fmt.Errorf("parsing ONNX model: %w", err)
	}
	goModel, err := gonnx.NewModel(modelProto)
	if err != nil {
		return err
	}

	inputs, outputs := loadInputOutputMetaGo(goModel, modelProto)
	model.GoModel = &GoModel{Model: goModel}
	model.InputsMeta = inputs
	model.OutputsMeta = outputs
	return nil
}

func loadInputOutputMetaGo(model *gonnx.Model, modelProto *onnx.ModelProto) ([]InputOutputInfo, []InputOutputInfo) {
	inputTypes := elemTypes(modelProto.GetGraph().GetInput())
	outputTypes := elemTypes(modelProto.GetGraph().GetOutput())

	inputShapes := model.InputShapes()
	inputs := make([]InputOutputInfo, 0, len(model.InputNames()))
	for i, name := range model.InputNames() {
		inputs = append(inputs, InputOutputInfo{
			Index:      i,
			Name:       name,
			Dimensions: goShape(inputShapes[name]),
			DataType:   DataTypeFromONNX(inputTypes[name]),
		})
	}
	outputShapes := model.OutputShapes()
	outputs := make([]InputOutputInfo, 0, len(model.OutputNames()))
	for i, name := range model.OutputNames() {
		outputs = append(outputs, InputOutputInfo{
			Index:      i,
			Name:       name,
			Dimensions: goShape(outputShapes[name]),
			DataType:   DataTypeFromONNX(outputTypes[name]),
		})
	}
	return inputs, outputs
}

func elemTypes(values []*onnx.ValueInfoProto) map[string]int32 {
	types := make(map[string]int32, len(values))
	for _, value := range values {
		types[value.GetName()] = value.GetType().GetTensorType().GetElemType()
	}
	return types
}

func goShape(shape onnx.Shape) Shape {
	dimensions := make(Shape, len(shape))
	for i, dim := range shape {
		if dim.IsDynamic {
			dimensions[i] = -1
		} else {
			dimensions[i] = dim.Size
		}
	}
	return dimensions
}

func runGoInference(model *Model, inputs []TensorValue) ([]TensorValue, error) {
	if model.GoModel == nil {
		return nil, fmt.Errorf("the ONNX model has been destroyed")
	}

	inputMap := make(map[string]tensor.Tensor, len(inputs))
	for i, input := range inputs {
		name := model.InputsMeta[i].Name
		if input.DataType == DataTypeFloat16 {
			return nil, fmt.Errorf("input %d (%s): float16 is not supported by the GO backend", i, name)
		}
		if len(input.Shape) == 0 {
			inputMap[name] = tensor.New(tensor.FromScalar(input.Sample(1)[0]))
			continue
		}
		inputMap[name] = tensor.New(
			tensor.WithShape(input.Shape.ValuesInt()...),
			tensor.WithBacking(input.Data),
		)
	}

	results, err := model.GoModel.Model.Run(inputMap)
	if err != nil {
		return nil, err
	}

	outputs := make([]TensorValue, len(model.OutputsMeta))
	for i, meta := range model.OutputsMeta {
		result, ok := results[meta.Name]
		if !ok {
			return nil, fmt.Errorf("output %d (%s) was not produced", i, meta.Name)
		}
		data := asSlice(result.Data())
		dataType := meta.DataType
		if dataType == DataTypeUnknown {
			dataType = dataTypeOfSlice(data)
		}
		outputs[i] = TensorValue{
			Data:     data,
			Name:     meta.Name,
			Shape:    ShapeFrom([]int(result.Shape())),
			Index:    i,
			DataType: dataType,
		}
	}
	return outputs, nil
}

// asSlice wraps the scalar gorgonia returns for rank 0 tensors in a one element slice.
func asSlice(data any) any {
	value := reflect.ValueOf(data)
	if value.Kind() == reflect.Slice {
		return data
	}
	slice := reflect.MakeSlice(reflect.SliceOf(value.Type()), 1, 1)
	slice.Index(0).Set(value)
	return slice.Interface()
}

func dataTypeOfSlice(data any) DataType {
	switch data.(type) {
	case []float32:
		return DataTypeFloat32
	case []float64:
		return DataTypeFloat64
	case []int8:
		return DataTypeInt8
	case []uint8:
		return DataTypeUint8
	case []int16:
		return DataTypeInt16
	case []uint16:
		return DataTypeUint16
	case []int32:
		return DataTypeInt32
	case []uint32:
		return DataTypeUint32
	case []int64:
		return DataTypeInt64
	case []uint64:
		return DataTypeUint64
	case []bool:
		return DataTypeBool
	case []string:
		return DataTypeString
	case []complex64:
		return DataTypeComplex64
	}
	return DataTypeUnknown
}
