//go:build cgo && (TFLITE || ALL)

package backends

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mattn/go-tflite"

	"github.com/knights-analytics/modelprobe/backends/tfliteschema"
	"github.com/knights-analytics/modelprobe/options"
)

type TFLiteModel struct {
	Model       *tflite.Model
	Interpreter *tflite.Interpreter
	Options     *tflite.InterpreterOptions
	Destroy     func() error
	reporter    *errorReporter
}

// errorReporter collects the messages the interpreter reports so they can be attached to returned errors.
type errorReporter struct {
	messages []string
	mu       sync.Mutex
}

func (r *errorReporter) report(msg string, _ interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, strings.TrimSpace(msg))
}

func (r *errorReporter) wrap(err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return err
	}
	wrapped := fmt.Errorf("%w: %s", err, strings.Join(r.messages, "; "))
	r.messages = nil
	return wrapped
}

var tfliteDataTypes = map[tflite.TensorType]DataType{
	tflite.Float32:   DataTypeFloat32,
	tflite.Int32:     DataTypeInt32,
	tflite.UInt8:     DataTypeUint8,
	tflite.Int64:     DataTypeInt64,
	tflite.String:    DataTypeString,
	tflite.Bool:      DataTypeBool,
	tflite.Int16:     DataTypeInt16,
	tflite.Complex64: DataTypeComplex64,
	tflite.Int8:      DataTypeInt8,
}

func createTFLiteModelBackend(model *Model, options *options.Options) error {
	// the flatbuffer carries the full quantization tables, the interpreter only a scalar scale and zero point
	schemaInputs, schemaOutputs, err := tfliteschema.ReadInputsOutputs(model.ModelBytes)
	if err != nil {
		return fmt.Errorf("reading TensorFlow Lite flatbuffer: %w", err)
	}

	tfliteModel := tflite.NewModel(model.ModelBytes)
	if tfliteModel == nil {
		return errors.New("TensorFlow Lite could not create a model from the file")
	}

	reporter := &errorReporter{}
	interpreterOptions := tflite.NewInterpreterOptions()
	if options.TFLiteOptions != nil && options.TFLiteOptions.NumThreads != nil {
		interpreterOptions.SetNumThread(*options.TFLiteOptions.NumThreads)
	}
	interpreterOptions.SetErrorReporter(reporter.report, nil)

	interpreter := tflite.NewInterpreter(tfliteModel, interpreterOptions)
	if interpreter == nil {
		interpreterOptions.Delete()
		tfliteModel.Delete()
		return reporter.wrap(errors.New("TensorFlow Lite could not create an interpreter"))
	}

	model.TFLiteModel = &TFLiteModel{
		Model:       tfliteModel,
		Interpreter: interpreter,
		Options:     interpreterOptions,
		reporter:    reporter,
		Destroy: func() error {
			interpreter.Delete()
			interpreterOptions.Delete()
			tfliteModel.Delete()
			return nil
		},
	}

	if status := interpreter.AllocateTensors(); status != tflite.OK {
		destroyErr := model.TFLiteModel.Destroy()
		model.TFLiteModel = nil
		return errors.Join(reporter.wrap(errors.New("allocating tensors failed")), destroyErr)
	}

	inputs := make([]InputOutputInfo, interpreter.GetInputTensorCount())
	for i := range inputs {
		inputs[i] = describeTFLiteTensor(interpreter.GetInputTensor(i), i, schemaAt(schemaInputs, i))
	}
	outputs := make([]InputOutputInfo, interpreter.GetOutputTensorCount())
	for i := range outputs {
		outputs[i] = describeTFLiteTensor(interpreter.GetOutputTensor(i), i, schemaAt(schemaOutputs, i))
	}
	model.InputsMeta = inputs
	model.OutputsMeta = outputs
	return nil
}

func schemaAt(infos []tfliteschema.TensorInfo, i int) *tfliteschema.TensorInfo {
	if i < len(infos) {
		return &infos[i]
	}
	return nil
}

func tfliteShape(tensor *tflite.Tensor) Shape {
	shape := make(Shape, tensor.NumDims())
	for d := range shape {
		shape[d] = int64(tensor.Dim(d))
	}
	return shape
}

func describeTFLiteTensor(tensor *tflite.Tensor, index int, schema *tfliteschema.TensorInfo) InputOutputInfo {
	info := InputOutputInfo{
		Index:      index,
		Name:       tensor.Name(),
		Dimensions: tfliteShape(tensor),
		DataType:   DataTypeUnknown,
	}
	if dataType, ok := tfliteDataTypes[tensor.Type()]; ok {
		info.DataType = dataType
	} else if schema != nil {
		info.DataType = DataTypeFromTFLiteSchema(schema.Type)
	}

	if schema != nil {
		info.Quantization = QuantizationFromTFLiteSchema(*schema)
	}
	if info.Quantization == nil {
		if params := tensor.QuantizationParams(); params.Scale != 0 {
			info.Quantization = &QuantizationParams{
				Scales:     []float32{float32(params.Scale)},
				ZeroPoints: []int64{int64(params.ZeroPoint)},
			}
		}
	}
	return info
}

func runTFLiteInference(model *Model, inputs []TensorValue) ([]TensorValue, error) {
	if model.TFLiteModel == nil {
		return nil, errors.New("the TensorFlow Lite model has been destroyed")
	}
	interpreter := model.TFLiteModel.Interpreter
	reporter := model.TFLiteModel.reporter

	for i, input := range inputs {
		tensor := interpreter.GetInputTensor(i)
		if tensor == nil {
			return nil, fmt.Errorf("input %d does not exist", i)
		}
		if got, want := input.Len()*input.DataType.ElementSize(), int(tensor.ByteSize()); got != want {
			return nil, fmt.Errorf("input %d (%s): buffer holds %d bytes but the tensor expects %d", i, input.Name, got, want)
		}
		if status := tensor.CopyFromBuffer(input.Data); status != tflite.OK {
			return nil, reporter.wrap(fmt.Errorf("setting input %d (%s) failed", i, input.Name))
		}
	}

	if status := interpreter.Invoke(); status != tflite.OK {
		return nil, reporter.wrap(errors.New("invoke failed"))
	}

	outputs := make([]TensorValue, len(model.OutputsMeta))
	for i, meta := range model.OutputsMeta {
		tensor := interpreter.GetOutputTensor(i)
		if tensor == nil {
			return nil, fmt.Errorf("output %d does not exist", i)
		}
		shape := tfliteShape(tensor)
		data, err := ZeroBuffer(meta.DataType, shape.NumElements())
		if err != nil {
			return nil, fmt.Errorf("output %d (%s): %w", i, meta.Name, err)
		}
		if status := tensor.CopyToBuffer(data); status != tflite.OK {
			return nil, reporter.wrap(fmt.Errorf("reading output %d (%s) failed", i, meta.Name))
		}
		outputs[i] = TensorValue{
			Data:     data,
			Name:     meta.Name,
			Shape:    shape,
			Index:    i,
			DataType: meta.DataType,
		}
	}
	return outputs, nil
}
