package report

import (
	"math"
	"strconv"
	"time"

	"github.com/knights-analytics/modelprobe/backends"
)

// SampleSize is the number of leading values shown for every dummy input and output.
const SampleSize = 5

// Tensor is the reported form of one input or output descriptor.
type Tensor struct {
	Quantization *backends.QuantizationParams `json:"quantization"`
	Name         string                       `json:"name"`
	Shape        backends.Shape               `json:"shape"`
	Index        int                          `json:"index"`
	DataType     backends.DataType            `json:"dtype"`
}

// DisplayName is the tensor name, or N/A for unnamed tensors.
func (t Tensor) DisplayName() string {
	if t.Name == "" {
		return "N/A"
	}
	return t.Name
}

// Sample is the shape, dtype and leading values of a tensor used or produced by the smoke test.
type Sample struct {
	Name     string            `json:"name"`
	Shape    backends.Shape    `json:"shape"`
	Values   []any             `json:"sample"`
	Index    int               `json:"index"`
	DataType backends.DataType `json:"dtype"`
}

type SmokeTest struct {
	Error    string        `json:"error,omitempty"`
	Inputs   []Sample      `json:"inputs"`
	Outputs  []Sample      `json:"outputs"`
	Duration time.Duration `json:"duration_ns"`
	Passed   bool          `json:"passed"`
}

// Report gathers everything printed about one model.
type Report struct {
	SmokeTest *SmokeTest `json:"smoke_test,omitempty"`
	Path      string     `json:"model_path"`
	Backend   string     `json:"backend"`
	Inputs    []Tensor   `json:"inputs"`
	Outputs   []Tensor   `json:"outputs"`
	SizeBytes int64      `json:"size_bytes"`
}

// Summary repeats the shape and dtype of every tensor, plus the first quantization
// scale and zero point of output 0 when that output is quantized.
type Summary struct {
	OutputScale     *float32 `json:"output_scale,omitempty"`
	OutputZeroPoint *int64   `json:"output_zero_point,omitempty"`
	Inputs          []Tensor `json:"inputs"`
	Outputs         []Tensor `json:"outputs"`
}

func New(model *backends.Model) *Report {
	r := NewHeader(model.Path, model.Backend, model.Size)
	r.Describe(model)
	return r
}

// NewHeader starts a report for a model file that has not been loaded yet.
func NewHeader(path, backend string, sizeBytes int64) *Report {
	return &Report{
		Path:      path,
		Backend:   backend,
		SizeBytes: sizeBytes,
	}
}

// Describe records the input and output descriptors of the loaded model.
func (r *Report) Describe(model *backends.Model) {
	r.SizeBytes = model.Size
	r.Inputs = tensors(model.InputsMeta)
	r.Outputs = tensors(model.OutputsMeta)
}

func tensors(infos []backends.InputOutputInfo) []Tensor {
	result := make([]Tensor, len(infos))
	for i, info := range infos {
		result[i] = Tensor{
			Index:    info.Index,
			Name:     info.Name,
			Shape:    info.Dimensions,
			DataType: info.DataType,
		}
		if info.IsQuantized() {
			result[i].Quantization = info.Quantization
		}
	}
	return result
}

func samples(values []backends.TensorValue) []Sample {
	result := make([]Sample, len(values))
	for i, value := range values {
		sample := value.Sample(SampleSize)
		for j := range sample {
			sample[j] = encodable(sample[j])
		}
		result[i] = Sample{
			Index:    value.Index,
			Name:     value.Name,
			Shape:    value.Shape,
			DataType: value.DataType,
			Values:   sample,
		}
	}
	return result
}

// encodable replaces NaN and the infinities, which JSON cannot hold, by NaN, +Inf and -Inf strings.
func encodable(value any) any {
	var f float64
	switch v := value.(type) {
	case float32:
		f = float64(v)
	case float64:
		f = v
	default:
		return value
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return value
}

// SizeMB is the model file size in mebibytes.
func (r *Report) SizeMB() float64 {
	return float64(r.SizeBytes) / (1024 * 1024)
}

// SetSmokeTest records the outcome of the zero input inference. err is nil when it passed.
func (r *Report) SetSmokeTest(inputs, outputs []backends.TensorValue, duration time.Duration, err error) {
	r.SmokeTest = &SmokeTest{
		Passed:   err == nil,
		Inputs:   samples(inputs),
		Outputs:  samples(outputs),
		Duration: duration,
	}
	if err != nil {
		r.SmokeTest.Error = err.Error()
	}
}

func (r *Report) Summary() Summary {
	summary := Summary{
		Inputs:  r.Inputs,
		Outputs: r.Outputs,
	}
	if len(r.Outputs) == 0 || r.Outputs[0].Quantization == nil {
		return summary
	}
	quantization := r.Outputs[0].Quantization
	if len(quantization.Scales) > 0 {
		summary.OutputScale = &quantization.Scales[0]
	}
	if len(quantization.ZeroPoints) > 0 {
		summary.OutputZeroPoint = &quantization.ZeroPoints[0]
	}
	return summary
}
