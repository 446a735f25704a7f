package report

import (
	"fmt"
	"io"
	"strings"
)

var (
	doubleRule = strings.Repeat("=", 80)
	singleRule = strings.Repeat("-", 80)
)

// Text renders a Report as the plain text inspection output. Glyphs adds the
// status emoji, meant for terminals only.
type Text struct {
	Glyphs bool
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) println(line string) {
	p.printf("%s\n", line)
}

func (t Text) glyph(g string) string {
	if t.Glyphs {
		return g + " "
	}
	return ""
}

func title(backend string) string {
	switch backend {
	case "TFLITE":
		return "TFLite Model Inspection"
	case "ORT", "GO":
		return "ONNX Model Inspection"
	default:
		return "Model Inspection"
	}
}

// WriteNotFound lists every candidate path that was tried.
func (t Text) WriteNotFound(w io.Writer, attempted []string) error {
	p := &printer{w: w}
	p.printf("%sModel not found. Tried:\n", t.glyph("❌"))
	for _, path := range attempted {
		p.printf("   - %s\n", path)
	}
	return p.err
}

func (t Text) WriteLoadError(w io.Writer, err error) error {
	p := &printer{w: w}
	p.printf("%sError inspecting model: %v\n", t.glyph("❌"), err)
	return p.err
}

// WriteHeader writes the title and the model path, size and backend. It needs no loaded model.
func (t Text) WriteHeader(w io.Writer, r *Report) error {
	p := &printer{w: w}
	p.println(doubleRule)
	p.println(title(r.Backend))
	p.println(doubleRule)
	p.printf("\nModel: %s\n", r.Path)
	p.printf("Size: %.2f MB\n", r.SizeMB())
	p.printf("Backend: %s\n\n", r.Backend)
	return p.err
}

// WriteDetails writes the input and output descriptors.
func (t Text) WriteDetails(w io.Writer, r *Report) error {
	p := &printer{w: w}
	p.printf("%sINPUT DETAILS:\n", t.glyph("📥"))
	p.println(singleRule)
	for _, input := range r.Inputs {
		writeTensor(p, "Input", input)
	}
	p.printf("%sOUTPUT DETAILS:\n", t.glyph("📤"))
	p.println(singleRule)
	for _, output := range r.Outputs {
		writeTensor(p, "Output", output)
	}
	return p.err
}

func writeTensor(p *printer, kind string, tensor Tensor) {
	p.printf("%s %d:\n", kind, tensor.Index)
	p.printf("  Name: %s\n", tensor.DisplayName())
	p.printf("  Shape: %s\n", tensor.Shape)
	p.printf("  Data Type: %s\n", tensor.DataType)
	if q := tensor.Quantization; q != nil {
		p.println("  Quantization:")
		p.printf("    Scale: %v\n", q.Scales)
		p.printf("    Zero Point: %v\n", q.ZeroPoints)
		p.printf("    Quantized Dimension: %d\n", q.QuantizedDimension)
	} else {
		p.println("  Quantization: None (not quantized)")
	}
	p.println("")
}

// WriteSmokeTest writes the dummy inputs, the outputs and the outcome of the smoke test.
func (t Text) WriteSmokeTest(w io.Writer, r *Report) error {
	p := &printer{w: w}
	p.printf("%sTESTING WITH DUMMY INPUT:\n", t.glyph("🧪"))
	p.println(singleRule)
	if r.SmokeTest == nil {
		return p.err
	}
	for _, input := range r.SmokeTest.Inputs {
		p.printf("Input %d: shape=%s, dtype=%s, sample=%v\n", input.Index, input.Shape, input.DataType, input.Values)
	}
	for _, output := range r.SmokeTest.Outputs {
		p.printf("Output %d: shape=%s, dtype=%s, sample=%v\n", output.Index, output.Shape, output.DataType, output.Values)
	}
	if r.SmokeTest.Passed {
		p.printf("\n%sModel inference test successful!\n", t.glyph("✅"))
	} else {
		p.printf("\n%sInference test failed: %s\n", t.glyph("❌"), r.SmokeTest.Error)
	}
	return p.err
}

func (t Text) WriteSummary(w io.Writer, r *Report) error {
	p := &printer{w: w}
	summary := r.Summary()
	p.printf("\n%s\n", doubleRule)
	p.println("SUMMARY:")
	p.println(doubleRule)
	for _, input := range summary.Inputs {
		p.printf("Input %d: %s %s\n", input.Index, input.Shape, input.DataType)
	}
	for _, output := range summary.Outputs {
		p.printf("Output %d: %s %s\n", output.Index, output.Shape, output.DataType)
	}
	if summary.OutputScale != nil {
		p.printf("Output Scale: %v\n", *summary.OutputScale)
	}
	if summary.OutputZeroPoint != nil {
		p.printf("Output Zero Point: %d\n", *summary.OutputZeroPoint)
	}
	return p.err
}

// Write renders the whole report.
func (t Text) Write(w io.Writer, r *Report) error {
	if err := t.WriteHeader(w, r); err != nil {
		return err
	}
	if err := t.WriteDetails(w, r); err != nil {
		return err
	}
	if err := t.WriteSmokeTest(w, r); err != nil {
		return err
	}
	return t.WriteSummary(w, r)
}
