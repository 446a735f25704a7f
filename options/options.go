package options

import (
	"fmt"
	"runtime"
)

type Options struct {
	RuntimeOptions any
	ORTOptions     *OrtOptions
	TFLiteOptions  *TFLiteOptions
	Destroy        func() error
	Backend        string
}

func Defaults() *Options {
	_, libraryPathDefault := getDefaultLibraryPaths()
	return &Options{
		ORTOptions: &OrtOptions{
			LibraryPath: &libraryPathDefault,
		},
		TFLiteOptions: &TFLiteOptions{},
		Destroy: func() error {
			return nil
		},
	}
}

func getDefaultLibraryPaths() (string, string) {
	switch runtime.GOOS {
	case "windows":
		return `onnxruntime.dll`, `.\onnxruntime.dll`
	case "darwin":
		return "libonnxruntime.dylib", "/usr/local/lib/libonnxruntime.dylib"
	default:
		return "libonnxruntime.so", "/usr/lib/libonnxruntime.so"
	}
}

type OrtOptions struct {
	LibraryPath       *string
	Telemetry         *bool
	IntraOpNumThreads *int
	InterOpNumThreads *int
	CPUMemArena       *bool
	MemPattern        *bool
}

type TFLiteOptions struct {
	// NumThreads is handed to the interpreter options. Nil keeps the
	// TensorFlow Lite default.
	NumThreads *int
}

// WithOption is the interface for all option functions.
type WithOption func(o *Options) error

// WithOnnxLibraryPath (ORT only) Use this function to set the path to the "libonnxruntime.so", "libonnxruntime.dylib" or "onnxruntime.dll" file.
func WithOnnxLibraryPath(ortLibraryPath string) WithOption {
	return func(o *Options) error {
		if o.Backend == "ORT" {
			if ortLibraryPath == "" {
				return fmt.Errorf("the ONNX Runtime library path cannot be empty")
			}
			o.ORTOptions.LibraryPath = &ortLibraryPath
			return nil
		}
		return fmt.Errorf("WithOnnxLibraryPath is only supported for ORT backend")
	}
}

// WithTelemetry (ORT only) Enables telemetry events for the onnxruntime environment. Default is off.
func WithTelemetry() WithOption {
	return func(o *Options) error {
		if o.Backend == "ORT" {
			enabled := true
			o.ORTOptions.Telemetry = &enabled
			return nil
		}
		return fmt.Errorf("WithTelemetry is only supported for ORT backend")
	}
}

// WithIntraOpNumThreads (ORT only) Sets the number of threads used to parallelize execution within onnxruntime
// graph nodes. If unspecified, onnxruntime uses the number of physical CPU cores.
func WithIntraOpNumThreads(numThreads int) WithOption {
	return func(o *Options) error {
		if o.Backend == "ORT" {
			o.ORTOptions.IntraOpNumThreads = &numThreads
			return nil
		}
		return fmt.Errorf("WithIntraOpNumThreads is only supported for ORT backend")
	}
}

// WithInterOpNumThreads (ORT only) Sets the number of threads used to parallelize execution across separate
// onnxruntime graph nodes. If unspecified, onnxruntime uses the number of physical CPU cores.
func WithInterOpNumThreads(numThreads int) WithOption {
	return func(o *Options) error {
		if o.Backend == "ORT" {
			o.ORTOptions.InterOpNumThreads = &numThreads
			return nil
		}
		return fmt.Errorf("WithInterOpNumThreads is only supported for ORT backend")
	}
}

// WithCPUMemArena (ORT only) Enable/Disable the usage of the memory arena on CPU.
// Arena may pre-allocate memory for future usage. Default is true.
func WithCPUMemArena(enable bool) WithOption {
	return func(o *Options) error {
		if o.Backend == "ORT" {
			o.ORTOptions.CPUMemArena = &enable
			return nil
		}
		return fmt.Errorf("WithCPUMemArena is only supported for ORT backend")
	}
}

// WithMemPattern (ORT only) Enable/Disable the memory pattern optimization.
// If this is enabled memory is preallocated if all shapes are known. Default is true.
func WithMemPattern(enable bool) WithOption {
	return func(o *Options) error {
		if o.Backend == "ORT" {
			o.ORTOptions.MemPattern = &enable
			return nil
		}
		return fmt.Errorf("WithMemPattern is only supported for ORT backend")
	}
}

// WithTFLiteNumThreads (TFLITE only) Sets the number of threads the TensorFlow Lite interpreter may use.
func WithTFLiteNumThreads(numThreads int) WithOption {
	return func(o *Options) error {
		if o.Backend == "TFLITE" {
			if numThreads < 1 {
				return fmt.Errorf("the number of interpreter threads must be positive, got %d", numThreads)
			}
			o.TFLiteOptions.NumThreads = &numThreads
			return nil
		}
		return fmt.Errorf("WithTFLiteNumThreads is only supported for TFLITE backend")
	}
}

// WithNumThreads sets the thread count of whichever backend the options belong to.
// The GO backend has no thread setting and ignores it.
func WithNumThreads(numThreads int) WithOption {
	return func(o *Options) error {
		switch o.Backend {
		case "ORT":
			return WithIntraOpNumThreads(numThreads)(o)
		case "TFLITE":
			return WithTFLiteNumThreads(numThreads)(o)
		default:
			return nil
		}
	}
}
