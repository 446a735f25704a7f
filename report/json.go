package report

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

// WriteJSON writes the report and its summary as one indented JSON document.
func WriteJSON(w io.Writer, r *Report) error {
	encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(struct {
		*Report
		Summary Summary `json:"summary"`
	}{r, r.Summary()})
}

// Failure is written instead of a report when no model could be inspected.
type Failure struct {
	Error     string   `json:"error"`
	Path      string   `json:"model_path,omitempty"`
	Backend   string   `json:"backend,omitempty"`
	Attempted []string `json:"attempted,omitempty"`
	SizeBytes int64    `json:"size_bytes,omitempty"`
}

func WriteJSONFailure(w io.Writer, failure Failure) error {
	encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(failure)
}
