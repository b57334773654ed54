package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteJSONSetsContentTypeAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"a": "b"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}
	if !strings.Contains(rec.Body.String(), `"a":"b"`) {
		t.Errorf("body = %q, want it to contain %q", rec.Body.String(), `"a":"b"`)
	}
}

func TestWriteErrorWrapsMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, "bad input")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "bad input") {
		t.Errorf("body = %q, want it to contain %q", rec.Body.String(), "bad input")
	}
}

func TestSetOutputFormatRecognizesValidValues(t *testing.T) {
	defer SetOutputFormat("yaml")

	SetOutputFormat("json")
	if GetOutputFormat() != OutputFormatJSON {
		t.Errorf("GetOutputFormat() = %v, want %v", GetOutputFormat(), OutputFormatJSON)
	}
	SetOutputFormat("yaml")
	if GetOutputFormat() != OutputFormatYAML {
		t.Errorf("GetOutputFormat() = %v, want %v", GetOutputFormat(), OutputFormatYAML)
	}
}

func TestSetOutputFormatFallsBackToDefaultOnUnknown(t *testing.T) {
	defer SetOutputFormat("yaml")

	SetOutputFormat("json")
	SetOutputFormat("xml")
	if GetOutputFormat() != DefaultOutput {
		t.Errorf("GetOutputFormat() = %v, want default %v", GetOutputFormat(), DefaultOutput)
	}
}

func TestOutputToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := OutputTo(&buf, OutputFormatJSON, map[string]int{"count": 3}); err != nil {
		t.Fatalf("OutputTo: %v", err)
	}
	if !strings.Contains(buf.String(), `"count": 3`) {
		t.Errorf("output = %q, want it to contain an indented JSON field", buf.String())
	}
}

func TestOutputToYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := OutputTo(&buf, OutputFormatYAML, map[string]int{"count": 3}); err != nil {
		t.Fatalf("OutputTo: %v", err)
	}
	if !strings.Contains(buf.String(), "count: 3") {
		t.Errorf("output = %q, want it to contain %q", buf.String(), "count: 3")
	}
}

func TestOutputToUnknownFormatErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := OutputTo(&buf, OutputFormat("xml"), nil); err == nil {
		t.Error("expected an error for an unrecognized output format")
	}
}
