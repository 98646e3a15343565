package epjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleDoc = `{
    "Version": {
        "Version 1": {
            "version_identifier": "22.1"
        }
    },
    "SimulationControl": {
        "SimulationControl 1": {
            "do_system_sizing_calculation": "Yes",
            "do_plant_sizing_calculation": "Yes"
        }
    },
    "Fan:VariableVolume": {
        "Fan1": {
            "maximum_flow_rate": "Autosize",
            "fan_total_efficiency": 0.70,
            "pressure_rise": 600
        }
    }
}`

func mustRead(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := Read(strings.NewReader(s))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	return doc
}

func TestRead(t *testing.T) {
	doc := mustRead(t, sampleDoc)

	want := []string{"Fan:VariableVolume", "SimulationControl", "Version"}
	if diff := cmp.Diff(want, doc.Classes()); diff != "" {
		t.Errorf("Classes() mismatch (-want +got):\n%s", diff)
	}

	obj, ok := doc.Object("Fan:VariableVolume", "Fan1")
	if !ok {
		t.Fatal("expected Fan1 to exist")
	}
	if !obj.IsAutosized("maximum_flow_rate") {
		t.Error("expected maximum_flow_rate to be autosized")
	}
	if f, ok := obj.Float("pressure_rise"); !ok || f != 600 {
		t.Errorf("pressure_rise = %v (ok=%v), want 600", f, ok)
	}
}

func TestRead_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", "{"},
		{"top-level array", "[]"},
		{"class is a string", `{"Version": "22.1"}`},
		{"object is a number", `{"Fan:VariableVolume": {"Fan1": 3}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"string identifier", `{"Version": {"Version 1": {"version_identifier": "23.2"}}}`, "23.2", false},
		{"numeric identifier", `{"Version": {"Version 1": {"version_identifier": 22.1}}}`, "22.1", false},
		{"missing class", `{}`, "", true},
		{"missing field", `{"Version": {"Version 1": {}}}`, "", true},
		{"empty identifier", `{"Version": {"Version 1": {"version_identifier": ""}}}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mustRead(t, tt.input).Version()
			if tt.wantErr {
				if !errors.Is(err, ErrMalformed) {
					t.Errorf("expected ErrMalformed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Version failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Version() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSimulationControl(t *testing.T) {
	name, obj, err := mustRead(t, sampleDoc).SimulationControl()
	if err != nil {
		t.Fatalf("SimulationControl failed: %v", err)
	}
	if name != "SimulationControl 1" {
		t.Errorf("name = %q, want %q", name, "SimulationControl 1")
	}
	if got := obj.String("do_system_sizing_calculation", ""); got != "Yes" {
		t.Errorf("do_system_sizing_calculation = %q, want Yes", got)
	}

	twice := `{"SimulationControl": {"A": {}, "B": {}}}`
	if _, _, err := mustRead(t, twice).SimulationControl(); !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed for two instances, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	if err := mustRead(t, sampleDoc).Validate(); err != nil {
		t.Errorf("Validate failed on a well-formed document: %v", err)
	}

	noControl := `{"Version": {"Version 1": {"version_identifier": "22.1"}}}`
	if err := mustRead(t, noControl).Validate(); !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed without SimulationControl, got %v", err)
	}
}

func TestSet(t *testing.T) {
	doc := mustRead(t, sampleDoc)

	old, err := doc.Set("Fan:VariableVolume", "Fan1", "maximum_flow_rate", 2.5)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if old != "Autosize" {
		t.Errorf("old value = %v, want Autosize", old)
	}

	obj, _ := doc.Object("Fan:VariableVolume", "Fan1")
	if f, ok := obj.Float("maximum_flow_rate"); !ok || f != 2.5 {
		t.Errorf("maximum_flow_rate = %v, want 2.5", f)
	}

	if _, err := doc.Set("Fan:VariableVolume", "FAN1", "maximum_flow_rate", 1.0); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown instance, got %v", err)
	}
	if _, ok := doc.Object("Fan:VariableVolume", "FAN1"); ok {
		t.Error("Set must not create instances")
	}
}

func TestRemoveClass(t *testing.T) {
	doc := mustRead(t, sampleDoc)
	if !doc.RemoveClass("Fan:VariableVolume") {
		t.Error("expected RemoveClass to report the class was present")
	}
	if doc.HasClass("Fan:VariableVolume") {
		t.Error("class still present after RemoveClass")
	}
	if doc.RemoveClass("Fan:VariableVolume") {
		t.Error("second RemoveClass should report absence")
	}
}

func TestWrite_PreservesNumbers(t *testing.T) {
	doc := mustRead(t, sampleDoc)

	var buf bytes.Buffer
	if err := doc.Write(&buf, "    "); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	out := buf.String()
	// 0.70 must not be rewritten as 0.7.
	if !strings.Contains(out, `"fan_total_efficiency": 0.70`) {
		t.Errorf("expected original number literal to survive, got:\n%s", out)
	}
	if !strings.Contains(out, "\n    \"Fan:VariableVolume\"") {
		t.Errorf("expected 4-space indentation, got:\n%s", out)
	}

	var roundTrip map[string]any
	if err := json.Unmarshal(buf.Bytes(), &roundTrip); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
}

func TestWriteFile(t *testing.T) {
	doc := mustRead(t, sampleDoc)
	path := filepath.Join(t.TempDir(), "out.epJSON")

	if err := doc.WriteFile(path, "  "); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after WriteFile")
	}

	back, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if diff := cmp.Diff(doc.Classes(), back.Classes()); diff != "" {
		t.Errorf("classes changed across write (-want +got):\n%s", diff)
	}
}

func TestClone(t *testing.T) {
	doc := mustRead(t, sampleDoc)
	cp := doc.Clone()

	if _, err := cp.Set("Fan:VariableVolume", "Fan1", "maximum_flow_rate", 9.0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	obj, _ := doc.Object("Fan:VariableVolume", "Fan1")
	if !obj.IsAutosized("maximum_flow_rate") {
		t.Error("mutating a clone changed the original")
	}
}

func TestIsAutosizeValue(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{"Autosize", true},
		{"autosize", true},
		{"AUTOCALCULATE", true},
		{" Autosize ", true},
		{"Yes", false},
		{json.Number("1.5"), false},
		{2.5, false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := IsAutosizeValue(tt.in); got != tt.want {
			t.Errorf("IsAutosizeValue(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
