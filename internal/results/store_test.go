package results_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nvandessel/hardsize/internal/results"
	"github.com/nvandessel/hardsize/internal/results/resultstest"
)

var fixtureRows = []results.Row{
	{Class: "Fan:VariableVolume", Name: "FAN1", Description: "Design Size Maximum Flow Rate", Value: 2.5},
	{Class: "Fan:VariableVolume", Name: "FAN2", Description: "Design Size Maximum Flow Rate", Value: 1.25},
	{Class: "Coil:Heating:Electric", Name: "Reheat Coil 1", Description: "Design Size Nominal Capacity", Value: 4200},
	{Class: "Coil:Heating:Electric", Name: "REHEAT COIL 1", Description: "Design Size Nominal Capacity", Value: 9999},
	{Class: "AirLoopHVAC", Name: "VAV Sys 1", Description: "Design Supply Air Flow Rate", Value: 3.1},
	{Class: "AirLoopHVAC", Name: "VAV Sys 1", Description: "Sum of Air Terminal Maximum Flow Rates", Value: 3.0},
	{Class: "Fan:OnOff", Name: "Kühler Fan", Description: "Design Size Maximum Flow Rate", Value: 0.4},
}

// storeFactories builds each Store implementation over the same rows so the
// behavior contract is checked once for both.
var storeFactories = map[string]func(t *testing.T) results.Store{
	"memory": func(t *testing.T) results.Store {
		return results.NewMemoryStore(fixtureRows...)
	},
	"sqlite": func(t *testing.T) results.Store {
		t.Helper()
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "in.sql")
		if err := resultstest.WriteSQLite(ctx, path, fixtureRows...); err != nil {
			t.Fatalf("WriteSQLite failed: %v", err)
		}
		s, err := results.Open(ctx, path)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		return s
	},
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()

	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			defer s.Close()

			classes, err := s.ComponentClasses(ctx)
			if err != nil {
				t.Fatalf("ComponentClasses failed: %v", err)
			}
			wantClasses := []string{"AirLoopHVAC", "Coil:Heating:Electric", "Fan:OnOff", "Fan:VariableVolume"}
			if diff := cmp.Diff(wantClasses, classes); diff != "" {
				t.Errorf("ComponentClasses mismatch (-want +got):\n%s", diff)
			}

			names, err := s.ComponentNames(ctx, "Fan:VariableVolume")
			if err != nil {
				t.Fatalf("ComponentNames failed: %v", err)
			}
			if diff := cmp.Diff([]string{"FAN1", "FAN2"}, names); diff != "" {
				t.Errorf("ComponentNames mismatch (-want +got):\n%s", diff)
			}

			// Names come back upper-cased and deduplicated.
			names, _ = s.ComponentNames(ctx, "Coil:Heating:Electric")
			if diff := cmp.Diff([]string{"REHEAT COIL 1"}, names); diff != "" {
				t.Errorf("ComponentNames mismatch (-want +got):\n%s", diff)
			}

			// Only ASCII letters are upper-cased.
			names, _ = s.ComponentNames(ctx, "Fan:OnOff")
			if diff := cmp.Diff([]string{"KüHLER FAN"}, names); diff != "" {
				t.Errorf("ComponentNames mismatch (-want +got):\n%s", diff)
			}
			if v, err := s.Value(ctx, "Fan:OnOff", "KüHLER FAN", "Design Size Maximum Flow Rate"); err != nil || v != 0.4 {
				t.Errorf("Value = %v, %v, want 0.4", v, err)
			}

			descs, err := s.FieldDescriptions(ctx, "AirLoopHVAC", "VAV SYS 1")
			if err != nil {
				t.Fatalf("FieldDescriptions failed: %v", err)
			}
			wantDescs := []string{"Design Supply Air Flow Rate", "Sum of Air Terminal Maximum Flow Rates"}
			if diff := cmp.Diff(wantDescs, descs); diff != "" {
				t.Errorf("FieldDescriptions mismatch (-want +got):\n%s", diff)
			}

			v, err := s.Value(ctx, "Fan:VariableVolume", "FAN1", "Design Size Maximum Flow Rate")
			if err != nil {
				t.Fatalf("Value failed: %v", err)
			}
			if v != 2.5 {
				t.Errorf("Value = %v, want 2.5", v)
			}

			// Duplicate rows: the first one wins.
			v, _ = s.Value(ctx, "Coil:Heating:Electric", "REHEAT COIL 1", "Design Size Nominal Capacity")
			if v != 4200 {
				t.Errorf("Value = %v, want first row 4200", v)
			}

			_, err = s.Value(ctx, "Fan:VariableVolume", "FAN3", "Design Size Maximum Flow Rate")
			if !errors.Is(err, results.ErrValueNotFound) {
				t.Errorf("expected ErrValueNotFound, got %v", err)
			}

			// Class, name and description match exactly.
			if _, err := s.Value(ctx, "Fan:VariableVolume", "Fan1", "Design Size Maximum Flow Rate"); !errors.Is(err, results.ErrValueNotFound) {
				t.Errorf("name match must be exact, got %v", err)
			}
			if descs, _ := s.FieldDescriptions(ctx, "AirLoopHVAC", "vav sys 1"); len(descs) != 0 {
				t.Errorf("name match must be exact, got %v", descs)
			}
			if names, _ := s.ComponentNames(ctx, "fan:variablevolume"); len(names) != 0 {
				t.Errorf("class match must be exact, got %v", names)
			}
			if _, err := s.Value(ctx, "Fan:VariableVolume", "FAN1", "design size maximum flow rate"); !errors.Is(err, results.ErrValueNotFound) {
				t.Errorf("description match must be exact, got %v", err)
			}
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	if _, err := results.Open(ctx, filepath.Join(dir, "missing.sql")); err == nil {
		t.Error("expected error for missing file")
	}

	if _, err := results.Open(ctx, dir); err == nil {
		t.Error("expected error for a directory")
	}

	notSQLite := filepath.Join(dir, "garbage.sql")
	if err := os.WriteFile(notSQLite, []byte("not a database"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := results.Open(ctx, notSQLite); err == nil {
		t.Error("expected error for a non-SQLite file")
	}
}

func TestOpen_MissingTable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "empty.sql")

	// An empty ComponentSizes table is still a valid store.
	if err := resultstest.WriteSQLite(ctx, path); err != nil {
		t.Fatalf("WriteSQLite failed: %v", err)
	}
	s, err := results.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open failed on empty table: %v", err)
	}
	s.Close()

	other := filepath.Join(t.TempDir(), "other.sql")
	if err := resultstest.WriteEmptySQLite(ctx, other); err != nil {
		t.Fatalf("WriteEmptySQLite failed: %v", err)
	}
	if _, err := results.Open(ctx, other); err == nil {
		t.Error("expected error when ComponentSizes is missing")
	}
}

func TestOpen_PathNeedsEscaping(t *testing.T) {
	ctx := context.Background()
	row := results.Row{Class: "Fan:VariableVolume", Name: "FAN1", Description: "Design Size Maximum Flow Rate", Value: 2.5}

	for _, dir := range []string{"plain", "Run #3", "pct%20x", "50% oversized"} {
		t.Run(dir, func(t *testing.T) {
			parent := filepath.Join(t.TempDir(), dir)
			if err := os.MkdirAll(parent, 0755); err != nil {
				t.Fatalf("MkdirAll failed: %v", err)
			}
			path := filepath.Join(parent, "office.sql")
			if err := resultstest.WriteSQLite(ctx, path, row); err != nil {
				t.Fatalf("WriteSQLite failed: %v", err)
			}

			s, err := results.Open(ctx, path)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer s.Close()

			v, err := s.Value(ctx, row.Class, row.Name, row.Description)
			if err != nil {
				t.Fatalf("Value failed: %v", err)
			}
			if v != 2.5 {
				t.Errorf("Value = %v, want 2.5", v)
			}
		})
	}
}

func TestEngineName(t *testing.T) {
	tests := map[string]string{
		"Fan1":          "FAN1",
		"vav sys 1":     "VAV SYS 1",
		"Kühler Fan":    "KüHLER FAN",
		"Lüftung Süd 2": "LüFTUNG SüD 2",
		"":              "",
	}
	for in, want := range tests {
		if got := results.EngineName(in); got != want {
			t.Errorf("EngineName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMemoryStore_Rows(t *testing.T) {
	s := results.NewMemoryStore(results.Row{Class: "Fan:OnOff", Name: "Supply Fan", Description: "d", Value: 1})
	rows := s.Rows()
	if len(rows) != 1 || rows[0].Name != "SUPPLY FAN" {
		t.Errorf("expected upper-cased name, got %+v", rows)
	}
}
