package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/google/go-cmp/cmp"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"AGIML_SPEC_DIR", "AGIML_SPEC", "AGIML_ENDPOINT", "DEBUG"} {
		t.Setenv(k, "")
	}
}

func writeConf(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %v: %v", name, err)
	}
}

func TestValidateOutputType(t *testing.T) {
	for _, v := range []OutputType{IMAGE, SPEECH} {
		if err := ValidateOutputType(v); err != nil {
			t.Errorf("expected no error for %v", v)
		}
	}
	if err := ValidateOutputType(OutputType("smell")); err == nil {
		t.Error("expected error for invalid output type")
	}
}

func TestDefault_isFresh(t *testing.T) {
	a := Default()
	a.DefaultTools[0] = "changed"
	testboil.FailTestIfDiff(t, Default().DefaultTools[0], "hamster_removal")
}

func TestAccessorsCopy(t *testing.T) {
	s := Default()
	tools := s.Tools()
	tools[0] = "changed"
	types := s.OutputTypes()
	types[0] = "changed"
	testboil.FailTestIfDiff(t, s.DefaultTools[0], "hamster_removal")
	testboil.FailTestIfDiff(t, s.SupportedOutputTypes[0], IMAGE)
}

func TestSupports(t *testing.T) {
	s := Default()
	testboil.FailTestIfDiff(t, s.Supports(IMAGE), true)
	s.SupportedOutputTypes = []OutputType{SPEECH}
	testboil.FailTestIfDiff(t, s.Supports(IMAGE), false)
}

func TestLoad(t *testing.T) {
	t.Run("first run writes defaults", func(t *testing.T) {
		clearEnv(t)
		dir := filepath.Join(t.TempDir(), ".agiml")
		got, err := Load(dir, Overrides{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := Default()
		want.SpecDir = filepath.Join(dir, "specs")
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("Load() mismatch (-want +got):\n%s", diff)
		}
		if _, err := os.Stat(filepath.Join(dir, "agimlConfig.json")); err != nil {
			t.Fatalf("expected settings file to be created: %v", err)
		}
	})

	t.Run("file overrides, unknown keys retained", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		writeConf(t, dir, "agimlConfig.json", `{
  "endpoint": "https://example.org/api/generate",
  "encode-params": false,
  "default-tools": ["python"],
  "colour": "blue"
}`)
		got, err := Load(dir, Overrides{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, got.Endpoint, "https://example.org/api/generate")
		testboil.FailTestIfDiff(t, got.EncodeParams, false)
		testboil.FailTestIfDiff(t, got.Spec, "minimal")
		if diff := cmp.Diff([]string{"python"}, got.DefaultTools); diff != "" {
			t.Fatalf("tools mismatch (-want +got):\n%s", diff)
		}
		if got.Extra["colour"] != "blue" {
			t.Fatalf("expected unknown key to be retained, got: %v", got.Extra)
		}
	})

	t.Run("yaml file", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		writeConf(t, dir, "agimlConfig.yaml", "spec: verbose\nsupported-output-types: [image]\n")
		got, err := Load(dir, Overrides{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, got.Spec, "verbose")
		testboil.FailTestIfDiff(t, got.Supports(SPEECH), false)
	})

	t.Run("env then overrides", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("AGIML_ENDPOINT", "http://env")
		t.Setenv("AGIML_SPEC", "from-env")
		dir := t.TempDir()
		got, err := Load(dir, Overrides{Spec: "from-flag"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, got.Endpoint, "http://env")
		testboil.FailTestIfDiff(t, got.Spec, "from-flag")
	})

	t.Run("invalid output type", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		writeConf(t, dir, "agimlConfig.json", `{"supported-output-types": ["smell"]}`)
		_, err := Load(dir, Overrides{})
		if err == nil {
			t.Fatal("expected error")
		}
		testboil.AssertStringContains(t, err.Error(), "invalid output type")
	})
}

func TestMarshalJSON_includesExtra(t *testing.T) {
	s := Default()
	s.Extra = map[string]any{"colour": "blue", "endpoint": "shadowed"}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := string(b)
	testboil.AssertStringContains(t, got, `"colour":"blue"`)
	testboil.AssertStringContains(t, got, `"endpoint":"`+DefaultEndpoint+`"`)
	if strings.Contains(got, "shadowed") {
		t.Fatalf("extra key should not shadow known key: %v", got)
	}
}
