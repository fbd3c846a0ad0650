package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/baalimago/agiml/pkg/agiml/models"
	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
)

type goldenFileTestCase struct {
	expect          string
	givenArgs       string
	givenStdin      string
	givenSpec       string
	wantOutExactly  string
	wantOutContains string
	wantStatusCode  int
}

// setupConfDir creates an existing, empty, config dir so that nothing is
// printed about creating it.
func setupConfDir(t *testing.T, spec string) string {
	t.Helper()
	confDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(confDir, "specs"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if spec != "" {
		if err := os.WriteFile(filepath.Join(confDir, "specs", "minimal.agiml"), []byte(spec), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	t.Setenv("AGIML_CONFIG_HOME", confDir)
	for _, k := range []string{"AGIML_ENDPOINT", "AGIML_SPEC", "AGIML_SPEC_DIR", "DEBUG"} {
		t.Setenv(k, "")
	}
	return confDir
}

func setStdin(t *testing.T, content string) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	if _, err := w.WriteString(content); err != nil {
		t.Fatalf("failed to write stdin: %v", err)
	}
	w.Close()
	oldStdin := os.Stdin
	os.Stdin = r
	t.Cleanup(func() {
		os.Stdin = oldStdin
		r.Close()
	})
}

func runGolden(t *testing.T, tc goldenFileTestCase) (string, int) {
	t.Helper()
	setupConfDir(t, tc.givenSpec)
	if tc.givenStdin != "" {
		setStdin(t, tc.givenStdin)
	}
	var gotStatusCode int
	gotStdout := testboil.CaptureStdout(t, func(t *testing.T) {
		gotStatusCode = run(strings.Split(tc.givenArgs, " "))
	})
	return gotStdout, gotStatusCode
}

func Test_goldenFile(t *testing.T) {
	tcs := []goldenFileTestCase{
		{
			expect:         "wrap from args",
			givenArgs:      "wrap draw me a hamster",
			wantOutExactly: "<message><user>draw me a hamster</user></message>\n",
		},
		{
			expect:         "wrap from stdin",
			givenArgs:      "w",
			givenStdin:     "piped text",
			wantOutExactly: "<message><user>piped text</user></message>\n",
		},
		{
			expect:         "unwrap",
			givenArgs:      "unwrap <message><assistant>hi</assistant></message>",
			wantOutExactly: "hi\n",
		},
		{
			expect:         "convert with endpoint flag",
			givenArgs:      "-e http://img convert <image>cat</image>",
			wantOutExactly: "![cat](http://img/image?prompt=cat)\n*cat*\n",
		},
		{
			expect:         "convert from stdin, with envelope",
			givenArgs:      "-endpoint https://example.org/api/generate c",
			givenStdin:     `<message><assistant>Here: <image width="256">a red fox</image></assistant></message>`,
			wantOutExactly: "Here: ![a red fox](https://example.org/api/generate/image?prompt=a%20red%20fox&width=256)\n*a red fox*\n",
		},
		{
			expect:          "settings",
			givenArgs:       "-e http://img settings",
			wantOutContains: `"endpoint": "http://img"`,
		},
		{
			expect:          "help",
			givenArgs:       "help",
			wantOutContains: "Usage: agiml [flags] <command>",
		},
		{
			expect:         "unknown command",
			givenArgs:      "frobnicate",
			wantStatusCode: 1,
		},
		{
			expect:         "mutually exclusive flags",
			givenArgs:      "-e a -endpoint b convert x",
			wantStatusCode: 1,
		},
		{
			expect:         "before without spec fails",
			givenArgs:      "before",
			givenStdin:     `{"messages":[],"userMessage":"hi"}`,
			wantStatusCode: 1,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.expect, func(t *testing.T) {
			gotStdout, gotStatusCode := runGolden(t, tc)
			testboil.FailTestIfDiff(t, gotStatusCode, tc.wantStatusCode)
			if tc.wantOutContains != "" {
				testboil.AssertStringContains(t, gotStdout, tc.wantOutContains)
			}
			if tc.wantOutExactly != "" {
				testboil.FailTestIfDiff(t, gotStdout, tc.wantOutExactly)
			}
		})
	}
}

func Test_goldenFile_BEFORE_and_AFTER(t *testing.T) {
	spec := "<message><system>You speak AGIML.</system></message>"

	stdout, status := runGolden(t, goldenFileTestCase{
		givenArgs:  "before",
		givenSpec:  spec,
		givenStdin: `{"messages":[{"role":"system","content":"Be brief."}],"userMessage":"draw a fox"}`,
	})
	testboil.FailTestIfDiff(t, status, 0)
	var before models.Conversation
	if err := json.Unmarshal([]byte(stdout), &before); err != nil {
		t.Fatalf("failed to unmarshal before output: %v, output: %v", err, stdout)
	}
	testboil.FailTestIfDiff(t, before.Messages[0].Content, "Be brief.\n\n"+spec)
	testboil.FailTestIfDiff(t, before.UserMessage, "<message><user>draw a fox</user></message>")

	stdout, status = runGolden(t, goldenFileTestCase{
		givenArgs:  "-e http://img after",
		givenSpec:  spec,
		givenStdin: `{"messages":[],"userMessage":"x","response":"<message><assistant><image>fox</image></assistant></message>"}`,
	})
	testboil.FailTestIfDiff(t, status, 0)
	var after models.Conversation
	if err := json.Unmarshal([]byte(stdout), &after); err != nil {
		t.Fatalf("failed to unmarshal after output: %v, output: %v", err, stdout)
	}
	testboil.FailTestIfDiff(t, *after.Response, "![fox](http://img/image?prompt=fox)\n*fox*")
}

func Test_goldenFile_VERSION_prints_version_and_exits_0(t *testing.T) {
	stdout, status := runGolden(t, goldenFileTestCase{givenArgs: "version"})
	testboil.FailTestIfDiff(t, status, 0)
	testboil.AssertStringContains(t, stdout, "version: ")
}
