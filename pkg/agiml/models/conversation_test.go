package models

import (
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
)

func TestFirstSystemMessage(t *testing.T) {
	t.Run("finds first of several", func(t *testing.T) {
		c := Conversation{Messages: []Message{
			{Role: RoleUser, Content: "hi"},
			{Role: RoleSystem, Content: "first"},
			{Role: RoleSystem, Content: "second"},
		}}
		msg, idx, err := c.FirstSystemMessage()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, idx, 1)
		testboil.FailTestIfDiff(t, msg.Content, "first")
	})

	t.Run("errors when absent", func(t *testing.T) {
		c := Conversation{Messages: []Message{{Role: RoleUser, Content: "hi"}}}
		_, idx, err := c.FirstSystemMessage()
		if err == nil {
			t.Fatal("expected error")
		}
		testboil.FailTestIfDiff(t, idx, -1)
	})
}

func TestHasResponse(t *testing.T) {
	empty := ""
	full := "hello"
	cases := map[string]struct {
		resp *string
		want bool
	}{
		"nil":   {nil, false},
		"empty": {&empty, false},
		"set":   {&full, true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := Conversation{Response: tc.resp}
			testboil.FailTestIfDiff(t, c.HasResponse(), tc.want)
		})
	}
}

func TestClone_doesNotAlias(t *testing.T) {
	resp := "r"
	orig := Conversation{
		Messages: []Message{{Role: RoleSystem, Content: "s"}},
		Metadata: map[string]any{"k": "v"},
		Response: &resp,
	}
	cl := orig.Clone()
	cl.Messages[0].Content = "changed"
	cl.Metadata["k"] = "changed"
	*cl.Response = "changed"

	testboil.FailTestIfDiff(t, orig.Messages[0].Content, "s")
	if orig.Metadata["k"] != "v" {
		t.Fatalf("metadata aliased, got: %v", orig.Metadata["k"])
	}
	testboil.FailTestIfDiff(t, *orig.Response, "r")
}
