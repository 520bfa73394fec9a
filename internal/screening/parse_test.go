package screening

import (
	"encoding/json"
	"testing"
)

func TestParseSection(t *testing.T) {
	def := json.RawMessage(`{"d":true}`)
	cases := []struct {
		name       string
		raw        string
		expectJSON bool
		want       string
		fallback   bool
	}{
		{name: "plain json", raw: `{"a":1}`, expectJSON: true, want: `{"a":1}`},
		{name: "fenced json", raw: "```json\n{\"a\":1}\n```", expectJSON: true, want: `{"a":1}`},
		{name: "bare fence", raw: "```\n{\"a\":1}\n```", expectJSON: true, want: `{"a":1}`},
		{name: "single line fence", raw: "```{\"a\":1}```", expectJSON: true, want: `{"a":1}`},
		{name: "fence inside prose", raw: "Here you go:\n```json\n{\"a\":1}\n```\nThanks.", expectJSON: true, want: `{"a":1}`},
		{name: "malformed", raw: `{"a":`, expectJSON: true, want: `{"d":true}`, fallback: true},
		{name: "empty", raw: "   ", expectJSON: true, want: `{"d":true}`, fallback: true},
		{name: "text", raw: "  Acme makes \"widgets\".  ", want: `{"text":"Acme makes \"widgets\"."}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := ParseSection(tc.raw, tc.expectJSON, def)
			if res.Fallback != tc.fallback {
				t.Fatalf("expected fallback=%v, got %v (err=%v)", tc.fallback, res.Fallback, res.Err)
			}
			if (res.Err != nil) != tc.fallback {
				t.Fatalf("error should be set only on fallback, got %v", res.Err)
			}
			if string(res.Data) != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, res.Data)
			}
		})
	}
}
