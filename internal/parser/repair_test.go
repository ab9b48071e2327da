package parser

import "testing"

func TestRemoveTrailingCommas(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1,}`, `{"a":1}`},
		{`[1,2, ]`, `[1,2 ]`},
		{"{\"a\":[1,\n]\n,}", "{\"a\":[1\n]\n}"},
		{`{"a":"x,y"}`, `{"a":"x,y"}`},
	}
	for _, tt := range tests {
		if got := RemoveTrailingCommas(tt.in); got != tt.want {
			t.Errorf("RemoveTrailingCommas(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuoteBareKeys(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{title: "x"}`, `{"title": "x"}`},
		{`{a:1, b_2 :2}`, `{"a":1, "b_2":2}`},
		{`{"quoted": 1}`, `{"quoted": 1}`},
		{"{\n  sets: 3}", "{\n  \"sets\": 3}"},
	}
	for _, tt := range tests {
		if got := QuoteBareKeys(tt.in); got != tt.want {
			t.Errorf("QuoteBareKeys(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDoubleQuoteValues(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a": 'b'}`, `{"a": "b"}`},
		{`{"a":'b c'}`, `{"a": "b c"}`},
		{`{"a": "it's"}`, `{"a": "it's"}`},
	}
	for _, tt := range tests {
		if got := DoubleQuoteValues(tt.in); got != tt.want {
			t.Errorf("DoubleQuoteValues(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCollapseWhitespace(t *testing.T) {
	if got := CollapseWhitespace("a\n\n  b\t c"); got != "a b c" {
		t.Errorf("got %q", got)
	}
}

func TestRepairs_Order(t *testing.T) {
	want := []string{"trailing-commas", "bare-keys", "single-quotes", "whitespace"}
	if len(Repairs) != len(want) {
		t.Fatalf("expected %d passes, got %d", len(want), len(Repairs))
	}
	for i, p := range Repairs {
		if p.Name != want[i] {
			t.Errorf("pass %d = %q, want %q", i, p.Name, want[i])
		}
	}
}

func TestRepair_AllPasses(t *testing.T) {
	in := "{title: 'A',\n  tags: ['x',],\n}"
	// single quotes inside arrays are not touched: only ": '...'" values are.
	want := `{"title": "A", "tags": ['x'] }`
	if got := Repair(in); got != want {
		t.Errorf("Repair = %q, want %q", got, want)
	}
}
