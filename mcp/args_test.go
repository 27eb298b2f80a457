package mcp

import "testing"

func TestStringArg(t *testing.T) {
	args := map[string]any{"name": "mouse", "empty": "", "count": 3.0}

	if got := StringArg(args, "name", "x"); got != "mouse" {
		t.Errorf("StringArg(name) = %q", got)
	}
	if got := StringArg(args, "empty", "fallback"); got != "fallback" {
		t.Errorf("StringArg(empty) = %q", got)
	}
	if got := StringArg(args, "missing", "fallback"); got != "fallback" {
		t.Errorf("StringArg(missing) = %q", got)
	}
	if got := StringArg(args, "count", "fallback"); got != "fallback" {
		t.Errorf("StringArg(non-string) = %q", got)
	}
}

func TestNumberArgs(t *testing.T) {
	args := map[string]any{"price": 29.99, "id": 7.0, "name": "x"}

	if v, ok := NumberArg(args, "price"); !ok || v != 29.99 {
		t.Errorf("NumberArg(price) = %v, %v", v, ok)
	}
	if _, ok := NumberArg(args, "name"); ok {
		t.Error("NumberArg accepted a string")
	}
	if v, ok := IntArg(args, "id"); !ok || v != 7 {
		t.Errorf("IntArg(id) = %v, %v", v, ok)
	}
	if _, ok := IntArg(args, "missing"); ok {
		t.Error("IntArg accepted a missing key")
	}
}
