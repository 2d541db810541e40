// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package spec

import (
	"errors"
	"testing"
)

func TestParseKind_Synonyms(t *testing.T) {
	cases := map[string]Kind{
		"flag":     KindFlag,
		"bool":     KindFlag,
		"BOOLEAN":  KindFlag,
		"string":   KindString,
		"text":     KindString,
		"enum":     KindEnum,
		"choice":   KindEnum,
		"select":   KindEnum,
		"secret":   KindSecret,
		"password": KindSecret,
		"token":    KindSecret,
		"path":     KindPath,
		"file":     KindPath,
		"dir":      KindPath,
		"numeric":  KindNumeric,
		"int":      KindNumeric,
		"float":    KindNumeric,
		"number":   KindNumeric,
		"whatever": KindString, // unknown defaults to string
	}

	for in, want := range cases {
		if got := ParseKind(in); got != want {
			t.Errorf("ParseKind(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDecode_ValidSpec(t *testing.T) {
	data := []byte(`{
		"identity": "grep",
		"description": "Search for patterns",
		"fields": [
			{"name": "pattern", "kind": "string", "required": true, "positional": true, "order": 0},
			{"name": "--color", "kind": "enum", "choices": ["auto", "always", "never"]},
			{"name": "--ignore-case", "short_name": "-i", "kind": "flag"}
		],
		"dangerous": false,
		"examples": ["grep -i err log.txt"]
	}`)

	s, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if s.Identity != "grep" {
		t.Errorf("identity = %q", s.Identity)
	}
	if len(s.Fields) != 3 {
		t.Fatalf("got %d fields, want 3", len(s.Fields))
	}
	if !s.Fields[0].Positional || !s.Fields[0].Required {
		t.Error("positional required field decoded wrong")
	}
	if got := s.Fields[2].Label(); got != "-i, --ignore-case" {
		t.Errorf("Label() = %q", got)
	}
}

func TestDecode_ScalarDrift(t *testing.T) {
	// Models emit false/numbers where strings belong; both must decode.
	data := []byte(`{
		"identity": "head",
		"fields": [
			{"name": "--lines", "kind": "int", "default": 10, "help": false}
		]
	}`)

	s, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	f := s.Field("--lines")
	if f == nil {
		t.Fatal("field missing")
	}
	if f.Kind != KindNumeric {
		t.Errorf("kind = %v, want numeric", f.Kind)
	}
	if f.Default != "10" {
		t.Errorf("default = %q, want \"10\"", f.Default)
	}
	if f.Help != "" {
		t.Errorf("help = %q, want empty", f.Help)
	}
}

func TestDecode_RequiredFlagDemoted(t *testing.T) {
	data := []byte(`{
		"identity": "rm",
		"fields": [{"name": "--force", "kind": "flag", "required": true}]
	}`)

	s, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if s.Fields[0].Required {
		t.Error("required flag was not demoted")
	}
}

func TestValidate_DuplicateNames(t *testing.T) {
	s := &CommandSpec{
		Identity: "x",
		Fields: []FieldSpec{
			{Name: "--out"},
			{Name: "--out"},
		},
	}
	err := s.Validate()
	if err == nil {
		t.Fatal("expected error for duplicate names")
	}
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("error does not match ErrMalformed: %v", err)
	}
}

func TestValidate_EnumWithoutChoices(t *testing.T) {
	s := &CommandSpec{
		Identity: "x",
		Fields:   []FieldSpec{{Name: "--mode", Kind: KindEnum}},
	}
	if s.Validate() == nil {
		t.Fatal("expected error for enum without choices")
	}
}

func TestValidate_DuplicatePositionalOrder(t *testing.T) {
	s := &CommandSpec{
		Identity: "cp",
		Fields: []FieldSpec{
			{Name: "src", Positional: true, Order: 0},
			{Name: "dst", Positional: true, Order: 0},
		},
	}
	if s.Validate() == nil {
		t.Fatal("expected error for duplicate positional order")
	}
}

func TestValidate_EmptyIdentity(t *testing.T) {
	s := &CommandSpec{}
	if s.Validate() == nil {
		t.Fatal("expected error for empty identity")
	}
}

func TestPositionals_SortedByOrder(t *testing.T) {
	s := &CommandSpec{
		Identity: "cp",
		Fields: []FieldSpec{
			{Name: "dst", Positional: true, Order: 1},
			{Name: "--verbose", Kind: KindFlag},
			{Name: "src", Positional: true, Order: 0},
		},
	}
	pos := s.Positionals()
	if len(pos) != 2 || pos[0].Name != "src" || pos[1].Name != "dst" {
		t.Errorf("Positionals() order wrong: %+v", pos)
	}
	opts := s.Options()
	if len(opts) != 1 || opts[0].Name != "--verbose" {
		t.Errorf("Options() wrong: %+v", opts)
	}
}

func TestPositionals_SharedByReference(t *testing.T) {
	s := &CommandSpec{
		Identity: "cp",
		Fields:   []FieldSpec{{Name: "src", Positional: true}},
	}
	s.Positionals()[0].Help = "source path"
	if s.Fields[0].Help != "source path" {
		t.Error("Positionals() returned copies instead of references")
	}
}

func TestIsSecret_FailClosed(t *testing.T) {
	cases := []struct {
		field FieldSpec
		want  bool
	}{
		{FieldSpec{Name: "--password", Kind: KindSecret}, true},
		{FieldSpec{Name: "--token", Kind: KindString, Sensitive: true}, true},
		{FieldSpec{Name: "--out", Kind: KindString}, false},
		// Sensitive=false never clears the secret kind.
		{FieldSpec{Name: "--key", Kind: KindSecret, Sensitive: false}, true},
	}
	for _, c := range cases {
		if got := c.field.IsSecret(); got != c.want {
			t.Errorf("IsSecret(%s) = %v, want %v", c.field.Name, got, c.want)
		}
	}
}

func TestArgv0(t *testing.T) {
	s := &CommandSpec{Identity: "git commit"}
	argv := s.Argv0()
	if len(argv) != 2 || argv[0] != "git" || argv[1] != "commit" {
		t.Errorf("Argv0() = %v", argv)
	}
}
