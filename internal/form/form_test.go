// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package form

import (
	"testing"

	"github.com/jeranaias/quocli/internal/spec"
)

func sampleSpec() *spec.CommandSpec {
	return &spec.CommandSpec{
		Identity:    "deploy",
		Description: "deploy a service",
		Fields: []spec.FieldSpec{
			{Name: "service", Kind: spec.KindString, Positional: true, Order: 0, Required: true},
			{Name: "region", Kind: spec.KindEnum, Choices: []string{"us", "eu", "ap"}, Required: true},
			{Name: "tier", Kind: spec.KindEnum, Choices: []string{"dev", "prod"}},
			{Name: "replicas", Kind: spec.KindNumeric, Default: "1"},
			{Name: "verbose", Kind: spec.KindFlag},
			{Name: "api-token", Kind: spec.KindSecret, Required: true},
		},
	}
}

func TestNewOrdersPositionalsFirst(t *testing.T) {
	f := New(sampleSpec(), nil)
	fields := f.Fields()

	if fields[0].Spec.Name != "service" {
		t.Fatalf("first field = %q, want positional service", fields[0].Spec.Name)
	}
	if got := len(fields); got != 6 {
		t.Fatalf("field count = %d, want 6", got)
	}
	if f.State() != StateNavigating {
		t.Fatalf("initial state = %v, want navigating", f.State())
	}
}

func TestNewAppliesPrefillAndDefaults(t *testing.T) {
	f := New(sampleSpec(), map[string]string{
		"service":   "web",
		"api-token": "leaked", // sensitive: must be ignored
		"region":    "mars",   // not a valid choice: must be ignored
		"replicas":  "3",      // overrides the default
	})

	values := f.Values()
	if values["service"] != "web" {
		t.Errorf("service = %q, want web", values["service"])
	}
	if values["api-token"] != "" {
		t.Errorf("sensitive pre-fill accepted: %q", values["api-token"])
	}
	if values["region"] != "" {
		t.Errorf("invalid enum pre-fill accepted: %q", values["region"])
	}
	if values["replicas"] != "3" {
		t.Errorf("replicas = %q, want prefill 3", values["replicas"])
	}
}

func TestNavigationClamps(t *testing.T) {
	f := New(sampleSpec(), nil)

	f.Prev()
	if f.Cursor() != 0 {
		t.Fatalf("Prev at top moved cursor to %d", f.Cursor())
	}
	f.Last()
	last := f.Cursor()
	f.Next()
	if f.Cursor() != last {
		t.Fatalf("Next at bottom moved cursor to %d", f.Cursor())
	}
	f.First()
	if f.Cursor() != 0 {
		t.Fatalf("First moved cursor to %d", f.Cursor())
	}
}

func TestFlagToggle(t *testing.T) {
	f := New(sampleSpec(), nil)
	moveTo(t, f, "verbose")

	f.Activate()
	if f.Current().Value != FlagSet {
		t.Fatalf("toggle on: value = %q", f.Current().Value)
	}
	if f.State() != StateNavigating {
		t.Fatalf("flag activation changed state to %v", f.State())
	}
	f.Activate()
	if f.Current().Value != "" {
		t.Fatalf("toggle off: value = %q", f.Current().Value)
	}
}

func TestRequiredEnumWraps(t *testing.T) {
	f := New(sampleSpec(), nil)
	moveTo(t, f, "region")

	want := []string{"us", "eu", "ap", "us"}
	for i, w := range want {
		f.Activate()
		if got := f.Current().Value; got != w {
			t.Fatalf("cycle %d = %q, want %q", i, got, w)
		}
	}
}

func TestOptionalEnumCyclesThroughEmpty(t *testing.T) {
	f := New(sampleSpec(), nil)
	moveTo(t, f, "tier")

	want := []string{"dev", "prod", "", "dev"}
	for i, w := range want {
		f.Activate()
		if got := f.Current().Value; got != w {
			t.Fatalf("cycle %d = %q, want %q", i, got, w)
		}
	}
}

func TestEnumCycleBack(t *testing.T) {
	f := New(sampleSpec(), nil)
	moveTo(t, f, "region")

	f.CycleBack()
	if got := f.Current().Value; got != "ap" {
		t.Fatalf("back from empty on required enum = %q, want ap", got)
	}
	f.CycleBack()
	if got := f.Current().Value; got != "eu" {
		t.Fatalf("second back = %q, want eu", got)
	}
}

func TestEditCommitAndCancel(t *testing.T) {
	f := New(sampleSpec(), nil)
	moveTo(t, f, "service")

	f.Activate()
	if f.State() != StateEditing {
		t.Fatalf("state after activate = %v, want editing", f.State())
	}
	f.SetBuffer("api")
	if !f.Commit() {
		t.Fatal("commit of valid value failed")
	}
	if f.Current().Value != "api" || f.State() != StateNavigating {
		t.Fatalf("after commit: value=%q state=%v", f.Current().Value, f.State())
	}

	f.Activate()
	if f.Buffer() != "api" {
		t.Fatalf("buffer not seeded from value: %q", f.Buffer())
	}
	f.SetBuffer("scratch")
	f.CancelEdit()
	if f.Current().Value != "api" {
		t.Fatalf("cancel kept buffer: %q", f.Current().Value)
	}
}

func TestNumericCommitRejectsGarbage(t *testing.T) {
	f := New(sampleSpec(), nil)
	moveTo(t, f, "replicas")

	f.Activate()
	f.SetBuffer("lots")
	if f.Commit() {
		t.Fatal("non-numeric value committed")
	}
	if f.State() != StateEditing {
		t.Fatalf("rejection left state %v, want editing", f.State())
	}
	if f.Current().Err == "" {
		t.Fatal("rejection set no field error")
	}

	f.SetBuffer("4")
	if !f.Commit() {
		t.Fatal("numeric value rejected")
	}
	if f.Current().Err != "" {
		t.Fatalf("error not cleared: %q", f.Current().Err)
	}
}

func TestRequestExecuteGatesOnRequired(t *testing.T) {
	f := New(sampleSpec(), nil)
	f.Last()

	f.RequestExecute()
	if f.State() != StateNavigating {
		t.Fatalf("state = %v, want navigating after refusal", f.State())
	}
	if f.Current().Spec.Name != "service" {
		t.Fatalf("cursor on %q, want first missing field service", f.Current().Spec.Name)
	}
	if f.Message() == "" {
		t.Fatal("refusal set no message")
	}
}

func fillRequired(t *testing.T, f *Form) {
	t.Helper()
	moveTo(t, f, "service")
	f.Activate()
	f.SetBuffer("web")
	f.Commit()
	moveTo(t, f, "region")
	f.Activate() // us
	moveTo(t, f, "api-token")
	f.Activate()
	f.SetBuffer("s3cret")
	f.Commit()
}

func TestRequestExecuteCompletes(t *testing.T) {
	f := New(sampleSpec(), nil)
	fillRequired(t, f)

	f.RequestExecute()
	if f.State() != StateDone || f.Outcome() != OutcomeExecute {
		t.Fatalf("state=%v outcome=%v, want done/execute", f.State(), f.Outcome())
	}
}

func TestDangerousSpecRequiresConfirmation(t *testing.T) {
	cs := sampleSpec()
	cs.Dangerous = true
	f := New(cs, nil)
	fillRequired(t, f)

	f.RequestExecute()
	if f.State() != StateConfirming {
		t.Fatalf("state = %v, want confirming", f.State())
	}

	f.Deny()
	if f.State() != StateNavigating {
		t.Fatalf("deny left state %v", f.State())
	}

	f.RequestExecute()
	f.Confirm()
	if f.State() != StateDone || f.Outcome() != OutcomeExecute {
		t.Fatalf("state=%v outcome=%v after confirm", f.State(), f.Outcome())
	}
}

func TestCancelFromAnyState(t *testing.T) {
	f := New(sampleSpec(), nil)
	moveTo(t, f, "service")
	f.Activate() // editing

	f.Cancel()
	if f.State() != StateDone || f.Outcome() != OutcomeCancelled {
		t.Fatalf("state=%v outcome=%v, want done/cancelled", f.State(), f.Outcome())
	}

	f.Next()
	f.Activate()
	if f.State() != StateDone {
		t.Fatal("done form accepted input")
	}
}

func TestCloseZeroesSecrets(t *testing.T) {
	f := New(sampleSpec(), nil)
	fillRequired(t, f)
	f.RequestExecute()

	if f.Values()["api-token"] != "s3cret" {
		t.Fatal("secret not present before close")
	}
	f.Close()
	f.Close() // idempotent
	if f.Values()["api-token"] != "" {
		t.Fatal("secret survived close")
	}
	if f.Values()["service"] != "web" {
		t.Fatal("close scrubbed a non-sensitive value")
	}
}

func TestCloseCancelsLiveForm(t *testing.T) {
	f := New(sampleSpec(), nil)
	f.Close()
	if f.Outcome() != OutcomeCancelled {
		t.Fatalf("outcome = %v, want cancelled", f.Outcome())
	}
}

func TestCacheableValuesExcludesSecrets(t *testing.T) {
	f := New(sampleSpec(), nil)
	fillRequired(t, f)

	values := f.CacheableValues()
	if _, ok := values["api-token"]; ok {
		t.Fatal("secret present in cacheable values")
	}
	if values["service"] != "web" {
		t.Fatalf("service = %q", values["service"])
	}
}

func TestConfirmationCanBeDisabledByPolicy(t *testing.T) {
	cs := sampleSpec()
	cs.Dangerous = true
	f := New(cs, nil)
	defer f.Close()

	fillRequired(t, f)
	f.SetConfirmDangerous(false)
	f.RequestExecute()

	if f.State() != StateDone || f.Outcome() != OutcomeExecute {
		t.Fatalf("state = %v outcome = %v, want immediate execute", f.State(), f.Outcome())
	}
}

func TestFieldApplyValidates(t *testing.T) {
	f := New(sampleSpec(), nil)
	defer f.Close()

	moveTo(t, f, "region")
	fld := f.Current()

	if fld.Apply("mars") {
		t.Fatal("invalid enum value accepted")
	}
	if fld.Err == "" {
		t.Fatal("rejection left no error message")
	}
	if !fld.Apply("eu") {
		t.Fatalf("valid enum value rejected: %s", fld.Err)
	}
	if fld.Err != "" {
		t.Fatalf("Err = %q after valid apply", fld.Err)
	}
	if fld.Value != "eu" {
		t.Fatalf("value = %q", fld.Value)
	}
}

// moveTo positions the cursor on the named field.
func moveTo(t *testing.T, f *Form, name string) {
	t.Helper()
	f.First()
	for i := 0; i < len(f.Fields()); i++ {
		if f.Current().Spec.Name == name {
			return
		}
		f.Next()
	}
	t.Fatalf("field %q not found", name)
}
