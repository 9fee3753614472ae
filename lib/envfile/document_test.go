// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package envfile

import (
	"bytes"
	"errors"
	"testing"
)

const sampleFile = `# SilverSupport environment
DOMAIN=alpha.example.com

# Telephony
TWILIO_ACCOUNT_SID=AC123
TWILIO_AUTH_TOKEN = secret

not a pair line
OPENAI_API_KEY=sk-abc
`

func TestParseSerializeRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"\n",
		sampleFile,
		"KEY=value",
		"KEY=value\n",
		"# only a comment\n\n\n",
		"A=1\nA=2\nA=3\n",
	}
	for _, input := range inputs {
		output := Parse([]byte(input)).Serialize()
		if !bytes.Equal(output, []byte(input)) {
			t.Errorf("round trip changed content:\n in: %q\nout: %q", input, output)
		}
	}
}

func TestAllSkipsCommentsAndBlanks(t *testing.T) {
	mapping := Parse([]byte(sampleFile)).All()

	want := map[string]string{
		"DOMAIN":             "alpha.example.com",
		"TWILIO_ACCOUNT_SID": "AC123",
		"TWILIO_AUTH_TOKEN":  "secret",
		"OPENAI_API_KEY":     "sk-abc",
	}
	if len(mapping) != len(want) {
		t.Errorf("len(All()) = %d, want %d: %v", len(mapping), len(want), mapping)
	}
	for key, value := range want {
		if mapping[key] != value {
			t.Errorf("All()[%q] = %q, want %q", key, mapping[key], value)
		}
	}
}

func TestAllLastOccurrenceWins(t *testing.T) {
	mapping := Parse([]byte("A=1\nA=2\nA=3\n")).All()
	if mapping["A"] != "3" {
		t.Errorf("All()[A] = %q, want 3", mapping["A"])
	}
}

func TestUpsertRewritesInPlace(t *testing.T) {
	document := Parse([]byte(sampleFile))
	if err := document.Upsert("DOMAIN", "beta.example.com"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	want := `# SilverSupport environment
DOMAIN=beta.example.com

# Telephony
TWILIO_ACCOUNT_SID=AC123
TWILIO_AUTH_TOKEN = secret

not a pair line
OPENAI_API_KEY=sk-abc
`
	if got := string(document.Serialize()); got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestUpsertAppendsBeforeTrailingNewline(t *testing.T) {
	document := Parse([]byte("A=1\n"))
	if err := document.Upsert("B", "2"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if got := string(document.Serialize()); got != "A=1\nB=2\n" {
		t.Errorf("Serialize() = %q, want %q", got, "A=1\nB=2\n")
	}
}

func TestUpsertAppendsWithoutTrailingNewline(t *testing.T) {
	document := Parse([]byte("A=1"))
	if err := document.Upsert("B", "2"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if got := string(document.Serialize()); got != "A=1\nB=2" {
		t.Errorf("Serialize() = %q, want %q", got, "A=1\nB=2")
	}
}

func TestUpsertIntoEmptyDocument(t *testing.T) {
	document := Parse(nil)
	if err := document.Upsert("A", "1"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if got := string(document.Serialize()); got != "A=1\n" {
		t.Errorf("Serialize() = %q, want %q", got, "A=1\n")
	}
}

func TestUpsertFirstDuplicateOnly(t *testing.T) {
	document := Parse([]byte("A=1\nA=2\n"))
	if err := document.Upsert("A", "9"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if got := string(document.Serialize()); got != "A=9\nA=2\n" {
		t.Errorf("Serialize() = %q, want %q", got, "A=9\nA=2\n")
	}
	// The effective value is still the last occurrence.
	if value, _ := document.Get("A"); value != "2" {
		t.Errorf("Get(A) = %q, want 2", value)
	}
}

func TestUpsertPatternCharactersInKey(t *testing.T) {
	// Keys containing pattern metacharacters must match exactly;
	// the line-record model matches on the parsed key, so these are
	// ordinary characters.
	document := Parse([]byte("APP.NAME=old\nAPPXNAME=other\n"))
	if err := document.Upsert("APP.NAME", "new"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if got := string(document.Serialize()); got != "APP.NAME=new\nAPPXNAME=other\n" {
		t.Errorf("Serialize() = %q, want %q", got, "APP.NAME=new\nAPPXNAME=other\n")
	}
}

func TestUpsertDoesNotTouchOtherKeys(t *testing.T) {
	document := Parse([]byte(sampleFile))
	before := document.All()
	delete(before, "DOMAIN")

	if err := document.Upsert("DOMAIN", "changed"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	after := document.All()
	for key, value := range before {
		if after[key] != value {
			t.Errorf("key %q changed: %q -> %q", key, value, after[key])
		}
	}
}

func TestUpsertRejectsInvalidKeys(t *testing.T) {
	document := Parse(nil)
	for _, key := range []string{"", "A=B", "A\nB", "#COMMENT", "  #X"} {
		if err := document.Upsert(key, "v"); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Upsert(%q) = %v, want ErrInvalidKey", key, err)
		}
	}

	// Only a leading '#' makes a key a comment; an interior '#' is
	// an ordinary character.
	if err := document.Upsert("A#B", "v"); err != nil {
		t.Errorf("Upsert(A#B) = %v, want nil", err)
	}
}

func TestUpsertRejectsNewlineInValue(t *testing.T) {
	document := Parse(nil)
	if err := document.Upsert("A", "one\ntwo"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Upsert = %v, want ErrInvalidValue", err)
	}
}

func TestGet(t *testing.T) {
	document := Parse([]byte(sampleFile))

	if value, found := document.Get("DOMAIN"); !found || value != "alpha.example.com" {
		t.Errorf("Get(DOMAIN) = %q, %v", value, found)
	}
	if _, found := document.Get("MISSING"); found {
		t.Error("Get(MISSING) reported present")
	}
}
