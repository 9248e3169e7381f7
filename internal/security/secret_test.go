// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

package security

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestSecretRedactionAndJSON(t *testing.T) {
	s := FromString("supersecret")
	for _, verb := range []string{"%v", "%s", "%#v", "%q", "%x"} {
		if got := fmt.Sprintf(verb, s); got != "[SECRET]" {
			t.Fatalf("unexpected %s output: %q", verb, got)
		}
	}
	b, err := json.Marshal(map[string]any{"password": s})
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	if string(b) != `{"password":"[SECRET]"}` {
		t.Fatalf("unexpected json marshal: %s", string(b))
	}
}

func TestSecretZero(t *testing.T) {
	s := FromString("abc123")
	(&s).Zero()
	b := s.Bytes()
	for i := range b {
		if b[i] != 0 {
			t.Fatalf("expected zeroed byte at index %d, got %d", i, b[i])
		}
	}
	var empty *Secret
	empty.Zero()
}

func TestSecretCopies(t *testing.T) {
	in := []byte("pw")
	s := FromBytes(in)
	in[0] = 'x'
	if string(s.Bytes()) != "pw" {
		t.Fatalf("FromBytes must copy its input")
	}
	out := s.Bytes()
	out[0] = 'y'
	if err := s.Use(func(raw []byte) error {
		if string(raw) != "pw" {
			t.Fatalf("Bytes must return a copy, got %q", raw)
		}
		return nil
	}); err != nil {
		t.Fatalf("Use: %v", err)
	}
	if s.Len() != 2 || s.Empty() || !Secret(nil).Empty() {
		t.Fatalf("length helpers mismatch")
	}
}
