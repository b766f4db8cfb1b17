package stoat

import (
	"testing"
	"time"
)

func TestIDStringAndMention(t *testing.T) {
	t.Parallel()
	id := ID("01ARZ3NDEKTSV4RRFFQ69G5FAV")

	if id.String() != string(id) {
		t.Errorf("String() = %q, want %q", id.String(), id)
	}
	want := "<@01ARZ3NDEKTSV4RRFFQ69G5FAV>"
	if got := id.Mention(); got != want {
		t.Errorf("Mention() = %q, want %q", got, want)
	}
}

func TestIDTimestamp(t *testing.T) {
	t.Parallel()

	id := ID("01ARZ3NDEKTSV4RRFFQ69G5FAV")
	ts, ok := id.Timestamp()
	if !ok {
		t.Fatal("Timestamp() reported not-ok for a well-formed ULID")
	}
	want := time.UnixMilli(1469922850259).UTC()
	if !ts.Equal(want) {
		t.Errorf("Timestamp() = %v, want %v", ts, want)
	}

	if _, ok := ID("short").Timestamp(); ok {
		t.Error("Timestamp() should report not-ok for an id shorter than 10 characters")
	}
	if _, ok := ID("!!!!!!!!!!!!!!!!!!!!!!!!!!").Timestamp(); ok {
		t.Error("Timestamp() should report not-ok for characters outside the ULID alphabet")
	}
}

func TestMemberKeyEquality(t *testing.T) {
	t.Parallel()
	a := MemberKey{Server: "s1", User: "u1"}
	b := MemberKey{Server: "s1", User: "u1"}
	c := MemberKey{Server: "s1", User: "u2"}

	if a != b {
		t.Error("identical MemberKeys should compare equal")
	}
	if a == c {
		t.Error("MemberKeys with different users should not compare equal")
	}

	set := map[MemberKey]bool{a: true}
	if !set[b] {
		t.Error("MemberKey should be usable as a map key")
	}
}
