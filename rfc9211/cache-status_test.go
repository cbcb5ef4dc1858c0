package rfc9211

import "testing"

func TestHitString(t *testing.T) {
	cs := New("Accelerator")
	cs.Hit()
	if s := cs.String(); s != "Accelerator; hit" {
		t.Fatalf("Cache status is %s", s)
	}
}

func TestForwardString(t *testing.T) {
	cs := New("Accelerator")
	cs.Forward(FwdUriMiss)
	cs.Stored(true)
	if s := cs.String(); s != "Accelerator; fwd=uri-miss; stored" {
		t.Fatalf("Cache status is %s", s)
	}
	if cs.Reason() != FwdUriMiss || cs.Status() != StatusFwd {
		t.Fatalf("Reason is %s, status is %s", cs.Reason(), cs.Status())
	}
}

func TestHitIgnoresStored(t *testing.T) {
	cs := New("Accelerator")
	cs.Forward(FwdStale)
	cs.Stored(true)
	cs.Hit()
	cs.Detail("memory")
	if s := cs.String(); s != "Accelerator; hit; detail=memory" {
		t.Fatalf("Cache status is %s", s)
	}
}
