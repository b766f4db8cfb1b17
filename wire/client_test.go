package wire

import (
	"encoding/json"
	"testing"
)

func TestPingDataMarshalNumber(t *testing.T) {
	t.Parallel()
	n := int64(7)
	b, err := json.Marshal(PingData{Number: &n})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != "7" {
		t.Errorf("frame = %s, want 7", b)
	}
}

func TestPingDataMarshalBinary(t *testing.T) {
	t.Parallel()
	b, err := json.Marshal(PingData{Binary: []byte{1, 2, 3}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out []byte
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(out) != 3 || out[0] != 1 || out[2] != 3 {
		t.Errorf("round-tripped bytes = %v, want [1 2 3]", out)
	}
}

func TestPingDataUnmarshalNumber(t *testing.T) {
	t.Parallel()
	var p PingData
	if err := json.Unmarshal([]byte("42"), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.Number == nil || *p.Number != 42 {
		t.Errorf("Number = %v, want 42", p.Number)
	}
}

func TestClientMessageConstructors(t *testing.T) {
	t.Parallel()

	auth := Authenticate("tok_1")
	if auth.Type != "Authenticate" || auth.Token != "tok_1" {
		t.Errorf("Authenticate() = %+v", auth)
	}

	begin := BeginTyping("chan_1")
	if begin.Type != "BeginTyping" || begin.Channel != "chan_1" {
		t.Errorf("BeginTyping() = %+v", begin)
	}

	end := EndTyping("chan_1")
	if end.Type != "EndTyping" || end.Channel != "chan_1" {
		t.Errorf("EndTyping() = %+v", end)
	}

	ping := Ping(9)
	if ping.Type != "Ping" || ping.Data.Number == nil || *ping.Data.Number != 9 {
		t.Errorf("Ping() = %+v", ping)
	}
}

func TestClientMessageEncodeOmitsEmptyFields(t *testing.T) {
	t.Parallel()
	b, err := json.Marshal(Authenticate("tok_1"))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"type":"Authenticate","token":"tok_1"}`
	if string(b) != want {
		t.Errorf("frame = %s, want %s", b, want)
	}
}
