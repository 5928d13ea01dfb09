package sse

import "testing"

func TestParseSignals(t *testing.T) {
	signals, err := ParseSignals([]byte(`{"name":"sf","zoom":7,"active":true}`))
	if err != nil {
		t.Fatalf("ParseSignals: %v", err)
	}
	if signals.String("name") != "sf" {
		t.Fatalf("got name %q, want sf", signals.String("name"))
	}
	if signals.Int("zoom") != 7 {
		t.Fatalf("got zoom %d, want 7", signals.Int("zoom"))
	}
	if !signals.Bool("active") {
		t.Fatal("got active false, want true")
	}
	if !signals.Has("name") || signals.Has("missing") {
		t.Fatal("Has did not distinguish present vs missing keys")
	}
}

func TestParseSignalsInvalidJSON(t *testing.T) {
	if _, err := ParseSignals([]byte("not json")); err == nil {
		t.Fatal("ParseSignals with invalid JSON did not error")
	}
}

func TestSignalsZeroValueDefaults(t *testing.T) {
	var signals Signals
	if signals.String("x") != "" || signals.Int("x") != 0 || signals.Bool("x") {
		t.Fatal("missing-key defaults were not zero values")
	}
}

func TestSignalsInputParse(t *testing.T) {
	input := &SignalsInput{RawBody: []byte(`{"progress":50}`)}
	signals, err := input.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if signals.Int("progress") != 50 {
		t.Fatalf("got progress %d, want 50", signals.Int("progress"))
	}
}

func TestSignalsInputMustParseError(t *testing.T) {
	input := &SignalsInput{RawBody: []byte("{broken")}
	if _, err := input.MustParse(); err == nil {
		t.Fatal("MustParse with invalid JSON did not error")
	}
}
