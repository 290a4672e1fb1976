package log

import (
	"testing"
)

func TestMultiLoggerCallsAll(t *testing.T) {
	rec1 := &Recorder{}
	rec2 := &Recorder{}
	rec3 := &Recorder{}

	multi := NewMultiLogger(rec1, nil, rec2, rec3)

	multi.Log(Event{Kind: KindFieldAdded, Layer: "chip_regs", Field: "gpioa_odr"})

	// All loggers should have received the event
	for i, rec := range []*Recorder{rec1, rec2, rec3} {
		if len(rec.Events) != 1 {
			t.Errorf("logger %d: got %d events, want 1", i, len(rec.Events))
			continue
		}
		if rec.Events[0].Field != "gpioa_odr" {
			t.Errorf("logger %d: Field = %q, want %q", i, rec.Events[0].Field, "gpioa_odr")
		}
	}
}

func TestMultiLoggerEmptyList(t *testing.T) {
	multi := NewMultiLogger()

	// Should not panic with empty logger list
	multi.Log(Event{Kind: KindLayerParsed})
}

func TestRecorderKinds(t *testing.T) {
	rec := &Recorder{}
	rec.Log(Event{Kind: KindLayerParsed})
	rec.Log(Event{Kind: KindFieldAdded})
	rec.Log(Event{Kind: KindStructEmitted})

	got := rec.Kinds()
	want := []Kind{KindLayerParsed, KindFieldAdded, KindStructEmitted}
	if len(got) != len(want) {
		t.Fatalf("Kinds() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Kinds()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOr(t *testing.T) {
	if _, ok := Or(nil).(NoopLogger); !ok {
		t.Error("Or(nil) should return NoopLogger")
	}
	rec := &Recorder{}
	if Or(rec) != Logger(rec) {
		t.Error("Or(rec) should return rec")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindLayerParsed, "LAYER_PARSED"},
		{KindBlockEmitted, "BLOCK_EMITTED"},
		{KindFieldAdded, "FIELD_ADDED"},
		{KindFieldSkipped, "FIELD_SKIPPED"},
		{KindFieldsForwarded, "FIELDS_FORWARDED"},
		{KindStructEmitted, "STRUCT_EMITTED"},
		{KindFileWritten, "FILE_WRITTEN"},
		{KindFileStale, "FILE_STALE"},
		{KindInputChanged, "INPUT_CHANGED"},
		{KindRunFailed, "RUN_FAILED"},
		{KindFileOrphaned, "FILE_ORPHANED"},
		{KindFileRemoved, "FILE_REMOVED"},
		{Kind(200), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
