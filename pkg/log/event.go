package log

// Event is a single generation event.
type Event struct {
	Kind Kind

	// Layer is the generator name of the layer the event belongs to.
	Layer string

	// File is the source or output path, when relevant.
	File string

	// Block and Register identify the register for field events.
	Block    string
	Register string

	// Field is the long field name for field events.
	Field string

	// Count is the number of items the event refers to (fields forwarded,
	// bytes written).
	Count int

	// Err is set for failure events.
	Err error
}

// Kind classifies the event.
type Kind uint8

const (
	// KindLayerParsed is reported once per parsed or loaded layer.
	KindLayerParsed Kind = iota
	// KindBlockEmitted is reported for each block package rendered.
	KindBlockEmitted
	// KindFieldAdded is reported for each register accumulated as a field.
	KindFieldAdded
	// KindFieldSkipped is reported for each excluded register.
	KindFieldSkipped
	// KindFieldsForwarded is reported when a chain link hands its
	// accumulated fields to its predecessor.
	KindFieldsForwarded
	// KindStructEmitted is reported when the terminal layer renders the
	// capability struct.
	KindStructEmitted
	// KindFileWritten is reported for each file written to disk.
	KindFileWritten
	// KindFileStale is reported by check runs for files that differ.
	KindFileStale
	// KindInputChanged is reported by watch runs when an input file
	// changes.
	KindInputChanged
	// KindRunFailed is reported by watch runs when a regeneration fails.
	KindRunFailed
	// KindFileOrphaned is reported by check runs for generated files the
	// run no longer produces.
	KindFileOrphaned
	// KindFileRemoved is reported for each orphaned file deleted.
	KindFileRemoved
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLayerParsed:
		return "LAYER_PARSED"
	case KindBlockEmitted:
		return "BLOCK_EMITTED"
	case KindFieldAdded:
		return "FIELD_ADDED"
	case KindFieldSkipped:
		return "FIELD_SKIPPED"
	case KindFieldsForwarded:
		return "FIELDS_FORWARDED"
	case KindStructEmitted:
		return "STRUCT_EMITTED"
	case KindFileWritten:
		return "FILE_WRITTEN"
	case KindFileStale:
		return "FILE_STALE"
	case KindInputChanged:
		return "INPUT_CHANGED"
	case KindRunFailed:
		return "RUN_FAILED"
	case KindFileOrphaned:
		return "FILE_ORPHANED"
	case KindFileRemoved:
		return "FILE_REMOVED"
	default:
		return "UNKNOWN"
	}
}
