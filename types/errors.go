package types

import (
	"errors"
	"fmt"
)

// The error taxonomy.  Everything the codec returns wraps one of these, so callers can errors.Is() their way to the kind.
var (
	// Fewer bytes left than a field needs
	ErrTruncatedInput = errors.New("truncated input")
	// A count or length that can't possibly fit in what is left of the file
	ErrMalformedCount = errors.New("malformed count")
	// Structure that can't be right, e.g. a size class of 3
	ErrMalformedRecord = errors.New("malformed record")
	// Recoverable: the block is kept as opaque bytes
	ErrUnknownGlobalDataType = errors.New("unknown global data type")
	// Recoverable: the record is kept with its raw type code
	ErrUnknownFormType = errors.New("unknown form type")
	// Write side: the value doesn't fit its wire encoding
	ErrValueOutOfRange = errors.New("value out of range")
	// No layout registered for this version of a version-gated block
	ErrVersionMismatch = errors.New("version mismatch")
)

// Stages of a save file, in file order.  Used to say where a load went wrong.
const (
	STAGE_HEADER          = "header"
	STAGE_SCREENSHOT      = "screenshot"
	STAGE_FORM_VERSION    = "form version"
	STAGE_PLUGINS         = "plugin table"
	STAGE_FILE_LOCATIONS  = "file location table"
	STAGE_GLOBAL_DATA_1   = "global data table 1"
	STAGE_GLOBAL_DATA_2   = "global data table 2"
	STAGE_CHANGE_FORMS    = "change record"
	STAGE_GLOBAL_DATA_3   = "global data table 3"
	STAGE_FORM_ID_ARRAY   = "form id array"
	STAGE_WORLDSPACES     = "visited worldspaces"
	STAGE_UNKNOWN_TABLE_3 = "unknown table 3"
)

// StageError says which part of the file a failure happened in.
// Index is the entry within a table, or -1 if the stage isn't a table.
type StageError struct {
	Stage  string
	Index  int
	Offset int
	Err    error
}

func (e *StageError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%v %v (at byte %v): %v", e.Stage, e.Index, e.Offset, e.Err)
	}
	return fmt.Sprintf("%v (at byte %v): %v", e.Stage, e.Offset, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func Stage_error(stage string, index int, offset int, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Index: index, Offset: offset, Err: err}
}
