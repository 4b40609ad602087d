package notification

import "fmt"

// DuplicateKeyError is returned when two definitions claim the same key.
// Ambiguous templates are a configuration bug, so registration fails loudly.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("notification key %q is already registered", e.Key)
}

// UnknownKeyError is returned when a dispatch names a key no definition
// registered. Retrying cannot fix a missing template, so callers should log
// it as a configuration defect rather than requeue.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("no notification definition registered for key %q", e.Key)
}

// BadTemplateError reports a malformed template source detected at compile
// time. The offending definition is rejected; the rest of the registry loads.
type BadTemplateError struct {
	Src    string
	Pos    int
	Reason string
}

func (e *BadTemplateError) Error() string {
	return fmt.Sprintf("bad template at offset %d: %s", e.Pos, e.Reason)
}
