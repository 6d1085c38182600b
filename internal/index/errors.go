package index

import "errors"

// ErrDuplicateDocument indicates the same document id was submitted to a
// Builder twice. Builds are all-or-nothing, so callers must abandon the
// whole build when they see it.
var ErrDuplicateDocument = errors.New("duplicate document id")

// ErrCorruptIndex indicates a persisted snapshot failed structural
// validation during load. A corrupt index is never partially recovered.
var ErrCorruptIndex = errors.New("corrupt index")
