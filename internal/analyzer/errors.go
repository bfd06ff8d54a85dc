package analyzer

import "fmt"

// Mode records how a type reached the walker; it is reported with fatal
// errors so users can tell an offending argument from an offending return
// type.
type Mode string

const (
	// ModeValue: the type belongs to a value exposed at the call site.
	ModeValue Mode = "value"
	// ModeReturn: the type is the call's declared output.
	ModeReturn Mode = "return"
	// ModeType: the type was discovered transitively inside another type.
	ModeType Mode = "type"
)

// Feature names an entry of the not-yet-supported catalog. Encountering one
// aborts the pass for the current file.
type Feature string

const (
	FeatureBinaryBuffer    Feature = "binary buffer"
	FeatureFileHandle      Feature = "local file handle"
	FeatureGenerator       Feature = "generator object"
	FeatureURL             Feature = "URL object"
	FeatureBareFuture      Feature = "bare future argument"
	FeatureAbstractReturn  Feature = "interface or intersection return type"
	FeatureMultipleIndexes Feature = "multiple index signatures"
)

// UnsupportedError is raised when traversal meets a feature-catalog entry.
// It is fatal: the whole call-site traversal unwinds and the file's
// extraction fails.
type UnsupportedError struct {
	Feature  Feature
	Mode     Mode
	TypeName string
	Detail   string
}

func (e *UnsupportedError) Error() string {
	msg := fmt.Sprintf("%s is not supported (%s mode)", e.Feature, e.Mode)
	if e.TypeName != "" {
		msg += fmt.Sprintf(": %s", e.TypeName)
	}
	if e.Detail != "" {
		msg += " — " + e.Detail
	}
	return msg
}

// ArityError is raised when a generic instantiation supplies a type-argument
// count different from the declaration's parameter count. The walker never
// truncates or pads argument lists.
type ArityError struct {
	TypeName string
	Params   int
	Args     int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("type %s declares %d type parameter(s) but was instantiated with %d argument(s)",
		e.TypeName, e.Params, e.Args)
}

// IndexSignatureError is raised when one type declares index signatures of
// differing key kinds.
type IndexSignatureError struct {
	TypeName string
}

func (e *IndexSignatureError) Error() string {
	return fmt.Sprintf("type %s declares multiple index signatures with differing key kinds", e.TypeName)
}

// danglingRefError reports a reference that survived alias resolution
// without a finalized target. It indicates a walker bug, not a user error.
type danglingRefError struct {
	from, to int64
}

func (e *danglingRefError) Error() string {
	return fmt.Sprintf("descriptor %d references %d, which is unresolved after alias collapse", e.from, e.to)
}
