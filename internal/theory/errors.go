package theory

import (
	"fmt"
)

// TheoryNotCompatibleError is returned when a theory cannot process a
// scatterer, either directly or by superposition.
type TheoryNotCompatibleError struct {
	Theory    string
	Scatterer string
	Reason    string
}

func (e *TheoryNotCompatibleError) Error() string {
	msg := fmt.Sprintf("theory %s is not compatible with scatterer %s", e.Theory, e.Scatterer)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func notCompatible(kernel, s any, reason string) *TheoryNotCompatibleError {
	return &TheoryNotCompatibleError{
		Theory:    typeName(kernel),
		Scatterer: typeName(s),
		Reason:    reason,
	}
}

func typeName(v any) string {
	if named, ok := v.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", v)
}

// MissingParameterError names a geometric attribute a computation needs.
type MissingParameterError struct {
	Parameter string
}

func (e *MissingParameterError) Error() string {
	return "missing parameter: " + e.Parameter
}
