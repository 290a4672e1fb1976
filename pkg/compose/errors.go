package compose

import (
	"errors"
	"fmt"
)

var (
	// ErrAmbiguousChainForm is returned for an invocation that is neither
	// the start nor the continuation form.
	ErrAmbiguousChainForm = errors.New("ambiguous chain invocation")

	// ErrPrivateGenerator is returned when a generator without pub
	// visibility is used outside its scope.
	ErrPrivateGenerator = errors.New("generator is not public")

	// ErrUnlinked is returned when a chain layer is invoked before its
	// predecessor was linked.
	ErrUnlinked = errors.New("predecessor not linked")
)

// DuplicateFieldError reports two fields of the capability struct with
// the same name.
type DuplicateFieldError struct {
	Field string
	// First and Second are the generators that contributed the fields.
	First  string
	Second string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("duplicate capability field %s: declared by %s and %s", e.Field, e.First, e.Second)
}

// InternalImportError reports a capability field whose package lies in an
// internal tree the capability package is outside of.
type InternalImportError struct {
	Field string
	// Layer is the generator that contributed the field.
	Layer   string
	Import  string
	Package string
}

func (e *InternalImportError) Error() string {
	return fmt.Sprintf("capability field %s of %s: package %s cannot import internal package %s",
		e.Field, e.Layer, e.Package, e.Import)
}
