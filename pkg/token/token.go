// Package token defines the contract between generated capability types
// and the register implementation packages they wrap.
//
// A register implementation package exports, for every register, a value
// binding and a type parameterised by a Tag. The generated capability
// struct holds every register as a Srt-tagged token built with Take, and
// its constructor calls Claim so that at most one capability value exists
// in a process.
package token

// Srt tags a strict register token. Capability struct fields carry this tag.
type Srt struct{}

// Urt tags an unsynchronised register token.
type Urt struct{}

// Crt tags a copyable register token.
type Crt struct{}

// Tag is the constraint satisfied by register token tags.
type Tag interface {
	Srt | Urt | Crt
}

// Take returns a new register token of type T.
//
// Take is the privileged construction primitive used by generated
// capability constructors. Code that calls it directly takes on the
// obligation that no other token for the same register exists.
func Take[T any]() T {
	var t T
	return t
}
