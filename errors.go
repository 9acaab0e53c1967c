package nrl

import (
	"fmt"
	"strings"
)

// MalformedCatalogError reports an index description section whose
// option set does not match any recognized shape.
type MalformedCatalogError struct {
	Location string // index description containing the section
	Section  string
	Options  []string
}

func (e *MalformedCatalogError) Error() string {
	return fmt.Sprintf("unexpected structure of catalog file %q: section %q has options [%s]",
		e.Location, e.Section, strings.Join(e.Options, ", "))
}

// KeyNotFoundError reports a label that does not exist at the catalog
// level it was looked up in.
type KeyNotFoundError struct {
	Key       string
	Available []string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("no such key %q (available: %s)", e.Key, strings.Join(e.Available, ", "))
}

// PathMismatchError reports a key sequence whose length does not match
// the depth of the catalog branch it addresses.
type PathMismatchError struct {
	Keys   []string
	Reason string
}

func (e *PathMismatchError) Error() string {
	return fmt.Sprintf("key sequence %v does not match catalog depth: %s", e.Keys, e.Reason)
}
