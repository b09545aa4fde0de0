package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// TypeIDs are a prefix plus a UUIDv7 suffix, i.e. time-ordered with a random
// tail, so collisions between objects created in the same millisecond are
// negligible.
const (
	PrefixUser     = "user"
	PrefixObject   = "obj"
	PrefixSnapshot = "snap"
	PrefixSession  = "sess"
	PrefixAsset    = "asset"
	PrefixExport   = "exp"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewUserID() string     { return New(PrefixUser) }
func NewObjectID() string   { return New(PrefixObject) }
func NewSnapshotID() string { return New(PrefixSnapshot) }
func NewSessionID() string  { return New(PrefixSession) }
func NewAssetID() string    { return New(PrefixAsset) }
func NewExportID() string   { return New(PrefixExport) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
