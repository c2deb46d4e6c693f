package types

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

const (
	UUID_PREFIX_CLIENT       = "cli"
	UUID_PREFIX_PROVIDER     = "prv"
	UUID_PREFIX_DEVICE       = "dev"
	UUID_PREFIX_SUBSCRIPTION = "sub"
	UUID_PREFIX_INVOICE      = "inv"
	UUID_PREFIX_REQUEST      = "req"
)

// GenerateUUID returns a lower-cased ULID.
func GenerateUUID() string {
	return strings.ToLower(ulid.Make().String())
}

// GenerateUUIDWithPrefix returns a ULID prefixed with the entity type, e.g. dev_01h...
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return prefix + "_" + GenerateUUID()
}
