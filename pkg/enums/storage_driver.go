package enums

import (
	"fmt"
	"strings"
)

// StorageDriver selects the backend of the local cart snapshot store.
type StorageDriver string

const (
	StorageDriverFile   StorageDriver = "file"
	StorageDriverRedis  StorageDriver = "redis"
	StorageDriverDB     StorageDriver = "db"
	StorageDriverMemory StorageDriver = "memory"
)

var validStorageDrivers = []StorageDriver{
	StorageDriverFile,
	StorageDriverRedis,
	StorageDriverDB,
	StorageDriverMemory,
}

// String implements fmt.Stringer.
func (s StorageDriver) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StorageDriver.
func (s StorageDriver) IsValid() bool {
	for _, candidate := range validStorageDrivers {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStorageDriver converts raw input into a StorageDriver. Matching is case-insensitive.
func ParseStorageDriver(value string) (StorageDriver, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validStorageDrivers {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid storage driver %q", value)
}
