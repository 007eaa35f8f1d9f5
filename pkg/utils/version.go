package utils

import (
	"strconv"
	"strings"
)

const versionPrefix = "vrsn_"

// GetVersionDefinition parses a pinned version reference of the form
// "vrsn_<n>". Anything else, including "latest" and the empty string,
// means no pin and returns nil.
func GetVersionDefinition(version string) *uint64 {
	if !strings.HasPrefix(version, versionPrefix) {
		return nil
	}
	raw := strings.TrimPrefix(version, versionPrefix)
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &parsed
}
