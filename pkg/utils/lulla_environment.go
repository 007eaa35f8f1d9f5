package utils

import "strings"

// LullaEnvironment names the deployment environment a process runs in.
type LullaEnvironment string

const (
	PRODUCTION  LullaEnvironment = "production"
	DEVELOPMENT LullaEnvironment = "development"
)

func (e LullaEnvironment) Get() string {
	return string(e)
}

// FromEnvironmentStr maps a raw environment string onto a known
// environment, defaulting to development for anything unrecognized.
func FromEnvironmentStr(env string) LullaEnvironment {
	switch strings.ToLower(env) {
	case "production":
		return PRODUCTION
	case "development":
		return DEVELOPMENT
	default:
		return DEVELOPMENT
	}
}
