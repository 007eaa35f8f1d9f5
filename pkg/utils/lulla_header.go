package utils

// Header keys recognized on inbound API requests.
const (
	HEADER_AUTH_KEY        = "authorization"
	HEADER_API_KEY         = "x-api-key"
	HEADER_SOURCE_KEY      = "x-lulla-source"
	HEADER_ENVIRONMENT_KEY = "x-lulla-environment"
	HEADER_REGION_KEY      = "x-lulla-region"
)
