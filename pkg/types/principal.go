package types

// Principal identifies the authenticated caller of an API request.
// UserId is the stable identifier every per-user resource is keyed on,
// including the per-user recording history.
type Principal struct {
	UserId string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}
