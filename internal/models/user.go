package models

// User is an operator allowed to use the API. Users come from configuration.
type User struct {
	Username     string `json:"username" mapstructure:"username"`
	PasswordHash string `json:"-" mapstructure:"password_hash"` // bcrypt
}
