package service

// ConfigPatch is a partial card config update. Nil fields are left alone;
// an empty Name clears the display-name override.
type ConfigPatch struct {
	Entity    *string
	Name      *string
	TapAction *string
}
