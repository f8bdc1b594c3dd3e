package pointer

// Uint16 returns a pointer to the provided uint16 value
func Uint16(value uint16) *uint16 {
	return &value
}

// Uint16OrDefault returns the pointer if not nil, otherwise the default value
func Uint16OrDefault(value *uint16, defaultValue uint16) *uint16 {
	if value != nil {
		return value
	}
	return &defaultValue
}

// Bool returns a pointer to the provided bool value
func Bool(value bool) *bool {
	return &value
}

// BoolOrDefault returns the pointer if not nil, otherwise the default value
func BoolOrDefault(value *bool, defaultValue bool) *bool {
	if value != nil {
		return value
	}
	return &defaultValue
}
