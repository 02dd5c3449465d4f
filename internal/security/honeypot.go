package security

// IsHoneypotTriggered reports whether the hidden trap field was filled in.
func IsHoneypotTriggered(value string) bool {
	return value != ""
}
