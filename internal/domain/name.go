package domain

import "strings"

// CheckName rejects empty and blank names. what names the checked entity
// ("collection name", "field name") and leads the error message.
func CheckName(what, name string) error {
	if strings.TrimSpace(name) == "" {
		return NewParamError("%s cannot be null or empty", what)
	}
	return nil
}
