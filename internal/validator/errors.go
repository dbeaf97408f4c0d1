package validator

import "fmt"

// FormatError formats a ValidationError into a human-readable error message.
func FormatError(err ValidationError) string {
	var msg string
	switch err.Reason {
	case ReasonEmpty:
		msg = fmt.Sprintf("%s: required but %s is empty", err.Key, err.EnvVar)
	default:
		msg = fmt.Sprintf("%s: required but %s is not set", err.Key, err.EnvVar)
	}
	if err.Label != "" {
		msg += fmt.Sprintf(" (%s)", err.Label)
	}
	return msg
}

// FormatErrors formats all validation errors into a slice of human-readable messages.
func FormatErrors(result ValidationResult) []string {
	messages := make([]string, len(result.Errors))
	for i, err := range result.Errors {
		messages[i] = FormatError(err)
	}
	return messages
}
