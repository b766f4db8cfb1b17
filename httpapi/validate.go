package httpapi

import "github.com/stoat-chat/stoatgo"

// validator checks a request body before it is sent. A non-nil result is
// returned to the caller verbatim, in the same error taxonomy an actual
// server rejection would use (spec §4.C).
type validator func() *stoat.Error

func runValidators(vs ...validator) error {
	for _, v := range vs {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func failedValidation(field, reason string) *stoat.Error {
	return stoat.NewAPIError(&stoat.APIError{
		Type:             stoat.ErrTypeFailedValidation,
		ValidationErrors: map[string]string{field: reason},
	})
}

func notEmpty(field, value string) validator {
	return func() *stoat.Error {
		if value == "" {
			return failedValidation(field, "must not be empty")
		}
		return nil
	}
}

func maxLen(field, value string, max int) validator {
	return func() *stoat.Error {
		if len(value) > max {
			return failedValidation(field, "exceeds maximum length")
		}
		return nil
	}
}

func maxCount(field string, n, max int) validator {
	return func() *stoat.Error {
		if n > max {
			return failedValidation(field, "exceeds maximum count")
		}
		return nil
	}
}

const (
	maxMessageContentLength = 2000
	maxMessageAttachments   = 128
	maxMessageReplies       = 5
	maxMessageEmbeds        = 10
	maxBulkDeleteMessages   = 100
	maxServerNameLength     = 32
	maxGroupRecipients      = 100
)
