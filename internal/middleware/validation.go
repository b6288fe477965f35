package middleware

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/capitalize-ai/mock-thread-api/internal/model"
)

const maxTextLength = 100000

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct checks validate tags and flattens the failures into one
// readable error.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ValidateMessage validates a message body.
func ValidateMessage(msg model.Message) error {
	if err := ValidateStruct(msg); err != nil {
		return err
	}
	if len(msg.Content.Text) > maxTextLength {
		return errors.New("message text exceeds maximum length")
	}
	if !utf8.ValidString(msg.Content.Text) {
		return errors.New("message text must be valid UTF-8")
	}
	return nil
}

// ValidateThreadID validates a thread ID.
func ValidateThreadID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid thread ID format")
	}
	return nil
}

// ValidateEntryID validates an entry ID.
func ValidateEntryID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid entry ID format")
	}
	return nil
}

// ValidateFeedbackID validates a feedback ID.
func ValidateFeedbackID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid feedback ID format")
	}
	return nil
}

// ValidateUserID validates a user ID.
func ValidateUserID(id string) error {
	if len(id) == 0 {
		return errors.New("user ID cannot be empty")
	}
	if len(id) > 128 {
		return errors.New("user ID exceeds maximum length")
	}
	return nil
}
