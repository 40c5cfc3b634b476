package errors

import (
	"errors"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeValidationError, "language must not be empty")
		if err.Error() != "[VALIDATION_ERROR] language must not be empty" {
			t.Errorf("unexpected message: %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("connection refused")
		err := Wrap(original, CodeUnavailable, "registry lookup failed")
		expected := "[UNAVAILABLE] registry lookup failed: connection refused"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid input")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("IsCodeWithWrapped", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeInternal, "internal failure")
		if !IsCode(err, CodeInternal) {
			t.Error("expected IsCode to return true for wrapped CodeInternal")
		}
	})

	t.Run("AddContext", func(t *testing.T) {
		err := New(CodeNotSupported, "no grammar adapter")
		err = AddContext(err, CtxLanguage, "ruby")
		if !IsCode(err, CodeNotSupported) {
			t.Error("expected code to survive AddContext")
		}
		var de *DomainError
		if !errors.As(err, &de) || de.Context[CtxLanguage] != "ruby" {
			t.Error("expected language context to be recorded")
		}
	})
}
