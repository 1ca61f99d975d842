package event

import (
	"errors"
	"testing"
)

func TestHandlerError(t *testing.T) {
	underlyingErr := errors.New("something went wrong")
	err := &HandlerError{
		SubscriptionID: "sub-123",
		Topic:          "history.pushed",
		Err:            underlyingErr,
	}

	if got := err.Error(); got != "handler sub-123 for history.pushed: something went wrong" {
		t.Errorf("unexpected error string: %s", got)
	}
	if err.Unwrap() != underlyingErr {
		t.Error("Unwrap() should return the underlying error")
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is should match the underlying error")
	}
	if errors.Is(err, ErrHandlerPanic) {
		t.Error("errors.Is should not match unrelated errors")
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinelErrors := map[string]error{
		"ErrInvalidEvent":         ErrInvalidEvent,
		"ErrInvalidTopic":         ErrInvalidTopic,
		"ErrSubscriptionNotFound": ErrSubscriptionNotFound,
		"ErrHandlerPanic":         ErrHandlerPanic,
		"ErrNilHandler":           ErrNilHandler,
	}

	for name1, err1 := range sentinelErrors {
		if err1 == nil || err1.Error() == "" {
			t.Errorf("%s should have a non-empty error message", name1)
		}
		for name2, err2 := range sentinelErrors {
			if name1 != name2 && errors.Is(err1, err2) {
				t.Errorf("sentinel errors should be distinct: %s and %s", name1, name2)
			}
		}
	}
}
