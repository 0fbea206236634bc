package api

import (
	"net/http"

	"stanza/internal/services"
)

// internalErrorMessage is returned to callers for every non-client failure.
const internalErrorMessage = "internal error"

// HTTPStatus maps an engine error to the status code returned to callers.
func HTTPStatus(err error) int {
	switch services.KindOf(err) {
	case "":
		return http.StatusOK
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindInvalidInput, services.KindInvalidOperation, services.KindInvalidState:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ErrorMessage returns the caller-facing text for err. Storage and tool
// failures are hidden behind a generic message.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if services.IsClientError(err) {
		return services.Message(err)
	}
	return internalErrorMessage
}

// Failure builds the error envelope for err.
func Failure(err error) Envelope {
	env := Envelope{OK: false, Error: ErrorMessage(err)}
	if services.IsClientError(err) {
		env.Kind = string(services.KindOf(err))
	} else {
		env.Kind = string(services.KindInternal)
	}
	return env
}

// Success builds the success envelope. data may be nil.
func Success(data any) Envelope {
	return Envelope{OK: true, Data: data}
}
