package errors

import (
	"fmt"
)

type ErrMissingCredential struct{}

func (e *ErrMissingCredential) Error() string {
	return "отсутствует токен авторизации"
}

func (e *ErrMissingCredential) Is(target error) bool {
	_, ok := target.(*ErrMissingCredential)
	return ok
}

type ErrCredentialExpired struct {
	Cause error
}

func (e *ErrCredentialExpired) Error() string {
	return fmt.Sprintf("токен авторизации недействителен: %v", e.Cause)
}

func (e *ErrCredentialExpired) Is(target error) bool {
	_, ok := target.(*ErrCredentialExpired)
	return ok
}

func (e *ErrCredentialExpired) Unwrap() error {
	return e.Cause
}

type ErrNotConnected struct {
	Feed string
}

func (e *ErrNotConnected) Error() string {
	return "сокет не подключен: " + e.Feed
}

func (e *ErrNotConnected) Is(target error) bool {
	_, ok := target.(*ErrNotConnected)
	return ok
}

// ErrSendFailed возвращается вызывающему коду при неудачной отправке через REST.
// Message содержит текст от сервера, если он был.
type ErrSendFailed struct {
	StatusCode int
	Message    string
}

func (e *ErrSendFailed) Error() string {
	return e.Message
}

func (e *ErrSendFailed) Is(target error) bool {
	_, ok := target.(*ErrSendFailed)
	return ok
}

const DefaultSendFailedMessage = "не удалось отправить сообщение, попробуйте ещё раз"

type ErrFetchFailed struct {
	Resource string
	Cause    error
}

func (e *ErrFetchFailed) Error() string {
	return fmt.Sprintf("ошибка при загрузке %s: %v", e.Resource, e.Cause)
}

func (e *ErrFetchFailed) Is(target error) bool {
	_, ok := target.(*ErrFetchFailed)
	return ok
}

func (e *ErrFetchFailed) Unwrap() error {
	return e.Cause
}

type ErrFrameDecode struct {
	Type  string
	Cause error
}

func (e *ErrFrameDecode) Error() string {
	return fmt.Sprintf("ошибка при разборе фрейма %q: %v", e.Type, e.Cause)
}

func (e *ErrFrameDecode) Unwrap() error {
	return e.Cause
}

type ErrUnknownSinkType struct {
	SinkType string
}

func (e *ErrUnknownSinkType) Error() string {
	return fmt.Sprintf("неизвестный тип получателя событий: %s", e.SinkType)
}

func (e *ErrUnknownSinkType) Is(target error) bool {
	_, ok := target.(*ErrUnknownSinkType)
	return ok
}

type ErrInvalidValue struct {
	FieldName string
	Value     string
}

func (e *ErrInvalidValue) Error() string {
	return fmt.Sprintf("некорректное значение '%s' для поля '%s'", e.Value, e.FieldName)
}

func (e *ErrInvalidValue) Is(target error) bool {
	_, ok := target.(*ErrInvalidValue)
	return ok
}

type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.StatusCode)
}
