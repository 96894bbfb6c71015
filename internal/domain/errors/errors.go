package errors

import (
	"fmt"
)

type ErrLinkNotFound struct {
	URL string
}

func (e *ErrLinkNotFound) Error() string {
	return "ссылка не найдена: " + e.URL
}

func (e *ErrLinkNotFound) Is(target error) bool {
	_, ok := target.(*ErrLinkNotFound)
	return ok
}

type ErrInvalidURL struct {
	URL string
}

func (e *ErrInvalidURL) Error() string {
	return "неверный формат URL: " + e.URL
}

func (e *ErrInvalidURL) Is(target error) bool {
	_, ok := target.(*ErrInvalidURL)
	return ok
}

type ErrServiceOffline struct {
	BaseURL string
}

func (e *ErrServiceOffline) Error() string {
	return "сервис проверки ссылок недоступен: " + e.BaseURL
}

func (e *ErrServiceOffline) Is(target error) bool {
	_, ok := target.(*ErrServiceOffline)
	return ok
}

type ErrServiceStatus struct {
	StatusCode int
}

func (e *ErrServiceStatus) Error() string {
	return fmt.Sprintf("сервер ответил статусом %d", e.StatusCode)
}

type ErrMalformedResponse struct {
	Cause error
}

func (e *ErrMalformedResponse) Error() string {
	return fmt.Sprintf("некорректный ответ сервиса: %v", e.Cause)
}

func (e *ErrMalformedResponse) Unwrap() error {
	return e.Cause
}

type ErrTooManyURLs struct {
	Count int
	Max   int
}

func (e *ErrTooManyURLs) Error() string {
	return fmt.Sprintf("слишком много URL в пакете: %d (максимум %d)", e.Count, e.Max)
}

func (e *ErrTooManyURLs) Is(target error) bool {
	_, ok := target.(*ErrTooManyURLs)
	return ok
}

type ErrInvalidFeed struct {
	Reason string
}

func (e *ErrInvalidFeed) Error() string {
	return "неверный формат данных фида: " + e.Reason
}

func (e *ErrInvalidFeed) Is(target error) bool {
	_, ok := target.(*ErrInvalidFeed)
	return ok
}

type ErrFeedUnavailable struct {
	URL   string
	Cause error
}

func (e *ErrFeedUnavailable) Error() string {
	return fmt.Sprintf("не удалось загрузить фид %s: %v", e.URL, e.Cause)
}

func (e *ErrFeedUnavailable) Unwrap() error {
	return e.Cause
}

type ErrCheckInProgress struct{}

func (e *ErrCheckInProgress) Error() string {
	return "проверка уже выполняется"
}

func (e *ErrCheckInProgress) Is(target error) bool {
	_, ok := target.(*ErrCheckInProgress)
	return ok
}

type ErrInvalidState struct {
	Current  string
	Expected string
}

func (e *ErrInvalidState) Error() string {
	return fmt.Sprintf("операция недоступна в состоянии %s (ожидалось %s)", e.Current, e.Expected)
}

type ErrUnknownMediaType struct {
	Type string
}

func (e *ErrUnknownMediaType) Error() string {
	return "неизвестный тип ссылки: " + e.Type
}

type ErrMissingRequiredField struct {
	FieldName string
}

func (e *ErrMissingRequiredField) Error() string {
	return fmt.Sprintf("отсутствует обязательное поле: %s", e.FieldName)
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
