package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// CheckResult ответ сервиса проверки по одному URL.
type CheckResult struct {
	URL           string            `json:"url,omitempty"`
	Status        int               `json:"status"`
	OK            *bool             `json:"ok,omitempty"`
	StatusText    string            `json:"statusText,omitempty"`
	Method        string            `json:"method,omitempty"`
	ResponseTime  int64             `json:"responseTime"`
	Headers       map[string]string `json:"headers,omitempty"`
	ContentType   string            `json:"contentType,omitempty"`
	ContentLength *ContentLength    `json:"contentLength,omitempty"`
	HasContent    *bool             `json:"hasContent,omitempty"`
	Error         string            `json:"error,omitempty"`
	ErrorType     string            `json:"errorType,omitempty"`
}

func (r *CheckResult) HasAnyContent() bool {
	if r.HasContent != nil && *r.HasContent {
		return true
	}

	return r.ContentLength != nil && *r.ContentLength > 0
}

type BatchCheckRequest struct {
	URLs []string `json:"urls"`
}

type BatchCheckResponse struct {
	Results []CheckResult `json:"results"`
}

type ErrorResponse struct {
	Error        string `json:"error"`
	Message      string `json:"message,omitempty"`
	Status       *int   `json:"status,omitempty"`
	ResponseTime *int64 `json:"responseTime,omitempty"`
}

// ContentLength значение заголовка Content-Length; принимается как число или строка.
type ContentLength int64

func (c *ContentLength) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			*c = 0
			return nil
		}

		*c = ContentLength(n)

		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}

	*c = ContentLength(n)

	return nil
}
