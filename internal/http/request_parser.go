package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"finance/internal/core"
	"finance/internal/services"
)

const maxBodyBytes = 64 << 10

// badRequestError marks a body that could not be decoded at all.
type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return "malformed request: " + e.err.Error() }

func (e *badRequestError) Unwrap() error { return e.err }

// RequestBodyParser reads a JSON or form encoded body once and exposes
// its fields as sanitized strings.
type RequestBodyParser struct {
	jsonData map[string]any
	formData url.Values
}

// ParseRequestBody decodes r's body. JSON is detected from the first
// byte so clients that omit the Content-Type still work.
func ParseRequestBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, &badRequestError{err: fmt.Errorf("read body: %w", err)}
	}

	p := &RequestBodyParser{}
	trimmed := strings.TrimSpace(string(body))
	switch {
	case trimmed == "":
		p.formData = url.Values{}
	case trimmed[0] == '{':
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			return nil, &badRequestError{err: fmt.Errorf("decode json: %w", err)}
		}
	default:
		if p.formData, err = url.ParseQuery(trimmed); err != nil {
			return nil, &badRequestError{err: fmt.Errorf("decode form: %w", err)}
		}
	}
	return p, nil
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		return sanitizeInput(stringValue(p.jsonData[key]))
	}
	return sanitizeInput(p.formData.Get(key))
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// parseTransactionRequest builds the service input from a POST body.
// Amounts accept a dot or comma decimal separator.
func parseTransactionRequest(w http.ResponseWriter, r *http.Request) (services.NewTransaction, error) {
	p, err := ParseRequestBody(w, r)
	if err != nil {
		return services.NewTransaction{}, err
	}

	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		return services.NewTransaction{}, err
	}
	return services.NewTransaction{
		Type:     core.TransactionType(p.Get("type")),
		Amount:   amount,
		Category: p.Get("category"),
		Date:     p.Get("date"),
		Note:     p.Get("note"),
	}, nil
}

func parseGoalRequest(w http.ResponseWriter, r *http.Request) (float64, error) {
	p, err := ParseRequestBody(w, r)
	if err != nil {
		return 0, err
	}
	return core.ParseAmount(p.Get("amount"))
}
