package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// MaxRequestBodySize caps JSON request bodies at 1MB.
const MaxRequestBodySize = 1 << 20

// ErrContentType is returned when a request declares a non-JSON body.
var ErrContentType = errors.New("content type must be application/json")

// DecodeJSON decodes exactly one JSON object of type T from the request body.
// A missing Content-Type is accepted; any other media type than
// application/json is not. Errors carry client-presentable messages.
func DecodeJSON[T any](r *http.Request) (T, error) {
	var v T

	body := http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)
	defer body.Close()

	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err != nil || mt != "application/json" {
			return v, ErrContentType
		}
	}

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&v); err != nil {
		var zero T
		return zero, decodeError(err)
	}
	if dec.More() {
		var zero T
		return zero, errors.New("request body contains multiple JSON objects")
	}
	return v, nil
}

func decodeError(err error) error {
	var (
		syntaxErr    *json.SyntaxError
		unmarshalErr *json.UnmarshalTypeError
		maxBytesErr  *http.MaxBytesError
	)

	switch {
	case errors.As(err, &syntaxErr):
		return fmt.Errorf("malformed JSON at position %d", syntaxErr.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return errors.New("malformed JSON: unexpected end of body")
	case errors.As(err, &unmarshalErr):
		return fmt.Errorf("invalid value for field %q", unmarshalErr.Field)
	case errors.As(err, &maxBytesErr):
		return fmt.Errorf("request body too large (max %d bytes)", maxBytesErr.Limit)
	case errors.Is(err, io.EOF):
		return errors.New("request body is empty")
	default:
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
}
