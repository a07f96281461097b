package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/agentstation/propscan/pkg/errors"
	"github.com/agentstation/propscan/pkg/properties"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// DecodeJSON decodes a JSON response into the target structure and closes
// the body. The status code is not checked.
func DecodeJSON(resp *http.Response, target any) error {
	defer Close(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", "response", err)
	}

	return nil
}

// ReadErrorMessage returns the message carried by an error response and
// closes the body. The service reports failures as {"message": ...} where
// the message is a string or an object of field errors. Bodies without a
// usable message fall back to the status text.
func ReadErrorMessage(resp *http.Response) string {
	defer Close(resp)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil {
		var eb properties.ErrorBody
		if json.Unmarshal(body, &eb) == nil {
			if msg := eb.Text(); msg != "" {
				return msg
			}
		}
		if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "<") {
			return text
		}
	}

	if text := http.StatusText(resp.StatusCode); text != "" {
		return strings.ToLower(text)
	}
	return "unexpected response"
}

// Close drains and closes a response body so the connection can be reused.
func Close(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}
