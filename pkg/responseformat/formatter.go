package responseformat

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Supported encodings.
const (
	FormatJSON    = "json"
	FormatMsgPack = "msgpack"

	contentTypeJSON    = "application/json"
	contentTypeMsgPack = "application/x-msgpack"
)

// Formatter handles encoding and writing responses in JSON or MessagePack format
type Formatter struct{}

// NewFormatter creates a new response formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Negotiate picks the encoding for a request: a format=msgpack query
// parameter or an Accept header naming MessagePack selects it, anything else
// gets JSON.
func Negotiate(req *http.Request) string {
	if req.URL.Query().Get("format") == FormatMsgPack {
		return FormatMsgPack
	}
	if strings.Contains(req.Header.Get("Accept"), contentTypeMsgPack) {
		return FormatMsgPack
	}
	return FormatJSON
}

// WriteResponse writes data with the given status in the negotiated format.
func (f *Formatter) WriteResponse(w http.ResponseWriter, req *http.Request, status int, data any) error {
	format := Negotiate(req)
	w.Header().Set("Content-Type", ContentType(format))
	w.WriteHeader(status)
	return Encode(w, format, data)
}

// ContentType is the MIME type for a format.
func ContentType(format string) string {
	if format == FormatMsgPack {
		return contentTypeMsgPack
	}
	return contentTypeJSON
}

// Encode writes data to w. JSON tags name the fields in both encodings.
func Encode(w io.Writer, format string, data any) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatMsgPack:
		encoder := msgpack.NewEncoder(w)
		encoder.SetCustomStructTag("json") // Use json tags for MessagePack
		return encoder.Encode(data)
	}
	return fmt.Errorf("unknown format %q", format)
}
