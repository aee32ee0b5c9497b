package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
)

// JSONHandler implements the IOHandler interface for JSON-Lines communication.
// Every view is written as one JSON object; feedback is written as
// {"message": "..."}.
type JSONHandler struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder
}

// JSONCommand is the structured form of an input line.
type JSONCommand struct {
	Command string   `json:"command"`
	IDs     []string `json:"ids,omitempty"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(_ context.Context, view View) error {
	return h.Encoder.Encode(view)
}

// Input reads one line. A line holding a JSONCommand object or a JSON string
// is converted to its text form; anything else is passed through as text.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var cmd JSONCommand
	if strings.HasPrefix(text, "{") && json.Unmarshal([]byte(text), &cmd) == nil {
		text = strings.TrimSpace(cmd.Command + " " + strings.Join(cmd.IDs, " "))
	} else {
		var val string
		if err := json.Unmarshal([]byte(text), &val); err == nil {
			text = val
		}
	}
	return SanitizeInput(text)
}

func (h *JSONHandler) SystemOutput(_ context.Context, msg string) error {
	return h.Encoder.Encode(map[string]string{"message": msg})
}
