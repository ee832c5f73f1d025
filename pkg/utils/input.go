package utils

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoInput is returned by ArgsOrReader when both sources are empty.
var ErrNoInput = errors.New("no input given")

// ArgsOrReader joins args with spaces, or reads all of r when args is empty.
// Surrounding whitespace is trimmed.
func ArgsOrReader(args []string, r io.Reader) (string, error) {
	text := strings.Join(args, " ")
	if len(args) == 0 && r != nil {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoInput
	}
	return text, nil
}
