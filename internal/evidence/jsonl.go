package evidence

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// maxLineBytes bounds a single JSON record
const maxLineBytes = 16 << 20

// ReadJSONLines decodes one Read per non-blank line and validates each
func ReadJSONLines(r io.Reader) ([]*Read, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var reads []*Read
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 || text[0] == '#' {
			continue
		}

		var read Read
		if err := json.Unmarshal(text, &read); err != nil {
			return nil, fmt.Errorf("evidence: line %d: %w", line, err)
		}
		if err := read.Validate(); err != nil {
			return nil, fmt.Errorf("evidence: line %d: %w", line, err)
		}
		reads = append(reads, &read)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("evidence: reading input: %w", err)
	}
	return reads, nil
}
