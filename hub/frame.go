package hub

import (
	"bytes"
	"strings"
)

// Encode frames data as one Server-Sent Event: an event line, one data line per
// line of data with carriage returns removed, and a terminating blank line.
func Encode(event string, data []byte) []byte {
	lines := strings.Split(strings.ReplaceAll(string(data), "\r", ""), "\n")

	var b bytes.Buffer
	b.Grow(len(event) + len(data) + 8*len(lines) + 10)

	b.WriteString("event: ")
	b.WriteString(event)
	b.WriteByte('\n')

	for _, line := range lines {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	return b.Bytes()
}
