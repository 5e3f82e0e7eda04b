package render

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"ComputeStats/internal/atomicfile"
)

// Splice places section between start and end in existing. When the markers
// are missing they are appended; an empty existing document gets a title.
func Splice(existing, section, start, end string) string {
	block := start + "\n" + section + "\n" + end
	if existing == "" {
		return "# 🧬 Scientific Computing Dashboard\n\n" + block + "\n"
	}
	i := strings.Index(existing, start)
	j := -1
	if i >= 0 {
		if k := strings.Index(existing[i+len(start):], end); k >= 0 {
			j = i + len(start) + k
		}
	}
	if i < 0 || j < 0 {
		return existing + "\n\n" + block + "\n"
	}
	return existing[:i] + block + existing[j+len(end):]
}

// UpdateFile splices section into the document at path and writes it back.
func UpdateFile(path, section, start, end string) error {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read %s: %w", path, err)
	}
	out := Splice(string(data), section, start, end)
	if out == string(data) {
		return nil
	}
	if err := atomicfile.Write(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
