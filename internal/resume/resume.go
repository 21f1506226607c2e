// Package resume loads the candidate resume used for scoring.
package resume

import (
	"fmt"
	"os"
	"strings"
)

// Load reads the resume text from path. A missing or empty resume is fatal
// for scoring, so the error says how to fix it.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("resume not found at %s (create a plain-text resume file and point resume_path at it): %w", path, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("resume at %s is empty", path)
	}
	return text, nil
}
