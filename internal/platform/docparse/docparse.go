// Package docparse converts claim documents into text or structured records
// for the extraction stage. It handles JSON files/strings and plain text;
// binary formats are converted upstream before they reach this service.
package docparse

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ParseFile reads a claim document, normalizing JSON files to indented JSON
// text. Unsupported extensions are an error.
func ParseFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var data map[string]interface{}
		if err := json.Unmarshal(content, &data); err != nil {
			return "", fmt.Errorf("parse JSON document %s: %w", path, err)
		}
		pretty, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", fmt.Errorf("format JSON document %s: %w", path, err)
		}
		return string(pretty), nil
	case ".txt":
		return string(content), nil
	default:
		return "", fmt.Errorf("unsupported document format: %s", filepath.Ext(path))
	}
}

// ParseJSONString decodes a JSON object from a string.
func ParseJSONString(s string) (map[string]interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(s), &data); err != nil {
		return nil, fmt.Errorf("parse JSON string: %w", err)
	}
	return data, nil
}

// ExtractJSON finds the first decodable JSON object embedded in free text.
// Returns false when no balanced object decodes.
func ExtractJSON(text string) (map[string]interface{}, bool) {
	for start := strings.Index(text, "{"); start >= 0; {
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(text); i++ {
			ch := text[i]
			if escaped {
				escaped = false
				continue
			}
			switch ch {
			case '\\':
				if inString {
					escaped = true
				}
			case '"':
				inString = !inString
			case '{':
				if !inString {
					depth++
				}
			case '}':
				if !inString {
					depth--
					if depth == 0 {
						var data map[string]interface{}
						if err := json.Unmarshal([]byte(text[start:i+1]), &data); err == nil {
							return data, true
						}
						i = len(text) // candidate failed, move to next opening brace
					}
				}
			}
		}
		next := strings.Index(text[start+1:], "{")
		if next < 0 {
			break
		}
		start = start + 1 + next
	}
	return nil, false
}

// ValidateStructure checks that data carries every required field with a
// non-nil value, returning the names of the missing ones.
func ValidateStructure(data map[string]interface{}, required []string) (bool, []string) {
	var missing []string
	for _, field := range required {
		if v, ok := data[field]; !ok || v == nil {
			missing = append(missing, field)
		}
	}
	return len(missing) == 0, missing
}
