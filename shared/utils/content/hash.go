package content

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// Hash returns the canonical SHA-256 hash of a content payload. Map keys
// are sorted by json.Marshal at every nesting level, so two semantically
// equal payloads always hash the same.
func Hash(data map[string]interface{}) (string, error) {
	if data == nil {
		data = map[string]interface{}{}
	}

	canonical, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to serialize content: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return fmt.Sprintf("%x", sum), nil
}

// HasUnpublishedChanges reports whether the draft differs from the last
// published copy recorded by publishedHash. A document that was never
// published always has unpublished changes.
func HasUnpublishedChanges(draft map[string]interface{}, publishedHash string) bool {
	if publishedHash == "" {
		return true
	}
	draftHash, err := Hash(draft)
	if err != nil {
		return true
	}
	return draftHash != publishedHash
}
