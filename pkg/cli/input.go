package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"aiteddy-hq/guardian/pkg/safety/model"
)

// maxLineBytes bounds a single batch line.
const maxLineBytes = 1 << 20

// Item is one reply to analyze and the context it was produced in.
type Item struct {
	Text    string                     `json:"text"`
	Context *model.ConversationContext `json:"context,omitempty"`
}

// ReadItems parses batch input. Blank lines and lines starting with "#" are
// skipped. A line starting with "{" must be a JSON Item; anything else is
// the reply text. Items without a context get defaults.
func ReadItems(r io.Reader, defaults model.ConversationContext) ([]string, []model.ConversationContext, error) {
	var (
		texts    []string
		contexts []model.ConversationContext
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !strings.HasPrefix(line, "{") {
			texts = append(texts, line)
			contexts = append(contexts, defaults)
			continue
		}

		var item Item
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			return nil, nil, fmt.Errorf("line %d: invalid JSON item: %w", lineNo, err)
		}
		if item.Text == "" {
			return nil, nil, fmt.Errorf("line %d: text is required", lineNo)
		}
		cc := defaults
		if item.Context != nil {
			cc = *item.Context
		}
		texts = append(texts, item.Text)
		contexts = append(contexts, cc)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read input: %w", err)
	}
	return texts, contexts, nil
}
