// Package budget trims conversation history to a token ceiling.
package budget

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/regisleandro/alfredo-ai/internal/domain"
)

// Counter counts the tokens of a piece of text under a fixed encoding.
type Counter interface {
	Count(text string) int
}

// encodingName is the tokenizer encoding used for budgeting. All
// counting must go through the same encoding to stay deterministic.
const encodingName = "cl100k_base"

// TiktokenCounter counts tokens with the cl100k_base BPE encoding.
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenCounter loads the encoding. Loading can fetch the BPE
// ranks on first use, so this belongs in process startup.
func NewTiktokenCounter() (*TiktokenCounter, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", encodingName, err)
	}
	return &TiktokenCounter{encoding: encoding}, nil
}

// Count returns the token count of text.
func (c *TiktokenCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// Fit returns the largest suffix-preserving subset of turns whose
// content fits ceiling, evicting the oldest non-system turns first.
// It never evicts the sole remaining turn and never errors: when the
// ceiling is unreachable the best-effort remainder is returned.
// Turns with empty content do not count against the ceiling.
func Fit(turns []domain.Turn, ceiling int, counter Counter) []domain.Turn {
	trimmed := make([]domain.Turn, len(turns))
	copy(trimmed, turns)

	for totalTokens(trimmed, counter) > ceiling && len(trimmed) > 1 {
		evicted := false
		for i, turn := range trimmed {
			if turn.Role == domain.RoleSystem {
				continue
			}
			trimmed = append(trimmed[:i], trimmed[i+1:]...)
			evicted = true
			break
		}
		if !evicted {
			break
		}
	}
	return trimmed
}

func totalTokens(turns []domain.Turn, counter Counter) int {
	total := 0
	for _, turn := range turns {
		if turn.Content == "" {
			continue
		}
		total += counter.Count(turn.Content)
	}
	return total
}
