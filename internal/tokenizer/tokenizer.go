// Package tokenizer estimates token counts for rendered map documents.
package tokenizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// DefaultModel is used when no tokenizer model is configured.
	DefaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// NewCounter returns a Counter for the requested model. Models unknown to
// tiktoken fall back to the cl100k_base encoding; the returned name reports
// which tokenizer is actually in use.
func NewCounter(model string) (Counter, string, error) {
	trimmedModel := strings.ToLower(strings.TrimSpace(model))
	if trimmedModel == "" {
		trimmedModel = DefaultModel
	}
	encoding, encodingError := tiktoken.EncodingForModel(trimmedModel)
	if encodingError == nil && encoding != nil {
		return openAICounter{encoding: encoding, name: trimmedModel}, trimmedModel, nil
	}
	fallbackEncoding, fallbackError := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackError != nil {
		return nil, "", fmt.Errorf("initialize fallback tokenizer: %w", fallbackError)
	}
	return openAICounter{encoding: fallbackEncoding, name: defaultEncodingName}, defaultEncodingName, nil
}

type openAICounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter openAICounter) Name() string {
	return counter.name
}

func (counter openAICounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errors.New("nil tiktoken encoder")
	}
	tokenIDs := counter.encoding.Encode(input, nil, nil)
	return len(tokenIDs), nil
}
