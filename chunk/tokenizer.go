package chunk

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts tokens and splits text into token-bounded windows.
// Implementations must be safe for concurrent use.
type Tokenizer interface {
	// Count returns the number of tokens in text.
	Count(text string) int

	// Windows splits text into windows of at most size tokens, with overlap
	// tokens shared between consecutive windows. A text shorter than size
	// yields exactly one window.
	Windows(text string, size, overlap int) []string
}

// WordTokenizer approximates tokens with whitespace-separated words.
// It needs no model data and is the default tokenizer.
type WordTokenizer struct{}

var _ Tokenizer = WordTokenizer{}

func (WordTokenizer) Count(text string) int {
	return len(strings.Fields(text))
}

func (WordTokenizer) Windows(text string, size, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if len(words) <= size {
		return []string{strings.Join(words, " ")}
	}

	step := size - overlap
	if step < 1 {
		step = 1
	}

	var out []string
	for start := 0; ; start += step {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return out
}

// TiktokenTokenizer counts and splits on BPE tokens using the cl100k_base
// encoding, matching what embedding models actually see.
type TiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

var _ Tokenizer = (*TiktokenTokenizer)(nil)

// NewTiktokenTokenizer creates a tokenizer backed by the cl100k_base encoding.
func NewTiktokenTokenizer() (*TiktokenTokenizer, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, err
	}
	return &TiktokenTokenizer{enc: enc}, nil
}

func (t *TiktokenTokenizer) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

func (t *TiktokenTokenizer) Windows(text string, size, overlap int) []string {
	tokens := t.enc.Encode(text, nil, nil)
	if len(tokens) == 0 {
		return nil
	}
	if len(tokens) <= size {
		return []string{text}
	}

	step := size - overlap
	if step < 1 {
		step = 1
	}

	var out []string
	for start := 0; ; start += step {
		end := start + size
		if end > len(tokens) {
			end = len(tokens)
		}
		out = append(out, strings.TrimSpace(t.enc.Decode(tokens[start:end])))
		if end == len(tokens) {
			break
		}
	}
	return out
}
