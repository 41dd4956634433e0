package chunker

import (
	"log"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// EncodingName is the subword encoding used for token windows
	EncodingName = "cl100k_base"

	// DefaultSize is the window length in tokens
	DefaultSize = 100

	// DefaultOverlap is how many tokens consecutive windows share
	DefaultOverlap = 10
)

// Chunker slices document text into overlapping token windows.
type Chunker struct {
	size    int
	overlap int
	enc     *tiktoken.Tiktoken
}

// New creates a Chunker with the given window size and overlap. Non-positive
// size falls back to DefaultSize; negative overlap is treated as zero. The
// tokenizer is initialized once here; if that fails the chunker stays usable
// and splits on whitespace words instead.
func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = 0
	}

	enc, err := tiktoken.GetEncoding(EncodingName)
	if err != nil {
		log.Printf("chunker: %s encoding unavailable, using word fallback: %v", EncodingName, err)
		enc = nil
	}

	return &Chunker{size: size, overlap: overlap, enc: enc}
}

// Size returns the configured window size in tokens.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured window overlap in tokens.
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk splits text into overlapping windows. Empty input yields no chunks.
func (c *Chunker) Chunk(text string) []string {
	if text == "" {
		return nil
	}
	if c.enc == nil {
		return c.chunkWords(text)
	}

	tokens := c.enc.Encode(text, nil, nil)
	if len(tokens) == 0 {
		return nil
	}

	var chunks []string
	for i := 0; i < len(tokens); {
		end := i + c.size
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, c.enc.Decode(tokens[i:end]))

		step := c.size - c.overlap
		if step <= 0 {
			// Window would not advance; stop rather than loop forever.
			break
		}
		i += step
	}
	return chunks
}

// chunkWords is the tokenizer-free fallback: whitespace words instead of
// subword tokens, same window and overlap arithmetic.
func (c *Chunker) chunkWords(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	for i := 0; i < len(words); {
		end := i + c.size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))

		step := c.size - c.overlap
		if step <= 0 {
			break
		}
		i += step
	}
	return chunks
}
