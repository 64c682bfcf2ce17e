package chunker

import (
	"fmt"
	"strings"
)

type Config struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

// Splitter cuts text into overlapping chunks for embedding. It tries the
// configured separators coarsest-first: pieces that fit within ChunkSize are
// merged back together with up to ChunkOverlap characters of carried-over
// context, oversize pieces recurse into the next separator, and a piece no
// separator can break is hard-cut at ChunkSize. Lengths are in runes.
//
// Splitting is deterministic: the same text and configuration always yield
// the same chunk sequence.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

func NewSplitter(cfg Config) (*Splitter, error) {
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("chunk overlap must be in [0, chunk size), got %d", cfg.ChunkOverlap)
	}
	separators := cfg.Separators
	if len(separators) == 0 {
		separators = []string{"\n\n", "\n", " "}
	}
	return &Splitter{
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
		separators:   separators,
	}, nil
}

// Split returns the chunk sequence for text. Empty or whitespace-only input
// yields an empty sequence.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if runeLen(text) <= s.chunkSize {
		return []string{text}
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	sep := ""
	var remaining []string
	for i, candidate := range separators {
		if strings.Contains(text, candidate) {
			sep = candidate
			remaining = separators[i+1:]
			break
		}
	}
	if sep == "" {
		// No separator present anywhere in this piece.
		return s.hardCut(text)
	}

	parts := strings.Split(text, sep)
	var chunks []string
	var fitting []string
	for _, part := range parts {
		if runeLen(part) < s.chunkSize {
			fitting = append(fitting, part)
			continue
		}
		if len(fitting) > 0 {
			chunks = append(chunks, s.merge(fitting, sep)...)
			fitting = nil
		}
		if len(remaining) == 0 {
			chunks = append(chunks, s.hardCut(part)...)
		} else {
			chunks = append(chunks, s.split(part, remaining)...)
		}
	}
	if len(fitting) > 0 {
		chunks = append(chunks, s.merge(fitting, sep)...)
	}
	return chunks
}

// merge joins consecutive fitting parts back with their separator into
// chunks of at most chunkSize runes, carrying trailing parts forward so
// adjacent chunks share up to chunkOverlap runes of context.
func (s *Splitter) merge(parts []string, sep string) []string {
	sepLen := runeLen(sep)
	var chunks []string
	var window []string
	total := 0

	windowLen := func(extra int) int {
		n := total + extra
		gaps := len(window)
		if extra == 0 {
			gaps--
		}
		if gaps > 0 {
			n += gaps * sepLen
		}
		return n
	}

	for _, part := range parts {
		partLen := runeLen(part)
		if len(window) > 0 && windowLen(partLen) > s.chunkSize {
			if joined := strings.TrimSpace(strings.Join(window, sep)); joined != "" {
				chunks = append(chunks, joined)
			}
			for len(window) > 0 && (total > s.chunkOverlap || windowLen(partLen) > s.chunkSize) {
				total -= runeLen(window[0])
				window = window[1:]
			}
		}
		window = append(window, part)
		total += partLen
	}
	if joined := strings.TrimSpace(strings.Join(window, sep)); joined != "" {
		chunks = append(chunks, joined)
	}
	return chunks
}

// hardCut slices text at fixed rune strides so that adjacent chunks share
// exactly chunkOverlap runes.
func (s *Splitter) hardCut(text string) []string {
	runes := []rune(text)
	step := s.chunkSize - s.chunkOverlap
	var chunks []string
	for i := 0; i < len(runes); i += step {
		end := i + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

func runeLen(s string) int {
	return len([]rune(s))
}
