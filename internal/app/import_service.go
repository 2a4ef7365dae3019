package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/SamOhrenberg/AboutSamuel/internal/model"
	"github.com/SamOhrenberg/AboutSamuel/internal/pkg/pdfextract"
	"github.com/SamOhrenberg/AboutSamuel/internal/platform/logger"
	"github.com/SamOhrenberg/AboutSamuel/internal/rag"
)

const (
	defaultChunkSize    = 800
	defaultChunkOverlap = 80
	maxImportKeywords   = 40
)

var (
	ErrImportEmpty      = errors.New("document has no extractable text")
	ErrImportUnreadable = errors.New("document could not be read")
)

type InformationCreator interface {
	Create(ctx context.Context, info *model.Information) error
}

// ImportService turns an uploaded PDF, usually a résumé, into information snippets.
type ImportService struct {
	info InformationCreator
	log  *logger.Logger
}

func NewImportService(info InformationCreator, log *logger.Logger) *ImportService {
	return &ImportService{info: info, log: log.With("component", "import")}
}

type ImportResult struct {
	Created  int                 `json:"created"`
	Snippets []model.Information `json:"snippets"`
}

// ImportPDF extracts the text of r, splits it into overlapping chunks and stores each
// chunk as a snippet keyed by its own tokens.
func (s *ImportService) ImportPDF(ctx context.Context, r io.Reader) (*ImportResult, error) {
	text, err := pdfextract.ExtractText(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportUnreadable, err)
	}
	return s.ImportText(ctx, text)
}

func (s *ImportService) ImportText(ctx context.Context, text string) (*ImportResult, error) {
	text = normalizeExtracted(text)
	if text == "" {
		return nil, ErrImportEmpty
	}

	chunks := chunkText(text, defaultChunkSize, defaultChunkOverlap)
	result := &ImportResult{Snippets: make([]model.Information, 0, len(chunks))}
	for _, chunk := range chunks {
		keywords := rag.Tokenize(chunk)
		if len(keywords) > maxImportKeywords {
			keywords = keywords[:maxImportKeywords]
		}
		body := chunk
		info := model.NewInformation(&body, keywords)
		if err := s.info.Create(ctx, info); err != nil {
			return result, err
		}
		result.Snippets = append(result.Snippets, *info)
		result.Created++
	}
	s.log.Info("document imported", "chunks", result.Created)
	return result, nil
}

// normalizeExtracted trims every line and collapses runs of blank lines.
func normalizeExtracted(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// chunkText splits text into overlapping chunks by rune count. Cuts prefer the last
// whitespace inside the window so words stay whole.
func chunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 2
	}
	runes := []rune(text)
	var chunks []string
	for i := 0; i < len(runes); {
		end := i + size
		if end >= len(runes) {
			end = len(runes)
		} else if cut := lastSpace(runes[i:end]); cut > size/2 {
			end = i + cut
		}
		if chunk := strings.TrimSpace(string(runes[i:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
		next := end - overlap
		if next <= i {
			next = end
		}
		i = next
	}
	return chunks
}

func lastSpace(runes []rune) int {
	for j := len(runes) - 1; j >= 0; j-- {
		switch runes[j] {
		case ' ', '\n', '\t':
			return j
		}
	}
	return -1
}
