package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"pocket-coach/internal/models"

	"go.uber.org/zap"
)

const defaultTipsTopK = 3

// RAGService finds coach tips relevant to a user message.
type RAGService struct {
	knowledgeRepo KnowledgeRepository
	topK          int
	logger        *zap.Logger
}

func NewRAGService(knowledgeRepo KnowledgeRepository, logger *zap.Logger) *RAGService {
	return &RAGService{
		knowledgeRepo: knowledgeRepo,
		topK:          defaultTipsTopK,
		logger:        logger,
	}
}

// SearchTips matches the message's significant words against tip titles and
// bodies.
func (s *RAGService) SearchTips(ctx context.Context, query string, tipType *models.TipType) ([]*models.CoachTip, error) {
	terms := searchTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	results, err := s.knowledgeRepo.SimpleTextSearch(ctx, terms, s.topK, tipType)
	if err != nil {
		return nil, fmt.Errorf("failed to search coach tips: %w", err)
	}

	s.logger.Debug("Coach tip search completed",
		zap.Strings("terms", terms),
		zap.Int("results", len(results)),
	)

	return results, nil
}

// BuildContext renders tips as a numbered block for the LLM prompt.
func (s *RAGService) BuildContext(results []*models.CoachTip) string {
	if len(results) == 0 {
		return "Sem dicas relevantes na base de conhecimento."
	}

	var builder strings.Builder
	builder.WriteString("Dicas relevantes da base de conhecimento:\n\n")

	for i, result := range results {
		builder.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, result.Type, result.Title))
		builder.WriteString(fmt.Sprintf("   %s\n\n", result.Content))
	}

	return builder.String()
}

// searchTerms keeps words of four or more letters, lowercased and deduplicated.
func searchTerms(query string) []string {
	words := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(words))
	terms := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) < 4 || seen[w] {
			continue
		}
		seen[w] = true
		terms = append(terms, w)
		if len(terms) == 8 {
			break
		}
	}
	return terms
}
