package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"pocket-coach/internal/models"
	"pocket-coach/internal/repository"
	"pocket-coach/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	tipCacheFile  = ".seed_cache.json"
	maxTipContent = 8000
)

type ingestedFile struct {
	Hash       string    `json:"hash"`
	IngestedAt time.Time `json:"ingested_at"`
}

// tipCache remembers which PDFs were already stored, keyed by relative path.
type tipCache struct {
	Files map[string]ingestedFile `json:"files"`
}

func loadTipCache(path string) (*tipCache, error) {
	cache := &tipCache{Files: make(map[string]ingestedFile)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	if len(data) == 0 {
		return cache, nil
	}
	if err := json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("failed to parse cache file: %w", err)
	}
	if cache.Files == nil {
		cache.Files = make(map[string]ingestedFile)
	}
	return cache, nil
}

func saveTipCache(path string, cache *tipCache) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// seedTipsFromPDFs reads every PDF under dir/<tip type>/ and stores its text
// as a coach tip titled after the file name.
func seedTipsFromPDFs(
	ctx context.Context,
	dir string,
	repo *repository.KnowledgeRepository,
	ocr *service.OCRService,
	logger *zap.Logger,
) error {
	cachePath := filepath.Join(dir, tipCacheFile)
	cache, err := loadTipCache(cachePath)
	if err != nil {
		logger.Warn("Failed to load cache, will process all files", zap.Error(err))
		cache = &tipCache{Files: make(map[string]ingestedFile)}
	}

	stored := 0
	for _, tipType := range []models.TipType{models.TipTypeBudgeting, models.TipTypeSavings, models.TipTypeHabits} {
		paths, err := filepath.Glob(filepath.Join(dir, string(tipType), "*.pdf"))
		if err != nil {
			return err
		}

		for _, path := range paths {
			rel, _ := filepath.Rel(dir, path)

			data, err := os.ReadFile(path)
			if err != nil {
				logger.Error("Failed to read PDF", zap.String("path", path), zap.Error(err))
				continue
			}
			sum := sha256.Sum256(data)
			hash := hex.EncodeToString(sum[:])

			if cached, ok := cache.Files[rel]; ok && cached.Hash == hash {
				logger.Info("PDF already ingested, skipping", zap.String("path", rel))
				continue
			}

			text, err := ocr.ExtractPDFText(data)
			if err != nil {
				logger.Error("Failed to extract text from PDF", zap.String("path", rel), zap.Error(err))
				continue
			}
			text = strings.TrimSpace(text)
			if text == "" {
				logger.Warn("No text extracted from PDF", zap.String("path", rel))
				continue
			}
			if len(text) > maxTipContent {
				text = text[:maxTipContent]
				for !utf8.ValidString(text) {
					text = text[:len(text)-1]
				}
			}

			now := time.Now().UTC()
			ok, err := repo.Create(ctx, &models.CoachTip{
				ID:        uuid.New(),
				Type:      tipType,
				Title:     titleFromFileName(path),
				Content:   text,
				CreatedAt: now,
			})
			if err != nil {
				logger.Error("Failed to store tip", zap.String("path", rel), zap.Error(err))
				continue
			}
			if ok {
				stored++
			}
			logger.Info("Tip ingested from PDF",
				zap.String("path", rel),
				zap.String("type", string(tipType)),
				zap.Int("content_length", len(text)),
				zap.Bool("inserted", ok),
			)
			cache.Files[rel] = ingestedFile{Hash: hash, IngestedAt: now}
		}
	}

	if err := saveTipCache(cachePath, cache); err != nil {
		logger.Warn("Failed to save cache", zap.Error(err))
	}
	logger.Info("PDF tips seeded", zap.Int("inserted", stored))
	return nil
}

// titleFromFileName turns "poupar_para_ferias.pdf" into "Poupar para ferias".
func titleFromFileName(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	}), " ")
	if name == "" {
		return filepath.Base(path)
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
