package engine

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Registry dispatches archives to extractors by filename suffix.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]Extractor
	logger     *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		extractors: make(map[string]Extractor),
		logger:     logger,
	}
}

// RegisterExtractor registers e under its suffix. Registering the same suffix
// twice is an error.
func (r *Registry) RegisterExtractor(e Extractor) error {
	suffix := strings.ToLower(e.Suffix())
	if suffix == "" {
		return fmt.Errorf("extractor %s has an empty suffix", e.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.extractors[suffix]; ok {
		return fmt.Errorf("extractor for %s already registered", suffix)
	}
	r.extractors[suffix] = e
	return nil
}

// Extractor returns the extractor for archivePath, matching its suffix
// case-insensitively. The longest matching suffix wins.
func (r *Registry) Extractor(archivePath string) (Extractor, error) {
	lower := strings.ToLower(archivePath)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var match string
	for suffix := range r.extractors {
		if strings.HasSuffix(lower, suffix) && len(suffix) > len(match) {
			match = suffix
		}
	}
	if match == "" {
		return nil, &UnsupportedFormatError{Path: archivePath, Available: r.availableSuffixes()}
	}

	e := r.extractors[match]
	r.logger.Debug("resolved extractor",
		zap.String("archive", archivePath),
		zap.String("extractor", e.Name()),
	)
	return e, nil
}

func (r *Registry) AvailableSuffixes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.availableSuffixes()
}

func (r *Registry) availableSuffixes() []string {
	suffixes := lo.Keys(r.extractors)
	slices.Sort(suffixes)
	return suffixes
}
