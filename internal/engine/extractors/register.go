package extractors

import (
	"fmt"

	"github.com/infracollect/dicomcheck/internal/engine"
	"go.uber.org/zap"
)

type Config struct {
	Cab CabExtractorConfig
}

// Register adds the ZIP and CAB extractors to registry.
func Register(registry *engine.Registry, logger *zap.Logger, cfg Config) error {
	cab, err := NewCabExtractor(logger.Named("cab"), cfg.Cab)
	if err != nil {
		return fmt.Errorf("failed to create cab extractor: %w", err)
	}

	for _, e := range []engine.Extractor{NewZipExtractor(logger.Named("zip")), cab} {
		if err := registry.RegisterExtractor(e); err != nil {
			return err
		}
	}

	return nil
}
