package pdf

import (
	"log/slog"
)

// Normalization forms accepted by Config.Normalization.
const (
	NormNFKC = "nfkc"
	NormNFC  = "nfc"
	NormNone = "none"
)

const defaultColumnGap = 1.5

type Config struct {
	Normalization string  // nfkc | nfc | none; default nfkc
	IsolatePages  bool    // a failing page yields an empty page instead of failing the document
	ColumnGap     float64 // horizontal gap, in font sizes, that separates table cells; default 1.5
	MaxPages      int     // 0 = no limit
}

// DefaultConfig isolates pages and folds presentation forms with NFKC.
func DefaultConfig() Config {
	return Config{Normalization: NormNFKC, IsolatePages: true, ColumnGap: defaultColumnGap}
}

// Extractor reads PDF documents held in memory. pdfcpu supplies document
// metadata; ledongthuc/pdf supplies page text and positioned glyphs.
type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Normalization == "" {
		cfg.Normalization = NormNFKC
	}
	if cfg.ColumnGap <= 0 {
		cfg.ColumnGap = defaultColumnGap
	}
	return &Extractor{cfg: cfg, logger: logger}
}
