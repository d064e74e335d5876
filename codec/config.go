package codec

import (
	"fmt"

	"github.com/arloliu/usc/format"
	"github.com/arloliu/usc/frame"
	"github.com/arloliu/usc/internal/options"
	"github.com/arloliu/usc/template"
)

// DefaultWindowSize is the default number of lines per DATA packet. It is
// tuned for adversarial varied streams; highly repetitive streams benefit
// from larger windows.
const DefaultWindowSize = 25

// Config holds an encode session's tunables. Construct through NewEncoder's
// functional options.
type Config struct {
	windowSize       int
	mode             format.Mode
	maxTemplates     int
	promoteThreshold int
	canonicalize     bool
	outerCompression format.CompressionType
	dictSampleBytes  int
}

// Option is a functional option for the encoder configuration.
type Option = options.Option[*Config]

func newConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		windowSize:       DefaultWindowSize,
		mode:             format.ModeStream,
		maxTemplates:     template.DefaultMaxTemplates,
		promoteThreshold: template.DefaultPromoteThreshold,
		canonicalize:     true,
		outerCompression: format.CompressionZstd,
		dictSampleBytes:  frame.DefaultDictSampleBytes,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithWindowSize sets the number of lines per DATA packet.
func WithWindowSize(n int) Option {
	return options.New(func(cfg *Config) error {
		if n <= 0 {
			return fmt.Errorf("invalid window size: %d", n)
		}
		cfg.windowSize = n

		return nil
	})
}

// WithMode selects the surface mode: stream, hot-lite-full, or cold.
func WithMode(mode format.Mode) Option {
	return options.New(func(cfg *Config) error {
		if !mode.Valid() {
			return fmt.Errorf("invalid mode: %d", mode)
		}
		cfg.mode = mode

		return nil
	})
}

// WithMaxTemplates caps the template bank size. Lines mined past the cap
// are stored raw.
func WithMaxTemplates(n int) Option {
	return options.New(func(cfg *Config) error {
		if n <= 0 || n > template.DefaultMaxTemplates {
			return fmt.Errorf("invalid template cap: %d", n)
		}
		cfg.maxTemplates = n

		return nil
	})
}

// WithPromoteThreshold sets the number of consistent observations before a
// slot's typed channel is locked in.
func WithPromoteThreshold(n int) Option {
	return options.New(func(cfg *Config) error {
		if n <= 0 {
			return fmt.Errorf("invalid promote threshold: %d", n)
		}
		cfg.promoteThreshold = n

		return nil
	})
}

// WithCanonicalization toggles the lossless canonicalizer. With it off, the
// miner sees raw lines; volatile tokens then surface as slot values instead
// of side-carried originals.
func WithCanonicalization(enabled bool) Option {
	return options.NoError(func(cfg *Config) {
		cfg.canonicalize = enabled
	})
}

// WithOuterCompression selects the cold-mode entropy backend.
func WithOuterCompression(typ format.CompressionType) Option {
	return options.New(func(cfg *Config) error {
		switch typ {
		case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
			cfg.outerCompression = typ
			return nil
		default:
			return fmt.Errorf("invalid outer compression: %v", typ)
		}
	})
}

// WithDictSampleBytes sets how much of the framed stream's head is sampled
// as the cold-mode trained dictionary.
func WithDictSampleBytes(n int) Option {
	return options.New(func(cfg *Config) error {
		if n <= 0 {
			return fmt.Errorf("invalid dictionary sample size: %d", n)
		}
		cfg.dictSampleBytes = n

		return nil
	})
}
