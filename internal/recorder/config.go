package recorder

import (
	"strings"
	"time"

	"bmxfeed/internal/errors"
	"bmxfeed/pkg/exception"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

const (
	defaultSegmentMaxBytes int64 = 256 << 20
	defaultQueueSize             = 4096
	defaultBufferSize            = 256 * 1024
	defaultFilePrefix            = "bmx"
	defaultEncoding              = "utf-8"

	// DefaultDelimiter separates records in capture files.
	DefaultDelimiter = ";;"
	segmentExt       = ".txt"
)

var defaultSegmentMaxDuration = time.Hour

// Config controls capture writer behavior.
type Config struct {
	Dir                string
	FilePrefix         string
	Delimiter          string
	SegmentMaxBytes    int64
	SegmentMaxDuration time.Duration
	QueueSize          int
	BufferSize         int
	FlushInterval      time.Duration
	SyncInterval       time.Duration
}

// DefaultConfig returns a baseline configuration for the capture writer.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:                dir,
		FilePrefix:         defaultFilePrefix,
		Delimiter:          DefaultDelimiter,
		SegmentMaxBytes:    defaultSegmentMaxBytes,
		SegmentMaxDuration: defaultSegmentMaxDuration,
		QueueSize:          defaultQueueSize,
		BufferSize:         defaultBufferSize,
		FlushInterval:      time.Second,
	}
}

func (c Config) withDefaults() Config {
	if c.SegmentMaxBytes == 0 {
		c.SegmentMaxBytes = defaultSegmentMaxBytes
	}
	if c.QueueSize == 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.BufferSize == 0 {
		c.BufferSize = defaultBufferSize
	}
	if c.FilePrefix == "" {
		c.FilePrefix = defaultFilePrefix
	}
	if c.Delimiter == "" {
		c.Delimiter = DefaultDelimiter
	}
	return c
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if c.Dir == "" {
		return errors.Wrap(exception.ErrRecorderConfig, "Dir is empty")
	}
	if c.SegmentMaxBytes <= 0 {
		return errors.Wrap(exception.ErrRecorderConfig, "SegmentMaxBytes must be > 0")
	}
	if c.QueueSize <= 0 {
		return errors.Wrap(exception.ErrRecorderConfig, "QueueSize must be > 0")
	}
	if c.BufferSize <= 0 {
		return errors.Wrap(exception.ErrRecorderConfig, "BufferSize must be > 0")
	}
	if c.FilePrefix == "" || strings.ContainsAny(c.FilePrefix, `/\`) {
		return errors.Wrapf(exception.ErrRecorderConfig, "FilePrefix %q is not a file name", c.FilePrefix)
	}
	if c.Delimiter == "" {
		return errors.Wrap(exception.ErrRecorderConfig, "Delimiter is empty")
	}
	if c.FlushInterval < 0 {
		return errors.Wrap(exception.ErrRecorderConfig, "FlushInterval must be >= 0")
	}
	if c.SyncInterval < 0 {
		return errors.Wrap(exception.ErrRecorderConfig, "SyncInterval must be >= 0")
	}
	return nil
}

// PlaybackConfig controls replay of captured records.
type PlaybackConfig struct {
	// Files are replayed in the given order.
	Files     []string
	Delimiter string
	// Encoding is an IANA charset name. Empty means UTF-8.
	Encoding string
}

func (c PlaybackConfig) withDefaults() PlaybackConfig {
	if c.Encoding == "" {
		c.Encoding = defaultEncoding
	}
	return c
}

// Validate checks if the config is usable.
func (c PlaybackConfig) Validate() error {
	c = c.withDefaults()
	if len(c.Files) == 0 {
		return exception.ErrReplayNoFiles
	}
	if c.Delimiter == "" {
		return exception.ErrReplayNoDelimiter
	}
	if _, err := lookupEncoding(c.Encoding); err != nil {
		return err
	}
	return nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, errors.Mark(exception.ErrReplayEncoding, errors.Wrapf(err, "encoding: %s", name))
	}
	if enc == nil {
		return nil, errors.Wrapf(exception.ErrReplayEncoding, "encoding: %s", name)
	}
	return enc, nil
}
