package ocr

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// Provider defines the interface for text detection backends
type Provider interface {
	Process(ctx context.Context, frame *Frame) (*Result, error)
}

// Config holds the OCR provider configuration
type Config struct {
	// Path to a Google service account key file. When empty the client
	// falls back to application default credentials.
	CredentialsFile string

	// Request per-word confidence scores from the service. When unset
	// every text field is reported with confidence 1.0.
	WordConfidence bool

	// JPEG quality used when encoding frames for upload (1-100).
	// Zero selects the default quality.
	JPEGQuality int
}

// NewProvider creates a new OCR provider based on configuration
func NewProvider(config Config) (Provider, error) {
	if config.JPEGQuality < 0 || config.JPEGQuality > 100 {
		return nil, fmt.Errorf("invalid JPEG quality: %d", config.JPEGQuality)
	}

	log.WithFields(logrus.Fields{
		"credentials_file": config.CredentialsFile,
		"word_confidence":  config.WordConfidence,
	}).Info("Using Google Vision provider")
	return newGoogleVisionProvider(config)
}

// SetLogLevel sets the logging level for the OCR package
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}
