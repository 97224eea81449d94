package ocr

import (
	"context"
	"fmt"

	vision "cloud.google.com/go/vision/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/gabriel-vasile/mimetype"
	gax "github.com/googleapis/gax-go/v2"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// annotator is the subset of the Vision image annotator client the provider
// uses. It exists so tests can substitute a fake for the real client.
type annotator interface {
	AnnotateImage(ctx context.Context, req *visionpb.AnnotateImageRequest, opts ...gax.CallOption) (*visionpb.AnnotateImageResponse, error)
}

// GoogleVisionProvider implements text detection using the Google Cloud
// Vision API.
type GoogleVisionProvider struct {
	config Config

	// client is created on first use and reused across invocations. The
	// engine runs the task sequentially, so no lock guards it.
	client  annotator
	closeFn func() error
}

func newGoogleVisionProvider(config Config) (*GoogleVisionProvider, error) {
	return &GoogleVisionProvider{config: config}, nil
}

// ensureClient builds the Vision client on first call and caches it, so
// connection and auth setup is amortized across invocations.
func (p *GoogleVisionProvider) ensureClient(ctx context.Context) error {
	if p.client != nil {
		return nil
	}

	var opts []option.ClientOption
	if p.config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(p.config.CredentialsFile))
	}

	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		log.WithError(err).Error("Failed to create Vision client")
		return fmt.Errorf("error creating Vision client: %w", err)
	}

	p.client = client
	p.closeFn = client.Close
	log.Info("Successfully initialized Vision client")
	return nil
}

// Process implements the OCR Provider interface
func (p *GoogleVisionProvider) Process(ctx context.Context, frame *Frame) (*Result, error) {
	if frame == nil {
		return nil, fmt.Errorf("no input frame")
	}

	logger := log.WithFields(logrus.Fields{
		"provider": "google_vision",
		"width":    frame.Width,
		"height":   frame.Height,
	})
	logger.Debug("Starting Vision text detection")

	if err := p.ensureClient(ctx); err != nil {
		return nil, err
	}

	payload, err := frame.EncodeJPEG(p.config.JPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("encoding frame: %w", err)
	}

	mtype := mimetype.Detect(payload)
	logger.WithFields(logrus.Fields{
		"mime_type":    mtype.String(),
		"payload_size": len(payload),
	}).Debug("Encoded upload payload")

	req := &visionpb.AnnotateImageRequest{
		Image:    &visionpb.Image{Content: payload},
		Features: []*visionpb.Feature{{Type: visionpb.Feature_TEXT_DETECTION}},
	}
	if p.config.WordConfidence {
		// Word confidences come from the full text annotation, which needs
		// the document text detection feature.
		req.Features = append(req.Features, &visionpb.Feature{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION})
	}

	logger.Debug("Sending request to Vision API")
	resp, err := p.client.AnnotateImage(ctx, req)
	if err != nil {
		logger.WithError(err).Error("Vision request failed")
		return nil, fmt.Errorf("error detecting text: %w", err)
	}
	if resp == nil {
		logger.Error("Received nil response from Vision API")
		return nil, fmt.Errorf("received nil response from Vision API")
	}

	if msg := resp.GetError().GetMessage(); msg != "" {
		logger.WithField("error", msg).Error("Vision service reported an error")
		return nil, fmt.Errorf("%s\nFor more info on error messages, check: https://cloud.google.com/apis/design/errors", msg)
	}

	annotations := resp.GetTextAnnotations()
	if len(annotations) == 0 {
		logger.Warn("No text detected in image")
		return &Result{Metadata: p.metadata(mtype.String(), 0)}, nil
	}

	// The first annotation holds the concatenated text of the whole image,
	// the rest are the individual text units in document order.
	fullText := annotations[0].GetDescription()
	individual := annotations[1:]

	var confidences []float64
	if p.config.WordConfidence {
		confidences = flattenWordConfidences(resp.GetFullTextAnnotation())
		if len(confidences) != len(individual) {
			logger.WithFields(logrus.Fields{
				"word_scores": len(confidences),
				"annotations": len(individual),
			}).Error("Word confidence count does not match annotation count")
			return nil, fmt.Errorf("confidence count mismatch: %d word scores for %d annotations",
				len(confidences), len(individual))
		}
	}

	fields := make([]TextField, 0, len(individual))
	for i, annotation := range individual {
		x, y, w, h := boundingBox(annotation.GetBoundingPoly().GetVertices())

		confidence := 1.0
		if p.config.WordConfidence {
			confidence = confidences[i]
		}

		fields = append(fields, TextField{
			ID:         i,
			Text:       annotation.GetDescription(),
			Confidence: confidence,
			BoxX:       x,
			BoxY:       y,
			BoxWidth:   w,
			BoxHeight:  h,
			Color:      DefaultFieldColor,
		})
	}

	logger.WithField("field_count", len(fields)).Info("Successfully detected text")
	return &Result{
		Text:     fullText,
		Fields:   fields,
		Metadata: p.metadata(mtype.String(), len(fields)),
	}, nil
}

func (p *GoogleVisionProvider) metadata(mimeType string, fieldCount int) map[string]string {
	return map[string]string{
		"provider":    "google_vision",
		"mime_type":   mimeType,
		"field_count": fmt.Sprintf("%d", fieldCount),
	}
}

// boundingBox returns the axis-aligned box covering all polygon vertices.
// The polygon is an arbitrary quadrilateral, so min/max over every vertex
// is used rather than assuming a vertex order.
func boundingBox(vertices []*visionpb.Vertex) (x, y, w, h int) {
	if len(vertices) == 0 {
		return 0, 0, 0, 0
	}

	minX, minY := int(vertices[0].GetX()), int(vertices[0].GetY())
	maxX, maxY := minX, minY
	for _, v := range vertices[1:] {
		vx, vy := int(v.GetX()), int(v.GetY())
		if vx < minX {
			minX = vx
		}
		if vx > maxX {
			maxX = vx
		}
		if vy < minY {
			minY = vy
		}
		if vy > maxY {
			maxY = vy
		}
	}
	return minX, minY, maxX - minX, maxY - minY
}

// flattenWordConfidences walks the page/block/paragraph/word hierarchy of
// the full text annotation and returns the word confidences in traversal
// order. The caller checks the count against the individual annotations
// before pairing the two sequences positionally.
func flattenWordConfidences(fta *visionpb.TextAnnotation) []float64 {
	if fta == nil {
		return nil
	}

	var scores []float64
	for _, page := range fta.GetPages() {
		for _, block := range page.GetBlocks() {
			for _, paragraph := range block.GetParagraphs() {
				for _, word := range paragraph.GetWords() {
					scores = append(scores, float64(word.GetConfidence()))
				}
			}
		}
	}
	return scores
}

// Close releases resources used by the provider
func (p *GoogleVisionProvider) Close() error {
	if p.closeFn != nil {
		return p.closeFn()
	}
	return nil
}
