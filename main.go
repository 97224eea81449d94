package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/Ikomia-hub/infer-google-vision-ocr/internal/constants"
	"github.com/Ikomia-hub/infer-google-vision-ocr/ocr"
)

var (
	// Logger
	log = logrus.New()

	// Environment Variables
	logLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
)

// fileOutput is the JSON document written next to the input image.
type fileOutput struct {
	Task       string            `json:"task"`
	Version    string            `json:"version"`
	TextFields []ocr.TextField   `json:"text_fields"`
	Data       map[string]string `json:"data"`
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func run() error {
	credentials := flag.String("credentials", os.Getenv(constants.GoogleCredentialsEnv),
		"Path to a Google service account key file (default: $"+constants.GoogleCredentialsEnv+")")
	confidence := flag.Bool("confidence", false, "Request per-word confidence scores")
	output := flag.String("o", "", "Output JSON file (default: <image>.ocr.json)")
	quiet := flag.Bool("q", false, "Suppress the detected text summary")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `%s - Detect and extract text from an image using Google Cloud Vision

Usage: %s [options] <image>

Writes the detected text fields and the full text block as JSON and prints
the output file path on stdout.

Options:
`, taskName, os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()
	initLogger()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	imagePath := flag.Arg(0)

	img, err := imaging.Open(imagePath)
	if err != nil {
		return fmt.Errorf("opening image: %w", err)
	}
	frame := ocr.FrameFromImage(img)

	log.WithFields(logrus.Fields{
		"image":  imagePath,
		"width":  frame.Width,
		"height": frame.Height,
	}).Info("Running text detection")

	task := NewTask(&Param{GoogleApplicationCredentials: *credentials}, *confidence)

	out, err := task.Run(context.Background(), frame)
	if err != nil {
		return err
	}

	outPath := *output
	if outPath == "" {
		outPath = defaultOutputPath(imagePath)
	}
	if err := writeOutput(outPath, out); err != nil {
		return err
	}

	if !*quiet {
		color.New(color.FgCyan, color.Bold).Fprintf(os.Stderr, "Detected %d text fields\n", len(out.Fields))
		fmt.Fprintln(os.Stderr, out.Data[constants.DetectedTextKey])
	}

	fmt.Println(outPath)
	return nil
}

// defaultOutputPath derives the JSON output path from the input image path.
func defaultOutputPath(imagePath string) string {
	return strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".ocr.json"
}

// writeOutput marshals the task output slots to a JSON file.
func writeOutput(path string, out *TaskOutput) error {
	doc := fileOutput{
		Task:       taskName,
		Version:    taskVersion,
		TextFields: out.Fields,
		Data:       out.Data,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return nil
}

func initLogger() {
	var level logrus.Level
	switch logLevel {
	case "debug":
		level = logrus.DebugLevel
	case "info", "":
		level = logrus.InfoLevel
	case "warn":
		level = logrus.WarnLevel
	case "error":
		level = logrus.ErrorLevel
	default:
		log.Fatalf("Invalid log level: '%s'.", logLevel)
	}

	log.SetLevel(level)
	ocr.SetLogLevel(level)

	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}
