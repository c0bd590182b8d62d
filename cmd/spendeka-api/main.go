package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/spendeka/spendeka-api/internal/expense"
	"github.com/spendeka/spendeka-api/internal/ocr"
	"github.com/spendeka/spendeka-api/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	fs := ff.NewFlagSet("spendeka-api")
	var (
		port        = fs.IntLong("port", 4000, "HTTP server port")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ocrLangs    = fs.StringLong("ocr-languages", "vie,eng", "Comma-separated Tesseract languages for bill OCR")
		tmpDir      = fs.StringLong("tmp-dir", "tmp", "Directory for temporary uploaded files")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("SPENDEKA"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Configuration is read once here and injected; nothing reads the
	// environment after startup.
	apiKey := *geminiKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
		os.Exit(1)
	}

	slog.Info("Initializing Gemini generator...", "model", *geminiModel)
	generator, err := scanning.NewGemini(apiKey, *geminiModel)
	if err != nil {
		slog.Error("Failed to initialize Gemini", "error", err)
		os.Exit(1)
	}
	defer generator.Close()

	languages := strings.Split(*ocrLangs, ",")
	for i := range languages {
		languages[i] = strings.TrimSpace(languages[i])
	}
	slog.Info("Initializing Tesseract OCR engine...", "languages", languages)
	engine := ocr.NewTesseract(languages...)

	service := expense.NewService(generator, engine)
	server := expense.NewServer(service, *tmpDir)

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Spendeka API started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
