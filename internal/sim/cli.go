package sim

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/sportlink/swipedeck/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "sim_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the swipe simulator.
func ShowHelp() {
	os.Stdout.WriteString(`SwipeDeck Session Simulator
===========================

Drives a scripted swipe session against a running engine instance.

Usage:
  go run cmd/swipe-sim/main.go [options]

Options:
  -url string
        Base URL of the engine facade (default "http://localhost:9080")
  -swipes int
        Number of swipes to attempt (default 50)
  -like-ratio float
        Fraction of swipes that are likes (default 0.6)
  -drag-steps int
        Pointer move events per drag (default 6)
  -timeout duration
        HTTP request timeout (default 10s)
  -log string
        Log file for session output (default: sim_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help
`)
}
