package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/sportlink/swipedeck/internal/sim"
)

// Default configuration constants.
const (
	defaultNumSwipes      = 50
	defaultLikeRatio      = 0.6
	defaultDragSteps      = 6
	defaultTimeout        = 10 * time.Second
	defaultSessionTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the engine facade")
		numSwipes = flag.Int("swipes", defaultNumSwipes, "Number of swipes to attempt")
		likeRatio = flag.Float64("like-ratio", defaultLikeRatio, "Fraction of swipes that are likes (0..1)")
		dragSteps = flag.Int("drag-steps", defaultDragSteps, "Pointer move events per drag")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile   = flag.String("log", "", "Log file for session output (default: sim_log_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		sim.ShowHelp()
		return
	}

	// Setup logging
	if err := sim.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultSessionTimeout)
	defer cancel()

	// Create session configuration
	config := &sim.Config{
		BaseURL:   *baseURL,
		NumSwipes: *numSwipes,
		LikeRatio: *likeRatio,
		DragSteps: *dragSteps,
		Timeout:   *timeout,
		LogFile:   *logFile,
		Verbose:   *verbose,
	}

	// Run the session
	if err := sim.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Session failed: " + err.Error() + "\n")
		return
	}
}
