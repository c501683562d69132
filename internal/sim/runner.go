package sim

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"time"

	"github.com/sportlink/swipedeck/pkg/logger"
)

// Drag geometry constants. The commit distance clears the engine's default
// threshold; the hesitation distance stays under it so the card springs back.
const (
	commitDragPX     = 160.0
	hesitationDragPX = 60.0
	defaultDragSteps = 6
	stepPause        = 10 * time.Millisecond
)

// Session pacing constants.
const (
	hesitationEvery  = 7
	quotaCheckEvery  = 10
	dismissEvery     = 5
	randomDivisor    = 1000000
	percentageFactor = 100
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomDivisor))
	return float64(n.Int64()) / float64(randomDivisor)
}

// Run executes the complete scripted session.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	if config.DragSteps <= 0 {
		config.DragSteps = defaultDragSteps
	}

	logger.Get().Info(ctx, "starting swipe session",
		logger.String("baseURL", config.BaseURL),
		logger.Int("swipes", config.NumSwipes),
		logger.Float64("likeRatio", config.LikeRatio),
		logger.String("timeout", config.Timeout.String()),
		logger.Any("verbose", config.Verbose))

	client := newHTTPClient(config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Opening quota snapshot
	if err := checkQuota(ctx, client, config, stats); err != nil {
		logger.Get().Warn(ctx, "initial quota check failed", logger.Error(err))
	}

	// Step 3: Make sure the deck has cards
	if err := ensureDeck(ctx, client, config, stats); err != nil {
		return fmt.Errorf("deck priming failed: %w", err)
	}

	// Step 4: Swipe through the session
	if err := runSwipes(ctx, client, config, stats); err != nil {
		return fmt.Errorf("swipe loop failed: %w", err)
	}

	// Step 5: List matches established during the session
	if err := listMatches(ctx, client, config, stats); err != nil {
		logger.Get().Warn(ctx, "match listing failed", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "session completed")
	return nil
}

// checkServiceHealth verifies the engine facade is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("failed to read health response: %w", err)
	}

	// Accept any 200 response as healthy (the route serves Prometheus metrics)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// checkQuota fetches the current swipe allowance.
func checkQuota(ctx context.Context, client *HTTPClient, config *Config, stats *Stats) error {
	var q quotaState
	status, err := client.getJSON(ctx, config.BaseURL+"/quota", &q)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("quota check failed with status: %d", status)
	}

	stats.QuotaRemaining = q.Remaining
	if config.Verbose {
		log.Printf("quota: premium=%v remaining=%d limit=%d stale=%v", q.Premium, q.Remaining, q.DailyLimit, q.Stale)
	}
	return nil
}

// ensureDeck reloads the deck when it is empty. Returns the current state.
func ensureDeck(ctx context.Context, client *HTTPClient, config *Config, stats *Stats) error {
	var ds deckState
	status, err := client.getJSON(ctx, config.BaseURL+"/deck", &ds)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("deck fetch failed with status: %d", status)
	}

	if len(ds.Cards) > 0 {
		return nil
	}

	stats.DeckReloads++
	status, err = client.postJSON(ctx, config.BaseURL+"/deck/refresh", nil, &ds)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("deck refresh failed with status: %d", status)
	}
	if ds.Empty {
		log.Printf("deck is empty after refresh; the session may run dry")
	}
	return nil
}

// runSwipes performs the main drag loop.
func runSwipes(ctx context.Context, client *HTTPClient, config *Config, stats *Stats) error {
	log.Printf("swiping %d cards...", config.NumSwipes)

	for i := 0; i < config.NumSwipes; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// A hesitant drag now and then releases under the threshold and the
		// card springs back.
		if (i+1)%hesitationEvery == 0 {
			if err := drag(ctx, client, config, hesitationDragPX); err != nil {
				stats.Failed++
				continue
			}
			stats.Returned++
			continue
		}

		distance := commitDragPX
		like := getRandomFloat() < config.LikeRatio
		if !like {
			distance = -commitDragPX
		}

		stats.SwipesAttempted++
		if err := drag(ctx, client, config, distance); err != nil {
			stats.Failed++
			continue
		}
		if like {
			stats.Likes++
		} else {
			stats.Dislikes++
		}

		if (i+1)%dismissEvery == 0 {
			dismissModal(ctx, client, config)
		}

		if (i+1)%quotaCheckEvery == 0 {
			if err := checkQuota(ctx, client, config, stats); err != nil {
				logger.Get().Warn(ctx, "quota check failed", logger.Error(err))
			}
			if err := ensureDeck(ctx, client, config, stats); err != nil {
				logger.Get().Warn(ctx, "deck reload failed", logger.Error(err))
			}
		}

		if config.Verbose {
			log.Printf("swipe %d/%d (likes: %d, dislikes: %d, returned: %d)",
				i+1, config.NumSwipes, stats.Likes, stats.Dislikes, stats.Returned)
		}
	}

	return nil
}

// drag simulates one pointer gesture: down at the origin, a series of moves
// out to distance, then release.
func drag(ctx context.Context, client *HTTPClient, config *Config, distance float64) error {
	type pointerEvent struct {
		Action string  `json:"action"`
		X      float64 `json:"x"`
	}

	var snap gestureSnapshot
	status, err := client.postJSON(ctx, config.BaseURL+"/pointer", pointerEvent{Action: "down", X: 0}, &snap)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("pointer down failed with status: %d", status)
	}

	for step := 1; step <= config.DragSteps; step++ {
		x := distance * float64(step) / float64(config.DragSteps)
		if _, err := client.postJSON(ctx, config.BaseURL+"/pointer", pointerEvent{Action: "move", X: x}, &snap); err != nil {
			return err
		}
		time.Sleep(stepPause)
	}

	if _, err := client.postJSON(ctx, config.BaseURL+"/pointer", pointerEvent{Action: "up"}, &snap); err != nil {
		return err
	}
	return nil
}

// dismissModal closes a match modal if one is up.
func dismissModal(ctx context.Context, client *HTTPClient, config *Config) {
	var resp struct {
		Dismissed bool `json:"dismissed"`
	}
	if _, err := client.postJSON(ctx, config.BaseURL+"/modal/dismiss", nil, &resp); err != nil {
		logger.Get().Warn(ctx, "modal dismiss failed", logger.Error(err))
	}
}

// listMatches fetches the matches established so far.
func listMatches(ctx context.Context, client *HTTPClient, config *Config, stats *Stats) error {
	var ml matchList
	status, err := client.getJSON(ctx, config.BaseURL+"/matches", &ml)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("match listing failed with status: %d", status)
	}

	stats.MatchesListed = len(ml.Matches)
	return nil
}

// displayFinalStats prints the final session statistics.
func displayFinalStats(stats *Stats) {
	var likeRate float64
	if stats.SwipesAttempted > 0 {
		likeRate = float64(stats.Likes) / float64(stats.SwipesAttempted) * percentageFactor
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("swipesAttempted", stats.SwipesAttempted),
		logger.Int("likes", stats.Likes),
		logger.Int("dislikes", stats.Dislikes),
		logger.Int("returned", stats.Returned),
		logger.Int("failed", stats.Failed),
		logger.Int("deckReloads", stats.DeckReloads),
		logger.Int("quotaRemaining", stats.QuotaRemaining),
		logger.Int("matchesListed", stats.MatchesListed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("likeRate", likeRate))
}
