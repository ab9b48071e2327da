// Package equipment infers the equipment available to a user from gym photos.
package equipment

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/lithammer/dedent"
	"golang.org/x/time/rate"

	"github.com/everstacklabs/fitplan/internal/cache"
	"github.com/everstacklabs/fitplan/internal/cost"
	"github.com/everstacklabs/fitplan/internal/llm"
)

const (
	DefaultMaxPhotos = 3
	DefaultDelay     = 500 * time.Millisecond

	VisionTemperature = 0.3
	VisionMaxTokens   = 300
)

var instruction = strings.TrimSpace(dedent.Dedent(`
	Analyze this gym photo and identify ALL visible fitness equipment. Be very specific and comprehensive.

	Return ONLY a JSON array of equipment names, like:
	["dumbbells", "barbells", "bench press", "squat rack", "lat pulldown machine", "treadmill"]

	Be specific with machine types.
`))

// ErrNoList is returned when vision output contains no [...] array.
var ErrNoList = errors.New("no JSON array found in response")

// Bodyweight is used when the user supplied no photos.
func Bodyweight() []string {
	return []string{"bodyweight exercises", "floor space", "wall"}
}

// GenericGym is used when no vision capability is configured.
func GenericGym() []string {
	return []string{"dumbbells", "barbells", "bench", "squat rack"}
}

// Basic is used when analysis aborts on a capability failure.
func Basic() []string {
	return []string{"dumbbells", "barbells", "bench"}
}

// Comprehensive is used when every photo was analyzed but nothing was
// detected: equipment is likely present, just not recognizable.
func Comprehensive() []string {
	return []string{
		"dumbbells", "barbells", "weight plates", "dumbbell rack",
		"squat racks", "power racks", "bench press", "incline bench",
		"adjustable benches", "cable machines", "lat pulldown machine",
		"leg press machine", "smith machine", "pull-up bars",
	}
}

// Cache stores equipment detected per image. Keys come from cache.Key.
type Cache interface {
	Get(key string) ([]string, bool)
	Set(key string, equipment []string) error
}

// Options tunes an Analyzer. Zero values fall back to defaults, except Delay
// where a negative value disables the throttle.
type Options struct {
	MaxPhotos int
	Delay     time.Duration
	Pricing   cost.Pricing
	Cache     Cache
}

// Result is the outcome of one Analyze call.
type Result struct {
	Equipment []string
	// Cost is the photo cost accrued, including calls made before a failure.
	Cost float64
	// Analyzed counts vision calls actually issued.
	Analyzed  int
	CacheHits int
	Err       error
}

// Analyzer turns photos into an equipment list using a vision capability.
type Analyzer struct {
	vision llm.VisionGenerator
	opts   Options
}

// NewAnalyzer creates an Analyzer. A nil vision generator means no capability
// is configured and Analyze returns the generic gym set for any photos.
func NewAnalyzer(vision llm.VisionGenerator, opts Options) *Analyzer {
	if opts.MaxPhotos <= 0 {
		opts.MaxPhotos = DefaultMaxPhotos
	}
	if opts.Delay == 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Pricing == (cost.Pricing{}) {
		opts.Pricing = cost.DefaultPricing()
	}
	return &Analyzer{vision: vision, opts: opts}
}

// Analyze returns the equipment visible in photos. It never fails: errors
// degrade to one of the fallback sets, and Result.Err records why.
func (a *Analyzer) Analyze(ctx context.Context, photos []PhotoInput) Result {
	if len(photos) == 0 {
		slog.Info("no photos provided, using bodyweight equipment")
		return Result{Equipment: Bodyweight()}
	}
	if a.vision == nil {
		slog.Info("no vision capability configured, using default equipment")
		return Result{Equipment: GenericGym()}
	}

	batch := photos
	if len(batch) > a.opts.MaxPhotos {
		slog.Info("photo batch capped", "received", len(photos), "analyzed", a.opts.MaxPhotos)
		batch = batch[:a.opts.MaxPhotos]
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if a.opts.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(a.opts.Delay), 1)
	}

	var (
		res  Result
		seen = make(map[string]bool)
	)
	merge := func(items []string) {
		for _, item := range items {
			item = strings.TrimSpace(item)
			key := strings.ToLower(item)
			if item == "" || seen[key] {
				continue
			}
			seen[key] = true
			res.Equipment = append(res.Equipment, item)
		}
	}

	for i, photo := range batch {
		img, err := Normalize(photo)
		if err != nil {
			slog.Warn("skipping photo", "index", i+1, "kind", photo.Kind(), "error", err)
			continue
		}

		var key string
		if a.opts.Cache != nil {
			key = cache.Key(img.Data)
			if items, ok := a.opts.Cache.Get(key); ok {
				slog.Debug("vision cache hit", "index", i+1, "items", len(items))
				res.CacheHits++
				merge(items)
				continue
			}
		}

		if err := limiter.Wait(ctx); err != nil {
			return a.abort(res, err)
		}

		res.Cost += a.opts.Pricing.ImageCost()
		res.Analyzed++

		resp, err := a.vision.GenerateVision(ctx, llm.VisionRequest{
			Instruction: instruction,
			Image:       img,
			Detail:      llm.DetailLow,
			Temperature: VisionTemperature,
			MaxTokens:   VisionMaxTokens,
		})
		if err != nil {
			return a.abort(res, err)
		}

		items, err := ExtractList(resp.Text)
		if err != nil {
			slog.Warn("failed to parse equipment list", "index", i+1, "error", err, "response", resp.Text)
			continue
		}
		slog.Info("photo analyzed", "index", i+1, "items", len(items))

		if a.opts.Cache != nil {
			if err := a.opts.Cache.Set(key, items); err != nil {
				slog.Warn("failed to cache vision result", "error", err)
			}
		}
		merge(items)
	}

	if len(res.Equipment) == 0 {
		slog.Info("no equipment detected, using comprehensive fallback")
		res.Equipment = Comprehensive()
		return res
	}

	slog.Info("equipment detected", "count", len(res.Equipment), "photo_cost", res.Cost)
	return res
}

func (a *Analyzer) abort(res Result, err error) Result {
	slog.Error("photo analysis failed, using basic equipment",
		"error", err,
		"analyzed", res.Analyzed,
		"photo_cost", res.Cost)
	return Result{
		Equipment: Basic(),
		Cost:      res.Cost,
		Analyzed:  res.Analyzed,
		CacheHits: res.CacheHits,
		Err:       err,
	}
}

// ExtractList decodes the text from the first '[' to the last ']' as a list
// of equipment names.
func ExtractList(text string) ([]string, error) {
	first := strings.Index(text, "[")
	last := strings.LastIndex(text, "]")
	if first == -1 || last <= first {
		return nil, ErrNoList
	}

	var items []string
	if err := json.Unmarshal([]byte(text[first:last+1]), &items); err != nil {
		return nil, err
	}
	return items, nil
}
