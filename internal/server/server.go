// Package server exposes plan generation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/everstacklabs/fitplan/internal/admission"
	"github.com/everstacklabs/fitplan/internal/cost"
	"github.com/everstacklabs/fitplan/internal/equipment"
	"github.com/everstacklabs/fitplan/internal/plan"
)

const (
	serviceName = "AI Workout Generator"

	DefaultMaxBodyBytes = 50 << 20
)

// PlanGenerator is the part of the generator the HTTP surface depends on.
type PlanGenerator interface {
	Generate(ctx context.Context, profile plan.UserProfile, photos []equipment.PhotoInput) *plan.WorkoutPlan
	Configured() bool
}

// Options configures the handler.
type Options struct {
	// RequestTimeout bounds a single generation. Zero means no deadline.
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	AllowedOrigins []string
}

// New returns the HTTP handler. A nil admission controller admits everything.
func New(gen PlanGenerator, adm admission.Controller, opts Options) http.Handler {
	if adm == nil {
		adm = admission.AllowAll{}
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpError(w, http.StatusMethodNotAllowed, "Method not allowed", "%s is not supported on %s", r.Method, r.URL.Path)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpError(w, http.StatusNotFound, "Not found", "no route for %s", r.URL.Path)
	})

	r.Route("/api/workout", func(r chi.Router) {
		r.Get("/health", handleHealth(gen))
		r.Post("/generate", handleGenerate(gen, adm, opts))
	})

	c := cors.New(cors.Options{
		AllowedOrigins:       opts.AllowedOrigins,
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:       []string{"Content-Type"},
		OptionsSuccessStatus: http.StatusOK,
	})
	return c.Handler(r)
}

type healthResponse struct {
	Status       string    `json:"status"`
	Service      string    `json:"service"`
	Timestamp    time.Time `json:"timestamp"`
	AIConfigured bool      `json:"aiConfigured"`
}

func handleHealth(gen PlanGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{
			Status:       "OK",
			Service:      serviceName,
			Timestamp:    time.Now().UTC(),
			AIConfigured: gen.Configured(),
		})
	}
}

type generateRequest struct {
	PersonalInfo *plan.PersonalInfo `json:"personalInfo"`
	Goals        *plan.Goals        `json:"goals"`
	GymPhotos    []photoPayload     `json:"gymPhotos"`
}

type generateResponse struct {
	Success   bool              `json:"success"`
	Data      *plan.WorkoutPlan `json:"data"`
	Timestamp time.Time         `json:"timestamp"`
}

func handleGenerate(gen PlanGenerator, adm admission.Controller, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !adm.Allow(clientKey(r)) {
			httpError(w, http.StatusTooManyRequests,
				"Too many workout generation requests, please try again later.", "rate limit exceeded")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, opts.MaxBodyBytes)
		defer r.Body.Close()

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				httpError(w, http.StatusRequestEntityTooLarge, "Request too large", "body exceeds %d bytes", tooLarge.Limit)
				return
			}
			httpError(w, http.StatusBadRequest, "Invalid request body", "%v", err)
			return
		}

		if req.PersonalInfo == nil || req.Goals == nil {
			httpError(w, http.StatusBadRequest, "Missing required data", "Personal info and goals are required")
			return
		}

		profile := plan.NewProfile(*req.PersonalInfo, *req.Goals)
		photos := make([]equipment.PhotoInput, len(req.GymPhotos))
		for i, p := range req.GymPhotos {
			photos[i] = p.input
		}

		ctx := r.Context()
		if opts.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.RequestTimeout)
			defer cancel()
		}

		slog.Info("generating workout plan",
			"goal", profile.PrimaryGoal,
			"experience", profile.FitnessExperience,
			"photos", len(photos))

		p := gen.Generate(ctx, profile, photos)

		slog.Info("plan served",
			"ai", p.IsAIGenerated,
			"tokens", p.TokensUsed,
			"total_cost", cost.Round(p.TotalCost))

		writeJSON(w, http.StatusOK, generateResponse{
			Success:   true,
			Data:      p,
			Timestamp: time.Now().UTC(),
		})
	}
}

// photoPayload accepts a data: URL string or a {data, type} object. Anything
// else decodes to the zero PhotoInput, which the analyzer skips.
type photoPayload struct {
	input equipment.PhotoInput
}

func (p *photoPayload) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "" {
			p.input = equipment.InlineBase64(s, "")
		}
		return nil
	}

	var obj struct {
		Data string `json:"data"`
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.Data != "" {
		p.input = equipment.InlineBase64(obj.Data, obj.Type)
	}
	return nil
}

// clientKey identifies the caller for admission: the first X-Forwarded-For
// entry, otherwise the remote host.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response", "error", err)
	}
}

func httpError(w http.ResponseWriter, code int, errMsg string, format string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error":     errMsg,
		"message":   fmt.Sprintf(format, args...),
		"timestamp": time.Now().UTC(),
	})
}
