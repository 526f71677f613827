// Package oracle dispatches typed requests to the external stochastic
// race-outcome simulator and classifies its Monte-Carlo sample output.
//
// The oracle streams newline-delimited JSON envelopes per request; the
// client applies per-kind deadlines and early-return rules, and drops
// responses superseded by a newer request generation.
package oracle

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/mkoda/bifrost/internal/schemas"
	"github.com/mkoda/bifrost/internal/types"
)

// Per-kind request deadlines. Each resolves to a fallback value rather than
// an error when exceeded.
const (
	CompareTimeout   = 30 * time.Second
	ChartTimeout     = 15 * time.Second
	SkillMetaTimeout = 10 * time.Second
)

// chartMinSamples is the per-skill backing sample count at which a chart
// request resolves early.
const chartMinSamples = 200

// maxEnvelopeBytes bounds a single streamed envelope line.
const maxEnvelopeBytes = 4 << 20

// CompareRequest asks the oracle to race two competitors repeatedly.
// Competitor one carries the trial skill set, competitor two the baseline.
type CompareRequest struct {
	Course       *types.Course
	Race         types.RaceConditions
	Options      types.SimulationOptions
	Trial        types.Competitor
	Base         types.Competitor
	SampleTarget int
}

// ChartRequest asks the oracle for per-skill aggregate mean effects on a
// single competitor.
type ChartRequest struct {
	Course   *types.Course
	Race     types.RaceConditions
	Options  types.SimulationOptions
	Uma      types.Competitor
	SkillIDs []string
}

// Client is the simulation oracle surface consumed by the optimizer and the
// server. Methods never return transport errors; the outcome carries the
// typed disposition instead.
type Client interface {
	// Compare resolves once SampleTarget samples have accumulated. A nil
	// result with OutcomeTimedOut means the oracle was unavailable for
	// this candidate.
	Compare(ctx context.Context, req CompareRequest) (*types.CompareResult, Outcome)
	// Chart keeps the best partial per-skill map seen before the deadline
	// and resolves early once any entry's backing sample count reaches the
	// minimum threshold with at least one skill populated.
	Chart(ctx context.Context, req ChartRequest) (types.ChartResult, Outcome)
	// SkillMeta returns static per-skill metadata.
	SkillMeta(ctx context.Context, skillIDs []string) (types.SkillMetaResult, Outcome)
	// Supersede advances the request generation; responses from older
	// in-flight requests are silently dropped.
	Supersede() uint64
}

// envelope is one streamed oracle message, matching the embedded schema.
type envelope struct {
	Kind          string                      `json:"kind"`
	Generation    uint64                      `json:"requestGeneration"`
	Samples       []float64                   `json:"samples,omitempty"`
	Metrics       *types.RaceMetrics          `json:"metrics,omitempty"`
	PerSkillMeans map[string]types.ChartEntry `json:"perSkillMeans,omitempty"`
	PerSkillMeta  map[string]types.SkillMeta  `json:"perSkillMeta,omitempty"`
}

// wireRequest is the JSON request body posted to the oracle.
type wireRequest struct {
	Kind         types.RequestKind       `json:"kind"`
	Generation   uint64                  `json:"requestGeneration"`
	Course       *types.Course           `json:"course,omitempty"`
	Race         *types.RaceConditions   `json:"raceConditions,omitempty"`
	Competitors  []types.Competitor      `json:"competitors,omitempty"`
	SkillIDs     []string                `json:"skills,omitempty"`
	SampleTarget int                     `json:"sampleTarget,omitempty"`
	Options      types.SimulationOptions `json:"options"`
}

// HTTPClient talks to an oracle service over HTTP. Each request is bound to
// a single-use server-side compute unit; no state is shared between requests
// besides the generation counter.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	generation atomic.Uint64
}

// NewHTTPClient creates a client for the oracle at baseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// Supersede advances the request generation and returns the new value.
func (c *HTTPClient) Supersede() uint64 {
	return c.generation.Add(1)
}

// stream posts the request and invokes handle for each valid envelope of the
// matching kind and generation. handle returns true to resolve early.
// Cancellation of superseded requests is best-effort: the context deadline
// tears the stream down, and any envelope already received from an older
// generation is ignored by the generation check.
func (c *HTTPClient) stream(ctx context.Context, kind types.RequestKind, req wireRequest, timeout time.Duration, handle func(env *envelope) bool) Outcome {
	gen := c.generation.Load()
	req.Generation = gen

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		log.Printf("oracle: encode %s request: %v", kind, err)
		return OutcomeTimedOut
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/simulate", bytes.NewReader(body))
	if err != nil {
		return OutcomeTimedOut
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return OutcomeTimedOut
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("oracle: %s request returned status %d", kind, resp.StatusCode)
		return OutcomeTimedOut
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEnvelopeBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if c.generation.Load() != gen {
			return OutcomeSuperseded
		}
		if err := schemas.ValidateOracleEnvelope(line); err != nil {
			log.Printf("oracle: skipping malformed %s envelope: %v", kind, err)
			continue
		}
		var env envelope
		if err := json.Unmarshal(line, &env); err != nil {
			continue
		}
		if env.Kind != string(kind) || env.Generation != gen {
			continue
		}
		if handle(&env) {
			return OutcomeSucceeded
		}
	}
	if c.generation.Load() != gen {
		return OutcomeSuperseded
	}
	return OutcomeTimedOut
}

// Compare implements Client.
func (c *HTTPClient) Compare(ctx context.Context, req CompareRequest) (*types.CompareResult, Outcome) {
	var result *types.CompareResult
	outcome := c.stream(ctx, types.KindCompare, wireRequest{
		Kind:         types.KindCompare,
		Course:       req.Course,
		Race:         &req.Race,
		Competitors:  []types.Competitor{req.Trial, req.Base},
		SampleTarget: req.SampleTarget,
		Options:      req.Options,
	}, CompareTimeout, func(env *envelope) bool {
		if len(env.Samples) < req.SampleTarget {
			return false
		}
		result = &types.CompareResult{Samples: env.Samples}
		if env.Metrics != nil {
			result.Metrics = *env.Metrics
		}
		return true
	})
	if outcome != OutcomeSucceeded {
		return nil, outcome
	}
	return result, OutcomeSucceeded
}

// Chart implements Client.
func (c *HTTPClient) Chart(ctx context.Context, req ChartRequest) (types.ChartResult, Outcome) {
	if len(req.SkillIDs) == 0 {
		return types.ChartResult{}, OutcomeSucceeded
	}
	best := types.ChartResult{}
	outcome := c.stream(ctx, types.KindChart, wireRequest{
		Kind:        types.KindChart,
		Course:      req.Course,
		Race:        &req.Race,
		Competitors: []types.Competitor{req.Uma},
		SkillIDs:    req.SkillIDs,
		Options:     req.Options,
	}, ChartTimeout, func(env *envelope) bool {
		if len(env.PerSkillMeans) > len(best) {
			best = types.ChartResult(env.PerSkillMeans)
		}
		for _, entry := range env.PerSkillMeans {
			if entry.SampleCount >= chartMinSamples {
				best = types.ChartResult(env.PerSkillMeans)
				return true
			}
		}
		return false
	})
	if outcome == OutcomeSuperseded {
		return nil, outcome
	}
	// A timed-out chart still resolves to the best partial seen.
	if len(best) > 0 {
		return best, OutcomeSucceeded
	}
	return types.ChartResult{}, outcome
}

// SkillMeta implements Client.
func (c *HTTPClient) SkillMeta(ctx context.Context, skillIDs []string) (types.SkillMetaResult, Outcome) {
	if len(skillIDs) == 0 {
		return types.SkillMetaResult{}, OutcomeSucceeded
	}
	var result types.SkillMetaResult
	outcome := c.stream(ctx, types.KindSkillMeta, wireRequest{
		Kind:     types.KindSkillMeta,
		SkillIDs: skillIDs,
	}, SkillMetaTimeout, func(env *envelope) bool {
		if env.PerSkillMeta == nil {
			return false
		}
		result = types.SkillMetaResult(env.PerSkillMeta)
		return true
	})
	if outcome != OutcomeSucceeded {
		return types.SkillMetaResult{}, outcome
	}
	return result, OutcomeSucceeded
}
