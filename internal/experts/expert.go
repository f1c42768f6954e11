package experts

import (
	"context"
	"encoding/json"
	"fmt"

	"pundit/internal/domain/model"
	"pundit/internal/domain/probability"
	"pundit/internal/llm"
	"pundit/pkg/logger"
	"pundit/pkg/metrics"
)

// Default expert configuration constants.
const (
	defaultBatchSize   = 25
	maxTokensPerPlayer = 70
	tokenHeadroom      = 1.1

	placeholderJustification = "No justification provided."
	fallbackJustification    = "Fallback due to error."
)

// Expert scores a candidate pool under one persona. Score always returns
// exactly one recommendation per candidate: any failure inside a batch
// resolves that whole batch to neutral distributions and processing of the
// remaining batches continues.
type Expert struct {
	name      string
	persona   Persona
	client    llm.Client
	model     string
	batchSize int
	logger    logger.Logger
}

// New constructs an Expert for a persona. The persona must be one of the
// closed variant set.
func New(persona Persona, client llm.Client, opts ...Option) (*Expert, error) {
	if _, ok := personaNames[persona]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPersona, int(persona))
	}
	e := &Expert{
		name:      persona.String(),
		persona:   persona,
		client:    client,
		batchSize: defaultBatchSize,
		logger:    logger.Get().Named("expert"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named(e.name)
	return e, nil
}

// Name returns the agent name.
func (e *Expert) Name() string { return e.name }

// wireEntry mirrors the JSON shape the persona prompt requests.
type wireEntry struct {
	CandidateID   string         `json:"candidate_id"`
	Probs         map[string]any `json:"probs"`
	Justification string         `json:"justification"`
}

// Score produces one recommendation per candidate via batched collaborator
// calls. Batches are processed sequentially; each batch's results accumulate
// locally so a cancellation never corrupts shared state.
func (e *Expert) Score(ctx context.Context, candidates []model.Candidate) model.ExpertOutput {
	out := model.ExpertOutput{
		Agent:           e.name,
		Persona:         e.persona.String(),
		Recommendations: make([]model.Recommendation, 0, len(candidates)),
	}

	for start := 0; start < len(candidates); start += e.batchSize {
		end := start + e.batchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]

		recs, err := e.scoreBatch(ctx, batch)
		if err != nil {
			e.logger.Warn(ctx, "batch failed, using neutral fallback",
				logger.Int("batch_start", start), logger.Int("batch_size", len(batch)), logger.Error(err))
			metrics.RecordExpertBatchFallback(e.persona.String())
			recs = neutralBatch(batch)
		}
		out.Recommendations = append(out.Recommendations, recs...)
	}

	return out
}

// scoreBatch runs one collaborator call and parses its verdicts. Any error
// covers the whole batch.
func (e *Expert) scoreBatch(ctx context.Context, batch []model.Candidate) ([]model.Recommendation, error) {
	compact := make([]map[string]any, len(batch))
	for i, c := range batch {
		compact[i] = e.persona.project(c)
	}
	payload, err := json.Marshal(compact)
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}

	resp, err := e.client.Generate(ctx, llm.Request{
		System:      e.persona.Instructions(),
		User:        "Candidates:\n" + string(payload),
		Model:       e.model,
		Temperature: 0,
		MaxTokens:   int(float64(len(batch)) * maxTokensPerPlayer * tokenHeadroom),
	})
	if err != nil {
		return nil, err
	}

	var entries []wireEntry
	if err := json.Unmarshal([]byte(resp.Text), &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	inBatch := make(map[string]bool, len(batch))
	for _, c := range batch {
		inBatch[c.ID] = true
	}

	recs := make(map[string]model.Recommendation, len(batch))
	for _, entry := range entries {
		if !inBatch[entry.CandidateID] {
			e.logger.Warn(ctx, "dropping verdict for identity outside batch",
				logger.String("candidate_id", entry.CandidateID))
			continue
		}
		justification := entry.Justification
		if justification == "" {
			justification = placeholderJustification
		}
		recs[entry.CandidateID] = model.Recommendation{
			CandidateID:   entry.CandidateID,
			Probs:         probability.Normalize(entry.Probs),
			Justification: justification,
		}
	}

	// Full coverage: candidates the response skipped get the neutral verdict.
	result := make([]model.Recommendation, 0, len(batch))
	for _, c := range batch {
		if rec, ok := recs[c.ID]; ok {
			result = append(result, rec)
			continue
		}
		result = append(result, model.Recommendation{
			CandidateID:   c.ID,
			Probs:         model.Uniform(),
			Justification: fallbackJustification,
		})
	}
	return result, nil
}

// neutralBatch builds the uniform fallback for every candidate in a batch.
func neutralBatch(batch []model.Candidate) []model.Recommendation {
	recs := make([]model.Recommendation, len(batch))
	for i, c := range batch {
		recs[i] = model.Recommendation{
			CandidateID:   c.ID,
			Probs:         model.Uniform(),
			Justification: fallbackJustification,
		}
	}
	return recs
}
