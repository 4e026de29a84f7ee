package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "solvio",
		Subsystem: "ai",
		Name:      "generation_duration_seconds",
		Help:      "Duration of AI feedback generation requests",
	}, []string{"model", "kind"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solvio",
		Subsystem: "ai",
		Name:      "generation_failures_total",
		Help:      "Number of failed AI feedback generation requests",
	}, []string{"model", "kind"})
)

// OpenAIConfig defines configuration options for the OpenAI generator.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	Logger      zerolog.Logger
}

// OpenAIGenerator implements Generator against the OpenAI chat completion
// API.
type OpenAIGenerator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGenerator builds a generator using the provided configuration.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	tracer := otel.Tracer("github.com/solvio/solvio-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIGenerator{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// AnalyzeWork asks the model for structured feedback on one submission.
func (g *OpenAIGenerator) AnalyzeWork(parent context.Context, input WorkInput) (Feedback, error) {
	ctx, span := g.tracer.Start(parent, "openai.analyze_work", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.String("mode", input.Mode),
		attribute.Int("hints", len(input.Hints)),
	))
	defer span.End()

	content, err := g.complete(ctx, "feedback", analysisSystemPrompt(input), buildWorkPrompt(input))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Feedback{}, err
	}

	if err := validateAgainst(feedbackSchema, []byte(content)); err != nil {
		aiFailures.WithLabelValues(g.cfg.Model, "feedback").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Feedback{}, err
	}

	var feedback Feedback
	if err := json.Unmarshal([]byte(content), &feedback); err != nil {
		aiFailures.WithLabelValues(g.cfg.Model, "feedback").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Feedback{}, fmt.Errorf("parse feedback json: %w", err)
	}

	feedback.Normalize()
	return feedback, nil
}

// ClassReport asks the model for a cohort-level report on one question.
func (g *OpenAIGenerator) ClassReport(parent context.Context, input ReportInput) (ClassReport, error) {
	ctx, span := g.tracer.Start(parent, "openai.class_report", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.Int("submissions", len(input.Submissions)),
	))
	defer span.End()

	content, err := g.complete(ctx, "report", reportSystemPrompt(), buildReportPrompt(input))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ClassReport{}, err
	}

	if err := validateAgainst(classReportSchema, []byte(content)); err != nil {
		aiFailures.WithLabelValues(g.cfg.Model, "report").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ClassReport{}, err
	}

	var report ClassReport
	if err := json.Unmarshal([]byte(content), &report); err != nil {
		aiFailures.WithLabelValues(g.cfg.Model, "report").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ClassReport{}, fmt.Errorf("parse report json: %w", err)
	}

	report.Normalize()
	return report, nil
}

func (g *OpenAIGenerator) complete(ctx context.Context, kind, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := g.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(g.cfg.Model, kind).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(g.cfg.Model, kind).Inc()
		return "", fmt.Errorf("openai %s: %w", kind, err)
	}

	if len(resp.Choices) == 0 {
		aiFailures.WithLabelValues(g.cfg.Model, kind).Inc()
		return "", fmt.Errorf("no choices returned from openai")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func analysisSystemPrompt(input WorkInput) string {
	builder := strings.Builder{}
	builder.WriteString("You are analyzing a student's mathematical work. Provide feedback as JSON.\n")
	builder.WriteString("Consider:\n")
	builder.WriteString("1. Three specific strengths in their approach\n")
	builder.WriteString("2. Three specific areas for improvement\n")
	builder.WriteString("3. How effectively hints were used (")
	builder.WriteString(strconv.Itoa(len(input.Hints)))
	builder.WriteString(" hints requested)\n")
	builder.WriteString("4. Overall mathematical understanding\n")
	if input.Mode == "canvas" {
		builder.WriteString("Note: this is a handwritten submission - evaluate clarity and organization in addition to mathematical correctness.\n")
	}
	builder.WriteString(`Return a JSON object: {"strengths": [3 strings], "improvements": [3 strings], "analysis": "2-3 sentence summary"}`)
	return builder.String()
}

func buildWorkPrompt(input WorkInput) string {
	builder := strings.Builder{}
	builder.WriteString("Student's work:\n")
	builder.WriteString(input.Work)
	builder.WriteString("\n\nHints used:\n")
	builder.WriteString(strings.Join(input.Hints, "\n"))
	return builder.String()
}

func reportSystemPrompt() string {
	return "You are analyzing student submissions for a math question to produce a class report. " +
		"Consider overall performance patterns, common strengths, common difficulties, specific misconceptions, " +
		"and teaching recommendations. Return a JSON object: " +
		`{"performance_patterns": {"summary": string, "key_patterns": [strings]}, ` +
		`"common_strengths": [strings], "common_difficulties": [strings], ` +
		`"misconceptions": [strings], "teaching_recommendations": [strings]}`
}

func buildReportPrompt(input ReportInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Question\n")
	builder.WriteString(input.QuestionText)
	builder.WriteString("\n\n# Statistics\n")
	stats, _ := json.Marshal(input.Stats)
	builder.Write(stats)
	builder.WriteString("\n\n# Submissions\n")
	for _, sub := range input.Submissions {
		entry, _ := json.Marshal(sub)
		builder.Write(entry)
		builder.WriteString("\n---\n")
	}
	builder.WriteString("Return JSON.")
	return builder.String()
}
