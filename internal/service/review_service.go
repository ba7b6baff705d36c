package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/codecoach-api/internal/dto"
	"github.com/noah-isme/codecoach-api/internal/models"
	"github.com/noah-isme/codecoach-api/internal/repository"
	"github.com/noah-isme/codecoach-api/pkg/ai"
)

const fallbackQualityScore = 5

// ReviewService exposes CRUD over submission reviews plus on-demand analysis.
type ReviewService interface {
	Create(ctx context.Context, payload dto.CreateReviewRequest) (dto.ReviewResponse, error)
	Get(ctx context.Context, id uint) (dto.ReviewResponse, error)
	ListBySubmission(ctx context.Context, submissionID uint) ([]dto.ReviewResponse, error)
	Update(ctx context.Context, id uint, payload dto.UpdateReviewRequest) (dto.ReviewResponse, error)
	Delete(ctx context.Context, id uint) error
	Generate(ctx context.Context, submissionID uint) (dto.ReviewResponse, error)
}

type reviewService struct {
	reviews     repository.ReviewRepository
	submissions repository.SubmissionRepository
	generator   ai.Generator
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewReviewService constructs a review service.
func NewReviewService(reviews repository.ReviewRepository, submissions repository.SubmissionRepository, generator ai.Generator, validate *validator.Validate, logger zerolog.Logger) ReviewService {
	return &reviewService{
		reviews:     reviews,
		submissions: submissions,
		generator:   generator,
		validator:   validate,
		logger:      logger.With().Str("component", "review_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/codecoach-api/internal/service/review"),
	}
}

func (s *reviewService) Create(ctx context.Context, payload dto.CreateReviewRequest) (dto.ReviewResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ReviewResponse{}, err
	}

	review := models.Review{
		SubmissionID:     payload.SubmissionID,
		ReviewType:       models.ReviewTypeAnalysis,
		ReviewText:       payload.ReviewText,
		CodeQualityScore: payload.CodeQualityScore,
		ComplianceStatus: payload.ComplianceStatus,
		Suggestions:      payload.Suggestions,
		SecurityIssues:   payload.SecurityIssues,
		PerformanceNotes: payload.PerformanceNotes,
	}

	fields := map[string]interface{}{"compliance_check": *payload.ComplianceStatus}
	if len(payload.TestResults) > 0 {
		results := dto.TestResultsFromPayload(payload.TestResults)
		encoded, err := json.Marshal(results)
		if err != nil {
			return dto.ReviewResponse{}, err
		}
		review.TestResults = datatypes.JSON(encoded)

		passed := 0
		for _, r := range results {
			if r.Passed {
				passed++
			}
		}
		fields["test_cases_passed"] = passed
		fields["total_test_cases"] = len(results)
	}

	if err := s.reviews.CreateForSubmission(ctx, &review, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReviewResponse{}, ErrSubmissionNotFound
		}
		return dto.ReviewResponse{}, err
	}

	s.logger.Info().Uint("review_id", review.ID).Uint("submission_id", review.SubmissionID).Msg("review created")

	return s.Get(ctx, review.ID)
}

func (s *reviewService) Get(ctx context.Context, id uint) (dto.ReviewResponse, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReviewResponse{}, ErrReviewNotFound
		}
		return dto.ReviewResponse{}, err
	}
	return dto.NewReviewResponse(review), nil
}

func (s *reviewService) ListBySubmission(ctx context.Context, submissionID uint) ([]dto.ReviewResponse, error) {
	if _, err := s.submissions.GetByID(ctx, submissionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	reviews, err := s.reviews.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	return dto.NewReviewResponses(reviews), nil
}

func (s *reviewService) Update(ctx context.Context, id uint, payload dto.UpdateReviewRequest) (dto.ReviewResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ReviewResponse{}, err
	}

	fields := map[string]interface{}{}
	if payload.ReviewText != nil {
		fields["review_text"] = *payload.ReviewText
	}
	if payload.CodeQualityScore != nil {
		fields["code_quality_score"] = *payload.CodeQualityScore
	}
	if payload.ComplianceStatus != nil {
		fields["compliance_status"] = *payload.ComplianceStatus
	}
	if payload.TestResults != nil {
		encoded, err := json.Marshal(dto.TestResultsFromPayload(*payload.TestResults))
		if err != nil {
			return dto.ReviewResponse{}, err
		}
		fields["test_results"] = datatypes.JSON(encoded)
	}
	if payload.Suggestions != nil {
		fields["suggestions"] = *payload.Suggestions
	}
	if payload.SecurityIssues != nil {
		fields["security_issues"] = *payload.SecurityIssues
	}
	if payload.PerformanceNotes != nil {
		fields["performance_notes"] = *payload.PerformanceNotes
	}

	if err := s.reviews.Update(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReviewResponse{}, ErrReviewNotFound
		}
		return dto.ReviewResponse{}, err
	}

	return s.Get(ctx, id)
}

func (s *reviewService) Delete(ctx context.Context, id uint) error {
	if err := s.reviews.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	return nil
}

// analysisReport mirrors the JSON requested by ai.AnalysisPrompt. Free-text
// fields are left loose since models return either strings or lists.
type analysisReport struct {
	OverallReview    string `json:"overall_review"`
	CodeQualityScore *int   `json:"code_quality_score"`
	ComplianceStatus *bool  `json:"compliance_status"`
	TestResults      []struct {
		Name          string   `json:"name"`
		Passed        bool     `json:"passed"`
		Message       string   `json:"message"`
		ExecutionTime *float64 `json:"execution_time"`
	} `json:"test_results"`
	ImprovementSuggestions any `json:"improvement_suggestions"`
	SecurityIssues         any `json:"security_issues"`
	PerformanceNotes       any `json:"performance_notes"`
}

func (s *reviewService) Generate(ctx context.Context, submissionID uint) (dto.ReviewResponse, error) {
	ctx, span := s.tracer.Start(ctx, "review.generate", trace.WithAttributes(attribute.Int("submission.id", int(submissionID))))
	defer span.End()

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReviewResponse{}, ErrSubmissionNotFound
		}
		return dto.ReviewResponse{}, err
	}

	text, err := s.generator.Generate(ctx, ai.AnalysisPrompt(submission.Language, submission.Code))
	if err != nil {
		span.RecordError(err)
		return dto.ReviewResponse{}, fmt.Errorf("generate review: %w", err)
	}

	report, ok := ai.DecodeObject(text, analysisReport{})
	if !ok {
		s.logger.Warn().Uint("submission_id", submissionID).Msg("analysis output could not be parsed, storing fallback review")
	}

	score := fallbackQualityScore
	if report.CodeQualityScore != nil {
		score = min(max(*report.CodeQualityScore, 1), 10)
	}
	compliance := false
	if report.ComplianceStatus != nil {
		compliance = *report.ComplianceStatus
	}

	results := make([]models.TestResult, 0, len(report.TestResults))
	for _, tr := range report.TestResults {
		results = append(results, models.TestResult{
			Name:          tr.Name,
			Passed:        tr.Passed,
			Message:       tr.Message,
			ExecutionTime: tr.ExecutionTime,
		})
	}
	encoded, err := json.Marshal(results)
	if err != nil {
		return dto.ReviewResponse{}, err
	}

	review := models.Review{
		SubmissionID:     submission.ID,
		ReviewType:       models.ReviewTypeAnalysis,
		ReviewText:       textOr(report.OverallReview, "Could not generate a review for this submission."),
		CodeQualityScore: &score,
		ComplianceStatus: &compliance,
		TestResults:      datatypes.JSON(encoded),
		Suggestions:      textOr(flattenText(report.ImprovementSuggestions), "Could not generate improvement suggestions."),
		SecurityIssues:   textOr(flattenText(report.SecurityIssues), "Could not analyze security issues."),
		PerformanceNotes: textOr(flattenText(report.PerformanceNotes), "Could not analyze performance."),
	}
	if raw, ok := ai.ExtractObject(text); ok {
		review.Details = datatypes.JSON(raw)
	}

	if err := s.reviews.CreateForSubmission(ctx, &review, map[string]interface{}{"compliance_check": compliance}); err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReviewResponse{}, ErrSubmissionNotFound
		}
		return dto.ReviewResponse{}, err
	}

	s.logger.Info().Uint("review_id", review.ID).Uint("submission_id", submission.ID).Int("score", score).Msg("analysis review generated")

	return dto.NewReviewResponse(review), nil
}

func textOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

// flattenText renders a loosely typed model field as plain text.
func flattenText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		lines := make([]string, 0, len(v))
		for _, item := range v {
			if line := strings.TrimSpace(flattenText(item)); line != "" {
				lines = append(lines, "- "+line)
			}
		}
		return strings.Join(lines, "\n")
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}
