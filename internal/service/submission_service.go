package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/codecoach-api/internal/dto"
	"github.com/noah-isme/codecoach-api/internal/events"
	"github.com/noah-isme/codecoach-api/internal/models"
	"github.com/noah-isme/codecoach-api/internal/repository"
	"github.com/noah-isme/codecoach-api/pkg/ai"
)

const recommendationParseError = "Failed to parse recommendations"

// SubmissionService manages code submissions and drives them through the
// compile and recommendation review steps.
type SubmissionService interface {
	Create(ctx context.Context, payload dto.CreateSubmissionRequest) (dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	GetWithReviews(ctx context.Context, id uint) (dto.SubmissionWithReviewsResponse, error)
	ListByUser(ctx context.Context, userID uint, skip, limit int) ([]dto.SubmissionResponse, error)
	ListByQuestion(ctx context.Context, questionID uint, skip, limit int) ([]dto.SubmissionResponse, error)
	Update(ctx context.Context, id uint, payload dto.UpdateSubmissionRequest) (dto.SubmissionResponse, error)
	Compile(ctx context.Context, id uint) (dto.CompileResponse, error)
	Recommend(ctx context.Context, id uint) (dto.RecommendationResponse, error)
	SubmitAndReview(ctx context.Context, payload dto.CreateSubmissionRequest) (dto.SubmitAndReviewResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	questions   repository.QuestionRepository
	reviews     repository.ReviewRepository
	generator   ai.Generator
	publisher   events.Publisher
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService constructs the submission service. publisher may be nil.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	questions repository.QuestionRepository,
	reviews repository.ReviewRepository,
	generator ai.Generator,
	publisher events.Publisher,
	validate *validator.Validate,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions: submissions,
		questions:   questions,
		reviews:     reviews,
		generator:   generator,
		publisher:   publisher,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/codecoach-api/internal/service/submission"),
		now:         time.Now,
	}
}

func (s *submissionService) Create(ctx context.Context, payload dto.CreateSubmissionRequest) (dto.SubmissionResponse, error) {
	submission, err := s.create(ctx, payload)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) create(ctx context.Context, payload dto.CreateSubmissionRequest) (models.Submission, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Submission{}, err
	}

	exists, err := s.questions.Exists(ctx, payload.QuestionID)
	if err != nil {
		return models.Submission{}, err
	}
	if !exists {
		return models.Submission{}, ErrQuestionNotFound
	}

	submission := models.Submission{
		UserID:     payload.UserID,
		QuestionID: payload.QuestionID,
		Code:       payload.Code,
		Language:   strings.ToLower(strings.TrimSpace(payload.Language)),
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		return models.Submission{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("user_id", submission.UserID).
		Uint("question_id", submission.QuestionID).
		Msg("submission created")

	return submission, nil
}

func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.load(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) GetWithReviews(ctx context.Context, id uint) (dto.SubmissionWithReviewsResponse, error) {
	submission, err := s.load(ctx, id)
	if err != nil {
		return dto.SubmissionWithReviewsResponse{}, err
	}

	reviews, err := s.reviews.ListBySubmission(ctx, id)
	if err != nil {
		return dto.SubmissionWithReviewsResponse{}, err
	}

	return dto.NewSubmissionWithReviewsResponse(submission, reviews), nil
}

func (s *submissionService) ListByUser(ctx context.Context, userID uint, skip, limit int) ([]dto.SubmissionResponse, error) {
	if err := validatePage(s.validator, skip, limit); err != nil {
		return nil, err
	}

	items, err := s.submissions.ListByUser(ctx, userID, skip, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponses(items), nil
}

func (s *submissionService) ListByQuestion(ctx context.Context, questionID uint, skip, limit int) ([]dto.SubmissionResponse, error) {
	if err := validatePage(s.validator, skip, limit); err != nil {
		return nil, err
	}

	items, err := s.submissions.ListByQuestion(ctx, questionID, skip, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponses(items), nil
}

func (s *submissionService) Update(ctx context.Context, id uint, payload dto.UpdateSubmissionRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	fields := map[string]interface{}{}
	passed, total := current.TestCasesPassed, current.TotalTestCases
	if payload.Code != nil {
		fields["code"] = *payload.Code
	}
	if payload.Language != nil {
		fields["language"] = strings.ToLower(strings.TrimSpace(*payload.Language))
	}
	if payload.Result != nil {
		fields["result"] = *payload.Result
	}
	if payload.TestCasesPassed != nil {
		passed = *payload.TestCasesPassed
		fields["test_cases_passed"] = passed
	}
	if payload.TotalTestCases != nil {
		total = *payload.TotalTestCases
		fields["total_test_cases"] = total
	}
	if payload.ComplianceCheck != nil {
		fields["compliance_check"] = *payload.ComplianceCheck
	}
	if passed > total {
		return dto.SubmissionResponse{}, ErrInvalidTestCounts
	}

	if err := s.submissions.Update(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return s.Get(ctx, id)
}

// compileReport is the structure the collaborator is asked to return when
// simulating a test run.
type compileReport struct {
	TestResults []struct {
		Input          json.RawMessage `json:"input"`
		ExpectedOutput json.RawMessage `json:"expected_output"`
		ActualOutput   json.RawMessage `json:"actual_output"`
		Passed         bool            `json:"passed"`
		Error          string          `json:"error"`
	} `json:"test_results"`
	Summary *struct {
		TotalTests *int `json:"total_tests"`
		Passed     *int `json:"passed"`
	} `json:"summary"`
	ComplianceCheck *bool `json:"compliance_check"`
}

func (s *submissionService) Compile(ctx context.Context, id uint) (dto.CompileResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.compile", trace.WithAttributes(attribute.Int("submission.id", int(id))))
	defer span.End()

	submission, question, err := s.loadWithQuestion(ctx, id)
	if err != nil {
		span.RecordError(err)
		return dto.CompileResponse{}, err
	}

	testCases := make([]ai.CompileTestCase, 0, len(question.TestCases))
	for _, tc := range question.TestCases {
		testCases = append(testCases, ai.CompileTestCase{
			Input:          json.RawMessage(tc.Input),
			ExpectedOutput: json.RawMessage(tc.ExpectedOutput),
		})
	}

	text := s.generate(ctx, "compile", submission.ID, ai.CompilePrompt(submission.Language, submission.Code, testCases))

	raw, ok := ai.ExtractObject(text)
	report, decoded := ai.DecodeObject(string(raw), compileReport{})
	if !ok || !decoded {
		s.logger.Warn().Uint("submission_id", submission.ID).Msg("compile output could not be parsed, recording empty result")
		raw = json.RawMessage(`{}`)
		report = compileReport{}
	}

	results := make([]models.TestResult, 0, len(report.TestResults))
	counted := 0
	for i, tr := range report.TestResults {
		message := strings.TrimSpace(tr.Error)
		if message == "" && !tr.Passed {
			message = fmt.Sprintf("expected %s, got %s", rawOrNull(tr.ExpectedOutput), rawOrNull(tr.ActualOutput))
		}
		if tr.Passed {
			counted++
		}
		results = append(results, models.TestResult{
			Name:    fmt.Sprintf("Test case %d", i+1),
			Passed:  tr.Passed,
			Message: message,
		})
	}

	total := len(results)
	passed := counted
	if report.Summary != nil {
		if report.Summary.TotalTests != nil {
			total = *report.Summary.TotalTests
		}
		if report.Summary.Passed != nil {
			passed = *report.Summary.Passed
		}
	}
	total, passed = clampCounts(total, passed)

	result := models.ResultFromCounts(passed, total)
	compliance := submission.ComplianceCheck
	fields := map[string]interface{}{
		"result":            result,
		"test_cases_passed": passed,
		"total_test_cases":  total,
	}
	if report.ComplianceCheck != nil {
		compliance = *report.ComplianceCheck
		fields["compliance_check"] = compliance
	}

	encoded, err := json.Marshal(results)
	if err != nil {
		return dto.CompileResponse{}, err
	}
	review := models.Review{
		SubmissionID:     submission.ID,
		ReviewType:       models.ReviewTypeTestResults,
		ReviewText:       fmt.Sprintf("%d of %d test cases passed", passed, total),
		ComplianceStatus: report.ComplianceCheck,
		TestResults:      datatypes.JSON(encoded),
		Details:          datatypes.JSON(raw),
	}
	if err := s.reviews.CreateForSubmission(ctx, &review, fields); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist compile review")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CompileResponse{}, ErrSubmissionNotFound
		}
		return dto.CompileResponse{}, err
	}

	span.SetAttributes(attribute.String("submission.result", result), attribute.Int("submission.passed", passed), attribute.Int("submission.total", total))
	s.logger.Info().
		Uint("submission_id", submission.ID).
		Str("result", result).
		Int("passed", passed).
		Int("total", total).
		Msg("submission compiled")

	return dto.CompileResponse{
		SubmissionID:    submission.ID,
		ReviewID:        review.ID,
		Result:          result,
		TestCasesPassed: passed,
		TotalTestCases:  total,
		ComplianceCheck: compliance,
		TestResults:     results,
	}, nil
}

// recommendationDigest picks the fields of a recommendation payload that are
// copied into the review columns.
type recommendationDigest struct {
	Error                  string         `json:"error"`
	OverallAssessment      string         `json:"overall_assessment"`
	ComplexityAnalysis     map[string]any `json:"complexity_analysis"`
	ImprovementSuggestions []struct {
		Issue          string `json:"issue"`
		Recommendation string `json:"recommendation"`
	} `json:"improvement_suggestions"`
}

func (s *submissionService) Recommend(ctx context.Context, id uint) (dto.RecommendationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.recommend", trace.WithAttributes(attribute.Int("submission.id", int(id))))
	defer span.End()

	submission, question, err := s.loadWithQuestion(ctx, id)
	if err != nil {
		span.RecordError(err)
		return dto.RecommendationResponse{}, err
	}

	constraints := make([]string, 0, len(question.Constraints))
	for _, c := range question.Constraints {
		constraints = append(constraints, c.Description)
	}
	examples := make([]map[string]json.RawMessage, 0, len(question.Examples))
	for _, e := range question.Examples {
		examples = append(examples, map[string]json.RawMessage{
			"input":  json.RawMessage(e.Input),
			"output": json.RawMessage(e.Output),
		})
	}
	result := ""
	if submission.Result != nil {
		result = *submission.Result
	}

	text := s.generate(ctx, "recommend", submission.ID, ai.RecommendationPrompt(ai.RecommendationInput{
		Title:           question.Title,
		Description:     question.Description,
		Constraints:     constraints,
		Examples:        examples,
		Language:        submission.Language,
		Code:            submission.Code,
		TestCasesPassed: submission.TestCasesPassed,
		TotalTestCases:  submission.TotalTestCases,
		Result:          result,
	}))

	raw, ok := ai.ExtractObject(text)
	if !ok {
		s.logger.Warn().Uint("submission_id", submission.ID).Msg("recommendation output could not be parsed")
		raw, _ = json.Marshal(map[string]string{"error": recommendationParseError})
	}
	digest, _ := ai.DecodeObject(string(raw), recommendationDigest{})

	reviewText := strings.TrimSpace(digest.OverallAssessment)
	if reviewText == "" {
		reviewText = strings.TrimSpace(digest.Error)
	}
	if reviewText == "" {
		reviewText = "No overall assessment provided"
	}

	suggestions := make([]string, 0, len(digest.ImprovementSuggestions))
	for _, item := range digest.ImprovementSuggestions {
		line := strings.TrimSpace(item.Issue)
		if rec := strings.TrimSpace(item.Recommendation); rec != "" {
			if line != "" {
				line += ": "
			}
			line += rec
		}
		if line != "" {
			suggestions = append(suggestions, "- "+line)
		}
	}

	review := models.Review{
		SubmissionID:     submission.ID,
		ReviewType:       models.ReviewTypeRecommendation,
		ReviewText:       reviewText,
		Suggestions:      strings.Join(suggestions, "\n"),
		PerformanceNotes: formatComplexity(digest.ComplexityAnalysis),
		Details:          datatypes.JSON(raw),
	}
	if err := s.reviews.CreateForSubmission(ctx, &review, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist recommendation review")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RecommendationResponse{}, ErrSubmissionNotFound
		}
		return dto.RecommendationResponse{}, err
	}

	s.logger.Info().Uint("submission_id", submission.ID).Uint("review_id", review.ID).Msg("recommendations stored")

	return dto.RecommendationResponse{
		SubmissionID:    submission.ID,
		ReviewID:        review.ID,
		Recommendations: raw,
	}, nil
}

func (s *submissionService) SubmitAndReview(ctx context.Context, payload dto.CreateSubmissionRequest) (dto.SubmitAndReviewResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.submit_and_review", trace.WithAttributes(
		attribute.Int("submission.user_id", int(payload.UserID)),
		attribute.Int("submission.question_id", int(payload.QuestionID)),
	))
	defer span.End()

	created, err := s.create(ctx, payload)
	if err != nil {
		span.RecordError(err)
		return dto.SubmitAndReviewResponse{}, err
	}

	// Recommendations read the counts written by compile, so the steps stay sequential.
	if _, err := s.Compile(ctx, created.ID); err != nil {
		span.RecordError(err)
		return dto.SubmitAndReviewResponse{}, err
	}
	if _, err := s.Recommend(ctx, created.ID); err != nil {
		span.RecordError(err)
		return dto.SubmitAndReviewResponse{}, err
	}

	withReviews, err := s.GetWithReviews(ctx, created.ID)
	if err != nil {
		span.RecordError(err)
		return dto.SubmitAndReviewResponse{}, err
	}

	response := dto.SubmitAndReviewResponse{
		SubmissionID: created.ID,
		Submission:   withReviews.SubmissionResponse,
	}
	if len(withReviews.Reviews) > 0 {
		latest := withReviews.Reviews[0]
		response.Review = &latest
	}

	s.publishReviewed(ctx, withReviews.SubmissionResponse)

	return response, nil
}

func (s *submissionService) publishReviewed(ctx context.Context, submission dto.SubmissionResponse) {
	if s.publisher == nil {
		return
	}

	result := ""
	if submission.Result != nil {
		result = *submission.Result
	}
	event := events.SubmissionReviewed{
		SubmissionID:    submission.ID,
		UserID:          submission.UserID,
		QuestionID:      submission.QuestionID,
		Result:          result,
		TestCasesPassed: submission.TestCasesPassed,
		TotalTestCases:  submission.TotalTestCases,
		ReviewedAt:      s.now().UTC(),
	}
	if err := s.publisher.SubmissionReviewed(ctx, event); err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to publish submission reviewed event")
	}
}

// generate calls the collaborator. Failures are logged and yield an empty
// string so callers fall through to their parse fallback.
func (s *submissionService) generate(ctx context.Context, step string, submissionID uint, prompt ai.Prompt) string {
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn().Err(err).Str("step", step).Uint("submission_id", submissionID).Msg("text generation failed")
		return ""
	}
	return text
}

func (s *submissionService) load(ctx context.Context, id uint) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}
	return submission, nil
}

func (s *submissionService) loadWithQuestion(ctx context.Context, id uint) (models.Submission, models.Question, error) {
	submission, err := s.load(ctx, id)
	if err != nil {
		return models.Submission{}, models.Question{}, err
	}

	question, err := s.questions.GetByID(ctx, submission.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, models.Question{}, ErrQuestionNotFound
		}
		return models.Submission{}, models.Question{}, err
	}

	return submission, question, nil
}

func clampCounts(total, passed int) (int, int) {
	if total < 0 {
		total = 0
	}
	if passed < 0 {
		passed = 0
	}
	if passed > total {
		passed = total
	}
	return total, passed
}

func rawOrNull(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	return string(raw)
}

func formatComplexity(analysis map[string]any) string {
	if len(analysis) == 0 {
		return ""
	}

	keys := make([]string, 0, len(analysis))
	for key := range analysis {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", strings.ReplaceAll(key, "_", " "), analysis[key]))
	}
	return strings.Join(parts, "; ")
}
