package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

const compileSystemPrompt = `You are a precise code execution engine. Execute the provided code against the test cases and report accurate results.
Execute the code exactly as written. Do not provide explanations or suggestions.

For each test case:
1. Run the code with the input
2. Compare the actual output with the expected output
3. Report whether the test case passed or failed

Respond ONLY with a valid JSON object of this shape:
{
  "test_results": [
    {
      "test_case_id": 1,
      "input": "the input that was provided",
      "expected_output": "the expected output",
      "actual_output": "the actual output from the code",
      "passed": true,
      "error": "any error message if applicable"
    }
  ],
  "summary": {"total_tests": 5, "passed": 3, "failed": 2},
  "compliance_check": true
}
compliance_check reports whether the code follows basic coding standards for the language.`

const recommendationSystemPrompt = `You are an expert code reviewer specializing in algorithmic optimization and best practices.
Analyze the provided solution and give recommendations on time and space complexity, readability, performance bottlenecks, alternative approaches and unhandled edge cases.

Respond with a JSON object of this shape:
{
  "complexity_analysis": {"current_time": "O(n^2)", "current_space": "O(n)", "optimized_time": "O(n log n)", "optimized_space": "O(n)"},
  "key_observations": ["Observation 1"],
  "improvement_suggestions": [{"issue": "...", "recommendation": "...", "code_example": "..."}],
  "alternative_approaches": [{"name": "...", "description": "...", "advantages": ["..."], "code_snippet": "..."}],
  "overall_assessment": "Summary assessment of the solution"
}`

const chatSystemPrompt = `You are a helpful coding assistant for programmers.
- Provide concise, practical solutions to coding problems
- Include code examples with explanations
- When appropriate, explain algorithm complexity (time/space)
- If you're unsure about something, acknowledge it instead of guessing
- Format code blocks properly using markdown syntax
- Focus on best practices and performance considerations`

// CompileTestCase is one test case rendered into the compile prompt.
type CompileTestCase struct {
	Input          json.RawMessage `json:"input"`
	ExpectedOutput json.RawMessage `json:"expected_output"`
}

// CompilePrompt asks the model to simulate running code against test cases.
func CompilePrompt(language, code string, testCases []CompileTestCase) Prompt {
	formatted, err := json.MarshalIndent(testCases, "", "  ")
	if err != nil {
		formatted = []byte("[]")
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Code (%s):\n```%s\n%s\n```\n\n", language, language, code)
	builder.WriteString("Test Cases:\n")
	builder.Write(formatted)
	builder.WriteString("\n")

	return SinglePrompt(compileSystemPrompt, builder.String())
}

// RecommendationInput carries the problem context for a recommendation request.
type RecommendationInput struct {
	Title           string
	Description     string
	Constraints     []string
	Examples        any
	Language        string
	Code            string
	TestCasesPassed int
	TotalTestCases  int
	Result          string
}

// RecommendationPrompt asks the model for structured improvement advice.
func RecommendationPrompt(in RecommendationInput) Prompt {
	constraints, err := json.MarshalIndent(in.Constraints, "", "  ")
	if err != nil {
		constraints = []byte("[]")
	}
	examples, err := json.MarshalIndent(in.Examples, "", "  ")
	if err != nil {
		examples = []byte("[]")
	}
	result := in.Result
	if result == "" {
		result = "None"
	}

	var builder strings.Builder
	builder.WriteString("Problem:\n")
	fmt.Fprintf(&builder, "Title: %s\nDescription: %s\n\n", orDefault(in.Title, "Unknown Problem"), orDefault(in.Description, "No description available"))
	fmt.Fprintf(&builder, "Constraints:\n%s\n\nExamples:\n%s\n\n", constraints, examples)
	fmt.Fprintf(&builder, "Submitted Code (%s):\n```%s\n%s\n```\n\n", in.Language, in.Language, in.Code)
	fmt.Fprintf(&builder, "Current Results:\n- Tests Passed: %d/%d\n- Result: %s\n", in.TestCasesPassed, in.TotalTestCases, result)

	return SinglePrompt(recommendationSystemPrompt, builder.String())
}

// AnalysisPrompt asks for a free-form review with a quality score.
func AnalysisPrompt(language, code string) Prompt {
	if language == "" {
		language = "python"
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "You are an expert code reviewer. Analyze the following %s code and provide a comprehensive review:\n\n", language)
	fmt.Fprintf(&builder, "```%s\n%s\n```\n\n", language, code)
	builder.WriteString(`Respond with a JSON object with these fields:
- "overall_review": a comprehensive review of the code
- "code_quality_score": an integer from 1 to 10 (10 being the best)
- "compliance_status": whether the code passes basic compliance checks (true/false)
- "test_results": a list of {"name", "passed", "message", "execution_time"}
- "improvement_suggestions": specific suggestions for improving the code
- "security_issues": any security vulnerabilities or concerns
- "performance_notes": comments on performance and efficiency`)

	return SinglePrompt("", builder.String())
}

// HintPrompt asks for a short nudge without revealing the solution.
func HintPrompt(title, description, difficulty string) Prompt {
	var builder strings.Builder
	builder.WriteString("You are a helpful programming tutor who provides hints for coding problems.\n")
	builder.WriteString("Guide the student toward the solution without giving away the complete answer.\n\n")
	fmt.Fprintf(&builder, "Title: %s\nDescription: %s\nDifficulty: %s\n\n", title, description, difficulty)
	builder.WriteString(`Provide a hint that:
1. Identifies a key concept or approach needed to solve the problem
2. Offers a small nudge in the right direction without revealing the full solution
3. Encourages critical thinking
4. Is concise (maximum 3-4 sentences)
5. Includes a thought-provoking question

Do not give away the solution algorithm or code. Reply with a single paragraph without introductory text like 'Here's a hint:'.`)

	return SinglePrompt("", builder.String())
}

// TitlePrompt asks for a short title summarizing a query.
func TitlePrompt(query string) Prompt {
	p := SinglePrompt("", fmt.Sprintf("You are an AI assistant. Generate a short, meaningful title (max 6 words) for the user's query.\n\nQuery: %s\n\nTitle:", query))
	p.Temperature = 0.5
	return p
}

// ChatPrompt wraps a conversation history with the coding assistant instructions.
func ChatPrompt(history []Message) Prompt {
	return Prompt{System: chatSystemPrompt, Messages: history}
}

// CleanTitle normalizes a generated title: quotes and trailing punctuation are
// dropped and at most maxWords words are kept.
func CleanTitle(text string, maxWords int) string {
	line := strings.TrimSpace(text)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimPrefix(line, "Title:")
	line = strings.Trim(strings.TrimSpace(line), "\"'*#`.")

	words := strings.Fields(line)
	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " ")
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
