package service

import (
	"context"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecoach-api/pkg/ai"
)

const maxTitleWords = 6

// generateTitle asks the collaborator for a short title and falls back to the
// leading words of text when the call fails or returns nothing usable.
func generateTitle(ctx context.Context, generator ai.Generator, policy *bluemonday.Policy, text string, logger zerolog.Logger) string {
	plain := func(value string) string {
		return strings.TrimSpace(html.UnescapeString(policy.Sanitize(value)))
	}

	reply, err := generator.Generate(ctx, ai.TitlePrompt(text))
	if err != nil {
		logger.Warn().Err(err).Msg("title generation failed, using message prefix")
	} else if title := ai.CleanTitle(plain(reply), maxTitleWords); title != "" {
		return title
	}

	if title := ai.CleanTitle(plain(text), maxTitleWords); title != "" {
		return title
	}
	return "New conversation"
}
