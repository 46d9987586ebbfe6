// Package essay calls Gemini's generateContent endpoint to draft a
// scholarship essay tailored to one listing and one student.
package essay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"scholar-fetch/internal/scholar/model"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// KeyProvider supplies the Gemini API key (backed by the config collection).
type KeyProvider interface {
	GeminiKey(ctx context.Context) (string, error)
}

// Profile is the optional student context woven into the prompt.
type Profile struct {
	FullName       string            `json:"full_name"`
	Age            int               `json:"age"`
	GraduationYear int               `json:"graduation_year"`
	IsTransfer     bool              `json:"is_transfer"`
	Interests      []string          `json:"interests"`
	QuizAnswers    map[string]string `json:"quiz_answers"`
}

type Generator struct {
	Log    *zap.Logger
	Keys   KeyProvider
	Models []string // fallback order
	client *resty.Client
}

func NewGenerator(log *zap.Logger, keys KeyProvider, models []string) *Generator {
	return &Generator{
		Log:    log,
		Keys:   keys,
		Models: models,
		client: resty.New().SetBaseURL(geminiBaseURL).SetTimeout(60 * time.Second),
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GenerateTailoredEssay tries each configured model in order and returns the
// first successful draft.
func (g *Generator) GenerateTailoredEssay(ctx context.Context, baseEssay string, sch model.Scholarship, profile *Profile) (string, error) {
	key, err := g.Keys.GeminiKey(ctx)
	if err != nil {
		return "", err
	}

	req := generateRequest{Contents: []content{{Parts: []part{{Text: buildPrompt(baseEssay, sch, profile)}}}}}

	var lastErr error
	for _, m := range g.Models {
		text, err := g.generate(ctx, m, key, req)
		if err == nil {
			return text, nil
		}
		g.Log.Warn("essay model failed, trying next", zap.String("model", m), zap.Error(err))
		lastErr = err
	}
	return "", fmt.Errorf("all essay models failed: %w", lastErr)
}

func (g *Generator) generate(ctx context.Context, m, key string, req generateRequest) (string, error) {
	var out generateResponse
	res, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("key", key).
		SetBody(req).
		SetResult(&out).
		Post(fmt.Sprintf("/models/%s:generateContent", m))
	if err != nil {
		return "", err
	}
	if res.IsError() {
		return "", fmt.Errorf("gemini %s returned %d", m, res.StatusCode())
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini %s returned no candidates", m)
	}
	return strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text), nil
}

func buildPrompt(baseEssay string, sch model.Scholarship, profile *Profile) string {
	var ctxBlock strings.Builder
	if profile != nil {
		fmt.Fprintf(&ctxBlock, "Student Profile Details:\n")
		fmt.Fprintf(&ctxBlock, "- Name: %s\n", orNotProvided(profile.FullName))
		if profile.Age > 0 {
			fmt.Fprintf(&ctxBlock, "- Age: %d\n", profile.Age)
		}
		if profile.GraduationYear > 0 {
			fmt.Fprintf(&ctxBlock, "- Graduation Year: %d\n", profile.GraduationYear)
		}
		fmt.Fprintf(&ctxBlock, "- Transfer Student: %v\n", profile.IsTransfer)
		fmt.Fprintf(&ctxBlock, "- Interests: %s\n", orNotProvided(strings.Join(profile.Interests, ", ")))
		if len(profile.QuizAnswers) > 0 {
			fmt.Fprintf(&ctxBlock, "Tailoring Quiz Answers:\n")
			for q, a := range profile.QuizAnswers {
				fmt.Fprintf(&ctxBlock, "- %s: %s\n", q, a)
			}
		}
	}

	return fmt.Sprintf(`You are an expert scholarship essay writer and college counselor.

Task: Write a completely new scholarship essay from scratch that answers the specific essay question below.

SCHOLARSHIP INFORMATION:
- Name: %s
- Provider: %s
- Description: %s
- Requirements: %s

ESSAY QUESTION TO ANSWER:
"%s"

STUDENT BACKGROUND (use this to understand the student, but do not copy or rewrite it):
%s

INSTRUCTIONS:
1. Write a brand new essay that directly answers the essay question above.
2. Do not rewrite or paraphrase the student's background essay.
3. Use the background only to understand the student's experiences, voice, and perspective.
4. Address the scholarship's requirements directly.
5. Length: 400-650 words.
6. Return only the essay text, no introduction or explanation.`,
		sch.Name, sch.Provider, sch.Description, strings.Join(sch.Requirements, ", "),
		baseEssay, ctxBlock.String())
}

func orNotProvided(s string) string {
	if s == "" {
		return "Not provided"
	}
	return s
}
