package common

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model name is configured
const DefaultModel = "gemini-2.5-pro"

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if modelName == "" {
		modelName = DefaultModel
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

func (g *GeminiClient) Close() {
	g.client.Close()
}

// GenerateCompanyInfo researches the company named in a recruitment email
// and returns a plain-text dossier in the standard section layout.
func (g *GeminiClient) GenerateCompanyInfo(ctx context.Context, email string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(ResearchPrompt(email)))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}
	return g.extractTextFromResponse(resp)
}

// GenerateShortsScript turns a dossier into a short vertical-video script
// made of "[SLIDE N: TITLE]" blocks.
func (g *GeminiClient) GenerateShortsScript(ctx context.Context, companyInfo string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(ShortsScriptPrompt(companyInfo)))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}
	text, err := g.extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(text), "`")), nil
}

func (g *GeminiClient) extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	return sb.String(), nil
}

// ResearchPrompt builds the company research prompt for an email
func ResearchPrompt(email string) string {
	return fmt.Sprintf(`
As a placement cell assistant, analyze the following company email, extract the company name and the role, then research the company and provide comprehensive information.
You are helping a final-year B.Tech Computer Science / AIML student who is preparing for placements and needs specific details to prepare for interviews and understand the company better.
Validate every link you provide; each URL must work and be relevant.

Email Content:
%s

Provide the information in exactly this structure:

%s: [Extracted Company Name]

%s:
1. Base Site: [Official website URL]
2. LinkedIn: [LinkedIn company page URL]
3. Facebook: [Facebook page URL if available]
4. X (Twitter): [Twitter URL if available]
5. Instagram: [Instagram page URL if available]
6. Role/s Offered: [Extracted role from email]
7. Company Overview: [Brief description of what the company does]
8. Company Size: [Number of employees if available]
9. Headquarters: [Location]
10. Founded: [Year if available]

%s:
1. Interview Experiences and Questions: [GeeksForGeeks / Glassdoor interview pages for the company]
2. LeetCode Company-specific Questions: [If available]

%s:
[Based on the role, list the technical topics and skills to prepare, with one best-fitting resource link each:
programming languages, data structures and algorithms (name the topics that have been asked before), system design, behavioral interviews.]

%s:
[Interview preparation resources for this company and role from reputable sources. If no role was extracted, give resources for entry-level SDE / analyst roles.]

%s:
- GeeksForGeeks: [Link to GFG company page]
- LeetCode: [Link to LeetCode company page]
- AmbitionBox: [Link to AmbitionBox company page]
- Glassdoor: [Link to Glassdoor company page]

%s:
[Brief information about company culture, values and work environment]

Rules:
- Do not include any salary information, even if the email mentions it.
- No placeholder text. Every URL is just the link, not a description of it.
- No personal opinions or unverified information.
- Plain text only, no markdown formatting.
`, email, SecOrganization, SecDetails, SecReferences, SecPreparation, SecHighlights, SecAdditional, SecCulture)
}

// ShortsScriptPrompt builds the prompt for a six-slide promotional script
func ShortsScriptPrompt(companyInfo string) string {
	return fmt.Sprintf(`
Create a high-energy, 60-second YouTube Shorts script for a tech placement opportunity based on the info below.
The tone should be like a top tech influencer: fast, exciting and packed with value.

Strict rules:
- 6 slides maximum.
- Format every slide as "[SLIDE X: CATCHY TITLE]" on its own line, followed by the spoken narration for that slide.
- Do not include the word "Narrator" or any colons in the narration.
- Use hooks, short sentences and strong calls to action.

Company Info:
---
%s
---

Script blueprint:
[SLIDE 1: THE DROP]
Stop scrolling! This is the opportunity you've been waiting for.

[SLIDE 2: THE LOWDOWN]
Quick facts about the company. What they do and their impact.

[SLIDE 3: THE VALUE PROPOSITION]
The unique benefits and growth opportunities this role offers.

[SLIDE 4: THE TECH STACK]
The top 2-3 technologies they are looking for.

[SLIDE 5: THE HACKS]
Where to prepare. GFG, LeetCode, go grind.

[SLIDE 6: THE DEADLINE]
Create urgency. Your career is calling.

Generate the script now. Make it punchy.
`, companyInfo)
}
