package classify

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"rupeeflow/internal/common"
	"rupeeflow/internal/model"
)

const defaultGeminiModel = "gemini-2.5-flash"

// geminiClient implements Client directly against the Gemini API, removing
// the need for a separate classifier gateway deployment.
type geminiClient struct {
	apiKey string
	model  string
}

// newGeminiClient creates a direct Gemini classifier client.
func newGeminiClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", common.ErrMissingConfig)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultGeminiModel
	}

	return &geminiClient{
		apiKey: cfg.APIKey,
		model:  modelName,
	}, nil
}

// Classify asks Gemini for a category suggestion.
func (c *geminiClient) Classify(ctx context.Context, prompt string, categories []string) (model.Suggestion, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      c.apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return model.Suggestion{}, fmt.Errorf("failed to create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildGeminiPrompt(prompt, categories)},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return model.Suggestion{}, fmt.Errorf("failed to generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return model.Suggestion{}, fmt.Errorf("empty response from model")
	}

	return parseSuggestion([]byte(stripCodeFences(rawText)))
}

// buildGeminiPrompt produces the categorization prompt. The instructions,
// confidence scale and output contract match what the classifier gateway uses.
func buildGeminiPrompt(message string, categories []string) string {
	categoryList := strings.Join(categories, ", ")

	return fmt.Sprintf(`You are an intelligent expense categorizer.

You are given a transaction message:
%q

Your task:
1. Think deeply and cautiously before matching to any category.
2. Try to match the transaction to one of the following categories:
%s

3. If a category fits well, return it with a confidence score (0-10) based on how certain you are. You can give decimal values too.
4. If no category fits, suggest a new category, but keep it to 1 or 2 words only.
   - Do NOT guess if unsure.
   - If you are highly uncertain, give a very low confidence score (e.g. 2 or 3).
   - If you are highly certain of the new category, give a high confidence score (10).
5. Clean and normalize messy UPI names like "blinkitx238", "swiggy-xyz123" into brand names like "Blinkit", "Swiggy" and use that as the description.
6. Always specify the type: either "Expense" or "Income".
7. Be realistic: a generic merchant name might be unknown; don't assume a category unless you're confident.
8. STRICT RULES for description:
- NO extra words.
- ONLY the normalized merchant name (e.g., "Blinkit", "Paytm", "Zomato").
- NO phrases like "transaction to", "payment for", "transfer to".
- MAXIMUM 2 words, preferably just one.

Always return ONLY valid raw JSON (no markdown, no extra text):

Example:
{
  "category": "Groceries",
  "description": "Blinkit",
  "type": "Expense",
  "confidence_score": "9.5"
}

Another example:
{
  "category": "Unknown",
  "description": "Shreemaya",
  "type": "Expense",
  "confidence_score": "2"
}
ONLY RETURN JSON`, message, categoryList)
}
