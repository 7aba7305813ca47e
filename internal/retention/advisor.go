package retention

import (
	"context"
	"encoding/json"
	"fmt"

	"hr-analytics/internal/llm/openai"
)

const (
	advisorSystemPrompt = "You are an HR assistant providing concise retention advice."
	advisorMaxTokens    = 450
	advisorTemperature  = float32(0.7)
)

// Advisor writes retention recommendations for a prediction. It never fails;
// provider errors are folded into the returned text.
type Advisor interface {
	Recommend(ctx context.Context, prediction int, probability float64, data map[string]any) string
}

// ChatClient is the subset of the OpenAI client the advisor needs.
type ChatClient interface {
	Chat(ctx context.Context, messages []openai.Message, opts openai.Options) (string, error)
}

// ChatAdvisor asks a chat model for three or four short recommendations.
type ChatAdvisor struct {
	Client ChatClient
}

func (a ChatAdvisor) Recommend(ctx context.Context, prediction int, probability float64, data map[string]any) string {
	temperature := advisorTemperature
	out, err := a.Client.Chat(ctx, []openai.Message{
		{Role: "system", Content: advisorSystemPrompt},
		{Role: "user", Content: advisorPrompt(prediction, probability, data)},
	}, openai.Options{MaxTokens: advisorMaxTokens, Temperature: &temperature})
	if err != nil {
		return fmt.Sprintf("Error generating recommendations: %s", err)
	}
	return out
}

func advisorPrompt(prediction int, probability float64, data map[string]any) string {
	outlook := "Likely to stay"
	if prediction == 1 {
		outlook = "Likely to leave"
	}
	details, err := json.Marshal(data)
	if err != nil {
		details = []byte(fmt.Sprint(data))
	}
	return fmt.Sprintf("Prediction: %s.\nProbability of leaving: %.2f.\nKey employee details: %s.\n\n"+
		"Provide 3-4 actionable HR recommendations to improve retention or engagement in no more than 4 sentences.",
		outlook, probability, details)
}
