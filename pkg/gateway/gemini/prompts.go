package gemini

import (
	"fmt"

	"github.com/kazitrust/kazitrust/pkg/legal"
)

const (
	chatPersona = "You are KaziTrust AI, an expert advisor for domestic workers in Nairobi, Kenya. " +
		"You specialize in Kenyan labor laws (Employment Act, Domestic Workers Regulations). " +
		"You provide helpful, compassionate, and legally sound advice in simple terms. " +
		"You can communicate in English, Kiswahili, and Sheng. " +
		"If asked about a dispute, suggest mediation or legal aid paths like KUDHEIHA or FIDA Kenya."

	mediaInstruction = "Analyze this document image or video of a labor contract. " +
		"Summarize the key terms, list any potential red flags or warnings for a domestic worker in Kenya, " +
		"and extract the key points."

	defaultSourceTitle = "Legal Source"
)

func speechPrompt(text string) string {
	return "Speak: " + text
}

func translatePrompt(text string, lang legal.Language) string {
	return fmt.Sprintf(`Translate the following legal text related to Kenyan labor laws into %s.
Focus on making it easy to understand for a domestic worker in Nairobi.
Also provide a brief explanation of what it means for them and cite relevant sections if known (e.g., Employment Act 2007).

Return as JSON with:
{
  "translated": "...",
  "explanation": "...",
  "citations": ["..."]
}

Text: %s`, lang, text)
}

func searchPrompt(query string, lang legal.Language) string {
	return fmt.Sprintf(`Search for the latest Kenyan labor laws and domestic worker regulations regarding: %s.
Ensure the context is specific to Nairobi and current year.
Provide your response in %s.
Focus on making the answer clear, compassionate, and actionable for a worker.`, query, lang)
}

var (
	translationSchema = &schema{
		Type: "OBJECT",
		Properties: map[string]*schema{
			"translated":  {Type: "STRING"},
			"explanation": {Type: "STRING"},
			"citations":   {Type: "ARRAY", Items: &schema{Type: "STRING"}},
		},
	}

	analysisSchema = &schema{
		Type: "OBJECT",
		Properties: map[string]*schema{
			"summary":   {Type: "STRING"},
			"keyPoints": {Type: "ARRAY", Items: &schema{Type: "STRING"}},
			"warnings":  {Type: "ARRAY", Items: &schema{Type: "STRING"}},
		},
	}
)
