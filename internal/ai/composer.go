// Package ai turns routed query results into narrative answers. The composer
// sends the rows to Gemini for a natural-language summary; when no API key is
// configured, or the model call fails, it falls back to a deterministic plain
// rendering so the pipeline never depends on the model being reachable.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"districtlens/internal/routing"
)

const defaultModel = "gemini-2.0-flash"

// promptRowLimit bounds how many rows travel to the model; the full row set
// still goes back to the caller.
const promptRowLimit = 25

type Composer struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

// NewComposer builds a composer from viper config. A missing API key is not
// an error: the composer then answers with the plain rendering only.
func NewComposer(ctx context.Context, log *zap.Logger) (*Composer, error) {
	if log == nil {
		log = zap.NewNop()
	}

	model := viper.GetString("ai.gemini.model")
	if model == "" {
		model = defaultModel
	}

	apiKey := resolveEnvVarKeyPointer(viper.GetString("ai.gemini.api_key"))
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		log.Info("no gemini api key configured, answers will use plain rendering")
		return &Composer{model: model, log: log}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Composer{client: client, model: model, log: log}, nil
}

// Narrate produces a readable answer for the routed result. Model failures
// degrade to the plain rendering rather than failing the request.
func (c *Composer) Narrate(ctx context.Context, question string, res *routing.Result) string {
	if c.client == nil {
		return RenderPlain(res)
	}

	prompt := buildPrompt(question, res)
	content := genai.NewContentFromText(prompt, genai.RoleUser)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, []*genai.Content{content}, nil)
	if err != nil {
		c.log.Warn("gemini call failed, using plain rendering", zap.Error(err))
		return RenderPlain(res)
	}
	if len(resp.Candidates) == 0 {
		return RenderPlain(res)
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			out.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(out.String()) == "" {
		return RenderPlain(res)
	}
	return out.String()
}

func buildPrompt(question string, res *routing.Result) string {
	rows := res.Rows
	if len(rows) > promptRowLimit {
		rows = rows[:promptRowLimit]
	}
	encoded, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		encoded = []byte("[]")
	}

	var b strings.Builder
	b.WriteString("You are an analytics assistant for school-district software usage data. ")
	b.WriteString("Answer the question using only the rows below. Be concrete: name the software, cite the numbers.\n\n")
	fmt.Fprintf(&b, "Question: %s\n", question)
	fmt.Fprintf(&b, "Data source: %s (matched intent: %s)\n", res.ViewUsed, res.Intent)
	if res.Truncated {
		b.WriteString("Note: the result set was truncated to the row cap; mention that more data exists.\n")
	}
	b.WriteString("\nRows:\n")
	b.Write(encoded)
	b.WriteString("\n\nKeep the answer short and factual. Do not invent values that are not in the rows.")
	return b.String()
}

// RenderPlain is the model-free rendering: a compact textual listing of the
// result rows.
func RenderPlain(res *routing.Result) string {
	if len(res.Rows) == 0 {
		return "No matching data found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d result(s) from %s:\n", len(res.Rows), res.ViewUsed)
	for i, row := range res.Rows {
		if i == promptRowLimit {
			fmt.Fprintf(&b, "... and %d more row(s)\n", len(res.Rows)-i)
			break
		}
		b.WriteString("  - ")
		b.WriteString(summarizeRow(row))
		b.WriteString("\n")
	}
	if res.Truncated {
		b.WriteString("Result set truncated; narrow the question for the full picture.\n")
	}
	return b.String()
}

// summarizeRow picks the name-like column first, then a stable rendering of
// the remaining values.
func summarizeRow(row map[string]any) string {
	var parts []string
	for _, key := range []string{"name", "software_name", "display_name", "school_name", "full_name"} {
		if v, ok := row[key]; ok {
			parts = append(parts, fmt.Sprintf("%v", v))
			break
		}
	}
	for _, key := range sortedRowKeys(row) {
		switch key {
		case "name", "software_name", "display_name", "school_name", "full_name":
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", key, row[key]))
	}
	return strings.Join(parts, " ")
}

func sortedRowKeys(row map[string]any) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func looksLikeEnvVarName(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 8 {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if r < 'A' || r > 'Z' {
				return false
			}
			continue
		}
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			continue
		}
		return false
	}
	return true
}

// resolveEnvVarKeyPointer lets the config hold an env var name instead of
// the key itself.
func resolveEnvVarKeyPointer(apiKey string) string {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" || !looksLikeEnvVarName(apiKey) {
		return apiKey
	}
	if v := strings.TrimSpace(os.Getenv(apiKey)); v != "" {
		return v
	}
	return apiKey
}
