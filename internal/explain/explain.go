// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package explain turns a natural-language question into graph search terms
// and asks an OpenAI-compatible chat model to explain the matching papers.
package explain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"

	"github.com/pdiddy/pubmed-graph/internal/keywords"
	"github.com/pdiddy/pubmed-graph/internal/logger"
	"github.com/pdiddy/pubmed-graph/pkg/types"
)

// NoPapersMessage is returned by Explain for an empty result set. The model
// is not called in that case.
const NoPapersMessage = "No relevant papers were found matching your query."

const (
	defaultModel       = "gpt-4o"
	defaultTemperature = 0.2
	abstractPreview    = 200
	minTermLength      = 4
)

// ErrNoChoices is returned when the model responds without any completion.
var ErrNoChoices = errors.New("model returned no choices")

var promptFuncs = template.FuncMap{
	"inc":     func(i int) int { return i + 1 },
	"join":    func(s []string) string { return strings.Join(s, ", ") },
	"preview": preview,
}

var explainPromptTmpl = template.Must(template.New("explain").Funcs(promptFuncs).Parse(`You are a helpful research assistant explaining PubMed search results.
The user asked: {{.Question}}

Based on this question, I found {{len .Papers}} papers. Here are the key details about what I found:
{{range $i, $p := .Papers}}
Paper {{inc $i}}:
Title: {{$p.Title}}
Keywords: {{join $p.Keywords}}
Key points from abstract: {{preview $p.Abstract}}...
Authors: {{join $p.Authors}}
{{end}}
Please provide a concise but informative explanation of:
1. Why these papers were selected and how they relate to the user's question
2. The main themes or findings across the papers
3. Any particularly noteworthy papers from the set

Keep your response conversational but professional, and highlight the most relevant aspects for the user's query.
`))

// SearchTerms returns the question tokens usable as graph search terms:
// alphanumeric, not a stopword, and longer than three characters.
func SearchTerms(question string) []string {
	var terms []string
	for _, tok := range keywords.Tokenize(question) {
		if !keywords.IsAlnum(tok) || keywords.IsStopword(tok) {
			continue
		}
		if utf8.RuneCountInString(tok) < minTermLength {
			continue
		}
		terms = append(terms, tok)
	}
	return terms
}

// Explainer asks a chat model to summarize search results.
type Explainer struct {
	client      *openai.Client
	model       string
	temperature float32
	log         *logger.Logger
}

// New returns an Explainer for the endpoint described by cfg.
func New(cfg types.AIConfig, log *logger.Logger) *Explainer {
	if log == nil {
		log = logger.Nop()
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIBase != "" {
		oc.BaseURL = strings.TrimRight(cfg.APIBase, "/")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	temp := cfg.Temperature
	if temp == 0 {
		temp = defaultTemperature
	}
	return &Explainer{
		client:      openai.NewClientWithConfig(oc),
		model:       model,
		temperature: temp,
		log:         log.With("component", "explain", "model", model),
	}
}

// Explain returns the model's explanation of papers as an answer to
// question.
func (e *Explainer) Explain(ctx context.Context, question string, papers []types.ArticleDetail) (string, error) {
	if len(papers) == 0 {
		return NoPapersMessage, nil
	}

	prompt, err := RenderPrompt(question, papers)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	e.log.Debug("requesting explanation", "papers", len(papers))
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: e.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// RenderPrompt fills the explanation prompt for question and papers.
func RenderPrompt(question string, papers []types.ArticleDetail) (string, error) {
	var buf bytes.Buffer
	err := explainPromptTmpl.Execute(&buf, struct {
		Question string
		Papers   []types.ArticleDetail
	}{question, papers})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// preview returns the first abstractPreview runes of s.
func preview(s string) string {
	if utf8.RuneCountInString(s) <= abstractPreview {
		return s
	}
	return string([]rune(s)[:abstractPreview])
}
