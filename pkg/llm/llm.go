// Package llm drives script generation and emotion markup through an
// OpenAI-compatible chat completion API.
package llm

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/kaptinlin/jsonrepair"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"github.com/lyrebird-studio/lyrebird/pkg/script"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// ErrNotConfigured means no API key was provided and LLM features are
// disabled. Callers can detect this synchronously, before submitting
// background work.
var ErrNotConfigured = errors.New("llm: not configured, set the API key")

const DefaultModel = "gpt-4-turbo"

type Config struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Writer generates and polishes dialogue scripts.
type Writer struct {
	client     openai.Client
	model      string
	configured bool

	styles  map[string]*template.Template
	emotion string
}

func New(cfg Config) (*Writer, error) {
	w := &Writer{model: cfg.Model}
	if w.model == "" {
		w.model = DefaultModel
	}

	w.styles = make(map[string]*template.Template)
	for style, file := range styleFiles {
		t, err := template.ParseFS(promptFS, "prompts/"+file)
		if err != nil {
			return nil, fmt.Errorf("llm: parse prompt %s: %w", file, err)
		}
		w.styles[style] = t
	}
	b, err := promptFS.ReadFile("prompts/emotion_optimization.tmpl")
	if err != nil {
		return nil, fmt.Errorf("llm: read emotion prompt: %w", err)
	}
	w.emotion = string(b)

	if cfg.APIKey == "" {
		slog.Warn("llm api key not set, script features disabled")
		return w, nil
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	w.client = openai.NewClient(opts...)
	w.configured = true
	slog.Info("llm writer initialized", "model", w.model, "base_url", cfg.BaseURL)
	return w, nil
}

// Configured reports whether an API key was provided.
func (w *Writer) Configured() bool { return w.configured }

const (
	StyleDeepDive = "Deep Dive"
	StyleDebate   = "Debate"
	StyleCritique = "Critique"
)

var styleFiles = map[string]string{
	StyleDeepDive: "deep_dive.tmpl",
	StyleDebate:   "debate.tmpl",
	StyleCritique: "critique.tmpl",
}

var languageNames = map[string]string{
	"Chinese":  "Simplified Chinese (简体中文)",
	"Japanese": "Japanese (日本語)",
	"English":  "English",
}

// ScriptRequest describes one script generation.
type ScriptRequest struct {
	Context   string
	HostName  string
	GuestName string
	Style     string
	Language  string
	Rounds    int
}

func (r *ScriptRequest) withDefaults() ScriptRequest {
	out := *r
	if out.HostName == "" {
		out.HostName = script.RoleHost
	}
	if out.GuestName == "" {
		out.GuestName = script.RoleGuest
	}
	if _, ok := styleFiles[out.Style]; !ok {
		out.Style = StyleDeepDive
	}
	if out.Rounds <= 0 {
		out.Rounds = 5
	}
	return out
}

// systemPrompt renders the style template and appends the language and
// round-count requirements.
func (w *Writer) systemPrompt(req ScriptRequest) (string, error) {
	var sb strings.Builder
	if err := w.styles[req.Style].Execute(&sb, req); err != nil {
		return "", fmt.Errorf("llm: render prompt: %w", err)
	}

	lang, ok := languageNames[req.Language]
	if !ok {
		lang = languageNames["English"]
	}
	fmt.Fprintf(&sb, "\n\n# Language Requirement\nCRITICAL: You MUST generate the dialogue strictly in %s. "+
		"Even if these instructions and the source text are in another language, the output dialogue MUST be in %s.\n", lang, lang)
	fmt.Fprintf(&sb, "\nIMPORTANT: Generate a dialogue with exactly %d rounds of interaction (each round is Host plus Guest).\n", req.Rounds)
	return sb.String(), nil
}

// GenerateScript produces a dialogue from source material. Lines come
// back as plain "Role: text" output and are parsed into DialogueLines.
func (w *Writer) GenerateScript(ctx context.Context, r *ScriptRequest) ([]script.DialogueLine, error) {
	if !w.configured {
		return nil, ErrNotConfigured
	}
	req := r.withDefaults()
	system, err := w.systemPrompt(req)
	if err != nil {
		return nil, err
	}

	slog.Info("generating script", "style", req.Style, "language", req.Language, "rounds", req.Rounds)
	resp, err := w.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: w.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage("Here is the source material to discuss:\n\n" + req.Context),
		},
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return nil, fmt.Errorf("llm: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("llm: no choices in response")
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return nil, errors.New("llm: empty response content")
	}

	lines := script.ParseDialogue(content, req.HostName, req.GuestName)
	slog.Info("parsed generated script", "lines", len(lines))
	return lines, nil
}

// optimizedScript is the structured-output envelope for emotion markup.
// The model fills Lines with the same ids and speakers it received.
type optimizedScript struct {
	Lines []script.DialogueLine `json:"lines"`
}

// OptimizeEmotions asks the model to weave emotion and prosody tags
// into each line. It is best effort: any failure returns the input
// unchanged so callers never lose a script to a flaky completion.
func (w *Writer) OptimizeEmotions(ctx context.Context, lines []script.DialogueLine) ([]script.DialogueLine, error) {
	if !w.configured {
		return lines, nil
	}
	out, err := w.optimize(ctx, lines)
	if err != nil {
		slog.Warn("emotion optimization failed, returning original script", "err", err)
		return lines, nil
	}
	return out, nil
}

func (w *Writer) optimize(ctx context.Context, lines []script.DialogueLine) ([]script.DialogueLine, error) {
	var sb strings.Builder
	sb.WriteString("Here is the script to optimize:\n\n")
	for i, l := range lines {
		fmt.Fprintf(&sb, "Line %d: [%s]: %s\n", i, l.Speaker, l.Text)
	}

	schema, err := jsonschema.For[optimizedScript](nil)
	if err != nil {
		return nil, fmt.Errorf("llm: build schema: %w", err)
	}
	resp, err := w.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: w.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(w.emotion),
			openai.UserMessage(sb.String()),
		},
		Temperature: openai.Float(0.7),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "optimized_script",
					Schema: schema,
					Strict: param.NewOpt(true),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("llm: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("llm: no choices in response")
	}

	var parsed optimizedScript
	if err := unmarshalJSON([]byte(stripFences(resp.Choices[0].Message.Content)), &parsed); err != nil {
		return nil, fmt.Errorf("llm: decode optimized script: %w", err)
	}
	if len(parsed.Lines) == 0 {
		return nil, errors.New("llm: optimized script is empty")
	}
	for i := range parsed.Lines {
		parsed.Lines[i].Speaker = script.NormalizeRole(parsed.Lines[i].Speaker, "", "")
	}
	return parsed.Lines, nil
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if after, ok := strings.CutPrefix(s, "```json"); ok {
		s = after
	} else if after, ok := strings.CutPrefix(s, "```"); ok {
		s = after
	} else {
		return s
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// unmarshalJSON decodes data into v, repairing malformed JSON with
// jsonrepair before a second attempt on syntax errors.
func unmarshalJSON(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	if _, ok := err.(*json.SyntaxError); ok {
		fixed, rerr := jsonrepair.JSONRepair(string(data))
		if rerr != nil {
			return rerr
		}
		return json.Unmarshal([]byte(fixed), v)
	}
	return err
}
