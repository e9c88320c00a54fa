package llm

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/csheth/lectern/internal/profile"
)

const (
	defaultOllamaModel = "ministral-3:latest"
	defaultOpenAIModel = "gpt-4o-mini"
	// Context clipping guards assume ministral-3:latest exposes a 262k-token window (~1M characters).
	// We cap prompts well below that to keep >=20% headroom (roughly 4 chars/token) and avoid OOMs.
	maxNotesChars    = 120_000
	maxCommandChars  = 60_000
	maxEmphasisChars = 80_000
	maxOverviewChars = 200_000
)

const defaultLLMHTTPTimeout = 3 * time.Minute

// Config describes how to build an LLM client.
type Config struct {
	Model      string
	Endpoint   string
	HTTPClient *http.Client
}

// Client exposes note generation and inline-command helpers.
type Client interface {
	GenerateNotes(ctx context.Context, req NotesRequest) (NotesResult, error)
	GenerateOverview(ctx context.Context, req OverviewRequest) (OverviewResult, error)
	InlineCommand(ctx context.Context, kind CommandKind, selected, pageText string, prof profile.Profile) (string, error)
	IntegrateEmphasis(ctx context.Context, req EmphasisRequest) (string, error)
	Name() string
}

// TopicMastery tells the model how familiar the reader already is with one
// topic, so the notes can skip or deepen accordingly.
type TopicMastery struct {
	Score    float64
	Attempts int
}

// NotesRequest carries everything the model needs to write notes for one page.
type NotesRequest struct {
	DocumentName  string
	Page          int
	PageText      string
	PreviousText  string
	PreviousNotes string
	TopicMastery  map[string]TopicMastery
	Profile       profile.Profile
}

// NotesResult is the structured response for a generated page of notes.
type NotesResult struct {
	Markdown       string   `json:"markdown"`
	TopicLabels    []string `json:"topic_labels"`
	PageReferences []int    `json:"page_references"`
}

// OverviewRequest asks for a document-level overview right after load.
// PageTexts is indexed by page order; page numbers are positions plus one.
type OverviewRequest struct {
	DocumentName string
	PageTexts    []string
	Profile      profile.Profile
}

// OverviewResult classifies the document and carries the overview content in
// the shape the model picked for it.
type OverviewResult struct {
	Content           string `json:"content"`
	VisualizationType string `json:"visualization_type"`
	DocumentType      string `json:"document_type"`
}

// CommandKind enumerates the inline commands available on a selection.
type CommandKind string

const (
	CommandElaborate CommandKind = "elaborate"
	CommandSimplify  CommandKind = "simplify"
	CommandAnalogy   CommandKind = "analogy"
)

// EmphasisRequest asks the model to weave an emphasized passage into existing
// notes as a callout.
type EmphasisRequest struct {
	NotesMarkdown string
	Selected      string
	Page          int
	Profile       profile.Profile
}

// NewFromEnv inspects CLI arguments & environment variables to build a
// client. An OPENAI_API_KEY selects the OpenAI-compatible backend; otherwise
// a local Ollama instance is assumed.
func NewFromEnv(cfg Config) (Client, error) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		base := cfg.Endpoint
		if base == "" {
			base = "https://api.openai.com/v1"
		}
		model := cfg.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		return &openAIClient{
			apiKey: key,
			model:  model,
			base:   strings.TrimRight(base, "/"),
			client: pickHTTPClient(cfg.HTTPClient),
		}, nil
	}

	host := cfg.Endpoint
	if host == "" {
		if env := os.Getenv("OLLAMA_HOST"); env != "" {
			host = strings.TrimRight(env, "/")
		} else {
			host = "http://localhost:11434"
		}
	}
	model := cfg.Model
	if model == "" {
		if env := os.Getenv("OLLAMA_MODEL"); env != "" {
			model = env
		} else {
			model = defaultOllamaModel
		}
	}
	return &ollamaClient{
		host:   host,
		model:  model,
		client: pickHTTPClient(cfg.HTTPClient),
	}, nil
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	// Allow longer-running generations (Ollama often needs >60s) and rely on the caller's context for cancellation.
	return &http.Client{Timeout: defaultLLMHTTPTimeout}
}
