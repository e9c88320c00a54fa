package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/csheth/lectern/internal/profile"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

func clipText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// notesPrompt validates, digests, and clips a notes request, shared by every
// backend.
func notesPrompt(req NotesRequest) (string, error) {
	pageText := clipText(digestPageText(req.PageText), maxNotesChars)
	if pageText == "" {
		return "", fmt.Errorf("page text empty; cannot generate notes")
	}
	req.PageText = pageText
	req.PreviousText = clipText(digestPageText(req.PreviousText), maxNotesChars/4)
	req.PreviousNotes = clipText(req.PreviousNotes, maxNotesChars/4)
	return buildNotesPrompt(req), nil
}

func buildNotesPrompt(req NotesRequest) string {
	name := req.DocumentName
	if name == "" {
		name = "the document"
	}
	var b strings.Builder
	b.WriteString("You are a patient tutor writing study notes for one page of a document.\n")
	b.WriteString("Write clear markdown notes tailored to the reader's profile: cover the page's key ideas, define new terms, and connect them to the previous page where it helps.\n")
	b.WriteString("Also produce 1-3 short topic labels for the page and the page numbers (this one plus any earlier pages the notes lean on).\n")
	b.WriteString("Return ONLY JSON matching: {\"markdown\":\"\",\"topic_labels\":[\"\"],\"page_references\":[1]}.\n\n")
	b.WriteString("Reader profile:\n")
	b.WriteString(req.Profile.Describe())
	b.WriteString("\nDocument: " + name + "\n")
	fmt.Fprintf(&b, "Page number: %d\n\n", req.Page)
	b.WriteString("Reader's mastery of topics covered so far:\n")
	b.WriteString(masteryLines(req.TopicMastery))
	b.WriteString("\n")
	if req.PreviousText != "" {
		b.WriteString("Previous page text:\n" + req.PreviousText + "\n\n")
	}
	if req.PreviousNotes != "" {
		b.WriteString("Notes already written for the previous page:\n" + req.PreviousNotes + "\n\n")
	}
	b.WriteString("Page text:\n" + req.PageText)
	return b.String()
}

// masteryLines renders the per-topic mastery block in a stable order so the
// same session state always yields the same prompt.
func masteryLines(mastery map[string]TopicMastery) string {
	if len(mastery) == 0 {
		return "(No prior mastery data)\n"
	}
	topics := make([]string, 0, len(mastery))
	for topic := range mastery {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	var b strings.Builder
	for _, topic := range topics {
		m := mastery[topic]
		fmt.Fprintf(&b, "- %s: Score %.2f (Attempts: %d)\n", topic, m.Score, m.Attempts)
	}
	return b.String()
}

func parseNotesResult(raw string) (NotesResult, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NotesResult{}, fmt.Errorf("empty notes response")
	}
	candidates := []string{raw}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			candidates = append(candidates, raw[start:end+1])
		}
	}
	for _, candidate := range candidates {
		var res NotesResult
		if err := json.Unmarshal([]byte(candidate), &res); err == nil {
			res.Markdown = strings.TrimSpace(res.Markdown)
			res.TopicLabels = sanitizeLabels(res.TopicLabels)
			res.PageReferences = sanitizePages(res.PageReferences)
			if res.Markdown != "" {
				return res, nil
			}
		}
	}
	// Some models answer in plain markdown despite the JSON instruction; keep
	// the notes and drop the metadata rather than failing the page.
	if !strings.HasPrefix(raw, "{") {
		return NotesResult{Markdown: raw}, nil
	}
	return NotesResult{}, fmt.Errorf("unable to parse notes payload")
}

func sanitizeLabels(labels []string) []string {
	var cleaned []string
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		label = whitespaceRe.ReplaceAllString(label, " ")
		cleaned = append(cleaned, label)
	}
	return cleaned
}

func sanitizePages(pages []int) []int {
	var cleaned []int
	for _, p := range pages {
		if p < 1 {
			continue
		}
		cleaned = append(cleaned, p)
	}
	return cleaned
}

// overviewPrompt digests every page into one "--- Page N ---" block and
// builds the document-overview request, shared by every backend.
func overviewPrompt(req OverviewRequest) (string, error) {
	var pages []string
	for i, text := range req.PageTexts {
		text = strings.TrimSpace(digestPageText(text))
		if text == "" {
			continue
		}
		pages = append(pages, fmt.Sprintf("--- Page %d ---\n%s", i+1, text))
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("document text empty; cannot build an overview")
	}
	document := clipText(strings.Join(pages, "\n\n"), maxOverviewChars)
	return buildOverviewPrompt(req, document), nil
}

func buildOverviewPrompt(req OverviewRequest, document string) string {
	name := req.DocumentName
	if name == "" {
		name = "the document"
	}
	var b strings.Builder
	b.WriteString("You are a patient tutor orienting a reader before they study a document.\n")
	b.WriteString("Classify the document and write a short overview in the shape that fits it best.\n")
	b.WriteString("Pick document_type from: academic_paper, presentation, textbook, manual, report, other.\n")
	b.WriteString("Pick visualization_type from: executive_summary, table, concept_map, outline, timeline.\n")
	b.WriteString("Write the overview itself as markdown in content, tailored to the reader's profile.\n")
	b.WriteString("Return ONLY JSON matching: {\"content\":\"\",\"visualization_type\":\"\",\"document_type\":\"\"}.\n\n")
	b.WriteString("Reader profile:\n")
	b.WriteString(req.Profile.Describe())
	b.WriteString("\nDocument: " + name + "\n\n")
	b.WriteString("Document text:\n" + document)
	return b.String()
}

func parseOverviewResult(raw string) (OverviewResult, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return OverviewResult{}, fmt.Errorf("empty overview response")
	}
	candidates := []string{raw}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			candidates = append(candidates, raw[start:end+1])
		}
	}
	for _, candidate := range candidates {
		var res OverviewResult
		if err := json.Unmarshal([]byte(candidate), &res); err == nil {
			res.Content = strings.TrimSpace(res.Content)
			res.VisualizationType = strings.TrimSpace(res.VisualizationType)
			res.DocumentType = strings.TrimSpace(res.DocumentType)
			if res.Content != "" {
				return res, nil
			}
		}
	}
	// Same lenience as notes: plain markdown keeps the content and drops the
	// classification.
	if !strings.HasPrefix(raw, "{") {
		return OverviewResult{Content: raw}, nil
	}
	return OverviewResult{}, fmt.Errorf("unable to parse overview payload")
}

// commandPrompt validates an inline command against a selection.
func commandPrompt(kind CommandKind, selected, pageText string, prof profile.Profile) (string, error) {
	if strings.TrimSpace(selected) == "" {
		return "", fmt.Errorf("selection empty; nothing to %s", kind)
	}
	var directive string
	switch kind {
	case CommandElaborate:
		directive = "Expand on the selected passage: unpack what it means, why it holds, and what it implies. 2-4 short paragraphs."
	case CommandSimplify:
		directive = "Restate the selected passage in plainer language for this reader. Keep it faithful; one short paragraph."
	case CommandAnalogy:
		directive = "Explain the selected passage through a concrete analogy the reader would recognize. One analogy, one paragraph."
	default:
		return "", fmt.Errorf("unknown inline command %q", kind)
	}
	var b strings.Builder
	b.WriteString("You are a patient tutor helping a reader with a passage they selected.\n")
	b.WriteString(directive)
	b.WriteString("\nAnswer in markdown. Do not repeat the passage verbatim.\n\n")
	b.WriteString("Reader profile:\n")
	b.WriteString(prof.Describe())
	b.WriteString("\nSelected passage:\n" + strings.TrimSpace(selected) + "\n")
	if page := clipText(pageText, maxCommandChars); page != "" {
		b.WriteString("\nSurrounding page text:\n" + page)
	}
	return b.String(), nil
}

// emphasisPrompt builds the integration prompt. When there are no notes yet
// it returns a standalone callout instead of a prompt.
func emphasisPrompt(req EmphasisRequest) (prompt, standalone string, err error) {
	selected := strings.TrimSpace(req.Selected)
	if selected == "" {
		return "", "", fmt.Errorf("selection empty; cannot emphasize")
	}
	if strings.TrimSpace(req.NotesMarkdown) == "" {
		return "", fmt.Sprintf("> [!emphasis]\n> %s\n", selected), nil
	}
	var b strings.Builder
	b.WriteString("You are maintaining a reader's study notes. They emphasized a passage on the page; weave it into the notes.\n")
	b.WriteString("Insert a markdown callout of the form:\n> [!emphasis]\n> <the passage>\n")
	b.WriteString("at the most relevant point, adjusting nearby prose minimally so it reads naturally.\n")
	b.WriteString("Return the FULL revised notes markdown, nothing else.\n\n")
	fmt.Fprintf(&b, "Page number: %d\n\n", req.Page)
	b.WriteString("Emphasized passage:\n" + selected + "\n\n")
	b.WriteString("Current notes:\n" + clipText(req.NotesMarkdown, maxEmphasisChars))
	return b.String(), "", nil
}

func checkEmphasisResponse(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "[!emphasis]") {
		return "", fmt.Errorf("model response lost the emphasis callout")
	}
	return raw, nil
}
