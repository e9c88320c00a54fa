package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/lectern/internal/llm"
	"github.com/csheth/lectern/internal/pdfdoc"
	"github.com/csheth/lectern/internal/profile"
	"github.com/csheth/lectern/internal/study"
)

func loadDocumentJob(path, sessionPath string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		document, err := pdfdoc.Load(path)
		if err != nil {
			return loadResultMsg{err: err}, err
		}
		notes, err := study.LoadPageNotes(sessionPath)
		if err != nil {
			return loadResultMsg{err: err}, err
		}
		annotations, err := study.LoadAnnotations(sessionPath)
		if err != nil {
			return loadResultMsg{err: err}, err
		}
		overview, hasOverview, err := study.LoadOverview(sessionPath)
		if err != nil {
			return loadResultMsg{err: err}, err
		}
		return loadResultMsg{
			document:    document,
			notes:       notes,
			annotations: annotations,
			overview:    overview,
			hasOverview: hasOverview,
		}, nil
	}
}

func generateNotesJob(client llm.Client, sessionPath string, req llm.NotesRequest) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
		defer cancel()
		result, err := client.GenerateNotes(ctx, req)
		if err != nil {
			return notesResultMsg{page: req.Page, err: err}, err
		}
		entry := study.PageNotes{
			Page:           req.Page,
			Markdown:       result.Markdown,
			TopicLabels:    result.TopicLabels,
			PageReferences: result.PageReferences,
			GeneratedAt:    time.Now(),
		}
		if err := study.SavePageNotes(sessionPath, entry); err != nil {
			return notesResultMsg{page: req.Page, err: err}, err
		}
		return notesResultMsg{page: req.Page, notes: entry}, nil
	}
}

// generateOverviewJob classifies the whole document once and persists the
// result, so later sessions reuse it instead of paying for a second pass.
func generateOverviewJob(client llm.Client, sessionPath string, req llm.OverviewRequest) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 3*time.Minute)
		defer cancel()
		result, err := client.GenerateOverview(ctx, req)
		if err != nil {
			return overviewResultMsg{err: err}, err
		}
		entry := study.Overview{
			Content:           result.Content,
			VisualizationType: result.VisualizationType,
			DocumentType:      result.DocumentType,
			GeneratedAt:       time.Now(),
		}
		if err := study.SaveOverview(sessionPath, entry); err != nil {
			return overviewResultMsg{err: err}, err
		}
		return overviewResultMsg{overview: entry}, nil
	}
}

func inlineCommandJob(client llm.Client, kind llm.CommandKind, selected, pageText string, prof profile.Profile) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
		defer cancel()
		answer, err := client.InlineCommand(ctx, kind, selected, pageText, prof)
		return commandResultMsg{kind: kind, selected: selected, answer: answer, err: err}, err
	}
}

// integrateEmphasisJob revises the page's notes markdown in place; the entry's
// labels and references carry over untouched.
func integrateEmphasisJob(client llm.Client, sessionPath string, base study.PageNotes, req llm.EmphasisRequest) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
		defer cancel()
		revised, err := client.IntegrateEmphasis(ctx, req)
		if err != nil {
			return emphasisResultMsg{page: req.Page, err: err}, err
		}
		entry := base
		entry.Page = req.Page
		entry.Markdown = revised
		entry.GeneratedAt = time.Now()
		if err := study.SavePageNotes(sessionPath, entry); err != nil {
			return emphasisResultMsg{page: req.Page, err: err}, err
		}
		return emphasisResultMsg{page: req.Page, markdown: revised}, nil
	}
}

func saveAnnotationJob(sessionPath string, ann study.Annotation) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		if err := study.SaveAnnotation(sessionPath, ann); err != nil {
			return annotationSavedMsg{err: err}, err
		}
		return annotationSavedMsg{annotation: ann}, nil
	}
}
