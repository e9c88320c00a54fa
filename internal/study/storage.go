package study

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
)

const (
	entryTypePageNotes  = "pageNotes"
	entryTypeAnnotation = "annotation"
	entryTypeOverview   = "overview"
)

type entryHeader struct {
	EntryType string `json:"entryType"`
}

// SavePageNotes upserts the notes entry for its page in the session file,
// creating the file if necessary.
func SavePageNotes(path string, notes PageNotes) error {
	notes.EntryType = entryTypePageNotes
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	entries, err := loadEntries(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		entries = nil
	}
	raw, err := json.Marshal(notes)
	if err != nil {
		return err
	}
	replaced := false
	for i, entry := range entries {
		entryType, err := detectEntryType(entry)
		if err != nil {
			return err
		}
		if entryType != entryTypePageNotes {
			continue
		}
		var existing PageNotes
		if err := json.Unmarshal(entry, &existing); err != nil {
			return err
		}
		if existing.Page != notes.Page {
			continue
		}
		entries[i] = raw
		replaced = true
		break
	}
	if !replaced {
		entries = append(entries, raw)
	}
	return writeEntries(path, entries)
}

// SaveAnnotation appends an annotation to the session file.
func SaveAnnotation(path string, ann Annotation) error {
	ann.EntryType = entryTypeAnnotation
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	entries, err := loadEntries(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		entries = nil
	}
	raw, err := json.Marshal(ann)
	if err != nil {
		return err
	}
	entries = append(entries, raw)
	return writeEntries(path, entries)
}

// SaveOverview upserts the session's single overview entry, creating the
// file if necessary.
func SaveOverview(path string, overview Overview) error {
	overview.EntryType = entryTypeOverview
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	entries, err := loadEntries(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		entries = nil
	}
	raw, err := json.Marshal(overview)
	if err != nil {
		return err
	}
	replaced := false
	for i, entry := range entries {
		entryType, err := detectEntryType(entry)
		if err != nil {
			return err
		}
		if entryType != entryTypeOverview {
			continue
		}
		entries[i] = raw
		replaced = true
		break
	}
	if !replaced {
		entries = append(entries, raw)
	}
	return writeEntries(path, entries)
}

// LoadOverview returns the stored overview entry, if the session has one.
func LoadOverview(path string) (Overview, bool, error) {
	entries, err := loadEntries(path)
	if errors.Is(err, os.ErrNotExist) {
		return Overview{}, false, nil
	}
	if err != nil {
		return Overview{}, false, err
	}
	for _, raw := range entries {
		entryType, err := detectEntryType(raw)
		if err != nil {
			return Overview{}, false, err
		}
		if entryType != entryTypeOverview {
			continue
		}
		var o Overview
		if err := json.Unmarshal(raw, &o); err != nil {
			return Overview{}, false, err
		}
		return o, true, nil
	}
	return Overview{}, false, nil
}

// LoadPageNotes returns all stored notes entries, sorted by page. A missing
// file yields an empty session.
func LoadPageNotes(path string) ([]PageNotes, error) {
	entries, err := loadEntries(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	notes := make([]PageNotes, 0, len(entries))
	for _, raw := range entries {
		entryType, err := detectEntryType(raw)
		if err != nil {
			return nil, err
		}
		if entryType != entryTypePageNotes {
			continue
		}
		var n PageNotes
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].Page < notes[j].Page })
	return notes, nil
}

// LoadAnnotations returns all stored annotations in creation order.
func LoadAnnotations(path string) ([]Annotation, error) {
	entries, err := loadEntries(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	annotations := make([]Annotation, 0)
	for _, raw := range entries {
		entryType, err := detectEntryType(raw)
		if err != nil {
			return nil, err
		}
		if entryType != entryTypeAnnotation {
			continue
		}
		var a Annotation
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, err
		}
		annotations = append(annotations, a)
	}
	return annotations, nil
}

func writeEntries(path string, entries []json.RawMessage) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func loadEntries(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func detectEntryType(raw json.RawMessage) (string, error) {
	var header entryHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return "", err
	}
	return header.EntryType, nil
}
