package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/lectern/internal/fetch"
	"github.com/csheth/lectern/internal/llm"
	"github.com/csheth/lectern/internal/profile"
	"github.com/csheth/lectern/internal/tui"
)

func main() {
	sessionPath := flag.String("session", "", "path to the session JSON file (default: <document>.lectern.json)")
	profilePath := flag.String("profile", filepath.Join(".", "profile.yaml"), "path to the learner profile YAML")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	llmModel := flag.String("llm-model", "", "override the default Ollama model (ministral-3:latest)")
	llmEndpoint := flag.String("llm-endpoint", "", "custom LLM host (eg. http://localhost:11434)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Println("usage: lectern [flags] <document.pdf | https://…/document.pdf>")
		os.Exit(2)
	}

	docPath := flag.Arg(0)
	var err error
	if fetch.IsRemote(docPath) {
		cache, cacheErr := fetch.NewCache(nil)
		if cacheErr != nil {
			fmt.Println("failed to open document cache:", cacheErr)
			os.Exit(1)
		}
		fmt.Println("Fetching", docPath, "…")
		docPath, err = cache.Fetch(context.Background(), docPath)
		if err != nil {
			fmt.Println("failed to download document:", err)
			os.Exit(1)
		}
	}
	docPath, err = filepath.Abs(docPath)
	if err != nil {
		fmt.Println("failed to resolve document path:", err)
		os.Exit(1)
	}

	session := *sessionPath
	if session == "" {
		session = strings.TrimSuffix(docPath, filepath.Ext(docPath)) + ".lectern.json"
	}
	session, err = filepath.Abs(session)
	if err != nil {
		fmt.Println("failed to resolve session path:", err)
		os.Exit(1)
	}

	prof, err := profile.Load(*profilePath)
	if err != nil {
		fmt.Println("failed to load profile:", err)
		os.Exit(1)
	}

	var llmClient llm.Client
	llmClient, err = llm.NewFromEnv(llm.Config{
		Model:    *llmModel,
		Endpoint: *llmEndpoint,
	})
	if err != nil {
		fmt.Println("LLM disabled:", err)
	}

	opts := []tea.ProgramOption{}
	if !*noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			DocumentPath: docPath,
			SessionPath:  session,
			Profile:      prof,
			LLM:          llmClient,
		}),
		opts...,
	)

	if _, err := program.Run(); err != nil {
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}
