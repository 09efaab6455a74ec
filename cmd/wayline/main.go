package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mwestre/wayline/pkg/config"
	"github.com/mwestre/wayline/pkg/extract"
	"github.com/mwestre/wayline/pkg/graph"
	gsync "github.com/mwestre/wayline/pkg/sync"
	"github.com/mwestre/wayline/pkg/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	setupLogging()

	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return err
	}

	g, err := graph.Load(cfg.StorePath)
	if err != nil {
		return err
	}

	args := os.Args[1:]
	jsonOutput := hasFlag(args, "--json")
	args = removeFlag(args, "--json")

	if len(args) == 0 {
		return runTUI(g, cfg)
	}

	switch args[0] {
	case "list":
		return cmdList(g, jsonOutput)
	case "order":
		return cmdOrder(g, jsonOutput)
	case "summary":
		return cmdSummary(g, jsonOutput)
	case "export":
		return cmdExport(g)
	case "add":
		if len(args) < 2 {
			return fmt.Errorf("usage: wayline add <name> [--desc text] [--priority High|Medium|Low] [dep ...]")
		}
		return cmdAdd(g, cfg.StorePath, args[1:], jsonOutput)
	case "done", "undone":
		if len(args) < 2 {
			return fmt.Errorf("usage: wayline %s <name>", args[0])
		}
		return cmdSetCompleted(g, cfg.StorePath, args[1], args[0] == "done", jsonOutput)
	case "remove":
		if len(args) < 2 {
			return fmt.Errorf("usage: wayline remove <name>")
		}
		return cmdRemove(g, cfg.StorePath, args[1], jsonOutput)
	case "clear":
		if !hasFlag(args, "--force") {
			return fmt.Errorf("wayline clear deletes every goal; pass --force to confirm")
		}
		return cmdClear(g, cfg.StorePath)
	case "merge":
		if len(args) < 2 {
			return fmt.Errorf("usage: wayline merge [--context file] <text>")
		}
		return cmdMerge(g, cfg, args[1:], jsonOutput)
	case "chat":
		if len(args) < 2 {
			return fmt.Errorf("usage: wayline chat <message>")
		}
		return cmdChat(cfg, strings.Join(args[1:], " "))
	case "models":
		return cmdModels(cfg)
	case "init":
		remote := ""
		for i, a := range args {
			if a == "--remote" && i+1 < len(args) {
				remote = args[i+1]
			}
		}
		return gsync.InitRepo(config.DefaultDataDir(), remote)
	case "sync":
		return gsync.SyncRepo(config.DefaultDataDir())
	default:
		return fmt.Errorf("unknown command: %s\nUsage: wayline [list|order|summary|export|add|done|undone|remove|clear|merge|chat|models|init|sync]", args[0])
	}
}

func setupLogging() {
	level := slog.LevelWarn
	if os.Getenv("WAYLINE_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func newClient(cfg config.Config) *extract.OpenAIClient {
	return extract.NewOpenAIClient(cfg.BaseURL, cfg.APIKey, cfg.Model)
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func removeFlag(args []string, flag string) []string {
	var result []string
	for _, a := range args {
		if a != flag {
			result = append(result, a)
		}
	}
	return result
}

func runTUI(g *graph.Graph, cfg config.Config) error {
	m := tui.NewModel(g, newClient(cfg), cfg.StorePath, cfg.Timeout())
	p := tea.NewProgram(m, tea.WithAltScreen())

	cleanup, err := tui.StartWatcher(cfg.StorePath, p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file watcher failed: %v\n", err)
	} else {
		defer cleanup()
	}

	_, err = p.Run()
	return err
}

// CLI Commands

func cmdList(g *graph.Graph, jsonOut bool) error {
	goals := g.Goals()

	if jsonOut {
		return outputJSON(goalsToMap(goals))
	}

	if len(goals) == 0 {
		fmt.Println("No goals yet. Try: wayline merge \"I want to ...\"")
		return nil
	}
	for _, goal := range goals {
		printGoal(goal)
	}
	return nil
}

func cmdOrder(g *graph.Graph, jsonOut bool) error {
	order, err := g.TopologicalOrder()
	if err != nil {
		return err
	}

	if jsonOut {
		return outputJSON(order)
	}

	for i, name := range order {
		goal, err := g.Get(name)
		if err != nil {
			return err
		}
		status := "○"
		if goal.Completed {
			status = "✓"
		}
		fmt.Printf("%d. %s %s\n", i+1, status, name)
	}
	return nil
}

func cmdSummary(g *graph.Graph, jsonOut bool) error {
	s := g.Summary()

	if jsonOut {
		return outputJSON(map[string]interface{}{
			"total":     s.Total,
			"completed": s.Completed,
			"by_priority": map[string]int{
				"High":   s.ByPriority[graph.PriorityHigh],
				"Medium": s.ByPriority[graph.PriorityMedium],
				"Low":    s.ByPriority[graph.PriorityLow],
			},
			"roots":  s.Roots,
			"leaves": s.Leaves,
		})
	}

	fmt.Printf("Goals: %d (%d done, %.0f%%)\n", s.Total, s.Completed, s.CompletionRatio()*100)
	fmt.Printf("Priority: %d high, %d medium, %d low\n",
		s.ByPriority[graph.PriorityHigh], s.ByPriority[graph.PriorityMedium], s.ByPriority[graph.PriorityLow])
	if len(s.Leaves) > 0 {
		fmt.Printf("Ready to start: %s\n", strings.Join(s.Leaves, ", "))
	}
	if len(s.Roots) > 0 {
		fmt.Printf("End goals: %s\n", strings.Join(s.Roots, ", "))
	}
	return nil
}

func cmdExport(g *graph.Graph) error {
	return outputJSON(g.ExportDescription())
}

func cmdAdd(g *graph.Graph, storePath string, args []string, jsonOut bool) error {
	goal := graph.Goal{Name: args[0]}
	rest := args[1:]

	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "--desc":
			if i+1 >= len(rest) {
				return fmt.Errorf("--desc requires a value")
			}
			goal.Description = rest[i+1]
			i++
		case "--priority":
			if i+1 >= len(rest) {
				return fmt.Errorf("--priority requires a value")
			}
			p, err := graph.ParsePriority(rest[i+1])
			if err != nil {
				return err
			}
			goal.Priority = p
			i++
		default:
			goal.Dependencies = append(goal.Dependencies, rest[i])
		}
	}

	stored, err := g.AddOrUpdate(goal)
	if err != nil {
		return err
	}
	if err := graph.Save(g, storePath); err != nil {
		return fmt.Errorf("changes not saved: %w", err)
	}

	if jsonOut {
		return outputJSON(goalToMap(stored))
	}
	fmt.Printf("Added: %s\n", stored.Name)
	return nil
}

func cmdSetCompleted(g *graph.Graph, storePath, name string, completed, jsonOut bool) error {
	goal, err := g.Get(name)
	if err != nil {
		return err
	}
	goal.Completed = completed
	stored, err := g.AddOrUpdate(goal)
	if err != nil {
		return err
	}
	if err := graph.Save(g, storePath); err != nil {
		return fmt.Errorf("changes not saved: %w", err)
	}

	if jsonOut {
		return outputJSON(goalToMap(stored))
	}
	status := "incomplete"
	if completed {
		status = "complete"
	}
	fmt.Printf("%s → %s\n", name, status)
	return nil
}

func cmdRemove(g *graph.Graph, storePath, name string, jsonOut bool) error {
	if err := g.Remove(name); err != nil {
		return err
	}
	if err := graph.Save(g, storePath); err != nil {
		return fmt.Errorf("changes not saved: %w", err)
	}

	if jsonOut {
		return outputJSON(map[string]string{"removed": name})
	}
	fmt.Printf("Removed: %s\n", name)
	return nil
}

func cmdClear(g *graph.Graph, storePath string) error {
	g.Clear()
	if err := graph.Save(g, storePath); err != nil {
		return fmt.Errorf("changes not saved: %w", err)
	}
	fmt.Println("All goals cleared.")
	return nil
}

func cmdMerge(g *graph.Graph, cfg config.Config, args []string, jsonOut bool) error {
	var contextFile string
	var words []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--context" {
			if i+1 >= len(args) {
				return fmt.Errorf("--context requires a file path")
			}
			contextFile = args[i+1]
			i++
			continue
		}
		words = append(words, args[i])
	}
	text := strings.Join(words, " ")
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("usage: wayline merge [--context file] <text>")
	}

	merger := &extract.Merger{
		Graph:     g,
		Client:    newClient(cfg),
		StorePath: cfg.StorePath,
	}
	if contextFile != "" {
		data, err := os.ReadFile(contextFile)
		if err != nil {
			return fmt.Errorf("reading context file: %w", err)
		}
		merger.FileContext = string(data)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()

	res, err := merger.MergeFromText(ctx, text)
	if err != nil {
		return err
	}

	if jsonOut {
		skipped := make([]map[string]string, 0, len(res.Skipped))
		for _, s := range res.Skipped {
			skipped = append(skipped, map[string]string{"name": s.Name, "reason": s.Reason})
		}
		out := map[string]interface{}{
			"applied": res.Applied,
			"skipped": skipped,
			"reply":   res.Reply,
		}
		if res.SaveErr != nil {
			out["save_error"] = res.SaveErr.Error()
		}
		return outputJSON(out)
	}

	if res.Reply != "" {
		fmt.Println(res.Reply)
		return nil
	}
	for _, name := range res.Applied {
		fmt.Printf("Applied: %s\n", name)
	}
	for _, s := range res.Skipped {
		fmt.Printf("Skipped: %s (%s)\n", s.Name, s.Reason)
	}
	if len(res.Applied) == 0 && len(res.Skipped) == 0 {
		fmt.Println("No goals found in that text.")
	}
	if res.SaveErr != nil {
		return fmt.Errorf("changes not saved: %w", res.SaveErr)
	}
	return nil
}

func cmdChat(cfg config.Config, message string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()

	reply, err := newClient(cfg).Respond(ctx, message)
	if err != nil {
		return err
	}
	fmt.Println(reply)
	return nil
}

func cmdModels(cfg config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()

	models, err := newClient(cfg).ListModels(ctx)
	if err != nil {
		return err
	}
	for _, m := range models {
		fmt.Println(m)
	}
	return nil
}

// JSON helpers

func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printGoal(goal graph.Goal) {
	status := "○"
	if goal.Completed {
		status = "✓"
	}
	fmt.Printf("%s %s [%s]", status, goal.Name, goal.Priority)
	if len(goal.Dependencies) > 0 {
		fmt.Printf(" ← %s", strings.Join(goal.Dependencies, ", "))
	}
	fmt.Println()
	if goal.Description != "" {
		fmt.Printf("    %s\n", goal.Description)
	}
}

func goalToMap(goal graph.Goal) map[string]interface{} {
	return map[string]interface{}{
		"name":         goal.Name,
		"description":  goal.Description,
		"priority":     string(goal.Priority),
		"dependencies": goal.Dependencies,
		"completed":    goal.Completed,
		"created_at":   goal.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func goalsToMap(goals []graph.Goal) []map[string]interface{} {
	var result []map[string]interface{}
	for _, goal := range goals {
		result = append(result, goalToMap(goal))
	}
	return result
}
