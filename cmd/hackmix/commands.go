package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kalambet/hackmix/internal/config"
	"github.com/kalambet/hackmix/internal/participant"
	"github.com/kalambet/hackmix/internal/pipeline"
	"github.com/kalambet/hackmix/internal/roster"
)

// stdout is where command results go; tests swap it.
var stdout io.Writer = os.Stdout

// --- analyze ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze <roster>",
	Short: "Analyze a participant roster",
	Long: `Analyze a participant roster and print the results as JSON.

The roster may be plain text ("Name | linkedin-url" per line), CSV, JSON,
YAML or PDF, chosen by file extension. Use "-" to read text from stdin.

Examples:
  hackmix analyze attendees.csv > results.json
  hackmix analyze attendees.yaml --profile me.json --output results.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profilePath, _ := cmd.Flags().GetString("profile")
		output, _ := cmd.Flags().GetString("output")

		inputs, err := roster.Load(args[0])
		if err != nil {
			return err
		}
		if bad := roster.Invalid(inputs); len(bad) > 0 {
			printWarning("skipping %d entries without a last name: %s", len(bad), strings.Join(bad, ", "))
		}
		if err := pipeline.Validate(inputs); err != nil {
			return err
		}

		var reference *participant.Input
		if profilePath != "" {
			if reference, err = readReference(profilePath); err != nil {
				return err
			}
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		printStep("Analyzing %d participants", len(inputs))
		res, err := consume(a.orchestrator.Stream(ctx, inputs, reference))
		if err != nil {
			return err
		}
		printSuccess("Found %d people to meet", len(res.HeavyHitters))

		return writeJSON(output, res)
	},
}

func init() {
	analyzeCmd.Flags().String("profile", "", "JSON file describing you, for background matching")
	analyzeCmd.Flags().StringP("output", "o", "", "output file path (default: stdout)")
}

// consume prints progress events and returns the terminal result.
func consume(events <-chan pipeline.Event) (*participant.Result, error) {
	var res *participant.Result
	for ev := range events {
		switch {
		case ev.Progress != nil:
			printProgress(ev.Progress.Stage, ev.Progress.Progress, ev.Progress.Message)
		case ev.Error != "":
			return nil, fmt.Errorf("analysis failed: %s", ev.Error)
		case ev.Result != nil:
			res = ev.Result
		}
	}
	if res == nil {
		return nil, fmt.Errorf("analysis interrupted")
	}
	return res, nil
}

func readReference(path string) (*participant.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	var in participant.Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return &in, nil
}

func writeJSON(path string, v any) error {
	w := stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	if path != "" {
		printSuccess("Results written to %s", path)
	}
	return nil
}

// --- post ---

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Draft a post about the event",
	Long: `Draft a post-event social post mentioning the top people from an
analyze run.

Examples:
  hackmix post --event "HackMIT 2026" --results results.json
  hackmix post --event "HackMIT 2026" --results results.json --experience "We won best hack"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		event, _ := cmd.Flags().GetString("event")
		resultsPath, _ := cmd.Flags().GetString("results")
		experience, _ := cmd.Flags().GetString("experience")

		if strings.TrimSpace(event) == "" {
			return fmt.Errorf("--event is required")
		}

		var top []participant.Participant
		if resultsPath != "" {
			var err error
			if top, err = readHeavyHitters(resultsPath); err != nil {
				return err
			}
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Fprintln(stdout, a.writer.Post(cmd.Context(), event, top, experience))
		return nil
	},
}

func init() {
	postCmd.Flags().String("event", "", "hackathon name")
	postCmd.Flags().String("results", "", "results JSON from analyze")
	postCmd.Flags().String("experience", "", "a line about your own experience")
}

func readHeavyHitters(path string) ([]participant.Participant, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	var res participant.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parsing results %s: %w", path, err)
	}
	return res.HeavyHitters, nil
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(stdout, "  %s = %s  %s\n", bold.Sprint(k.Key), k.Value, cyan.Sprint("($"+k.EnvVar+")"))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
