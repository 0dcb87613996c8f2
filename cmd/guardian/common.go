package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"aiteddy-hq/guardian/pkg/cli"
	"aiteddy-hq/guardian/pkg/config"
	"aiteddy-hq/guardian/pkg/guardian"
	"aiteddy-hq/guardian/pkg/safety/model"
	"aiteddy-hq/guardian/pkg/telemetry/logging"
)

// loadConfig reads --config (or the defaults) with environment overrides.
// Each call reloads, so repeated command runs in one process see edits.
func loadConfig() (*config.Config, error) {
	if err := config.ReloadConfig(cfgFile); err != nil {
		return nil, cli.NewConfigError(cfgFile, err.Error())
	}
	cfg := *config.GetConfig()
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	return &cfg, nil
}

// openService builds the engine. One-shot commands pass quiet so that
// startup logs do not bury the result; --verbose still shows everything.
func openService(cmd *cobra.Command, cfg *config.Config, quiet bool) (*guardian.Service, error) {
	level := cfg.Telemetry.Logging.Level
	if quiet && !verbose {
		level = "warn"
	}
	logger, err := logging.New(logging.Config{
		Level:     level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		RedactPII: cfg.Telemetry.Logging.RedactPII,
		Writer:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err.Error())
	}
	svc, err := guardian.New(cmd.Context(), cfg, guardian.Options{Logger: logger})
	if err != nil {
		return nil, cli.NewCommandError(cmd.Name(), err)
	}
	return svc, nil
}

// conversationFlags describe the child and the conversation so far.
type conversationFlags struct {
	age          int
	gender       string
	name         string
	culture      string
	session      string
	history      []string
	previous     []string
	topics       []string
	interactions int
}

func (f *conversationFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.age, "age", 7, "child age in years (1-18)")
	fs.StringVar(&f.gender, "gender", "", "child gender")
	fs.StringVar(&f.name, "name", "", "child name (used for context only; redacted in logs)")
	fs.StringVar(&f.culture, "culture", "", "cultural background")
	fs.StringVar(&f.session, "session", "", "session ID for the audit trail")
	fs.StringArrayVar(&f.history, "history", nil, "earlier child message (repeatable)")
	fs.StringArrayVar(&f.previous, "previous", nil, "earlier AI reply (repeatable)")
	fs.StringSliceVar(&f.topics, "topics", nil, "topics discussed so far")
	fs.IntVar(&f.interactions, "interactions", 0, "interactions in this session")
}

func (f *conversationFlags) context() model.ConversationContext {
	return model.ConversationContext{
		ChildAge:            f.age,
		ChildGender:         f.gender,
		ChildName:           f.name,
		CulturalBackground:  f.culture,
		SessionID:           f.session,
		ConversationHistory: f.history,
		PreviousAIResponses: f.previous,
		TopicsDiscussed:     f.topics,
		InteractionCount:    f.interactions,
	}
}

// readText joins the positional arguments, or reads stdin for "-" or no
// arguments at all.
func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.New("no text to analyze: pass it as an argument or on stdin")
	}
	return text, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
