package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/recaptools/recap/config"
	"github.com/recaptools/recap/errors"
	"github.com/recaptools/recap/pkg/backends"
	"github.com/recaptools/recap/pkg/models"
	"github.com/recaptools/recap/pkg/redact"
	"github.com/recaptools/recap/pkg/render"
)

type convertFlags struct {
	backend      string
	mode         string
	thoughts     bool
	verbose      bool
	redactFlag   bool
	redactStrict bool
	redactLevel  string
	head         int
	tail         int
}

// NewConvertCmd converts one session file into a Markdown transcript.
func NewConvertCmd() *cobra.Command {
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert <input-file> [output-file]",
		Short: "Convert a session file to a Markdown transcript",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := NewErrorHandler(cmd.Flags().Changed("debug"))
			if err := runConvert(cmd, args, flags); err != nil {
				return handler.Handle(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.backend, "backend", "", "Source backend (claude|codex|gemini; default: inferred from path)")
	cmd.Flags().StringVar(&flags.mode, "mode", "", "Rendering mode (chat|thoughts|verbose; default: chat)")
	cmd.Flags().BoolVar(&flags.thoughts, "thoughts", false, "Shorthand for --mode thoughts")
	cmd.Flags().BoolVar(&flags.verbose, "verbose", false, "Shorthand for --mode verbose")
	cmd.MarkFlagsMutuallyExclusive("mode", "thoughts", "verbose")

	cmd.Flags().BoolVar(&flags.redactFlag, "redact", false, "Enable pattern-based redaction (not guaranteed safe)")
	cmd.Flags().BoolVar(&flags.redactStrict, "redact-strict", false, "Enable aggressive redaction (may over-redact)")
	cmd.Flags().StringVar(&flags.redactLevel, "redact-level", "", "Redaction level (none|standard|strict)")
	cmd.MarkFlagsMutuallyExclusive("redact", "redact-strict", "redact-level")

	cmd.Flags().IntVarP(&flags.tail, "tail", "n", 0, "Show only the last N messages containing text")
	cmd.Flags().IntVar(&flags.head, "head", 0, "Show only the first N messages containing text")
	cmd.MarkFlagsMutuallyExclusive("tail", "head")

	return cmd
}

func runConvert(cmd *cobra.Command, args []string, flags *convertFlags) error {
	log := GetLogger(cmd, "convert")

	cfg, roots, err := LoadConfig(cmd)
	if err != nil {
		return err
	}

	inputPath := args[0]
	if _, err := os.Stat(inputPath); err != nil {
		return errors.UnreadableFile(inputPath, err)
	}

	parser, err := resolveParser(log, inputPath, flags.backend, roots)
	if err != nil {
		return err
	}

	mode, err := resolveMode(flags)
	if err != nil {
		return err
	}

	redactor, err := resolveRedactor(flags, cfg)
	if err != nil {
		return err
	}

	log.WithField("backend", string(parser.Backend())).
		WithField("mode", string(mode)).
		Debug("converting session")

	events, err := backends.ParseFile(parser, inputPath)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	var outFile *os.File
	if len(args) == 2 {
		outFile, err = os.Create(args[1])
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInvalidInput, "cannot create output file").
				WithDetail("path", args[1])
		}
		defer outFile.Close()
		out = outFile
	}

	opts := render.Options{Mode: mode, Head: flags.head, Tail: flags.tail}
	if redactor.Level() != string(redact.LevelNone) {
		opts.Redactor = redactor
	}
	if err := render.Render(out, inputPath, events, opts); err != nil {
		return err
	}

	if outFile != nil {
		fmt.Fprintf(os.Stderr, "Successfully converted to %s (%s mode)\n", args[1], mode)
	}
	return nil
}

// resolveParser picks the parser: an explicit backend wins, then storage
// root inference, then the Claude default for bare paths. The fallback is
// announced so a wrong guess is visible before the parse output is.
func resolveParser(log *logrus.Entry, path, backendFlag string, roots config.Roots) (backends.Parser, error) {
	if backendFlag != "" {
		backend := models.Backend(backendFlag)
		if !backend.Valid() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported backend").
				WithDetail("backend", backendFlag)
		}
		return backends.New(backend, roots)
	}
	if parser, err := backends.Infer(path, roots); err == nil {
		return parser, nil
	}
	log.WithField("path", path).WithField("backend", string(models.BackendClaude)).
		Warn("path matches no known storage root; assuming claude (pass --backend to override)")
	return backends.New(models.BackendClaude, roots)
}

func resolveMode(flags *convertFlags) (models.Mode, error) {
	switch {
	case flags.mode != "":
		mode := models.Mode(flags.mode)
		if !mode.Valid() {
			return "", errors.New(errors.ErrCodeInvalidInput, "unsupported mode").
				WithDetail("mode", flags.mode)
		}
		return mode, nil
	case flags.verbose:
		return models.ModeVerbose, nil
	case flags.thoughts:
		return models.ModeThoughts, nil
	}
	return models.ModeChat, nil
}

func resolveRedactor(flags *convertFlags, cfg *config.Config) (*redact.Redactor, error) {
	level := redact.LevelNone
	switch {
	case flags.redactLevel != "":
		level = redact.Level(flags.redactLevel)
		if !level.Valid() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported redaction level").
				WithDetail("level", flags.redactLevel)
		}
	case flags.redactStrict:
		level = redact.LevelStrict
	case flags.redactFlag:
		level = redact.LevelStandard
	}

	// The config file may replace the built-in rule tables.
	if cfg != nil && len(cfg.Redaction) > 0 {
		specs := make([]redact.RuleSpec, len(cfg.Redaction))
		for i, rule := range cfg.Redaction {
			specs[i] = redact.RuleSpec{Pattern: rule.Pattern, Replace: rule.Replace, Strict: rule.Strict}
		}
		return redact.NewFromSpecs(level, specs)
	}
	return redact.New(level), nil
}
