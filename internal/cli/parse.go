package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/snipsco/snips-nlu-go/pkg/nlu"
)

type parseFlags struct {
	modelDir            string
	whitelist           []string
	blacklist           []string
	intentsAlternatives int
	slotsAlternatives   int
}

func newParseCmd(root *rootFlags) *cobra.Command {
	var flags parseFlags

	cmd := &cobra.Command{
		Use:   "parse [text]",
		Short: "Parse an utterance against a trained model and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, root, &flags, args[0])
		},
	}

	cmd.Flags().StringVar(&flags.modelDir, "model", "", "Path to a trained model directory or .zip archive")
	cmd.Flags().StringSliceVar(&flags.whitelist, "whitelist", nil, "Restrict matching to these intents")
	cmd.Flags().StringSliceVar(&flags.blacklist, "blacklist", nil, "Exclude these intents from matching")
	cmd.Flags().IntVar(&flags.intentsAlternatives, "intents-alternatives", 0, "Number of runner-up intents to include")
	cmd.Flags().IntVar(&flags.slotsAlternatives, "slots-alternatives", 0, "Number of alternative slot values to include per slot")

	return cmd
}

func runParse(cmd *cobra.Command, root *rootFlags, flags *parseFlags, text string) error {
	modelDir := resolveModelDir(cmd.Flags(), flags.modelDir, root.fileCfg.ModelDir)
	if modelDir == "" {
		return fmt.Errorf("no model directory given (use --model or set model_dir in %s)", root.configPath)
	}

	engine, err := nlu.FromPath(modelDir)
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}

	result, err := engine.Parse(cmd.Context(), text, flags.whitelist, flags.blacklist, flags.intentsAlternatives, flags.slotsAlternatives)
	if err != nil {
		return fmt.Errorf("parsing: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func resolveModelDir(flags *pflag.FlagSet, flagValue, configValue string) string {
	if flags.Changed("model") || flagValue != "" {
		return flagValue
	}
	return configValue
}
