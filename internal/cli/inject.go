package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snipsco/snips-nlu-go/pkg/injection"
)

type injectFlags struct {
	modelDir    string
	entity      string
	values      []string
	fromVanilla bool
}

func newInjectCmd(root *rootFlags) *cobra.Command {
	var flags injectFlags

	cmd := &cobra.Command{
		Use:   "inject",
		Short: "Add values to a custom entity's gazetteer in place, without retraining",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInject(cmd, root, &flags)
		},
	}

	cmd.Flags().StringVar(&flags.modelDir, "model", "", "Path to a trained model directory")
	cmd.Flags().StringVar(&flags.entity, "entity", "", "Custom entity to inject values into")
	cmd.Flags().StringSliceVar(&flags.values, "value", nil, "Value to inject (repeatable)")
	cmd.Flags().BoolVar(&flags.fromVanilla, "from-vanilla", false, "Also index each value's literal surface form")

	return cmd
}

func runInject(cmd *cobra.Command, root *rootFlags, flags *injectFlags) error {
	modelDir := resolveModelDir(cmd.Flags(), flags.modelDir, root.fileCfg.ModelDir)
	if modelDir == "" {
		return fmt.Errorf("no model directory given (use --model or set model_dir in %s)", root.configPath)
	}
	if flags.entity == "" {
		return fmt.Errorf("--entity is required")
	}
	if len(flags.values) == 0 {
		return fmt.Errorf("at least one --value is required")
	}

	inj := injection.New(modelDir).FromVanilla(flags.fromVanilla)
	for _, v := range flags.values {
		inj.AddValue(flags.entity, v)
	}

	if err := inj.Inject(); err != nil {
		return fmt.Errorf("injecting: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "injected %d value(s) into %q\n", len(flags.values), flags.entity)
	return nil
}
