// Package presolve wires the cobra CLI surface onto pkg/presolve, the
// concrete exerciser SPEC_FULL.md's §6 supplement names for the whole
// core: a small JSON-encoded model in, the compacted model plus
// (optionally) rule statistics out. Protobuf I/O is explicitly out of
// scope per spec.md §1/§6, so JSON is the only wire format here.
package presolve

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cp-hybrid/presolve/pkg/model"
	corepresolve "github.com/cp-hybrid/presolve/pkg/presolve"
)

func NewPresolveCommand() *cobra.Command {
	var logInfo bool
	var enumerateAll bool
	var probingLevel int

	cmd := &cobra.Command{
		Use:   "presolve <path>",
		Short: "Runs the presolve core over a JSON-encoded model",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("file (%s) not found", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], corepresolve.Options{
				EnumerateAllSolutions: enumerateAll,
				CPModelProbingLevel:  probingLevel,
				LogInfo:              logInfo,
			})
		},
	}

	cmd.Flags().BoolVar(&logInfo, "log-info", false, "print per-rule hit counts after presolve")
	cmd.Flags().BoolVar(&enumerateAll, "enumerate-all-solutions", false, "disable solution-discarding rewrites")
	cmd.Flags().IntVar(&probingLevel, "cp-model-probing-level", 0, "probing effort level")

	return cmd
}

func run(path string, opts corepresolve.Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading model file (%s): %w", path, err)
	}

	m, err := model.UnmarshalJSON(data)
	if err != nil {
		return fmt.Errorf("error parsing model file (%s): %w", path, err)
	}

	result, err := corepresolve.Run(opts, m)
	if err != nil {
		return err
	}

	if result.Unsat {
		fmt.Println("model is infeasible")
		return nil
	}

	out, err := model.MarshalJSON(result.WorkingModel)
	if err != nil {
		return fmt.Errorf("error encoding compacted model: %w", err)
	}
	fmt.Println(string(out))

	if opts.LogInfo {
		stats, err := json.MarshalIndent(result.Stats, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding stats: %w", err)
		}
		fmt.Fprintln(os.Stderr, string(stats))
	}

	return nil
}
