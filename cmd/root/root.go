package root

import (
	"github.com/spf13/cobra"

	"github.com/cp-hybrid/presolve/cmd/dimacs"
	"github.com/cp-hybrid/presolve/cmd/presolve"
	"github.com/cp-hybrid/presolve/cmd/sudoku"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "presolve",
		Short: "A CP-SAT-style presolve and propagation core",
		Long: `A constraint-presolve and propagation core written in Go:
domain algebra, affine-relation folding, constraint rewriters, a
fixpoint driver, and a Boolean SAT layer underneath it all.`,
	}

	rootCmd.AddCommand(presolve.NewPresolveCommand())
	rootCmd.AddCommand(dimacs.NewDimacsCommand())
	rootCmd.AddCommand(sudoku.NewSudokuCommand())

	return rootCmd
}
