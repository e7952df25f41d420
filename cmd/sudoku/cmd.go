package sudoku

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewSudokuCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sudoku",
		Short: "Returns a solved sudoku board",
		RunE: func(cmd *cobra.Command, args []string) error {
			return solve()
		},
	}
}

func solve() error {
	board, err := Solve()
	if err != nil {
		fmt.Println("no solution found")
		return nil
	}

	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			fmt.Printf("%d", board[row][col])
			if col != size-1 {
				fmt.Printf(" ")
			}
		}
		fmt.Printf("\n")
	}

	return nil
}
