package cmd

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/jsh/core/syntax"
	"github.com/spf13/cobra"
)

var printTokens bool

var parseCmd = &cobra.Command{
	Use:   "parse LINE...",
	Short: "Show the syntax tree of a command line.",
	Long: `Parses the arguments joined by spaces as one command line and prints
its syntax tree followed by the canonical form of the line.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		line := strings.Join(args, " ")
		out := cmd.OutOrStdout()

		if printTokens {
			tokens, err := syntax.Tokenize(line)
			if err != nil {
				return err
			}
			for _, tok := range tokens {
				fmt.Fprintln(out, tok)
			}
			return nil
		}

		node, err := syntax.Parse(line)
		if err != nil {
			return err
		}

		syntax.Dump(out, node)
		fmt.Fprintln(out, syntax.Print(node))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&printTokens, "tokens", false, "print the tokens instead of the tree")
}
