package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/l3aro/autofree/pkg/points"
)

// injectCmd represents the inject command
var injectCmd = &cobra.Command{
	Use:   "inject <file.c> <points>",
	Short: "Insert release calls from an interchange file",
	Long: `Reads deallocation points from an interchange file and writes a copy of the
C file with a release call inserted after each recorded line.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		s := openSession(cmd.Context())
		defer s.close(context.WithoutCancel(cmd.Context()))

		set, err := points.Load(cmd.Context(), s.store, args[1])
		if err != nil {
			return err
		}

		inserted, err := s.injector.InjectFile(cmd.Context(), s.store, args[0], output, set)
		if err != nil {
			return err
		}
		if inserted < set.Len() {
			logger.Warn("some points did not resolve to a function line",
				"points", set.Len(),
				"inserted", inserted,
			)
		}
		logger.Info("release calls inserted", "path", output, "inserted", inserted)
		return nil
	},
}

func init() {
	injectCmd.Flags().StringP("output", "o", "", "Instrumented file to write")
	_ = injectCmd.MarkFlagRequired("output")
}
