package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/autofree/pkg/points"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.c>",
	Short: "Compute deallocation points",
	Long: `Parses a C file, finds the last use of every local pointer that receives a
heap allocation and writes the resulting deallocation points to the
interchange file. The file extension selects the encoding (.json, .yaml,
.msgpack). Nothing is written when no point is found.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		if output == "" {
			output = cfg.PointsFile
		}

		s := openSession(cmd.Context())
		defer s.close(context.WithoutCancel(cmd.Context()))

		result, err := s.analyzer.AnalyzeFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			data, err := points.Encode(points.FormatJSON, result.Points)
			if err != nil {
				return err
			}
			fmt.Println(string(data))
		}

		if result.Points.Empty() {
			logger.Info("No deallocations found.")
			return nil
		}

		if err := points.Save(cmd.Context(), s.store, output, result.Points); err != nil {
			return err
		}
		logger.Info("deallocation points written",
			"path", output,
			"points", result.Points.Len(),
			"cached", result.Cached,
		)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringP("output", "o", "", "Interchange file to write (default from config: points_file)")
	analyzeCmd.Flags().BoolP("json", "j", false, "Also print the points as JSON")
}
