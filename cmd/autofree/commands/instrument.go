package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/l3aro/autofree/pkg/points"
)

// instrumentCmd represents the instrument command
var instrumentCmd = &cobra.Command{
	Use:   "instrument <in.c> <out.c> <points>",
	Short: "Analyze and inject in one step",
	Long: `Analyzes in.c, writes the deallocation points to the interchange file, then
reads them back and writes the instrumented source to out.c. When no point
is found, out.c is an unchanged copy of in.c and no interchange file is
written.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := openSession(cmd.Context())
		defer s.close(context.WithoutCancel(cmd.Context()))

		inserted, err := s.instrument(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return err
		}
		logger.Info("instrumented", "input", args[0], "output", args[1], "inserted", inserted)
		return nil
	},
}

// instrument runs analysis and injection for one file. The injection pass
// consumes the written interchange file, not the in-memory result.
func (s *session) instrument(ctx context.Context, input, output, pointsPath string) (int, error) {
	result, err := s.analyzer.AnalyzeFile(ctx, input)
	if err != nil {
		return 0, err
	}

	if result.Points.Empty() {
		logger.Info("No deallocations found.", "input", input)
		content, err := s.store.Read(ctx, input)
		if err != nil {
			return 0, err
		}
		return 0, s.store.Write(ctx, output, content)
	}

	if err := points.Save(ctx, s.store, pointsPath, result.Points); err != nil {
		return 0, err
	}
	set, err := points.Load(ctx, s.store, pointsPath)
	if err != nil {
		return 0, err
	}
	return s.injector.InjectFile(ctx, s.store, input, output, set)
}
