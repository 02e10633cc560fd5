package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stromning/scholartrend/internal/chart"
)

// newRenderCmd creates the 'render' subcommand, which redraws the chart
// from the stored dataset without touching the network.
func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Re-renders the bar chart from the stored dataset",

		RunE: runRenderCommand,
	}
	return cmd
}

func runRenderCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	cfg := appInstance.Config()
	d, err := appInstance.Store().Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	if len(d) == 0 {
		return fmt.Errorf("dataset is empty; run collect first")
	}

	renderer := chart.NewRenderer(chart.Config{
		Title:  cfg.Chart.Title,
		Footer: cfg.Chart.Footer,
		Width:  cfg.Chart.Width,
		Height: cfg.Chart.Height,
	})
	if err := renderer.RenderFile(d, appInstance.Clock().Now(), cfg.Chart.Path); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	appInstance.Logger().Info("Chart rendered",
		zap.String("path", cfg.Chart.Path),
		zap.Int("years", len(d)),
	)
	return nil
}
