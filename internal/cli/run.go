package cli

import (
	"github.com/spf13/cobra"

	"github.com/chazu/kerf/pkg/pipeline"
)

var runJSON bool

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Run the full pipeline on each model",
	Long: `Builds the bounding volume tree, the partition index and the
decomposition of every model the script declares, then prints a summary.
Use "-" to read the script from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	src, err := readScript(cmd, args[0])
	if err != nil {
		return err
	}
	r, err := newRunner()
	if err != nil {
		return err
	}
	results, err := r.RunSource(commandContext(cmd), src)
	if err != nil {
		return err
	}
	if runJSON {
		return pipeline.WriteJSON(cmd.OutOrStdout(), results)
	}
	return pipeline.WriteText(cmd.OutOrStdout(), results)
}
