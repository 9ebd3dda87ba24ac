package cmd

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"text/tabwriter"

	"github.com/sarchlab/keithnet/genome"
	"github.com/sarchlab/keithnet/nn"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var genomeCmd = &cobra.Command{
	Use:   "genome",
	Short: "Create and inspect genome files.",
	Long: `A genome file is a header-less sequence of little-endian float64 ` +
		`values. For every non-input layer and every node it holds the ` +
		`incoming weights, then the bias, then the hormone modulator.`,
}

var genomeSizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Print the number of parameters of a topology.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		topology, err := topologyFlag(cmd)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), nn.GenomeSize(topology))

		return nil
	},
}

var genomeZeroCmd = &cobra.Command{
	Use:   "zero <file>",
	Short: "Write a genome whose parameters are all zero.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topology, err := topologyFlag(cmd)
		if err != nil {
			return err
		}

		force, _ := cmd.Flags().GetBool("force")

		params := make([]float64, nn.GenomeSize(topology))

		return writeGenome(cmd.OutOrStdout(), fileSystem, args[0], params, force)
	},
}

var genomeRandomCmd = &cobra.Command{
	Use:   "random <file>",
	Short: "Write a genome of uniformly distributed parameters.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topology, err := topologyFlag(cmd)
		if err != nil {
			return err
		}

		force, _ := cmd.Flags().GetBool("force")
		seed, _ := cmd.Flags().GetInt64("seed")
		scale, _ := cmd.Flags().GetFloat64("scale")

		params := randomGenome(nn.GenomeSize(topology), seed, scale)

		return writeGenome(cmd.OutOrStdout(), fileSystem, args[0], params, force)
	},
}

var genomeInspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print the content of a genome file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topology, err := topologyFlag(cmd)
		if err != nil {
			return err
		}

		return inspectGenome(cmd.OutOrStdout(), fileSystem, args[0], topology)
	},
}

func init() {
	deployment := []int(nn.DeploymentTopology())

	for _, c := range []*cobra.Command{
		genomeSizeCmd, genomeZeroCmd, genomeRandomCmd, genomeInspectCmd,
	} {
		c.Flags().IntSlice("topology", deployment, "layer widths, inputs first")
		genomeCmd.AddCommand(c)
	}

	for _, c := range []*cobra.Command{genomeZeroCmd, genomeRandomCmd} {
		c.Flags().Bool("force", false, "overwrite an existing file")
	}

	genomeRandomCmd.Flags().Int64("seed", 1, "seed of the random generator")
	genomeRandomCmd.Flags().Float64("scale", 1,
		"parameters are drawn from [-scale, scale)")

	rootCmd.AddCommand(genomeCmd)
}

func topologyFlag(cmd *cobra.Command) (nn.Topology, error) {
	widths, err := cmd.Flags().GetIntSlice("topology")
	if err != nil {
		return nil, err
	}

	topology := nn.Topology(widths)
	if err := topology.Validate(); err != nil {
		return nil, err
	}

	return topology, nil
}

func randomGenome(n int, seed int64, scale float64) []float64 {
	rng := rand.New(rand.NewSource(seed))

	params := make([]float64, n)
	for i := range params {
		params[i] = (rng.Float64()*2 - 1) * scale
	}

	return params
}

func writeGenome(
	out io.Writer,
	fs afero.Fs,
	path string,
	params []float64,
	force bool,
) error {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return err
	}

	if exists && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	if err := genome.Save(fs, path, params); err != nil {
		return err
	}

	fmt.Fprintf(out, "wrote %d parameters to %s\n", len(params), path)

	return nil
}

func inspectGenome(out io.Writer, fs afero.Fs, path string, topology nn.Topology) error {
	count, err := genome.Count(fs, path)
	if err != nil {
		return err
	}

	expected := nn.GenomeSize(topology)

	fmt.Fprintf(out, "file:     %s\n", path)
	fmt.Fprintf(out, "values:   %d\n", count)
	fmt.Fprintf(out, "topology: %s (%d parameters)\n", topology, expected)

	if count < expected {
		fmt.Fprintf(out, "the file is too short for the topology\n")
		return nil
	}

	if count > expected {
		fmt.Fprintf(out, "the last %d values are ignored\n", count-expected)
	}

	params, err := genome.Load(fs, path, expected)
	if err != nil {
		return err
	}

	return printLayers(out, topology, params)
}

func printLayers(out io.Writer, topology nn.Topology, params []float64) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "layer\tnode\t|w| max\tbias\tmodulator\t")

	i := 0
	for l := 1; l < len(topology); l++ {
		for node := 0; node < topology[l]; node++ {
			maxAbs := 0.0
			for k := 0; k < topology[l-1]; k++ {
				maxAbs = math.Max(maxAbs, math.Abs(params[i]))
				i++
			}

			bias, modulator := params[i], params[i+1]
			i += 2

			fmt.Fprintf(w, "%d\t%d\t%.4f\t%.4f\t%.4f\t\n",
				l, node, maxAbs, bias, modulator)
		}
	}

	if i != len(params) {
		return errors.New("parameter layout does not match the topology")
	}

	return w.Flush()
}
