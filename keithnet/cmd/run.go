package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sarchlab/keithnet/comm"
	"github.com/sarchlab/keithnet/config"
	"github.com/sarchlab/keithnet/control"
	"github.com/sarchlab/keithnet/datarecording"
	"github.com/sarchlab/keithnet/genome"
	"github.com/sarchlab/keithnet/logging"
	"github.com/sarchlab/keithnet/monitoring"
	"github.com/sarchlab/keithnet/nn"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tebeka/atexit"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the controller until interrupted.",
	Long: `Run loads the genome given by --netfile and ticks the controller ` +
		`at --rate Hz until SIGINT or SIGTERM. Every setting can also be ` +
		`given as a KEITHNET_* environment variable, for example ` +
		`KEITHNET_QUEUE_SIZE for --queue-size.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		envFile, _ := cmd.Flags().GetString("env-file")

		ctx, stop := signal.NotifyContext(context.Background(),
			os.Interrupt, syscall.SIGTERM)
		defer stop()

		code := runController(ctx, cmd.Flags(), envFile)

		stop()
		atexit.Exit(code)
	},
}

func init() {
	config.RegisterFlags(runCmd.Flags())
	rootCmd.AddCommand(runCmd)
}

// runController runs the loop until ctx is done and returns the exit code.
func runController(ctx context.Context, flags *pflag.FlagSet, envFile string) int {
	c, err := config.Load(flags, envFile)
	if err != nil {
		logging.Errorf("%v", err)
		return 1
	}

	if err := logging.SetLevel(logging.ParseLevel(c.LogLevel)); err != nil {
		logging.Errorf("%v", err)
		return 1
	}

	net, err := nn.NewHormoneNet(c.Activation)
	if err != nil {
		logging.Errorf("%v", err)
		return 1
	}

	bus := comm.MakeBuilder().Build("Bus")
	loop := control.MakeBuilder().
		WithBus(bus).
		WithNetwork(net).
		WithFreq(c.Freq()).
		WithHormone(c.Hormone).
		WithTopics(c.Topics()).
		WithQueueSize(c.QueueSize).
		Build("KeithNet")

	if logging.Level() == logging.LDEBUG {
		msgLogger := comm.NewPortMsgLogger()
		loop.SonarPort().AcceptHook(msgLogger)
		loop.MotorPort().AcceptHook(msgLogger)
	}

	timing := control.NewWorkTimeTracer(c.Freq())
	loop.AcceptHook(timing)

	err = loop.Init(func(n int) ([]float64, error) {
		return genome.Load(fileSystem, c.NetFile, n)
	})
	if err != nil {
		reportInitError(c.NetFile, err)
		return 1
	}

	if c.Record != "" {
		recorder, err := startRecording(c.Record, loop)
		if err != nil {
			logging.Errorf("%v", err)
			return 1
		}

		defer closeAndLog("recording "+c.Record, recorder)
	}

	if c.MonitorPort > 0 {
		m := monitoring.MakeBuilder().
			WithLoop(loop).
			WithBus(bus).
			WithPortNumber(c.MonitorPort).
			WithOpenBrowser(c.OpenBrowser).
			WithWorkTimeTracer(timing).
			Build("Monitor")

		if _, err := m.StartServer(); err != nil {
			logging.Errorf("cannot start monitor on port %d: %v",
				c.MonitorPort, err)
			return 1
		}

		defer closeAndLog("monitor", m)
	}

	if err := loop.Run(ctx); err != nil {
		logging.Errorf("%v", err)
		return 1
	}

	stats := timing.Stats()
	logging.Infof("%d ticks, work average %s, max %s, %d overruns",
		stats.Ticks, stats.Average, stats.Max, stats.Overruns)

	return 0
}

func reportInitError(path string, err error) {
	var truncated *genome.TruncatedFileError

	switch {
	case errors.As(err, &truncated):
		logging.Errorf("parameter file %s is too short: expected %d parameters, read %d",
			truncated.Path, truncated.Expected, truncated.Actual)
	case errors.Is(err, genome.ErrFileUnreadable):
		logging.Errorf("cannot read parameter file %s: %v", path, err)
	default:
		logging.Errorf("cannot load parameter file %s: %v", path, err)
	}
}

type recording struct {
	recorder datarecording.DataRecorder
	exec     *datarecording.ExecRecorder
}

func (r *recording) Close() error {
	r.exec.End()
	return r.recorder.Close()
}

func startRecording(path string, loop *control.Loop) (*recording, error) {
	recorder, err := datarecording.New(path)
	if err != nil {
		return nil, err
	}

	r := &recording{
		recorder: recorder,
		exec:     datarecording.RecordExecution(recorder),
	}

	loop.AcceptHook(datarecording.NewTickTracer(recorder))

	return r, nil
}

func closeAndLog(what string, c io.Closer) {
	if err := c.Close(); err != nil {
		logging.Errorf("cannot close %s: %v", what, err)
	}
}
