package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/AltairaLabs/interviewkit/pkg/config"
	"github.com/AltairaLabs/interviewkit/runtime/devices"
	"github.com/AltairaLabs/interviewkit/runtime/events"
	"github.com/AltairaLabs/interviewkit/runtime/logger"
	metrics "github.com/AltairaLabs/interviewkit/runtime/metrics/prometheus"
	"github.com/AltairaLabs/interviewkit/runtime/prompt"
	"github.com/AltairaLabs/interviewkit/runtime/telemetry"
	"github.com/AltairaLabs/interviewkit/runtime/turn"
	"github.com/AltairaLabs/interviewkit/runtime/version"
	"github.com/AltairaLabs/interviewkit/server/live"
)

const telemetryShutdownTimeout = 5 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interview",
	Long: `Run a spoken interview. Speak after the greeting; a pause of the configured
silence timeout ends your answer. Press Enter or Ctrl+C to finish. Usage is
recorded and, when enabled, feedback is requested at the end.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runInterview(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("endpoint", "", "Conversation endpoint URL")
	runCmd.Flags().Duration("silence-timeout", 0, "Silence that ends an answer (e.g. 1500ms)")
	runCmd.Flags().Float64("threshold", 0, "Speech level threshold between 0 and 1")
	runCmd.Flags().Bool("tts", false, "Synthesize replies that arrive without audio")
	runCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address")
	runCmd.Flags().String("live-addr", "", "Serve live state and events on this address")

	_ = overrides.BindPFlag(config.KeyEndpointURL, runCmd.Flags().Lookup("endpoint"))
	_ = overrides.BindPFlag(config.KeySilenceTimeout, runCmd.Flags().Lookup("silence-timeout"))
	_ = overrides.BindPFlag(config.KeySpeechThreshold, runCmd.Flags().Lookup("threshold"))
	_ = overrides.BindPFlag(config.KeyTTSEnabled, runCmd.Flags().Lookup("tts"))
	_ = overrides.BindPFlag(config.KeyMetricsAddr, runCmd.Flags().Lookup("metrics-addr"))
	_ = overrides.BindPFlag(config.KeyLiveAddr, runCmd.Flags().Lookup("live-addr"))
}

func runInterview(parent context.Context, cfg *config.InterviewConfig, in io.Reader, out io.Writer) error {
	spec := &cfg.Spec
	logger.Info("Starting interviewer", version.GetBuildInfo()...)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client, err := endpointClient(spec.Endpoint)
	if err != nil {
		return err
	}
	synth, err := synthesizer(spec.TTS)
	if err != nil {
		return err
	}
	composer, err := prompt.NewComposer(spec.PromptConfig())
	if err != nil {
		return err
	}

	var be backends
	defer func() { _ = be.Close() }()
	store, err := be.store(spec.Storage)
	if err != nil {
		return err
	}
	meter, err := be.meter(spec.Usage)
	if err != nil {
		return err
	}

	bus := events.NewEventBus()
	defer bus.Close()
	bus.SubscribeAll(metrics.NewMetricsListener().Listener())
	shutdownTracing, err := setupTracing(ctx, spec.Telemetry, bus)
	if err != nil {
		return err
	}
	defer shutdownTracing()

	mic, err := devices.NewMicrophone(spec.AudioFormat())
	if err != nil {
		return err
	}
	defer func() { _ = mic.Close() }()
	spk, err := devices.NewSpeaker(spec.Audio.OutputSampleRate)
	if err != nil {
		return err
	}

	deps := turn.Dependencies{
		Microphone:  mic,
		Speaker:     spk,
		Conversant:  client,
		Synthesizer: synth,
		Store:       store,
		Meter:       meter,
		Bus:         bus,
		Composer:    composer,
	}
	if spec.Endpoint.Feedback {
		deps.Reviewer = client
	}
	orch, err := turn.New(deps, spec.TurnConfig())
	if err != nil {
		return err
	}

	// The process ends with the interview, whether stopped by the user or by a fatal error.
	bus.Subscribe(events.EventSessionStopped, func(e *events.Event) {
		fmt.Fprintf(out, "Interview finished. Session reference: %s\n", e.SessionRef)
		cancel()
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return orch.Run(gctx) })
	if spec.Metrics.Addr != "" {
		exporter := metrics.NewExporter(spec.Metrics.Addr,
			metrics.WithHealthCheck(func() error { return be.Ping(context.Background()) }))
		g.Go(func() error { return exporter.Run(gctx) })
	}
	if spec.Live.Addr != "" {
		server := live.NewServer(spec.Live.Addr, orch, bus)
		g.Go(func() error { return server.Run(gctx) })
	}
	g.Go(func() error {
		if err := orch.Start(gctx); err != nil {
			cancel()
			return err
		}
		fmt.Fprintln(out, "Interview started. Answer after each question; press Enter to finish.")
		if waitForEnter(gctx, in) {
			if err := orch.Stop(gctx); err != nil && !errors.Is(err, turn.ErrNotRunning) {
				logger.Warn("Failed to stop interview", "error", err)
			}
		}
		cancel()
		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// setupTracing installs the OTLP tracer provider and span listener when a
// telemetry endpoint is configured. The returned func flushes pending spans.
func setupTracing(ctx context.Context, spec config.TelemetrySpec, bus *events.EventBus) (func(), error) {
	if spec.Endpoint == "" {
		return func() {}, nil
	}
	tp, err := telemetry.NewTracerProvider(ctx, spec.Endpoint, spec.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer provider: %w", err)
	}
	otel.SetTracerProvider(tp)
	telemetry.SetupPropagation()
	bus.SubscribeAll(telemetry.NewOTelEventListener(telemetry.Tracer(tp)).OnEvent)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Tracer provider shutdown failed", "error", err)
		}
	}, nil
}

// waitForEnter reports whether a line was read before ctx ended.
func waitForEnter(ctx context.Context, in io.Reader) bool {
	line := make(chan struct{})
	go func() {
		if _, err := bufio.NewReader(in).ReadString('\n'); err == nil {
			close(line)
		}
	}()
	select {
	case <-line:
		return true
	case <-ctx.Done():
		return false
	}
}
