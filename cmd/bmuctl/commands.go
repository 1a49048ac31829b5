package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/bmu-faultfinder/internal/catalog"
	"github.com/yungbote/bmu-faultfinder/internal/clients/redis"
	types "github.com/yungbote/bmu-faultfinder/internal/domain/catalog"
	"github.com/yungbote/bmu-faultfinder/internal/faultflow"
	"github.com/yungbote/bmu-faultfinder/internal/platform/logger"
	"github.com/yungbote/bmu-faultfinder/internal/services"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bmuctl",
		Short:         "Offline tooling for the BMU fault finder catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newExportCmd(),
		newValidateCmd(),
		newResolveCmd(),
		newWalkCmd(),
		newTailCmd(),
	)
	return root
}

// export writes the embedded dataset for disconnected clients.
func newExportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the reference dataset to stdout",
		Long: `Writes the full reference dataset in the same shape the
/api/offline-data endpoint serves. --format yaml emits the embedded
document byte for byte.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := catalog.Default()
			if err != nil {
				return err
			}
			switch strings.ToLower(format) {
			case "yaml", "yml":
				return writeYAML(cmd.OutOrStdout(), store)
			case "json":
				return writeJSON(cmd.OutOrStdout(), store.Dataset())
			}
			return fmt.Errorf("unknown format %q (want json or yaml)", format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the embedded dataset for broken references and cycles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := catalog.Default()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := store.Validate(); err != nil {
				var verr *catalog.ValidationError
				if errors.As(err, &verr) {
					for _, p := range verr.Problems {
						fmt.Fprintf(out, "FAIL %s\n", p.String())
					}
				}
				return fmt.Errorf("catalog invalid")
			}
			fmt.Fprintf(out, "ok: %d models, %d subsystems, %d symptoms, %d components, %d fault flows\n",
				len(store.Models()), len(store.Subsystems()), len(store.Symptoms()),
				len(store.Components()), len(store.FaultFlows()))
			return nil
		},
	}
}

func newResolveCmd() *cobra.Command {
	var q faultflow.Query
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "List the fault flows for a model, subsystem and symptom",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := catalog.Default()
			if err != nil {
				return err
			}
			svc := services.NewCatalogService(store, logger.Nop(), nil)
			flows, err := svc.ResolveFlows(cmd.Context(), q)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"flows": flows})
		},
	}
	cmd.Flags().StringVar(&q.ModelID, "model", "", "model id (optional)")
	cmd.Flags().StringVar(&q.SubsystemID, "subsystem", "", "subsystem id")
	cmd.Flags().StringVar(&q.SymptomID, "symptom", "", "symptom id")
	_ = cmd.MarkFlagRequired("subsystem")
	_ = cmd.MarkFlagRequired("symptom")
	return cmd
}

func newWalkCmd() *cobra.Command {
	var (
		flowID   string
		outcomes []string
	)
	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Step through a fault flow with a list of pass/fail outcomes",
		Long: `Starts at the first step of --flow and applies --outcomes in order.
Missing outcomes default to pass.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := catalog.Default()
			if err != nil {
				return err
			}
			flow, ok := store.FaultFlow(flowID)
			if !ok {
				return fmt.Errorf("unknown fault flow %q", flowID)
			}
			parsed := make([]faultflow.Outcome, 0, len(outcomes))
			for _, raw := range outcomes {
				o, err := faultflow.ParseOutcome(raw)
				if err != nil {
					return err
				}
				parsed = append(parsed, o)
			}
			trail, err := faultflow.Walk(flow, parsed)
			if err != nil {
				return err
			}
			printTrail(cmd.OutOrStdout(), flow, trail)
			return nil
		},
	}
	cmd.Flags().StringVar(&flowID, "flow", "", "fault flow id")
	cmd.Flags().StringSliceVar(&outcomes, "outcomes", nil, "comma separated pass/fail outcomes")
	_ = cmd.MarkFlagRequired("flow")
	return cmd
}

// tail prints job.saved events from the redis channel until interrupted.
func newTailCmd() *cobra.Command {
	var opts redis.Options
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow saved jobs published on redis",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Addr == "" {
				opts.Addr = os.Getenv("REDIS_ADDR")
			}
			log, err := logger.New("development")
			if err != nil {
				return err
			}
			defer log.Sync()
			bus, err := redis.NewJobBus(log, opts)
			if err != nil {
				return err
			}
			defer bus.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			out := cmd.OutOrStdout()
			return bus.Subscribe(ctx, func(ev redis.JobEvent) {
				if ev.Job == nil {
					return
				}
				fmt.Fprintf(out, "--- %s %s\n%s\n", ev.Type, ev.Job.ID, services.FormatSummary(ev.Job))
			})
		},
	}
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "redis address (defaults to REDIS_ADDR)")
	cmd.Flags().StringVar(&opts.Channel, "channel", redis.DefaultJobChannel, "redis channel")
	return cmd
}

func printTrail(w io.Writer, flow types.FaultFlow, trail faultflow.Trail) {
	for _, tr := range trail.Transitions {
		title := tr.From
		if st, ok := flow.Step(tr.From); ok {
			title = st.Title
		}
		fmt.Fprintf(w, "%-8s %-5s %s\n", tr.From, tr.Outcome, title)
	}
	final := trail.Final
	switch final.Kind {
	case faultflow.KindResolved:
		fmt.Fprintf(w, "resolved (%s): %s\n", final.ResolutionKey, final.Resolution)
	case faultflow.KindEscalate:
		fmt.Fprintln(w, "escalate: no resolution recorded for this failure")
	default:
		fmt.Fprintln(w, "terminal: all checks passed")
	}
}

// writeYAML prefers the bytes the store was loaded from so comments and
// ordering survive; a store without them is re-encoded.
func writeYAML(w io.Writer, store *catalog.Store) error {
	if raw := store.Raw(); raw != nil {
		_, err := w.Write(raw)
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(store.Dataset()); err != nil {
		return err
	}
	return enc.Close()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
