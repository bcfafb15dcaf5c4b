package main

import (
	"errors"

	"jobtrack/internal/logging"
	"jobtrack/internal/worker"

	"github.com/spf13/cobra"
)

func workerCmd() *cobra.Command {
	var (
		workflows   []string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Consume and settle jobs of the given workflows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(workflows) == 0 {
				return errors.New("at least one --workflow is required")
			}
			ctx := cmd.Context()
			a, log, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("concurrency") {
				concurrency = a.Config.Worker.Concurrency
			}

			logger := logging.Component(log, "worker")
			registry := worker.NewRegistry()
			for _, id := range workflows {
				registry.Register(id, worker.LogHandler(logger))
			}

			w := worker.NewWorker(a.Jobs, registry,
				worker.WithLease(a.Config.Jobs.Lease),
				worker.WithPollInterval(a.Config.Worker.PollInterval),
				worker.WithLogger(logger),
			)
			w.StartPool(ctx, concurrency)
			<-ctx.Done()
			w.Wait()
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&workflows, "workflow", "w", nil, "workflow id to consume (repeatable)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "number of concurrent worker loops")
	return cmd
}
