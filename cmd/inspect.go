package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/config"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/repository"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/repository/db"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/service"

	"github.com/spf13/cobra"
)

var (
	queueCmd = &cobra.Command{
		Use:   "queue",
		Short: "Show commands waiting for delivery",
		RunE:  showQueue,
	}

	eventsCmd = &cobra.Command{
		Use:   "events",
		Short: "Show recent device events",
		RunE:  showEvents,
	}

	eventType string
	since     time.Duration
	limit     int
)

func init() {
	eventsCmd.Flags().StringVarP(&eventType, "type", "t", "", "Event type (e.g. COMMAND_DROPPED)")
	eventsCmd.Flags().DurationVarP(&since, "since", "s", 24*time.Hour, "How far back to look")
	eventsCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of events to show")
}

func openRepos() (*repository.Repository, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewRepository(sqlDB), func() { _ = sqlDB.Close() }, nil
}

func showQueue(cmd *cobra.Command, args []string) error {
	repos, closeFn, err := openRepos()
	if err != nil {
		return err
	}
	defer closeFn()

	var items []models.Command
	if _, err := repository.LoadJSON(cmd.Context(), repos.KV, repository.KeyCommandQueue, &items); err != nil {
		return err
	}
	return printQueue(cmd.OutOrStdout(), items)
}

func printQueue(out io.Writer, items []models.Command) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDEVICE\tACTION\tATTEMPTS\tQUEUED AT\tPARAMS")
	fmt.Fprintln(w, "--\t------\t------\t--------\t---------\t------")
	for _, c := range items {
		params := "-"
		if len(c.Params) > 0 {
			b, err := json.Marshal(c.Params)
			if err != nil {
				return err
			}
			params = string(b)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			shortID(c.ID), c.DeviceID, c.Action, c.Attempts, c.QueuedAt.Local().Format("2006-01-02 15:04:05"), params)
	}
	fmt.Fprintf(w, "\n%d pending\n", len(items))
	return w.Flush()
}

func showEvents(cmd *cobra.Command, args []string) error {
	repos, closeFn, err := openRepos()
	if err != nil {
		return err
	}
	defer closeFn()

	events, err := recentEvents(cmd.Context(), service.NewEventLogService(repos.EventRepo), time.Now(), since, eventType, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTYPE\tDESCRIPTION")
	fmt.Fprintln(w, "----\t----\t-----------")
	for _, ev := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ev.OccurredAt.Local().Format("2006-01-02 15:04:05"), ev.Type, ev.Description)
	}
	return w.Flush()
}

// recentEvents returns at most n events newer than now-window, newest last.
func recentEvents(ctx context.Context, log service.EventLog, now time.Time, window time.Duration, typ string, n int) ([]models.DeviceEvent, error) {
	return log.List(ctx, service.LogFilter{From: now.Add(-window), To: now, Type: typ, Limit: n})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
