package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/laitheanh1062006/simple-schedule-organizer/internal/config"
	"github.com/laitheanh1062006/simple-schedule-organizer/internal/model"
	"github.com/laitheanh1062006/simple-schedule-organizer/internal/ops"
	"github.com/laitheanh1062006/simple-schedule-organizer/internal/serverapp"
	"github.com/laitheanh1062006/simple-schedule-organizer/internal/storage"
	"github.com/laitheanh1062006/simple-schedule-organizer/internal/store"
	"github.com/laitheanh1062006/simple-schedule-organizer/internal/view"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "todesk-ops",
	Short:         "Maintenance commands for the schedule organizer's data",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		logger, err = config.NewLogger(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write the three collections to a tar.gz snapshot",
	RunE:  runBackup,
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Load a snapshot into the configured storage backend",
	Long: `Validates every collection in the archive, then overwrites the matching
keys in the configured backend. A running server picks the data up after
POST /api/reload or a restart.`,
	RunE: runRestore,
}

var drillCmd = &cobra.Command{
	Use:   "drill",
	Short: "Back up, restore into memory and compare byte for byte",
	RunE:  runDrill,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print deadline completion statistics",
	RunE:  runStats,
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Print tasks grouped by day for a week or month",
	RunE:  runCalendar,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "todesk_config.yml", "path to YAML config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	backupCmd.Flags().String("out", "", "output archive path (.tar.gz)")
	restoreCmd.Flags().String("archive", "", "input snapshot archive (.tar.gz)")
	_ = restoreCmd.MarkFlagRequired("archive")
	drillCmd.Flags().String("work-dir", os.TempDir(), "temporary workspace for drill artifacts")
	calendarCmd.Flags().String("week", "", "any date in the week to show (default today)")
	calendarCmd.Flags().String("month", "", "any date in the month to show")

	rootCmd.AddCommand(backupCmd, restoreCmd, drillCmd, statsCmd, calendarCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func openKV(ctx context.Context) (storage.KV, error) {
	kv, err := storage.Open(ctx, serverapp.StorageOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}
	return kv, nil
}

func openStore(ctx context.Context) (*store.Store, func(), error) {
	kv, err := openKV(ctx)
	if err != nil {
		return nil, nil, err
	}
	st := store.New(ctx, kv,
		store.WithLogger(logger),
		store.WithKeyPrefix(cfg.Storage.KeyPrefix),
		store.WithWriteTimeout(cfg.Storage.WriteTimeout),
	)
	return st, func() { _ = kv.Close() }, nil
}

func snapshotName(dir string) string {
	ts := time.Now().UTC().Format("20060102T150405Z")
	return filepath.Join(dir, "todesk-"+ts+".tar.gz")
}

func runBackup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = snapshotName("backups")
	}

	kv, err := openKV(ctx)
	if err != nil {
		return err
	}
	defer kv.Close()

	sum, err := ops.Backup(ctx, kv, cfg.Storage.KeyPrefix, out)
	if err != nil {
		return err
	}
	logger.Info("backup written",
		zap.String("archive", out),
		zap.Int("tasks", sum.Tasks),
		zap.Int("documents", sum.Documents),
		zap.Int("folders", sum.Folders))
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	archive, _ := cmd.Flags().GetString("archive")

	kv, err := openKV(ctx)
	if err != nil {
		return err
	}
	defer kv.Close()

	sum, err := ops.Restore(ctx, archive, kv, cfg.Storage.KeyPrefix)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "restored %d tasks, %d documents, %d folders\n", sum.Tasks, sum.Documents, sum.Folders)
	return nil
}

func runDrill(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	workDir, _ := cmd.Flags().GetString("work-dir")

	src, err := openKV(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	res, err := ops.Drill(ctx, src, cfg.Storage.KeyPrefix, workDir)
	if err != nil {
		return err
	}
	if res.Empty {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing stored yet, drill ok")
		return nil
	}
	logger.Info("drill passed",
		zap.String("archive", res.Archive),
		zap.Int("tasks", res.Summary.Tasks),
		zap.Int("documents", res.Summary.Documents),
		zap.Int("folders", res.Summary.Folders))
	fmt.Fprintln(cmd.OutOrStdout(), "backup:", res.Archive)
	fmt.Fprintln(cmd.OutOrStdout(), "drill ok")
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	st, done, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer done()

	s := view.Completion(st.Tasks())
	fmt.Fprintf(cmd.OutOrStdout(), "tasks: %d\ndocuments: %d\nfolders: %d\n",
		len(st.Tasks()), len(st.Documents()), len(st.Folders()))
	fmt.Fprintf(cmd.OutOrStdout(), "with deadline: %d, completed: %d (%s%%)\n", s.Total, s.Completed, s.Rate)
	return nil
}

func runCalendar(cmd *cobra.Command, args []string) error {
	week, _ := cmd.Flags().GetString("week")
	month, _ := cmd.Flags().GetString("month")

	rng := view.WeekOf(model.Today(time.Now()))
	switch {
	case month != "":
		d, err := model.ParseDate(month)
		if err != nil {
			return err
		}
		rng = view.MonthOf(d)
	case week != "":
		d, err := model.ParseDate(week)
		if err != nil {
			return err
		}
		rng = view.WeekOf(d)
	}

	st, done, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer done()

	w := cmd.OutOrStdout()
	for _, day := range view.Calendar(st.Tasks(), rng) {
		fmt.Fprintf(w, "%s %s\n", day.Date, day.Date.Weekday().String()[:3])
		for _, t := range day.Tasks {
			mark := " "
			if t.Completed {
				mark = "x"
			}
			fmt.Fprintf(w, "  [%s] %s\n", mark, t.Title)
		}
	}
	return nil
}
