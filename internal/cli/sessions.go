package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/harun/pagina/pkg/paginator/sqlitestore"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect stored paginator sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored paginator sessions",
	RunE:  runSessionsList,
}

var sessionsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired paginator sessions",
	Long: `Delete expired paginator sessions directly from the database.
Message controls are left in place; use this when the daemon is not running.`,
	RunE: runSessionsPurge,
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsPurgeCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func openStore() (*sqlitestore.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := sqlitestore.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	return store, nil
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No stored sessions")
		return nil
	}

	now := time.Now()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MESSAGE\tOWNER\tPAGE\tEXPIRES")
	for _, s := range sessions {
		expires := humanize.RelTime(s.ExpireAt, now, "ago", "from now")
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\n", s.Ref.MessageID, s.OwnerID, s.CurrentIndex+1, len(s.Pages), expires)
	}
	return w.Flush()
}

func runSessionsPurge(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	deleted, err := store.DeleteExpired(cmd.Context(), time.Now())
	if err != nil {
		return fmt.Errorf("failed to purge sessions: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired session(s)\n", deleted)
	return nil
}
