package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/54b3r/edurec-go/internal/catalog"
	"github.com/54b3r/edurec-go/internal/domain"
	"github.com/54b3r/edurec-go/internal/logging"
)

// NewCatalogCmd constructs the `edurec catalog` command group.
func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect or build the content catalogue",
	}
	cmd.AddCommand(newCatalogListCmd(), newCatalogImportCmd())
	return cmd
}

// newCatalogListCmd constructs `edurec catalog list`.
func newCatalogListCmd() *cobra.Command {
	var users bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalogue content (or personas with --users)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeStore, err := openStore(logging.New())
			if err != nil {
				return fmt.Errorf("catalog list: %w", err)
			}
			defer closeStore()

			if users {
				list, err := store.ListUsers(ctx)
				if err != nil {
					return fmt.Errorf("catalog list: %w", err)
				}
				printUsers(cmd.OutOrStdout(), list)
				return nil
			}
			items, err := store.ListContent(ctx)
			if err != nil {
				return fmt.Errorf("catalog list: %w", err)
			}
			printContent(cmd.OutOrStdout(), items)
			return nil
		},
	}

	cmd.Flags().BoolVar(&users, "users", false, "List learner personas instead of content")
	return cmd
}

// newCatalogImportCmd constructs `edurec catalog import`.
func newCatalogImportCmd() *cobra.Command {
	var dbPath string
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Write a catalogue into a SQLite file",
		Long: `Write the built-in fixtures, or a YAML catalogue, into a SQLite catalogue.

Any catalogue already in the file is replaced. Point CATALOG_DB at the file
to serve it.

Examples:
  edurec catalog import --db ~/.edurec/catalog.db
  edurec catalog import --db ./catalog.db --file courses.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()

			if dbPath == "" {
				var err error
				if dbPath, err = catalog.DefaultDBPath(); err != nil {
					return fmt.Errorf("catalog import: %w", err)
				}
			}

			items, users := catalog.Content(), catalog.Users()
			if file != "" {
				f, err := catalog.LoadFile(file)
				if err != nil {
					return fmt.Errorf("catalog import: %w", err)
				}
				if len(f.Content) == 0 && len(f.Users) == 0 {
					return errors.New("catalog import: file contains no content or users")
				}
				items, users = f.Content, f.Users
			}

			db, err := catalog.OpenSQLite(dbPath)
			if err != nil {
				return fmt.Errorf("catalog import: %w", err)
			}
			defer func() { _ = db.Close() }()

			if err := db.Import(cmd.Context(), items, users); err != nil {
				return fmt.Errorf("catalog import: %w", err)
			}

			log.Info("catalog imported",
				slog.String("path", dbPath),
				slog.Int("content", len(items)),
				slog.Int("users", len(users)),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d items and %d users into %s\n", len(items), len(users), dbPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite catalogue path (default: ~/.edurec/catalog.db)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML catalogue to import instead of the built-in fixtures")
	return cmd
}

// printContent renders catalogue items as an aligned table.
func printContent(w io.Writer, items []domain.ContentItem) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tFORMAT\tDIFFICULTY\tMIN\tTAGS")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			it.ID, it.Title, it.Format, it.Difficulty, it.DurationMinutes, strings.Join(it.Tags, ","))
	}
	_ = tw.Flush()
}

// printUsers renders personas as an aligned table.
func printUsers(w io.Writer, users []domain.UserProfile) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTYLE\tDIFFICULTY\tMIN/DAY\tINTERESTS")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			u.UserID, u.Name, u.LearningStyle, u.PreferredDifficulty, u.TimePerDay, strings.Join(u.InterestTags, ","))
	}
	_ = tw.Flush()
}
