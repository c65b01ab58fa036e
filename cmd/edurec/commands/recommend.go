package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/54b3r/edurec-go/internal/domain"
	"github.com/54b3r/edurec-go/internal/logging"
	"github.com/54b3r/edurec-go/internal/pipeline"
)

// NewRecommendCmd constructs the `edurec recommend` command, which runs the
// pipeline once for a stored persona or a profile file and prints the result.
func NewRecommendCmd() *cobra.Command {
	var userID string
	var profilePath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend content for one learner",
		Long: `Run the recommendation pipeline once and print the ranked list.

The learner is either a persona from the catalogue (--user) or a JSON profile
file (--profile, "-" for stdin). With --json the full response, including the
pipeline log, is printed as JSON.

Examples:
  edurec recommend --user u1
  edurec recommend --profile learner.json --json
  MODEL_PROVIDER=rules edurec recommend --user u3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (userID == "") == (profilePath == "") {
				return errors.New("recommend: exactly one of --user or --profile is required")
			}

			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)

			st, err := buildStack(ctx, nil, log)
			if err != nil {
				return fmt.Errorf("recommend: %w", err)
			}
			defer st.close()

			var profile domain.UserProfile
			if userID != "" {
				profile, err = st.store.User(ctx, userID)
			} else {
				profile, err = readProfile(cmd.InOrStdin(), profilePath)
			}
			if err != nil {
				return fmt.Errorf("recommend: %w", err)
			}

			resp, err := st.pipeline.Recommend(ctx, &profile)
			if err != nil {
				var pe *pipeline.Error
				if errors.As(err, &pe) && !asJSON {
					printSteps(cmd.ErrOrStderr(), pe.Log)
				}
				return fmt.Errorf("recommend: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			printResponse(cmd.OutOrStdout(), &profile, resp)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "Persona id from the catalogue (e.g. u1)")
	cmd.Flags().StringVar(&profilePath, "profile", "", "Path to a JSON learner profile, or - for stdin")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full response as JSON")

	return cmd
}

// readProfile decodes a JSON learner profile from path, or from stdin when
// path is "-".
func readProfile(stdin io.Reader, path string) (domain.UserProfile, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // path is operator-supplied
	}
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("read profile: %w", err)
	}
	var p domain.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.UserProfile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return p, nil
}

// printResponse renders a response as a short human-readable report.
func printResponse(w io.Writer, profile *domain.UserProfile, resp *pipeline.Response) {
	name := profile.Name
	if name == "" {
		name = profile.UserID
	}
	fmt.Fprintf(w, "Recommendations for %s (method: %s, outcome: %s)\n\n", name, resp.Method, resp.Outcome)
	if len(resp.Recommendations) == 0 {
		fmt.Fprintln(w, "  no unviewed content available")
	}
	for _, rec := range resp.Recommendations {
		fmt.Fprintf(w, "  %d. %s [%s, %s, %d min]\n", rec.Rank, rec.Title, rec.Format, rec.Difficulty, rec.DurationMinutes)
		if rec.Explanation != "" {
			fmt.Fprintf(w, "     %s\n", rec.Explanation)
		}
	}
	fmt.Fprintln(w)
	printSteps(w, resp.PipelineLog)
	fmt.Fprintf(w, "\nTotal: %d ms\n", resp.TotalDurationMS)
}

// printSteps renders the pipeline log as an aligned table.
func printSteps(w io.Writer, steps []domain.PipelineStep) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tSTATUS\tDETAIL\tMS")
	for _, s := range steps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", s.Step, strings.ToUpper(string(s.Status)), s.Detail, s.DurationMS)
	}
	_ = tw.Flush()
}
