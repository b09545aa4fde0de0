package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inamate/canvasboard/internal/auth"
	"github.com/inamate/canvasboard/internal/board"
	"github.com/inamate/canvasboard/internal/config"
	"github.com/inamate/canvasboard/internal/document"
	"github.com/inamate/canvasboard/internal/export"
	"github.com/inamate/canvasboard/internal/geometry"
	"github.com/inamate/canvasboard/internal/store"
)

type app struct {
	driver      string
	databaseURL string
	sqlitePath  string
	owner       string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:          "boardctl",
		Short:        "Inspect, export and seed stored canvases",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # List a user's canvases
  boardctl inspect --owner user_01h...

  # Render the latest snapshot of a canvas
  boardctl export my-board --owner user_01h... --format pdf --out board.pdf

  # Create a demo account with a sample canvas
  boardctl seed demo --email demo@example.com --password demo-password
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		a.cfg = cfg
		return nil
	}

	cmd.PersistentFlags().StringVar(&a.driver, "driver", "", "store driver: postgres, sqlite or memory (default $STORE_DRIVER)")
	cmd.PersistentFlags().StringVar(&a.databaseURL, "database-url", "", "postgres connection string (default $DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&a.sqlitePath, "sqlite-path", "", "sqlite database file (default $SQLITE_PATH)")
	cmd.PersistentFlags().StringVar(&a.owner, "owner", "", "owner user id")

	cmd.AddCommand(newInspectCmd(a))
	cmd.AddCommand(newExportCmd(a))
	cmd.AddCommand(newSeedCmd(a))
	return cmd
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	opts := store.Options{
		Driver:      a.cfg.StoreDriver,
		DatabaseURL: a.cfg.DatabaseURL,
		SQLitePath:  a.cfg.SQLitePath,
		Retention:   a.cfg.SnapshotRetention,
	}
	if a.driver != "" {
		opts.Driver = a.driver
	}
	if a.databaseURL != "" {
		opts.DatabaseURL = a.databaseURL
	}
	if a.sqlitePath != "" {
		opts.SQLitePath = a.sqlitePath
	}
	return store.Open(ctx, opts)
}

func (a *app) requireOwner() (string, error) {
	owner := strings.TrimSpace(a.owner)
	if owner == "" {
		return "", errors.New("--owner is required")
	}
	return owner, nil
}

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [context-id]",
		Short: "List an owner's canvases, or summarize one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := a.requireOwner()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			svc := board.NewService(st)

			if len(args) == 0 {
				scenes, err := svc.List(ctx, owner)
				if err != nil {
					return err
				}
				return printSceneList(cmd.OutOrStdout(), scenes)
			}

			snap, err := svc.Load(ctx, owner, args[0])
			if err != nil {
				return err
			}
			scene, err := svc.Scene(ctx, owner, args[0])
			if err != nil {
				return err
			}
			printSceneSummary(cmd.OutOrStdout(), snap, scene)
			return nil
		},
	}
}

func printSceneList(w io.Writer, scenes []store.SceneSummary) error {
	if len(scenes) == 0 {
		fmt.Fprintln(w, "no canvases")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONTEXT\tVERSION\tSNAPSHOTS\tUPDATED")
	for _, s := range scenes {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", s.ContextID, s.Version, s.Snapshots, s.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func printSceneSummary(w io.Writer, snap *store.Snapshot, scene *document.Scene) {
	fmt.Fprintf(w, "context:  %s\n", snap.ContextID)
	fmt.Fprintf(w, "version:  %d\n", snap.Version)
	fmt.Fprintf(w, "saved:    %s\n", snap.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "objects:  %d\n", len(scene.Objects))

	counts := make(map[document.ObjectType]int)
	var bounds geometry.Rect
	for i, obj := range scene.Objects {
		counts[obj.Type()]++
		if i == 0 {
			bounds = obj.Bounds()
		} else {
			bounds = bounds.Union(obj.Bounds())
		}
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(w, "  %-8s %d\n", t, counts[document.ObjectType(t)])
	}
	if len(scene.Objects) > 0 {
		fmt.Fprintf(w, "bounds:   %.0f,%.0f %.0fx%.0f\n", bounds.X, bounds.Y, bounds.Width, bounds.Height)
	}
	vp := scene.Viewport
	fmt.Fprintf(w, "viewport: %.0f,%.0f @ %.2fx\n", vp.X, vp.Y, vp.Scale)
}

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export <context-id>",
		Short: "Render the latest snapshot of a canvas to PNG or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := a.requireOwner()
			if err != nil {
				return err
			}
			capturer, err := export.CapturerFor(format)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			scene, err := board.NewService(st).Scene(ctx, owner, args[0])
			if err != nil {
				return err
			}
			data, err := export.RenderScene(ctx, scene, capturer)
			if err != nil {
				return err
			}

			if out == "" {
				out = export.SafeName(args[0]) + "." + capturer.Extension()
			}
			if dir := filepath.Dir(out); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create output dir: %w", err)
				}
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "png", "output format: png or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <context-id>.<format>)")
	return cmd
}

func newSeedCmd(a *app) *cobra.Command {
	var (
		email    string
		password string
		name     string
		empty    bool
	)

	cmd := &cobra.Command{
		Use:   "seed <context-id>",
		Short: "Store the sample canvas for an owner",
		Long: strings.TrimSpace(`
Saves the sample scene as a new version of the given canvas.

The owner is either --owner, or the account named by --email. With --password
the account is created when it does not exist yet.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			owner := strings.TrimSpace(a.owner)
			if email != "" {
				authSvc := auth.NewService(st, a.cfg.JWTSecret, auth.Options{TokenTTL: a.cfg.TokenTTL})
				user, err := ensureUser(ctx, authSvc, st, email, password, name)
				if err != nil {
					return err
				}
				owner = user.ID
			}
			if owner == "" {
				return errors.New("--owner or --email is required")
			}

			scene := document.NewSampleScene()
			if empty {
				scene = document.NewEmptyScene()
			}
			data, err := document.MarshalScene(scene)
			if err != nil {
				return err
			}
			saved, err := board.NewService(st).Save(ctx, owner, args[0], data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s for %s: version %d, %d objects\n",
				saved.ContextID, owner, saved.Version, saved.Objects)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email; resolves the owner")
	cmd.Flags().StringVar(&password, "password", "", "password used when the account has to be created")
	cmd.Flags().StringVar(&name, "name", "", "display name for a new account")
	cmd.Flags().BoolVar(&empty, "empty", false, "store an empty canvas instead of the sample")
	return cmd
}

func ensureUser(ctx context.Context, authSvc *auth.Service, users store.UserStore, email, password, name string) (*store.User, error) {
	u, err := users.GetUserByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if password == "" {
		return nil, fmt.Errorf("no account for %s; pass --password to create it", email)
	}
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	res, err := authSvc.Register(ctx, email, password, name)
	if err != nil {
		return nil, err
	}
	return users.GetUserByID(ctx, res.User.ID)
}
