package cli

import (
	"github.com/spf13/cobra"

	"github.com/tjorvi/jujutsuka/internal/server"
	"github.com/tjorvi/jujutsuka/pkg/session"
	"github.com/tjorvi/jujutsuka/pkg/store"
)

// serveCommand creates the serve command, which runs the HTTP API server.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			backend, err := c.newCache(ctx, noCache)
			if err != nil {
				return err
			}
			defer backend.Close()

			snaps, err := c.newSnapshotStore(cmd)
			if err != nil {
				return err
			}
			defer snaps.Close(ctx)

			sessions, err := session.NewFileStore("")
			if err != nil {
				return err
			}

			srv := server.New(server.Config{
				Addr:      addr,
				Cache:     backend,
				Sessions:  sessions,
				Snapshots: snaps,
				Logger:    c.Logger,
			})
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", c.Config.Server.Addr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable result caching")

	return cmd
}

// newSnapshotStore builds the snapshot store: Mongo when configured,
// in-memory otherwise.
func (c *CLI) newSnapshotStore(cmd *cobra.Command) (store.Store, error) {
	if c.Config.Store.MongoURI == "" {
		return store.NewMemoryStore(), nil
	}
	c.Logger.Info("connecting snapshot store", "database", c.Config.Store.Database)
	return store.NewMongoStore(cmd.Context(), c.Config.Store.MongoURI, c.Config.Store.Database)
}
