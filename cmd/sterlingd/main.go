// Package main implements the sterling daemon, a file-backed social graph
// store reachable over a line-oriented TCP protocol.
//
// The daemon owns a directory of fixed-width shard files and answers
// requests of the form VERB/resource/arguments, one per line:
//
//	┌──────────────────────────────────────────┐
//	│                sterlingd                 │
//	├──────────────────────────────────────────┤
//	│  TCP protocol:                           │
//	│    GET/credential/...    - Lookups       │
//	│    SAVE/credential/...   - Registration  │
//	│    GET/posts/...         - Feeds         │
//	│    SAVE/posts/...        - Publishing    │
//	│    GET/relations/...     - Follow graph  │
//	│    DELETE/...            - Tombstoning   │
//	├──────────────────────────────────────────┤
//	│  Components:                             │
//	│    protocol  - Wire parsing, TCP server  │
//	│    social    - Domain operations         │
//	│    shard     - Username routing          │
//	│    storage   - Backward scan engine      │
//	└──────────────────────────────────────────┘
//
// Example usage:
//
//	# Pre-create the shard files
//	sterlingd init --config sterling.yaml
//
//	# Serve requests
//	sterlingd serve --config sterling.yaml
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mamigot/sterling/internal/config"
	"github.com/mamigot/sterling/internal/protocol"
	"github.com/mamigot/sterling/internal/record"
	"github.com/mamigot/sterling/internal/shard"
	"github.com/mamigot/sterling/internal/social"
	"github.com/mamigot/sterling/internal/storage"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "sterlingd",
		Short:         "File-backed social graph record store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "sterling.yaml", "path to the YAML config file")

	root.AddCommand(initCmd(), serveCmd())

	if err := root.Execute(); err != nil {
		log.Fatalf("sterlingd: %v", err)
	}
}

// initCmd pre-creates every shard file under the configured root. The
// serve command refuses to append to files that do not exist, so this runs
// once before first start.
func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the shard directory and files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			router, err := shard.NewRouter(cfg.Root, cfg.Shards)
			if err != nil {
				return err
			}
			if err := router.Init(); err != nil {
				return fmt.Errorf("initialize shards: %w", err)
			}
			log.Printf("initialized %d shard files under %s", len(router.All()), cfg.Root)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the TCP protocol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			codec, err := record.NewCodec(cfg.Widths)
			if err != nil {
				return err
			}
			router, err := shard.NewRouter(cfg.Root, cfg.Shards)
			if err != nil {
				return err
			}

			store := social.NewStore(codec, router, storage.NewEngine())
			srv := protocol.NewServer(protocol.NewHandler(store, codec))

			errc := make(chan error, 1)
			go func() { errc <- srv.Serve(cfg.Listen) }()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			select {
			case sig := <-stop:
				log.Printf("received %s, shutting down", sig)
				srv.Shutdown()
				<-errc
			case err := <-errc:
				return err
			}
			log.Println("sterlingd stopped")
			return nil
		},
	}
}
