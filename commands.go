package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"fyne.io/fyne/v2/theme"
	"github.com/hashicorp/mdns"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"SceneBoard/internal/config"
	"SceneBoard/internal/export"
	snet "SceneBoard/internal/net"
	"SceneBoard/internal/state"
	"SceneBoard/internal/store"
	"SceneBoard/internal/ui"
)

const shutdownTimeout = 5 * time.Second

func openStore(cfg config.Config) (store.Store, error) {
	if cfg.Server.StoreDir == "" {
		return store.NewMemory(), nil
	}
	return store.NewDir(cfg.Server.StoreDir)
}

// host bundles the HTTP API, the share hub and the mDNS advertisement.
type host struct {
	hub  *snet.Hub
	srv  *http.Server
	zone *mdns.Server
	url  string
}

func newHost(cfg config.Config, st store.Store) (*host, error) {
	port, err := snet.ListenPort(cfg.Server.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen address %q: %w", cfg.Server.Addr, err)
	}
	hub := snet.NewHub()
	h := &host{
		hub: hub,
		srv: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           snet.NewServer(st, hub),
			ReadHeaderTimeout: 10 * time.Second,
		},
		url: snet.ShareURL(snet.GetOutgoingIP(), port),
	}
	if cfg.Server.Advertise {
		zone, err := snet.Advertise(cfg.Server.ServiceName, port)
		if err != nil {
			log.WithError(err).Warn("mDNS advertisement disabled")
		} else {
			h.zone = zone
		}
	}
	return h, nil
}

// run serves until ctx ends or the listener fails.
func (h *host) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", h.srv.Addr).Info("HTTP server listening")
		if err := h.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return h.hub.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		if h.zone != nil {
			h.zone.Shutdown()
		}
		h.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return h.srv.Shutdown(shutdownCtx)
	})
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newEditCmd(g *globalFlags) *cobra.Command {
	var share bool
	cmd := &cobra.Command{
		Use:   "edit [file.json]",
		Short: "Open the editor, optionally sharing the scene on the LAN",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runEdit(g, path, share)
		},
	}
	cmd.Flags().BoolVar(&share, "share", false, "host the scene for followers")
	return cmd
}

func runEdit(g *globalFlags, path string, share bool) error {
	st, err := openStore(g.cfg)
	if err != nil {
		return err
	}
	opts := ui.Options{Config: g.cfg, Store: st}
	if !share {
		return ui.RunEditor(opts, path)
	}

	h, err := newHost(g.cfg, st)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.run(ctx) }()

	opts.OnScene = h.hub.Publish
	opts.Status = "Sharing at " + h.url
	log.WithField("url", h.url).Info("sharing scene")
	err = ui.RunEditor(opts, path)
	cancel()
	if runErr := <-done; err == nil {
		err = runErr
	}
	return err
}

func newServeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the save/load API and share hub without a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(g.cfg)
			if err != nil {
				return err
			}
			h, err := newHost(g.cfg, st)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			log.WithField("url", h.url).Info("followers can connect")
			return h.run(ctx)
		},
	}
}

func newViewCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "view <ws-url>",
		Short: "Follow a shared scene read-only",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ui.RunViewer(args[0], g.cfg.Canvas.Width, g.cfg.Canvas.Height)
		},
	}
}

func newDiscoverCmd(g *globalFlags) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List sceneboard hosts on the LAN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			found := 0
			err := snet.Browse(cmd.Context(), g.cfg.Server.ServiceName, timeout, func(p snet.Peer) {
				found++
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.Name, p.ShareURL())
			})
			if err != nil {
				return err
			}
			if found == 0 {
				return snet.ErrNoPeers
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "how long to listen for answers")
	return cmd
}

func newExportCmd(g *globalFlags) *cobra.Command {
	var fontPath string
	var width, height float64
	cmd := &cobra.Command{
		Use:   "export <in.json> <out.png|out.pdf>",
		Short: "Render a saved scene to PNG or PDF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			scene, err := state.DecodeScene(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			opts := export.Options{Width: width, Height: height, FontPath: fontPath}
			if fontPath == "" {
				opts.Font = theme.DefaultTextFont().Content()
			}
			out := args[1]
			switch strings.ToLower(filepath.Ext(out)) {
			case ".png":
				err = export.ExportPNG(out, scene, opts)
			case ".pdf":
				err = export.ExportPDF(out, scene, opts)
			default:
				return fmt.Errorf("unsupported export format %q", filepath.Ext(out))
			}
			if err != nil {
				return err
			}
			log.WithFields(log.Fields{"in": args[0], "out": out, "objects": scene.Len()}).Info("exported")
			return nil
		},
	}
	cmd.Flags().StringVar(&fontPath, "font", "", "TrueType font for text in PNG output")
	cmd.Flags().Float64Var(&width, "width", 0, "page width (default: fit the scene)")
	cmd.Flags().Float64Var(&height, "height", 0, "page height (default: fit the scene)")
	return cmd
}

func newConfigCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := g.cfg.Encode()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
