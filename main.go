package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gogpu/gg"

	"SharedBoard/internal/board"
	"SharedBoard/internal/config"
	boardnet "SharedBoard/internal/net"
	"SharedBoard/internal/raster"
	"SharedBoard/internal/state"
	"SharedBoard/internal/ui"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a TOML config file")
		relayOnly  = flag.Bool("relay", false, "run only the relay, without a window")
		host       = flag.Bool("host", false, "run the relay and open a board connected to it")
		listen     = flag.String("listen", "", "relay TCP listen address")
		wsListen   = flag.String("ws", "", "relay WebSocket listen address (\"off\" disables)")
		server     = flag.String("server", "", "relay to join: sharedboard://host:port, host:port or ws:// URL")
		discover   = flag.Bool("discover", false, "find a relay on the local network with mDNS")
		logLevel   = flag.String("log-level", "", "debug, info, warn or error")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	if *listen != "" {
		cfg.Relay.Listen = *listen
	}
	switch *wsListen {
	case "":
	case "off":
		cfg.Relay.WebSocket = ""
	default:
		cfg.Relay.WebSocket = *wsListen
	}
	if *server != "" {
		cfg.Client.Server = *server
	}
	// Share links are passed as the first argument, as with a URL handler.
	if arg := flag.Arg(0); arg != "" {
		cfg.Client.Server = arg
	}
	if *discover {
		cfg.Client.Discover = true
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	log, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	slog.SetDefault(log)
	gg.SetLogger(log.With("component", "raster"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *relayOnly:
		err = runRelay(ctx, cfg, log)
	case *host:
		err = runHost(ctx, cfg, log)
	default:
		err = runClient(ctx, cfg, log)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("exiting", "err", err)
		os.Exit(1)
	}
}

// relay is a started relay and everything that must be stopped with it.
type relay struct {
	link     string
	port     int
	shutdown func()
}

func startRelay(ctx context.Context, cfg config.Config, log *slog.Logger) (*relay, error) {
	log = log.With("component", "relay")
	r := boardnet.NewRelay(cfg.Relay.QueueSize, log)

	ln, err := net.Listen("tcp", cfg.Relay.Listen)
	if err != nil {
		return nil, fmt.Errorf("failed to start relay: %w", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	go func() {
		if err := r.Serve(ctx, ln); err != nil && ctx.Err() == nil {
			log.Error("relay stopped", "err", err)
		}
	}()

	var srv *http.Server
	if cfg.Relay.WebSocket != "" {
		mux := http.NewServeMux()
		mux.Handle(boardnet.WebSocketPath, r)
		srv = &http.Server{Addr: cfg.Relay.WebSocket, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			log.Info("websocket relay listening", "addr", cfg.Relay.WebSocket, "path", boardnet.WebSocketPath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("websocket relay stopped", "err", err)
			}
		}()
	}

	var stopMDNS func() error
	if cfg.Relay.Advertise {
		m, err := boardnet.Advertise(port)
		if err != nil {
			log.Warn("mDNS advertising disabled", "err", err)
		} else {
			log.Info("advertising relay", "service", boardnet.ServiceType, "port", port)
			stopMDNS = m.Shutdown
		}
	}

	ip, err := boardnet.GetOutgoingIP()
	if err != nil {
		ip = "127.0.0.1"
	}
	rl := &relay{
		link: boardnet.ShareLink(ip, port),
		port: port,
		shutdown: func() {
			if stopMDNS != nil {
				_ = stopMDNS()
			}
			if srv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}
			r.Peers.CloseAll()
		},
	}
	log.Info("share this link", "link", rl.link)
	return rl, nil
}

func runRelay(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	rl, err := startRelay(ctx, cfg, log)
	if err != nil {
		return err
	}
	fmt.Println(rl.link)
	<-ctx.Done()
	rl.shutdown()
	return nil
}

// runHost is a relay plus a local board joined to it over loopback.
func runHost(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	rl, err := startRelay(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rl.shutdown()

	cfg.Client.Server = net.JoinHostPort("127.0.0.1", strconv.Itoa(rl.port))
	cfg.Client.Discover = false
	return openBoard(ctx, cfg, log, "Shared Board (host) "+rl.link)
}

func runClient(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if cfg.Client.Server == "" && !cfg.Client.Discover {
		return errors.New("nothing to join: pass a share link, -server, -discover, or start one with -host")
	}
	return openBoard(ctx, cfg, log, "Shared Board")
}

func openBoard(ctx context.Context, cfg config.Config, log *slog.Logger, title string) error {
	link := cfg.Client.Server
	if cfg.Client.Discover {
		log.Info("looking for a relay", "service", boardnet.ServiceType)
		addr, err := boardnet.Discover(ctx, cfg.Client.DiscoverTimeout.Duration)
		if err != nil {
			return err
		}
		link = addr
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.Client.DialTimeout.Duration)
	conn, err := boardnet.Dial(dialCtx, link, log.With("component", "net"))
	cancel()
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	log.Info("connected to relay", "remote", conn.RemoteAddr())

	bg, err := cfg.BackgroundColor()
	if err != nil {
		return err
	}
	palette, err := cfg.PaletteColors()
	if err != nil {
		return err
	}

	canvas := raster.NewCanvas(cfg.Canvas.Width, cfg.Canvas.Height, bg)
	boardLog := log.With("component", "board")
	b := board.New(canvas, bg, boardLog)
	session := board.NewSession(b, conn, state.NewSession(), boardLog)

	return ui.RunApp(ctx, ui.Options{
		Title:   title,
		Canvas:  canvas,
		Board:   b,
		Session: session,
		Palette: palette,
		Peer:    conn.RemoteAddr(),
		Logger:  log,
	})
}
