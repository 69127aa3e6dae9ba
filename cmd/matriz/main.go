package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ASCCJR/Matriz5x5/internal/config"
	diag "github.com/ASCCJR/Matriz5x5/internal/diagnostics"
	"github.com/ASCCJR/Matriz5x5/internal/layout"
	"github.com/ASCCJR/Matriz5x5/internal/led"
	"github.com/ASCCJR/Matriz5x5/internal/matrix"
	"github.com/ASCCJR/Matriz5x5/internal/pattern"
	"github.com/ASCCJR/Matriz5x5/internal/preview"
)

func main() {
	// ---- Flags (config.yaml can override most) ----
	var (
		x          = flag.Int("x", 5, "LEDs per row (X)")
		y          = flag.Int("y", 5, "LED rows (Y)")
		xFlip      = flag.Bool("x-flip-every-row", true, "serpentine: flip every other row along X")
		yFlip      = flag.Bool("y-flip", true, "invert Y so the first wire LED sits at the top")
		fps        = flag.Int("fps", 4, "pattern steps per second")
		driver     = flag.String("driver", "sim", "driver: spi | nrz | sim")
		patt       = flag.String("pattern", string(pattern.IndexSweep), "startup pattern: index_sweep | rgb_channels | row_sweep | col_sweep")
		addr       = flag.String("addr", ":8080", "HTTP listen address for the preview")
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Load config.yaml (optional) ----
	var cfg *config.Config
	if c, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	} else {
		cfg = c
	}

	// ---- Effective params (config overrides flags where set) ----
	eX, eY := *x, *y
	eXFlip, eYFlip := *xFlip, *yFlip
	eFPS := *fps
	eAddr := *addr
	selected := *driver
	if cfg != nil {
		if cfg.Dim.X > 0 {
			eX = cfg.Dim.X
		}
		if cfg.Dim.Y > 0 {
			eY = cfg.Dim.Y
		}
		eXFlip = boolOr(cfg.XFlipEveryRow, eXFlip)
		eYFlip = boolOr(cfg.YFlip, eYFlip)
		if cfg.FPS > 0 {
			eFPS = cfg.FPS
		}
		if cfg.Addr != "" {
			eAddr = cfg.Addr
		}
		if cfg.Driver != "" {
			selected = cfg.Driver
		}
	}

	// ---- Layout ----
	l := layout.Layout{
		Dim:   layout.Dim{X: eX, Y: eY},
		Order: layout.Serpentine{XFlipEveryRow: eXFlip, YFlip: eYFlip},
	}

	// ---- Transmitter bring-up ----
	var tx led.Transmitter
	switch selected {
	case "sim":
		tx = led.NewSim(l.Count())

	case "spi":
		spiDev := "/dev/spidev0.0"
		speedHz := 2400000
		resetUs := 300
		invert := false
		if cfg != nil {
			if cfg.SPI.Dev != "" {
				spiDev = cfg.SPI.Dev
			}
			if cfg.SPI.SpeedHz != 0 {
				speedHz = cfg.SPI.SpeedHz
			}
			if cfg.SPI.ResetUs != 0 {
				resetUs = cfg.SPI.ResetUs
			}
			invert = cfg.SPI.Invert
		}
		drv, err := led.NewSPI(spiDev, l.Count(), speedHz, resetUs, invert)
		if err != nil {
			log.Warn().Err(err).Str("driver", "spi").Str("dev", spiDev).Msg("SPI init failed; falling back to sim")
			selected = "sim"
			tx = led.NewSim(l.Count())
		} else {
			tx = drv
		}

	case "nrz":
		port := ""
		if cfg != nil {
			port = cfg.NRZ.Port
		}
		drv, err := led.NewNRZ(port, l.Count())
		if err != nil {
			log.Warn().Err(err).Str("driver", "nrz").Msg("nrzled init failed; falling back to sim")
			selected = "sim"
			tx = led.NewSim(l.Count())
		} else {
			tx = drv
		}

	default:
		log.Warn().Str("driver", selected).Msg("unknown driver; using sim")
		selected = "sim"
		tx = led.NewSim(l.Count())
	}

	// ---- Preview + matrix ----
	srv := preview.NewServer(l)
	srv.Driver = selected
	sink := led.NewTee(tx, srv)
	m := matrix.New(l, sink)

	// ---- HTTP routes ----
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.HandleFramesWS)
	mux.HandleFunc("/diag", srv.HandleDiagWS)
	mux.HandleFunc("/control", srv.HandleControlWS)
	mux.HandleFunc("/health", srv.HandleHealth)

	httpSrv := &http.Server{
		Addr:         eAddr,
		Handler:      withCORS(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	go runLoop(m, srv, pattern.Kind(*patt), eFPS, done)
	go func() {
		log.Info().Str("addr", eAddr).Str("driver", selected).Msg("HTTP server starting")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Graceful shutdown ----
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	s := <-ch
	log.Info().Str("signal", s.String()).Msg("shutting down")

	close(done)
	_ = httpSrv.Close()
	if err := sink.Close(); err != nil {
		log.Warn().Err(err).Msg("driver close")
	}
}

// runLoop owns the matrix: it is the single caller context the driver
// assumes. Preview commands arrive over a channel and are applied between
// frames.
func runLoop(m *matrix.Matrix, srv *preview.Server, start pattern.Kind, fps int, done <-chan struct{}) {
	if fps < 1 {
		fps = 1
	}
	runner := pattern.NewRunner(pattern.Plan{Kind: start})
	srv.PushDiag(diag.Diagnostic{Severity: diag.Info, Code: "PATTERN.START", Summary: "Pattern running", Detail: string(start)})

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case cmd := <-srv.Commands():
			if cmd.Clear {
				m.Clear()
			}
			if cmd.Pattern != "" {
				runner = pattern.NewRunner(pattern.Plan{Kind: pattern.Kind(cmd.Pattern)})
				srv.PushDiag(diag.Diagnostic{Severity: diag.Info, Code: "PATTERN.START", Summary: "Pattern running", Detail: cmd.Pattern})
			}
			if cmd.FPS > 0 {
				ticker.Reset(time.Second / time.Duration(cmd.FPS))
			}
		case <-ticker.C:
			if !runner.Step(m) {
				srv.PushDiag(diag.Diagnostic{Severity: diag.Info, Code: "PATTERN.DONE", Summary: "Pattern complete", Detail: string(runner.Kind())})
				runner.Reset()
				// Step left the buffer cleared; flush it so the LEDs
				// blank between replays instead of holding the last frame.
			}
			if err := m.Render(); err != nil {
				log.Error().Err(err).Msg("render failed")
			}
		}
	}
}

func boolOr(v *bool, fallback bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
