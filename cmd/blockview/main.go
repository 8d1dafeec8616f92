package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/xlab/closer"

	"blockview/internal/assembly"
	"blockview/internal/config"
	"blockview/internal/profiling"
	"blockview/internal/scene"
	"blockview/internal/server"
	"blockview/internal/textures"
	"blockview/pkg/blockmodel"
)

func main() {
	var (
		configPath = flag.String("config", "blockview.yaml", "path to config file (optional)")
		assetsDir  = flag.String("assets", "", "assets directory holding models/ and textures/")
		model      = flag.String("model", "", "model document path or name under <assets>/models")
		out        = flag.String("out", "", "write the assembled scene here (.zst to compress, - for stdout)")
		serve      = flag.Bool("serve", false, "serve the scene to browser viewers")
		addr       = flag.String("addr", "", "http listen address for -serve")
		noTextures = flag.Bool("no-textures", false, "skip background texture decoding")
		profile    = flag.Bool("profile", false, "log pipeline timings")
		workers    = flag.Int("workers", 0, "assemble blocks on this many goroutines (0 or 1: sequential)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[blockview] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if *assetsDir != "" {
		cfg.AssetsDir = *assetsDir
	}
	if *model != "" {
		cfg.Model = *model
	}
	if *out != "" {
		cfg.Output = *out
	}
	if cfg.Output == "-" {
		logger.SetOutput(os.Stderr)
	}
	if *addr != "" {
		cfg.Listen = *addr
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *noTextures {
		off := false
		cfg.DecodeTextures = &off
	}
	if cfg.Model == "" {
		logger.Fatalf("no model given (use -model or set model in %s)", *configPath)
	}

	var rec *profiling.Recorder
	if *profile {
		rec = profiling.NewRecorder()
	}
	var cache *textures.Cache
	if cfg.ShouldDecodeTextures() {
		cache = textures.NewCache(cfg.TexturesDir(), cfg.TextureBaseURL)
	}

	var pool *assembly.Pool
	if cfg.Workers > 1 {
		pool = assembly.NewPool(cfg.Workers, 2*cfg.Workers, rec)
	}
	walker := &assembly.Walker{Profiler: rec, Pool: pool}

	ctx, cancel := context.WithCancel(context.Background())
	closer.Bind(func() {
		cancel()
		if pool != nil {
			pool.Shutdown()
		}
		if cache != nil {
			cache.Close()
		}
		if rec != nil {
			logger.Printf("timings: %s", rec.TopN(5))
		}
	})

	src := documentSource(cfg)
	closer.Checked(func() error {
		if *serve {
			return runServer(ctx, cfg, src, cache, walker, logger)
		}
		return runExport(cfg, src, cache, walker, logger)
	}, true)
	closer.Close()
}

// documentSource reads the model from a file when cfg names one, otherwise
// through a Loader rooted at the assets directory.
func documentSource(cfg config.Config) server.Source {
	if p := cfg.ModelPath(); p != "" {
		return func() (*blockmodel.Document, error) { return blockmodel.LoadFile(p) }
	}
	loader := blockmodel.NewLoader(cfg.AssetsDir)
	return func() (*blockmodel.Document, error) {
		loader.Invalidate(cfg.Model)
		return loader.LoadModel(cfg.Model)
	}
}

func runExport(cfg config.Config, src server.Source, cache *textures.Cache, walker *assembly.Walker, logger *log.Logger) error {
	doc, err := src()
	if err != nil {
		return err
	}

	sc := scene.New(cache)
	defer sc.Dispose()
	rep, err := sc.Populate(doc, walker)
	if err != nil {
		return err
	}
	server.LogReport(logger, rep)

	if cfg.Output == "" {
		return nil
	}
	frame := sc.Export(cfg.TextureBaseURL)
	if cfg.Output == "-" {
		return scene.WriteFrame(os.Stdout, frame, false)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Output), 0o755); err != nil {
		return err
	}
	f, err := os.Create(cfg.Output)
	if err != nil {
		return err
	}
	if err := scene.WriteFrame(f, frame, cfg.Compress()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", cfg.Output, err)
	}
	logger.Printf("wrote %s (%d meshes, %d connectors)", cfg.Output, len(frame.Meshes), len(frame.Connectors))
	return f.Close()
}

func runServer(ctx context.Context, cfg config.Config, src server.Source, cache *textures.Cache, walker *assembly.Walker, logger *log.Logger) error {
	srv := server.New(src, server.Options{
		TexturesDir:    cfg.TexturesDir(),
		TextureBaseURL: cfg.TextureBaseURL,
		Textures:       cache,
		Profiler:       walker.Profiler,
		Pool:           walker.Pool,
	}, logger)
	defer srv.Close()

	rep, err := srv.Reload()
	if err != nil {
		return err
	}
	server.LogReport(logger, rep)

	if p := cfg.ModelPath(); p != "" && cfg.ShouldWatch() {
		go func() {
			if err := srv.Watch(ctx, p); err != nil {
				logger.Printf("watch %s: %v", p, err)
			}
		}()
	}
	return srv.ListenAndServe(ctx, cfg.Listen)
}
