package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"orderdesk/assets"
	"orderdesk/config"
	"orderdesk/docstore"
	"orderdesk/docstore/fsdoc"
	"orderdesk/docstore/sanity"
	"orderdesk/docstore/sqldoc"
	"orderdesk/engine"
	"orderdesk/messaging"
	"orderdesk/mirror"
	"orderdesk/store"
	"orderdesk/www"
)

var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "orderdesk.yaml", "path to config file")
	flag.Parse()

	if *showVersion {
		fmt.Println("orderdesk", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Database (admin users, and orders for the sql docstore)
	db, err := store.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	log.Printf("orderdesk: database open (%s)", cfg.Database.Driver)

	// Document store
	docs, closeDocs, err := openDocStore(cfg, db)
	if err != nil {
		log.Fatalf("open docstore: %v", err)
	}
	defer closeDocs()
	log.Printf("orderdesk: docstore %s", docs.Name())

	resolver, err := openAssets(cfg)
	if err != nil {
		log.Fatalf("assets: %v", err)
	}

	// Redis
	views := mirror.Store(mirror.NewMemoryStore())
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("orderdesk: redis not available (%v), keeping views in memory", err)
	} else {
		log.Printf("orderdesk: redis connected (%s)", cfg.Redis.Address)
		views = &mirror.FallbackStore{
			Primary:   mirror.NewRedisStore(redisClient, cfg.Redis.ViewTTL),
			Secondary: views,
		}
	}
	cancel()

	// Messaging client
	msgClient := messaging.NewClient(&cfg.Messaging)
	if err := msgClient.Connect(); err != nil {
		log.Printf("orderdesk: messaging connect failed (%v)", err)
	} else if msgClient.IsConnected() {
		log.Printf("orderdesk: messaging connected (%s)", cfg.Messaging.Backend)
	}
	defer msgClient.Close()

	// Engine
	eng := engine.New(engine.Config{
		AppConfig: cfg,
		DB:        db,
		DocStore:  docs,
		Views:     views,
		Assets:    resolver,
		MsgClient: msgClient,
	})
	eng.Start()
	defer eng.Stop()

	// Web server
	handler, stopWeb, err := www.NewRouter(eng)
	if err != nil {
		log.Fatalf("web: %v", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("orderdesk: web server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("web server: %v", err)
		}
	}()

	log.Printf("orderdesk: ready")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("orderdesk: shutting down...")
	stopWeb()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	log.Printf("orderdesk: stopped")
}

func openDocStore(cfg *config.Config, db *store.DB) (docstore.Backend, func(), error) {
	nop := func() {}
	switch cfg.DocStore.Driver {
	case "sanity":
		s := cfg.DocStore.Sanity
		if s.ProjectID == "" {
			return nil, nop, fmt.Errorf("docstore.sanity.project_id is required")
		}
		return sanity.New(sanity.Config{
			ProjectID:  s.ProjectID,
			Dataset:    s.Dataset,
			APIVersion: s.APIVersion,
			Token:      s.Token,
			UseCDN:     s.UseCDN,
			BaseURL:    s.BaseURL,
			Timeout:    cfg.DocStore.Timeout,
		}), nop, nil
	case "firestore":
		f := cfg.DocStore.Firestore
		ctx, cancel := context.WithTimeout(context.Background(), cfg.DocStore.Timeout)
		defer cancel()
		b, err := fsdoc.Open(ctx, fsdoc.Config{
			ProjectID:       f.ProjectID,
			CredentialsFile: f.CredentialsFile,
			Collection:      f.Collection,
		})
		if err != nil {
			return nil, nop, err
		}
		return b, func() { b.Close() }, nil
	case "", "sql":
		return sqldoc.New(db), nop, nil
	}
	return nil, nop, fmt.Errorf("unknown docstore driver %q", cfg.DocStore.Driver)
}

func openAssets(cfg *config.Config) (assets.Resolver, error) {
	switch cfg.Assets.Driver {
	case "", "sanity":
		if cfg.DocStore.Sanity.ProjectID == "" {
			log.Printf("orderdesk: assets: no sanity project_id, cart images will not render")
		}
		return assets.Sanity{
			ProjectID: cfg.DocStore.Sanity.ProjectID,
			Dataset:   cfg.DocStore.Sanity.Dataset,
			Width:     cfg.Assets.Width,
		}, nil
	case "gcs":
		g := cfg.Assets.GCS
		if g.Bucket == "" {
			return nil, fmt.Errorf("assets.gcs.bucket is required")
		}
		return assets.NewGCS(g.Bucket, g.AccessID, g.PrivateKeyFile, g.SignedURLTTL)
	}
	return nil, fmt.Errorf("unknown assets driver %q", cfg.Assets.Driver)
}
