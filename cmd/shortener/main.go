package main

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	grpcserver "github.com/emirkoc/shortlink/internal/grpc"

	"github.com/emirkoc/shortlink/internal/app/server"
	"github.com/emirkoc/shortlink/internal/app/service"
	"github.com/emirkoc/shortlink/internal/config"
	"github.com/emirkoc/shortlink/internal/logger"
	"github.com/emirkoc/shortlink/internal/repository"
	"github.com/emirkoc/shortlink/internal/storage"

	_ "net/http/pprof"
)

var buildVersion string
var buildDate string
var buildCommit string

func main() {
	options := config.Parse()
	hostname := options.RunAddr
	baseURL := options.BaseURL
	dsn := options.DatabaseDSN
	useTLS := options.EnableHTTPS

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)

	log := logger.New()
	defer func() {
		_ = log.Log.Sync()
	}()

	err := log.Init("Info")
	zapLogger := log.Log
	if err != nil {
		panic(err)
	}

	if options.EnablePprof {
		go func() {
			zapLogger.Info("Starting pprof server", zap.String("addr", "localhost:6060"))
			if err := http.ListenAndServe("localhost:6060", nil); err != nil {
				zapLogger.Error("pprof server error", zap.Error(err))
			}
		}()
	}

	var urlStore storage.URLStore
	var clickStore storage.ClickStore
	var userStore storage.UserStore

	if dsn != "" {
		zapLogger.Info("using db storage")
		db, err := repository.InitDB(dsn, zapLogger)
		if err != nil {
			panic(err)
		}
		defer db.Close()

		urlRepo := repository.CreateURLRepository(db, zapLogger)
		urlStore = urlRepo
		clickStore = urlRepo
		userStore = repository.CreateUserRepository(db, zapLogger)
		zapLogger.Info("Database connected and tables ready.")
	} else {
		zapLogger.Info("using in memory storage")

		mem, err := storage.CreateMemoryStorage()
		if err != nil {
			panic(err)
		}
		urlStore = mem
		clickStore = mem
		userStore = mem
	}

	resolver := service.NewCodeResolver(urlStore, service.NewRandomGenerator(), options.CodeLength)
	urlService := service.NewURLService(urlStore, resolver, zapLogger)
	clickService := service.NewClickService(urlStore, clickStore, zapLogger)
	redirectResolver := service.NewRedirectResolver(urlStore, clickService, zapLogger)
	auth := service.NewAuth(userStore, options.JWTSecret)

	r := server.Init(baseURL, zapLogger, true, urlService, clickService, redirectResolver, auth)

	if options.GRPCPort > 0 {
		g := grpcserver.New(baseURL, zapLogger, urlService, clickService, auth, options.GRPCPort)
		go func() {
			if err := g.Start(); err != nil {
				zapLogger.Error("gRPC server error", zap.Error(err))
			}
		}()
	}

	if useTLS {
		manager := &autocert.Manager{
			Cache:      autocert.DirCache("cache-dir"),
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist("shortlink.example.com", "www.shortlink.example.com"),
		}
		srv := &http.Server{
			Addr:      ":443",
			Handler:   r,
			TLSConfig: manager.TLSConfig(),
		}
		zapLogger.Info("Server is running with TLS", zap.String("hostname", hostname))
		if err := srv.ListenAndServeTLS("", ""); err != nil {
			panic(err)
		}
	} else {
		zapLogger.Info("Server is running", zap.String("hostname", hostname))
		if err := http.ListenAndServe(hostname, r); err != nil {
			panic(err)
		}
	}
}
