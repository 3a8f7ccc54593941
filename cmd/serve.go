package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/autofill/internal/logger"
	"github.com/spigell/autofill/internal/profile"
	"github.com/spigell/autofill/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the fill actions over HTTP for the browser extension",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default is "+server.DefaultAddr+")")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store, err := profile.NewStore(config.Store)
	if err != nil {
		logger.Fatal("opening the profile store", zap.Error(err))
	}
	defer closeStore(store, logger)

	logger.Info("starting the autofill server", zap.String("version", version), zap.String("backend", config.Store.Backend))

	srvCfg := *config.Server
	srvCfg.BlockFileUpload = config.Fill.BlockFileUpload

	if err := server.New(srvCfg, store, config.Fill.Options, logger).ListenAndServe(ctx); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
