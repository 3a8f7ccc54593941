package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/autofill/internal/filler"
	"github.com/spigell/autofill/internal/profile"
	"github.com/spigell/autofill/internal/server"
)

const (
	app = "autofill"
)

type Config struct {
	Store  *profile.Config `mapstructure:"store"`
	Fill   *FillConfig     `mapstructure:"fill"`
	Server *server.Config  `mapstructure:"server"`
}

// FillConfig is the fill section: engine options plus how the caller treats the page.
type FillConfig struct {
	filler.Options `mapstructure:",squash"`

	BlockFileUpload bool `mapstructure:"block-file-upload"`
	// Wait bounds how long an action waits for sections created by "add" buttons.
	Wait time.Duration `mapstructure:"wait"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "autofill fills job application forms from a locally stored profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// .env is optional; values already in the environment win.
	_ = godotenv.Load()

	if err := viper.BindEnv("store.path", "AUTOFILL_PROFILE_FILE"); err != nil {
		log.Fatalf("binding AUTOFILL_PROFILE_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("store.backend", "AUTOFILL_STORE"); err != nil {
		log.Fatalf("binding AUTOFILL_STORE environment variable: %v", err)
	}

	viper.SetDefault("store.backend", profile.BackendFile)
	viper.SetDefault("store.path", profile.DefaultFilePath)
	viper.SetDefault("fill.section-timeout", filler.DefaultSectionTimeout)
	viper.SetDefault("fill.poll-interval", filler.DefaultPollInterval)
	viper.SetDefault("fill.wait", filler.DefaultSectionTimeout)
	viper.SetDefault("server.addr", server.DefaultAddr)
	viper.SetDefault("server.wait", filler.DefaultSectionTimeout)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is autofill.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Without a config file the defaults and the environment are enough,
	// but an explicit or broken file must parse.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Store == nil {
		config.Store = &profile.Config{}
	}
	if config.Fill == nil {
		config.Fill = &FillConfig{}
	}
	if config.Server == nil {
		config.Server = &server.Config{}
	}

	return config, nil
}
