package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/autofill/internal/logger"
	"github.com/spigell/autofill/internal/profile"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect or import the stored profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a summary of the stored profile",
	Run: func(_ *cobra.Command, _ []string) {
		showProfile()
	},
}

var profileImportCmd = &cobra.Command{
	Use:   "import <record.json>",
	Short: "Replace the stored profile with an exported record",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		importProfile(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd, profileImportCmd)

	profileImportCmd.Flags().BoolP("yes", "y", false, "replace an existing profile without asking")
}

func showProfile() {
	ctx := context.Background()

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

	data, err := store.GetFormData(ctx)
	if err != nil {
		logger.Fatal("reading the profile", zap.String("backend", config.Store.Backend), zap.Error(err))
	}

	p := data.UserData
	fields := []zap.Field{
		zap.String("name", p.PersonalInfo.FullName()),
		zap.String("email", p.PersonalInfo.Email),
		zap.Int("experiences", len(p.Experiences)),
		zap.Int("educations", len(p.Educations)),
		zap.Bool("resume", p.Resume != nil),
	}
	if p.Resume != nil {
		fields = append(fields, zap.String("resume_name", p.Resume.Name), zap.String("resume_type", p.Resume.Type))
	}
	if !p.LastUpdated.IsZero() {
		fields = append(fields, zap.Time("last_updated", p.LastUpdated))
	}

	logger.Info("stored profile", fields...)
}

func importProfile(cmd *cobra.Command, path string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Fatal("reading the record", zap.String("path", path), zap.Error(err))
	}

	p, err := profile.ParseRecord(raw)
	if err != nil {
		logger.Fatal("parsing the record", zap.String("path", path), zap.Error(err))
	}

	store, err := profile.NewStore(config.Store)
	if err != nil {
		logger.Fatal("opening the profile store", zap.Error(err))
	}
	defer closeStore(store, logger)

	writer, ok := store.(profile.Writer)
	if !ok {
		logger.Fatal("the store backend is read only", zap.String("backend", config.Store.Backend))
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if _, err := store.GetFormData(ctx); err == nil && !yes {
		prompt := promptui.Select{
			Label: "A profile is already stored. Replace it?",
			Items: []string{PromptYes, PromptNo},
		}

		_, answer, err := prompt.Run()
		if err != nil {
			logger.Fatal("prompt failed", zap.Error(err))
		}
		if answer != PromptYes {
			logger.Info("import cancelled")
			return
		}
	} else if err != nil && !errors.Is(err, profile.ErrNotFound) {
		logger.Warn("the stored profile can not be read, replacing it", zap.Error(err))
	}

	p.LastUpdated = time.Now().UTC()

	if err := writer.SaveFormData(ctx, p); err != nil {
		logger.Fatal("saving the profile", zap.Error(err))
	}

	logger.Info("profile imported",
		zap.String("name", p.PersonalInfo.FullName()),
		zap.Int("experiences", len(p.Experiences)),
		zap.Int("educations", len(p.Educations)),
	)
}
