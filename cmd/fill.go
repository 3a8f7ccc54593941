package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/autofill/internal/dom"
	"github.com/spigell/autofill/internal/filler"
	"github.com/spigell/autofill/internal/logger"
	"github.com/spigell/autofill/internal/profile"
	"github.com/spigell/autofill/internal/trigger"
)

// openStore is swapped in tests.
var openStore = profile.NewStore

var fillCmd = &cobra.Command{
	Use:   "fill <page.html>",
	Short: "Fill the forms of a saved page with the stored profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if !fill(cmd, args[0]) {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(fillCmd)

	fillCmd.Flags().StringP("action", "a", "", "action to run: fillAll, fillPersonal, fillExperience, fillEducation, fillSocial, fillResume")
	fillCmd.Flags().StringP("out", "o", "", "write the filled page to this file instead of stdout")
	fillCmd.Flags().BoolP("yes", "y", false, "do not ask for the action, run fillAll when none is given")
}

// fill reports whether the action succeeded. It returns instead of exiting so the
// store is closed on every path.
func fill(cmd *cobra.Command, path string) bool {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	action, err := chooseAction(cmd)
	if err != nil {
		logger.Fatal("choosing an action", zap.Error(err))
	}

	doc, err := readPage(path)
	if err != nil {
		logger.Fatal("reading the page", zap.String("path", path), zap.Error(err))
	}

	resp, err := fillPage(context.Background(), config, doc, action, logger)
	if err != nil {
		logger.Error("filling the page", zap.Error(err))
		return false
	}

	// do not bother error since the response is a plain struct
	pretty, _ := json.Marshal(resp)
	logger.Info("fill finished", zap.String("action", action), zap.ByteString("response", pretty))

	if !resp.Success {
		return false
	}

	if err := writePage(doc, cmd.Flag("out").Value.String()); err != nil {
		logger.Error("writing the page", zap.Error(err))
		return false
	}

	return true
}

// fillPage runs one action on doc with the configured store and closes the store afterwards.
func fillPage(ctx context.Context, config *Config, doc *dom.Document, action string, logger *zap.Logger) (trigger.Response, error) {
	doc.BlockFileAssignment = config.Fill.BlockFileUpload

	store, err := openStore(config.Store)
	if err != nil {
		return trigger.Response{}, fmt.Errorf("opening the profile store: %w", err)
	}
	defer closeStore(store, logger)

	engine := filler.New(doc, logger, config.Fill.Options)
	if err := engine.Load(ctx, store); err != nil {
		logger.Warn("no profile loaded", zap.String("backend", config.Store.Backend), zap.Error(err))
	}

	dispatcher := trigger.NewDispatcher(engine, logger)
	dispatcher.Wait = config.Fill.Wait

	return dispatcher.Handle(ctx, action), nil
}

func chooseAction(cmd *cobra.Command) (string, error) {
	action := cmd.Flag("action").Value.String()
	if action != "" {
		return action, nil
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if yes {
		return trigger.ActionFillAll, nil
	}

	prompt := promptui.Select{
		Label: "What to fill?",
		Items: trigger.Actions(),
	}

	_, action, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}

	return action, nil
}

func readPage(path string) (*dom.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return dom.Parse(f)
}

func writePage(doc *dom.Document, path string) error {
	if path == "" {
		return doc.Render(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := doc.Render(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func closeStore(store profile.Store, logger *zap.Logger) {
	if c, ok := store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Warn("closing the profile store", zap.Error(err))
		}
	}
}
