package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/adityagirishh/company-resource-consolidator/common"
	"github.com/adityagirishh/company-resource-consolidator/pipelines/dossier"
	"github.com/adityagirishh/company-resource-consolidator/pipelines/share"
)

func NewResearchCmd(deps *Dependencies) *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   "research [email-file]",
		Short: "Write a company dossier from a recruitment e-mail",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *deps.Config
			if err := emailInput(&cfg, args, text); err != nil {
				return err
			}

			gen, err := deps.Pipeline.NewGenerator(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer gen.Close()

			res, _, err := deps.Pipeline.Research(cmd.Context(), gen, cfg)
			if err != nil {
				return err
			}
			if broken := res.BrokenLinks(); len(broken) > 0 {
				deps.Out.Warning(fmt.Sprintf("%d links did not respond", len(broken)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "e-mail body instead of a file")
	return cmd
}

func NewScriptCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "script <dossier-file>",
		Short: "Write a Shorts script from a dossier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *deps.Config
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read dossier: %w", err)
			}

			gen, err := deps.Pipeline.NewGenerator(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer gen.Close()

			_, _, err = deps.Pipeline.Script(cmd.Context(), gen, cfg, string(data))
			return err
		},
	}
}

func NewVideoCmd(deps *Dependencies) *cobra.Command {
	var company string
	cmd := &cobra.Command{
		Use:   "video <script-file>",
		Short: "Render a placement video from a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *deps.Config
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}
			slides := common.ParseScriptToSlides(string(data))
			if company == "" {
				company = companyNear(args[0])
			}

			_, err = deps.Pipeline.Video(cmd.Context(), cfg, slides, company, nil)
			return err
		},
	}
	cmd.Flags().StringVar(&company, "company", "", "company name (default: read from dossier.txt beside the script)")
	return cmd
}

func NewRunCmd(deps *Dependencies) *cobra.Command {
	var text string
	var skipVideo bool
	cmd := &cobra.Command{
		Use:   "run [email-file]",
		Short: "Run research, script, video and share in one go",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *deps.Config
			if err := emailInput(&cfg, args, text); err != nil {
				return err
			}
			started := time.Now()
			cfg.OutputDir = RunOutputDir(cfg.OutputDir, started)
			cfg.SkipVideo = skipVideo

			history, err := common.OpenHistory(deps.HistoryPath)
			if err != nil {
				deps.Out.Warning(fmt.Sprintf("run history unavailable: %v", err))
			} else {
				defer history.Close()
			}

			id := NewRunID()
			res, runErr := deps.Pipeline.Run(cmd.Context(), cfg, nil)
			recordRun(cmd.Context(), history, id, cfg, started, res, runErr)
			if runErr != nil {
				return runErr
			}
			deps.Out.Success(fmt.Sprintf("Run %s finished in %s", id, time.Since(started).Round(time.Second)))
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "e-mail body instead of a file")
	cmd.Flags().BoolVar(&skipVideo, "skip-video", false, "stop after the script")
	return cmd
}

func NewShareCmd(deps *Dependencies) *cobra.Command {
	var videoPath string
	cmd := &cobra.Command{
		Use:   "share <dossier-file>",
		Short: "Print a WhatsApp link that shares a dossier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read dossier: %w", err)
			}
			d := dossier.ParseDossier(string(data))
			msg := share.ComposeMessage(d.CompanyName(), d.String(), videoPath)
			deps.Out.ShareLink(share.WhatsAppLink(msg, deps.Config.Phone))
			return nil
		},
	}
	cmd.Flags().StringVar(&videoPath, "video", "", "video path to mention in the message")
	return cmd
}

func NewHistoryCmd(deps *Dependencies) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := common.OpenHistory(deps.HistoryPath)
			if err != nil {
				return err
			}
			defer history.Close()

			runs, err := history.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				deps.Out.Info("No runs yet")
				return nil
			}
			deps.Out.HistoryHeader()
			for _, r := range runs {
				deps.Out.HistoryItem(r)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}

func NewServeCmd(deps *Dependencies) *cobra.Command {
	var addr string
	var workers int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP job server",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.SetOutput(os.Stderr)
			if deps.Config.GeminiKey == "" {
				return fmt.Errorf("GEMINI_API_KEY is not set")
			}

			history, err := common.OpenHistory(deps.HistoryPath)
			if err != nil {
				log.Printf("[SERVER] Run history disabled: %v", err)
				history = nil
			} else {
				defer history.Close()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pipeline := NewPipeline(nil)
			return StartServer(ctx, addr, workers, *deps.Config, pipeline.Run, history)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "number of worker goroutines")
	return cmd
}

// companyNear reads the company name from a dossier.txt next to path
func companyNear(path string) string {
	data, err := os.ReadFile(filepath.Join(filepath.Dir(path), "dossier.txt"))
	if err != nil {
		return "Company"
	}
	return dossier.ParseDossier(string(data)).CompanyName()
}
