package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adityagirishh/company-resource-consolidator/common"
	"github.com/adityagirishh/company-resource-consolidator/pipelines/video"
)

// Dependencies are shared by every command
type Dependencies struct {
	Config   *common.PipelineConfig
	Pipeline *Pipeline
	Out      *common.Formatter
	// HistoryPath is opened lazily so commands that never record runs
	// don't touch the database
	HistoryPath string
}

func main() {
	if err := run(); err != nil {
		common.NewFormatter(os.Stderr).Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg := common.LoadConfig()
	out := common.NewFormatter(os.Stdout)

	deps := &Dependencies{
		Config:      cfg,
		Pipeline:    NewPipeline(out),
		Out:         out,
		HistoryPath: common.DefaultHistoryPath(),
	}
	return NewRootCmd(deps).Execute()
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	cfg := deps.Config
	rootCmd := &cobra.Command{
		Use:           "crc",
		Short:         "Turn recruitment e-mails into company dossiers and placement videos",
		Long:          "Researches the company behind a recruitment e-mail, writes a dossier and a Shorts script with Gemini, renders a narrated vertical video and builds a WhatsApp share link.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if !verbose {
				log.SetOutput(io.Discard)
			}
			return nil
		},
	}

	// flag defaults come from the loaded config so flags only override
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfg.OutputDir, "output", "o", cfg.OutputDir, "output directory")
	flags.StringVar(&cfg.Template, "template", cfg.Template, templateHelp())
	flags.StringVar(&cfg.Language, "language", cfg.Language, "narration accent: en-US, en-GB, en-AU, en-IN")
	flags.Float64Var(&cfg.Speed, "speed", cfg.Speed, "narration speed (0.5-2.0)")
	flags.StringVar(&cfg.TTSProvider, "tts", cfg.TTSProvider, "speech provider: sarvam or deepgram")
	flags.BoolVar(&cfg.LogoEveryPage, "logo-every-slide", cfg.LogoEveryPage, "draw the company logo on every slide")
	flags.BoolVar(&cfg.Sharpen, "sharpen", cfg.Sharpen, "sharpen rendered slides")
	flags.BoolVar(&cfg.Subtitles, "subtitles", cfg.Subtitles, "write an .srt next to the video")
	flags.StringVar(&cfg.MusicPath, "music", cfg.MusicPath, "background music file")
	flags.StringVar(&cfg.Phone, "phone", cfg.Phone, "WhatsApp number for the share link")
	flags.BoolP("verbose", "v", false, "show pipeline logs")

	rootCmd.AddCommand(NewResearchCmd(deps))
	rootCmd.AddCommand(NewScriptCmd(deps))
	rootCmd.AddCommand(NewVideoCmd(deps))
	rootCmd.AddCommand(NewRunCmd(deps))
	rootCmd.AddCommand(NewShareCmd(deps))
	rootCmd.AddCommand(NewHistoryCmd(deps))
	rootCmd.AddCommand(NewServeCmd(deps))

	return rootCmd
}

// emailInput applies an e-mail file argument or --text to cfg
func emailInput(cfg *common.PipelineConfig, args []string, text string) error {
	switch {
	case text != "":
		cfg.EmailText = text
		cfg.EmailPath = ""
	case len(args) == 1:
		cfg.EmailPath = args[0]
	default:
		return fmt.Errorf("pass an e-mail file (.txt, .eml, .pdf) or --text")
	}
	return nil
}

func templateHelp() string {
	var names []string
	for _, t := range video.Templates() {
		names = append(names, strings.ToLower(t.String()))
	}
	return "slide template: " + strings.Join(names, ", ") + " (aliases: minimalist, corporate)"
}
