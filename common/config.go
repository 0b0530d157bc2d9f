package common

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const appName = "company-resource-consolidator"

type fileConfig struct {
	OutputDir     string  `toml:"output_dir"`
	GeminiKey     string  `toml:"gemini_api_key"`
	Model         string  `toml:"model"`
	TTSProvider   string  `toml:"tts_provider"`
	SarvamKey     string  `toml:"sarvam_api_key"`
	DeepgramKey   string  `toml:"deepgram_api_key"`
	Language      string  `toml:"language"`
	Speed         float64 `toml:"speed"`
	Template      string  `toml:"template"`
	LogoEveryPage bool    `toml:"logo_every_page"`
	Sharpen       bool    `toml:"sharpen"`
	Subtitles     bool    `toml:"subtitles"`
	MusicPath     string  `toml:"music_path"`
	SearchKey     string  `toml:"search_api_key"`
	SearchCX      string  `toml:"search_cx"`
	RedisURL      string  `toml:"redis_url"`
	Phone         string  `toml:"whatsapp_phone"`
}

// LoadConfig builds the pipeline configuration from defaults, the optional
// TOML file and environment variables, in that order. A .env file in the
// working directory is loaded first when present.
func LoadConfig() *PipelineConfig {
	_ = LoadEnv(".env")

	cfg := &PipelineConfig{
		OutputDir:   "./output",
		Model:       DefaultModel,
		TTSProvider: "sarvam",
		Language:    "en-US",
		Speed:       1.0,
		Template:    "tech-forward",
	}

	if path := ConfigFilePath(); path != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(path, &fc); err == nil {
			applyFileConfig(cfg, &fc)
		}
	}

	applyEnvOverrides(cfg)
	return cfg
}

func applyFileConfig(cfg *PipelineConfig, fc *fileConfig) {
	if fc.OutputDir != "" {
		cfg.OutputDir = expandTilde(fc.OutputDir)
	}
	if fc.GeminiKey != "" {
		cfg.GeminiKey = fc.GeminiKey
	}
	if fc.Model != "" {
		cfg.Model = fc.Model
	}
	if fc.TTSProvider != "" {
		cfg.TTSProvider = fc.TTSProvider
	}
	if fc.SarvamKey != "" {
		cfg.SarvamKey = fc.SarvamKey
	}
	if fc.DeepgramKey != "" {
		cfg.DeepgramKey = fc.DeepgramKey
	}
	if fc.Language != "" {
		cfg.Language = fc.Language
	}
	if fc.Speed > 0 {
		cfg.Speed = fc.Speed
	}
	if fc.Template != "" {
		cfg.Template = fc.Template
	}
	cfg.LogoEveryPage = fc.LogoEveryPage
	cfg.Sharpen = fc.Sharpen
	cfg.Subtitles = fc.Subtitles
	if fc.MusicPath != "" {
		cfg.MusicPath = expandTilde(fc.MusicPath)
	}
	cfg.SearchKey = fc.SearchKey
	cfg.SearchCX = fc.SearchCX
	cfg.RedisURL = fc.RedisURL
	cfg.Phone = fc.Phone
}

func applyEnvOverrides(cfg *PipelineConfig) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.GeminiKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("SARVAM_API_KEY"); v != "" {
		cfg.SarvamKey = v
	}
	if v := os.Getenv("DEEPGRAM_API_KEY"); v != "" {
		cfg.DeepgramKey = v
	}
	if v := os.Getenv("TTS_PROVIDER"); v != "" {
		cfg.TTSProvider = strings.ToLower(v)
	}
	if v := os.Getenv("TTS_SPEED"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Speed = f
		}
	}
	if v := os.Getenv("GOOGLE_SEARCH_API_KEY"); v != "" {
		cfg.SearchKey = v
	}
	if v := os.Getenv("GOOGLE_SEARCH_CX"); v != "" {
		cfg.SearchCX = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("WHATSAPP_PHONE"); v != "" {
		cfg.Phone = v
	}
	if v := os.Getenv("CRC_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = expandTilde(v)
	}
}

// ConfigFilePath returns the path of the TOML config file, or "" when none exists
func ConfigFilePath() string {
	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, appName)
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", appName)
	} else {
		return ""
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// DataDir is where the run history database lives
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", appName)
	}
	return filepath.Join(".", "data")
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
