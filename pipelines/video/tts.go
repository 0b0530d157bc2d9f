package video

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// SpeechEngine turns text into a baseline audio file
type SpeechEngine interface {
	Speak(ctx context.Context, text, language, outPath string) error
	// Ext is the extension of the audio the engine writes, without the dot
	Ext() string
}

// NewSpeechEngine picks a provider by name. Unknown names use Sarvam.
func NewSpeechEngine(provider, sarvamKey, deepgramKey string, runner Runner) (SpeechEngine, error) {
	switch strings.ToLower(provider) {
	case "deepgram":
		if deepgramKey == "" {
			return nil, fmt.Errorf("DEEPGRAM_API_KEY is not set")
		}
		return NewDeepgramClient(deepgramKey), nil
	default:
		if sarvamKey == "" {
			return nil, fmt.Errorf("SARVAM_API_KEY is not set")
		}
		return NewSarvamClient(sarvamKey, runner), nil
	}
}

// LanguageCodes maps language names and locales to Sarvam TTS codes
var LanguageCodes = map[string]string{
	"english":   "en-IN",
	"en":        "en-IN",
	"en-us":     "en-IN",
	"en-gb":     "en-IN",
	"en-au":     "en-IN",
	"en-in":     "en-IN",
	"hindi":     "hi-IN",
	"tamil":     "ta-IN",
	"bengali":   "bn-IN",
	"telugu":    "te-IN",
	"kannada":   "kn-IN",
	"malayalam": "ml-IN",
	"marathi":   "mr-IN",
	"gujarati":  "gu-IN",
	"punjabi":   "pa-IN",
	"odia":      "od-IN",
}

// SarvamLanguage returns the Sarvam code for a language, en-IN by default
func SarvamLanguage(language string) string {
	if code, ok := LanguageCodes[strings.ToLower(strings.TrimSpace(language))]; ok {
		return code
	}
	return "en-IN"
}

type SarvamClient struct {
	APIKey   string
	Endpoint string
	Speaker  string
	Client   *http.Client
	Runner   Runner

	limiter *rate.Limiter
}

func NewSarvamClient(apiKey string, runner Runner) *SarvamClient {
	return &SarvamClient{
		APIKey:   apiKey,
		Endpoint: "https://api.sarvam.ai/text-to-speech",
		Speaker:  "vidya",
		Client:   &http.Client{Timeout: 60 * time.Second},
		Runner:   runner,
		limiter:  rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
	}
}

func (s *SarvamClient) Ext() string { return "wav" }

// Speak synthesizes text in chunks of at most 500 characters and joins
// them. Any failed chunk fails the whole narration.
func (s *SarvamClient) Speak(ctx context.Context, text, language, outPath string) error {
	chunks := splitTextIntoChunks(text, 500)
	if len(chunks) == 1 {
		return s.synthesizeChunk(ctx, chunks[0], outPath, language)
	}

	base := strings.TrimSuffix(outPath, filepath.Ext(outPath))
	var chunkFiles []string
	defer func() {
		for _, f := range chunkFiles {
			os.Remove(f)
		}
	}()

	for i, chunk := range chunks {
		chunkPath := fmt.Sprintf("%s_chunk_%03d.wav", base, i)
		chunkFiles = append(chunkFiles, chunkPath)
		// a gap in the narration is worse than none; the slide goes silent
		if err := s.synthesizeChunk(ctx, chunk, chunkPath, language); err != nil {
			return fmt.Errorf("chunk %d of %d: %w", i+1, len(chunks), err)
		}
	}

	listPath := base + "_list.txt"
	if err := os.WriteFile(listPath, []byte(ConcatList(chunkFiles)), 0644); err != nil {
		return err
	}
	defer os.Remove(listPath)

	runner := s.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	_, err := runner.Run(ctx, "ffmpeg", "-y", "-hide_banner", "-loglevel", "error",
		"-f", "concat", "-safe", "0", "-i", listPath, "-c", "copy", outPath)
	return err
}

func (s *SarvamClient) synthesizeChunk(ctx context.Context, text, outputPath, language string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	payload := map[string]interface{}{
		"inputs":               []string{text},
		"target_language_code": SarvamLanguage(language),
		"speaker":              s.Speaker,
		"speech_sample_rate":   22050,
		"enable_preprocessing": true,
		"model":                "bulbul:v2",
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(jsonPayload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-subscription-key", s.APIKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sarvam API error: %d - %s", resp.StatusCode, string(body))
	}

	var result struct {
		Audios []string `json:"audios"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	if len(result.Audios) == 0 {
		return fmt.Errorf("no audio in response")
	}

	audioStr := result.Audios[0]
	// Strip data-URI header if present
	if idx := strings.Index(audioStr, ","); idx != -1 {
		audioStr = audioStr[idx+1:]
	}
	audioBytes, err := base64.StdEncoding.DecodeString(audioStr)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, audioBytes, 0644)
}

// DeepgramClient uses the Aura speak endpoint, which returns MP3 bytes
type DeepgramClient struct {
	APIKey   string
	Endpoint string
	Client   *http.Client

	limiter *rate.Limiter
}

func NewDeepgramClient(apiKey string) *DeepgramClient {
	return &DeepgramClient{
		APIKey:   apiKey,
		Endpoint: "https://api.deepgram.com/v1/speak",
		Client:   &http.Client{Timeout: 60 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(250*time.Millisecond), 4),
	}
}

func (d *DeepgramClient) Ext() string { return "mp3" }

// DeepgramModel picks an Aura voice for a locale
func DeepgramModel(language string) string {
	switch strings.ToLower(language) {
	case "en-gb":
		return "aura-athena-en"
	case "en-au", "en-in":
		return "aura-luna-en"
	default:
		return "aura-stella-en"
	}
}

func (d *DeepgramClient) Speak(ctx context.Context, text, language, outPath string) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}

	jsonData, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}

	url := d.Endpoint + "?model=" + DeepgramModel(language)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Token "+d.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("deepgram error: %s - %s", resp.Status, string(body))
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var (
	boldRe     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe   = regexp.MustCompile(`\*([^*]+)\*`)
	headingRe  = regexp.MustCompile(`#+\s*`)
	symbolRe   = regexp.MustCompile(`[^\p{L}\p{N}\s.,!?;\-()"']`)
	spacesRe   = regexp.MustCompile(`\s+`)
	sentenceRe = regexp.MustCompile(`[.!?]+\s+`)
)

// CleanNarrationText prepares slide text for speech: slide markers and
// markdown are removed and colons become full stops.
func CleanNarrationText(text string) string {
	text = strings.ReplaceAll(text, "[SLIDE", "")
	text = strings.ReplaceAll(text, "]", "")
	text = strings.ReplaceAll(text, ":", ".")
	text = boldRe.ReplaceAllString(text, "$1")
	text = italicRe.ReplaceAllString(text, "$1")
	text = headingRe.ReplaceAllString(text, "")
	text = symbolRe.ReplaceAllString(text, " ")
	text = spacesRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func splitTextIntoChunks(text string, maxLength int) []string {
	if len(text) <= maxLength {
		return []string{text}
	}

	var chunks []string
	sentences := sentenceRe.Split(text, -1)

	currentChunk := ""
	for _, sentence := range sentences {
		sentence = strings.TrimRight(strings.TrimSpace(sentence), ".!?")
		if sentence == "" {
			continue
		}
		if len(currentChunk)+len(sentence)+1 <= maxLength {
			currentChunk += sentence + ". "
		} else {
			if currentChunk != "" {
				chunks = append(chunks, strings.TrimSpace(currentChunk))
			}
			currentChunk = sentence + ". "
		}
	}
	if currentChunk != "" {
		chunks = append(chunks, strings.TrimSpace(currentChunk))
	}
	return chunks
}
