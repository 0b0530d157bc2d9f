package video

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes an external tool and returns its combined output
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs binaries from PATH
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s failed: %w, output: %s", name, err, tail(out, 800))
	}
	return out, nil
}

// Prober reads media durations
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// FFProbe implements Prober with ffprobe's JSON output
type FFProbe struct {
	Runner Runner
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (p FFProbe) Duration(ctx context.Context, path string) (float64, error) {
	runner := p.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	out, err := runner.Run(ctx, "ffprobe", "-v", "error", "-show_format", "-of", "json", path)
	if err != nil {
		return 0, err
	}
	return parseProbeDuration(out)
}

func parseProbeDuration(out []byte) (float64, error) {
	var ff ffprobeOutput
	if err := json.Unmarshal(out, &ff); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(ff.Format.Duration), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", ff.Format.Duration, err)
	}
	return d, nil
}

// NarrationArgs post-processes raw speech: +6 dB gain and tempo change
func NarrationArgs(in, out string, speed float64) []string {
	filter := "volume=6dB"
	if chain := atempoChain(speed); chain != "" {
		filter += "," + chain
	}
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", in,
		"-af", filter,
		"-ar", "44100", "-ac", "2",
		out,
	}
}

// atempoChain splits a speed factor into atempo stages within [0.5, 2].
// Non-finite or non-positive speeds leave the tempo unchanged.
func atempoChain(speed float64) string {
	if !(speed > 0) || math.IsInf(speed, 0) || speed == 1.0 {
		return ""
	}
	var stages []string
	for speed > 2.0 {
		stages = append(stages, "atempo=2.0")
		speed /= 2.0
	}
	for speed < 0.5 {
		stages = append(stages, "atempo=0.5")
		speed /= 0.5
	}
	if speed != 1.0 {
		stages = append(stages, "atempo="+strconv.FormatFloat(speed, 'f', 4, 64))
	}
	return strings.Join(stages, ",")
}

// ClipParams describes one still-image clip
type ClipParams struct {
	Image      string
	Audio      string // empty for a silent clip
	Output     string
	Duration   float64
	Fade       float64
	FPS        int
	Codec      string
	AudioCodec string
	Preset     string
	CRF        int
}

func ClipArgs(p ClipParams) []string {
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-loop", "1", "-framerate", strconv.Itoa(p.FPS), "-i", p.Image,
	}
	if p.Audio != "" {
		args = append(args, "-i", p.Audio)
	} else {
		args = append(args, "-f", "lavfi", "-i", "anullsrc=r=44100:cl=stereo")
	}

	vf := "format=yuv420p"
	af := "apad"
	if p.Fade > 0 {
		outStart := p.Duration - p.Fade
		vf = fmt.Sprintf("fade=t=in:st=0:d=%s,fade=t=out:st=%s:d=%s,format=yuv420p",
			seconds(p.Fade), seconds(outStart), seconds(p.Fade))
		if p.Audio != "" {
			af = fmt.Sprintf("apad,afade=t=out:st=%s:d=%s", seconds(outStart), seconds(p.Fade))
		}
	}

	args = append(args,
		"-map", "0:v", "-map", "1:a",
		"-vf", vf,
		"-af", af,
		"-t", seconds(p.Duration),
		"-r", strconv.Itoa(p.FPS),
		"-c:v", p.Codec, "-preset", p.Preset, "-crf", strconv.Itoa(p.CRF),
		"-pix_fmt", "yuv420p",
		"-c:a", p.AudioCodec, "-ar", "44100", "-ac", "2",
		p.Output,
	)
	return args
}

// ExportParams describes the final concatenation
type ExportParams struct {
	List       string
	Music      string
	Output     string
	Width      int
	Height     int
	Rescale    bool
	FPS        int
	Codec      string
	AudioCodec string
	Preset     string
	CRF        int
}

func ExportArgs(p ExportParams) []string {
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "concat", "-safe", "0", "-i", p.List,
	}
	if p.Music != "" {
		args = append(args, "-stream_loop", "-1", "-i", p.Music)
	}

	var graph []string
	vmap, amap := "0:v", "0:a"
	if p.Rescale {
		graph = append(graph, fmt.Sprintf(
			"[0:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1[vout]",
			p.Width, p.Height, p.Width, p.Height))
		vmap = "[vout]"
	}
	if p.Music != "" {
		graph = append(graph,
			"[1:a]volume=0.08[bg]",
			"[0:a][bg]amix=inputs=2:duration=first:dropout_transition=0:normalize=0[aout]")
		amap = "[aout]"
	}
	if len(graph) > 0 {
		args = append(args, "-filter_complex", strings.Join(graph, ";"))
	}

	args = append(args,
		"-map", vmap, "-map", amap,
		"-r", strconv.Itoa(p.FPS),
		"-c:v", p.Codec, "-preset", p.Preset, "-crf", strconv.Itoa(p.CRF),
		"-pix_fmt", "yuv420p",
		"-c:a", p.AudioCodec, "-b:a", "192k",
		"-movflags", "+faststart",
		p.Output,
	)
	return args
}

// ConcatList renders an ffmpeg concat demuxer list
func ConcatList(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(p, "'", `'\''`))
	}
	return b.String()
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return strings.TrimSpace(string(b))
}
