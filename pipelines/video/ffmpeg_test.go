package video

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtempoChain(t *testing.T) {
	assert.Equal(t, "", atempoChain(1.0))
	assert.Equal(t, "", atempoChain(0))
	assert.Equal(t, "atempo=1.3000", atempoChain(1.3))
	assert.Equal(t, "atempo=2.0,atempo=1.5000", atempoChain(3.0))
	assert.Equal(t, "atempo=2.0,atempo=2.0000", atempoChain(4.0))
	assert.Equal(t, "atempo=0.5,atempo=0.8000", atempoChain(0.4))

	for _, bad := range []float64{-1.5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.Equal(t, "", atempoChain(bad), "speed %v", bad)
	}
	assert.Equal(t, "volume=6dB", argValue(NarrationArgs("in.wav", "out.wav", math.NaN()), "-af"))
}

func TestNarrationArgs(t *testing.T) {
	args := NarrationArgs("in.wav", "out.wav", 1.3)
	assert.Equal(t, "volume=6dB,atempo=1.3000", argValue(args, "-af"))
	assert.Equal(t, "in.wav", argValue(args, "-i"))
	assert.Equal(t, "out.wav", args[len(args)-1])

	assert.Equal(t, "volume=6dB", argValue(NarrationArgs("in.wav", "out.wav", 1.0), "-af"))
}

func TestClipArgs_WithNarration(t *testing.T) {
	args := ClipArgs(ClipParams{
		Image: "slide.png", Audio: "n.wav", Output: "clip.mp4",
		Duration: 5, Fade: 0.5, FPS: 30,
		Codec: "libx264", AudioCodec: "aac", Preset: "medium", CRF: 23,
	})
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-loop 1 -framerate 30 -i slide.png")
	assert.Contains(t, joined, "-i n.wav")
	assert.NotContains(t, joined, "anullsrc")
	assert.Equal(t, "fade=t=in:st=0:d=0.500,fade=t=out:st=4.500:d=0.500,format=yuv420p", argValue(args, "-vf"))
	assert.Equal(t, "apad,afade=t=out:st=4.500:d=0.500", argValue(args, "-af"))
	assert.Equal(t, "5.000", argValue(args, "-t"))
	assert.Equal(t, "23", argValue(args, "-crf"))
	assert.Equal(t, "clip.mp4", args[len(args)-1])
}

func TestClipArgs_Silent(t *testing.T) {
	args := ClipArgs(ClipParams{
		Image: "slide.png", Output: "clip.mp4",
		Duration: 3, Fade: 0, FPS: 24,
		Codec: "libx264", AudioCodec: "aac", Preset: "fast", CRF: 28,
	})
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-f lavfi -i anullsrc=r=44100:cl=stereo")
	assert.Equal(t, "format=yuv420p", argValue(args, "-vf"))
	assert.Equal(t, "3.000", argValue(args, "-t"))
	assert.Equal(t, "24", argValue(args, "-r"))
}

func TestExportArgs(t *testing.T) {
	base := ExportParams{
		List: "list.txt", Output: "out.mp4", Width: 1080, Height: 1920, FPS: 30,
		Codec: "libx264", AudioCodec: "aac", Preset: "medium", CRF: 23,
	}

	t.Run("plain concat", func(t *testing.T) {
		args := ExportArgs(base)
		joined := strings.Join(args, " ")
		assert.Contains(t, joined, "-f concat -safe 0 -i list.txt")
		assert.NotContains(t, joined, "-filter_complex")
		assert.Contains(t, joined, "-map 0:v -map 0:a")
		assert.Equal(t, "out.mp4", args[len(args)-1])
	})

	t.Run("rescale and music", func(t *testing.T) {
		p := base
		p.Rescale = true
		p.Music = "bg.mp3"
		args := ExportArgs(p)
		joined := strings.Join(args, " ")

		assert.Contains(t, joined, "-stream_loop -1 -i bg.mp3")
		graph := argValue(args, "-filter_complex")
		require.NotEmpty(t, graph)
		assert.Contains(t, graph, "scale=1080:1920:force_original_aspect_ratio=decrease,pad=1080:1920")
		assert.Contains(t, graph, "[1:a]volume=0.08[bg]")
		assert.Contains(t, graph, "amix=inputs=2:duration=first")
		assert.Contains(t, joined, "-map [vout] -map [aout]")
	})
}

func TestConcatList_EscapesQuotes(t *testing.T) {
	got := ConcatList([]string{"/tmp/a.mp4", "/tmp/it's.mp4"})
	assert.Equal(t, "file '/tmp/a.mp4'\nfile '/tmp/it'\\''s.mp4'\n", got)
}

func TestParseProbeDuration(t *testing.T) {
	d, err := parseProbeDuration([]byte(`{"format":{"duration":"12.480000"}}`))
	require.NoError(t, err)
	assert.InDelta(t, 12.48, d, 1e-9)

	_, err = parseProbeDuration([]byte(`{"format":{}}`))
	assert.Error(t, err)
	_, err = parseProbeDuration([]byte(`not json`))
	assert.Error(t, err)
}
