package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// FFmpegTempo implements TempoTransformer by shelling out to ffmpeg with an
// atempo audio filter, the same transform the avatar front-end was tuned
// against.
type FFmpegTempo struct {
	binaryPath string
}

// NewFFmpegTempo creates a tempo transformer using the given ffmpeg binary.
func NewFFmpegTempo(binaryPath string) *FFmpegTempo {
	if binaryPath == "" {
		binaryPath = "ffmpeg"
	}
	return &FFmpegTempo{binaryPath: binaryPath}
}

// SpeedUp rewrites inputPath to outputPath at the given tempo factor.
// ffmpeg's atempo filter accepts factors in [0.5, 100.0].
func (t *FFmpegTempo) SpeedUp(ctx context.Context, inputPath, outputPath string, factor float64) error {
	if factor < 0.5 || factor > 100 {
		return fmt.Errorf("tempo factor %.2f out of atempo range", factor)
	}

	cmd := exec.CommandContext(ctx, t.binaryPath,
		"-y",
		"-i", inputPath,
		"-filter:a", fmt.Sprintf("atempo=%.2f", factor),
		outputPath,
	)

	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg atempo failed: %w: %s", err, lastLine(stderr.String()))
	}
	return nil
}

// lastLine trims ffmpeg's banner noise down to the actual failure reason.
func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
