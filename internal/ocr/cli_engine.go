package ocr

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/laytext/internal/geometry"
)

// DefaultTesseractCmd is the binary looked up on PATH when none is configured.
const DefaultTesseractCmd = "tesseract"

// commandRunner executes a command with stdin and returns its stdout.
type commandRunner func(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error)

func execRunner(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%s failed: %w (stderr: %s)", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// CLIEngine runs the tesseract binary, streaming PNG data over stdin.
type CLIEngine struct {
	path string
	run  commandRunner
}

// NewCLIEngine creates an engine for the given binary; empty means "tesseract".
func NewCLIEngine(path string) *CLIEngine {
	if path == "" {
		path = DefaultTesseractCmd
	}
	return &CLIEngine{path: path, run: execRunner}
}

// Name implements Engine.
func (e *CLIEngine) Name() string { return "tesseract-cli" }

// Available reports whether the binary can be found.
func (e *CLIEngine) Available() error {
	if _, err := exec.LookPath(e.path); err != nil {
		return fmt.Errorf("%w: %s not found: %v", ErrEngineUnavailable, e.path, err)
	}
	return nil
}

// Recognize implements Engine.
func (e *CLIEngine) Recognize(ctx context.Context, img image.Image, opts Options) (string, error) {
	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}
	out, err := e.run(ctx, e.path, BuildArgs(opts), data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// WordBoxes implements WordBoxer using tesseract's TSV output.
func (e *CLIEngine) WordBoxes(ctx context.Context, img image.Image, language string) ([]WordBox, error) {
	data, err := encodePNG(img)
	if err != nil {
		return nil, err
	}
	args := BuildArgs(Options{Language: language, PSM: Unset, OEM: Unset})
	args = append(args, "tsv")
	out, err := e.run(ctx, e.path, args, data)
	if err != nil {
		return nil, err
	}
	return ParseTSV(out), nil
}

// BuildArgs returns the tesseract command line for opts, reading the image
// from stdin and writing text to stdout.
func BuildArgs(opts Options) []string {
	args := []string{"stdin", "stdout"}
	if opts.Language != "" {
		args = append(args, "-l", opts.Language)
	}
	if opts.PSM >= 0 {
		args = append(args, "--psm", strconv.Itoa(opts.PSM))
	}
	if opts.OEM >= 0 {
		args = append(args, "--oem", strconv.Itoa(opts.OEM))
	}
	if wl := ExpandWhitelist(opts.Whitelist); wl != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+wl)
	}
	if opts.ExtraConfig != "" {
		args = append(args, strings.Fields(opts.ExtraConfig)...)
	}
	return args
}

// ParseTSV extracts word-level rows (level 5) from tesseract TSV output.
// Malformed rows are skipped.
func ParseTSV(data []byte) []WordBox {
	var words []WordBox
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	header := true
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		cols := strings.Split(sc.Text(), "\t")
		if len(cols) < 12 || cols[0] != "5" {
			continue
		}
		nums := make([]int, 4)
		ok := true
		for i := range nums {
			n, err := strconv.Atoi(cols[6+i])
			if err != nil {
				ok = false
				break
			}
			nums[i] = n
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if !ok || err != nil {
			continue
		}
		words = append(words, WordBox{
			Rect:       geometry.Rect{Left: nums[0], Top: nums[1], Right: nums[0] + nums[2], Bottom: nums[1] + nums[3]},
			Text:       strings.TrimSpace(cols[11]),
			Confidence: conf,
		})
	}
	return words
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
