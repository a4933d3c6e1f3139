package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "laytext"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "LAYTEXT"

	// DotEnvFile is loaded from the working directory before the environment is read.
	DotEnvFile = ".env"
)

// Loader handles loading configuration from various sources. Precedence is
// flags, environment, config file, profile defaults.
type Loader struct {
	v          *viper.Viper
	dotEnvPath string
}

// NewLoader creates a loader on the global viper instance so flag bindings
// made by the CLI apply.
func NewLoader() *Loader {
	return NewLoaderWithViper(viper.GetViper())
}

// NewLoaderWithViper creates a loader on v.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{v: v, dotEnvPath: DotEnvFile}
}

// WithDotEnv changes the .env file; the empty string disables it.
func (l *Loader) WithDotEnv(path string) *Loader {
	l.dotEnvPath = path
	return l
}

// Load reads the configuration from the standard search paths and validates it.
func (l *Loader) Load() (*Config, error) {
	return l.LoadWithFile("")
}

// LoadWithFile reads the configuration from configFile, falling back to the
// search paths when it is empty, and validates it.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	cfg, err := l.LoadWithoutValidation(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadWithoutValidation is LoadWithFile without the final Validate call.
func (l *Loader) LoadWithoutValidation(configFile string) (*Config, error) {
	if err := l.loadDotEnv(); err != nil {
		return nil, err
	}
	l.setupEnvironmentVariables()
	l.setDefaults(DefaultConfig())

	if err := l.readConfigFile(configFile); err != nil {
		return nil, err
	}

	// Profile defaults sit below every explicit setting.
	if name := l.v.GetString("profile"); name != "" && name != ProfileDefault {
		profile, err := Profile(name)
		if err != nil {
			return nil, err
		}
		l.setDefaults(profile)
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

func (l *Loader) readConfigFile(configFile string) error {
	if configFile != "" {
		if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file does not exist: %s", configFile)
		}
		l.v.SetConfigFile(configFile)
		if err := l.v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
		return nil
	}

	l.v.SetConfigName(ConfigFileName)
	for _, p := range GetConfigSearchPaths() {
		l.v.AddConfigPath(p)
	}
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// loadDotEnv exports variables from the .env file without overriding the
// real environment. A missing file is not an error.
func (l *Loader) loadDotEnv() error {
	if l.dotEnvPath == "" {
		return nil
	}
	if _, err := os.Stat(l.dotEnvPath); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(l.dotEnvPath); err != nil {
		return fmt.Errorf("error loading %s: %w", l.dotEnvPath, err)
	}
	return nil
}

// setupEnvironmentVariables maps keys like ocr.digits_pass to
// LAYTEXT_OCR_DIGITS_PASS.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults registers every key with its default so environment
// variables are picked up by Unmarshal.
func (l *Loader) setDefaults(d Config) {
	for key, value := range flatten(d) {
		l.v.SetDefault(key, value)
	}
}

// flatten lists every configuration key with its value in d.
func flatten(d Config) map[string]any {
	return map[string]any{
		"profile":   d.Profile,
		"log_level": d.LogLevel,
		"verbose":   d.Verbose,

		"general.dpi":                 d.General.DPI,
		"general.output_dir":          d.General.OutputDir,
		"general.debug_dir":           d.General.DebugDir,
		"general.include_page_breaks": d.General.IncludePageBreaks,
		"general.fallback_full_page":  d.General.FallbackFullPage,
		"general.workers":             d.General.Workers,
		"general.page_workers":        d.General.PageWorkers,

		"render.backend":      d.Render.Backend,
		"render.pages":        d.Render.Pages,
		"render.password":     d.Render.Password,
		"render.pdftoppm_cmd": d.Render.PdftoppmCmd,

		"ocr.engine":                d.OCR.Engine,
		"ocr.tesseract_cmd":         d.OCR.TesseractCmd,
		"ocr.lang":                  d.OCR.Lang,
		"ocr.psm":                   d.OCR.PSM,
		"ocr.oem":                   d.OCR.OEM,
		"ocr.whitelist":             d.OCR.Whitelist,
		"ocr.extra_config":          d.OCR.ExtraConfig,
		"ocr.timeout":               d.OCR.Timeout,
		"ocr.scale":                 d.OCR.Scale,
		"ocr.binarize":              d.OCR.Binarize,
		"ocr.denoise":               d.OCR.Denoise,
		"ocr.sharpen":               d.OCR.Sharpen,
		"ocr.crop_padding":          d.OCR.CropPadding,
		"ocr.line_psm":              d.OCR.LinePSM,
		"ocr.line_psm_height_ratio": d.OCR.LinePSMHeightRatio,
		"ocr.digits_pass":           d.OCR.DigitsPass,
		"ocr.digits_pass_scope":     d.OCR.DigitsPassScope,
		"ocr.digits_height_ratio":   d.OCR.DigitsHeightRatio,
		"ocr.digits_psm":            d.OCR.DigitsPSM,
		"ocr.digits_whitelist":      d.OCR.DigitsWhitelist,
		"ocr.digits_extra_config":   d.OCR.DigitsExtraConfig,
		"ocr.digits_min_chars":      d.OCR.DigitsMinChars,
		"ocr.digits_replace":        d.OCR.DigitsReplace,

		"order.rtl":                  d.Order.RTL,
		"order.column_overlap_ratio": d.Order.ColumnOverlapRatio,

		"cv.detector":            d.CV.Detector,
		"cv.min_area":            d.CV.MinArea,
		"cv.kernel_width":        d.CV.KernelWidth,
		"cv.kernel_height":       d.CV.KernelHeight,
		"cv.adaptive_block_size": d.CV.AdaptiveBlockSize,
		"cv.adaptive_c":          d.CV.AdaptiveC,
		"cv.remove_lines":        d.CV.RemoveLines,
		"cv.line_length_ratio":   d.CV.LineLengthRatio,
		"cv.line_thickness":      d.CV.LineThickness,
		"cv.border_margin":       d.CV.BorderMargin,
		"cv.max_area_ratio":      d.CV.MaxAreaRatio,
		"cv.merge_linefree":      d.CV.MergeLineFree,
		"cv.merge_iou":           d.CV.MergeIoU,
		"cv.merge_area_ratio":    d.CV.MergeAreaRatio,
		"cv.min_confidence":      d.CV.MinConfidence,

		"output.summary_format":    d.Output.SummaryFormat,
		"output.summary_file":      d.Output.SummaryFile,
		"output.overlay_box_color": d.Output.OverlayBoxColor,
		"output.overlay_box_width": d.Output.OverlayBoxWidth,
		"output.metrics_file":      d.Output.MetricsFile,
	}
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance for advanced usage.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// GetConfigSearchPaths returns the paths where configuration files are searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}
	if configDir, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && configDir != "" {
		paths = append(paths, filepath.Join(configDir, "laytext"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "laytext"))
	}
	return append(paths, "/etc/laytext")
}

var sectionComments = map[string]string{
	"profile":   "Base defaults: default or arabic. Explicit settings below override it.",
	"log_level": "debug, info, warn or error.",
	"general":   "Document handling and output locations.",
	"render":    "PDF rasterization. backend: auto, pdfcpu or poppler. pages: e.g. 1-3,5.",
	"ocr":       "Tesseract settings. Whitelists accept {ARABIC_INDIC} and {EASTERN_ARABIC_INDIC}.",
	"order":     "Reading order across columns.",
	"cv":        "Region detector. detector: morphology or ocr-boxes.",
	"output":    "Batch summary, debug overlay and Prometheus textfile.",
}

// WriteYAML encodes cfg as YAML. With comments each top-level key gets a
// short explanation. The password is never written.
func WriteYAML(w io.Writer, cfg Config, comments bool) error {
	cfg.Render.Password = ""
	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	setDurationString(&doc, cfg.OCR.Timeout)
	if comments && doc.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(doc.Content); i += 2 {
			if c, ok := sectionComments[doc.Content[i].Value]; ok {
				doc.Content[i].HeadComment = c
			}
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return enc.Close()
}

// setDurationString writes ocr.timeout as "30s" rather than nanoseconds.
func setDurationString(doc *yaml.Node, d time.Duration) {
	if doc.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "ocr" {
			continue
		}
		section := doc.Content[i+1]
		for j := 0; j+1 < len(section.Content); j += 2 {
			if section.Content[j].Value == "timeout" {
				section.Content[j+1].Tag = "!!str"
				section.Content[j+1].Value = d.String()
			}
		}
	}
}

// GenerateDefaultConfigFile writes the named profile as a commented YAML file.
// It refuses to overwrite an existing file unless force is set.
func GenerateDefaultConfigFile(filename, profile string, force bool) error {
	if filename == "" {
		filename = ConfigFileName + ".yaml"
	}
	if !force {
		if _, err := os.Stat(filename); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", filename)
		}
	}
	cfg, err := Profile(profile)
	if err != nil {
		return err
	}
	f, err := os.Create(filename) //nolint:gosec // G304: path comes from the CLI
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	if err := WriteYAML(f, cfg, true); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
