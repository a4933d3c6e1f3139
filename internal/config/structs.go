//nolint:lll
package config

import "time"

// Config represents the complete configuration for laytext. It is loaded
// from configuration files, environment variables and command-line flags.
type Config struct {
	Profile  string `mapstructure:"profile" yaml:"profile" json:"profile"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	General GeneralConfig `mapstructure:"general" yaml:"general" json:"general"`
	Render  RenderConfig  `mapstructure:"render" yaml:"render" json:"render"`
	OCR     OCRConfig     `mapstructure:"ocr" yaml:"ocr" json:"ocr"`
	Order   OrderConfig   `mapstructure:"order" yaml:"order" json:"order"`
	CV      CVConfig      `mapstructure:"cv" yaml:"cv" json:"cv"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output" json:"output"`
}

// GeneralConfig contains document-level settings.
type GeneralConfig struct {
	DPI               int    `mapstructure:"dpi" yaml:"dpi" json:"dpi"`
	OutputDir         string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	DebugDir          string `mapstructure:"debug_dir" yaml:"debug_dir" json:"debug_dir"`
	IncludePageBreaks bool   `mapstructure:"include_page_breaks" yaml:"include_page_breaks" json:"include_page_breaks"`
	FallbackFullPage  bool   `mapstructure:"fallback_full_page" yaml:"fallback_full_page" json:"fallback_full_page"`
	Workers           int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	PageWorkers       int    `mapstructure:"page_workers" yaml:"page_workers" json:"page_workers"`
}

// RenderConfig contains PDF rasterization settings.
type RenderConfig struct {
	Backend     string `mapstructure:"backend" yaml:"backend" json:"backend"`
	Pages       string `mapstructure:"pages" yaml:"pages" json:"pages"`
	Password    string `mapstructure:"password" yaml:"password,omitempty" json:"-"`
	PdftoppmCmd string `mapstructure:"pdftoppm_cmd" yaml:"pdftoppm_cmd" json:"pdftoppm_cmd"`
}

// OCRConfig contains recognition settings.
type OCRConfig struct {
	Engine       string        `mapstructure:"engine" yaml:"engine" json:"engine"`
	TesseractCmd string        `mapstructure:"tesseract_cmd" yaml:"tesseract_cmd" json:"tesseract_cmd"`
	Lang         string        `mapstructure:"lang" yaml:"lang" json:"lang"`
	PSM          int           `mapstructure:"psm" yaml:"psm" json:"psm"`
	OEM          int           `mapstructure:"oem" yaml:"oem" json:"oem"`
	Whitelist    string        `mapstructure:"whitelist" yaml:"whitelist" json:"whitelist"`
	ExtraConfig  string        `mapstructure:"extra_config" yaml:"extra_config" json:"extra_config"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`

	Scale    float64 `mapstructure:"scale" yaml:"scale" json:"scale"`
	Binarize bool    `mapstructure:"binarize" yaml:"binarize" json:"binarize"`
	Denoise  bool    `mapstructure:"denoise" yaml:"denoise" json:"denoise"`
	Sharpen  bool    `mapstructure:"sharpen" yaml:"sharpen" json:"sharpen"`

	CropPadding        int     `mapstructure:"crop_padding" yaml:"crop_padding" json:"crop_padding"`
	LinePSM            int     `mapstructure:"line_psm" yaml:"line_psm" json:"line_psm"`
	LinePSMHeightRatio float64 `mapstructure:"line_psm_height_ratio" yaml:"line_psm_height_ratio" json:"line_psm_height_ratio"`

	DigitsPass        bool    `mapstructure:"digits_pass" yaml:"digits_pass" json:"digits_pass"`
	DigitsPassScope   string  `mapstructure:"digits_pass_scope" yaml:"digits_pass_scope" json:"digits_pass_scope"`
	DigitsHeightRatio float64 `mapstructure:"digits_height_ratio" yaml:"digits_height_ratio" json:"digits_height_ratio"`
	DigitsPSM         int     `mapstructure:"digits_psm" yaml:"digits_psm" json:"digits_psm"`
	DigitsWhitelist   string  `mapstructure:"digits_whitelist" yaml:"digits_whitelist" json:"digits_whitelist"`
	DigitsExtraConfig string  `mapstructure:"digits_extra_config" yaml:"digits_extra_config" json:"digits_extra_config"`
	DigitsMinChars    int     `mapstructure:"digits_min_chars" yaml:"digits_min_chars" json:"digits_min_chars"`
	DigitsReplace     bool    `mapstructure:"digits_replace" yaml:"digits_replace" json:"digits_replace"`
}

// OrderConfig contains reading-order settings.
type OrderConfig struct {
	RTL                bool    `mapstructure:"rtl" yaml:"rtl" json:"rtl"`
	ColumnOverlapRatio float64 `mapstructure:"column_overlap_ratio" yaml:"column_overlap_ratio" json:"column_overlap_ratio"`
}

// CVConfig contains region detector settings.
type CVConfig struct {
	Detector          string  `mapstructure:"detector" yaml:"detector" json:"detector"`
	MinArea           int     `mapstructure:"min_area" yaml:"min_area" json:"min_area"`
	KernelWidth       int     `mapstructure:"kernel_width" yaml:"kernel_width" json:"kernel_width"`
	KernelHeight      int     `mapstructure:"kernel_height" yaml:"kernel_height" json:"kernel_height"`
	AdaptiveBlockSize int     `mapstructure:"adaptive_block_size" yaml:"adaptive_block_size" json:"adaptive_block_size"`
	AdaptiveC         float64 `mapstructure:"adaptive_c" yaml:"adaptive_c" json:"adaptive_c"`
	RemoveLines       bool    `mapstructure:"remove_lines" yaml:"remove_lines" json:"remove_lines"`
	LineLengthRatio   float64 `mapstructure:"line_length_ratio" yaml:"line_length_ratio" json:"line_length_ratio"`
	LineThickness     int     `mapstructure:"line_thickness" yaml:"line_thickness" json:"line_thickness"`
	BorderMargin      int     `mapstructure:"border_margin" yaml:"border_margin" json:"border_margin"`
	MaxAreaRatio      float64 `mapstructure:"max_area_ratio" yaml:"max_area_ratio" json:"max_area_ratio"`
	MergeLineFree     bool    `mapstructure:"merge_linefree" yaml:"merge_linefree" json:"merge_linefree"`
	MergeIoU          float64 `mapstructure:"merge_iou" yaml:"merge_iou" json:"merge_iou"`
	MergeAreaRatio    float64 `mapstructure:"merge_area_ratio" yaml:"merge_area_ratio" json:"merge_area_ratio"`
	MinConfidence     float64 `mapstructure:"min_confidence" yaml:"min_confidence" json:"min_confidence"`
}

// OutputConfig contains summary, overlay and metrics settings.
type OutputConfig struct {
	SummaryFormat   string `mapstructure:"summary_format" yaml:"summary_format" json:"summary_format"`
	SummaryFile     string `mapstructure:"summary_file" yaml:"summary_file" json:"summary_file"`
	OverlayBoxColor string `mapstructure:"overlay_box_color" yaml:"overlay_box_color" json:"overlay_box_color"`
	OverlayBoxWidth int    `mapstructure:"overlay_box_width" yaml:"overlay_box_width" json:"overlay_box_width"`
	MetricsFile     string `mapstructure:"metrics_file" yaml:"metrics_file" json:"metrics_file"`
}
