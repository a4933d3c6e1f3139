package config

import (
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/MeKo-Tech/laytext/internal/detector"
	"github.com/MeKo-Tech/laytext/internal/ocr"
	"github.com/MeKo-Tech/laytext/internal/pipeline"
	"github.com/MeKo-Tech/laytext/internal/render"
)

const infoLevel = "info"

// TestDefaultConfig verifies that DefaultConfig returns expected values.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Profile != ProfileDefault {
		t.Errorf("Expected profile %s, got %s", ProfileDefault, cfg.Profile)
	}
	if cfg.LogLevel != infoLevel {
		t.Errorf("Expected log_level '%s', got %s", infoLevel, cfg.LogLevel)
	}
	if cfg.General.DPI != 500 {
		t.Errorf("Expected dpi 500, got %d", cfg.General.DPI)
	}
	if cfg.General.OutputDir != "output" {
		t.Errorf("Expected output_dir 'output', got %s", cfg.General.OutputDir)
	}
	if !cfg.General.FallbackFullPage {
		t.Error("Expected fallback_full_page to be true")
	}
	if cfg.General.IncludePageBreaks {
		t.Error("Expected include_page_breaks to be false")
	}
	if cfg.OCR.Engine != EngineCLI {
		t.Errorf("Expected engine %s, got %s", EngineCLI, cfg.OCR.Engine)
	}
	if cfg.OCR.Lang != "eng+ara" {
		t.Errorf("Expected lang 'eng+ara', got %s", cfg.OCR.Lang)
	}
	if cfg.OCR.PSM != 6 || cfg.OCR.OEM != 1 {
		t.Errorf("Expected psm 6 / oem 1, got %d / %d", cfg.OCR.PSM, cfg.OCR.OEM)
	}
	if cfg.OCR.DigitsPass {
		t.Error("Expected digits_pass to be false")
	}
	if cfg.Order.RTL {
		t.Error("Expected rtl to be false")
	}
	if cfg.CV.Detector != string(detector.KindMorphology) {
		t.Errorf("Expected detector %s, got %s", detector.KindMorphology, cfg.CV.Detector)
	}
	if cfg.Render.Backend != string(render.BackendAuto) {
		t.Errorf("Expected backend auto, got %s", cfg.Render.Backend)
	}
	if cfg.Output.SummaryFormat != "text" {
		t.Errorf("Expected summary format 'text', got %s", cfg.Output.SummaryFormat)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig() should be valid, got error: %v", err)
	}
}

// TestArabicProfile verifies the arabic profile overrides.
func TestArabicProfile(t *testing.T) {
	cfg, err := Profile("Arabic")
	if err != nil {
		t.Fatalf("Profile(arabic) unexpected error: %v", err)
	}

	if cfg.Profile != ProfileArabic {
		t.Errorf("Expected profile %s, got %s", ProfileArabic, cfg.Profile)
	}
	if !cfg.Order.RTL {
		t.Error("Expected rtl to be true")
	}
	if cfg.Order.ColumnOverlapRatio != 0.4 {
		t.Errorf("Expected column_overlap_ratio 0.4, got %v", cfg.Order.ColumnOverlapRatio)
	}
	if !cfg.OCR.DigitsPass || !cfg.OCR.DigitsReplace {
		t.Error("Expected digits pass with replace")
	}
	if cfg.OCR.DigitsPassScope != string(pipeline.ScopeAll) {
		t.Errorf("Expected digits scope all, got %s", cfg.OCR.DigitsPassScope)
	}
	if !cfg.CV.MergeLineFree {
		t.Error("Expected merge_linefree to be true")
	}
	if cfg.CV.MinArea != 50 || cfg.CV.KernelWidth != 8 {
		t.Errorf("Expected min_area 50 / kernel_width 8, got %d / %d", cfg.CV.MinArea, cfg.CV.KernelWidth)
	}

	// Fields the profile does not touch keep the base defaults.
	if cfg.General.DPI != 500 || cfg.OCR.Lang != "eng+ara" {
		t.Errorf("Expected base dpi and lang, got %d and %s", cfg.General.DPI, cfg.OCR.Lang)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("arabic profile should be valid, got error: %v", err)
	}
}

func TestProfile_Unknown(t *testing.T) {
	if _, err := Profile("klingon"); err == nil {
		t.Fatal("Expected error for unknown profile")
	}
	cfg, err := Profile("")
	if err != nil {
		t.Fatalf("Profile(\"\") unexpected error: %v", err)
	}
	if cfg.Profile != ProfileDefault {
		t.Errorf("Expected default profile, got %s", cfg.Profile)
	}
}

// TestProfilesAreIndependent guards against shared slices or pointers.
func TestProfilesAreIndependent(t *testing.T) {
	a := DefaultConfig()
	a.OCR.Lang = "deu"
	b := DefaultConfig()
	if b.OCR.Lang != "eng+ara" {
		t.Errorf("Expected fresh default lang, got %s", b.OCR.Lang)
	}
}

// TestValidate covers each rejected setting.
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"log level", func(c *Config) { c.LogLevel = "trace" }, "invalid log level"},
		{"profile", func(c *Config) { c.Profile = "fancy" }, "invalid profile"},
		{"summary format", func(c *Config) { c.Output.SummaryFormat = "xml" }, "invalid summary format"},
		{"empty summary format", func(c *Config) { c.Output.SummaryFormat = "" }, ""},
		{"overlay color", func(c *Config) { c.Output.OverlayBoxColor = "not-a-color" }, "overlay_box_color"},
		{"hex overlay color", func(c *Config) { c.Output.OverlayBoxColor = "#00ff00" }, ""},
		{"empty overlay color", func(c *Config) { c.Output.OverlayBoxColor = "" }, ""},
		{"zero dpi", func(c *Config) { c.General.DPI = 0 }, "general.dpi"},
		{"negative workers", func(c *Config) { c.General.Workers = -1 }, "workers"},
		{"negative page workers", func(c *Config) { c.General.PageWorkers = -2 }, "workers"},
		{"backend", func(c *Config) { c.Render.Backend = "ghostscript" }, "render.backend"},
		{"pages", func(c *Config) { c.Render.Pages = "3-1" }, "render.pages"},
		{"pages ok", func(c *Config) { c.Render.Pages = "1-3,5" }, ""},
		{"engine", func(c *Config) { c.OCR.Engine = "easyocr" }, "ocr.engine"},
		{"gosseract engine", func(c *Config) { c.OCR.Engine = EngineGosseract }, ""},
		{"empty lang", func(c *Config) { c.OCR.Lang = " " }, "ocr.lang"},
		{"bad lang", func(c *Config) { c.OCR.Lang = "eng+12" }, "ocr.lang"},
		{"psm", func(c *Config) { c.OCR.PSM = 14 }, "ocr.psm"},
		{"digits psm", func(c *Config) { c.OCR.DigitsPSM = -1 }, "ocr.digits_psm"},
		{"line psm", func(c *Config) { c.OCR.LinePSM = 20 }, "ocr.line_psm"},
		{"line psm unset", func(c *Config) { c.OCR.LinePSM = ocr.Unset }, ""},
		{"oem", func(c *Config) { c.OCR.OEM = 4 }, "ocr.oem"},
		{"oem unset", func(c *Config) { c.OCR.OEM = ocr.Unset }, ""},
		{"timeout", func(c *Config) { c.OCR.Timeout = -time.Second }, "ocr.timeout"},
		{"digits scope", func(c *Config) { c.OCR.DigitsPassScope = "some" }, "digits_pass_scope"},
		{"detector", func(c *Config) { c.CV.Detector = "yolo" }, "cv.detector"},
		{"ocr boxes detector", func(c *Config) { c.CV.Detector = string(detector.KindOCRBoxes) }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateLanguage(t *testing.T) {
	tests := []struct {
		spec  string
		valid bool
	}{
		{"eng", true},
		{"eng+ara", true},
		{"ara+fas+urd", true},
		{"deu_latf+osd", true},
		{"script/Arabic", true},
		{"equ", true},
		{"", false},
		{"eng+", false},
		{"script/", false},
		{"123", false},
	}
	for _, tt := range tests {
		err := ValidateLanguage(tt.spec)
		if tt.valid && err != nil {
			t.Errorf("ValidateLanguage(%q) unexpected error: %v", tt.spec, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("ValidateLanguage(%q) expected error", tt.spec)
		}
	}
}

func TestToDetectorConfig(t *testing.T) {
	cfg, _ := Profile(ProfileArabic)
	cfg.CV.Detector = string(detector.KindOCRBoxes)
	cfg.CV.MinConfidence = 42
	cfg.OCR.Lang = "ara"

	dc := cfg.ToDetectorConfig()
	if dc.Kind != detector.KindOCRBoxes {
		t.Errorf("Expected kind ocr-boxes, got %s", dc.Kind)
	}
	if dc.MinArea != 50 || dc.KernelWidth != 8 {
		t.Errorf("Expected min_area 50 / kernel_width 8, got %d / %d", dc.MinArea, dc.KernelWidth)
	}
	if !dc.MergeLineFree || dc.MergeAreaRatio != 0.2 {
		t.Errorf("Expected line-free merge with area ratio 0.2, got %v / %v", dc.MergeLineFree, dc.MergeAreaRatio)
	}
	if dc.MinConfidence != 42 || dc.Language != "ara" {
		t.Errorf("Expected confidence 42 and lang ara, got %v / %s", dc.MinConfidence, dc.Language)
	}
}

func TestToPipelineConfig(t *testing.T) {
	cfg, _ := Profile(ProfileArabic)
	cfg.General.PageWorkers = 3
	cfg.General.IncludePageBreaks = true
	cfg.General.FallbackFullPage = false
	cfg.OCR.Timeout = 30 * time.Second
	cfg.OCR.Whitelist = "abc"
	cfg.Output.OverlayBoxColor = "#0000ff"
	cfg.Output.OverlayBoxWidth = 5

	pc, err := cfg.ToPipelineConfig()
	if err != nil {
		t.Fatalf("ToPipelineConfig() unexpected error: %v", err)
	}
	if !pc.Order.RTL || pc.Order.OverlapRatio != 0.4 {
		t.Errorf("Expected rtl ordering with ratio 0.4, got %+v", pc.Order)
	}
	if pc.OCR.DigitsScope != pipeline.ScopeAll || !pc.OCR.DigitsPass || !pc.OCR.DigitsReplace {
		t.Errorf("Expected digits pass all+replace, got %+v", pc.OCR)
	}
	if pc.OCR.Timeout != 30*time.Second || pc.OCR.Whitelist != "abc" {
		t.Errorf("Expected timeout and whitelist to carry over, got %v / %s", pc.OCR.Timeout, pc.OCR.Whitelist)
	}
	if pc.Workers != 3 {
		t.Errorf("Expected 3 page workers, got %d", pc.Workers)
	}
	if !pc.IncludePageBreaks || pc.FallbackFullPage {
		t.Error("Expected page breaks on and fallback off")
	}
	if pc.Overlay.Width != 5 {
		t.Errorf("Expected overlay width 5, got %d", pc.Overlay.Width)
	}
	if pc.Overlay.Color != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("Expected blue overlay, got %v", pc.Overlay.Color)
	}
	if !pc.Detector.MergeLineFree {
		t.Error("Expected detector config to carry over")
	}
}

func TestToPipelineConfig_InvalidScope(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OCR.DigitsPassScope = "sometimes"
	if _, err := cfg.ToPipelineConfig(); err == nil {
		t.Error("Expected error for invalid scope")
	}
}

func TestToRenderOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Render.Backend = string(render.BackendPoppler)
	cfg.Render.Pages = "2-4"
	cfg.Render.Password = "secret"

	opts := cfg.ToRenderOptions()
	if opts.Backend != render.BackendPoppler || opts.Pages != "2-4" || opts.Password != "secret" {
		t.Errorf("unexpected render options: %+v", opts)
	}
	if opts.PdftoppmCmd != render.DefaultPdftoppmCmd {
		t.Errorf("Expected pdftoppm command %s, got %s", render.DefaultPdftoppmCmd, opts.PdftoppmCmd)
	}
}
