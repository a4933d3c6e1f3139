package support

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/laytext/cmd/laytext/cmd"
	"github.com/MeKo-Tech/laytext/internal/testutil"
)

// aTwoColumnPage writes the two-column fixture with four word blocks.
func (testCtx *TestContext) aTwoColumnPage(name string) error {
	img, _ := testutil.TwoColumnPage()
	return testutil.WritePNG(testCtx.Path(name), img)
}

func (testCtx *TestContext) aBlankPage(name string, width, height int) error {
	return testutil.WritePNG(testCtx.Path(name), testutil.BlankPage(width, height))
}

func (testCtx *TestContext) aBrokenImage(name string) error {
	return os.WriteFile(testCtx.Path(name), []byte("not an image"), 0o600)
}

func (testCtx *TestContext) theOCREngineAnswers(text string) error {
	testCtx.Engine.Text = text
	return nil
}

func (testCtx *TestContext) theOCREngineAnswersDigits(text string) error {
	testCtx.Engine.Digits = text
	return nil
}

func (testCtx *TestContext) theOCREngineFails() error {
	testCtx.Engine.Fail = true
	return nil
}

func (testCtx *TestContext) theOCREngineShouldHaveBeenCalledTimes(expected int) error {
	if n := len(testCtx.Engine.Calls()); n != expected {
		return fmt.Errorf("OCR engine called %d times, expected %d", n, expected)
	}
	return nil
}

func (testCtx *TestContext) theOCREngineShouldNotHaveBeenCalled() error {
	return testCtx.theOCREngineShouldHaveBeenCalledTimes(0)
}

func (testCtx *TestContext) everyOCRCallShouldUseLanguage(lang string) error {
	calls := testCtx.Engine.Calls()
	if len(calls) == 0 {
		return fmt.Errorf("OCR engine was never called")
	}
	for i, c := range calls {
		if c.Language != lang {
			return fmt.Errorf("call %d used language %q, expected %q", i+1, c.Language, lang)
		}
	}
	return nil
}

func (testCtx *TestContext) digitCallsShouldHaveBeenMade(expected int) error {
	n := 0
	for _, c := range testCtx.Engine.Calls() {
		if c.Whitelist != "" {
			n++
		}
	}
	if n != expected {
		return fmt.Errorf("%d digit calls made, expected %d", n, expected)
	}
	return nil
}

func (testCtx *TestContext) readLayout(name string) (*cmd.LayoutDocument, error) {
	data, err := os.ReadFile(testCtx.Path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	var doc cmd.LayoutDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("layout %s is not valid JSON: %w", name, err)
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("layout %s has no pages", name)
	}
	return &doc, nil
}

func (testCtx *TestContext) theLayoutShouldHaveRegions(name string, expected int) error {
	doc, err := testCtx.readLayout(name)
	if err != nil {
		return err
	}
	if n := len(doc.Pages[0].Regions); n != expected {
		return fmt.Errorf("layout %s has %d regions on page 1, expected %d", name, n, expected)
	}
	return nil
}

// theFirstRegionShouldBeInColumn checks which half of the page region 1 sits in.
func (testCtx *TestContext) theFirstRegionShouldBeInColumn(name, side string) error {
	doc, err := testCtx.readLayout(name)
	if err != nil {
		return err
	}
	page := doc.Pages[0]
	if len(page.Regions) == 0 {
		return fmt.Errorf("layout %s has no regions", name)
	}
	first := page.Regions[0]
	left := first.Right <= page.Width/2
	switch {
	case side == "left" && !left, side == "right" && left:
		return fmt.Errorf("first region %+v is not in the %s column of a %dpx page", first, side, page.Width)
	}
	return nil
}

func (testCtx *TestContext) theLayoutPageShouldBeAFallback(name string) error {
	doc, err := testCtx.readLayout(name)
	if err != nil {
		return err
	}
	if !doc.Pages[0].Fallback {
		return fmt.Errorf("page 1 of %s is not marked as fallback", name)
	}
	return nil
}

// RegisterDocumentSteps registers fixture, engine and layout steps.
func (testCtx *TestContext) RegisterDocumentSteps(sc *godog.ScenarioContext) {
	// Fixtures
	sc.Step(`^a two-column page "([^"]*)"$`, testCtx.aTwoColumnPage)
	sc.Step(`^a blank page "([^"]*)" of (\d+)x(\d+) pixels$`, testCtx.aBlankPage)
	sc.Step(`^a broken image "([^"]*)"$`, testCtx.aBrokenImage)

	// Engine
	sc.Step(`^the OCR engine answers "([^"]*)"$`, testCtx.theOCREngineAnswers)
	sc.Step(`^the OCR engine answers digits "([^"]*)"$`, testCtx.theOCREngineAnswersDigits)
	sc.Step(`^the OCR engine fails$`, testCtx.theOCREngineFails)
	sc.Step(`^the OCR engine should have been called (\d+) times$`, testCtx.theOCREngineShouldHaveBeenCalledTimes)
	sc.Step(`^the OCR engine should not have been called$`, testCtx.theOCREngineShouldNotHaveBeenCalled)
	sc.Step(`^every OCR call should use language "([^"]*)"$`, testCtx.everyOCRCallShouldUseLanguage)
	sc.Step(`^(\d+) digit calls should have been made$`, testCtx.digitCallsShouldHaveBeenMade)

	// Layout output
	sc.Step(`^the layout "([^"]*)" should have (\d+) regions$`, testCtx.theLayoutShouldHaveRegions)
	sc.Step(`^the first region of "([^"]*)" should be in the (left|right) column$`, testCtx.theFirstRegionShouldBeInColumn)
	sc.Step(`^page 1 of "([^"]*)" should be a fallback$`, testCtx.theLayoutPageShouldBeAFallback)
}
