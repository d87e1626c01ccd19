package ocrcore_test

import (
	"testing"

	"github.com/cucumber/godog"
	"github.com/dev-rafaelmachado/datalid-ocrcore/test/integration/ocrcore/support"
)

func TestSeedSuite(t *testing.T) {
	suite := godog.TestSuite{
		Name: "ocrcore-seed-suite",
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			ctx := support.NewTestContext()
			ctx.RegisterSteps(sc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
