package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/pir/internal/model"
)

// RunWithGolden executes a scenario and compares the built model's
// canonical JSON against a golden file stored in
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if scenario execution or serialization fails; a
// content mismatch is reported through goldie as a test failure.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := RunScenario(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertModelGolden(t, scenario.Name, result.Model); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertModelGolden compares the model's canonical JSON against
// testdata/golden/{name}.golden. Canonical serialization keeps the
// comparison independent of map iteration order.
func AssertModelGolden(t *testing.T, name string, m *model.Model) error {
	t.Helper()

	data, err := model.MarshalCanonical(m)
	if err != nil {
		return err
	}

	newGoldie(t).Assert(t, name, data)
	return nil
}

// AssertRenderGolden compares rendered notation output against
// testdata/golden/{name}.golden.
func AssertRenderGolden(t *testing.T, name string, rendered []byte) {
	t.Helper()
	newGoldie(t).Assert(t, name, rendered)
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}
