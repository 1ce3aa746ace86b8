// cmd/ingestrouter/app_test.go
package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/core/usecases"
	"ingestrouter/internal/platform/classifier"
	"ingestrouter/internal/platform/config"
	"ingestrouter/internal/platform/logx"
	"ingestrouter/internal/platform/workerpool"
	"ingestrouter/internal/testutil"
)

func TestFileRef(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want domain.FileReference
	}{
		{"local", "data/" + testutil.FixtureBuoyHumboldt, domain.NewLocalReference("data/" + testutil.FixtureBuoyHumboldt)},
		{"s3", "s3://raw/incoming/" + testutil.FixtureLidarHumboldt, domain.NewS3Reference("raw", "incoming/"+testutil.FixtureLidarHumboldt)},
		{"s3 escaped", "s3://raw/a%20b.waves.csv", domain.NewS3Reference("raw", "a b.waves.csv")},
		{"s3 bucket only", "s3://raw", domain.NewS3Reference("raw", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, fileRef(tt.arg), tt.want, "reference")
		})
	}
}

func TestFileRefs_PreservesOrder(t *testing.T) {
	refs := fileRefs([]string{testutil.FixtureWavesMorro, testutil.FixtureBuoyMorro})

	testutil.AssertEqual(t, len(refs), 2, "count")
	testutil.AssertEqual(t, refs[0].Name(), testutil.FixtureWavesMorro, "first file first")
}

// runLocal ejecuta un batch de un archivo de buoy sobre el backend filesystem
// con la configuración de ejemplo del repo.
func runLocal(t *testing.T, retain bool) (input, outcome string, outputs []string) {
	t.Helper()
	t.Setenv("RETAIN_INPUT_FILES", "")

	input = filepath.Join(t.TempDir(), testutil.FixtureBuoyHumboldt)
	testutil.WriteFile(t, input, "PK\x03\x04payload")

	cfg := config.DefaultConfig()
	cfg.PipelinesDir = filepath.Join("..", "..", "pipelines")
	cfg.Storage.Backend = config.BackendFilesystem
	cfg.Storage.RootDir = t.TempDir()
	cfg.Storage.RetainInputFiles = retain
	cfg.Files = []string{input}

	a, err := newApp(cfg, classifier.NewDefault(), logx.NewDiscard())
	testutil.AssertNoError(t, err, "newApp should succeed")

	report := a.runFiles(context.Background())
	testutil.AssertEqual(t, report.Error, "", "batch error")

	outputs, _ = filepath.Glob(filepath.Join(cfg.Storage.RootDir, "staged", "humboldt", "*", testutil.FixtureBuoyHumboldt))
	return input, report.Outcome, outputs
}

func TestRunFiles_RetainInputFilesFlag(t *testing.T) {
	input, outcome, outputs := runLocal(t, true)

	testutil.AssertEqual(t, outcome, string(usecases.OutcomeSucceeded), "outcome")
	testutil.AssertEqual(t, len(outputs), 1, "input staged")
	_, err := os.Stat(input)
	testutil.AssertNoError(t, err, "input must survive when retention is configured")
}

func TestRunFiles_DeletesInputsByDefault(t *testing.T) {
	input, outcome, outputs := runLocal(t, false)

	testutil.AssertEqual(t, outcome, string(usecases.OutcomeSucceeded), "outcome")
	testutil.AssertEqual(t, len(outputs), 1, "input staged")
	_, err := os.Stat(input)
	testutil.AssertTrue(t, os.IsNotExist(err), "input should be removed after staging")
}

func TestNewBatchPool_IgnoresRootCancel(t *testing.T) {
	a := &app{cfg: config.DefaultConfig(), logger: logx.NewDiscard()}
	root, cancel := context.WithCancel(context.Background())
	pool := a.newBatchPool(root)
	pool.Start()
	cancel()

	results := pool.Submit([]workerpool.Task{workerpool.TaskFunc{
		Label: "drained",
		Fn:    func(ctx context.Context) error { return ctx.Err() },
	}})
	pool.Stop()

	testutil.AssertNoError(t, results[0].Error, "task context must not inherit shutdown")
}

func TestDrainTimeout(t *testing.T) {
	cfg := config.DefaultConfig()
	a := &app{cfg: cfg}
	testutil.AssertEqual(t, a.drainTimeout(), defaultDrainTimeout, "default")

	a.cfg.TimeoutS = 120
	testutil.AssertEqual(t, a.drainTimeout().Seconds(), 120.0, "batch timeout wins when larger")
}
