// internal/core/domain/fileref_test.go
package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileReference_String(t *testing.T) {
	assert.Equal(t, "s3://raw/incoming/a.zip", NewS3Reference("raw", "incoming/a.zip").String())
	assert.Equal(t, "s3://raw/a.zip", NewS3Reference("raw", "/a.zip").String(), "leading slash trimmed")
	assert.Equal(t, "data/a.zip", NewLocalReference("data/a.zip").String())
}

func TestFileReference_Name(t *testing.T) {
	tests := []struct {
		name string
		ref  FileReference
		want string
	}{
		{"s3 nested", NewS3Reference("raw", "a/b/buoy.z05.00.20201201.000000.zip"), "buoy.z05.00.20201201.000000.zip"},
		{"s3 flat", NewS3Reference("raw", "x.imu.bin"), "x.imu.bin"},
		{"s3 empty key", NewS3Reference("raw", ""), ""},
		{"local", NewLocalReference("/tmp/in/lidar.z06.sta.7z"), "lidar.z06.sta.7z"},
		{"local empty", NewLocalReference(""), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ref.Name())
		})
	}
}

func TestFileReference_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ref     FileReference
		wantErr bool
	}{
		{"s3 ok", NewS3Reference("raw", "a.zip"), false},
		{"s3 missing bucket", NewS3Reference(" ", "a.zip"), true},
		{"s3 missing key", NewS3Reference("raw", ""), true},
		{"local ok", NewLocalReference("a.zip"), false},
		{"local missing path", NewLocalReference(""), true},
		{"unknown origin", FileReference{Origin: "ftp", Path: "a"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ref.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFileReference)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileStrings_PreservesOrder(t *testing.T) {
	files := []FileReference{NewS3Reference("raw", "b.zip"), NewLocalReference("a.zip")}
	assert.Equal(t, []string{"s3://raw/b.zip", "a.zip"}, FileStrings(files))
	assert.Empty(t, FileStrings(nil))
}

func TestClassification(t *testing.T) {
	c := Classification{
		Site:           "humboldt",
		Kind:           "a2e_waves_ingest",
		SiteCandidates: []SiteKey{"humboldt"},
		KindCandidates: []PipelineKind{"a2e_waves_ingest", "a2e_buoy_ingest"},
	}
	assert.True(t, c.Matched())
	assert.True(t, c.Ambiguous())

	assert.False(t, Classification{Site: "humboldt"}.Matched(), "kind missing")
	assert.False(t, Classification{Kind: "a2e_imu_ingest"}.Matched(), "site missing")
	assert.False(t, Classification{}.Ambiguous())
}

func TestErrors(t *testing.T) {
	cause := errors.New("stat failed")

	cnf := &ConfigNotFoundError{Kind: "a2e_buoy_ingest", Site: "morro", Path: "/x.yml", Err: cause}
	assert.ErrorIs(t, cnf, ErrConfigNotFound)
	assert.ErrorIs(t, cnf, cause)
	assert.Contains(t, cnf.Error(), "/x.yml")
	assert.Equal(t, "ConfigNotFound", cnf.Category())

	lookup := &LookupError{Kind: "nope"}
	assert.ErrorIs(t, lookup, ErrPipelineNotRegistered)
	assert.Equal(t, "LookupError", lookup.Category())

	ce := &ConstructionError{Kind: "a2e_imu_ingest", Err: cause}
	assert.ErrorIs(t, ce, ErrPipelineConstruction)
	assert.ErrorIs(t, ce, cause)
	assert.Equal(t, "ConstructionError", ce.Category())
}

func TestExecutionRecord_IsError(t *testing.T) {
	assert.True(t, ExecutionRecord{State: StateError}.IsError())
	assert.False(t, ExecutionRecord{State: StateSkipped}.IsError())
}
