// internal/testutil/fixtures.go
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Nombres de archivo tal como llegan de los sensores de cada sitio.
const (
	FixtureBuoyHumboldt  = "buoy.z05.00.20201201.000000.zip"
	FixtureBuoyMorro     = "buoy.z06.00.20201201.000000.zip"
	FixtureIMUHumboldt   = "buoy.z05.00.20201201.000000.imu.bin"
	FixtureIMUMorro      = "buoy.z06.00.20201201.000000.imu.bin"
	FixtureLidarHumboldt = "lidar.z05.00.20201201.000000.sta.7z"
	FixtureLidarRawSTA   = "lidar.z06.00.20201201.000000.sta"
	FixtureWavesHumboldt = "buoy.z05.00.20201201.000000.waves.csv"
	FixtureWavesMorro    = "buoy.z06.00.20201201.000000.waves.csv"
)

// FixtureUnmatched contiene nombres que no corresponden a ningún pipeline o sitio.
var FixtureUnmatched = []string{
	"",
	"readme.txt",
	FixtureLidarRawSTA,
	"x.imu.bin",
}

// WritePipelineTree crea el layout de configuración esperado por pipeconf
// (<root>/<kind>/config/pipeline_config_<site>.yml y <root>/config/storage_config.yml)
// y retorna el directorio raíz.
func WritePipelineTree(t *testing.T, pipelineYAML, storageYAML string, pairs ...[2]string) string {
	t.Helper()

	root := t.TempDir()
	WriteFile(t, filepath.Join(root, "config", "storage_config.yml"), storageYAML)
	for _, p := range pairs {
		kind, site := p[0], p[1]
		WriteFile(t, filepath.Join(root, kind, "config", "pipeline_config_"+site+".yml"), pipelineYAML)
	}
	return root
}

// WriteFile escribe content en path creando los directorios intermedios.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
