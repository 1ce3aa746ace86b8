// internal/pipelines/ingest/config.go
package ingest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"ingestrouter/internal/platform/errors"
	"ingestrouter/internal/platform/registry"
)

// Spec es la parte de pipeline_config_<site>.yml que usa el ingest.
type Spec struct {
	LocationID  string
	DatasetName string
	Qualifier   string
	Temporal    string
	DataLevel   string
	Attributes  map[string]string
}

// Datastream retorna "<location>.<dataset>[-<qualifier>][-<temporal>].<level>".
func (s Spec) Datastream() string {
	name := s.DatasetName
	if s.Qualifier != "" {
		name += "-" + s.Qualifier
	}
	if s.Temporal != "" {
		name += "-" + s.Temporal
	}
	return fmt.Sprintf("%s.%s.%s", s.LocationID, name, s.DataLevel)
}

// StorageSpec es la parte de storage_config.yml que usa el ingest.
type StorageSpec struct {
	RetainInputFiles bool
	OutputPrefix     string
}

var dataLevels = []string{"00", "a0", "a1", "a2", "b0", "b1", "c0", "c1"}

// LoadSpec lee y valida la configuración del pipeline.
func LoadSpec(path string) (Spec, error) {
	raw, err := readYAML(path)
	if err != nil {
		return Spec{}, err
	}

	section := registry.GetMapConfig(raw, "pipeline")
	if section == nil {
		return Spec{}, errors.Wrapf(errors.ErrInvalidConfig, "%s: missing 'pipeline' section", path)
	}

	spec := Spec{
		LocationID:  registry.GetStringConfig(section, "location_id", ""),
		DatasetName: registry.GetStringConfig(section, "dataset_name", ""),
		Qualifier:   registry.GetStringConfig(section, "qualifier", ""),
		Temporal:    registry.GetStringConfig(section, "temporal", ""),
		DataLevel:   registry.GetStringConfig(section, "data_level", "a1"),
		Attributes:  map[string]string{},
	}

	if err := registry.ValidateRequiredString("pipeline.location_id", spec.LocationID); err != nil {
		return Spec{}, errors.Wrapf(errors.Join(errors.ErrInvalidConfig, err), "%s", path)
	}
	if err := registry.ValidateRequiredString("pipeline.dataset_name", spec.DatasetName); err != nil {
		return Spec{}, errors.Wrapf(errors.Join(errors.ErrInvalidConfig, err), "%s", path)
	}
	if err := registry.ValidateEnum("pipeline.data_level", spec.DataLevel, dataLevels); err != nil {
		return Spec{}, errors.Wrapf(errors.Join(errors.ErrInvalidConfig, err), "%s", path)
	}

	if def := registry.GetMapConfig(raw, "dataset_definition"); def != nil {
		for k, v := range registry.GetMapConfig(def, "attributes") {
			spec.Attributes[k] = fmt.Sprint(v)
		}
	}
	return spec, nil
}

// LoadStorageSpec lee storage_config.yml. Las variables ${VAR} se expanden
// desde el entorno antes de decodificar.
func LoadStorageSpec(path string) (StorageSpec, error) {
	raw, err := readYAML(path)
	if err != nil {
		return StorageSpec{}, err
	}

	section := registry.GetMapConfig(raw, "storage")
	if section == nil {
		return StorageSpec{}, errors.Wrapf(errors.ErrInvalidConfig, "%s: missing 'storage' section", path)
	}
	params := registry.GetMapConfig(section, "parameters")

	return StorageSpec{
		RetainInputFiles: registry.GetBoolConfig(params, "retain_input_files", false),
		OutputPrefix:     strings.Trim(registry.GetStringConfig(params, "output_prefix", ""), "/"),
	}, nil
}

func readYAML(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &raw); err != nil {
		return nil, errors.Wrapf(errors.Join(errors.ErrInvalidConfig, err), "parse %s", path)
	}
	if raw == nil {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "%s is empty", path)
	}
	return raw, nil
}
