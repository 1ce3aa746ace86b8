// internal/pipelines/ingest/checks.go
package ingest

import (
	"bytes"
	"fmt"

	"ingestrouter/internal/platform/errors"
)

// ErrBadHeader indica que el contenido no corresponde a la extensión.
var ErrBadHeader = errors.New("unexpected file header")

// Magic valida que el contenido comience con alguna de las firmas indicadas.
func Magic(signatures ...[]byte) func(name string, head []byte) error {
	return func(name string, head []byte) error {
		for _, sig := range signatures {
			if bytes.HasPrefix(head, sig) {
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrBadHeader, name)
	}
}

// NonEmpty rechaza archivos vacíos.
func NonEmpty(name string, head []byte) error {
	if len(head) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrBadHeader, name)
	}
	return nil
}

// BySuffix elige la validación según el sufijo del nombre; los sufijos
// sin entrada no se validan.
func BySuffix(checks map[string]func(string, []byte) error) func(name string, head []byte) error {
	return func(name string, head []byte) error {
		for suffix, check := range checks {
			if hasSuffixFold(name, suffix) {
				return check(name, head)
			}
		}
		return nil
	}
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && bytes.EqualFold([]byte(s[len(s)-len(suffix):]), []byte(suffix))
}
