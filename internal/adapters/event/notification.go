// internal/adapters/event/notification.go
package event

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/platform/errors"
)

// Notification es una notificación de objeto nuevo con el formato de eventos
// de S3 (también emitido por MinIO).
type Notification struct {
	Records []Record `json:"Records"`
}

// Record describe un objeto notificado.
type Record struct {
	EventName string `json:"eventName,omitempty"`
	EventTime string `json:"eventTime,omitempty"`
	S3        struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key  string `json:"key"`
			Size int64  `json:"size,omitempty"`
		} `json:"object"`
	} `json:"s3"`
}

// Parse decodifica una notificación JSON.
func Parse(data []byte) (Notification, error) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return Notification{}, errors.Wrap(errors.Join(errors.ErrInvalidInput, err), "decode notification")
	}
	if n.Records == nil {
		return Notification{}, errors.Wrap(errors.ErrInvalidInput, "notification has no Records field")
	}
	return n, nil
}

// Files convierte los registros en referencias, en el mismo orden.
// Las claves llegan codificadas como query string ('+' = espacio).
func (n Notification) Files() ([]domain.FileReference, error) {
	files := make([]domain.FileReference, 0, len(n.Records))
	for i, r := range n.Records {
		bucket := strings.TrimSpace(r.S3.Bucket.Name)
		if bucket == "" {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "record %d: missing bucket name", i)
		}
		ref := domain.NewS3Reference(bucket, decodeKey(r.S3.Object.Key))
		if err := ref.Validate(); err != nil {
			return nil, errors.Wrapf(errors.Join(errors.ErrInvalidInput, err), "record %d", i)
		}
		files = append(files, ref)
	}
	return files, nil
}

// decodeKey decodifica una clave con '+' como espacio. Las secuencias '%'
// inválidas se conservan literalmente.
func decodeKey(raw string) string {
	if key, err := url.QueryUnescape(raw); err == nil {
		return key
	}

	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(raw):
			if v, err := strconv.ParseUint(raw[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 2
				continue
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// NewNotification construye una notificación para las referencias dadas (tests, réplica).
func NewNotification(files ...domain.FileReference) Notification {
	n := Notification{Records: make([]Record, len(files))}
	for i, f := range files {
		n.Records[i].EventName = "s3:ObjectCreated:Put"
		n.Records[i].S3.Bucket.Name = f.Bucket
		n.Records[i].S3.Object.Key = url.QueryEscape(f.Key)
	}
	return n
}
