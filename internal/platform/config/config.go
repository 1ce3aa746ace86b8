// internal/platform/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"ingestrouter/internal/platform/errors"
)

// Storage backends soportados.
const (
	BackendS3         = "s3"
	BackendFilesystem = "filesystem"
)

type Config struct {
	// App
	Files        []string // archivos locales (argumentos posicionales), un batch
	EventFiles   []string // notificaciones JSON, un batch por archivo
	Subscribe    bool     // escuchar notificaciones en NATS
	ListRules    bool
	Classify     []string // dry-run: clasificar nombres sin ejecutar
	Workers      int
	TimeoutS     int // segundos por batch (0 = sin timeout)
	PrintVersion bool
	PrintHelp    bool

	// Rutas
	PipelinesDir string
	RulesFile    string
	CacheSize    int

	Log     Log
	Storage Storage
	NATS    NATS
	Output  Output

	MetricsAddr string
}

type Log struct {
	Level  string
	Format string
}

type Storage struct {
	Backend          string
	Bucket           string // bucket (s3) donde se escriben las salidas
	RootDir          string // raíz del backend filesystem
	RetainInputFiles bool
	Retries          int // reintentos por llamada al backend s3 (0 = sin retry)
	S3               S3
}

type S3 struct {
	Endpoint  string
	Region    string
	AccessKey string `json:"-"`
	SecretKey string `json:"-"`
	UseSSL    bool
}

type NATS struct {
	URL     string
	Subject string
	Queue   string
	Rate    float64 // batches por segundo; 0 = sin límite
}

type Output struct {
	Format string // table | json
	Dir    string // si no está vacío, se guarda además un reporte JSON
}

// DefaultConfig retorna una configuración por defecto.
func DefaultConfig() Config {
	return Config{
		Workers:  4,
		TimeoutS: 0,

		PipelinesDir: "pipelines",
		CacheSize:    1024,

		Log: Log{
			Level:  "INFO",
			Format: "text",
		},

		Storage: Storage{
			Backend: BackendS3,
			RootDir: "storage",
			Retries: 2,
			S3: S3{
				Endpoint: "s3.amazonaws.com",
				Region:   "us-west-2",
				UseSSL:   true,
			},
		},

		NATS: NATS{
			URL:     "nats://127.0.0.1:4222",
			Subject: "ingest.notifications",
			Queue:   "ingestrouter",
		},

		Output: Output{
			Format: "table",
		},
	}
}

// Load inicializa la configuración: .env -> defaults -> ENV -> FLAGS (flags tienen prioridad).
func Load() (Config, error) {
	return load(pflag.CommandLine, os.Args[1:])
}

func load(flags *pflag.FlagSet, args []string) (Config, error) {
	if err := loadDotEnv(getenv("DOTENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()

	// Cargar desde ENV
	loadFromEnv(&cfg)

	// Parsear flags (overrides ENV)
	if err := loadFromFlags(flags, args, &cfg); err != nil {
		return Config{}, err
	}

	// Normalizar
	normalize(&cfg)

	return cfg, nil
}

// loadDotEnv carga el archivo .env si existe; las variables ya definidas no se pisan.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Wrapf(err, "load %s", path)
	}
	return nil
}

// loadFromEnv carga configuración desde variables de entorno.
func loadFromEnv(cfg *Config) {
	if v := getenv("LOG_LEVEL", ""); v != "" {
		cfg.Log.Level = v
	}
	if v := getenv("LOG_FORMAT", ""); v != "" {
		cfg.Log.Format = v
	}

	if v := getenv("STORAGE_BUCKET", ""); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := getenv("STORAGE_BACKEND", ""); v != "" {
		cfg.Storage.Backend = v
	}
	if v := getenv("ROOT_DIR", ""); v != "" {
		cfg.Storage.RootDir = v
	}
	if v := getenv("RETAIN_INPUT_FILES", ""); v != "" {
		cfg.Storage.RetainInputFiles = parseBool(v)
	}

	if v := getenv("STORAGE_RETRIES", ""); v != "" {
		cfg.Storage.Retries = parseInt(v, cfg.Storage.Retries)
	}

	// S3
	if v := getenv("S3_ENDPOINT", ""); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
	if v := getenv("S3_REGION", ""); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := getenv("S3_ACCESS_KEY", ""); v != "" {
		cfg.Storage.S3.AccessKey = v
	}
	if v := getenv("S3_SECRET_KEY", ""); v != "" {
		cfg.Storage.S3.SecretKey = v
	}
	if v := getenv("S3_USE_SSL", ""); v != "" {
		cfg.Storage.S3.UseSSL = parseBool(v)
	}

	if v := getenv("PIPELINES_DIR", ""); v != "" {
		cfg.PipelinesDir = v
	}
	if v := getenv("RULES_FILE", ""); v != "" {
		cfg.RulesFile = v
	}
	if v := getenv("CLASSIFY_CACHE_SIZE", ""); v != "" {
		cfg.CacheSize = parseInt(v, cfg.CacheSize)
	}

	// NATS
	if v := getenv("NATS_URL", ""); v != "" {
		cfg.NATS.URL = v
	}
	if v := getenv("NATS_SUBJECT", ""); v != "" {
		cfg.NATS.Subject = v
	}
	if v := getenv("NATS_QUEUE", ""); v != "" {
		cfg.NATS.Queue = v
	}
	if v := getenv("NATS_RATE", ""); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			cfg.NATS.Rate = f
		}
	}

	if v := getenv("REPORT_DIR", ""); v != "" {
		cfg.Output.Dir = v
	}
	if v := getenv("METRICS_ADDR", ""); v != "" {
		cfg.MetricsAddr = v
	}
	if v := getenv("WORKERS", ""); v != "" {
		cfg.Workers = parseInt(v, cfg.Workers)
	}
	if v := getenv("BATCH_TIMEOUT", ""); v != "" {
		cfg.TimeoutS = parseInt(v, cfg.TimeoutS)
	}
}

// loadFromFlags parsea flags de CLI.
func loadFromFlags(flags *pflag.FlagSet, args []string, cfg *Config) error {
	flags.StringSliceVarP(&cfg.EventFiles, "event", "e", cfg.EventFiles, "Archivo JSON con una notificación S3 (repetible)")
	flags.BoolVar(&cfg.Subscribe, "nats", cfg.Subscribe, "Escuchar notificaciones en NATS")
	flags.BoolVar(&cfg.ListRules, "list-rules", cfg.ListRules, "Listar reglas de sitio y pipeline y salir")
	flags.StringSliceVar(&cfg.Classify, "classify", cfg.Classify, "Clasificar nombres de archivo sin ejecutar (repetible)")
	flags.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "Batches concurrentes")
	flags.IntVarP(&cfg.TimeoutS, "timeout", "T", cfg.TimeoutS, "Timeout por batch en segundos (0 = sin timeout)")

	flags.StringVar(&cfg.PipelinesDir, "pipelines-dir", cfg.PipelinesDir, "Raíz de configuración de pipelines")
	flags.StringVar(&cfg.RulesFile, "rules", cfg.RulesFile, "Archivo YAML de reglas (vacío = reglas integradas)")

	flags.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Nivel de log (DEBUG, INFO, WARN, ERROR)")
	flags.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "Formato de log (text, json)")

	flags.StringVar(&cfg.Storage.Backend, "storage", cfg.Storage.Backend, "Backend de storage (s3, filesystem)")
	flags.StringVar(&cfg.Storage.Bucket, "bucket", cfg.Storage.Bucket, "Bucket de salida")
	flags.StringVar(&cfg.Storage.RootDir, "root-dir", cfg.Storage.RootDir, "Raíz del backend filesystem")
	flags.BoolVar(&cfg.Storage.RetainInputFiles, "retain-input-files", cfg.Storage.RetainInputFiles, "No borrar los archivos de entrada")
	flags.IntVar(&cfg.Storage.Retries, "storage-retries", cfg.Storage.Retries, "Reintentos por llamada al backend s3")

	flags.StringVar(&cfg.NATS.URL, "nats-url", cfg.NATS.URL, "URL del servidor NATS")
	flags.StringVar(&cfg.NATS.Subject, "nats-subject", cfg.NATS.Subject, "Subject de notificaciones")
	flags.Float64Var(&cfg.NATS.Rate, "nats-rate", cfg.NATS.Rate, "Máximo de batches por segundo (0 = sin límite)")

	flags.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Dirección para exponer /metrics (vacío = desactivado)")
	flags.StringVarP(&cfg.Output.Format, "output", "o", cfg.Output.Format, "Formato de salida (table, json)")
	flags.StringVar(&cfg.Output.Dir, "report-dir", cfg.Output.Dir, "Directorio donde guardar el reporte JSON")

	flags.BoolVarP(&cfg.PrintVersion, "version", "v", false, "Imprimir versión y salir")
	flags.BoolVarP(&cfg.PrintHelp, "help", "h", false, "Mostrar ayuda y salir")

	if err := flags.Parse(args); err != nil {
		return errors.Wrap(errors.Join(errors.ErrInvalidInput, err), "parse flags")
	}
	cfg.Files = append(cfg.Files, flags.Args()...)
	return nil
}

func normalize(c *Config) {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.TimeoutS < 0 {
		c.TimeoutS = 0
	}
	if c.NATS.Rate < 0 {
		c.NATS.Rate = 0
	}
	if c.Storage.Retries < 0 {
		c.Storage.Retries = 0
	}
	if c.CacheSize < 0 {
		c.CacheSize = 0
	}
	if c.PipelinesDir == "" {
		c.PipelinesDir = "pipelines"
	}
}

// Validate verifica los valores obligatorios para el modo seleccionado.
func (c Config) Validate() error {
	if c.ListRules || len(c.Classify) > 0 {
		return nil
	}

	switch c.Storage.Backend {
	case BackendS3:
		if c.Storage.Bucket == "" {
			return errors.Wrap(errors.ErrMissingConfig, "STORAGE_BUCKET is required for the s3 backend")
		}
	case BackendFilesystem:
		if c.Storage.RootDir == "" {
			return errors.Wrap(errors.ErrMissingConfig, "ROOT_DIR is required for the filesystem backend")
		}
	default:
		return errors.Wrapf(errors.ErrInvalidConfig, "unknown storage backend %q", c.Storage.Backend)
	}

	if c.Output.Format != "table" && c.Output.Format != "json" {
		return errors.Wrapf(errors.ErrInvalidConfig, "unknown output format %q", c.Output.Format)
	}
	if c.Subscribe && c.NATS.Subject == "" {
		return errors.Wrap(errors.ErrMissingConfig, "NATS_SUBJECT is required with --nats")
	}
	return nil
}

// ToJSON serializa la configuración a JSON (útil para debugging). Las credenciales se omiten.
func (c Config) ToJSON() (string, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Timeout devuelve un time.Duration útil si prefieres trabajar con duración.
func (c Config) Timeout() time.Duration {
	if c.TimeoutS <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutS) * time.Second
}

// Summary resume la configuración efectiva para el log de arranque.
func (c Config) Summary() []any {
	return []any{
		"storage_backend", c.Storage.Backend,
		"storage_bucket", c.Storage.Bucket,
		"retain_input_files", c.Storage.RetainInputFiles,
		"log_level", c.Log.Level,
		"pipelines_dir", c.PipelinesDir,
		"rules_file", c.RulesFile,
		"workers", c.Workers,
	}
}

// Helpers

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(v string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return i
}

// String implementa fmt.Stringer para logs de depuración.
func (s Storage) String() string {
	if s.Backend == BackendFilesystem {
		return fmt.Sprintf("filesystem:%s", s.RootDir)
	}
	return fmt.Sprintf("s3://%s", s.Bucket)
}
