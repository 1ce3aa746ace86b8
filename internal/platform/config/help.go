// internal/platform/config/help.go
package config

import (
	"fmt"
	"os"
	"runtime"
)

const helpText = `
ingestrouter - routes newly arrived data files to their ingest pipeline

USAGE:
  ingestrouter [options] <file> [file...]
  ingestrouter --event notification.json [--event other.json]
  ingestrouter --nats
  ingestrouter --classify <filename> | --list-rules

  Positional files form a single batch: the first file selects the site and
  pipeline, every file is handed to that pipeline in the given order.

CORE OPTIONS:
  -e, --event string         S3/MinIO notification JSON file, one batch per file (repeatable)
      --nats                 Subscribe to notifications on NATS
  -w, --workers int          Concurrent batches for --event and --nats (default: 4)
  -T, --timeout int          Per-batch timeout in seconds, 0=none (default: 0)
      --pipelines-dir string Pipeline configuration root (default: "pipelines")
      --rules string         YAML rules file (default: built-in rules)

STORAGE OPTIONS:
      --storage string       Storage backend: s3 | filesystem (default: "s3")
      --bucket string        Output bucket (required for s3)
      --root-dir string      Filesystem backend root (default: "storage")
      --retain-input-files   Keep input files after a successful run
      --storage-retries int  Retries per s3 call, with exponential backoff (default: 2)

NATS OPTIONS:
      --nats-url string      Server URL (default: "nats://127.0.0.1:4222")
      --nats-subject string  Notification subject (default: "ingest.notifications")
      --nats-rate float      Max batches started per second, 0=unlimited (default: 0)

OUTPUT OPTIONS:
  -o, --output string        Report format: table | json (default: "table")
      --report-dir string    Also write a timestamped JSON report into this directory
      --log-level string     DEBUG | INFO | WARN | ERROR (default: "INFO")
      --log-format string    text | json (default: "text")
      --metrics-addr string  Serve Prometheus /metrics on this address

INSPECTION:
      --classify string      Print the site and pipeline for a filename and exit (repeatable)
      --list-rules           Print the site and pipeline rules in match order and exit

INFO:
  -v, --version              Print version information and exit
  -h, --help                 Show this help message

ENVIRONMENT VARIABLES:
  STORAGE_BUCKET             Output bucket
  STORAGE_BACKEND            s3 | filesystem
  ROOT_DIR                   Filesystem backend root
  RETAIN_INPUT_FILES=true    Keep input files
  STORAGE_RETRIES            Retries per s3 call
  LOG_LEVEL, LOG_FORMAT      Logging
  PIPELINES_DIR, RULES_FILE  Configuration locations
  S3_ENDPOINT, S3_REGION, S3_ACCESS_KEY, S3_SECRET_KEY, S3_USE_SSL
  NATS_URL, NATS_SUBJECT, NATS_QUEUE, NATS_RATE
  METRICS_ADDR, WORKERS, BATCH_TIMEOUT, REPORT_DIR

  A .env file in the working directory (or DOTENV_FILE) is loaded first.
  CLI flags override environment variables.

EXAMPLES:
  Classify without running:
    ingestrouter --classify buoy.z05.00.20201201.000000.zip

  Process a local batch against a filesystem store:
    ingestrouter --storage filesystem --root-dir ./data buoy.z05.00.20201201.000000.zip

  Replay stored notifications:
    ingestrouter --bucket a2e-processed -e events/0001.json -e events/0002.json
`

// PrintHelp prints the custom help message and exits.
func PrintHelp() {
	fmt.Fprint(os.Stdout, helpText)
	os.Exit(0)
}

// PrintVersion prints version information and exits.
func PrintVersion(version, commit, date string) {
	fmt.Printf("ingestrouter %s\n", version)
	fmt.Printf("  Commit:  %s\n", commit)
	fmt.Printf("  Built:   %s\n", date)
	fmt.Printf("  Go:      %s\n", getGoVersion())
	os.Exit(0)
}

func getGoVersion() string {
	return runtime.Version()
}
