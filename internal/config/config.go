package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultTargets is used when TARGET_URLS is unset.
var DefaultTargets = []string{
	"https://www.amazon.com",
	"https://www.geeksforgeeks.org",
	"https://www.javatpoint.com",
	"https://www.flipkart.com",
}

type Config struct {
	Targets           []string      // URLs checked on every pass, in report order
	LogDir            string        // logs directory
	LogLevel          string        // zap level name
	HTTPTimeout       time.Duration // availability check deadline
	TLSTimeout        time.Duration // certificate check deadline
	ResponseThreshold time.Duration // response time must be strictly below this
	MaxConcurrent     int           // 1 = URLs are checked one after another
	CheckInterval     time.Duration // 0 = single pass then exit
	ReportStyle       string        // "plain" or "pretty"

	StatusAddr  string // empty disables the status API
	StatusRPM   int
	StatusBurst int

	SlackWebhook string
	Email        Email
}

// Email holds SMTP settings. Secrets are only read from the environment.
type Email struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	From     string
	To       []string
}

// Configured reports whether enough is set to attempt delivery.
func (e Email) Configured() bool {
	return e.Host != "" && e.From != "" && len(e.To) > 0
}

// LoadDotEnv loads .env style files that exist. Variables already present
// in the environment win.
func LoadDotEnv(files ...string) ([]string, error) {
	if len(files) == 0 {
		files = []string{".env", ".env.local"}
	}
	var loaded []string
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return loaded, fmt.Errorf("load %s: %w", f, err)
		}
		loaded = append(loaded, f)
	}
	return loaded, nil
}

func FromEnv() Config {
	targets := splitList(os.Getenv("TARGET_URLS"))
	if len(targets) == 0 {
		targets = append([]string(nil), DefaultTargets...)
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	style := os.Getenv("REPORT_STYLE")
	if style == "" {
		style = "plain"
	}

	smtpPort := os.Getenv("SMTP_PORT")
	if smtpPort == "" {
		smtpPort = "587"
	}

	return Config{
		Targets:           targets,
		LogDir:            logDir,
		LogLevel:          strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))),
		HTTPTimeout:       envMillis("HTTP_TIMEOUT_MS", 10*time.Second),
		TLSTimeout:        envMillis("TLS_TIMEOUT_MS", 10*time.Second),
		ResponseThreshold: envMillis("RESPONSE_THRESHOLD_MS", 5*time.Second),
		MaxConcurrent:     envInt("MAX_CONCURRENT_CHECKS", 1, 1),
		CheckInterval:     envMillisAllowZero("CHECK_INTERVAL_MS", 0),
		ReportStyle:       style,

		StatusAddr:  strings.TrimSpace(os.Getenv("STATUS_ADDR")),
		StatusRPM:   envInt("STATUS_RPM", 120, 0),
		StatusBurst: envInt("STATUS_BURST", 60, 1),

		SlackWebhook: strings.TrimSpace(os.Getenv("SLACK_WEBHOOK_URL")),
		Email: Email{
			Enabled:  envBool("NOTIFY_EMAIL_ENABLED", false),
			Host:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
			Port:     smtpPort,
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     strings.TrimSpace(os.Getenv("SMTP_FROM")),
			To:       splitList(os.Getenv("NOTIFY_EMAIL_TO")),
		},
	}
}

// Validate reports every problem that would make a pass meaningless.
func (c Config) Validate() error {
	var errs []error
	if len(c.Targets) == 0 {
		errs = append(errs, errors.New("no target URLs"))
	}
	for _, t := range c.Targets {
		u, err := url.ParseRequestURI(t)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Errorf("target %q is not an http(s) URL", t))
		}
	}
	if c.HTTPTimeout <= 0 || c.TLSTimeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	if c.ResponseThreshold <= 0 {
		errs = append(errs, errors.New("response threshold must be positive"))
	}
	if c.Email.Enabled && !c.Email.Configured() {
		errs = append(errs, errors.New("email enabled but SMTP_HOST, SMTP_FROM or NOTIFY_EMAIL_TO is empty"))
	}
	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envMillis(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}

func envMillisAllowZero(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}

func envInt(key string, def, floor int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= floor {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
