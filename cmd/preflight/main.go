// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/hamed0406/sitecheck/internal/config"
	"github.com/hamed0406/sitecheck/internal/report"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	if loaded, err := config.LoadDotEnv(); err != nil {
		fail(err.Error())
	} else if len(loaded) > 0 {
		ok("loaded " + strings.Join(loaded, ", "))
	}

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		var problems []string
		if j, isJoin := err.(interface{ Unwrap() []error }); isJoin {
			for _, e := range j.Unwrap() {
				problems = append(problems, e.Error())
			}
		} else {
			problems = append(problems, err.Error())
		}
		fail(strings.Join(problems, "; "))
	}

	if strings.TrimSpace(os.Getenv("TARGET_URLS")) == "" {
		warn("TARGET_URLS empty; the built-in default list will be checked.")
	}
	ok(fmt.Sprintf("%d target(s): %s", len(cfg.Targets), strings.Join(cfg.Targets, ", ")))
	ok(fmt.Sprintf("timeouts http=%s tls=%s, response threshold %s", cfg.HTTPTimeout, cfg.TLSTimeout, cfg.ResponseThreshold))

	if _, err := report.ParseStyle(cfg.ReportStyle); err != nil {
		fail(err.Error())
	}

	if cfg.CheckInterval == 0 {
		ok("single pass mode")
		if cfg.StatusAddr != "" {
			warn("STATUS_ADDR set but CHECK_INTERVAL_MS is 0; the status API stops when the pass ends.")
		}
	} else {
		ok("interval mode: every " + cfg.CheckInterval.String())
	}

	switch {
	case cfg.Email.Configured() && cfg.Email.Enabled:
		if cfg.Email.User == "" || cfg.Email.Password == "" {
			warn("SMTP_USER/SMTP_PASSWORD empty; mail will be sent without authentication.")
		}
		ok("email notifications to " + strings.Join(cfg.Email.To, ", "))
	case cfg.Email.Configured():
		warn("email configured but NOTIFY_EMAIL_ENABLED is false; sending will be skipped.")
	}
	if cfg.SlackWebhook != "" {
		ok("slack notifications enabled")
	}

	ok("preflight passed")
}
