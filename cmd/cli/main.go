package main

import (
	"context"
	"flag"
	"log"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"syscall"

	"solveit/internal/api"
	"solveit/internal/config"
	"solveit/internal/logger"
	"solveit/internal/terminal"

	"github.com/chzyer/readline"
)

func main() {
	envFile := flag.String("env", config.DefaultEnvFile, "dotenv file to load")
	baseURL := flag.String("api", "", "API base URL (overrides API_BASE_URL)")
	history := flag.String("history", "", "readline history file")
	flag.Parse()

	cfg, err := config.LoadFile(*envFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *baseURL != "" {
		cfg.APIBaseURL = *baseURL
	}

	// Logs go to stderr so they do not interleave with the REPL.
	lg := logger.NewWithOutput("cli", cfg.LogLevel, os.Stderr)

	jar, err := cookiejar.New(nil)
	if err != nil {
		log.Fatalf("Failed to create cookie jar: %v", err)
	}
	client := api.New(cfg.APIBaseURL, cfg.HTTPTimeout(), api.WithCookieJar(jar), api.WithLogger(lg))

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "solveit> ",
		HistoryFile:     *history,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		log.Fatalf("Failed to initialize readline: %v", err)
	}
	defer rl.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	session := terminal.New(terminal.Options{
		Client:         client,
		Reader:         rl,
		Output:         rl.Stdout(),
		Logger:         lg,
		ExportDir:      cfg.ExportDir,
		MessageTimeout: cfg.MessageTimeout(),
		RecentWindow:   cfg.RecentWindow(),
	})

	lg.Component(nil).WithField("api", cfg.APIBaseURL).Info("terminal client starting")
	if err := session.Run(ctx); err != nil {
		log.Fatalf("Session ended with error: %v", err)
	}
}
