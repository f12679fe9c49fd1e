package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gofrs/flock"

	"easyapply-engine/internal/answer"
	"easyapply-engine/internal/apply"
	"easyapply-engine/internal/browser"
	"easyapply-engine/internal/config"
	"easyapply-engine/internal/engine"
	"easyapply-engine/internal/genai"
	"easyapply-engine/internal/login"
	"easyapply-engine/internal/scan"
	"easyapply-engine/internal/search"
	"easyapply-engine/internal/session"
	"easyapply-engine/internal/sink"
	"easyapply-engine/internal/store"
)

func main() {
	var (
		cfgFlag      = flag.String("config", "", "path to config.yml (defaults to <data-dir>/config.yml)")
		setPassword  = flag.Bool("set-password", false, "store the account password in the OS keychain and exit")
		validateOnly = flag.Bool("validate", false, "validate the config and exit")
	)
	flag.Parse()

	// Engine data dir: env override for packaged installs, else local folder.
	dataDir := os.Getenv("EASYAPPLY_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	cfgPath := *cfgFlag
	if cfgPath == "" {
		var err error
		cfgPath, err = config.EnsureUserConfig(dataDir, filepath.Join("config", "config.yml"))
		if err != nil {
			log.Fatalf("config bootstrap failed: %v", err)
		}
	}

	raw, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed (%s): %v", cfgPath, err)
	}
	cfg, v := config.NormalizeAndValidate(raw)
	for _, w := range v.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !v.OK() {
		for _, e := range v.Errors {
			log.Printf("[config] error: %s", e)
		}
		log.Fatalf("config is invalid (%s)", cfgPath)
	}
	if cfg.App.DataDir != "" {
		dataDir = cfg.App.DataDir
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			log.Fatal(err)
		}
	}
	if *validateOnly {
		log.Printf("[config] %s is valid", cfgPath)
		return
	}

	keyringAccount := login.AccountKey("account", cfg.Account.Email)
	if *setPassword {
		if err := storePassword(keyringAccount); err != nil {
			log.Fatalf("keyring store failed: %v", err)
		}
		log.Printf("[secrets] password stored for %s", cfg.Account.Email)
		return
	}

	// One engine per data dir; two instances would fight over the same
	// browser profile and history db.
	runLock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := runLock.TryLock()
	if err != nil {
		log.Fatalf("run lock: %v", err)
	}
	if !locked {
		log.Fatalf("another engine instance is already running in %s", dataDir)
	}
	defer runLock.Unlock()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, dataDir, keyringAccount); err != nil {
		log.Fatalf("engine: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config, dataDir, keyringAccount string) error {
	password := cfg.Account.Password
	if cfg.Account.UseKeyring {
		var err error
		password, err = login.GetSecret(keyringAccount)
		if err != nil {
			return fmt.Errorf("keyring password for %s: %w (run with -set-password first)", cfg.Account.Email, err)
		}
	}

	db, err := store.Open(filepath.Join(dataDir, "easyapply.db"))
	if err != nil {
		return fmt.Errorf("open history db: %w", err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		return fmt.Errorf("migrate history db: %w", err)
	}
	if n, err := store.CleanupOldFailures(db.Pool); err == nil && n > 0 {
		log.Printf("[store] pruned %d stale failed attempts", n)
	}

	b, err := browser.Launch(ctx, browser.Options{
		ProfileDir: filepath.Join(dataDir, "chrome_profile"),
		Headful:    !cfg.App.Headless,
	})
	if err != nil {
		return err
	}
	defer b.Close()

	sess := session.NewRod(b.Page())

	var mailbox *login.ChallengeMailbox
	if cfg.ChallengeEmail.Enabled {
		imapPassword, err := login.GetSecret(login.AccountKey("imap", cfg.ChallengeEmail.Username))
		if err != nil {
			log.Printf("[login] challenge mailbox disabled, no IMAP password in keychain: %v", err)
		} else {
			mailbox = &login.ChallengeMailbox{
				Host:     cfg.ChallengeEmail.IMAPHost,
				Port:     cfg.ChallengeEmail.IMAPPort,
				Username: cfg.ChallengeEmail.Username,
				Password: imapPassword,
				Mailbox:  cfg.ChallengeEmail.Mailbox,
			}
		}
	}

	lg := login.New(sess, login.Credentials{Email: cfg.Account.Email, Password: password}, mailbox)
	if err := lg.Run(ctx); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	var ai genai.Answerer = genai.Null{}
	if cfg.AI.APIKey != "" {
		llm, err := genai.NewChatModel(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL)
		if err != nil {
			return fmt.Errorf("chat model: %w", err)
		}
		ai = genai.NewModel(llm, cfg.AI.Profile, cfg.App.Debug)
		log.Printf("[genai] generative answering enabled (model %s)", cfg.AI.Model)
	}

	out := sink.NewWriter(dataDir)
	policy := answer.PolicyFromConfig(cfg)
	resolver := answer.NewResolver(policy, ai, out, cfg.App.Debug)
	filler := apply.NewFiller(sess, resolver, policy, apply.Uploads{
		Resume:      cfg.Uploads.Resume,
		CoverLetter: cfg.Uploads.CoverLetter,
	}, cfg.App.Debug)
	machine := apply.NewMachine(sess, filler, cfg.App.Debug)
	scanner := scan.NewScanner(sess, scan.NewSeenSet(), cfg)
	driver := search.NewDriver(sess, cfg, search.NewPacer())

	eng := engine.New(sess, cfg, driver, scanner, machine, ai, out, db)
	log.Printf("[engine] starting run with %d positions x %d locations",
		len(cfg.Search.Positions), len(cfg.Search.Locations))
	return eng.Run(ctx)
}

func storePassword(account string) error {
	fmt.Print("Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return err
	}
	return login.SetSecret(account, strings.TrimSpace(line))
}
