package app

import (
	"fmt"
	"io"
	"log"
	"os"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/data/binding"
	"github.com/google/uuid"

	"yashubustudio/labmatch/labmatch"
)

const (
	fyneAppID     = "yashubustudio.labmatch"
	prefUserIDKey = "userId"
)

// Run initializes required resources and starts the desktop UI.
func Run(configPath string) error {
	cfg, err := labmatch.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a := fyneapp.NewWithID(fyneAppID)
	ensureUserID(a.Preferences(), &cfg)

	logBind := binding.NewString()
	logs := newLogCapture(logBind, logLineLimit)
	logs.start()
	defer logs.stop()
	logger := log.New(io.MultiWriter(os.Stdout, logs), "", log.LstdFlags)

	client := labmatch.NewClient(cfg.APIURL, labmatch.WithTimeout(cfg.RequestTimeout()), labmatch.WithLogger(logger))
	liked := labmatch.NewLikedStore()
	discovery := labmatch.NewDiscovery(client, liked, cfg, logger)
	defer discovery.Close()

	u := buildUI(a, uiDeps{
		cfg:       cfg,
		client:    client,
		discovery: discovery,
		liked:     liked,
		logger:    logger,
		logBind:   logBind,
	})
	defer u.close()

	health := labmatch.NewHealthMonitor(client, cfg.HealthInterval(), func(h labmatch.Health) {
		fyne.Do(func() { u.setHealth(h) })
	}, logger)
	if err := health.Start(); err != nil {
		logger.Printf("health monitor disabled: %v", err)
	}
	defer health.Stop()

	logger.Printf("backend %s, user %s", client.BaseURL(), cfg.UserID)
	u.w.ShowAndRun()
	return nil
}

// ensureUserID keeps one anonymous id per installation unless the config
// pins one.
func ensureUserID(prefs fyne.Preferences, cfg *labmatch.Config) {
	if cfg.UserID != "" {
		return
	}
	if id := prefs.String(prefUserIDKey); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			cfg.UserID = id
			return
		}
	}
	cfg.EnsureUserID()
	prefs.SetString(prefUserIDKey, cfg.UserID)
}
