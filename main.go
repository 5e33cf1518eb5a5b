package main

import (
	"embed"
	"fmt"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"

	"gitgotchi/internal/config"
	"gitgotchi/internal/logging"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config, using defaults: %v\n", err)
		cfg = config.Default()
	}
	verr := cfg.Validate()

	if err := logging.Init(cfg.Log); err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
	}
	if verr != nil {
		logging.Warn("Config values replaced with defaults", "warnings", verr.Warnings)
	}

	// Create an instance of the app structure
	app := NewApp(cfg)

	transparent := &options.RGBA{R: 0, G: 0, B: 0, A: 0}

	err = wails.Run(&options.App{
		Title:            cfg.Window.Title,
		Width:            cfg.Window.Width,
		Height:           cfg.Window.Height,
		Frameless:        true,
		AlwaysOnTop:      true,
		DisableResize:    true,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: transparent,
		OnStartup:        app.startup,
		OnDomReady:       app.domReady,
		OnShutdown:       app.shutdown,
		Bind: []interface{}{
			app,
		},
		Mac: &mac.Options{
			TitleBar:             mac.TitleBarHiddenInset(),
			WebviewIsTransparent: true,
			WindowIsTranslucent:  true,
		},
		Windows: &windows.Options{
			WebviewIsTransparent: true,
			WindowIsTranslucent:  true,
		},
		Linux: &linux.Options{
			WindowIsTranslucent: true,
		},
	})

	if err != nil {
		logging.Error("Application exited with error", "error", err)
		println("Error:", err.Error())
	}
}
