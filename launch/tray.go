package launch

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/getlantern/systray"
)

func (a *App) onReady() {
	if icon, err := os.ReadFile(a.iconPath()); err == nil {
		systray.SetIcon(icon)
	}
	systray.SetTitle("OPEC Brain")
	systray.SetTooltip(a.tooltip())

	mNew := systray.AddMenuItem("Novo registro", "Registrar Subiu / Desceu / Pronto")
	mHist := systray.AddMenuItem("Histórico", "Ver e filtrar os registros")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Sair", "Fechar o aplicativo")

	a.trayReady.Store(true)
	a.start()

	// les clics sont transformés en événements, jamais traités ici
	go func() {
		for {
			select {
			case <-mNew.ClickedCh:
				a.Post(EventOpenAdd)
			case <-mHist.ClickedCh:
				a.Post(EventOpenHistory)
			case <-mQuit.ClickedCh:
				a.Post(EventQuit)
				return
			}
		}
	}()
	a.logger.Info("tray ready", slog.String("storage", a.cfg.StoragePath()))
}

func (a *App) tooltip() string {
	return "OPEC Brain · " + a.cfg.Hotkey + " para novo registro"
}

// storageFailed is the diagnostic hook of the record manager: the failure is
// already logged, the tooltip tells the user.
func (a *App) storageFailed(op string, err error) {
	if !a.trayReady.Load() {
		return
	}
	systray.SetTooltip("OPEC Brain · falha no histórico (" + op + ")")
}

func (a *App) onExit() {
	a.shutdown()
	a.logger.Info("bye")
}

// iconPath is the configured icon, else icon.ico next to the executable.
func (a *App) iconPath() string {
	if a.cfg.Icon != "" {
		return a.cfg.Icon
	}
	exe, err := os.Executable()
	if err != nil {
		return "icon.ico"
	}
	return filepath.Join(filepath.Dir(exe), "icon.ico")
}
