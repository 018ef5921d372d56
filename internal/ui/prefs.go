package ui

import "fyne.io/fyne/v2"

// PreferencesSlot keeps the clipboard in the application preferences so a
// copied object survives restarts and is shared between windows.
type PreferencesSlot struct {
	prefs fyne.Preferences
}

func NewPreferencesSlot(prefs fyne.Preferences) *PreferencesSlot {
	return &PreferencesSlot{prefs: prefs}
}

func (p *PreferencesSlot) Get(key string) string { return p.prefs.String(key) }

func (p *PreferencesSlot) Set(key, value string) { p.prefs.SetString(key, value) }
