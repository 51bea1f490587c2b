package localstore

import (
	"context"

	"github.com/OjusAnilNaik/To-do-List/domain"
)

// ThemeKey holds "dark" or "light".
const ThemeKey = "theme"

// Preferences persists UI preferences next to the notes.
type Preferences struct {
	kv KV
}

func NewPreferences(kv KV) *Preferences {
	return &Preferences{kv: kv}
}

// Theme returns the stored theme. Missing or unknown values read as light.
func (p *Preferences) Theme(ctx context.Context) (domain.Theme, error) {
	raw, ok, err := p.kv.Get(ctx, ThemeKey)
	if err != nil || !ok {
		return domain.ThemeLight, err
	}
	theme, err := domain.ParseTheme(raw)
	if err != nil {
		return domain.ThemeLight, nil
	}
	return theme, nil
}

func (p *Preferences) SetTheme(ctx context.Context, theme domain.Theme) error {
	if _, err := domain.ParseTheme(string(theme)); err != nil {
		return err
	}
	return p.kv.Set(ctx, ThemeKey, string(theme))
}

// ToggleTheme flips the stored theme and returns the new one.
func (p *Preferences) ToggleTheme(ctx context.Context) (domain.Theme, error) {
	current, err := p.Theme(ctx)
	if err != nil {
		return current, err
	}
	next := current.Toggle()
	if err := p.SetTheme(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}
