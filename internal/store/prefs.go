package store

import (
	"context"
	"fmt"

	"github.com/verso-cli/verso/ent"
	"github.com/verso-cli/verso/ent/preference"
)

const (
	prefSourceLang = "source_lang"
	prefTargetLang = "target_lang"
	prefLevel      = "level"
	prefTheme      = "theme"
	prefProvider   = "provider"
	prefAPIKey     = "api_key"
	prefModel      = "model"
)

// prefsRepo implements PrefsRepo as key/value rows in the preferences table.
type prefsRepo struct {
	client *ent.Client
}

func (r *prefsRepo) Load(ctx context.Context) (Prefs, error) {
	rows, err := r.client.Preference.Query().All(ctx)
	if err != nil {
		return Prefs{}, fmt.Errorf("load preferences: %w", err)
	}

	p := DefaultPrefs()
	for _, row := range rows {
		switch row.Key {
		case prefSourceLang:
			p.SourceLang = row.Value
		case prefTargetLang:
			p.TargetLang = row.Value
		case prefLevel:
			p.Level = row.Value
		case prefTheme:
			p.Theme = row.Value
		case prefProvider:
			p.Provider = row.Value
		case prefAPIKey:
			p.APIKey = row.Value
		case prefModel:
			p.Model = row.Value
		}
	}
	return p, nil
}

func (r *prefsRepo) Save(ctx context.Context, p Prefs) error {
	pairs := map[string]string{
		prefSourceLang: p.SourceLang,
		prefTargetLang: p.TargetLang,
		prefLevel:      p.Level,
		prefTheme:      p.Theme,
		prefProvider:   p.Provider,
		prefAPIKey:     p.APIKey,
		prefModel:      p.Model,
	}
	for key, value := range pairs {
		if err := r.upsert(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

func (r *prefsRepo) upsert(ctx context.Context, key, value string) error {
	n, err := r.client.Preference.Update().
		Where(preference.KeyEQ(key)).
		SetValue(value).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("update preference %s: %w", key, err)
	}
	if n > 0 {
		return nil
	}

	_, err = r.client.Preference.Create().
		SetKey(key).
		SetValue(value).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("create preference %s: %w", key, err)
	}
	return nil
}
