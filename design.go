package fastlap

// DesignSettings is the presentation/branding singleton shown on every page
// of the front-end.
type DesignSettings struct {
	SiteTitle        string  `json:"site_title"`
	AccentColor      string  `json:"accent_color"`
	BGImageURL       string  `json:"bg_image_url"`
	BGOverlayOpacity float64 `json:"bg_overlay_opacity"`
	FaviconURL       string  `json:"favicon_url"`
}

func DefaultDesignSettings() *DesignSettings {
	return &DesignSettings{
		SiteTitle:        "Fast Lap Challenge",
		AccentColor:      "#e10600",
		BGOverlayOpacity: 0.7,
	}
}

type DesignSettingsUpdate struct {
	SiteTitle        *string  `json:"site_title"`
	AccentColor      *string  `json:"accent_color"`
	BGImageURL       *string  `json:"bg_image_url"`
	BGOverlayOpacity *float64 `json:"bg_overlay_opacity"`
	FaviconURL       *string  `json:"favicon_url"`
}

type DesignManager struct {
	store Store
}

func NewDesignManager(store Store) *DesignManager {
	return &DesignManager{store: store}
}

func (dm *DesignManager) Load() (*DesignSettings, error) {
	return dm.store.LoadDesignSettings()
}

// Update applies a partial update to the design singleton.
func (dm *DesignManager) Update(update DesignSettingsUpdate) (*DesignSettings, error) {
	settings, err := dm.store.LoadDesignSettings()

	if err != nil {
		return nil, err
	}

	if update.SiteTitle != nil {
		settings.SiteTitle = *update.SiteTitle
	}

	if update.AccentColor != nil {
		settings.AccentColor = *update.AccentColor
	}

	if update.BGImageURL != nil {
		settings.BGImageURL = *update.BGImageURL
	}

	if update.BGOverlayOpacity != nil {
		settings.BGOverlayOpacity = *update.BGOverlayOpacity
	}

	if update.FaviconURL != nil {
		settings.FaviconURL = *update.FaviconURL
	}

	if err := dm.store.UpsertDesignSettings(settings); err != nil {
		return nil, err
	}

	return settings, nil
}
