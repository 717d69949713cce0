package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"autazul-backend-go/internal/db"
	"autazul-backend-go/internal/models"
)

const defaultRotationSeconds = 5

type Banner struct {
	ImageURL string `json:"imageUrl"`
	LinkURL  string `json:"linkUrl,omitempty"`
	Alt      string `json:"alt,omitempty"`
}

// Settings is the normalized form of the admin settings singleton. Older
// records carry a single banner in dedicated columns; reads fold it into
// Banners when no list has been saved.
type Settings struct {
	Banners         []Banner   `json:"banners"`
	RotationSeconds int        `json:"rotationSeconds"`
	AdsSnippet      string     `json:"adsSnippet"`
	PrivacyPolicy   string     `json:"privacyPolicy"`
	TermsOfService  string     `json:"termsOfService"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}

func NormalizeSettings(row models.AdminSettings) Settings {
	settings := Settings{
		Banners:         []Banner{},
		RotationSeconds: row.RotationSeconds,
		AdsSnippet:      row.AdsSnippet,
		PrivacyPolicy:   row.PrivacyPolicy,
		TermsOfService:  row.TermsOfService,
		UpdatedAt:       row.UpdatedAt,
	}
	if strings.TrimSpace(row.Banners) != "" {
		decoded := []Banner{}
		if err := json.Unmarshal([]byte(row.Banners), &decoded); err == nil {
			settings.Banners = cleanBanners(decoded)
		}
	}
	if len(settings.Banners) == 0 && row.BannerURL != nil && strings.TrimSpace(*row.BannerURL) != "" {
		legacy := Banner{ImageURL: strings.TrimSpace(*row.BannerURL)}
		if row.BannerLink != nil {
			legacy.LinkURL = strings.TrimSpace(*row.BannerLink)
		}
		settings.Banners = []Banner{legacy}
	}
	if settings.RotationSeconds <= 0 {
		settings.RotationSeconds = defaultRotationSeconds
	}
	return settings
}

func cleanBanners(items []Banner) []Banner {
	out := make([]Banner, 0, len(items))
	for _, banner := range items {
		banner.ImageURL = strings.TrimSpace(banner.ImageURL)
		banner.LinkURL = strings.TrimSpace(banner.LinkURL)
		banner.Alt = strings.TrimSpace(banner.Alt)
		if banner.ImageURL == "" {
			continue
		}
		out = append(out, banner)
	}
	return out
}

func GetSettings(ctx context.Context, q db.Querier) (Settings, error) {
	var row models.AdminSettings
	err := q.GetContext(ctx, &row, `
SELECT id, banner_url, banner_link, banners, rotation_seconds, ads_snippet, privacy_policy, terms_of_service, updated_at, updated_by
FROM admin_settings WHERE id = 1
`)
	if db.IsNoRows(err) {
		return NormalizeSettings(models.AdminSettings{ID: 1}), nil
	}
	if err != nil {
		return Settings{}, err
	}
	return NormalizeSettings(row), nil
}

// UpdateSettings replaces the singleton. The first banner is mirrored into
// the legacy columns for readers that predate the list.
func UpdateSettings(ctx context.Context, q db.Querier, adminID string, in Settings) (Settings, error) {
	banners := cleanBanners(in.Banners)
	encoded, err := json.Marshal(banners)
	if err != nil {
		return Settings{}, err
	}
	rotation := in.RotationSeconds
	if rotation <= 0 {
		rotation = defaultRotationSeconds
	}
	var legacyURL, legacyLink *string
	if len(banners) > 0 {
		legacyURL = &banners[0].ImageURL
		legacyLink = &banners[0].LinkURL
	}
	now := nowFunc()
	_, err = q.ExecContext(ctx, `
INSERT INTO admin_settings (id, banner_url, banner_link, banners, rotation_seconds, ads_snippet, privacy_policy, terms_of_service, updated_at, updated_by)
VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
  banner_url = excluded.banner_url,
  banner_link = excluded.banner_link,
  banners = excluded.banners,
  rotation_seconds = excluded.rotation_seconds,
  ads_snippet = excluded.ads_snippet,
  privacy_policy = excluded.privacy_policy,
  terms_of_service = excluded.terms_of_service,
  updated_at = excluded.updated_at,
  updated_by = excluded.updated_by
`, legacyURL, legacyLink, string(encoded), rotation, in.AdsSnippet, in.PrivacyPolicy, in.TermsOfService, now, adminID)
	if err != nil {
		return Settings{}, WrapError(err, "save settings")
	}
	if err := RecordAudit(ctx, q, &adminID, "settings.update", "settings", "1", ""); err != nil {
		return Settings{}, err
	}
	return GetSettings(ctx, q)
}
