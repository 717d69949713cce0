package services

import (
	"context"
	"testing"

	"autazul-backend-go/internal/models"
)

func strPtr(value string) *string {
	return &value
}

func TestNormalizeSettings(t *testing.T) {
	tests := []struct {
		name     string
		row      models.AdminSettings
		banners  []string
		rotation int
	}{
		{"empty", models.AdminSettings{}, []string{}, 5},
		{"legacy banner folded in", models.AdminSettings{BannerURL: strPtr(" /b.png "), BannerLink: strPtr("https://x")}, []string{"/b.png"}, 5},
		{"list wins over legacy", models.AdminSettings{
			BannerURL: strPtr("/legacy.png"),
			Banners:   `[{"imageUrl":"/1.png"},{"imageUrl":""},{"imageUrl":"/2.png"}]`,
		}, []string{"/1.png", "/2.png"}, 5},
		{"empty list falls back to legacy", models.AdminSettings{BannerURL: strPtr("/legacy.png"), Banners: `[]`}, []string{"/legacy.png"}, 5},
		{"broken json", models.AdminSettings{Banners: `{`, RotationSeconds: 8}, []string{}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := NormalizeSettings(tt.row)
			if settings.RotationSeconds != tt.rotation {
				t.Fatalf("rotation = %d, want %d", settings.RotationSeconds, tt.rotation)
			}
			if len(settings.Banners) != len(tt.banners) {
				t.Fatalf("banners = %+v, want %v", settings.Banners, tt.banners)
			}
			for i, url := range tt.banners {
				if settings.Banners[i].ImageURL != url {
					t.Fatalf("banners[%d] = %q, want %q", i, settings.Banners[i].ImageURL, url)
				}
			}
		})
	}
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	admin := mustSignup(t, database, "admin@x.com", "Admin", models.RoleParent)

	defaults, err := GetSettings(ctx, database)
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if defaults.RotationSeconds != 5 || len(defaults.Banners) != 0 {
		t.Fatalf("unexpected defaults: %+v", defaults)
	}

	for _, rotation := range []int{0, 7} {
		saved, err := UpdateSettings(ctx, database, admin.ID, Settings{
			Banners:         []Banner{{ImageURL: "/a.png", LinkURL: "https://a"}, {ImageURL: " "}},
			RotationSeconds: rotation,
			PrivacyPolicy:   "policy",
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if len(saved.Banners) != 1 || saved.PrivacyPolicy != "policy" || saved.UpdatedAt == nil {
			t.Fatalf("unexpected settings: %+v", saved)
		}
	}

	var legacy *string
	if err := database.GetContext(ctx, &legacy, `SELECT banner_url FROM admin_settings WHERE id = 1`); err != nil {
		t.Fatalf("legacy column: %v", err)
	}
	if legacy == nil || *legacy != "/a.png" {
		t.Fatalf("legacy banner = %v", legacy)
	}
	current, err := GetSettings(ctx, database)
	if err != nil || current.RotationSeconds != 7 {
		t.Fatalf("settings = %+v, %v", current, err)
	}
}
