package config

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"
)

type Config struct {
	Admin                    Admin  `json:"admin"`
	Gmail                    Gmail  `json:"gmail"`
	Notion                   Notion `json:"notion"`
	EmailStore               string `json:"email_store"`
	AnalyticsCacheTTLSeconds int    `json:"analytics_cache_ttl_seconds"`
}

type Admin struct {
	Username string `json:"username"`
	Password string `json:"password"`

	// PasswordHash, when set, takes precedence over Password and is compared
	// with bcrypt.
	PasswordHash string `json:"password_hash"`
}

type Gmail struct {
	ServiceAccountFile string `json:"service_account_file"`
}

type Notion struct {
	APISecret  string       `json:"api_secret"`
	DatabaseID string       `json:"database_id"`
	APIVersion string       `json:"api_version"`
	Schema     NotionSchema `json:"schema"`
}

// NotionSchema maps record fields to Notion property names.
type NotionSchema struct {
	Date         string `json:"date"`
	Campaign     string `json:"campaign"`
	Sent         string `json:"sent"`
	Delivered    string `json:"delivered"`
	Opened       string `json:"opened"`
	Clicked      string `json:"clicked"`
	Bounced      string `json:"bounced"`
	Unsubscribed string `json:"unsubscribed"`
	Spam         string `json:"spam"`
	Device       string `json:"device"`
}

func (n Notion) Configured() bool {
	return n.APISecret != "" && n.DatabaseID != ""
}

func NewConfig() *Config {
	return &Config{
		Admin: Admin{
			Username: "admin",
			Password: "admin",
		},
		Gmail: Gmail{
			ServiceAccountFile: "./bin/workspace_service_account.json",
		},
		Notion: Notion{
			APIVersion: "2022-06-28",
			Schema: NotionSchema{
				Date:         "Send Date",
				Campaign:     "Email Subject",
				Sent:         "Recipient List",
				Delivered:    "Recipient List",
				Opened:       "Open Rate",
				Clicked:      "Click Rate",
				Bounced:      "Bounce Rate",
				Unsubscribed: "Unsubscribe Rate",
				Spam:         "Conversion Rate",
				Device:       "Email Type",
			},
		},
		EmailStore:               "./bin/emails.json",
		AnalyticsCacheTTLSeconds: 120,
	}
}

func (c *Config) Load(ctx context.Context, path string) error {
	if path == "" {
		log.Ctx(ctx).Warn().Msgf("empty config file")
	} else {
		f, err := os.Open(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return err
			}
			log.Ctx(ctx).Warn().Msgf("config file does not exist, file path: %s", path)
		} else {
			defer func(f *os.File) {
				if err := f.Close(); err != nil {
					log.Ctx(ctx).Error().Msgf("config file close failed, file path: %s", path)
				}
			}(f)

			p := json.NewDecoder(f)
			if err := p.Decode(&c); err != nil {
				return err
			}
		}
	}

	c.applyEnv()

	return nil
}

// applyEnv lets secrets and deploy-specific values override the config file.
func (c *Config) applyEnv() {
	envStr(&c.Admin.Username, "ADMIN_USERNAME")
	envStr(&c.Admin.Password, "ADMIN_PASSWORD")
	envStr(&c.Admin.PasswordHash, "ADMIN_PASSWORD_HASH")
	envStr(&c.Gmail.ServiceAccountFile, "GMAIL_SERVICE_ACCOUNT_FILE")
	envStr(&c.Notion.APISecret, "NOTION_API_SECRET")
	envStr(&c.Notion.DatabaseID, "NOTION_DATABASE_ID")
	envStr(&c.Notion.APIVersion, "NOTION_API_VERSION")
	envStr(&c.EmailStore, "EMAIL_STORE")

	envStr(&c.Notion.Schema.Date, "NOTION_PROP_DATE")
	envStr(&c.Notion.Schema.Campaign, "NOTION_PROP_CAMPAIGN")
	envStr(&c.Notion.Schema.Sent, "NOTION_PROP_SENT")
	envStr(&c.Notion.Schema.Delivered, "NOTION_PROP_DELIVERED")
	envStr(&c.Notion.Schema.Opened, "NOTION_PROP_OPENED")
	envStr(&c.Notion.Schema.Clicked, "NOTION_PROP_CLICKED")
	envStr(&c.Notion.Schema.Bounced, "NOTION_PROP_BOUNCED")
	envStr(&c.Notion.Schema.Unsubscribed, "NOTION_PROP_UNSUBSCRIBED")
	envStr(&c.Notion.Schema.Spam, "NOTION_PROP_SPAM")
	envStr(&c.Notion.Schema.Device, "NOTION_PROP_DEVICE")
}

func envStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
