package db

import (
	"context"
	"fmt"

	"github.com/finbot-app/finbot/internal/models"
	internalsettings "github.com/finbot-app/finbot/internal/settings"
	"gorm.io/gorm"
)

// Migrate runs schema migrations and seeds defaults for the current
// dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectSQLite, DialectPostgres, "":
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Chat{},
		&models.NewsArticle{},
		&models.MarketWidget{},
		&models.Setting{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if errSeed := seedDefaultSettings(conn); errSeed != nil {
		return errSeed
	}
	if errSeed := seedDefaultWidgets(conn); errSeed != nil {
		return errSeed
	}
	return nil
}

// seedDefaultSettings inserts policy defaults unless already present.
func seedDefaultSettings(conn *gorm.DB) error {
	ctx := context.Background()
	store := internalsettings.NewStore(conn)

	seeds := []struct {
		key   string
		value any
	}{
		{internalsettings.SiteNameKey, internalsettings.DefaultSiteName},
		{internalsettings.LoginMaxAttemptsKey, internalsettings.DefaultLoginMaxAttempts},
		{internalsettings.LoginWindowSecondsKey, internalsettings.DefaultLoginWindowSeconds},
		{internalsettings.RateLimitRedisEnabledKey, false},
		{internalsettings.RateLimitRedisPrefixKey, internalsettings.DefaultRedisPrefix},
	}
	for _, seed := range seeds {
		if errSeed := store.Seed(ctx, seed.key, seed.value); errSeed != nil {
			return errSeed
		}
	}
	return nil
}

// seedDefaultWidgets inserts the stock dashboard widget set once.
func seedDefaultWidgets(conn *gorm.DB) error {
	var count int64
	if errCount := conn.Model(&models.MarketWidget{}).Count(&count).Error; errCount != nil {
		return fmt.Errorf("db: count widgets: %w", errCount)
	}
	if count > 0 {
		return nil
	}

	defaults := []models.MarketWidget{
		{Symbol: "^GSPC", DisplayName: "S&P 500", Kind: models.WidgetIndex, Position: 0, Enabled: true},
		{Symbol: "^IXIC", DisplayName: "Nasdaq Composite", Kind: models.WidgetIndex, Position: 1, Enabled: true},
		{Symbol: "^DJI", DisplayName: "Dow Jones", Kind: models.WidgetIndex, Position: 2, Enabled: true},
		{Symbol: "BTC-USD", DisplayName: "Bitcoin", Kind: models.WidgetCrypto, Position: 3, Enabled: true},
		{Symbol: "EURUSD", DisplayName: "EUR/USD", Kind: models.WidgetFX, Position: 4, Enabled: true},
	}
	if errCreate := conn.Create(&defaults).Error; errCreate != nil {
		return fmt.Errorf("db: seed widgets: %w", errCreate)
	}
	return nil
}
