package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/healthcare-bi/backend/internal/source"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	AdminKey       string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`

	// partner APIs
	APIToken             string        `mapstructure:"API_TOKEN"`
	APIUser              string        `mapstructure:"API_USER"`
	ClinicalOSURL        string        `mapstructure:"CLINICAL_OS_URL"`
	ClinicalEquipmentURL string        `mapstructure:"CLINICAL_EQUIPMENT_URL"`
	AgirAPIToken         string        `mapstructure:"AGIR_API_TOKEN"`
	AgirOSURL            string        `mapstructure:"AGIR_OS_URL"`
	BuildingEmpresaIDs   string        `mapstructure:"BUILDING_EMPRESA_IDS"`
	SourceMinInterval    time.Duration `mapstructure:"SOURCE_MIN_INTERVAL"`
	SourceTimeout        time.Duration `mapstructure:"SOURCE_TIMEOUT"`
	FixturesDir          string        `mapstructure:"FIXTURES_DIR"`

	// ingestion
	ClinicalBatchSize int `mapstructure:"CLINICAL_BATCH_SIZE"`
	BuildingBatchSize int `mapstructure:"BUILDING_BATCH_SIZE"`
	DaysBack          int `mapstructure:"DAYS_BACK"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("ADMIN_KEY", "")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("API_TOKEN", "")
	v.SetDefault("API_USER", "")
	v.SetDefault("CLINICAL_OS_URL", "https://sesgo.api.neovero.com/api/queries/execute/consulta_os")
	v.SetDefault("CLINICAL_EQUIPMENT_URL", "https://sesgo.api.neovero.com/api/queries/execute/consulta_equipamento")
	v.SetDefault("AGIR_API_TOKEN", "")
	v.SetDefault("AGIR_OS_URL", "https://agir.api.neovero.com/api/queries/execute/consulta_os")
	v.SetDefault("BUILDING_EMPRESA_IDS", "1,2,3,4,5,6,7,8,9,10")
	v.SetDefault("SOURCE_MIN_INTERVAL", "200ms")
	v.SetDefault("SOURCE_TIMEOUT", "60s")
	v.SetDefault("FIXTURES_DIR", "fixtures")

	v.SetDefault("CLINICAL_BATCH_SIZE", 100)
	v.SetDefault("BUILDING_BATCH_SIZE", 50)
	v.SetDefault("DAYS_BACK", 730)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if _, err := cfg.EmpresaIDs(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// EmpresaIDs parses BUILDING_EMPRESA_IDS, a comma separated list of tenant ids.
func (c Config) EmpresaIDs() ([]int, error) {
	var ids []int
	for _, part := range strings.Split(c.BuildingEmpresaIDs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("BUILDING_EMPRESA_IDS: %q is not a number", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SourceSettings maps the partner API keys onto the source package settings.
// Load has already validated BUILDING_EMPRESA_IDS.
func (c Config) SourceSettings() source.Settings {
	ids, _ := c.EmpresaIDs()
	return source.Settings{
		APIToken:             c.APIToken,
		APIUser:              c.APIUser,
		ClinicalOSURL:        c.ClinicalOSURL,
		ClinicalEquipmentURL: c.ClinicalEquipmentURL,
		AgirToken:            c.AgirAPIToken,
		AgirOSURL:            c.AgirOSURL,
		EmpresaIDs:           ids,
		MinInterval:          c.SourceMinInterval,
		Timeout:              c.SourceTimeout,
		FixturesDir:          c.FixturesDir,
	}
}
