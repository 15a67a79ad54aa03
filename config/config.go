package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Room     RoomConfig     `mapstructure:"room"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

// RoomConfig holds the tunable room thresholds. These are deployment
// decisions, not protocol constants.
type RoomConfig struct {
	MaxPlayers  int           `mapstructure:"max_players"`
	MinPlayers  int           `mapstructure:"min_players"`
	GracePeriod time.Duration `mapstructure:"grace_period"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
	SendBuffer  int           `mapstructure:"send_buffer"`
}

type DatabaseConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("server.metrics_address", ":9100")
	viper.SetDefault("room.max_players", 4)
	viper.SetDefault("room.min_players", 2)
	viper.SetDefault("room.grace_period", 30*time.Second)
	viper.SetDefault("room.send_timeout", 5*time.Second)
	viper.SetDefault("room.send_buffer", 64)
	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.driver", "gorm")

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
