package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Game   GameConfig   `mapstructure:"game"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type GameConfig struct {
	Cols           int    `mapstructure:"cols"`
	Rows           int    `mapstructure:"rows"`
	Name           string `mapstructure:"name"`
	TickIntervalMs int    `mapstructure:"tick_interval_ms"`
	GravityDelayMs int    `mapstructure:"gravity_delay_ms"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.metrics_address", ":9090")
	viper.SetDefault("game.cols", 10)
	viper.SetDefault("game.rows", 20)
	viper.SetDefault("game.name", "New Game")
	viper.SetDefault("game.tick_interval_ms", 50)
	viper.SetDefault("game.gravity_delay_ms", 200)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		// 配置文件缺失时使用默认值启动
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	err = viper.Unmarshal(&config)
	return
}
