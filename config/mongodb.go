package config

import "time"

type MongoDB struct {
	// 連線字串，亦可由 MONGODB_URI 提供
	URI     string `mapstructure:"URI" json:"uri" yaml:"uri"`
	Options string `mapstructure:"OPTIONS" json:"options" yaml:"options"`
	// 未設定時取 URI path 中的 database，再退回預設值
	Database               string        `mapstructure:"DATABASE" json:"database" yaml:"database"`
	ConnectTimeout         time.Duration `mapstructure:"CONNECT_TIMEOUT" json:"connect_timeout" yaml:"connect_timeout"`
	ServerSelectionTimeout time.Duration `mapstructure:"SERVER_SELECTION_TIMEOUT" json:"server_selection_timeout" yaml:"server_selection_timeout"`
}
