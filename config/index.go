package config

import "time"

type Index struct {
	// 單一 createIndexes 請求的逾時
	Timeout time.Duration `mapstructure:"TIMEOUT" json:"timeout" yaml:"timeout"`
	// 週期性重新同步索引的 cron 表示式（含秒），空字串表示停用
	ResyncSpec string `mapstructure:"RESYNC_SPEC" json:"resync_spec" yaml:"resync_spec"`
}
