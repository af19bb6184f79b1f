package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled bool               `mapstructure:"enabled"` // 总开关
	File    FileEventsConfig   `mapstructure:"file"`
	Folder  FolderEventsConfig `mapstructure:"folder"`
	Share   ShareEventsConfig  `mapstructure:"share"`
}

// FileEventsConfig 文件领域的事件开关。
type FileEventsConfig struct {
	Stored     bool `mapstructure:"stored"`
	Deleted    bool `mapstructure:"deleted"`
	Renamed    bool `mapstructure:"renamed"`
	Moved      bool `mapstructure:"moved"`
	Downloaded bool `mapstructure:"downloaded"`
}

// FolderEventsConfig 文件夹领域的事件开关。
type FolderEventsConfig struct {
	Created bool `mapstructure:"created"`
	Deleted bool `mapstructure:"deleted"`
}

// ShareEventsConfig 分享与公开链接领域的事件开关。
type ShareEventsConfig struct {
	Granted      bool `mapstructure:"granted"`
	Revoked      bool `mapstructure:"revoked"`
	LinkCreated  bool `mapstructure:"link_created"`
	LinkAccessed bool `mapstructure:"link_accessed"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认启用事件系统
	v.SetDefault("events.enabled", true)

	// 默认仅开启最小必要集，避免噪声过大
	v.SetDefault("events.file.stored", true)
	v.SetDefault("events.file.deleted", true)
	v.SetDefault("events.file.renamed", false)
	v.SetDefault("events.file.moved", false)
	v.SetDefault("events.file.downloaded", false) // 下载量可能很大，默认关闭

	v.SetDefault("events.folder.created", false)
	v.SetDefault("events.folder.deleted", false)

	v.SetDefault("events.share.granted", true)
	v.SetDefault("events.share.revoked", true)
	v.SetDefault("events.share.link_created", true)
	v.SetDefault("events.share.link_accessed", false)
}
