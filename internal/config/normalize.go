package config

import "strings"

func (c *Config) normalize() error {
	paths := []*string{
		&c.Paths.DataDir,
		&c.Paths.LogDir,
		&c.Paths.ScratchDir,
		&c.Paths.ExportDir,
		&c.Engine.BuildDir,
		&c.Engine.Binary,
		&c.Engine.ModelPath,
	}
	for _, value := range paths {
		trimmed := strings.TrimSpace(*value)
		if trimmed == "" {
			*value = trimmed
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return err
		}
		*value = expanded
	}

	c.Paths.Bind = strings.TrimSpace(c.Paths.Bind)
	c.Engine.FFmpegBinary = strings.TrimSpace(c.Engine.FFmpegBinary)
	if c.Engine.FFmpegBinary == "" {
		c.Engine.FFmpegBinary = defaultFFmpegBinary
	}
	c.Events.RemoteURL = strings.TrimRight(strings.TrimSpace(c.Events.RemoteURL), "/")
	c.ITunes.BaseURL = strings.TrimRight(strings.TrimSpace(c.ITunes.BaseURL), "/")
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}
