package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateITunes(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		return errors.New("paths.scratch_dir must be set")
	}
	if strings.TrimSpace(c.Paths.Bind) == "" {
		return errors.New("paths.bind must be set")
	}
	return nil
}

func (c *Config) validateFetch() error {
	return ensurePositiveMap(map[string]int{
		"fetch.max_retries":     c.Fetch.MaxRetries,
		"fetch.retry_delay":     c.Fetch.RetryDelay,
		"fetch.request_timeout": c.Fetch.RequestTimeout,
		"fetch.chunk_size":      c.Fetch.ChunkSize,
	})
}

func (c *Config) validateEngine() error {
	if strings.TrimSpace(c.Engine.Binary) == "" {
		return errors.New("engine.binary must be set")
	}
	if strings.TrimSpace(c.Engine.ModelPath) == "" {
		return errors.New("engine.model_path must be set")
	}
	if strings.TrimSpace(c.Engine.ModelURL) == "" {
		return errors.New("engine.model_url must be set")
	}
	if strings.TrimSpace(c.Engine.RepoURL) == "" {
		return errors.New("engine.repo_url must be set")
	}
	return nil
}

func (c *Config) validateEvents() error {
	return ensurePositiveMap(map[string]int{
		"events.keepalive_interval": c.Events.KeepaliveInterval,
		"events.channel_buffer":     c.Events.ChannelBuffer,
	})
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.MaxActiveJobs <= 0 {
		return errors.New("workflow.max_active_jobs must be positive")
	}
	return nil
}

func (c *Config) validateITunes() error {
	if strings.TrimSpace(c.ITunes.BaseURL) == "" {
		return errors.New("itunes.base_url must be set")
	}
	return ensurePositiveMap(map[string]int{
		"itunes.search_limit":    c.ITunes.SearchLimit,
		"itunes.episode_limit":   c.ITunes.EpisodeLimit,
		"itunes.request_timeout": c.ITunes.RequestTimeout,
	})
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
