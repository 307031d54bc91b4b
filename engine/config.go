package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/hearth/engine/assets"
	"github.com/spaghettifunk/hearth/engine/core"
	"github.com/spaghettifunk/hearth/engine/systems"
)

const (
	RendererBackendOpenGL   = "opengl"
	RendererBackendHeadless = "headless"
)

// Config is the content of engine.toml.
type Config struct {
	Application ApplicationConfig `toml:"application"`
	Logging     LoggingConfig     `toml:"logging"`
	Assets      AssetsConfig      `toml:"assets"`
	Systems     SystemsConfig     `toml:"systems"`
	Renderer    RendererConfig    `toml:"renderer"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type AssetsConfig struct {
	BasePath string `toml:"base_path"`
	Watch    bool   `toml:"watch"`
}

type SystemsConfig struct {
	MaxLoaderCount   uint32 `toml:"max_loader_count"`
	MaxTextureCount  uint32 `toml:"max_texture_count"`
	MaxMaterialCount uint32 `toml:"max_material_count"`
	MaxGeometryCount uint32 `toml:"max_geometry_count"`
}

type RendererConfig struct {
	// Backend is opengl or headless.
	Backend string `toml:"backend"`
}

func DefaultConfig() *Config {
	return &Config{
		Application: ApplicationConfig{
			StartPosX:   100,
			StartPosY:   100,
			StartWidth:  1280,
			StartHeight: 720,
			Name:        "Hearth Engine",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "console.log",
		},
		Assets: AssetsConfig{
			BasePath: "assets",
		},
		Systems: SystemsConfig{
			MaxLoaderCount:   16,
			MaxTextureCount:  1024,
			MaxMaterialCount: 1024,
			MaxGeometryCount: 1024,
		},
		Renderer: RendererConfig{
			Backend: RendererBackendOpenGL,
		},
	}
}

// LoadConfig reads path over the defaults. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogInfo("no configuration found at '%s', using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	switch cfg.Renderer.Backend {
	case RendererBackendOpenGL, RendererBackendHeadless:
	default:
		return nil, fmt.Errorf("unknown renderer backend '%s'", cfg.Renderer.Backend)
	}
	return cfg, nil
}

// SystemManagerConfig maps the file layout onto the subsystem configuration.
func (c *Config) SystemManagerConfig() systems.SystemManagerConfig {
	return systems.SystemManagerConfig{
		ApplicationName: c.Application.Name,
		StartPosX:       c.Application.StartPosX,
		StartPosY:       c.Application.StartPosY,
		StartWidth:      c.Application.StartWidth,
		StartHeight:     c.Application.StartHeight,
		Logging: core.LoggingConfig{
			File:  c.Logging.File,
			Level: c.Logging.Level,
		},
		Assets: assets.AssetManagerConfig{
			BasePath:       c.Assets.BasePath,
			MaxLoaderCount: c.Systems.MaxLoaderCount,
		},
		WatchAssets: c.Assets.Watch,
		Textures:    systems.TextureSystemConfig{MaxTextureCount: c.Systems.MaxTextureCount},
		Materials:   systems.MaterialSystemConfig{MaxMaterialCount: c.Systems.MaxMaterialCount},
		Geometry:    systems.GeometrySystemConfig{MaxGeometryCount: c.Systems.MaxGeometryCount},
	}
}
