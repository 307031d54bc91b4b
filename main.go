/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"flag"

	"github.com/xlab/closer"

	"github.com/spaghettifunk/hearth/engine"
	"github.com/spaghettifunk/hearth/engine/core"
	"github.com/spaghettifunk/hearth/engine/platform"
	"github.com/spaghettifunk/hearth/engine/platform/window"
	"github.com/spaghettifunk/hearth/engine/renderer"
	"github.com/spaghettifunk/hearth/engine/renderer/headless"
	"github.com/spaghettifunk/hearth/engine/renderer/opengl"
	"github.com/spaghettifunk/hearth/testbed"
)

func main() {
	defer closer.Close()

	configPath := flag.String("config", "engine.toml", "path to the engine configuration")
	flag.Parse()

	cfg, err := engine.LoadConfig(*configPath)
	if err != nil {
		core.LogFatal("unable to load configuration: %s", err)
		closer.Exit(1)
	}

	p, backend := platformFor(cfg)
	tb := testbed.NewTestGame()

	eng, err := engine.New(tb.Game, cfg, p, backend)
	if err != nil {
		closer.Exit(1)
	}
	if err := eng.Initialize(); err != nil {
		core.LogFatal("engine failed to initialize: %s", err)
		closer.Exit(1)
	}
	// signals stop the loop and wait for the subsystems to shut down
	closer.Bind(eng.Stop)

	if err := eng.Run(); err != nil {
		core.LogFatal("engine stopped with error: %s", err)
		closer.Exit(1)
	}
}

func platformFor(cfg *engine.Config) (platform.Platform, renderer.RendererBackend) {
	if cfg.Renderer.Backend == engine.RendererBackendHeadless {
		return platform.NewHeadless(256), headless.New()
	}
	w := window.New()
	return w, opengl.New(w)
}
