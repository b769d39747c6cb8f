package config

import "go.uber.org/fx"

// Module loads configuration once and shares it across the graph.
var Module = fx.Module("config",
	fx.Provide(Load),
)
