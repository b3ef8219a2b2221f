package main

import (
	"log"

	"github.com/huellitas-unexpo/rescuebot/core/cmd"
	coreconfig "github.com/huellitas-unexpo/rescuebot/core/config"
	"github.com/huellitas-unexpo/rescuebot/internal/app"
)

func main() {
	err := cmd.Run(cmd.Options{
		ConfigEnvVar:      "RESCUEBOT_CONFIG",
		DefaultConfigPath: "config.yaml",
		LoadConfig:        coreconfig.Load,
		Bootstrap:         app.Bootstrap,
	})
	if err != nil {
		log.Fatalf("rescuebot: %v", err)
	}
}
