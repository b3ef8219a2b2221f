package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/huellitas-unexpo/rescuebot/core/telegram/commands"
)

func noop(tele.Context) error { return nil }

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/report", commands.Command{Handler: noop, Description: "Report", Aliases: []string{"/reportar"}})
	reg.RegisterCommand("/cancel", commands.Command{Handler: noop, Description: "Cancel", Aliases: []string{"cancelar"}})

	for _, in := range []string{"/report", "report", "/REPORT", "/report@HuellitasBot", "/reportar", "/reportar ahora"} {
		key, _, ok := reg.LookupCommand(in)
		require.True(t, ok, in)
		assert.Equal(t, "/report", key, in)
	}
	key, _, ok := reg.LookupCommand("/cancelar")
	require.True(t, ok)
	assert.Equal(t, "/cancel", key)

	for _, in := range []string{"", "/help", "perro"} {
		_, _, ok := reg.LookupCommand(in)
		assert.False(t, ok, in)
	}
}

func TestRegistrySkipsInvalidAndDuplicates(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("report", commands.Command{Handler: noop, Description: "x"})
	reg.RegisterCommand("/start", commands.Command{Description: "no handler"})
	reg.RegisterCommand("/start", commands.Command{Handler: noop})
	reg.RegisterCommand("/report", commands.Command{Handler: noop, Description: "Report", Aliases: []string{"/reportar"}})
	reg.RegisterCommand("/reportar", commands.Command{Handler: noop, Description: "dup alias"})
	assert.Len(t, reg.Commands(), 1)
}

func TestListCommands(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Start"})
	reg.RegisterCommand("/adoptar", commands.Command{Handler: noop, Description: "Adopt"})
	reg.RegisterCommand("/debug", commands.Command{Handler: noop, Description: "Debug", Hidden: true})

	assert.Equal(t, []tele.Command{
		{Text: "adoptar", Description: "Adopt"},
		{Text: "start", Description: "Start"},
	}, reg.ListCommands(true))
	assert.Len(t, reg.ListCommands(false), 3)
}
