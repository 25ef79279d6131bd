package telegram

import (
	"context"
	"fmt"
)

// BotModule groups the general bot commands on the help pages.
const BotModule = "Bot"

// RegisterBotCommands registers /start and /about.
func RegisterBotCommands(commands *Commands, version string) {
	commands.RegisterCommand(CommandInfo{
		Name:        "start",
		Description: "Introduce the bot",
		Module:      BotModule,
	}, func(ctx context.Context, cmd CommandContext) error {
		text := fmt.Sprintf(
			"Hello %s! I show long content as pages you can flip through with the buttons under the message.\n\nSend /help to see what I can do.",
			displayName(cmd.From),
		)
		return commands.SendResponse(cmd, text)
	})

	commands.RegisterCommand(CommandInfo{
		Name:        "about",
		Description: "Show the bot version",
		Module:      BotModule,
	}, func(ctx context.Context, cmd CommandContext) error {
		self := commands.bot.Self()
		return commands.SendResponse(cmd, fmt.Sprintf("@%s running pagina %s", self.UserName, version))
	})
}
