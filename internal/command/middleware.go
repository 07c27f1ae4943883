package command

import (
	"github.com/bwmarrin/discordgo"

	"voicerelay/internal/logging"
)

type Middleware func(Command) Command

type wrappedCommand struct {
	Command
	wrap func(ctx RequestContext, args string) error
}

func (w *wrappedCommand) Run(ctx RequestContext, args string) error {
	if w.wrap != nil {
		return w.wrap(ctx, args)
	}
	return w.Command.Run(ctx, args)
}

func (w *wrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

// ApplyMiddlewares wraps cmd with mws, innermost first.
func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}

// WithGuildOnly drops requests arriving outside a guild (DMs).
func WithGuildOnly() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx RequestContext, args string) error {
				if ctx.GuildID() == "" {
					return nil
				}
				return cmd.Run(ctx, args)
			},
		}
	}
}

// WithCommandLogger logs every executed command and its outcome.
func WithCommandLogger() Middleware {
	log := logging.For("command")
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx RequestContext, args string) error {
				err := cmd.Run(ctx, args)
				evt := log.Info()
				if err != nil {
					evt = log.Error().Err(err)
				}
				evt.
					Str("command", cmd.Name()).
					Str("guild", ctx.GuildID()).
					Str("user", ctx.UserID()).
					Msg("command executed")
				return err
			},
		}
	}
}
