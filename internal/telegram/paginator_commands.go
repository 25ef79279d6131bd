package telegram

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/harun/pagina/pkg/paginator"
)

const (
	// helpCommandsPerPage is the number of commands listed on one help page.
	helpCommandsPerPage = 8

	// PaginatorModule groups the paginator commands on the help pages.
	PaginatorModule = "Paginator"
)

// PaginatorCommands provides the /help, /close and /sessions commands.
type PaginatorCommands struct {
	engine   *paginator.Engine
	commands *Commands
}

// RegisterPaginatorCommands registers the paginator commands on commands.
func RegisterPaginatorCommands(commands *Commands, engine *paginator.Engine) *PaginatorCommands {
	pc := &PaginatorCommands{engine: engine, commands: commands}
	commands.RegisterCommand(CommandInfo{
		Name:        "help",
		Description: "List available commands",
		Module:      PaginatorModule,
	}, pc.Help)
	commands.RegisterCommand(CommandInfo{
		Name:        "close",
		Description: "Reply to a paginated message to close it",
		Module:      PaginatorModule,
	}, pc.Close)
	commands.RegisterCommand(CommandInfo{
		Name:        "sessions",
		Description: "Show your open paginated messages in this chat",
		Module:      PaginatorModule,
	}, pc.Sessions)
	return pc
}

// helpPages lays out one page per command module. Modules with more than
// helpCommandsPerPage commands continue on numbered pages.
func helpPages(engine *paginator.Engine, infos []CommandInfo) *paginator.Paginator {
	modules := make(map[string][]CommandInfo)
	for _, info := range infos {
		modules[info.Module] = append(modules[info.Module], info)
	}
	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)

	p := engine.NewPaginator()
	for _, module := range names {
		cmds := modules[module]
		parts := (len(cmds) + helpCommandsPerPage - 1) / helpCommandsPerPage

		for start := 0; start < len(cmds); start += helpCommandsPerPage {
			chunk := cmds[start:min(start+helpCommandsPerPage, len(cmds))]

			name := module
			if parts > 1 {
				name = fmt.Sprintf("%s %d", module, start/helpCommandsPerPage+1)
			}

			content := paginator.Embed("Help", "Showing module: "+name)
			for _, info := range chunk {
				content.WithField("/"+info.Name, commandHelp(info), false)
			}
			p.AddNamedPage(content, name)
		}
	}
	return p
}

func commandHelp(info CommandInfo) string {
	usage := "/" + info.Name
	if info.Usage != "" {
		usage += " " + info.Usage
	}
	text := "Usage: " + usage
	if info.Description != "" {
		text += "\n" + info.Description
	}
	return text
}

// Help sends the paginated command list.
func (pc *PaginatorCommands) Help(ctx context.Context, cmd CommandContext) error {
	p := helpPages(pc.engine, pc.commands.List())
	return p.Send(ctx, commandTarget(cmd))
}

// Close removes the controls of the paginated message the command replies
// to. Only the paginator's owner may close it.
func (pc *PaginatorCommands) Close(ctx context.Context, cmd CommandContext) error {
	if cmd.ReplyToID == 0 {
		return pc.commands.SendResponse(cmd, "Reply to a paginated message with /close to close it.")
	}

	ref := paginator.MessageRef{
		MessageID: FormatMessageID(cmd.ChatID, cmd.ReplyToID),
		ChannelID: strconv.FormatInt(cmd.ChatID, 10),
	}
	if cmd.IsGroup {
		ref.GuildID = ref.ChannelID
	}

	session, err := pc.engine.Session(ctx, ref.MessageID)
	if errors.Is(err, paginator.ErrSessionNotFound) {
		return pc.commands.SendResponse(cmd, "That message has no open paginator.")
	}
	if err != nil {
		return err
	}
	if session.OwnerID != strconv.FormatInt(cmd.UserID, 10) {
		return pc.commands.SendResponse(cmd, "Only the user who opened this paginator can close it.")
	}

	return pc.engine.RemovePaginator(ctx, ref)
}

// Sessions pages through the caller's open paginators in the current chat,
// one page per paginated message.
func (pc *PaginatorCommands) Sessions(ctx context.Context, cmd CommandContext) error {
	sessions, err := pc.engine.OpenSessions(ctx, strconv.FormatInt(cmd.UserID, 10))
	if err != nil {
		return fmt.Errorf("failed to list open paginators: %w", err)
	}

	chatID := strconv.FormatInt(cmd.ChatID, 10)
	here := sessions[:0]
	for _, s := range sessions {
		if s.Ref.ChannelID == chatID {
			here = append(here, s)
		}
	}
	if len(here) == 0 {
		return pc.commands.SendResponse(cmd, "You have no open paginated messages in this chat.")
	}

	p := sessionPages(pc.engine, here)
	return p.Send(ctx, commandTarget(cmd))
}

func sessionPages(engine *paginator.Engine, sessions []*paginator.Session) *paginator.Paginator {
	now := engine.Now()
	p := engine.NewPaginator()
	for _, s := range sessions {
		label := s.Ref.MessageID
		if _, messageID, err := ParseMessageID(s.Ref.MessageID); err == nil {
			label = strconv.Itoa(messageID)
		}

		current := s.Pages[s.CurrentIndex]
		showing := current.Name
		if showing == "" {
			showing = current.Content.Title()
		}
		if showing == "" {
			showing = current.Label()
		}

		content := paginator.Embed("Open paginated messages", fmt.Sprintf("%d open in this chat", len(sessions))).
			WithField("Message", "#"+label, true).
			WithField("Showing", fmt.Sprintf("%s (%d/%d)", strings.TrimSpace(showing), s.CurrentIndex+1, len(s.Pages)), true).
			WithField("Expires", humanize.RelTime(s.ExpireAt, now, "ago", "from now"), true)
		p.AddNamedPage(content, "Message "+label)
	}
	return p
}

func commandTarget(cmd CommandContext) paginator.Target {
	target := paginator.Target{
		ChannelID: strconv.FormatInt(cmd.ChatID, 10),
		ReplyTo:   strconv.Itoa(cmd.MessageID),
		Owner: paginator.User{
			ID:   strconv.FormatInt(cmd.UserID, 10),
			Name: displayName(cmd.From),
		},
	}
	if cmd.IsGroup {
		target.GuildID = target.ChannelID
	}
	return target
}
