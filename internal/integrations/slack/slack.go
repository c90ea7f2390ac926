package slackbot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"unitconv/internal/convert"
	"unitconv/internal/domain"
	"unitconv/internal/service"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
)

const (
	cmdConvert      = "/convert"
	cmdHistory      = "/convert-history"
	cmdClearHistory = "/convert-clear"
	cmdUnits        = "/units"
	cmdHelp         = "/convert-help"
)

// StartSlackBot serves slash commands over Socket Mode until ctx is
// cancelled.
func StartSlackBot(ctx context.Context, conv *service.Converter, api *slack.Client) error {
	client := socketmode.New(api)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-client.Events:
				if !ok {
					return
				}
				switch evt.Type {
				case socketmode.EventTypeSlashCommand:
					client.Ack(*evt.Request)
					cmd, ok := evt.Data.(slack.SlashCommand)
					if !ok {
						continue
					}
					log.Printf("Slash command received: %s from user=%s channel=%s", cmd.Command, cmd.UserID, cmd.ChannelID)
					go handleSlashCommand(ctx, api, conv, cmd)
				case socketmode.EventTypeConnected:
					log.Println("Slack bot connected via Socket Mode")
				}
			}
		}
	}()

	return client.RunContext(ctx)
}

func handleSlashCommand(ctx context.Context, api *slack.Client, conv *service.Converter, cmd slack.SlashCommand) {
	postEphemeral(api, cmd, commandReply(ctx, conv, cmd))
}

// commandReply computes the ephemeral reply for a slash command. Each Slack
// user has their own history session.
func commandReply(ctx context.Context, conv *service.Converter, cmd slack.SlashCommand) string {
	sessionID := domain.SlackSessionID(cmd.UserID)
	if err := conv.Touch(ctx, sessionID); err != nil {
		log.Printf("slack session touch error user=%s: %v", cmd.UserID, err)
	}
	text := strings.TrimSpace(cmd.Text)

	switch cmd.Command {
	case cmdConvert:
		if text == "" {
			return "Usage: /convert <value> <unit> to <unit>\nExample: /convert 3.5 km to miles"
		}
		res, err := conv.Ask(ctx, sessionID, text)
		if err != nil {
			log.Printf("slack convert error user=%s: %v", cmd.UserID, err)
			return service.UserMessage(err)
		}
		return res.Display
	case cmdHistory:
		entries, err := conv.History(ctx, sessionID)
		if err != nil {
			log.Printf("slack history error user=%s: %v", cmd.UserID, err)
			return "Error loading history, please try again."
		}
		return formatHistory(entries)
	case cmdClearHistory:
		if err := conv.ClearHistory(ctx, sessionID); err != nil {
			log.Printf("slack clear error user=%s: %v", cmd.UserID, err)
			return "Error clearing history, please try again."
		}
		return "Conversion history cleared."
	case cmdUnits:
		return formatUnits(text)
	case cmdHelp:
		return helpText()
	default:
		return fmt.Sprintf("Unknown command %s. Try %s.", cmd.Command, cmdHelp)
	}
}

func formatHistory(entries []domain.HistoryEntry) string {
	if len(entries) == 0 {
		return "No conversions yet. Try `/convert 1 meter to feet`."
	}
	lines := []string{"*Conversion History*"}
	for i, e := range entries {
		lines = append(lines, fmt.Sprintf("%d. [%s] %s", i+1, e.Category, service.DisplayLine(e)))
	}
	return strings.Join(lines, "\n")
}

func formatUnits(rawCategory string) string {
	if rawCategory == "" {
		var lines []string
		for _, cat := range convert.Categories() {
			units, _ := convert.Units(cat)
			lines = append(lines, fmt.Sprintf("*%s*: %s", cat, strings.Join(units, ", ")))
		}
		return strings.Join(lines, "\n")
	}
	cat, err := convert.ParseCategory(rawCategory)
	if err != nil {
		return service.UserMessage(err)
	}
	units, _ := convert.Units(cat)
	lines := []string{
		fmt.Sprintf("*%s*: %s", cat, strings.Join(units, ", ")),
		convert.Describe(cat),
	}
	for _, c := range convert.CommonConversions(cat) {
		lines = append(lines, "• "+c)
	}
	return strings.Join(lines, "\n")
}

func helpText() string {
	return strings.Join([]string{
		"*Unit Converter Commands*",
		"",
		"`/convert <value> <unit> to <unit>` - Convert a value (e.g. `/convert 100 c to f`).",
		"`/convert-history` - Show your conversions.",
		"`/convert-clear` - Clear your conversions.",
		"`/units [category]` - List units, optionally for one category.",
		"`/convert-help` - Show this help.",
	}, "\n")
}

func postEphemeral(api *slack.Client, cmd slack.SlashCommand, text string) {
	_, err := api.PostEphemeral(cmd.ChannelID, cmd.UserID, slack.MsgOptionText(text, false))
	if err != nil {
		log.Printf("Error posting ephemeral: %v", err)
	}
}
