package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"nlcal/src-server/model"
	"nlcal/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

// ScheduleCommand registers the /schedule slash command, which replies with
// the generated .ics as an attachment.
func ScheduleCommand(as *utils.AppState) {
	id := "schedule"
	as.AddAppCmdHandler(id, scheduleCommandHandler(as))
	as.AddAppCmdInfo(id, &discordgo.ApplicationCommand{
		Name:        id,
		Description: "Turn a sentence into a calendar file",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "text",
				Description: "e.g. every Friday at 7pm for 8 weeks starting the week of Nov 24",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "date",
				Description: "Reference date, YYYY-MM-DD (default: today)",
			},
		},
	})
}

func scheduleCommandHandler(as *utils.AppState) utils.AppCmdHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		// #region | get the options
		optionMap := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(i.ApplicationCommandData().Options))
		for _, opt := range i.ApplicationCommandData().Options {
			optionMap[opt.Name] = opt
		}
		var text string
		if opt, ok := optionMap["text"]; ok {
			text = strings.TrimSpace(opt.StringValue())
		}
		if text == "" {
			if err := utils.InteractRespHiddenReply(s, i, "Text is required."); err != nil {
				slog.Warn("can't respond", "handler", "schedule", "content", "text-required", "error", err)
			}
			return nil
		}
		opts := ScheduleOptions{Preview: 5}
		if opt, ok := optionMap["date"]; ok {
			date, err := model.ParseDate(opt.StringValue())
			if err != nil {
				if err := utils.InteractRespHiddenReply(s, i, "Date must look like 2025-11-24."); err != nil {
					slog.Warn("can't respond", "handler", "schedule", "content", "bad-date", "error", err)
				}
				return nil
			}
			opts.ReferenceDate = date
		}
		// #endregion

		if err := utils.InteractRespDefer(s, i); err != nil {
			slog.Warn("can't respond", "handler", "schedule", "content", "deferring", "error", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		result, err := Build(ctx, as, text, opts)
		if err != nil {
			msg := fmt.Sprintf("Can't create event\n```%s```", err.Error())
			if err := utils.InteractRespEdit(s, i, msg); err != nil {
				slog.Error("can't respond", "handler", "schedule", "content", "build-error", "error", err)
			}
			return fmt.Errorf("scheduleCommandHandler: %w", err)
		}
		if err := RecordHistory(ctx, as, text, opts.ReferenceDate, result); err != nil {
			slog.Warn("can't record history", "handler", "schedule", "error", err)
		}

		if err := utils.InteractRespEditWithFile(s, i,
			DescribeResult(result),
			result.Filename,
			"text/calendar",
			result.Document.Bytes(),
		); err != nil {
			slog.Error("can't respond", "handler", "schedule", "content", "attachment", "error", err)
			return fmt.Errorf("scheduleCommandHandler: %w", err)
		}
		return nil
	}
}

// DescribeResult is the short human summary shown next to a generated file.
func DescribeResult(result ScheduleResult) string {
	var b strings.Builder
	title := result.Event.Title
	if strings.TrimSpace(title) == "" {
		title = model.UntitledSummary
	}
	fmt.Fprintf(&b, "**%s**\n", title)
	fmt.Fprintf(&b, "%s → %s (%s)\n", result.Event.StartDatetime, result.Event.EndDatetime, result.Event.Timezone)
	if result.Document.RRule != "" {
		fmt.Fprintf(&b, "Repeats: `%s`\n", result.Document.RRule)
	}
	if len(result.Occurrences) > 0 {
		b.WriteString("Next:\n")
		for _, t := range result.Occurrences {
			fmt.Fprintf(&b, "- %s\n", t.Format("Mon Jan 2 2006 15:04 MST"))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
