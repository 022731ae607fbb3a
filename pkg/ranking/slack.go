package ranking

import (
	"fmt"

	"github.com/slack-go/slack"

	"github.com/c9s/pythia/pkg/style"
)

func (e Entry) SlackAttachment() slack.Attachment {
	fields := []slack.AttachmentField{
		{Title: "Last Close", Value: fmt.Sprintf("%.2f", e.LastClose), Short: true},
		{Title: "Rolling Mean", Value: fmt.Sprintf("%.2f", e.LastMean), Short: true},
		{Title: "Deviation", Value: fmt.Sprintf("%.2f", e.Deviation.Float64), Short: true},
		{Title: "Signals", Value: fmt.Sprintf("%d", e.Signals), Short: true},
	}

	color := style.GrayColor
	title := e.Symbol
	if s := e.LastSignal; s != nil {
		color = style.SignalColor(s.Kind)
		title = fmt.Sprintf("%s %s", style.SignalEmoji(s.Kind), e.Symbol)
		fields = append(fields, slack.AttachmentField{
			Title: "Last Signal",
			Value: fmt.Sprintf("%s at %.2f", s.Kind, s.Price),
			Short: true,
		})
	}

	return slack.Attachment{
		Title:  title,
		Color:  color,
		Fields: fields,
	}
}
